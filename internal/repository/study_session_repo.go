package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studymate-backend/internal/models"
)

type StudySessionRepo struct {
	pool DBTX
}

func NewStudySessionRepo(pool DBTX) *StudySessionRepo {
	return &StudySessionRepo{pool: pool}
}

func (r *StudySessionRepo) Create(ctx context.Context, s *models.StudySession) error {
	s.ID = uuid.NewString()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO study_sessions (id, user_id, subject, duration_minutes, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, s.ID, s.UserID, s.Subject, s.DurationMinutes, s.Date, s.Notes)
	return err
}

// ListSince returns the user's sessions dated at or after since.
func (r *StudySessionRepo) ListSince(ctx context.Context, userID string, since time.Time) ([]models.StudySession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, subject, duration_minutes, date, notes
		FROM study_sessions
		WHERE user_id = $1 AND date >= $2
		ORDER BY date DESC
	`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStudySessions(rows)
}

func (r *StudySessionRepo) ListRecent(ctx context.Context, userID string, limit int) ([]models.StudySession, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, subject, duration_minutes, date, notes
		FROM study_sessions
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectStudySessions(rows)
}

func collectStudySessions(rows pgx.Rows) ([]models.StudySession, error) {
	sessions := []models.StudySession{}
	for rows.Next() {
		var s models.StudySession
		if err := rows.Scan(&s.ID, &s.UserID, &s.Subject, &s.DurationMinutes, &s.Date, &s.Notes); err != nil {
			return nil, err
		}
		s.Date = s.Date.UTC()
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
