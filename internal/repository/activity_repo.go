package repository

import (
	"context"

	"github.com/google/uuid"

	"studymate-backend/internal/models"
)

type ActivityRepo struct {
	pool DBTX
}

func NewActivityRepo(pool DBTX) *ActivityRepo {
	return &ActivityRepo{pool: pool}
}

func (r *ActivityRepo) Create(ctx context.Context, a *models.ActivityLog) error {
	a.ID = uuid.NewString()

	_, err := r.pool.Exec(ctx, `
		INSERT INTO activity_logs (id, user_id, activity_type, description, timestamp)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.UserID, string(a.ActivityType), a.Description, a.Timestamp)
	return err
}

// ListRecent returns the user's newest activity rows first.
func (r *ActivityRepo) ListRecent(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, activity_type, description, timestamp
		FROM activity_logs
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []models.ActivityLog{}
	for rows.Next() {
		var a models.ActivityLog
		var activityType string
		if err := rows.Scan(&a.ID, &a.UserID, &activityType, &a.Description, &a.Timestamp); err != nil {
			return nil, err
		}
		a.ActivityType = models.ActivityType(activityType)
		a.Timestamp = a.Timestamp.UTC()
		logs = append(logs, a)
	}
	return logs, rows.Err()
}
