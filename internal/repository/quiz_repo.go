package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studymate-backend/internal/models"
)

type QuizRepo struct {
	pool DBTX
}

func NewQuizRepo(pool DBTX) *QuizRepo {
	return &QuizRepo{pool: pool}
}

const quizColumns = `id, user_id, subject, questions, score, completed_at, created_at`

func (r *QuizRepo) Create(ctx context.Context, q *models.Quiz) error {
	q.ID = uuid.NewString()
	questions := []byte(q.Questions)
	if len(questions) == 0 {
		questions = []byte("[]")
	}

	query := `INSERT INTO quizzes (id, user_id, subject, questions)
		VALUES ($1, $2, $3, $4) RETURNING created_at`

	if err := r.pool.QueryRow(ctx, query, q.ID, q.UserID, q.Subject, questions).Scan(&q.CreatedAt); err != nil {
		return err
	}
	q.Questions = json.RawMessage(questions)
	q.CreatedAt = q.CreatedAt.UTC()
	return nil
}

// GetForUser loads a quiz only when it belongs to userID.
func (r *QuizRepo) GetForUser(ctx context.Context, id, userID string) (*models.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = $1 AND user_id = $2`
	return scanQuiz(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *QuizRepo) ListByUser(ctx context.Context, userID string, limit int) ([]models.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectQuizzes(rows)
}

// ListRecentlyCompleted returns scored quizzes, most recently completed first.
func (r *QuizRepo) ListRecentlyCompleted(ctx context.Context, userID string, limit int) ([]models.Quiz, error) {
	query := `SELECT ` + quizColumns + ` FROM quizzes
		WHERE user_id = $1 AND score IS NOT NULL
		ORDER BY completed_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectQuizzes(rows)
}

// Complete sets score and completed_at together. An already completed quiz
// is overwritten. Returns pgx.ErrNoRows when the quiz is not the user's.
func (r *QuizRepo) Complete(ctx context.Context, id, userID string, score float64, completedAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE quizzes SET score = $1, completed_at = $2 WHERE id = $3 AND user_id = $4",
		score, completedAt, id, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanQuiz(row rowScanner) (*models.Quiz, error) {
	q := &models.Quiz{}
	var questions []byte
	err := row.Scan(&q.ID, &q.UserID, &q.Subject, &questions, &q.Score, &q.CompletedAt, &q.CreatedAt)
	if err != nil {
		return nil, err
	}
	q.Questions = json.RawMessage(questions)
	q.CreatedAt = q.CreatedAt.UTC()
	if q.CompletedAt != nil {
		t := q.CompletedAt.UTC()
		q.CompletedAt = &t
	}
	return q, nil
}

func collectQuizzes(rows pgx.Rows) ([]models.Quiz, error) {
	quizzes := []models.Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}
