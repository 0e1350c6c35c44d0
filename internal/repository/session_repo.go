package repository

import (
	"context"

	"github.com/google/uuid"

	"studymate-backend/internal/models"
)

type SessionRepo struct {
	pool DBTX
}

func NewSessionRepo(pool DBTX) *SessionRepo {
	return &SessionRepo{pool: pool}
}

// Create stores a session. A token that is already stored is rebound to the
// new user and expiry so session_token stays unique.
func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	s.ID = uuid.NewString()

	query := `
		INSERT INTO sessions (id, user_id, session_token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_token) DO UPDATE
		SET user_id = EXCLUDED.user_id,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at
		RETURNING id`

	return r.pool.QueryRow(ctx, query, s.ID, s.UserID, s.SessionToken, s.ExpiresAt, s.CreatedAt).Scan(&s.ID)
}

func (r *SessionRepo) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	s := &models.Session{}
	query := `SELECT id, user_id, session_token, expires_at, created_at FROM sessions WHERE session_token = $1`

	err := r.pool.QueryRow(ctx, query, token).Scan(&s.ID, &s.UserID, &s.SessionToken, &s.ExpiresAt, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	s.ExpiresAt = s.ExpiresAt.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	return s, nil
}

func (r *SessionRepo) DeleteByToken(ctx context.Context, token string) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM sessions WHERE session_token = $1", token)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
