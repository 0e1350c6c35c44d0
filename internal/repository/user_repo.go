package repository

import (
	"context"

	"studymate-backend/internal/models"
)

type UserRepo struct {
	pool DBTX
}

func NewUserRepo(pool DBTX) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, email, name, picture, created_at, streak_days, total_study_hours`

// Create inserts a user whose id was asserted by the identity provider.
func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, picture)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, streak_days, total_study_hours`

	return r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.Name, user.Picture,
	).Scan(&user.CreatedAt, &user.StreakDays, &user.TotalStudyHours)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Name, &user.Picture,
		&user.CreatedAt, &user.StreakDays, &user.TotalStudyHours,
	)
	if err != nil {
		return nil, err
	}
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
