package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"studymate-backend/internal/models"
)

type ReminderRepo struct {
	pool DBTX
}

func NewReminderRepo(pool DBTX) *ReminderRepo {
	return &ReminderRepo{pool: pool}
}

const reminderColumns = `id, user_id, title, description, scheduled_time, completed, notified_at, created_at`

func (r *ReminderRepo) Create(ctx context.Context, rem *models.Reminder) error {
	rem.ID = uuid.NewString()

	query := `INSERT INTO reminders (id, user_id, title, description, scheduled_time, completed)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at`

	if err := r.pool.QueryRow(ctx, query,
		rem.ID, rem.UserID, rem.Title, rem.Description, rem.ScheduledTime, rem.Completed,
	).Scan(&rem.CreatedAt); err != nil {
		return err
	}
	rem.CreatedAt = rem.CreatedAt.UTC()
	return nil
}

func (r *ReminderRepo) ListByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+reminderColumns+` FROM reminders WHERE user_id = $1 ORDER BY scheduled_time ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

// ListUpcoming returns incomplete reminders scheduled at or after now, soonest first.
func (r *ReminderRepo) ListUpcoming(ctx context.Context, userID string, now time.Time, limit int) ([]models.Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderColumns+` FROM reminders
		WHERE user_id = $1 AND completed = FALSE AND scheduled_time >= $2
		ORDER BY scheduled_time ASC
		LIMIT $3
	`, userID, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

// ListDue returns reminders across all users that are past due and have not
// been announced yet.
func (r *ReminderRepo) ListDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reminderColumns+` FROM reminders
		WHERE completed = FALSE AND notified_at IS NULL AND scheduled_time <= $1
		ORDER BY scheduled_time ASC
		LIMIT $2
	`, now, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReminders(rows)
}

func (r *ReminderRepo) MarkNotified(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, "UPDATE reminders SET notified_at = $1 WHERE id = $2", at, id)
	return err
}

// Complete flags the user's reminder as done. Returns pgx.ErrNoRows when the
// reminder is not the user's.
func (r *ReminderRepo) Complete(ctx context.Context, id, userID string) (*models.Reminder, error) {
	return scanReminder(r.pool.QueryRow(ctx, `
		UPDATE reminders SET completed = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING `+reminderColumns, id, userID))
}

func (r *ReminderRepo) Delete(ctx context.Context, id, userID string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM reminders WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanReminder(row rowScanner) (*models.Reminder, error) {
	rem := &models.Reminder{}
	err := row.Scan(&rem.ID, &rem.UserID, &rem.Title, &rem.Description, &rem.ScheduledTime,
		&rem.Completed, &rem.NotifiedAt, &rem.CreatedAt)
	if err != nil {
		return nil, err
	}
	rem.ScheduledTime = rem.ScheduledTime.UTC()
	rem.CreatedAt = rem.CreatedAt.UTC()
	if rem.NotifiedAt != nil {
		t := rem.NotifiedAt.UTC()
		rem.NotifiedAt = &t
	}
	return rem, nil
}

func collectReminders(rows pgx.Rows) ([]models.Reminder, error) {
	reminders := []models.Reminder{}
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		reminders = append(reminders, *rem)
	}
	return reminders, rows.Err()
}
