package services

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"studymate-backend/internal/models"
)

type activityRepository interface {
	Create(ctx context.Context, a *models.ActivityLog) error
	ListRecent(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error)
}

// ActivityService appends audit rows and pushes them to the user's realtime
// channel. Recording is best effort: the action it describes has already
// been persisted, so failures are logged and swallowed.
type ActivityService struct {
	repo      activityRepository
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time
}

func NewActivityService(repo activityRepository, publisher Publisher, logger *log.Logger) *ActivityService {
	return &ActivityService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *ActivityService) Record(ctx context.Context, userID string, activityType models.ActivityType, description string) {
	if !activityType.Valid() {
		s.logger.Error("refusing to record unknown activity type", "user_id", userID, "type", activityType)
		return
	}

	entry := &models.ActivityLog{
		UserID:       userID,
		ActivityType: activityType,
		Description:  description,
		Timestamp:    s.now(),
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.Error("failed to record activity", "user_id", userID, "type", activityType, "err", err)
		return
	}

	if s.publisher == nil {
		return
	}
	msg := models.WSMessage{Type: models.WSTypeActivity, Payload: entry}
	if err := s.publisher.Publish(ctx, userID, msg); err != nil {
		s.logger.Warn("failed to publish activity", "user_id", userID, "err", err)
	}
}

func (s *ActivityService) Recent(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error) {
	return s.repo.ListRecent(ctx, userID, limit)
}
