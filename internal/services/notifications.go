package services

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"studymate-backend/internal/models"
)

const dueReminderBatch = 100

type dueReminderStore interface {
	ListDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error)
	MarkNotified(ctx context.Context, id string, at time.Time) error
}

// ReminderNotifier polls for reminders whose scheduled time has passed and
// pushes them to the owner's realtime channel exactly once.
type ReminderNotifier struct {
	reminders dueReminderStore
	publisher Publisher
	logger    *log.Logger
	interval  time.Duration
	now       func() time.Time

	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewReminderNotifier(reminders dueReminderStore, publisher Publisher, interval time.Duration, logger *log.Logger) *ReminderNotifier {
	return &ReminderNotifier{
		reminders: reminders,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
		now:       func() time.Time { return time.Now().UTC() },
		stopChan:  make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (n *ReminderNotifier) Start() {
	go n.loop()
	n.logger.Info("reminder notifier started", "interval", n.interval)
}

// Stop ends the loop and waits for an in-flight poll to finish.
func (n *ReminderNotifier) Stop() {
	n.stopOnce.Do(func() {
		close(n.stopChan)
	})
	<-n.done
}

func (n *ReminderNotifier) loop() {
	defer close(n.done)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-n.stopChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Run on startup as well as by interval.
	n.poll(ctx)

	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-n.stopChan:
			return
		case <-ticker.C:
			n.poll(ctx)
		}
	}
}

// poll publishes every due reminder and returns how many were delivered.
func (n *ReminderNotifier) poll(ctx context.Context) int {
	now := n.now()
	due, err := n.reminders.ListDue(ctx, now, dueReminderBatch)
	if err != nil {
		n.logger.Error("reminder notifier: failed to list due reminders", "err", err)
		return 0
	}

	delivered := 0
	for i := range due {
		rem := due[i]
		msg := models.WSMessage{Type: models.WSTypeReminderDue, Payload: rem}
		if err := n.publisher.Publish(ctx, rem.UserID, msg); err != nil {
			n.logger.Warn("reminder notifier: failed to publish", "reminder_id", rem.ID, "user_id", rem.UserID, "err", err)
			continue
		}
		if err := n.reminders.MarkNotified(ctx, rem.ID, now); err != nil {
			n.logger.Error("reminder notifier: failed to mark notified", "reminder_id", rem.ID, "err", err)
			continue
		}
		delivered++
	}

	if delivered > 0 {
		n.logger.Debug("reminder notifier: delivered reminders", "count", delivered)
	}
	return delivered
}
