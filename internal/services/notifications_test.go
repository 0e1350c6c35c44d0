package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

type memDueReminders struct {
	mu        sync.Mutex
	reminders []models.Reminder
	gotLimit  int
	listErr   error
}

func (m *memDueReminders) ListDue(ctx context.Context, now time.Time, limit int) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotLimit = limit
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []models.Reminder
	for _, r := range m.reminders {
		if !r.Completed && r.NotifiedAt == nil && !r.ScheduledTime.After(now) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memDueReminders) MarkNotified(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.reminders {
		if m.reminders[i].ID == id {
			m.reminders[i].NotifiedAt = timePtr(at)
		}
	}
	return nil
}

func TestReminderNotifierPoll(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &memDueReminders{reminders: []models.Reminder{
		{ID: "due", UserID: "u-1", ScheduledTime: now.Add(-time.Minute)},
		{ID: "future", UserID: "u-1", ScheduledTime: now.Add(time.Hour)},
		{ID: "done", UserID: "u-2", ScheduledTime: now.Add(-time.Hour), Completed: true},
	}}
	pub := &memPublisher{}
	n := NewReminderNotifier(store, pub, time.Minute, logger.Discard())
	n.now = func() time.Time { return now }

	assert.Equal(t, 1, n.poll(context.Background()))
	assert.Equal(t, dueReminderBatch, store.gotLimit)

	sent := pub.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "u-1", sent[0].userID)
	assert.Equal(t, models.WSTypeReminderDue, sent[0].msg.Type)
	assert.Equal(t, "due", sent[0].msg.Payload.(models.Reminder).ID)

	// Already notified reminders are not sent again.
	assert.Zero(t, n.poll(context.Background()))
	assert.Len(t, pub.messages(), 1)
}

func TestReminderNotifierPoll_PublishFailureKeepsReminderPending(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &memDueReminders{reminders: []models.Reminder{
		{ID: "due", UserID: "u-1", ScheduledTime: now.Add(-time.Minute)},
	}}
	pub := &memPublisher{err: errStoreDown}
	n := NewReminderNotifier(store, pub, time.Minute, logger.Discard())
	n.now = func() time.Time { return now }

	assert.Zero(t, n.poll(context.Background()))
	assert.Nil(t, store.reminders[0].NotifiedAt)

	store.listErr = errStoreDown
	assert.Zero(t, n.poll(context.Background()))
}

func TestReminderNotifier_StartStop(t *testing.T) {
	store := &memDueReminders{reminders: []models.Reminder{
		{ID: "due", UserID: "u-1", ScheduledTime: time.Now().UTC().Add(-time.Minute)},
	}}
	pub := &memPublisher{}
	n := NewReminderNotifier(store, pub, time.Hour, logger.Discard())

	n.Start()
	require.Eventually(t, func() bool { return len(pub.messages()) == 1 }, time.Second, 10*time.Millisecond)
	n.Stop()
	n.Stop()
}
