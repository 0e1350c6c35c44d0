package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"studymate-backend/internal/middleware"
	"studymate-backend/internal/models"
)

type recordedActivity struct {
	userID       string
	activityType models.ActivityType
	description  string
}

type memRecorder struct {
	mu      sync.Mutex
	entries []recordedActivity
}

func (m *memRecorder) Record(ctx context.Context, userID string, activityType models.ActivityType, description string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, recordedActivity{userID, activityType, description})
}

type memQuizzes struct {
	mu      sync.Mutex
	quizzes map[string]*models.Quiz
	seq     int
}

func newMemQuizzes() *memQuizzes {
	return &memQuizzes{quizzes: map[string]*models.Quiz{}}
}

func (m *memQuizzes) Create(ctx context.Context, q *models.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	q.ID = "quiz-" + strconv.Itoa(m.seq)
	q.CreatedAt = time.Now().UTC()
	cp := *q
	m.quizzes[q.ID] = &cp
	return nil
}

func (m *memQuizzes) GetForUser(ctx context.Context, id, userID string) (*models.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok || q.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	cp := *q
	return &cp, nil
}

func (m *memQuizzes) ListByUser(ctx context.Context, userID string, limit int) ([]models.Quiz, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Quiz
	for _, q := range m.quizzes {
		if q.UserID == userID {
			out = append(out, *q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memQuizzes) Complete(ctx context.Context, id, userID string, score float64, completedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[id]
	if !ok || q.UserID != userID {
		return pgx.ErrNoRows
	}
	q.Score = &score
	q.CompletedAt = &completedAt
	return nil
}

type memStudySessions struct {
	mu        sync.Mutex
	sessions  []models.StudySession
	gotLimit  int
	createErr error
}

func (m *memStudySessions) Create(ctx context.Context, s *models.StudySession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	s.ID = "ss-" + strconv.Itoa(len(m.sessions)+1)
	m.sessions = append(m.sessions, *s)
	return nil
}

func (m *memStudySessions) ListRecent(ctx context.Context, userID string, limit int) ([]models.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gotLimit = limit
	var out []models.StudySession
	for _, s := range m.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

type memReminders struct {
	mu        sync.Mutex
	reminders map[string]*models.Reminder
	seq       int
}

func newMemReminders() *memReminders {
	return &memReminders{reminders: map[string]*models.Reminder{}}
}

func (m *memReminders) Create(ctx context.Context, rem *models.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	rem.ID = "rem-" + strconv.Itoa(m.seq)
	rem.CreatedAt = time.Now().UTC()
	cp := *rem
	m.reminders[rem.ID] = &cp
	return nil
}

func (m *memReminders) ListByUser(ctx context.Context, userID string) ([]models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Reminder
	for _, r := range m.reminders {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memReminders) Complete(ctx context.Context, id, userID string) (*models.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[id]
	if !ok || r.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	r.Completed = true
	cp := *r
	return &cp, nil
}

func (m *memReminders) Delete(ctx context.Context, id, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[id]
	if !ok || r.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(m.reminders, id)
	return nil
}

// asUser mounts the routes under a router that injects user, standing in
// for the session middleware.
func asUser(user *models.User, mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUser(req.Context(), user)))
		})
	})
	mount(r)
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), dst), rr.Body.String())
}
