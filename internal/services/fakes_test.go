package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"studymate-backend/internal/models"
)

var errStoreDown = errors.New("store unavailable")

type memUsers struct {
	mu      sync.Mutex
	byID    map[string]*models.User
	creates int
	// hidden users exist for uniqueness checks but are invisible to the
	// first GetByEmail, simulating a concurrent first login.
	hidden map[string]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}, hidden: map[string]*models.User{}}
}

func (m *memUsers) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.all() {
		if u.ID == user.ID || u.Email == user.Email {
			return &pgconn.PgError{Code: "23505"}
		}
	}
	user.CreatedAt = time.Now().UTC()
	cp := *user
	m.byID[user.ID] = &cp
	m.creates++
	return nil
}

func (m *memUsers) all() []*models.User {
	out := make([]*models.User, 0, len(m.byID)+len(m.hidden))
	for _, u := range m.byID {
		out = append(out, u)
	}
	for _, u := range m.hidden {
		out = append(out, u)
	}
	return out
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	// reveal racing users after the first miss
	for id, u := range m.hidden {
		delete(m.hidden, id)
		m.byID[id] = u
	}
	return nil, pgx.ErrNoRows
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

type memSessions struct {
	mu      sync.Mutex
	byToken map[string]*models.Session
	creates int
	getErr  error
}

func newMemSessions() *memSessions {
	return &memSessions{byToken: map[string]*models.Session{}}
}

func (m *memSessions) Create(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = "sess-" + s.SessionToken
	cp := *s
	m.byToken[s.SessionToken] = &cp
	m.creates++
	return nil
}

func (m *memSessions) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.byToken[token]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (m *memSessions) DeleteByToken(ctx context.Context, token string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byToken[token]; !ok {
		return 0, nil
	}
	delete(m.byToken, token)
	return 1, nil
}

type memActivities struct {
	mu        sync.Mutex
	entries   []models.ActivityLog
	createErr error
}

func (m *memActivities) Create(ctx context.Context, a *models.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	a.ID = "act-" + time.Now().Format("150405.000000000")
	m.entries = append(m.entries, *a)
	return nil
}

func (m *memActivities) ListRecent(ctx context.Context, userID string, limit int) ([]models.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ActivityLog
	for _, a := range m.entries {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type publishedMsg struct {
	userID string
	msg    models.WSMessage
}

type memPublisher struct {
	mu   sync.Mutex
	sent []publishedMsg
	err  error
}

func (p *memPublisher) Publish(ctx context.Context, userID string, msg models.WSMessage) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, publishedMsg{userID: userID, msg: msg})
	return nil
}

func (p *memPublisher) messages() []publishedMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedMsg(nil), p.sent...)
}

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }
