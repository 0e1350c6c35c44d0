package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studymate-backend/internal/logger"
	"studymate-backend/internal/models"
)

func newTestAuth(now time.Time) (*AuthService, *memUsers, *memSessions) {
	users := newMemUsers()
	sessions := newMemSessions()
	svc := NewAuthService(users, sessions, logger.Discard())
	svc.now = func() time.Time { return now }
	return svc, users, sessions
}

func loginReq(token, id, email, name string) models.LoginRequest {
	return models.LoginRequest{
		SessionToken: token,
		UserData:     models.LoginUserData{ID: id, Email: email, Name: name},
	}
}

func TestLogin_NewEmailCreatesUserAndSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, users, sessions := newTestAuth(now)

	user, err := svc.Login(context.Background(), loginReq("tok-1", "u-1", "ada@example.com", "Ada"))
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "Ada", user.Name)

	assert.Equal(t, 1, users.creates)
	assert.Equal(t, 1, sessions.creates)

	stored := sessions.byToken["tok-1"]
	require.NotNil(t, stored)
	assert.Equal(t, "u-1", stored.UserID)
	assert.Equal(t, now.Add(SessionTTL), stored.ExpiresAt)
}

func TestLogin_ExistingEmailReusesUser(t *testing.T) {
	svc, users, sessions := newTestAuth(time.Now().UTC())
	ctx := context.Background()

	_, err := svc.Login(ctx, loginReq("tok-1", "u-1", "ada@example.com", "Ada"))
	require.NoError(t, err)

	// A second login with different profile data keeps the first write.
	user, err := svc.Login(ctx, loginReq("tok-2", "u-other", "ada@example.com", "Ada Lovelace"))
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "Ada", user.Name)

	assert.Equal(t, 1, users.creates)
	assert.Equal(t, 2, sessions.creates)
}

func TestLogin_ValidationFailure(t *testing.T) {
	svc, users, sessions := newTestAuth(time.Now().UTC())

	_, err := svc.Login(context.Background(), loginReq("", "u-1", " ", ""))
	require.Error(t, err)

	svcErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Contains(t, svcErr.Fields, "session_token")
	assert.Contains(t, svcErr.Fields, "user_data.email")
	assert.Contains(t, svcErr.Fields, "user_data.name")
	assert.NotContains(t, svcErr.Fields, "user_data.id")

	assert.Zero(t, users.creates)
	assert.Zero(t, sessions.creates)
}

func TestLogin_ConcurrentCreateReadsWinner(t *testing.T) {
	svc, users, _ := newTestAuth(time.Now().UTC())
	users.hidden["u-winner"] = &models.User{ID: "u-winner", Email: "ada@example.com", Name: "Ada"}

	user, err := svc.Login(context.Background(), loginReq("tok-1", "u-loser", "ada@example.com", "Ada"))
	require.NoError(t, err)
	assert.Equal(t, "u-winner", user.ID)
	assert.Zero(t, users.creates)
}

func TestLogin_IDTakenByOtherEmail(t *testing.T) {
	svc, users, _ := newTestAuth(time.Now().UTC())
	users.byID["u-1"] = &models.User{ID: "u-1", Email: "first@example.com", Name: "First"}

	_, err := svc.Login(context.Background(), loginReq("tok-1", "u-1", "second@example.com", "Second"))
	svcErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindValidation, svcErr.Kind)
	assert.Contains(t, svcErr.Fields, "user_data.id")
}

func TestAuthenticate_ValidSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _ := newTestAuth(now)
	ctx := context.Background()

	_, err := svc.Login(ctx, loginReq("tok-1", "u-1", "ada@example.com", "Ada"))
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestAuthenticate_Failures(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, _, sessions := newTestAuth(now)
	ctx := context.Background()

	sessions.byToken["orphan"] = &models.Session{ID: "s-1", UserID: "missing", SessionToken: "orphan", ExpiresAt: now.Add(time.Hour)}

	tests := []struct {
		name  string
		token string
		want  *Error
	}{
		{"no token", "", ErrNoSessionToken},
		{"unknown token", "nope", ErrInvalidSession},
		{"user gone", "orphan", ErrUserNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Authenticate(ctx, tc.token)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAuthenticate_ExpiredSessionIsDeleted(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, users, sessions := newTestAuth(now)
	ctx := context.Background()

	users.byID["u-1"] = &models.User{ID: "u-1", Email: "ada@example.com", Name: "Ada"}
	sessions.byToken["old"] = &models.Session{ID: "s-1", UserID: "u-1", SessionToken: "old", ExpiresAt: now.Add(-time.Second)}

	_, err := svc.Authenticate(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.NotContains(t, sessions.byToken, "old")

	_, err = svc.Authenticate(ctx, "old")
	assert.ErrorIs(t, err, ErrInvalidSession)
	svcErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, KindUnauthorized, svcErr.Kind)
}

func TestAuthenticate_StoreErrorIsNotUnauthorized(t *testing.T) {
	svc, _, sessions := newTestAuth(time.Now().UTC())
	sessions.getErr = errStoreDown

	_, err := svc.Authenticate(context.Background(), "tok")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errStoreDown))
	_, ok := AsError(err)
	assert.False(t, ok)
}

func TestLogout_DeletesSession(t *testing.T) {
	svc, _, sessions := newTestAuth(time.Now().UTC())
	ctx := context.Background()

	_, err := svc.Login(ctx, loginReq("tok-1", "u-1", "ada@example.com", "Ada"))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "tok-1"))
	assert.Empty(t, sessions.byToken)

	require.NoError(t, svc.Logout(ctx, ""))
	require.NoError(t, svc.Logout(ctx, "tok-1"))

	_, err = svc.Authenticate(ctx, "tok-1")
	assert.ErrorIs(t, err, ErrInvalidSession)
}
