package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibujohny/rentalAI/internal/constants"
	"github.com/bibujohny/rentalAI/internal/utils"
)

func TestRegisterRejectsDuplicateUsername(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewAuthService(repos.Users, repos.LoginAttempts)

	u, err := svc.Register(ctx, "  manager ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "manager", u.Username)
	assert.NotEqual(t, "secret", u.PasswordHash)

	_, err = svc.Register(ctx, "manager", "other")
	assert.ErrorIs(t, err, utils.ErrUsernameExists)
}

func TestLoginCredentials(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewAuthService(repos.Users, repos.LoginAttempts)
	_, err := svc.Register(ctx, "manager", "secret")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "manager", "secret")
	require.NoError(t, err)
	assert.Equal(t, "manager", u.Username)

	_, err = svc.Login(ctx, "manager", "wrong")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "secret")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewAuthService(repos.Users, repos.LoginAttempts)
	_, err := svc.Register(ctx, "manager", "secret")
	require.NoError(t, err)

	for i := 0; i < constants.MaxLoginAttempts; i++ {
		_, err = svc.Login(ctx, "manager", "wrong")
		require.ErrorIs(t, err, utils.ErrInvalidCredentials)
	}

	_, err = svc.Login(ctx, "manager", "secret")
	assert.ErrorIs(t, err, utils.ErrLockedAccount)
}

func TestLoginSuccessResetsFailures(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	svc := NewAuthService(repos.Users, repos.LoginAttempts)
	u, err := svc.Register(ctx, "manager", "secret")
	require.NoError(t, err)

	for i := 0; i < constants.MaxLoginAttempts-1; i++ {
		_, _ = svc.Login(ctx, "manager", "wrong")
	}
	_, err = svc.Login(ctx, "manager", "secret")
	require.NoError(t, err)

	la, err := repos.LoginAttempts.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, la)
}

func TestSessionIssueAndParse(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	u, err := NewAuthService(repos.Users, repos.LoginAttempts).Register(ctx, "manager", "secret")
	require.NoError(t, err)

	svc, err := NewSessionService("test-secret", time.Hour)
	require.NoError(t, err)
	token, err := svc.Issue(u)
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "manager", claims.Username)

	other, err := NewSessionService("another-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.Parse(token)
	assert.Error(t, err)
}

func TestSessionExpired(t *testing.T) {
	ctx := context.Background()
	repos := newRepos()
	u, err := NewAuthService(repos.Users, repos.LoginAttempts).Register(ctx, "manager", "secret")
	require.NoError(t, err)

	svc, err := NewSessionService("test-secret", time.Minute)
	require.NoError(t, err)
	impl := svc.(*sessionService)
	impl.now = fixedNow(time.Now().Add(-time.Hour))
	token, err := svc.Issue(u)
	require.NoError(t, err)

	impl.now = time.Now
	_, err = svc.Parse(token)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestNewSessionServiceRequiresSecret(t *testing.T) {
	_, err := NewSessionService("", time.Hour)
	assert.Error(t, err)
	_, err = NewSessionService("x", 0)
	assert.Error(t, err)
}
