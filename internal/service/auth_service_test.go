package service

import (
	"testing"

	"gigmatch/config"
	"gigmatch/internal/domain"
	"gigmatch/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService(t *testing.T, e *env) *AuthService {
	t.Helper()
	cfg := config.Load()
	cfg.JWT.AccessSecret = "test-access-secret"
	cfg.JWT.RefreshSecret = "test-refresh-secret"
	return NewAuthService(cfg, repository.NewUserRepository(e.db))
}

func TestRegisterAndLogin(t *testing.T) {
	e := newEnv(t)
	svc := newAuthService(t, e)

	u, pair, err := svc.Register("band", "band@example.com", "hunter22", domain.RolePerformer)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, domain.RolePerformer, u.Role)
	assert.NotEqual(t, "hunter22", u.PasswordHash)

	logged, pair2, err := svc.Login("band@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	assert.NotEmpty(t, pair2.AccessToken)

	_, _, err = svc.Login("band@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	e := newEnv(t)
	svc := newAuthService(t, e)

	_, _, err := svc.Register("x", "x@example.com", "pw", "ADMIN")
	assert.Error(t, err)
}

func TestRefreshRotatesTokens(t *testing.T) {
	e := newEnv(t)
	svc := newAuthService(t, e)

	_, pair, err := svc.Register("club", "club@example.com", "pw123456", domain.RoleVenue)
	require.NoError(t, err)

	next, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	// An access token is not accepted as a refresh token.
	_, err = svc.Refresh(pair.AccessToken)
	assert.Error(t, err)
}
