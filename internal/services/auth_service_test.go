package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"gocast_backend/internal/auth"
	"gocast_backend/internal/repositories"
	"gocast_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBlacklist struct {
	revoked map[string]time.Time
}

func (m *memBlacklist) Revoke(_ context.Context, jti string, exp time.Time) error {
	m.revoked[jti] = exp
	return nil
}

func (m *memBlacklist) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}

func TestAuthService_RegisterLoginVerify(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	tokens := auth.NewTokenManager("secret", "gocast", time.Hour)
	svc := NewAuthService(repositories.NewAdminRepository(), tokens, nil)

	admin, err := svc.Register(ctx, db, &dto.RegisterRequest{Username: "casting", Password: "s3cret!"})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret!", admin.PasswordHash)

	_, err = svc.Register(ctx, db, &dto.RegisterRequest{Username: "casting", Password: "another1"})
	requireHTTPCode(t, err, http.StatusConflict)

	_, err = svc.Register(ctx, db, &dto.RegisterRequest{Username: "short", Password: "123"})
	requireHTTPCode(t, err, http.StatusBadRequest)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Username: "casting", Password: "wrong"})
	requireHTTPCode(t, err, http.StatusUnauthorized)

	_, err = svc.Login(ctx, db, &dto.LoginRequest{Username: "nobody", Password: "s3cret!"})
	requireHTTPCode(t, err, http.StatusUnauthorized)

	resp, err := svc.Login(ctx, db, &dto.LoginRequest{Username: "casting", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resp.User.ID)

	claims, err := tokens.Parse(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)

	verify, err := svc.Verify(ctx, db, claims.UserID)
	require.NoError(t, err)
	assert.True(t, verify.Valid)
	assert.Equal(t, "casting", verify.User.Username)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	claims := auth.Claims{JTI: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}

	withoutRedis := NewAuthService(repositories.NewAdminRepository(), auth.NewTokenManager("s", "", 0), nil)
	assert.NoError(t, withoutRedis.Logout(ctx, claims))

	bl := &memBlacklist{revoked: map[string]time.Time{}}
	svc := NewAuthService(repositories.NewAdminRepository(), auth.NewTokenManager("s", "", 0), bl)
	require.NoError(t, svc.Logout(ctx, claims))
	revoked, _ := bl.IsRevoked(ctx, "jti-1")
	assert.True(t, revoked)
}

func TestAuthService_SeedAdminIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewAuthService(repositories.NewAdminRepository(), auth.NewTokenManager("s", "", 0), nil)

	require.NoError(t, svc.SeedAdmin(ctx, db, "admin", "admin123"))
	require.NoError(t, svc.SeedAdmin(ctx, db, "admin", "different"))

	_, err := svc.Login(ctx, db, &dto.LoginRequest{Username: "admin", Password: "admin123"})
	assert.NoError(t, err)

	assert.NoError(t, svc.SeedAdmin(ctx, db, "", ""))
}
