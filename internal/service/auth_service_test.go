package service

import (
	"context"
	"testing"

	"droseonline/internal/dto"
	"droseonline/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func seedLoginUser(users *stubUserRepo, email, password string, active bool) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &model.User{
		ID:           uuid.New(),
		Code:         "TE-000001",
		Role:         model.RoleTeacher,
		FirstName:    "Dina",
		LastName:     "Hassan",
		Email:        email,
		PasswordHash: string(hash),
		IsActive:     active,
	}
	users.users[u.ID] = u
	return u
}

func TestLogin(t *testing.T) {
	users := newStubUserRepo()
	seedLoginUser(users, "dina@droseonline.com", "s3cret", true)
	svc := NewAuthService(users, "test-secret", 24, 168)
	ctx := context.Background()

	resp, err := svc.Login(ctx, dto.LoginRequest{Email: "dina@droseonline.com", Password: "s3cret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, model.RoleTeacher, resp.User.Role)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "dina@droseonline.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@droseonline.com", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_InactiveUserRejected(t *testing.T) {
	users := newStubUserRepo()
	seedLoginUser(users, "gone@droseonline.com", "s3cret", false)
	svc := NewAuthService(users, "test-secret", 24, 168)

	_, err := svc.Login(context.Background(), dto.LoginRequest{Email: "gone@droseonline.com", Password: "s3cret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	users := newStubUserRepo()
	user := seedLoginUser(users, "dina@droseonline.com", "s3cret", true)
	svc := NewAuthService(users, "test-secret", 24, 168)
	ctx := context.Background()

	login, err := svc.Login(ctx, dto.LoginRequest{Email: "dina@droseonline.com", Password: "s3cret"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not a refresh token.
	_, err = svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: login.AccessToken})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Deactivation kills the refresh flow immediately.
	user.IsActive = false
	_, err = svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefresh_WrongSecretRejected(t *testing.T) {
	users := newStubUserRepo()
	seedLoginUser(users, "dina@droseonline.com", "s3cret", true)
	issuer := NewAuthService(users, "other-secret", 24, 168)
	svc := NewAuthService(users, "test-secret", 24, 168)
	ctx := context.Background()

	login, err := issuer.Login(ctx, dto.LoginRequest{Email: "dina@droseonline.com", Password: "s3cret"})
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, dto.RefreshRequest{RefreshToken: login.RefreshToken})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
