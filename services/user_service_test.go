package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ecoChallengeAPI/internal/apperr"
	"ecoChallengeAPI/internal/session"
	"ecoChallengeAPI/internal/store"
	"ecoChallengeAPI/internal/user"
)

func newUserService(t *testing.T) (*UserService, *session.Manager) {
	t.Helper()
	sessions := session.NewManager("unit-test-secret", time.Hour, "eco-test", session.NewMemoryRevocationStore())
	return NewUserService(store.NewMemoryStore(), sessions, zap.NewNop()), sessions
}

func signupRequest() *user.SignupRequest {
	return &user.SignupRequest{
		FirstName: "Lena",
		LastName:  "Brook",
		Username:  "lena",
		Email:     "Lena@Example.com",
		Password:  "correct horse",
	}
}

func TestSignup(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	u, err := svc.Signup(ctx, signupRequest())
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, "lena@example.com", u.Email)
	assert.NotEqual(t, "correct horse", u.PasswordHash)
	assert.NotEmpty(t, u.PasswordHash)

	_, err = svc.Signup(ctx, signupRequest())
	assert.ErrorIs(t, err, store.ErrDuplicateUser)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	dup := signupRequest()
	dup.Username = "other"
	_, err = svc.Signup(ctx, dup)
	assert.ErrorIs(t, err, store.ErrDuplicateUser, "email is unique case-insensitively")
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newUserService(t)

	tests := []struct {
		name    string
		mutate  func(r *user.SignupRequest)
		message string
	}{
		{"missing first name", func(r *user.SignupRequest) { r.FirstName = "  " }, "firstName is required"},
		{"missing username", func(r *user.SignupRequest) { r.Username = "" }, "userName is required"},
		{"bad email", func(r *user.SignupRequest) { r.Email = "nope" }, "email must be a valid email address"},
		{"short password", func(r *user.SignupRequest) { r.Password = "abc" }, "password must be at least 8 characters"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := signupRequest()
			tt.mutate(req)
			_, err := svc.Signup(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
			assert.Equal(t, tt.message, apperr.PublicMessage(err))
		})
	}
}

func TestLoginAndLogout(t *testing.T) {
	svc, sessions := newUserService(t)
	ctx := context.Background()
	_, err := svc.Signup(ctx, signupRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, &user.LoginRequest{Email: "lena@example.com", Password: "wrong password"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, &user.LoginRequest{Email: "ghost@example.com", Password: "correct horse"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(ctx, &user.LoginRequest{Email: " LENA@example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, "lena", resp.User.Username)
	assert.NotEmpty(t, resp.Token)

	claims, err := sessions.Verify(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = sessions.Verify(ctx, resp.Token)
	assert.ErrorIs(t, err, session.ErrRevokedToken)
}

func TestDeleteWithCredentials(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()
	lena, err := svc.Signup(ctx, signupRequest())
	require.NoError(t, err)

	other := signupRequest()
	other.Username = "max"
	other.Email = "max@example.com"
	maxUser, err := svc.Signup(ctx, other)
	require.NoError(t, err)

	err = svc.DeleteWithCredentials(ctx, lena.ID, "max@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials, "credentials of another account do not delete this one")

	err = svc.DeleteWithCredentials(ctx, 99, "lena@example.com", "correct horse")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	require.NoError(t, svc.DeleteWithCredentials(ctx, lena.ID, "lena@example.com", "correct horse"))
	_, err = svc.GetUser(ctx, lena.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, maxUser.ID, users[0].ID)
}
