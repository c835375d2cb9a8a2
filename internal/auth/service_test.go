package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/prime-apparel/backend/internal/shared"
	"github.com/prime-apparel/backend/internal/users"
)

type fakeUserRepo struct {
	byEmail map[string]*users.User
	byID    map[int64]*users.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*users.User{}, byID: map[int64]*users.User{}}
}

func (r *fakeUserRepo) add(u users.User) {
	copied := u
	r.byEmail[u.Email] = &copied
	r.byID[u.ID] = &copied
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*users.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id int64) (*users.User, error) {
	u, ok := r.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	u, ok := r.byID[id]
	if !ok {
		return shared.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

type fakeMailer struct {
	to      []string
	bodies  []string
	subject []string
}

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.to = append(m.to, to)
	m.subject = append(m.subject, subject)
	m.bodies = append(m.bodies, body)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *fakeMailer) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newFakeUserRepo()
	tokens := newTestJWTService(15 * time.Minute)
	otp := NewOTPStore(client, 10*time.Minute, 15*time.Minute)
	mailer := &fakeMailer{}
	return NewService(repo, tokens, otp, mailer), repo, mailer
}

func seedAccount(t *testing.T, repo *fakeUserRepo, email, password string, active bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	repo.add(users.User{
		ID:           int64(len(repo.byID) + 1),
		Email:        email,
		Role:         users.RoleSeller,
		PasswordHash: string(hash),
		IsActive:     active,
	})
}

func TestLogin(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedAccount(t, repo, "seller@example.com", "hunter2hunter2", true)
	ctx := context.Background()

	user, pair, err := svc.Login(ctx, "  Seller@Example.COM ", "hunter2hunter2")
	require.NoError(t, err)
	require.Equal(t, "seller@example.com", user.Email)
	require.NotEmpty(t, pair.AccessToken)

	_, _, err = svc.Login(ctx, "seller@example.com", "wrong-password")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedAccount(t, repo, "gone@example.com", "hunter2hunter2", false)

	_, _, err := svc.Login(context.Background(), "gone@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRefresh(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedAccount(t, repo, "seller@example.com", "hunter2hunter2", true)
	ctx := context.Background()

	_, pair, err := svc.Login(ctx, "seller@example.com", "hunter2hunter2")
	require.NoError(t, err)

	fresh, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, fresh.AccessToken)

	// Access tokens are not accepted as refresh tokens.
	_, err = svc.Refresh(ctx, pair.AccessToken)
	require.Error(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, repo, mailer := newTestService(t)
	seedAccount(t, repo, "seller@example.com", "hunter2hunter2", true)
	ctx := context.Background()

	require.NoError(t, svc.RequestPasswordReset(ctx, "seller@example.com"))
	require.Len(t, mailer.to, 1)
	require.Equal(t, "seller@example.com", mailer.to[0])

	// Pull the 6-digit code out of the mail body.
	body := mailer.bodies[0]
	fields := strings.Fields(body)
	var code string
	for _, f := range fields {
		trimmed := strings.TrimSuffix(f, ".")
		if len(trimmed) == 6 && strings.IndexFunc(trimmed, func(r rune) bool { return r < '0' || r > '9' }) == -1 {
			code = trimmed
			break
		}
	}
	require.NotEmpty(t, code, "reset code not found in mail body %q", body)

	token, err := svc.VerifyPasswordReset(ctx, "seller@example.com", code)
	require.NoError(t, err)

	require.NoError(t, svc.ConfirmPasswordReset(ctx, token, "new-password-1"))

	_, _, err = svc.Login(ctx, "seller@example.com", "hunter2hunter2")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "seller@example.com", "new-password-1")
	require.NoError(t, err)
}

func TestRequestPasswordResetUnknownEmail(t *testing.T) {
	svc, _, mailer := newTestService(t)

	// Unknown emails succeed silently and send nothing.
	require.NoError(t, svc.RequestPasswordReset(context.Background(), "nobody@example.com"))
	require.Empty(t, mailer.to)
}

func TestConfirmPasswordResetRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestService(t)
	err := svc.ConfirmPasswordReset(context.Background(), "any-token", "short")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestChangePassword(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedAccount(t, repo, "seller@example.com", "hunter2hunter2", true)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, 1, "wrong-current", "next-password-1")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)

	err = svc.ChangePassword(ctx, 1, "hunter2hunter2", "short")
	require.ErrorIs(t, err, shared.ErrValidation)

	require.NoError(t, svc.ChangePassword(ctx, 1, "hunter2hunter2", "next-password-1"))
	_, _, err = svc.Login(ctx, "seller@example.com", "next-password-1")
	require.NoError(t, err)
}
