package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/prime-apparel/backend/internal/shared"
	"github.com/prime-apparel/backend/internal/users"
)

// UserPort exposes the user lookups the auth flows need.
type UserPort interface {
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByID(ctx context.Context, id int64) (*users.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// MailerPort delivers transactional mail, typically via the job queue.
type MailerPort interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo   UserPort
	tokens *JWTService
	otp    *OTPStore
	mailer MailerPort
}

// NewService constructs a new Service.
func NewService(repo UserPort, tokens *JWTService, otp *OTPStore, mailer MailerPort) *Service {
	return &Service{repo: repo, tokens: tokens, otp: otp, mailer: mailer}
}

// Login validates credentials and issues a token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*users.User, *TokenPair, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, shared.ErrInvalidCredentials
	}
	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil || !user.IsActive {
		return nil, shared.ErrUnauthorized
	}
	return s.tokens.GenerateTokenPair(user.ID, user.Email, string(user.Role))
}

// RequestPasswordReset issues an OTP and mails it. Unknown emails are
// silently ignored so the endpoint cannot be used for enumeration.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil
	}
	code, err := s.otp.Issue(ctx, user.Email)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("Your password reset code is %s. It expires shortly. If you did not request this, ignore this email.", code)
	return s.mailer.Send(ctx, user.Email, "Password reset code", body)
}

// VerifyPasswordReset checks the OTP and returns a single-use reset token.
func (s *Service) VerifyPasswordReset(ctx context.Context, email, code string) (string, error) {
	return s.otp.Verify(ctx, strings.ToLower(strings.TrimSpace(email)), code)
}

// ConfirmPasswordReset consumes the reset token and sets the new password.
func (s *Service) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < 8 {
		return shared.ErrValidation
	}
	email, err := s.otp.ConsumeResetToken(ctx, token)
	if err != nil {
		return err
	}
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return ErrResetTokenInvalid
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, user.ID, string(hash))
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < 8 {
		return shared.ErrValidation
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return shared.ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, user.ID, string(hash))
}
