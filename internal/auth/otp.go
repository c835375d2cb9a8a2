package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const otpMaxAttempts = 5

var (
	// ErrOTPInvalid covers unknown email, wrong code, and expired code alike
	// so the response does not leak which one it was.
	ErrOTPInvalid = errors.New("invalid or expired code")
	// ErrResetTokenInvalid indicates the reset token is unknown or spent.
	ErrResetTokenInvalid = errors.New("invalid or expired reset token")
)

// OTPStore keeps one-time password-reset codes and the short-lived reset
// tokens issued after verification. Both live in Redis with a TTL.
type OTPStore struct {
	client   *redis.Client
	otpTTL   time.Duration
	resetTTL time.Duration
}

// NewOTPStore constructs the store.
func NewOTPStore(client *redis.Client, otpTTL, resetTTL time.Duration) *OTPStore {
	return &OTPStore{client: client, otpTTL: otpTTL, resetTTL: resetTTL}
}

func otpKey(email string) string {
	return "auth:otp:" + email
}

func otpAttemptsKey(email string) string {
	return "auth:otp:attempts:" + email
}

func resetKey(token string) string {
	return "auth:reset:" + token
}

// Issue generates a 6-digit code for the email, replacing any prior code.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, otpKey(email), code, s.otpTTL).Err(); err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, otpAttemptsKey(email), 0, s.otpTTL).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks the code for the email, consumes it on success, and returns
// a single-use reset token.
func (s *OTPStore) Verify(ctx context.Context, email, code string) (string, error) {
	attempts, err := s.client.Incr(ctx, otpAttemptsKey(email)).Result()
	if err != nil {
		return "", err
	}
	if attempts > otpMaxAttempts {
		// Burn the code once brute-force is suspected.
		_ = s.client.Del(ctx, otpKey(email)).Err()
		return "", ErrOTPInvalid
	}
	stored, err := s.client.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrOTPInvalid
		}
		return "", err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return "", ErrOTPInvalid
	}
	if err := s.client.Del(ctx, otpKey(email), otpAttemptsKey(email)).Err(); err != nil {
		return "", err
	}
	token := uuid.New().String()
	if err := s.client.Set(ctx, resetKey(token), email, s.resetTTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

// ConsumeResetToken exchanges a reset token for the email it was issued to.
// The token is deleted so it cannot be replayed.
func (s *OTPStore) ConsumeResetToken(ctx context.Context, token string) (string, error) {
	email, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrResetTokenInvalid
		}
		return "", err
	}
	return email, nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
