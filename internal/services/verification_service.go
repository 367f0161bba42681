package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/plateup-dev/plateup/internal/models"
	"github.com/plateup-dev/plateup/pkg/crypto"
	"github.com/plateup-dev/plateup/pkg/logger"
	"github.com/plateup-dev/plateup/pkg/mail"
	"github.com/plateup-dev/plateup/pkg/metrics"
)

const (
	defaultVerificationExpiry     = 24 * time.Hour
	defaultVerificationTokenBytes = 32
)

// ErrTokenInvalid is the single outcome for every failed consumption:
// unknown, expired and already-used tokens are deliberately
// indistinguishable so responses cannot be used to probe token state.
var ErrTokenInvalid = errors.New("verification: invalid token")

// VerificationOption customises the VerificationService.
type VerificationOption func(*VerificationService)

// WithVerificationBaseURL sets the base URL used in verification links.
func WithVerificationBaseURL(url string) VerificationOption {
	return func(s *VerificationService) {
		s.baseURL = strings.TrimRight(url, "/")
	}
}

// WithVerificationExpiry overrides the token lifetime.
func WithVerificationExpiry(d time.Duration) VerificationOption {
	return func(s *VerificationService) {
		if d > 0 {
			s.expiry = d
		}
	}
}

// WithVerificationTokenSize adjusts the number of random bytes in generated tokens.
func WithVerificationTokenSize(size int) VerificationOption {
	return func(s *VerificationService) {
		if size > 0 {
			s.tokenLength = size
		}
	}
}

// WithVerificationClock injects a custom time source.
func WithVerificationClock(clock func() time.Time) VerificationOption {
	return func(s *VerificationService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// VerificationService issues single-use email verification tokens and
// consumes them exactly once.
type VerificationService struct {
	db          *gorm.DB
	mailer      mail.Mailer
	baseURL     string
	expiry      time.Duration
	tokenLength int
	now         func() time.Time
}

// NewVerificationService constructs a verification service with the provided dependencies.
func NewVerificationService(db *gorm.DB, mailer mail.Mailer, opts ...VerificationOption) (*VerificationService, error) {
	if db == nil {
		return nil, errors.New("verification service: db is required")
	}

	service := &VerificationService{
		db:          db,
		mailer:      mailer,
		expiry:      defaultVerificationExpiry,
		tokenLength: defaultVerificationTokenBytes,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// IssueToken creates a fresh verification token for the user and dispatches
// the verification email when a mailer is configured. Issuing a new token
// replaces any outstanding ones for the same user.
func (s *VerificationService) IssueToken(ctx context.Context, userID, email string) (string, error) {
	userID = strings.TrimSpace(userID)
	email = strings.TrimSpace(strings.ToLower(email))
	if userID == "" {
		return "", errors.New("verification service: user id is required")
	}
	if email == "" {
		return "", errors.New("verification service: email is required")
	}

	token, err := crypto.GenerateToken(s.tokenLength)
	if err != nil {
		return "", fmt.Errorf("verification service: generate token: %w", err)
	}

	record := models.VerificationToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: s.now().Add(s.expiry),
	}

	if err := s.db.WithContext(ctx).
		Where("user_id = ? AND used_at IS NULL", userID).
		Delete(&models.VerificationToken{}).Error; err != nil {
		return "", fmt.Errorf("verification service: cleanup existing: %w", err)
	}

	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return "", fmt.Errorf("verification service: create token: %w", err)
	}

	if s.mailer != nil {
		message := mail.Message{
			To:      email,
			Subject: "Confirm your PlateUp account",
			Body:    s.verificationBody(s.verificationLink(token)),
		}
		if mailErr := s.mailer.Send(ctx, message); mailErr != nil && !errors.Is(mailErr, mail.ErrSMTPDisabled) {
			return "", fmt.Errorf("verification service: send email: %w", mailErr)
		}
	}

	return token, nil
}

// ConsumeToken claims a verification token exactly once and marks the owning
// account's email as verified. Of N concurrent calls with the same token, at
// most one succeeds; every other call, and every call with an unknown,
// expired or spent token, reports ErrTokenInvalid.
func (s *VerificationService) ConsumeToken(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	var record models.VerificationToken
	if err := s.db.WithContext(ctx).
		Where("token = ?", token).
		Take(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.VerificationOutcomes.WithLabelValues("rejected").Inc()
			return nil, ErrTokenInvalid
		}
		return nil, fmt.Errorf("verification service: find token: %w", err)
	}

	now := s.now()

	// The conditional update is the race-safety boundary: only the request
	// whose UPDATE matches a row owns the token. Re-checking used_at and
	// expires_at in the WHERE clause closes the window a plain
	// read-then-write would leave open.
	claim := s.db.WithContext(ctx).
		Model(&models.VerificationToken{}).
		Where("id = ? AND used_at IS NULL AND expires_at > ?", record.ID, now).
		Update("used_at", now)
	if claim.Error != nil {
		return nil, fmt.Errorf("verification service: claim token: %w", claim.Error)
	}
	if claim.RowsAffected == 0 {
		logger.WithModule("verification").Debug("token rejected",
			zap.Bool("used", record.UsedAt != nil),
			zap.Bool("expired", !record.ExpiresAt.After(now)),
		)
		metrics.VerificationOutcomes.WithLabelValues("rejected").Inc()
		return nil, ErrTokenInvalid
	}

	// Only the claim winner reaches this point. The status write is guarded
	// so a stale link cannot regress an account that moved on.
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND status = ?", record.UserID, models.StatusEmailUnverified).
		Update("status", models.StatusEmailVerified).Error; err != nil {
		return nil, fmt.Errorf("verification service: mark verified: %w", err)
	}

	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "id = ?", record.UserID).Error; err != nil {
		return nil, fmt.Errorf("verification service: load user: %w", err)
	}

	metrics.VerificationOutcomes.WithLabelValues("consumed").Inc()

	return &user, nil
}

// CleanupExpired removes tokens past their expiry along with spent tokens,
// reporting how many rows were purged.
func (s *VerificationService) CleanupExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Or("used_at IS NOT NULL").
		Delete(&models.VerificationToken{})
	if result.Error != nil {
		return 0, fmt.Errorf("verification service: cleanup expired tokens: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (s *VerificationService) verificationLink(token string) string {
	if s.baseURL == "" {
		return token
	}
	return fmt.Sprintf("%s/auth/verify?token=%s", s.baseURL, token)
}

func (s *VerificationService) verificationBody(link string) string {
	return fmt.Sprintf("Welcome to PlateUp!\n\nPlease confirm your email address by visiting the link below:\n%s\n\nIf you did not create an account, you can ignore this message.\n", link)
}
