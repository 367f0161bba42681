package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/plateup-dev/plateup/internal/models"
	"github.com/plateup-dev/plateup/pkg/crypto"
	"github.com/plateup-dev/plateup/pkg/metrics"
)

const (
	// DefaultSessionTTL is the fallback session lifetime, matching the
	// 30-day cookie the handlers set.
	DefaultSessionTTL = 30 * 24 * time.Hour

	defaultSessionTokenBytes = 32
)

// ErrSessionInvalid covers unknown and expired session tokens alike; callers
// cannot tell the two apart.
var ErrSessionInvalid = errors.New("session: invalid token")

// SessionConfig describes tunable behaviour for the SessionService.
type SessionConfig struct {
	TTL         time.Duration
	TokenLength int
	Clock       func() time.Time
}

// SessionService issues and resolves the opaque cookie tokens that carry a
// login between requests. The raw token is the sole credential; record ids
// never leave this package.
type SessionService struct {
	db       *gorm.DB
	ttl      time.Duration
	tokenLen int
	now      func() time.Time
}

// NewSessionService constructs a session manager backed by the provided database.
func NewSessionService(db *gorm.DB, cfg SessionConfig) (*SessionService, error) {
	if db == nil {
		return nil, errors.New("session service: db is required")
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	length := cfg.TokenLength
	if length <= 0 {
		length = defaultSessionTokenBytes
	}

	clock := time.Now
	if cfg.Clock != nil {
		clock = cfg.Clock
	}

	return &SessionService{
		db:       db,
		ttl:      ttl,
		tokenLen: length,
		now:      clock,
	}, nil
}

// Create issues a new session for the user and returns the raw token.
func (s *SessionService) Create(ctx context.Context, userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", errors.New("session service: user id is required")
	}

	token, err := crypto.GenerateToken(s.tokenLen)
	if err != nil {
		return "", fmt.Errorf("session service: generate token: %w", err)
	}

	session := &models.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: s.now().Add(s.ttl),
	}

	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return "", fmt.Errorf("session service: create session: %w", err)
	}

	metrics.ActiveSessions.Inc()

	return token, nil
}

// UserByToken resolves a session token to its user. Expired sessions behave
// exactly like nonexistent ones.
func (s *SessionService) UserByToken(ctx context.Context, token string) (*models.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrSessionInvalid
	}

	var session models.Session
	err := s.db.WithContext(ctx).Where("token = ?", token).Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("session service: find session: %w", err)
	}

	if !session.ExpiresAt.After(s.now()) {
		return nil, ErrSessionInvalid
	}

	var user models.User
	if err := s.db.WithContext(ctx).Take(&user, "id = ?", session.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Orphaned session; treat the credential as dead.
			return nil, ErrSessionInvalid
		}
		return nil, fmt.Errorf("session service: load user: %w", err)
	}

	return &user, nil
}

// DeleteByToken removes a session. Deleting a token that does not exist is
// not an error; logout is idempotent.
func (s *SessionService) DeleteByToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	result := s.db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("session service: delete session: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}

	return nil
}

// DeleteForUser removes every session belonging to a user, ending all of
// their logins at once.
func (s *SessionService) DeleteForUser(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return errors.New("session service: user id is required")
	}

	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("session service: delete user sessions: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}

	return nil
}

// CleanupExpired removes sessions past their expiry and reports how many
// rows were purged.
func (s *SessionService) CleanupExpired(ctx context.Context) (int64, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := s.db.WithContext(ctx).
		Where("expires_at < ?", s.now()).
		Delete(&models.Session{})
	if result.Error != nil {
		return 0, fmt.Errorf("session service: cleanup expired sessions: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		metrics.ActiveSessions.Sub(float64(result.RowsAffected))
	}

	return result.RowsAffected, nil
}
