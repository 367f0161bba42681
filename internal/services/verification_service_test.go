package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/plateup-dev/plateup/internal/database/testutil"
	"github.com/plateup-dev/plateup/internal/models"
)

func seedUnverifiedUser(t *testing.T, db *gorm.DB, email string, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "x",
		Role:         role,
		Status:       models.StatusEmailUnverified,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestIssueAndConsumeToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUnverifiedUser(t, db, "verify@example.com", models.RoleCustomer)

	current := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewVerificationService(db, nil,
		WithVerificationClock(func() time.Time { return current }),
		WithVerificationExpiry(12*time.Hour),
	)
	require.NoError(t, err)

	token, err := svc.IssueToken(context.Background(), user.ID, user.Email)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	var stored models.VerificationToken
	require.NoError(t, db.Where("token = ?", token).Take(&stored).Error)
	require.Equal(t, user.ID, stored.UserID)
	require.Nil(t, stored.UsedAt)
	require.Equal(t, current.Add(12*time.Hour), stored.ExpiresAt.UTC())

	verified, err := svc.ConsumeToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, user.ID, verified.ID)
	require.Equal(t, models.StatusEmailVerified, verified.Status)

	// Second consumption attempt fails, and the account stays verified.
	_, err = svc.ConsumeToken(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenInvalid)

	var reloaded models.User
	require.NoError(t, db.Take(&reloaded, "id = ?", user.ID).Error)
	require.Equal(t, models.StatusEmailVerified, reloaded.Status)
}

func TestConsumeUnknownToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	svc, err := NewVerificationService(db, nil)
	require.NoError(t, err)

	_, err = svc.ConsumeToken(context.Background(), "never-issued")
	require.ErrorIs(t, err, ErrTokenInvalid)

	_, err = svc.ConsumeToken(context.Background(), "")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestConsumeExpiredToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUnverifiedUser(t, db, "expired@example.com", models.RoleDriver)

	current := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewVerificationService(db, nil,
		WithVerificationClock(func() time.Time { return current }),
		WithVerificationExpiry(time.Hour),
	)
	require.NoError(t, err)

	token, err := svc.IssueToken(context.Background(), user.ID, user.Email)
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)

	_, err = svc.ConsumeToken(context.Background(), token)
	require.ErrorIs(t, err, ErrTokenInvalid)

	// The failed attempt must not have verified the account.
	var reloaded models.User
	require.NoError(t, db.Take(&reloaded, "id = ?", user.ID).Error)
	require.Equal(t, models.StatusEmailUnverified, reloaded.Status)
}

func TestExpiryErrorMatchesUnknownError(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUnverifiedUser(t, db, "uniform@example.com", models.RoleRestaurant)

	current := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewVerificationService(db, nil,
		WithVerificationClock(func() time.Time { return current }),
		WithVerificationExpiry(time.Hour),
	)
	require.NoError(t, err)

	token, err := svc.IssueToken(context.Background(), user.ID, user.Email)
	require.NoError(t, err)
	current = current.Add(2 * time.Hour)

	_, expiredErr := svc.ConsumeToken(context.Background(), token)
	_, unknownErr := svc.ConsumeToken(context.Background(), "never-issued")

	// Anti-enumeration: a caller cannot tell the two outcomes apart.
	require.Equal(t, unknownErr, expiredErr)
}

func TestReissueInvalidatesOutstandingToken(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUnverifiedUser(t, db, "resend@example.com", models.RoleCustomer)

	svc, err := NewVerificationService(db, nil)
	require.NoError(t, err)

	first, err := svc.IssueToken(context.Background(), user.ID, user.Email)
	require.NoError(t, err)
	second, err := svc.IssueToken(context.Background(), user.ID, user.Email)
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = svc.ConsumeToken(context.Background(), first)
	require.ErrorIs(t, err, ErrTokenInvalid)

	verified, err := svc.ConsumeToken(context.Background(), second)
	require.NoError(t, err)
	require.Equal(t, models.StatusEmailVerified, verified.Status)
}

func TestConsumeDoesNotRegressOnboardedAccount(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUnverifiedUser(t, db, "late-click@example.com", models.RoleDriver)

	svc, err := NewVerificationService(db, nil)
	require.NoError(t, err)

	token, err := svc.IssueToken(context.Background(), user.ID, user.Email)
	require.NoError(t, err)

	// The account finished onboarding through another path before the
	// verification link was clicked.
	require.NoError(t, db.Model(&models.User{}).
		Where("id = ?", user.ID).
		Update("status", models.StatusApproved).Error)

	verified, err := svc.ConsumeToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, verified.Status)
}

func TestConcurrentConsumptionClaimsExactlyOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	// SQLite cannot interleave writers; a single connection keeps the
	// driver from surfacing busy errors while the goroutines still race
	// for the conditional update.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	user := seedUnverifiedUser(t, db, "race@example.com", models.RoleCustomer)

	svc, err := NewVerificationService(db, nil)
	require.NoError(t, err)

	token, err := svc.IssueToken(context.Background(), user.ID, user.Email)
	require.NoError(t, err)

	const attempts = 8
	results := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = svc.ConsumeToken(context.Background(), token)
		}(i)
	}
	wg.Wait()

	var winners int
	for _, res := range results {
		if res == nil {
			winners++
		} else {
			require.ErrorIs(t, res, ErrTokenInvalid)
		}
	}
	require.Equal(t, 1, winners)

	var reloaded models.User
	require.NoError(t, db.Take(&reloaded, "id = ?", user.ID).Error)
	require.Equal(t, models.StatusEmailVerified, reloaded.Status)

	var spent models.VerificationToken
	require.NoError(t, db.Where("token = ?", token).Take(&spent).Error)
	require.NotNil(t, spent.UsedAt)
}

func TestCleanupExpiredRemovesSpentAndExpired(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	spender := seedUnverifiedUser(t, db, "spent@example.com", models.RoleCustomer)
	expirer := seedUnverifiedUser(t, db, "stale@example.com", models.RoleCustomer)
	holder := seedUnverifiedUser(t, db, "fresh@example.com", models.RoleCustomer)

	current := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewVerificationService(db, nil,
		WithVerificationClock(func() time.Time { return current }),
		WithVerificationExpiry(time.Hour),
	)
	require.NoError(t, err)

	spentToken, err := svc.IssueToken(context.Background(), spender.ID, spender.Email)
	require.NoError(t, err)
	_, err = svc.ConsumeToken(context.Background(), spentToken)
	require.NoError(t, err)

	staleToken, err := svc.IssueToken(context.Background(), expirer.ID, expirer.Email)
	require.NoError(t, err)

	current = current.Add(30 * time.Minute)
	freshToken, err := svc.IssueToken(context.Background(), holder.ID, holder.Email)
	require.NoError(t, err)

	current = current.Add(45 * time.Minute) // stale is expired, fresh is not

	purged, err := svc.CleanupExpired(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, purged)

	var remaining int64
	require.NoError(t, db.Model(&models.VerificationToken{}).
		Where("token IN ?", []string{spentToken, staleToken}).
		Count(&remaining).Error)
	require.Zero(t, remaining)

	var kept models.VerificationToken
	require.NoError(t, db.Where("token = ?", freshToken).Take(&kept).Error)
}
