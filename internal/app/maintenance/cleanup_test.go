package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/plateup-dev/plateup/internal/auth"
	"github.com/plateup-dev/plateup/internal/database/testutil"
	"github.com/plateup-dev/plateup/internal/models"
	"github.com/plateup-dev/plateup/internal/services"
)

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleCustomer,
		Status:       models.StatusEmailUnverified,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestRunOncePurgesExpiredRecords(t *testing.T) {
	db := testutil.MustOpenTestDB(t)
	user := seedUser(t, db, "maintenance@example.com")

	now := time.Now().UTC()
	require.NoError(t, db.Create(&models.Session{
		UserID:    user.ID,
		Token:     "expired-session",
		ExpiresAt: now.Add(-time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.Session{
		UserID:    user.ID,
		Token:     "live-session",
		ExpiresAt: now.Add(time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.VerificationToken{
		UserID:    user.ID,
		Token:     "expired-token",
		ExpiresAt: now.Add(-time.Hour),
	}).Error)
	require.NoError(t, db.Create(&models.VerificationToken{
		UserID:    user.ID,
		Token:     "live-token",
		ExpiresAt: now.Add(time.Hour),
	}).Error)

	sessions, err := iauth.NewSessionService(db, iauth.SessionConfig{})
	require.NoError(t, err)
	verifications, err := services.NewVerificationService(db, nil)
	require.NoError(t, err)

	cleaner := NewCleaner(sessions, verifications)
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var sessionCount int64
	require.NoError(t, db.Model(&models.Session{}).Count(&sessionCount).Error)
	require.Equal(t, int64(1), sessionCount)

	var tokenCount int64
	require.NoError(t, db.Model(&models.VerificationToken{}).Count(&tokenCount).Error)
	require.Equal(t, int64(1), tokenCount)

	var remaining models.Session
	require.NoError(t, db.First(&remaining).Error)
	require.Equal(t, "live-session", remaining.Token)
}

func TestRunOnceWithoutServicesIsNoop(t *testing.T) {
	cleaner := NewCleaner(nil, nil)
	require.NoError(t, cleaner.RunOnce(context.Background()))
}

func TestStartAndStopWithCustomSchedules(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	sessions, err := iauth.NewSessionService(db, iauth.SessionConfig{})
	require.NoError(t, err)
	verifications, err := services.NewVerificationService(db, nil)
	require.NoError(t, err)

	cleaner := NewCleaner(sessions, verifications,
		WithSessionSchedule("@every 1h"),
		WithTokenSchedule("@every 24h"),
	)
	require.NoError(t, cleaner.Start())

	done := cleaner.Stop()
	select {
	case <-done.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}

func TestStartRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t)

	sessions, err := iauth.NewSessionService(db, iauth.SessionConfig{})
	require.NoError(t, err)

	cleaner := NewCleaner(sessions, nil, WithSessionSchedule("not-a-schedule"))
	require.Error(t, cleaner.Start())
}
