package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vims-insurance/admin-api/internal/models"
)

func seedActivityUser(t *testing.T, repo UserRepository) *models.User {
	t.Helper()
	user := newTestUser("ivan", "ivan@example.com")
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func newActivity(userID uint, activityType string, ts time.Time, success bool) *models.UserActivity {
	return &models.UserActivity{
		UserID:            userID,
		ActivityType:      activityType,
		Description:       activityType + " event",
		Success:           success,
		ActivityTimestamp: ts,
	}
}

func TestActivityRepositoryCreateDefaultsTimestamp(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	user := seedActivityUser(t, users)

	entry := &models.UserActivity{
		UserID:       user.ID,
		ActivityType: models.ActivityUserCreated,
		Description:  "User account created successfully",
		Success:      true,
	}
	require.NoError(t, repo.Create(ctx, entry))
	require.False(t, entry.ActivityTimestamp.IsZero())
}

func TestActivityRepositoryListOrdersMostRecentFirst(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	user := seedActivityUser(t, users)
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newActivity(user.ID, models.ActivityUserCreated, now.Add(-2*time.Hour), true)))
	require.NoError(t, repo.Create(ctx, newActivity(user.ID, models.ActivityUserBlocked, now.Add(-1*time.Hour), true)))

	entries, total, err := repo.List(ctx, ActivityFilter{UserID: &user.ID, PageSize: 10})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	require.Equal(t, models.ActivityUserBlocked, entries[0].ActivityType)
	require.Equal(t, "ivan", entries[0].User.Username, "owning account preloaded")
}

func TestActivityRepositoryListFilters(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	user := seedActivityUser(t, users)
	now := time.Now()

	failed := newActivity(user.ID, models.ActivityLoginFailed, now.Add(-30*time.Minute), false)
	failed.IPAddress = "10.0.0.9"
	failed.SessionID = "sess-1"
	failed.ErrorMessage = "bad credentials"
	require.NoError(t, repo.Create(ctx, failed))

	ok := newActivity(user.ID, models.ActivityUserUpdated, now.Add(-10*time.Minute), true)
	require.NoError(t, repo.Create(ctx, ok))

	success := false
	entries, _, err := repo.List(ctx, ActivityFilter{Success: &success})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.ActivityLoginFailed, entries[0].ActivityType)

	entries, _, err = repo.List(ctx, ActivityFilter{IPAddress: "10.0.0.9"})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, _, err = repo.List(ctx, ActivityFilter{SessionID: "sess-1"})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entries, _, err = repo.List(ctx, ActivityFilter{Search: "UPDATED"})
	require.NoError(t, err)
	require.Len(t, entries, 1, "description search is case insensitive")

	from := now.Add(-20 * time.Minute)
	entries, _, err = repo.List(ctx, ActivityFilter{From: &from})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.ActivityUserUpdated, entries[0].ActivityType)
}

func TestActivityRepositoryCounts(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	user := seedActivityUser(t, users)
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newActivity(user.ID, models.ActivityUserCreated, now.Add(-3*time.Hour), true)))
	require.NoError(t, repo.Create(ctx, newActivity(user.ID, models.ActivityUserCreated, now.Add(-2*time.Hour), true)))
	require.NoError(t, repo.Create(ctx, newActivity(user.ID, models.ActivityLoginFailed, now.Add(-1*time.Hour), false)))

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(3), total)

	byUser, err := repo.CountByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), byUser)

	byType, err := repo.CountByType(ctx, models.ActivityUserCreated)
	require.NoError(t, err)
	require.Equal(t, int64(2), byType)

	failures, err := repo.CountBySuccess(ctx, false)
	require.NoError(t, err)
	require.Equal(t, int64(1), failures)

	between, err := repo.CountBetween(ctx, now.Add(-150*time.Minute), now)
	require.NoError(t, err)
	require.Equal(t, int64(2), between)

	types, err := repo.MostFrequentTypes(ctx, 5)
	require.NoError(t, err)
	require.Len(t, types, 2)
	require.Equal(t, models.ActivityUserCreated, types[0].ActivityType)
	require.Equal(t, int64(2), types[0].Count)
}

func TestActivityRepositoryPurgeOlderThanKeepsCutoffRecord(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	repo := NewActivityLogRepository(db)
	ctx := context.Background()

	user := seedActivityUser(t, users)
	cutoff := time.Now().Truncate(time.Second)

	require.NoError(t, repo.Create(ctx, newActivity(user.ID, "OLD", cutoff.Add(-time.Hour), true)))
	require.NoError(t, repo.Create(ctx, newActivity(user.ID, "AT_CUTOFF", cutoff, true)))
	require.NoError(t, repo.Create(ctx, newActivity(user.ID, "NEW", cutoff.Add(time.Hour), true)))

	removed, err := repo.PurgeOlderThan(ctx, cutoff)
	require.NoError(t, err)
	require.Equal(t, int64(1), removed)

	entries, total, err := repo.List(ctx, ActivityFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), total)
	for _, entry := range entries {
		require.NotEqual(t, "OLD", entry.ActivityType)
	}
}
