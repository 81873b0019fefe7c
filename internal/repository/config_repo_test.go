package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vims-insurance/admin-api/internal/models"
)

func seedConfigs(t *testing.T, repo ConfigurationRepository) {
	t.Helper()
	ctx := context.Background()

	entries := []models.SystemConfiguration{
		{ConfigKey: "system.name", ConfigValue: "VIMS", ConfigType: models.ConfigTypeSystem, IsReadOnly: true, Description: "Installation name"},
		{ConfigKey: "system.version", ConfigValue: "1.0.0", ConfigType: models.ConfigTypeSystem, IsReadOnly: true},
		{ConfigKey: "email.smtp.host", ConfigValue: "smtp.example.com", ConfigType: models.ConfigTypeEmail, Description: "Outbound mail relay"},
		{ConfigKey: "mail.from", ConfigValue: "noreply@example.com", ConfigType: models.ConfigTypeEmail},
		{ConfigKey: "security.session.timeout", ConfigValue: "30", ConfigType: models.ConfigTypeSecurity},
		{ConfigKey: "auth.max.attempts", ConfigValue: "5", ConfigType: models.ConfigTypeSecurity},
		{ConfigKey: "db.pool.size", ConfigValue: "10", ConfigType: models.ConfigTypeDatabase},
		{ConfigKey: "smtp.password", ConfigValue: "hunter2", ConfigType: models.ConfigTypeEmail},
		{ConfigKey: "api.signing.key", ConfigValue: "abc", ConfigType: models.ConfigTypeSecurity, IsEncrypted: true},
	}
	for i := range entries {
		require.NoError(t, repo.Create(ctx, &entries[i]))
	}
}

func TestConfigurationRepositoryGetByKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConfigurationRepository(db)
	seedConfigs(t, repo)
	ctx := context.Background()

	entry, err := repo.GetByKey(ctx, "system.name")
	require.NoError(t, err)
	require.Equal(t, "VIMS", entry.ConfigValue)
	require.True(t, entry.IsReadOnly)

	exists, err := repo.ExistsByKey(ctx, "system.name")
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = repo.ExistsByKey(ctx, "missing.key")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestConfigurationRepositoryCuratedListings(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConfigurationRepository(db)
	seedConfigs(t, repo)
	ctx := context.Background()

	email, err := repo.ListByKeyPrefixes(ctx, "email.", "mail.")
	require.NoError(t, err)
	require.Len(t, email, 2)

	security, err := repo.ListByKeyPrefixes(ctx, "security.", "auth.")
	require.NoError(t, err)
	require.Len(t, security, 2)

	database, err := repo.ListByKeyPrefixes(ctx, "database.", "db.")
	require.NoError(t, err)
	require.Len(t, database, 1)

	critical, err := repo.ListByKeys(ctx, CriticalConfigKeys)
	require.NoError(t, err)
	require.Len(t, critical, 2)

	needing, err := repo.ListNeedingEncryption(ctx)
	require.NoError(t, err)
	require.Len(t, needing, 1)
	require.Equal(t, "smtp.password", needing[0].ConfigKey)
}

func TestConfigurationRepositorySearches(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConfigurationRepository(db)
	seedConfigs(t, repo)
	ctx := context.Background()

	byPattern, err := repo.SearchByKeyPattern(ctx, "system.%")
	require.NoError(t, err)
	require.Len(t, byPattern, 2)
	require.Equal(t, "system.name", byPattern[0].ConfigKey)

	byDescription, err := repo.SearchByDescription(ctx, "MAIL RELAY")
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	require.Equal(t, "email.smtp.host", byDescription[0].ConfigKey)
}

func TestConfigurationRepositoryCounts(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConfigurationRepository(db)
	seedConfigs(t, repo)
	ctx := context.Background()

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(9), total)

	byType, err := repo.CountByType(ctx, models.ConfigTypeEmail)
	require.NoError(t, err)
	require.Equal(t, int64(3), byType)

	readOnly, err := repo.CountReadOnly(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), readOnly)

	encrypted, err := repo.CountEncrypted(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), encrypted)
}
