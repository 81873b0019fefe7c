package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/vims-insurance/admin-api/internal/models"
)

// CriticalConfigKeys is the fixed allow-list of keys treated as system critical.
var CriticalConfigKeys = []string{
	"system.name",
	"system.version",
	"database.url",
	"security.jwt.secret",
}

// ConfigurationRepository persists key/value system settings.
type ConfigurationRepository interface {
	Create(ctx context.Context, entry *models.SystemConfiguration) error
	Save(ctx context.Context, entry *models.SystemConfiguration) error
	GetByKey(ctx context.Context, key string) (models.SystemConfiguration, error)
	ExistsByKey(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, entry *models.SystemConfiguration) error
	ListAll(ctx context.Context) ([]models.SystemConfiguration, error)
	ListByType(ctx context.Context, configType models.ConfigType) ([]models.SystemConfiguration, error)
	ListReadOnly(ctx context.Context) ([]models.SystemConfiguration, error)
	ListEncrypted(ctx context.Context) ([]models.SystemConfiguration, error)
	ListByKeys(ctx context.Context, keys []string) ([]models.SystemConfiguration, error)
	ListByKeyPrefixes(ctx context.Context, prefixes ...string) ([]models.SystemConfiguration, error)
	SearchByKeyPattern(ctx context.Context, pattern string) ([]models.SystemConfiguration, error)
	SearchByDescription(ctx context.Context, term string) ([]models.SystemConfiguration, error)
	ListNeedingEncryption(ctx context.Context) ([]models.SystemConfiguration, error)
	Count(ctx context.Context) (int64, error)
	CountByType(ctx context.Context, configType models.ConfigType) (int64, error)
	CountReadOnly(ctx context.Context) (int64, error)
	CountEncrypted(ctx context.Context) (int64, error)
}

type configurationRepository struct {
	db *gorm.DB
}

// NewConfigurationRepository constructs the configuration repository.
func NewConfigurationRepository(db *gorm.DB) ConfigurationRepository {
	return &configurationRepository{db: db}
}

func (r *configurationRepository) Create(ctx context.Context, entry *models.SystemConfiguration) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *configurationRepository) Save(ctx context.Context, entry *models.SystemConfiguration) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *configurationRepository) GetByKey(ctx context.Context, key string) (models.SystemConfiguration, error) {
	var entry models.SystemConfiguration
	if err := r.db.WithContext(ctx).Where("config_key = ?", key).First(&entry).Error; err != nil {
		return models.SystemConfiguration{}, err
	}

	return entry, nil
}

func (r *configurationRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SystemConfiguration{}).
		Where("config_key = ?", key).
		Count(&count).Error

	return count > 0, err
}

func (r *configurationRepository) Delete(ctx context.Context, entry *models.SystemConfiguration) error {
	return r.db.WithContext(ctx).Delete(entry).Error
}

func (r *configurationRepository) ListAll(ctx context.Context) ([]models.SystemConfiguration, error) {
	var entries []models.SystemConfiguration
	err := r.db.WithContext(ctx).Order("config_key").Find(&entries).Error
	return entries, err
}

func (r *configurationRepository) ListByType(ctx context.Context, configType models.ConfigType) ([]models.SystemConfiguration, error) {
	var entries []models.SystemConfiguration
	err := r.db.WithContext(ctx).
		Where("config_type = ?", configType).
		Order("config_key").
		Find(&entries).Error

	return entries, err
}

func (r *configurationRepository) ListReadOnly(ctx context.Context) ([]models.SystemConfiguration, error) {
	var entries []models.SystemConfiguration
	err := r.db.WithContext(ctx).
		Where("is_read_only = ?", true).
		Order("config_key").
		Find(&entries).Error

	return entries, err
}

func (r *configurationRepository) ListEncrypted(ctx context.Context) ([]models.SystemConfiguration, error) {
	var entries []models.SystemConfiguration
	err := r.db.WithContext(ctx).
		Where("is_encrypted = ?", true).
		Order("config_key").
		Find(&entries).Error

	return entries, err
}

func (r *configurationRepository) ListByKeys(ctx context.Context, keys []string) ([]models.SystemConfiguration, error) {
	var entries []models.SystemConfiguration
	err := r.db.WithContext(ctx).
		Where("config_key IN ?", keys).
		Order("config_key").
		Find(&entries).Error

	return entries, err
}

func (r *configurationRepository) ListByKeyPrefixes(ctx context.Context, prefixes ...string) ([]models.SystemConfiguration, error) {
	if len(prefixes) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).Model(&models.SystemConfiguration{})
	conditions := make([]string, 0, len(prefixes))
	args := make([]interface{}, 0, len(prefixes))
	for _, prefix := range prefixes {
		conditions = append(conditions, "config_key LIKE ?")
		args = append(args, prefix+"%")
	}
	query = query.Where(strings.Join(conditions, " OR "), args...)

	var entries []models.SystemConfiguration
	err := query.Order("config_key").Find(&entries).Error
	return entries, err
}

func (r *configurationRepository) SearchByKeyPattern(ctx context.Context, pattern string) ([]models.SystemConfiguration, error) {
	var entries []models.SystemConfiguration
	err := r.db.WithContext(ctx).
		Where("config_key LIKE ?", pattern).
		Order("config_key").
		Find(&entries).Error

	return entries, err
}

func (r *configurationRepository) SearchByDescription(ctx context.Context, term string) ([]models.SystemConfiguration, error) {
	like := "%" + strings.ToLower(term) + "%"

	var entries []models.SystemConfiguration
	err := r.db.WithContext(ctx).
		Where("LOWER(config_description) LIKE ?", like).
		Order("config_key").
		Find(&entries).Error

	return entries, err
}

// ListNeedingEncryption returns unencrypted entries whose key suggests a secret.
func (r *configurationRepository) ListNeedingEncryption(ctx context.Context) ([]models.SystemConfiguration, error) {
	var entries []models.SystemConfiguration
	err := r.db.WithContext(ctx).
		Where("is_encrypted = ?", false).
		Where("config_key LIKE ? OR config_key LIKE ? OR config_key LIKE ?",
			"%password%", "%secret%", "%key%").
		Order("config_key").
		Find(&entries).Error

	return entries, err
}

func (r *configurationRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SystemConfiguration{}).Count(&count).Error
	return count, err
}

func (r *configurationRepository) CountByType(ctx context.Context, configType models.ConfigType) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SystemConfiguration{}).
		Where("config_type = ?", configType).
		Count(&count).Error

	return count, err
}

func (r *configurationRepository) CountReadOnly(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SystemConfiguration{}).
		Where("is_read_only = ?", true).
		Count(&count).Error

	return count, err
}

func (r *configurationRepository) CountEncrypted(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SystemConfiguration{}).
		Where("is_encrypted = ?", true).
		Count(&count).Error

	return count, err
}
