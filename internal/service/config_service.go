package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vims-insurance/admin-api/internal/dto"
	"github.com/vims-insurance/admin-api/internal/models"
	"github.com/vims-insurance/admin-api/internal/repository"
)

// Sentinel errors for the configuration store.
var (
	ErrConfigurationNotFound      = errors.New("configuration not found")
	ErrConfigurationAlreadyExists = errors.New("configuration already exists")
	ErrConfigurationReadOnly      = errors.New("configuration is read-only")
)

// ConfigurationService manages the key/value configuration store, including
// curated listings and typed accessors used by other subsystems.
type ConfigurationService interface {
	Create(ctx context.Context, req dto.ConfigurationSaveRequest) (dto.ConfigurationResponse, error)
	Update(ctx context.Context, key string, req dto.ConfigurationSaveRequest) (dto.ConfigurationResponse, error)
	UpdateValue(ctx context.Context, key, value, updatedBy string) (dto.ConfigurationResponse, error)
	Save(ctx context.Context, req dto.ConfigurationSaveRequest) (dto.ConfigurationResponse, error)
	Get(ctx context.Context, key string) (dto.ConfigurationResponse, error)
	Delete(ctx context.Context, key string) error

	ListAll(ctx context.Context) ([]dto.ConfigurationResponse, error)
	ListByType(ctx context.Context, configType string) ([]dto.ConfigurationResponse, error)
	ListReadOnly(ctx context.Context) ([]dto.ConfigurationResponse, error)
	ListEncrypted(ctx context.Context) ([]dto.ConfigurationResponse, error)
	ListEmail(ctx context.Context) ([]dto.ConfigurationResponse, error)
	ListSecurity(ctx context.Context) ([]dto.ConfigurationResponse, error)
	ListDatabase(ctx context.Context) ([]dto.ConfigurationResponse, error)
	ListCritical(ctx context.Context) ([]dto.ConfigurationResponse, error)
	ListNeedingEncryption(ctx context.Context) ([]dto.ConfigurationResponse, error)
	SearchByKeyPattern(ctx context.Context, pattern string) ([]dto.ConfigurationResponse, error)
	SearchByDescription(ctx context.Context, term string) ([]dto.ConfigurationResponse, error)

	GetString(ctx context.Context, key string) (string, error)
	GetStringOrDefault(ctx context.Context, key, fallback string) (string, error)
	GetInt(ctx context.Context, key string) (int, error)
	GetIntOrDefault(ctx context.Context, key string, fallback int) (int, error)
	GetBool(ctx context.Context, key string) (bool, error)
	GetBoolOrDefault(ctx context.Context, key string, fallback bool) (bool, error)

	Statistics(ctx context.Context) (dto.ConfigurationStatisticsResponse, error)
}

type configurationService struct {
	configs   repository.ConfigurationRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewConfigurationService constructs the configuration store service.
func NewConfigurationService(configs repository.ConfigurationRepository, validator *validator.Validate, logger zerolog.Logger) ConfigurationService {
	return &configurationService{
		configs:   configs,
		validator: validator,
		logger:    logger.With().Str("component", "config_service").Logger(),
	}
}

func (s *configurationService) Create(ctx context.Context, req dto.ConfigurationSaveRequest) (dto.ConfigurationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ConfigurationResponse{}, err
	}

	key := strings.TrimSpace(req.ConfigKey)
	exists, err := s.configs.ExistsByKey(ctx, key)
	if err != nil {
		return dto.ConfigurationResponse{}, err
	}
	if exists {
		return dto.ConfigurationResponse{}, fmt.Errorf("%w: %s", ErrConfigurationAlreadyExists, key)
	}

	entry := s.fromRequest(key, req)
	entry.CreatedBy = req.UpdatedBy
	if err := s.configs.Create(ctx, &entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return dto.ConfigurationResponse{}, fmt.Errorf("%w: %s", ErrConfigurationAlreadyExists, key)
		}
		return dto.ConfigurationResponse{}, err
	}

	s.logger.Info().Str("config_key", key).Msg("configuration created")
	return dto.NewConfigurationResponse(entry), nil
}

func (s *configurationService) Update(ctx context.Context, key string, req dto.ConfigurationSaveRequest) (dto.ConfigurationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ConfigurationResponse{}, err
	}

	key = strings.TrimSpace(key)
	entry, err := s.configs.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ConfigurationResponse{}, fmt.Errorf("%w: %s", ErrConfigurationNotFound, key)
		}
		return dto.ConfigurationResponse{}, err
	}
	if entry.IsReadOnly {
		return dto.ConfigurationResponse{}, fmt.Errorf("%w: %s", ErrConfigurationReadOnly, key)
	}

	entry.ConfigValue = req.ConfigValue
	if req.ConfigType != "" {
		entry.ConfigType = models.ConfigType(req.ConfigType)
	}
	// Description and flags mirror the payload, so an update can clear a
	// description or turn an entry read-only.
	entry.Description = req.Description
	entry.IsEncrypted = req.IsEncrypted
	entry.IsReadOnly = req.IsReadOnly
	entry.UpdatedBy = req.UpdatedBy
	if err := s.configs.Save(ctx, &entry); err != nil {
		return dto.ConfigurationResponse{}, err
	}

	return dto.NewConfigurationResponse(entry), nil
}

// UpdateValue replaces only the stored value, leaving type and flags intact.
func (s *configurationService) UpdateValue(ctx context.Context, key, value, updatedBy string) (dto.ConfigurationResponse, error) {
	key = strings.TrimSpace(key)
	entry, err := s.configs.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ConfigurationResponse{}, fmt.Errorf("%w: %s", ErrConfigurationNotFound, key)
		}
		return dto.ConfigurationResponse{}, err
	}
	if entry.IsReadOnly {
		return dto.ConfigurationResponse{}, fmt.Errorf("%w: %s", ErrConfigurationReadOnly, key)
	}

	entry.ConfigValue = value
	entry.UpdatedBy = updatedBy
	if err := s.configs.Save(ctx, &entry); err != nil {
		return dto.ConfigurationResponse{}, err
	}

	return dto.NewConfigurationResponse(entry), nil
}

// Save creates the entry when absent and updates it otherwise. Read-only
// entries reject updates the same way Update does.
func (s *configurationService) Save(ctx context.Context, req dto.ConfigurationSaveRequest) (dto.ConfigurationResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ConfigurationResponse{}, err
	}

	key := strings.TrimSpace(req.ConfigKey)
	exists, err := s.configs.ExistsByKey(ctx, key)
	if err != nil {
		return dto.ConfigurationResponse{}, err
	}
	if exists {
		return s.Update(ctx, key, req)
	}
	return s.Create(ctx, req)
}

func (s *configurationService) Get(ctx context.Context, key string) (dto.ConfigurationResponse, error) {
	entry, err := s.configs.GetByKey(ctx, strings.TrimSpace(key))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ConfigurationResponse{}, fmt.Errorf("%w: %s", ErrConfigurationNotFound, key)
		}
		return dto.ConfigurationResponse{}, err
	}
	return dto.NewConfigurationResponse(entry), nil
}

func (s *configurationService) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	entry, err := s.configs.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", ErrConfigurationNotFound, key)
		}
		return err
	}
	if entry.IsReadOnly {
		return fmt.Errorf("%w: %s", ErrConfigurationReadOnly, key)
	}

	if err := s.configs.Delete(ctx, &entry); err != nil {
		return err
	}
	s.logger.Info().Str("config_key", key).Msg("configuration deleted")
	return nil
}

func (s *configurationService) ListAll(ctx context.Context) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) ListByType(ctx context.Context, configType string) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.ListByType(ctx, models.ConfigType(strings.ToUpper(strings.TrimSpace(configType))))
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) ListReadOnly(ctx context.Context) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.ListReadOnly(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) ListEncrypted(ctx context.Context) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.ListEncrypted(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) ListEmail(ctx context.Context) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.ListByKeyPrefixes(ctx, "email.", "mail.")
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) ListSecurity(ctx context.Context) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.ListByKeyPrefixes(ctx, "security.", "auth.")
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) ListDatabase(ctx context.Context) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.ListByKeyPrefixes(ctx, "database.", "db.")
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) ListCritical(ctx context.Context) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.ListByKeys(ctx, repository.CriticalConfigKeys)
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) ListNeedingEncryption(ctx context.Context) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.ListNeedingEncryption(ctx)
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) SearchByKeyPattern(ctx context.Context, pattern string) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.SearchByKeyPattern(ctx, strings.TrimSpace(pattern))
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) SearchByDescription(ctx context.Context, term string) ([]dto.ConfigurationResponse, error) {
	entries, err := s.configs.SearchByDescription(ctx, strings.TrimSpace(term))
	if err != nil {
		return nil, err
	}
	return dto.NewConfigurationResponses(entries), nil
}

func (s *configurationService) GetString(ctx context.Context, key string) (string, error) {
	entry, err := s.configs.GetByKey(ctx, strings.TrimSpace(key))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: %s", ErrConfigurationNotFound, key)
		}
		return "", err
	}
	return entry.ConfigValue, nil
}

// GetStringOrDefault falls back only when the key is absent. Any other error
// still propagates.
func (s *configurationService) GetStringOrDefault(ctx context.Context, key, fallback string) (string, error) {
	value, err := s.GetString(ctx, key)
	if err != nil {
		if errors.Is(err, ErrConfigurationNotFound) {
			return fallback, nil
		}
		return "", err
	}
	return value, nil
}

func (s *configurationService) GetInt(ctx context.Context, key string) (int, error) {
	value, err := s.GetString(ctx, key)
	if err != nil {
		return 0, err
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer: %q", ErrInvalidArgument, key, value)
	}
	return parsed, nil
}

func (s *configurationService) GetIntOrDefault(ctx context.Context, key string, fallback int) (int, error) {
	value, err := s.GetInt(ctx, key)
	if err != nil {
		if errors.Is(err, ErrConfigurationNotFound) {
			return fallback, nil
		}
		return 0, err
	}
	return value, nil
}

func (s *configurationService) GetBool(ctx context.Context, key string) (bool, error) {
	value, err := s.GetString(ctx, key)
	if err != nil {
		return false, err
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, fmt.Errorf("%w: %s is not a boolean: %q", ErrInvalidArgument, key, value)
	}
	return parsed, nil
}

func (s *configurationService) GetBoolOrDefault(ctx context.Context, key string, fallback bool) (bool, error) {
	value, err := s.GetBool(ctx, key)
	if err != nil {
		if errors.Is(err, ErrConfigurationNotFound) {
			return fallback, nil
		}
		return false, err
	}
	return value, nil
}

func (s *configurationService) Statistics(ctx context.Context) (dto.ConfigurationStatisticsResponse, error) {
	total, err := s.configs.Count(ctx)
	if err != nil {
		return dto.ConfigurationStatisticsResponse{}, err
	}

	byType := make(map[string]int64, len(models.ConfigTypes()))
	for _, configType := range models.ConfigTypes() {
		count, err := s.configs.CountByType(ctx, configType)
		if err != nil {
			return dto.ConfigurationStatisticsResponse{}, err
		}
		byType[string(configType)] = count
	}

	readOnly, err := s.configs.CountReadOnly(ctx)
	if err != nil {
		return dto.ConfigurationStatisticsResponse{}, err
	}
	encrypted, err := s.configs.CountEncrypted(ctx)
	if err != nil {
		return dto.ConfigurationStatisticsResponse{}, err
	}
	needing, err := s.configs.ListNeedingEncryption(ctx)
	if err != nil {
		return dto.ConfigurationStatisticsResponse{}, err
	}

	return dto.ConfigurationStatisticsResponse{
		TotalConfigurations: total,
		ByType:              byType,
		ReadOnlyCount:       readOnly,
		EncryptedCount:      encrypted,
		NeedingEncryption:   int64(len(needing)),
	}, nil
}

func (s *configurationService) fromRequest(key string, req dto.ConfigurationSaveRequest) models.SystemConfiguration {
	configType := models.ConfigTypeSystem
	if req.ConfigType != "" {
		configType = models.ConfigType(req.ConfigType)
	}
	return models.SystemConfiguration{
		ConfigKey:   key,
		ConfigValue: req.ConfigValue,
		ConfigType:  configType,
		Description: req.Description,
		IsEncrypted: req.IsEncrypted,
		IsReadOnly:  req.IsReadOnly,
		UpdatedBy:   req.UpdatedBy,
	}
}
