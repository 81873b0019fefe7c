package dto

import (
	"time"

	"github.com/vims-insurance/admin-api/internal/models"
)

// ConfigurationSaveRequest captures the payload for creating or replacing a
// configuration entry.
type ConfigurationSaveRequest struct {
	ConfigKey   string `json:"config_key" validate:"required,max=100"`
	ConfigValue string `json:"config_value" validate:"required"`
	ConfigType  string `json:"config_type" validate:"omitempty,oneof=SYSTEM SECURITY EMAIL DATABASE UI BUSINESS"`
	Description string `json:"description" validate:"omitempty,max=500"`
	IsEncrypted bool   `json:"is_encrypted"`
	IsReadOnly  bool   `json:"is_read_only"`
	UpdatedBy   string `json:"updated_by" validate:"omitempty,max=100"`
}

// ConfigurationResponse serializes a configuration entry.
type ConfigurationResponse struct {
	ID          uint      `json:"id"`
	ConfigKey   string    `json:"config_key"`
	ConfigValue string    `json:"config_value"`
	ConfigType  string    `json:"config_type"`
	Description string    `json:"description"`
	IsEncrypted bool      `json:"is_encrypted"`
	IsReadOnly  bool      `json:"is_read_only"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	CreatedBy   string    `json:"created_by"`
	UpdatedBy   string    `json:"updated_by"`
}

// ConfigurationStatisticsResponse summarises the configuration store.
type ConfigurationStatisticsResponse struct {
	TotalConfigurations int64            `json:"total_configurations"`
	ByType              map[string]int64 `json:"by_type"`
	ReadOnlyCount       int64            `json:"read_only_count"`
	EncryptedCount      int64            `json:"encrypted_count"`
	NeedingEncryption   int64            `json:"needing_encryption"`
}

// NewConfigurationResponse converts a configuration model into a DTO.
func NewConfigurationResponse(entry models.SystemConfiguration) ConfigurationResponse {
	return ConfigurationResponse{
		ID:          entry.ID,
		ConfigKey:   entry.ConfigKey,
		ConfigValue: entry.ConfigValue,
		ConfigType:  string(entry.ConfigType),
		Description: entry.Description,
		IsEncrypted: entry.IsEncrypted,
		IsReadOnly:  entry.IsReadOnly,
		CreatedAt:   entry.CreatedAt,
		UpdatedAt:   entry.UpdatedAt,
		CreatedBy:   entry.CreatedBy,
		UpdatedBy:   entry.UpdatedBy,
	}
}

// NewConfigurationResponses converts a slice of configuration models.
func NewConfigurationResponses(entries []models.SystemConfiguration) []ConfigurationResponse {
	out := make([]ConfigurationResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, NewConfigurationResponse(entry))
	}
	return out
}
