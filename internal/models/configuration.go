package models

import "time"

// ConfigType categorises configuration entries.
type ConfigType string

const (
	ConfigTypeSystem   ConfigType = "SYSTEM"
	ConfigTypeSecurity ConfigType = "SECURITY"
	ConfigTypeEmail    ConfigType = "EMAIL"
	ConfigTypeDatabase ConfigType = "DATABASE"
	ConfigTypeUI       ConfigType = "UI"
	ConfigTypeBusiness ConfigType = "BUSINESS"
)

// ConfigTypes lists every configuration type for grouped statistics.
func ConfigTypes() []ConfigType {
	return []ConfigType{
		ConfigTypeSystem,
		ConfigTypeSecurity,
		ConfigTypeEmail,
		ConfigTypeDatabase,
		ConfigTypeUI,
		ConfigTypeBusiness,
	}
}

// SystemConfiguration is a named, typed key/value setting. Values are stored
// as strings; callers coerce them on read. Read-only entries reject updates
// and deletes at the service boundary.
type SystemConfiguration struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	ConfigKey   string     `gorm:"size:100;uniqueIndex;not null" json:"config_key"`
	ConfigValue string     `gorm:"size:1000;not null" json:"config_value"`
	Description string     `gorm:"column:config_description;size:500" json:"description"`
	ConfigType  ConfigType `gorm:"size:16;not null" json:"config_type"`
	IsEncrypted bool       `gorm:"not null;default:false" json:"is_encrypted"`
	IsReadOnly  bool       `gorm:"not null;default:false" json:"is_read_only"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CreatedBy   string     `gorm:"size:100" json:"created_by"`
	UpdatedBy   string     `gorm:"size:100" json:"updated_by"`
}
