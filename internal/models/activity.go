package models

import (
	"time"

	"gorm.io/datatypes"
)

// UserActivity is one immutable audit record describing an action taken by or
// on a user account. Records are append-only; the only mutation ever applied
// to this table is the retention purge.
type UserActivity struct {
	ID                uint              `gorm:"primaryKey" json:"id"`
	UserID            uint              `gorm:"index;not null" json:"user_id"`
	User              User              `gorm:"foreignKey:UserID" json:"-"`
	ActivityType      string            `gorm:"size:64;index;not null" json:"activity_type"`
	Description       string            `gorm:"size:500;not null" json:"description"`
	IPAddress         string            `gorm:"size:45" json:"ip_address,omitempty"`
	UserAgent         string            `gorm:"size:500" json:"user_agent,omitempty"`
	SessionID         string            `gorm:"size:100" json:"session_id,omitempty"`
	Success           bool              `gorm:"not null" json:"success"`
	ErrorMessage      string            `gorm:"size:500" json:"error_message,omitempty"`
	AdditionalData    datatypes.JSONMap `gorm:"type:json" json:"additional_data,omitempty"`
	ActivityTimestamp time.Time         `gorm:"index;not null" json:"activity_timestamp"`
	CreatedAt         time.Time         `json:"created_at"`
}

// Activity types emitted by the account lifecycle manager.
const (
	ActivityUserCreated     = "USER_CREATED"
	ActivityUserUpdated     = "USER_UPDATED"
	ActivityUserBlocked     = "USER_BLOCKED"
	ActivityUserUnblocked   = "USER_UNBLOCKED"
	ActivityUserDeleted     = "USER_DELETED"
	ActivityPasswordReset   = "PASSWORD_RESET"
	ActivityAccountLocked   = "ACCOUNT_LOCKED"
	ActivityAccountUnlocked = "ACCOUNT_UNLOCKED"
	ActivityLoginSuccess    = "LOGIN_SUCCESS"
	ActivityLoginFailed     = "LOGIN_FAILED"
)
