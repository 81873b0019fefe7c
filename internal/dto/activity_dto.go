package dto

import (
	"time"

	"github.com/vims-insurance/admin-api/internal/models"
)

// ActivityRecordRequest captures the payload for recording an audit entry on
// behalf of another subsystem.
type ActivityRecordRequest struct {
	UserID         uint           `json:"user_id" validate:"required"`
	ActivityType   string         `json:"activity_type" validate:"required,max=100"`
	Description    string         `json:"description" validate:"required,max=500"`
	Success        *bool          `json:"success"`
	ErrorMessage   string         `json:"error_message" validate:"omitempty,max=500"`
	SessionID      string         `json:"session_id" validate:"omitempty,max=100"`
	AdditionalData map[string]any `json:"additional_data"`
}

// ActivityListRequest defines filters for browsing the audit trail.
type ActivityListRequest struct {
	Page         int
	PageSize     int
	UserID       *uint
	ActivityType string
	Success      *bool
	From         *time.Time
	To           *time.Time
	IPAddress    string
	SessionID    string
	Search       string
}

// ActivityResponse serializes a single audit entry.
type ActivityResponse struct {
	ID                uint           `json:"id"`
	UserID            uint           `json:"user_id"`
	Username          string         `json:"username"`
	ActivityType      string         `json:"activity_type"`
	Description       string         `json:"description"`
	IPAddress         string         `json:"ip_address"`
	UserAgent         string         `json:"user_agent"`
	SessionID         string         `json:"session_id"`
	Success           bool           `json:"success"`
	ErrorMessage      string         `json:"error_message,omitempty"`
	AdditionalData    map[string]any `json:"additional_data,omitempty"`
	ActivityTimestamp time.Time      `json:"activity_timestamp"`
}

// ActivityListResponse wraps a paginated audit listing.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// ActivityTypeCountResponse pairs an activity type with its occurrence count.
type ActivityTypeCountResponse struct {
	ActivityType string `json:"activity_type"`
	Count        int64  `json:"count"`
}

// ActivityStatisticsResponse summarises the audit trail for reporting.
type ActivityStatisticsResponse struct {
	TotalActivities  int64                       `json:"total_activities"`
	SuccessCount     int64                       `json:"success_count"`
	FailureCount     int64                       `json:"failure_count"`
	Last24Hours      int64                       `json:"last_24_hours"`
	MostFrequent     []ActivityTypeCountResponse `json:"most_frequent"`
	FailedLoginCount int64                       `json:"failed_login_count"`
}

// CleanupResponse reports the outcome of an audit retention purge.
type CleanupResponse struct {
	RemovedEntries int64     `json:"removed_entries"`
	Cutoff         time.Time `json:"cutoff"`
}

// NewActivityResponse converts an audit entry into a DTO. The username comes
// from the preloaded owning account when present.
func NewActivityResponse(entry models.UserActivity) ActivityResponse {
	return ActivityResponse{
		ID:                entry.ID,
		UserID:            entry.UserID,
		Username:          entry.User.Username,
		ActivityType:      entry.ActivityType,
		Description:       entry.Description,
		IPAddress:         entry.IPAddress,
		UserAgent:         entry.UserAgent,
		SessionID:         entry.SessionID,
		Success:           entry.Success,
		ErrorMessage:      entry.ErrorMessage,
		AdditionalData:    entry.AdditionalData,
		ActivityTimestamp: entry.ActivityTimestamp,
	}
}
