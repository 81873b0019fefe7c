package dto

import "time"

// SystemOverviewResponse is the headline report for the admin panel.
type SystemOverviewResponse struct {
	GeneratedAt       time.Time                       `json:"generated_at"`
	Users             UserStatisticsResponse          `json:"users"`
	Activities        ActivityStatisticsResponse      `json:"activities"`
	UsersByRole       map[string]int64                `json:"users_by_role"`
	UsersByStatus     map[string]int64                `json:"users_by_status"`
	ConfigurationInfo ConfigurationStatisticsResponse `json:"configuration_info"`
}

// UserReportResponse breaks down accounts by role and status.
type UserReportResponse struct {
	GeneratedAt   time.Time        `json:"generated_at"`
	TotalUsers    int64            `json:"total_users"`
	UsersByRole   map[string]int64 `json:"users_by_role"`
	UsersByStatus map[string]int64 `json:"users_by_status"`
}

// ActivityReportResponse breaks down the audit trail over a window.
type ActivityReportResponse struct {
	GeneratedAt     time.Time                   `json:"generated_at"`
	From            time.Time                   `json:"from"`
	To              time.Time                   `json:"to"`
	TotalActivities int64                       `json:"total_activities"`
	InWindow        int64                       `json:"in_window"`
	SuccessCount    int64                       `json:"success_count"`
	FailureCount    int64                       `json:"failure_count"`
	MostFrequent    []ActivityTypeCountResponse `json:"most_frequent"`
}

// DashboardResponse feeds the admin dashboard page and endpoint.
type DashboardResponse struct {
	GeneratedAt       time.Time                   `json:"generated_at"`
	TotalUsers        int64                       `json:"total_users"`
	ActiveUsers       int64                       `json:"active_users"`
	BlockedUsers      int64                       `json:"blocked_users"`
	PendingUsers      int64                       `json:"pending_users"`
	ActivitiesToday   int64                       `json:"activities_today"`
	FailedLoginsToday int64                       `json:"failed_logins_today"`
	RecentActivities  []ActivityResponse          `json:"recent_activities"`
	TopActivityTypes  []ActivityTypeCountResponse `json:"top_activity_types"`
}

// HealthComponent reports the state of one dependency.
type HealthComponent struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// HealthResponse reports overall system health.
type HealthResponse struct {
	Status     string                     `json:"status"`
	CheckedAt  time.Time                  `json:"checked_at"`
	Components map[string]HealthComponent `json:"components"`
}
