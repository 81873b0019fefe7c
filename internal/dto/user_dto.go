package dto

import (
	"time"

	"github.com/vims-insurance/admin-api/internal/models"
)

// UserCreateRequest captures the payload for creating a new account.
type UserCreateRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50"`
	Email       string `json:"email" validate:"required,email,max=100"`
	Password    string `json:"password" validate:"required,min=8"`
	FirstName   string `json:"first_name" validate:"required,max=50"`
	LastName    string `json:"last_name" validate:"required,max=50"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	Role        string `json:"role" validate:"required,oneof=ADMIN_OFFICER POLICY_OFFICER CLAIMS_OFFICER CUSTOMER_SERVICE FINANCE_OFFICER SYSTEM_ADMIN"`
	Status      string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BLOCKED PENDING SUSPENDED EXPIRED"`
	CreatedBy   string `json:"created_by" validate:"omitempty,max=100"`
}

// UserUpdateRequest captures the payload for updating an account. Role and
// status are optional; unset fields keep their prior values.
type UserUpdateRequest struct {
	Email       string  `json:"email" validate:"required,email,max=100"`
	FirstName   string  `json:"first_name" validate:"required,max=50"`
	LastName    string  `json:"last_name" validate:"required,max=50"`
	PhoneNumber string  `json:"phone_number" validate:"omitempty,max=20"`
	Role        *string `json:"role" validate:"omitempty,oneof=ADMIN_OFFICER POLICY_OFFICER CLAIMS_OFFICER CUSTOMER_SERVICE FINANCE_OFFICER SYSTEM_ADMIN"`
	Status      *string `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE BLOCKED PENDING SUSPENDED EXPIRED"`
	UpdatedBy   string  `json:"updated_by" validate:"omitempty,max=100"`
}

// UserListRequest defines filters for listing accounts.
type UserListRequest struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	Status   string
}

// UserResponse serializes account data for admin clients. The password hash
// is never exposed.
type UserResponse struct {
	ID            uint       `json:"id"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	FullName      string     `json:"full_name"`
	PhoneNumber   string     `json:"phone_number"`
	Role          string     `json:"role"`
	Status        string     `json:"status"`
	LastLogin     *time.Time `json:"last_login"`
	LoginAttempts int        `json:"login_attempts"`
	LockedUntil   *time.Time `json:"locked_until"`
	CanLogin      bool       `json:"can_login"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CreatedBy     string     `json:"created_by"`
	UpdatedBy     string     `json:"updated_by"`
	IsDeleted     bool       `json:"is_deleted"`
}

// UserListResponse wraps a paginated account listing.
type UserListResponse struct {
	Items      []UserResponse `json:"items"`
	Pagination PaginationMeta `json:"pagination"`
}

// UserStatisticsResponse summarises account counts for the admin panel.
type UserStatisticsResponse struct {
	TotalUsers   int64 `json:"total_users"`
	ActiveUsers  int64 `json:"active_users"`
	BlockedUsers int64 `json:"blocked_users"`
	PendingUsers int64 `json:"pending_users"`
}

// NewUserResponse converts an account model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Username:      user.Username,
		Email:         user.Email,
		FirstName:     user.FirstName,
		LastName:      user.LastName,
		FullName:      user.FullName(),
		PhoneNumber:   user.PhoneNumber,
		Role:          string(user.Role),
		Status:        string(user.Status),
		LastLogin:     user.LastLogin,
		LoginAttempts: user.LoginAttempts,
		LockedUntil:   user.LockedUntil,
		CanLogin:      user.CanLogin(time.Now()),
		CreatedAt:     user.CreatedAt,
		UpdatedAt:     user.UpdatedAt,
		CreatedBy:     user.CreatedBy,
		UpdatedBy:     user.UpdatedBy,
		IsDeleted:     user.IsDeleted,
	}
}
