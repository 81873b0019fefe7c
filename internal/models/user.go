package models

import "time"

// UserRole enumerates the back-office roles recognised by the system.
type UserRole string

const (
	RoleAdminOfficer    UserRole = "ADMIN_OFFICER"
	RolePolicyOfficer   UserRole = "POLICY_OFFICER"
	RoleClaimsOfficer   UserRole = "CLAIMS_OFFICER"
	RoleCustomerService UserRole = "CUSTOMER_SERVICE"
	RoleFinanceOfficer  UserRole = "FINANCE_OFFICER"
	RoleSystemAdmin     UserRole = "SYSTEM_ADMIN"
)

// UserRoles lists every role, in a stable order, for grouped statistics.
func UserRoles() []UserRole {
	return []UserRole{
		RoleAdminOfficer,
		RolePolicyOfficer,
		RoleClaimsOfficer,
		RoleCustomerService,
		RoleFinanceOfficer,
		RoleSystemAdmin,
	}
}

// UserStatus enumerates account lifecycle states.
type UserStatus string

const (
	StatusActive    UserStatus = "ACTIVE"
	StatusInactive  UserStatus = "INACTIVE"
	StatusBlocked   UserStatus = "BLOCKED"
	StatusPending   UserStatus = "PENDING"
	StatusSuspended UserStatus = "SUSPENDED"
	StatusExpired   UserStatus = "EXPIRED"
)

// UserStatuses lists every status, in a stable order, for grouped statistics.
func UserStatuses() []UserStatus {
	return []UserStatus{
		StatusActive,
		StatusInactive,
		StatusBlocked,
		StatusPending,
		StatusSuspended,
		StatusExpired,
	}
}

// User represents one back-office account subject to lifecycle transitions.
// The password column only ever holds an opaque hash.
type User struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Username      string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email         string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash  string     `gorm:"column:password;size:255;not null" json:"-"`
	FirstName     string     `gorm:"size:50;not null" json:"first_name"`
	LastName      string     `gorm:"size:50;not null" json:"last_name"`
	PhoneNumber   string     `gorm:"size:20" json:"phone_number"`
	Role          UserRole   `gorm:"column:user_role;size:32;not null" json:"role"`
	Status        UserStatus `gorm:"column:user_status;size:16;not null;default:PENDING" json:"status"`
	LastLogin     *time.Time `json:"last_login"`
	LoginAttempts int        `gorm:"not null;default:0" json:"login_attempts"`
	LockedUntil   *time.Time `gorm:"column:account_locked_until" json:"locked_until"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	CreatedBy     string     `gorm:"size:100" json:"created_by"`
	UpdatedBy     string     `gorm:"size:100" json:"updated_by"`
	IsDeleted     bool       `gorm:"not null;default:false" json:"is_deleted"`
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsLocked reports whether the lock timestamp is still in the future.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

// CanLogin holds iff the account is ACTIVE, not soft-deleted and not locked.
func (u *User) CanLogin(now time.Time) bool {
	return u.Status == StatusActive && !u.IsDeleted && !u.IsLocked(now)
}

// Lock sets the lock expiry to now plus the given number of minutes.
// Non-positive values yield an already-expired lock.
func (u *User) Lock(minutes int, now time.Time) {
	until := now.Add(time.Duration(minutes) * time.Minute)
	u.LockedUntil = &until
}

// Unlock clears the lock expiry and resets the login attempt counter.
func (u *User) Unlock() {
	u.LockedUntil = nil
	u.LoginAttempts = 0
}
