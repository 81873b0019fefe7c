package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vims-insurance/admin-api/internal/dto"
	"github.com/vims-insurance/admin-api/internal/models"
	"github.com/vims-insurance/admin-api/internal/repository"
	"github.com/vims-insurance/admin-api/internal/security"
)

// Sentinel errors surfaced to handlers for status mapping.
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrAccountLocked     = errors.New("account is locked")
)

// MaxLoginAttempts is the failure count at which an account gets locked.
const MaxLoginAttempts = 5

// LockDurationMinutes is how long a lock placed by failed logins lasts.
const LockDurationMinutes = 30

// DashboardInvalidator drops cached dashboard aggregates after account
// mutations so reads stay fresh inside the cache TTL. A nil invalidator is
// allowed; the cache then expires on its own.
type DashboardInvalidator interface {
	InvalidateDashboard(ctx context.Context)
}

// ActivityContext carries request provenance into the audit trail.
type ActivityContext struct {
	Actor     string
	IPAddress string
	UserAgent string
	SessionID string
}

// UserService orchestrates account management use cases. Every mutation
// writes its audit entry in the same transaction as the account row.
type UserService interface {
	Create(ctx context.Context, req dto.UserCreateRequest, actx ActivityContext) (dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	GetByUsername(ctx context.Context, username string) (dto.UserResponse, error)
	List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error)
	Update(ctx context.Context, id uint, req dto.UserUpdateRequest, actx ActivityContext) (dto.UserResponse, error)
	Delete(ctx context.Context, id uint, actx ActivityContext) error
	Block(ctx context.Context, id uint, reason string, actx ActivityContext) (dto.UserResponse, error)
	Unblock(ctx context.Context, id uint, actx ActivityContext) (dto.UserResponse, error)
	Lock(ctx context.Context, id uint, minutes int, actx ActivityContext) (dto.UserResponse, error)
	Unlock(ctx context.Context, id uint, actx ActivityContext) (dto.UserResponse, error)
	ResetPassword(ctx context.Context, id uint, newPassword string, actx ActivityContext) error
	RecordLoginSuccess(ctx context.Context, username string, actx ActivityContext) (dto.UserResponse, error)
	RecordLoginFailure(ctx context.Context, username string, actx ActivityContext) error
	Statistics(ctx context.Context) (dto.UserStatisticsResponse, error)
}

type userService struct {
	users      repository.UserRepository
	uow        repository.UnitOfWork
	hasher     security.PasswordHasher
	validator  *validator.Validate
	dashboards DashboardInvalidator
	logger     zerolog.Logger
}

// NewUserService constructs the account management service.
func NewUserService(users repository.UserRepository, uow repository.UnitOfWork, hasher security.PasswordHasher, validator *validator.Validate, dashboards DashboardInvalidator, logger zerolog.Logger) UserService {
	return &userService{
		users:      users,
		uow:        uow,
		hasher:     hasher,
		validator:  validator,
		dashboards: dashboards,
		logger:     logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) invalidateDashboard(ctx context.Context) {
	if s.dashboards != nil {
		s.dashboards.InvalidateDashboard(ctx)
	}
}

func (s *userService) Create(ctx context.Context, req dto.UserCreateRequest, actx ActivityContext) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return dto.UserResponse{}, err
	} else if exists {
		return dto.UserResponse{}, fmt.Errorf("%w: username %s", ErrUserAlreadyExists, username)
	}
	if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return dto.UserResponse{}, err
	} else if exists {
		return dto.UserResponse{}, fmt.Errorf("%w: email %s", ErrUserAlreadyExists, email)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return dto.UserResponse{}, err
	}

	status := models.StatusPending
	if req.Status != "" {
		status = models.UserStatus(req.Status)
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PhoneNumber:  strings.TrimSpace(req.PhoneNumber),
		Role:         models.UserRole(req.Role),
		Status:       status,
		CreatedBy:    s.actor(req.CreatedBy, actx),
	}

	err = s.uow.Do(ctx, func(users repository.UserRepository, activities repository.ActivityLogRepository) error {
		if err := users.Create(ctx, &user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: username %s", ErrUserAlreadyExists, username)
			}
			return err
		}
		return activities.Create(ctx, s.audit(user.ID, models.ActivityUserCreated, "User account created successfully", actx, datatypes.JSONMap{
			"username": user.Username,
			"role":     string(user.Role),
		}))
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.invalidateDashboard(ctx)
	s.logger.Info().Uint("user_id", user.ID).Str("username", user.Username).Msg("user created")
	return dto.NewUserResponse(user), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, fmt.Errorf("%w: id %d", ErrUserNotFound, id)
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) GetByUsername(ctx context.Context, username string) (dto.UserResponse, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, fmt.Errorf("%w: username %s", ErrUserNotFound, username)
		}
		return dto.UserResponse{}, err
	}
	return dto.NewUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, req dto.UserListRequest) (dto.UserListResponse, error) {
	filter := repository.UserFilter{
		Search:   strings.TrimSpace(req.Search),
		Role:     models.UserRole(strings.TrimSpace(req.Role)),
		Status:   models.UserStatus(strings.TrimSpace(req.Status)),
		Page:     req.Page,
		PageSize: req.PageSize,
	}

	users, total, err := s.users.List(ctx, filter)
	if err != nil {
		return dto.UserListResponse{}, err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		items = append(items, dto.NewUserResponse(user))
	}

	return dto.UserListResponse{Items: items, Pagination: paginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *userService) Update(ctx context.Context, id uint, req dto.UserUpdateRequest, actx ActivityContext) (dto.UserResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.UserResponse{}, err
	}

	var updated models.User
	err := s.uow.Do(ctx, func(users repository.UserRepository, activities repository.ActivityLogRepository) error {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
			}
			return err
		}

		email := strings.TrimSpace(req.Email)
		if !strings.EqualFold(email, user.Email) {
			taken, err := users.ExistsByEmailExcluding(ctx, email, user.ID)
			if err != nil {
				return err
			}
			if taken {
				return fmt.Errorf("%w: email %s", ErrUserAlreadyExists, email)
			}
		}

		user.Email = email
		user.FirstName = strings.TrimSpace(req.FirstName)
		user.LastName = strings.TrimSpace(req.LastName)
		user.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
		if req.Role != nil {
			user.Role = models.UserRole(*req.Role)
		}
		if req.Status != nil {
			user.Status = models.UserStatus(*req.Status)
		}
		user.UpdatedBy = s.actor(req.UpdatedBy, actx)

		if err := users.Save(ctx, &user); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("%w: email %s", ErrUserAlreadyExists, email)
			}
			return err
		}
		updated = user

		return activities.Create(ctx, s.audit(user.ID, models.ActivityUserUpdated, "User account updated successfully", actx, nil))
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.invalidateDashboard(ctx)
	return dto.NewUserResponse(updated), nil
}

func (s *userService) Delete(ctx context.Context, id uint, actx ActivityContext) error {
	err := s.uow.Do(ctx, func(users repository.UserRepository, activities repository.ActivityLogRepository) error {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
			}
			return err
		}

		user.IsDeleted = true
		user.Status = models.StatusInactive
		user.UpdatedBy = actx.Actor
		if err := users.Save(ctx, &user); err != nil {
			return err
		}

		return activities.Create(ctx, s.audit(user.ID, models.ActivityUserDeleted, "User account deleted", actx, nil))
	})
	if err != nil {
		return err
	}

	s.invalidateDashboard(ctx)
	s.logger.Info().Uint("user_id", id).Msg("user soft deleted")
	return nil
}

func (s *userService) Block(ctx context.Context, id uint, reason string, actx ActivityContext) (dto.UserResponse, error) {
	var blocked models.User
	err := s.uow.Do(ctx, func(users repository.UserRepository, activities repository.ActivityLogRepository) error {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
			}
			return err
		}

		user.Status = models.StatusBlocked
		user.UpdatedBy = actx.Actor
		if err := users.Save(ctx, &user); err != nil {
			return err
		}
		blocked = user

		data := datatypes.JSONMap{}
		if reason != "" {
			data["reason"] = reason
		}
		return activities.Create(ctx, s.audit(user.ID, models.ActivityUserBlocked, "User account blocked", actx, data))
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.invalidateDashboard(ctx)
	s.logger.Warn().Uint("user_id", id).Str("reason", reason).Msg("user blocked")
	return dto.NewUserResponse(blocked), nil
}

func (s *userService) Unblock(ctx context.Context, id uint, actx ActivityContext) (dto.UserResponse, error) {
	var unblocked models.User
	err := s.uow.Do(ctx, func(users repository.UserRepository, activities repository.ActivityLogRepository) error {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
			}
			return err
		}

		// Unblocking always reactivates and clears any standing lock.
		user.Status = models.StatusActive
		user.Unlock()
		user.UpdatedBy = actx.Actor
		if err := users.Save(ctx, &user); err != nil {
			return err
		}
		unblocked = user

		return activities.Create(ctx, s.audit(user.ID, models.ActivityUserUnblocked, "User account unblocked", actx, nil))
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.invalidateDashboard(ctx)
	return dto.NewUserResponse(unblocked), nil
}

func (s *userService) Lock(ctx context.Context, id uint, minutes int, actx ActivityContext) (dto.UserResponse, error) {
	var locked models.User
	err := s.uow.Do(ctx, func(users repository.UserRepository, activities repository.ActivityLogRepository) error {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
			}
			return err
		}

		// Non-positive minutes produce an already-expired lock.
		user.Lock(minutes, time.Now())
		user.UpdatedBy = actx.Actor
		if err := users.Save(ctx, &user); err != nil {
			return err
		}
		locked = user

		return activities.Create(ctx, s.audit(user.ID, models.ActivityAccountLocked, "Account locked by administrator", actx, datatypes.JSONMap{
			"minutes": minutes,
		}))
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.invalidateDashboard(ctx)
	s.logger.Warn().Uint("user_id", id).Int("minutes", minutes).Msg("account locked")
	return dto.NewUserResponse(locked), nil
}

func (s *userService) Unlock(ctx context.Context, id uint, actx ActivityContext) (dto.UserResponse, error) {
	var unlocked models.User
	err := s.uow.Do(ctx, func(users repository.UserRepository, activities repository.ActivityLogRepository) error {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
			}
			return err
		}

		user.Unlock()
		user.UpdatedBy = actx.Actor
		if err := users.Save(ctx, &user); err != nil {
			return err
		}
		unlocked = user

		return activities.Create(ctx, s.audit(user.ID, models.ActivityAccountUnlocked, "Account unlocked by administrator", actx, nil))
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.invalidateDashboard(ctx)
	return dto.NewUserResponse(unlocked), nil
}

func (s *userService) ResetPassword(ctx context.Context, id uint, newPassword string, actx ActivityContext) error {
	if len(newPassword) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidArgument)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	err = s.uow.Do(ctx, func(users repository.UserRepository, activities repository.ActivityLogRepository) error {
		user, err := users.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: id %d", ErrUserNotFound, id)
			}
			return err
		}

		user.PasswordHash = hash
		user.LoginAttempts = 0
		user.UpdatedBy = actx.Actor
		if err := users.Save(ctx, &user); err != nil {
			return err
		}

		return activities.Create(ctx, s.audit(user.ID, models.ActivityPasswordReset, "Password reset by administrator", actx, nil))
	})
	if err != nil {
		return err
	}

	s.invalidateDashboard(ctx)
	return nil
}

func (s *userService) RecordLoginSuccess(ctx context.Context, username string, actx ActivityContext) (dto.UserResponse, error) {
	var updated models.User
	err := s.uow.Do(ctx, func(users repository.UserRepository, activities repository.ActivityLogRepository) error {
		user, err := users.GetByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: username %s", ErrUserNotFound, username)
			}
			return err
		}

		now := time.Now()
		if !user.CanLogin(now) {
			if user.IsLocked(now) {
				return fmt.Errorf("%w: until %s", ErrAccountLocked, user.LockedUntil.Format(time.RFC3339))
			}
			return fmt.Errorf("%w: username %s", ErrUserNotFound, username)
		}

		user.LastLogin = &now
		user.LoginAttempts = 0
		if err := users.Save(ctx, &user); err != nil {
			return err
		}
		updated = user

		return activities.Create(ctx, s.audit(user.ID, models.ActivityLoginSuccess, "Login successful", actx, nil))
	})
	if err != nil {
		return dto.UserResponse{}, err
	}

	s.invalidateDashboard(ctx)
	return dto.NewUserResponse(updated), nil
}

func (s *userService) RecordLoginFailure(ctx context.Context, username string, actx ActivityContext) error {
	err := s.uow.Do(ctx, func(users repository.UserRepository, activities repository.ActivityLogRepository) error {
		user, err := users.GetByUsername(ctx, strings.TrimSpace(username))
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: username %s", ErrUserNotFound, username)
			}
			return err
		}

		user.LoginAttempts++
		locked := false
		if user.LoginAttempts >= MaxLoginAttempts {
			user.Lock(LockDurationMinutes, time.Now())
			locked = true
		}
		if err := users.Save(ctx, &user); err != nil {
			return err
		}

		entry := s.audit(user.ID, models.ActivityLoginFailed, "Login failed", actx, datatypes.JSONMap{
			"attempts": user.LoginAttempts,
		})
		entry.Success = false
		entry.ErrorMessage = "invalid credentials"
		if err := activities.Create(ctx, entry); err != nil {
			return err
		}

		if locked {
			s.logger.Warn().Uint("user_id", user.ID).Int("attempts", user.LoginAttempts).Msg("account locked after repeated failures")
			return activities.Create(ctx, s.audit(user.ID, models.ActivityAccountLocked, "Account locked after repeated login failures", actx, nil))
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateDashboard(ctx)
	return nil
}

func (s *userService) Statistics(ctx context.Context) (dto.UserStatisticsResponse, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return dto.UserStatisticsResponse{}, err
	}
	active, err := s.users.CountByStatus(ctx, models.StatusActive)
	if err != nil {
		return dto.UserStatisticsResponse{}, err
	}
	blocked, err := s.users.CountByStatus(ctx, models.StatusBlocked)
	if err != nil {
		return dto.UserStatisticsResponse{}, err
	}
	pending, err := s.users.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return dto.UserStatisticsResponse{}, err
	}

	return dto.UserStatisticsResponse{
		TotalUsers:   total,
		ActiveUsers:  active,
		BlockedUsers: blocked,
		PendingUsers: pending,
	}, nil
}

func (s *userService) actor(requested string, actx ActivityContext) string {
	if requested != "" {
		return requested
	}
	return actx.Actor
}

func (s *userService) audit(userID uint, activityType, description string, actx ActivityContext, data datatypes.JSONMap) *models.UserActivity {
	return &models.UserActivity{
		UserID:            userID,
		ActivityType:      activityType,
		Description:       description,
		IPAddress:         actx.IPAddress,
		UserAgent:         actx.UserAgent,
		SessionID:         actx.SessionID,
		Success:           true,
		AdditionalData:    data,
		ActivityTimestamp: time.Now(),
	}
}

func paginationMeta(page, pageSize int, total int64) dto.PaginationMeta {
	meta := dto.PaginationMeta{
		Page:       maxInt(page, 1),
		PageSize:   pageSize,
		TotalItems: total,
	}
	if pageSize > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(pageSize)))
	} else {
		meta.TotalPages = 1
	}
	return meta
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
