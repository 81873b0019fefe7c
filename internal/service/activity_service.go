package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vims-insurance/admin-api/internal/dto"
	"github.com/vims-insurance/admin-api/internal/models"
	"github.com/vims-insurance/admin-api/internal/repository"
)

// ActivityService exposes the audit trail: recording entries on behalf of
// other subsystems, browsing with filters, statistics, and retention purge.
type ActivityService interface {
	Record(ctx context.Context, req dto.ActivityRecordRequest, actx ActivityContext) (dto.ActivityResponse, error)
	List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error)
	Statistics(ctx context.Context) (dto.ActivityStatisticsResponse, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	FrequentTypes(ctx context.Context, limit int) ([]dto.ActivityTypeCountResponse, error)
	CleanupOlderThan(ctx context.Context, retentionDays int) (dto.CleanupResponse, error)
}

type activityService struct {
	activities repository.ActivityLogRepository
	users      repository.UserRepository
	validator  *validator.Validate
	logger     zerolog.Logger
}

// NewActivityService constructs the audit trail service.
func NewActivityService(activities repository.ActivityLogRepository, users repository.UserRepository, validator *validator.Validate, logger zerolog.Logger) ActivityService {
	return &activityService{
		activities: activities,
		users:      users,
		validator:  validator,
		logger:     logger.With().Str("component", "activity_service").Logger(),
	}
}

func (s *activityService) Record(ctx context.Context, req dto.ActivityRecordRequest, actx ActivityContext) (dto.ActivityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.ActivityResponse{}, err
	}

	user, err := s.users.GetByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActivityResponse{}, fmt.Errorf("%w: id %d", ErrUserNotFound, req.UserID)
		}
		return dto.ActivityResponse{}, err
	}

	success := true
	if req.Success != nil {
		success = *req.Success
	}

	entry := models.UserActivity{
		UserID:            user.ID,
		ActivityType:      req.ActivityType,
		Description:       req.Description,
		IPAddress:         actx.IPAddress,
		UserAgent:         actx.UserAgent,
		SessionID:         firstNonEmpty(req.SessionID, actx.SessionID),
		Success:           success,
		ErrorMessage:      req.ErrorMessage,
		AdditionalData:    datatypes.JSONMap(req.AdditionalData),
		ActivityTimestamp: time.Now(),
	}
	if err := s.activities.Create(ctx, &entry); err != nil {
		return dto.ActivityResponse{}, err
	}

	entry.User = user
	return dto.NewActivityResponse(entry), nil
}

func (s *activityService) List(ctx context.Context, req dto.ActivityListRequest) (dto.ActivityListResponse, error) {
	filter := repository.ActivityFilter{
		UserID:       req.UserID,
		ActivityType: req.ActivityType,
		Success:      req.Success,
		From:         req.From,
		To:           req.To,
		IPAddress:    req.IPAddress,
		SessionID:    req.SessionID,
		Search:       req.Search,
		Page:         req.Page,
		PageSize:     req.PageSize,
	}

	entries, total, err := s.activities.List(ctx, filter)
	if err != nil {
		return dto.ActivityListResponse{}, err
	}

	items := make([]dto.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.NewActivityResponse(entry))
	}

	return dto.ActivityListResponse{Items: items, Pagination: paginationMeta(req.Page, req.PageSize, total)}, nil
}

func (s *activityService) Statistics(ctx context.Context) (dto.ActivityStatisticsResponse, error) {
	total, err := s.activities.Count(ctx)
	if err != nil {
		return dto.ActivityStatisticsResponse{}, err
	}
	successes, err := s.activities.CountBySuccess(ctx, true)
	if err != nil {
		return dto.ActivityStatisticsResponse{}, err
	}
	failures, err := s.activities.CountBySuccess(ctx, false)
	if err != nil {
		return dto.ActivityStatisticsResponse{}, err
	}

	now := time.Now()
	last24h, err := s.activities.CountBetween(ctx, now.Add(-24*time.Hour), now)
	if err != nil {
		return dto.ActivityStatisticsResponse{}, err
	}

	failedLogins, err := s.activities.CountByType(ctx, models.ActivityLoginFailed)
	if err != nil {
		return dto.ActivityStatisticsResponse{}, err
	}

	frequent, err := s.activities.MostFrequentTypes(ctx, 10)
	if err != nil {
		return dto.ActivityStatisticsResponse{}, err
	}

	return dto.ActivityStatisticsResponse{
		TotalActivities:  total,
		SuccessCount:     successes,
		FailureCount:     failures,
		Last24Hours:      last24h,
		MostFrequent:     newTypeCounts(frequent),
		FailedLoginCount: failedLogins,
	}, nil
}

// CountByUser reports how many audit entries a single account has produced.
func (s *activityService) CountByUser(ctx context.Context, userID uint) (int64, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
		}
		return 0, err
	}
	return s.activities.CountByUser(ctx, userID)
}

func (s *activityService) FrequentTypes(ctx context.Context, limit int) ([]dto.ActivityTypeCountResponse, error) {
	if limit <= 0 {
		limit = 10
	}
	counts, err := s.activities.MostFrequentTypes(ctx, limit)
	if err != nil {
		return nil, err
	}
	return newTypeCounts(counts), nil
}

func (s *activityService) CleanupOlderThan(ctx context.Context, retentionDays int) (dto.CleanupResponse, error) {
	if retentionDays <= 0 {
		return dto.CleanupResponse{}, fmt.Errorf("%w: retention days must be positive", ErrInvalidArgument)
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed, err := s.activities.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return dto.CleanupResponse{}, err
	}

	s.logger.Info().Int64("removed", removed).Time("cutoff", cutoff).Msg("audit retention purge complete")
	return dto.CleanupResponse{RemovedEntries: removed, Cutoff: cutoff}, nil
}

func newTypeCounts(counts []repository.ActivityTypeCount) []dto.ActivityTypeCountResponse {
	out := make([]dto.ActivityTypeCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, dto.ActivityTypeCountResponse{ActivityType: c.ActivityType, Count: c.Count})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
