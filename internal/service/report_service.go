package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/vims-insurance/admin-api/internal/dto"
	"github.com/vims-insurance/admin-api/internal/models"
	"github.com/vims-insurance/admin-api/internal/repository"
)

const dashboardCacheKey = "reports:dashboard"

// ReportService aggregates accounts, audit trail, and configuration data
// into the reports behind the admin panel.
type ReportService interface {
	Dashboard(ctx context.Context) (dto.DashboardResponse, error)
	InvalidateDashboard(ctx context.Context)
	SystemOverview(ctx context.Context) (dto.SystemOverviewResponse, error)
	UserReport(ctx context.Context) (dto.UserReportResponse, error)
	ActivityReport(ctx context.Context, from, to time.Time) (dto.ActivityReportResponse, error)
	Health(ctx context.Context) dto.HealthResponse
}

type reportService struct {
	users      repository.UserRepository
	activities repository.ActivityLogRepository
	configs    repository.ConfigurationRepository
	db         *gorm.DB
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewReportService constructs the reporting service.
func NewReportService(users repository.UserRepository, activities repository.ActivityLogRepository, configs repository.ConfigurationRepository, db *gorm.DB, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) ReportService {
	return &reportService{
		users:      users,
		activities: activities,
		configs:    configs,
		db:         db,
		cache:      cache,
		cacheTTL:   ttl,
		logger:     logger.With().Str("component", "report_service").Logger(),
		tracer:     otel.Tracer("github.com/vims-insurance/admin-api/internal/service/report"),
		now:        time.Now,
	}
}

func (s *reportService) Dashboard(ctx context.Context) (dto.DashboardResponse, error) {
	ctx, span := s.tracer.Start(ctx, "reports.dashboard")
	span.SetAttributes(attribute.String("reports.cache_key", dashboardCacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, dashboardCacheKey).Result()
		if err == nil {
			var response dto.DashboardResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				span.SetAttributes(attribute.Bool("reports.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read dashboard cache")
			span.RecordError(err)
		}
	}

	dashboard, err := s.buildDashboard(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dashboard_aggregation_failed")
		return dto.DashboardResponse{}, err
	}
	span.SetAttributes(attribute.Int64("reports.total_users", dashboard.TotalUsers))

	if s.cache != nil {
		payload, err := json.Marshal(dashboard)
		if err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store dashboard cache")
				span.RecordError(err)
			}
		}
	}

	return dashboard, nil
}

// InvalidateDashboard drops the cached dashboard so the next read recomputes
// it. Account mutations call this to keep the panel fresh inside the TTL.
func (s *reportService) InvalidateDashboard(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate dashboard cache")
	}
}

func (s *reportService) buildDashboard(ctx context.Context) (dto.DashboardResponse, error) {
	now := s.now()

	total, err := s.users.Count(ctx)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	active, err := s.users.CountByStatus(ctx, models.StatusActive)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	blocked, err := s.users.CountByStatus(ctx, models.StatusBlocked)
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	pending, err := s.users.CountByStatus(ctx, models.StatusPending)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	today, err := s.activities.CountBetween(ctx, startOfDay, now)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	failed := false
	_, failedToday, err := s.activities.List(ctx, repository.ActivityFilter{
		ActivityType: models.ActivityLoginFailed,
		Success:      &failed,
		From:         &startOfDay,
		PageSize:     1,
	})
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	recent, _, err := s.activities.List(ctx, repository.ActivityFilter{PageSize: 10})
	if err != nil {
		return dto.DashboardResponse{}, err
	}
	recentItems := make([]dto.ActivityResponse, 0, len(recent))
	for _, entry := range recent {
		recentItems = append(recentItems, dto.NewActivityResponse(entry))
	}

	frequent, err := s.activities.MostFrequentTypes(ctx, 5)
	if err != nil {
		return dto.DashboardResponse{}, err
	}

	return dto.DashboardResponse{
		GeneratedAt:       now,
		TotalUsers:        total,
		ActiveUsers:       active,
		BlockedUsers:      blocked,
		PendingUsers:      pending,
		ActivitiesToday:   today,
		FailedLoginsToday: failedToday,
		RecentActivities:  recentItems,
		TopActivityTypes:  newTypeCounts(frequent),
	}, nil
}

func (s *reportService) SystemOverview(ctx context.Context) (dto.SystemOverviewResponse, error) {
	now := s.now()

	userStats, err := s.userStatistics(ctx)
	if err != nil {
		return dto.SystemOverviewResponse{}, err
	}
	activityStats, err := s.activityStatistics(ctx)
	if err != nil {
		return dto.SystemOverviewResponse{}, err
	}
	byRole, byStatus, err := s.userBreakdowns(ctx)
	if err != nil {
		return dto.SystemOverviewResponse{}, err
	}
	configStats, err := s.configurationStatistics(ctx)
	if err != nil {
		return dto.SystemOverviewResponse{}, err
	}

	return dto.SystemOverviewResponse{
		GeneratedAt:       now,
		Users:             userStats,
		Activities:        activityStats,
		UsersByRole:       byRole,
		UsersByStatus:     byStatus,
		ConfigurationInfo: configStats,
	}, nil
}

func (s *reportService) UserReport(ctx context.Context) (dto.UserReportResponse, error) {
	total, err := s.users.Count(ctx)
	if err != nil {
		return dto.UserReportResponse{}, err
	}
	byRole, byStatus, err := s.userBreakdowns(ctx)
	if err != nil {
		return dto.UserReportResponse{}, err
	}

	return dto.UserReportResponse{
		GeneratedAt:   s.now(),
		TotalUsers:    total,
		UsersByRole:   byRole,
		UsersByStatus: byStatus,
	}, nil
}

func (s *reportService) ActivityReport(ctx context.Context, from, to time.Time) (dto.ActivityReportResponse, error) {
	total, err := s.activities.Count(ctx)
	if err != nil {
		return dto.ActivityReportResponse{}, err
	}
	inWindow, err := s.activities.CountBetween(ctx, from, to)
	if err != nil {
		return dto.ActivityReportResponse{}, err
	}
	successes, err := s.activities.CountBySuccess(ctx, true)
	if err != nil {
		return dto.ActivityReportResponse{}, err
	}
	failures, err := s.activities.CountBySuccess(ctx, false)
	if err != nil {
		return dto.ActivityReportResponse{}, err
	}
	frequent, err := s.activities.MostFrequentTypes(ctx, 10)
	if err != nil {
		return dto.ActivityReportResponse{}, err
	}

	return dto.ActivityReportResponse{
		GeneratedAt:     s.now(),
		From:            from,
		To:              to,
		TotalActivities: total,
		InWindow:        inWindow,
		SuccessCount:    successes,
		FailureCount:    failures,
		MostFrequent:    newTypeCounts(frequent),
	}, nil
}

// Health never fails; degraded dependencies are reported per component.
func (s *reportService) Health(ctx context.Context) dto.HealthResponse {
	components := make(map[string]dto.HealthComponent, 2)
	status := "UP"

	dbComponent := dto.HealthComponent{Status: "UP"}
	if sqlDB, err := s.db.DB(); err != nil {
		dbComponent = dto.HealthComponent{Status: "DOWN", Detail: err.Error()}
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbComponent = dto.HealthComponent{Status: "DOWN", Detail: err.Error()}
	}
	if dbComponent.Status != "UP" {
		status = "DEGRADED"
	}
	components["database"] = dbComponent

	if s.cache != nil {
		cacheComponent := dto.HealthComponent{Status: "UP"}
		if err := s.cache.Ping(ctx).Err(); err != nil {
			cacheComponent = dto.HealthComponent{Status: "DOWN", Detail: err.Error()}
			status = "DEGRADED"
		}
		components["cache"] = cacheComponent
	}

	return dto.HealthResponse{
		Status:     status,
		CheckedAt:  s.now(),
		Components: components,
	}
}

func (s *reportService) userStatistics(ctx context.Context) (dto.UserStatisticsResponse, error) {
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
	return dto.UserStatisticsResponse{TotalUsers: total, ActiveUsers: active, BlockedUsers: blocked, PendingUsers: pending}, nil
}

func (s *reportService) activityStatistics(ctx context.Context) (dto.ActivityStatisticsResponse, error) {
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
	now := s.now()
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

func (s *reportService) configurationStatistics(ctx context.Context) (dto.ConfigurationStatisticsResponse, error) {
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

func (s *reportService) userBreakdowns(ctx context.Context) (map[string]int64, map[string]int64, error) {
	byRole := make(map[string]int64, len(models.UserRoles()))
	for _, role := range models.UserRoles() {
		count, err := s.users.CountByRole(ctx, role)
		if err != nil {
			return nil, nil, err
		}
		byRole[string(role)] = count
	}

	byStatus := make(map[string]int64, len(models.UserStatuses()))
	for _, status := range models.UserStatuses() {
		count, err := s.users.CountByStatus(ctx, status)
		if err != nil {
			return nil, nil, err
		}
		byStatus[string(status)] = count
	}

	return byRole, byStatus, nil
}
