package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/vims-insurance/admin-api/internal/models"
)

// ActivityFilter narrows activity log queries. All listings are ordered by
// activity timestamp, most recent first.
type ActivityFilter struct {
	UserID       *uint
	ActivityType string
	Success      *bool
	From         *time.Time
	To           *time.Time
	IPAddress    string
	SessionID    string
	Search       string
	Page         int
	PageSize     int
}

// ActivityTypeCount pairs an activity type with its occurrence count.
type ActivityTypeCount struct {
	ActivityType string `json:"activity_type"`
	Count        int64  `json:"count"`
}

// ActivityLogRepository persists and queries the append-only audit trail.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *models.UserActivity) error
	List(ctx context.Context, filter ActivityFilter) ([]models.UserActivity, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	CountByType(ctx context.Context, activityType string) (int64, error)
	CountBySuccess(ctx context.Context, success bool) (int64, error)
	CountBetween(ctx context.Context, from, to time.Time) (int64, error)
	MostFrequentTypes(ctx context.Context, limit int) ([]ActivityTypeCount, error)
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type activityLogRepository struct {
	db *gorm.DB
}

// NewActivityLogRepository constructs the activity log repository.
func NewActivityLogRepository(db *gorm.DB) ActivityLogRepository {
	return &activityLogRepository{db: db}
}

func (r *activityLogRepository) Create(ctx context.Context, entry *models.UserActivity) error {
	if entry.ActivityTimestamp.IsZero() {
		entry.ActivityTimestamp = time.Now()
	}

	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityFilter) ([]models.UserActivity, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.UserActivity{})

	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}

	if filter.ActivityType != "" {
		query = query.Where("activity_type = ?", filter.ActivityType)
	}

	if filter.Success != nil {
		query = query.Where("success = ?", *filter.Success)
	}

	if filter.From != nil {
		query = query.Where("activity_timestamp >= ?", *filter.From)
	}

	if filter.To != nil {
		query = query.Where("activity_timestamp <= ?", *filter.To)
	}

	if filter.IPAddress != "" {
		query = query.Where("ip_address = ?", filter.IPAddress)
	}

	if filter.SessionID != "" {
		query = query.Where("session_id = ?", filter.SessionID)
	}

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(description) LIKE ?", like)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page <= 0 {
			page = 1
		}
		offset := (page - 1) * filter.PageSize
		query = query.Limit(filter.PageSize).Offset(offset)
	}

	var entries []models.UserActivity
	if err := query.Preload("User").Order("activity_timestamp DESC").Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *activityLogRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserActivity{}).Count(&count).Error
	return count, err
}

func (r *activityLogRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserActivity{}).
		Where("user_id = ?", userID).
		Count(&count).Error

	return count, err
}

func (r *activityLogRepository) CountByType(ctx context.Context, activityType string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserActivity{}).
		Where("activity_type = ?", activityType).
		Count(&count).Error

	return count, err
}

func (r *activityLogRepository) CountBySuccess(ctx context.Context, success bool) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserActivity{}).
		Where("success = ?", success).
		Count(&count).Error

	return count, err
}

func (r *activityLogRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserActivity{}).
		Where("activity_timestamp BETWEEN ? AND ?", from, to).
		Count(&count).Error

	return count, err
}

func (r *activityLogRepository) MostFrequentTypes(ctx context.Context, limit int) ([]ActivityTypeCount, error) {
	if limit <= 0 {
		limit = 10
	}

	var results []ActivityTypeCount
	err := r.db.WithContext(ctx).Model(&models.UserActivity{}).
		Select("activity_type, COUNT(*) AS count").
		Group("activity_type").
		Order("count DESC").
		Limit(limit).
		Scan(&results).Error

	return results, err
}

// PurgeOlderThan deletes every record strictly older than the cutoff.
// Records stamped exactly at the cutoff are retained.
func (r *activityLogRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("activity_timestamp < ?", cutoff).
		Delete(&models.UserActivity{})

	return result.RowsAffected, result.Error
}
