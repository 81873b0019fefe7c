package service

import (
	"context"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/vims-insurance/admin-api/internal/models"
	"github.com/vims-insurance/admin-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

type memoryUserRepo struct {
	users  []models.User
	nextID uint
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{nextID: 1}
}

func (m *memoryUserRepo) Create(ctx context.Context, user *models.User) error {
	for _, existing := range m.users {
		if existing.Username == user.Username || strings.EqualFold(existing.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	user.ID = m.nextID
	m.nextID++
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	m.users = append(m.users, *user)
	return nil
}

func (m *memoryUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	for _, user := range m.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	for _, user := range m.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *memoryUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUserRepo) ExistsByEmailExcluding(ctx context.Context, email string, excludeID uint) (bool, error) {
	for _, user := range m.users {
		if user.ID != excludeID && strings.EqualFold(user.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUserRepo) List(ctx context.Context, filter repository.UserFilter) ([]models.User, int64, error) {
	matched := make([]models.User, 0, len(m.users))
	for _, user := range m.users {
		if !filter.IncludeDeleted && user.IsDeleted {
			continue
		}
		if filter.Role != "" && user.Role != filter.Role {
			continue
		}
		if filter.Status != "" && user.Status != filter.Status {
			continue
		}
		if filter.Search != "" {
			needle := strings.ToLower(filter.Search)
			haystack := strings.ToLower(user.FirstName + " " + user.LastName + " " + user.Username)
			if !strings.Contains(haystack, needle) {
				continue
			}
		}
		matched = append(matched, user)
	}
	return matched, int64(len(matched)), nil
}

func (m *memoryUserRepo) Save(ctx context.Context, user *models.User) error {
	for i, existing := range m.users {
		if existing.ID == user.ID {
			user.UpdatedAt = time.Now()
			m.users[i] = *user
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryUserRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.users)), nil
}

func (m *memoryUserRepo) CountByRole(ctx context.Context, role models.UserRole) (int64, error) {
	var count int64
	for _, user := range m.users {
		if !user.IsDeleted && user.Role == role {
			count++
		}
	}
	return count, nil
}

func (m *memoryUserRepo) CountByStatus(ctx context.Context, status models.UserStatus) (int64, error) {
	var count int64
	for _, user := range m.users {
		if !user.IsDeleted && user.Status == status {
			count++
		}
	}
	return count, nil
}

type memoryActivityRepo struct {
	entries []models.UserActivity
	nextID  uint
	failing bool
}

func newMemoryActivityRepo() *memoryActivityRepo {
	return &memoryActivityRepo{nextID: 1}
}

func (m *memoryActivityRepo) Create(ctx context.Context, entry *models.UserActivity) error {
	if m.failing {
		return gorm.ErrInvalidData
	}
	entry.ID = m.nextID
	m.nextID++
	if entry.ActivityTimestamp.IsZero() {
		entry.ActivityTimestamp = time.Now()
	}
	entry.CreatedAt = time.Now()
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryActivityRepo) List(ctx context.Context, filter repository.ActivityFilter) ([]models.UserActivity, int64, error) {
	matched := make([]models.UserActivity, 0, len(m.entries))
	for _, entry := range m.entries {
		if filter.UserID != nil && entry.UserID != *filter.UserID {
			continue
		}
		if filter.ActivityType != "" && entry.ActivityType != filter.ActivityType {
			continue
		}
		if filter.Success != nil && entry.Success != *filter.Success {
			continue
		}
		if filter.From != nil && entry.ActivityTimestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && entry.ActivityTimestamp.After(*filter.To) {
			continue
		}
		matched = append(matched, entry)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ActivityTimestamp.After(matched[j].ActivityTimestamp)
	})
	total := int64(len(matched))
	if filter.PageSize > 0 && len(matched) > filter.PageSize {
		matched = matched[:filter.PageSize]
	}
	return matched, total, nil
}

func (m *memoryActivityRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *memoryActivityRepo) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	for _, entry := range m.entries {
		if entry.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (m *memoryActivityRepo) CountByType(ctx context.Context, activityType string) (int64, error) {
	var count int64
	for _, entry := range m.entries {
		if entry.ActivityType == activityType {
			count++
		}
	}
	return count, nil
}

func (m *memoryActivityRepo) CountBySuccess(ctx context.Context, success bool) (int64, error) {
	var count int64
	for _, entry := range m.entries {
		if entry.Success == success {
			count++
		}
	}
	return count, nil
}

func (m *memoryActivityRepo) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	for _, entry := range m.entries {
		if !entry.ActivityTimestamp.Before(from) && !entry.ActivityTimestamp.After(to) {
			count++
		}
	}
	return count, nil
}

func (m *memoryActivityRepo) MostFrequentTypes(ctx context.Context, limit int) ([]repository.ActivityTypeCount, error) {
	counts := make(map[string]int64)
	for _, entry := range m.entries {
		counts[entry.ActivityType]++
	}
	out := make([]repository.ActivityTypeCount, 0, len(counts))
	for activityType, count := range counts {
		out = append(out, repository.ActivityTypeCount{ActivityType: activityType, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryActivityRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	kept := m.entries[:0]
	var removed int64
	for _, entry := range m.entries {
		if entry.ActivityTimestamp.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, entry)
	}
	m.entries = kept
	return removed, nil
}

func (m *memoryActivityRepo) byType(activityType string) []models.UserActivity {
	out := make([]models.UserActivity, 0)
	for _, entry := range m.entries {
		if entry.ActivityType == activityType {
			out = append(out, entry)
		}
	}
	return out
}

type memoryConfigRepo struct {
	entries []models.SystemConfiguration
	nextID  uint
}

func newMemoryConfigRepo() *memoryConfigRepo {
	return &memoryConfigRepo{nextID: 1}
}

func (m *memoryConfigRepo) Create(ctx context.Context, entry *models.SystemConfiguration) error {
	for _, existing := range m.entries {
		if existing.ConfigKey == entry.ConfigKey {
			return gorm.ErrDuplicatedKey
		}
	}
	entry.ID = m.nextID
	m.nextID++
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now
	m.entries = append(m.entries, *entry)
	return nil
}

func (m *memoryConfigRepo) Save(ctx context.Context, entry *models.SystemConfiguration) error {
	for i, existing := range m.entries {
		if existing.ID == entry.ID {
			entry.UpdatedAt = time.Now()
			m.entries[i] = *entry
			return nil
		}
	}
	return m.Create(ctx, entry)
}

func (m *memoryConfigRepo) GetByKey(ctx context.Context, key string) (models.SystemConfiguration, error) {
	for _, entry := range m.entries {
		if entry.ConfigKey == key {
			return entry, nil
		}
	}
	return models.SystemConfiguration{}, gorm.ErrRecordNotFound
}

func (m *memoryConfigRepo) ExistsByKey(ctx context.Context, key string) (bool, error) {
	_, err := m.GetByKey(ctx, key)
	return err == nil, nil
}

func (m *memoryConfigRepo) Delete(ctx context.Context, entry *models.SystemConfiguration) error {
	for i, existing := range m.entries {
		if existing.ID == entry.ID {
			m.entries = append(m.entries[:i], m.entries[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *memoryConfigRepo) ListAll(ctx context.Context) ([]models.SystemConfiguration, error) {
	return m.sorted(m.entries), nil
}

func (m *memoryConfigRepo) ListByType(ctx context.Context, configType models.ConfigType) ([]models.SystemConfiguration, error) {
	return m.filter(func(entry models.SystemConfiguration) bool { return entry.ConfigType == configType }), nil
}

func (m *memoryConfigRepo) ListReadOnly(ctx context.Context) ([]models.SystemConfiguration, error) {
	return m.filter(func(entry models.SystemConfiguration) bool { return entry.IsReadOnly }), nil
}

func (m *memoryConfigRepo) ListEncrypted(ctx context.Context) ([]models.SystemConfiguration, error) {
	return m.filter(func(entry models.SystemConfiguration) bool { return entry.IsEncrypted }), nil
}

func (m *memoryConfigRepo) ListByKeys(ctx context.Context, keys []string) ([]models.SystemConfiguration, error) {
	keySet := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		keySet[key] = struct{}{}
	}
	return m.filter(func(entry models.SystemConfiguration) bool {
		_, ok := keySet[entry.ConfigKey]
		return ok
	}), nil
}

func (m *memoryConfigRepo) ListByKeyPrefixes(ctx context.Context, prefixes ...string) ([]models.SystemConfiguration, error) {
	return m.filter(func(entry models.SystemConfiguration) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(entry.ConfigKey, prefix) {
				return true
			}
		}
		return false
	}), nil
}

func (m *memoryConfigRepo) SearchByKeyPattern(ctx context.Context, pattern string) ([]models.SystemConfiguration, error) {
	prefix := strings.TrimSuffix(pattern, "%")
	return m.filter(func(entry models.SystemConfiguration) bool {
		return strings.HasPrefix(entry.ConfigKey, prefix)
	}), nil
}

func (m *memoryConfigRepo) SearchByDescription(ctx context.Context, term string) ([]models.SystemConfiguration, error) {
	needle := strings.ToLower(term)
	return m.filter(func(entry models.SystemConfiguration) bool {
		return strings.Contains(strings.ToLower(entry.Description), needle)
	}), nil
}

func (m *memoryConfigRepo) ListNeedingEncryption(ctx context.Context) ([]models.SystemConfiguration, error) {
	return m.filter(func(entry models.SystemConfiguration) bool {
		if entry.IsEncrypted {
			return false
		}
		key := strings.ToLower(entry.ConfigKey)
		return strings.Contains(key, "password") || strings.Contains(key, "secret") || strings.Contains(key, "key")
	}), nil
}

func (m *memoryConfigRepo) Count(ctx context.Context) (int64, error) {
	return int64(len(m.entries)), nil
}

func (m *memoryConfigRepo) CountByType(ctx context.Context, configType models.ConfigType) (int64, error) {
	entries, _ := m.ListByType(ctx, configType)
	return int64(len(entries)), nil
}

func (m *memoryConfigRepo) CountReadOnly(ctx context.Context) (int64, error) {
	entries, _ := m.ListReadOnly(ctx)
	return int64(len(entries)), nil
}

func (m *memoryConfigRepo) CountEncrypted(ctx context.Context) (int64, error) {
	entries, _ := m.ListEncrypted(ctx)
	return int64(len(entries)), nil
}

func (m *memoryConfigRepo) filter(keep func(models.SystemConfiguration) bool) []models.SystemConfiguration {
	out := make([]models.SystemConfiguration, 0)
	for _, entry := range m.entries {
		if keep(entry) {
			out = append(out, entry)
		}
	}
	return m.sorted(out)
}

func (m *memoryConfigRepo) sorted(entries []models.SystemConfiguration) []models.SystemConfiguration {
	out := append([]models.SystemConfiguration(nil), entries...)
	sort.Slice(out, func(i, j int) bool { return out[i].ConfigKey < out[j].ConfigKey })
	return out
}

// memoryUnitOfWork runs the unit against the shared fakes without real
// transaction semantics; rollback behavior is covered by the repository tests.
type memoryUnitOfWork struct {
	users      *memoryUserRepo
	activities *memoryActivityRepo
}

func (m *memoryUnitOfWork) Do(ctx context.Context, fn func(users repository.UserRepository, activities repository.ActivityLogRepository) error) error {
	return fn(m.users, m.activities)
}
