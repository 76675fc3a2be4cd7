package activities

import (
	"time"

	"gorm.io/gorm"
)

// Reverse-chronological ordering with insertion order as tiebreaker. The admin
// UI and CSV export both assume this display order.
const recentFirst = "created_at DESC, id DESC"

// ListAll returns every activity, most recent first.
func ListAll(db *gorm.DB) ([]Activity, error) {
	var records []Activity
	if err := db.Order(recentFirst).Find(&records).Error; err != nil {
		return nil, NewStorageUnavailableError("list activities", err)
	}
	return records, nil
}

// FindByType returns activities with the given type, most recent first.
// Unknown types are valid labels: a miss yields an empty slice, not an error.
func FindByType(db *gorm.DB, activityType string) ([]Activity, error) {
	var records []Activity
	if err := db.Where("activity_type = ?", activityType).Order(recentFirst).Find(&records).Error; err != nil {
		return nil, NewStorageUnavailableError("find activities by type", err)
	}
	return records, nil
}

// FindByService returns activities referencing the given catalog service.
func FindByService(db *gorm.DB, serviceID uint) ([]Activity, error) {
	var records []Activity
	if err := db.Where("service_id = ?", serviceID).Order(recentFirst).Find(&records).Error; err != nil {
		return nil, NewStorageUnavailableError("find activities by service", err)
	}
	return records, nil
}

// FindInRange returns activities created within [from, to], most recent first.
func FindInRange(db *gorm.DB, from, to time.Time) ([]Activity, error) {
	var records []Activity
	if err := db.Where("created_at BETWEEN ? AND ?", from, to).Order(recentFirst).Find(&records).Error; err != nil {
		return nil, NewStorageUnavailableError("find activities in range", err)
	}
	return records, nil
}

// ActivityFilters represents filtering options for the admin activities view
type ActivityFilters struct {
	TypeFilter    string
	ServiceFilter uint
	FromDate      time.Time
	ToDate        time.Time
	Limit         int
	Offset        int
}

// ActivitiesResult represents a paginated activities result
type ActivitiesResult struct {
	Activities []Activity
	Total      int64
}

// GetFilteredActivities retrieves filtered and paginated activities
func GetFilteredActivities(db *gorm.DB, filters ActivityFilters) (ActivitiesResult, error) {
	query := db.Model(&Activity{})

	if !filters.FromDate.IsZero() && !filters.ToDate.IsZero() {
		query = query.Where("created_at BETWEEN ? AND ?", filters.FromDate, filters.ToDate)
	}
	if filters.TypeFilter != "" {
		query = query.Where("activity_type = ?", filters.TypeFilter)
	}
	if filters.ServiceFilter != 0 {
		query = query.Where("service_id = ?", filters.ServiceFilter)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ActivitiesResult{}, NewStorageUnavailableError("count activities", err)
	}

	var records []Activity
	if err := query.Order(recentFirst).
		Limit(filters.Limit).
		Offset(filters.Offset).
		Find(&records).Error; err != nil {
		return ActivitiesResult{}, NewStorageUnavailableError("list activities", err)
	}

	return ActivitiesResult{
		Activities: records,
		Total:      total,
	}, nil
}
