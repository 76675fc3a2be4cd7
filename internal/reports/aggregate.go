// Package reports computes on-demand aggregates over the activity store and
// renders admin/export views. Nothing here is persisted: every report is
// recomputed from the store so it always reflects the latest writes.
package reports

import (
	"time"

	"gorm.io/gorm"

	"leadpulse/internal/activities"
)

// DailyCount is one calendar-day bucket in the deployment's local timezone.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// AggregateReport is a derived summary of stored activities. It is a value
// object produced fresh on each request and never stored.
type AggregateReport struct {
	TotalActivities     int64            `json:"total_activities"`
	CountsByType        map[string]int64 `json:"counts_by_type"`
	ServiceViewCount    int64            `json:"service_view_count"`
	CategoryBrowseCount int64            `json:"category_browse_count"`
	InquiryCount        int64            `json:"inquiry_count"`
	DailyCounts         []DailyCount     `json:"daily_counts"`
}

type typeCountRow struct {
	ActivityType string
	Count        int64
}

// ComputeReport aggregates the current store contents. A zero window means
// all records; otherwise only activities within the trailing window count.
//
// A full scan per call is the intended design: the store is sized for a single
// small business, not high-volume telemetry, and fresh computation avoids any
// cache-invalidation concern.
func ComputeReport(db *gorm.DB, window time.Duration) (*AggregateReport, error) {
	cutoff := time.Now().UTC().Add(-window)
	scoped := func() *gorm.DB {
		query := db.Model(&activities.Activity{})
		if window > 0 {
			query = query.Where("created_at >= ?", cutoff)
		}
		return query
	}

	report := &AggregateReport{
		CountsByType: make(map[string]int64),
		DailyCounts:  []DailyCount{},
	}

	var typeCounts []typeCountRow
	err := scoped().
		Select("activity_type, COUNT(*) as count").
		Group("activity_type").
		Scan(&typeCounts).Error
	if err != nil {
		return nil, activities.NewStorageUnavailableError("aggregate activity types", err)
	}

	// Type labels are grouped verbatim: the aggregator has no domain knowledge
	// of what a "correct" label is, so near-duplicates are never merged.
	for _, row := range typeCounts {
		report.CountsByType[row.ActivityType] = row.Count
		report.TotalActivities += row.Count
	}
	report.ServiceViewCount = report.CountsByType[activities.TypeServiceView]
	report.CategoryBrowseCount = report.CountsByType[activities.TypeCategoryBrowse]
	report.InquiryCount = report.CountsByType[activities.TypeServiceInquiry]

	// Calendar-day buckets in the deployment's local timezone, ascending so
	// chart rendering doesn't need to re-sort. Days with zero events are not
	// synthesized; gap filling is the chart's concern.
	var daily []DailyCount
	err = scoped().
		Select("strftime('%Y-%m-%d', created_at, 'localtime') as date, COUNT(*) as count").
		Group("date").
		Order("date ASC").
		Scan(&daily).Error
	if err != nil {
		return nil, activities.NewStorageUnavailableError("aggregate daily counts", err)
	}
	if daily != nil {
		report.DailyCounts = daily
	}

	return report, nil
}
