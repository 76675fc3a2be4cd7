// Package http contains the admin-facing JSON handlers: activity and lead
// listings, the analytics summary, CSV export, auth and health.
package http

import (
	"strconv"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"leadpulse/internal/activities"
	"leadpulse/internal/reports"
)

type PaginationData struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	PerPage     int   `json:"per_page"`
}

type ActivitiesResponse struct {
	Activities []reports.AdminActivityRow `json:"activities"`
	Pagination PaginationData             `json:"pagination"`
}

// ActivitiesIndexAction lists stored activities for the admin view, newest
// first, with optional type/service/range filters.
func ActivitiesIndexAction(ctx *cartridge.Context) error {
	db := ctx.DB()

	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	if page < 1 {
		page = 1
	}
	limit := 50 // Activities per page
	offset := (page - 1) * limit

	typeFilter := ctx.Query("type", "")
	serviceFilter, _ := strconv.Atoi(ctx.Query("service_id", "0"))
	rangeFilter := ctx.Query("range", "last_7_days")

	fromDate, toDate := calculateDateRange(rangeFilter)

	result, err := activities.GetFilteredActivities(db, activities.ActivityFilters{
		TypeFilter:    typeFilter,
		ServiceFilter: uint(serviceFilter),
		FromDate:      fromDate,
		ToDate:        toDate,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		ctx.Logger.Error("Failed to fetch activities", slog.Any("error", err))
		return respondStorageError(ctx, err, "Failed to fetch activities")
	}

	totalPages := (int(result.Total) + limit - 1) / limit

	return ctx.JSON(ActivitiesResponse{
		Activities: reports.ToAdminActivityRows(result.Activities),
		Pagination: PaginationData{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  result.Total,
			PerPage:     limit,
		},
	})
}

// calculateDateRange calculates from and to dates based on range filter
func calculateDateRange(rangeFilter string) (time.Time, time.Time) {
	now := time.Now()
	var fromDate, toDate time.Time

	switch rangeFilter {
	case "today":
		fromDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		toDate = now
	case "yesterday":
		yesterday := now.AddDate(0, 0, -1)
		fromDate = time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 0, 0, 0, 0, yesterday.Location())
		toDate = time.Date(yesterday.Year(), yesterday.Month(), yesterday.Day(), 23, 59, 59, 999999999, yesterday.Location())
	case "last_7_days":
		fromDate = now.AddDate(0, 0, -7)
		toDate = now
	case "last_30_days":
		fromDate = now.AddDate(0, 0, -30)
		toDate = now
	case "last_90_days":
		fromDate = now.AddDate(0, 0, -90)
		toDate = now
	case "this_month":
		fromDate = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		toDate = now
	case "all":
		fromDate = time.Time{}
		toDate = now
	default:
		// Default to last 7 days
		fromDate = now.AddDate(0, 0, -7)
		toDate = now
	}

	return fromDate, toDate
}
