package http

import (
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"leadpulse/internal/config"
	"leadpulse/internal/reports"
)

// AnalyticsIndexAction computes and returns the activity summary on demand.
// `days` bounds the trailing window; 0 means all recorded history.
func AnalyticsIndexAction(ctx *cartridge.Context) error {
	cfg := config.GetConfig()

	days := cfg.DailyCountsWindowDays
	if raw := ctx.Query("days", ""); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "days must be a non-negative integer"})
		}
		days = parsed
	}

	report, err := reports.ComputeReport(ctx.DB(), time.Duration(days)*24*time.Hour)
	if err != nil {
		ctx.Logger.Error("Failed to compute analytics", slog.Any("error", err))
		return respondStorageError(ctx, err, "Failed to compute analytics")
	}

	return ctx.JSON(report)
}
