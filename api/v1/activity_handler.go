// Package v1 exposes the public tracking API consumed by the storefront
// JavaScript snippet: activity collection (regular and beacon) and lead
// submission.
package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"leadpulse/internal/activities"
	"leadpulse/internal/catalog"
	"leadpulse/internal/identity"
)

const errInvalidRequest = "Invalid request"

type CreateActivityParams struct {
	ActivityType string                 `json:"activityType"`
	ServiceID    *uint                  `json:"serviceId"`
	CategoryID   *uint                  `json:"categoryId"`
	Metadata     map[string]interface{} `json:"metadata"`
	Timestamp    time.Time              `json:"timestamp"`
}

// CreateActivityPublicAPIHandler records a browsing activity and returns the
// stored record. Validation problems come back with field detail so the
// snippet can be debugged from the browser console.
func CreateActivityPublicAPIHandler(ctx *cartridge.Context) error {
	var params CreateActivityParams
	if err := ctx.BodyParser(&params); err != nil {
		ctx.Logger.Debug("Failed to parse activity request", slog.Any("error", err))
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}

	activity, err := recordFromParams(ctx, &params)
	if err != nil {
		return respondActivityError(ctx, err)
	}

	return ctx.Status(http.StatusCreated).JSON(activity)
}

// CreateActivityBeaconHandler handles activities sent via navigator.sendBeacon.
// Beacons fire during page unload and nothing is listening for the response,
// so every outcome maps to 202: tracking is best-effort by contract.
func CreateActivityBeaconHandler(ctx *cartridge.Context) error {
	var params CreateActivityParams
	// Beacon payloads arrive as text/plain, so parse the raw body directly.
	if err := json.Unmarshal(ctx.Body(), &params); err != nil {
		ctx.Logger.Debug("Failed to parse beacon request", slog.Any("error", err))
		return ctx.SendStatus(http.StatusAccepted)
	}

	if _, err := recordFromParams(ctx, &params); err != nil {
		ctx.Logger.Debug("Dropped beacon activity", slog.Any("error", err))
		return ctx.SendStatus(http.StatusAccepted)
	}

	return ctx.SendStatus(http.StatusAccepted)
}

func recordFromParams(ctx *cartridge.Context, params *CreateActivityParams) (*activities.Activity, error) {
	actor := identity.Resolve(ctx)

	userAgent := ctx.Get("User-Agent")
	if forwardedUA := ctx.Get("X-Forwarded-User-Agent"); forwardedUA != "" {
		userAgent = forwardedUA
	}

	input := &activities.RecordActivityInput{
		ActorUserID:    actor.UserID,
		ActorSessionID: actor.SessionID,
		ActivityType:   params.ActivityType,
		ServiceID:      params.ServiceID,
		CategoryID:     params.CategoryID,
		Metadata:       params.Metadata,
		IPAddress:      getClientIP(ctx.Ctx),
		UserAgent:      userAgent,
		CreatedAt:      params.Timestamp,
	}

	return activities.RecordActivity(ctx.DBManager, ctx.Logger, input)
}

func respondActivityError(ctx *cartridge.Context, err error) error {
	var invalid *activities.InvalidActivityError
	if errors.As(err, &invalid) {
		return ctx.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  invalid.Error(),
			"code":   "INVALID_ACTIVITY",
			"fields": invalid.Fields,
		})
	}

	var serviceNotFound *catalog.ServiceNotFoundError
	var categoryNotFound *catalog.CategoryNotFoundError
	if errors.As(err, &serviceNotFound) || errors.As(err, &categoryNotFound) {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Referenced catalog entry does not exist",
			"code":  "UNKNOWN_REFERENCE",
		})
	}

	ctx.Logger.Error("Failed to record activity", slog.Any("error", err))
	status := storageFailureStatus(err)
	if status == statusDatabaseBusy {
		return ctx.Status(status).JSON(fiber.Map{})
	}

	return ctx.Status(status).JSON(fiber.Map{
		"error": "Failed to record activity",
		"code":  "STORAGE_ERROR",
	})
}

// statusDatabaseBusy is a custom status telling the snippet to back off and
// retry; sqlite contention is transient by nature.
const statusDatabaseBusy = 599

// storageFailureStatus classifies a write-path failure that is not a domain
// error: sqlite contention maps to the custom busy status, a storage outage
// reported by the store maps to 503, anything else is a plain 500.
func storageFailureStatus(err error) int {
	if strings.Contains(err.Error(), "database is locked") || strings.Contains(err.Error(), "busy") {
		return statusDatabaseBusy
	}
	var unavailable *activities.StorageUnavailableError
	if errors.As(err, &unavailable) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
