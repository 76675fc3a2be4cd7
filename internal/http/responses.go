package http

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"leadpulse/internal/activities"
)

// respondStorageError maps store failures to a generic 5xx. A storage outage
// is temporary, so it gets 503 to signal that a retry may succeed; anything
// else is 500. Internal detail never reaches the response body.
func respondStorageError(ctx *cartridge.Context, err error, message string) error {
	status := http.StatusInternalServerError

	var unavailable *activities.StorageUnavailableError
	if errors.As(err, &unavailable) {
		status = http.StatusServiceUnavailable
	}

	return ctx.Status(status).JSON(fiber.Map{"error": message})
}
