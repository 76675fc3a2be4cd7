package v1

import (
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"leadpulse/internal/catalog"
)

// ListServicesPublicAPIHandler returns the service catalog so storefront
// widgets can render inquiry forms with valid service ids.
func ListServicesPublicAPIHandler(ctx *cartridge.Context) error {
	services, err := catalog.ListServices(ctx.DB())
	if err != nil {
		ctx.Logger.Error("Failed to list services", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to list services",
			"code":  "STORAGE_ERROR",
		})
	}

	return ctx.JSON(fiber.Map{"services": services})
}
