package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"leadpulse/internal/catalog"
	"leadpulse/internal/identity"
	"leadpulse/internal/leads"
)

type CreateLeadParams struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	ServiceID uint   `json:"serviceId"`
	Message   string `json:"message"`
}

// CreateLeadPublicAPIHandler accepts a service inquiry from a contact form.
// Unlike activity tracking this is not best-effort: the visitor is told
// whether their inquiry was stored.
func CreateLeadPublicAPIHandler(ctx *cartridge.Context) error {
	var params CreateLeadParams
	if err := ctx.BodyParser(&params); err != nil {
		ctx.Logger.Debug("Failed to parse lead request", slog.Any("error", err))
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": errInvalidRequest})
	}

	actor := identity.Resolve(ctx)

	lead, err := leads.SubmitLead(ctx.DBManager, ctx.Logger, &leads.SubmitLeadInput{
		ActorUserID:    actor.UserID,
		ActorSessionID: actor.SessionID,
		Name:           params.Name,
		Email:          params.Email,
		Phone:          params.Phone,
		ServiceID:      params.ServiceID,
		Message:        params.Message,
	})
	if err != nil {
		return respondLeadError(ctx, err)
	}

	return ctx.Status(http.StatusCreated).JSON(lead)
}

func respondLeadError(ctx *cartridge.Context, err error) error {
	var invalid *leads.InvalidLeadDataError
	if errors.As(err, &invalid) {
		return ctx.Status(http.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  invalid.Error(),
			"code":   "INVALID_LEAD",
			"fields": invalid.Fields,
		})
	}

	var serviceNotFound *catalog.ServiceNotFoundError
	if errors.As(err, &serviceNotFound) {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "Service does not exist",
			"code":  "UNKNOWN_SERVICE",
		})
	}

	ctx.Logger.Error("Failed to store lead", slog.Any("error", err))
	status := storageFailureStatus(err)
	if status == statusDatabaseBusy {
		return ctx.Status(status).JSON(fiber.Map{})
	}

	return ctx.Status(status).JSON(fiber.Map{
		"error": "Failed to store lead",
		"code":  "STORAGE_ERROR",
	})
}
