package http

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"

	"leadpulse/internal/users"
)

type loginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProcessLoginAction handles an admin login. Credentials arrive as a form
// post or JSON body; the response never reveals whether the email exists.
func ProcessLoginAction(ctx *cartridge.Context) error {
	email := ctx.FormValue("email")
	password := ctx.FormValue("password")

	if email == "" && password == "" {
		var params loginParams
		if err := ctx.BodyParser(&params); err == nil {
			email = params.Email
			password = params.Password
		}
	}

	if email == "" || password == "" {
		return ctx.Status(http.StatusBadRequest).JSON(fiber.Map{"error": "Email and password are required"})
	}

	db := ctx.DB()

	user, err := users.Authenticate(db, ctx.Logger, email, password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			ctx.Logger.Debug("Failed login attempt", slog.String("email", email))
			return ctx.Status(http.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}
		ctx.Logger.Error("Login failed", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
	}

	if err := ctx.Session.SetSession(ctx.Ctx, user.ID); err != nil {
		ctx.Logger.Error("Failed to set session", slog.Any("error", err))
		return ctx.Status(http.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
	}

	ctx.Logger.Debug("Login successful",
		slog.String("email", email),
		slog.Int("userId", int(user.ID)))

	return ctx.JSON(fiber.Map{"message": "Logged in"})
}

// LogoutAction clears the admin session.
func LogoutAction(ctx *cartridge.Context) error {
	userID, isAuthenticated := ctx.Session.GetUserID(ctx.Ctx)
	ctx.Logger.Debug("Logout requested",
		slog.Uint64("userID", uint64(userID)),
		slog.Bool("isAuthenticated", isAuthenticated))

	ctx.Session.ClearSession(ctx.Ctx)

	return ctx.JSON(fiber.Map{"message": "Logged out"})
}
