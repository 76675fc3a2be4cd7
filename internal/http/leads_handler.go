package http

import (
	"fmt"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"

	"leadpulse/internal/leads"
	"leadpulse/internal/reports"
)

type LeadsResponse struct {
	Leads []reports.AdminLeadRow `json:"leads"`
	Total int64                  `json:"total"`
}

// LeadsIndexAction lists stored leads for the admin view, newest first.
// An email query narrows the listing to that inquirer's most recent lead.
func LeadsIndexAction(ctx *cartridge.Context) error {
	db := ctx.DB()

	if email := ctx.Query("email", ""); email != "" {
		lead, err := leads.FindLeadByEmail(db, email)
		if err != nil {
			ctx.Logger.Error("Failed to look up lead by email", slog.Any("error", err))
			return respondStorageError(ctx, err, "Failed to fetch leads")
		}
		if lead == nil {
			return ctx.JSON(LeadsResponse{Leads: []reports.AdminLeadRow{}, Total: 0})
		}
		return ctx.JSON(LeadsResponse{
			Leads: reports.ToAdminLeadRows([]leads.Lead{*lead}),
			Total: 1,
		})
	}

	items, err := leads.ListLeads(db)
	if err != nil {
		ctx.Logger.Error("Failed to fetch leads", slog.Any("error", err))
		return respondStorageError(ctx, err, "Failed to fetch leads")
	}

	return ctx.JSON(LeadsResponse{
		Leads: reports.ToAdminLeadRows(items),
		Total: int64(len(items)),
	})
}

// LeadsExportAction streams every stored lead as a date-stamped CSV download.
func LeadsExportAction(ctx *cartridge.Context) error {
	db := ctx.DB()

	items, err := leads.ListLeads(db)
	if err != nil {
		ctx.Logger.Error("Failed to export leads", slog.Any("error", err))
		return respondStorageError(ctx, err, "Failed to export leads")
	}

	ctx.Set("Content-Type", "text/csv; charset=utf-8")
	ctx.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", reports.CSVFileName(time.Now())))

	ctx.Logger.Info("Leads exported", slog.Int("count", len(items)))

	return ctx.Ctx.SendString(reports.LeadsToCSV(items))
}
