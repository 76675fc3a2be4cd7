package reports

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"leadpulse/internal/activities"
	"leadpulse/internal/identity"
	"leadpulse/internal/leads"
)

const (
	metadataPreviewLimit = 100

	csvDateLayout = "2006-01-02 15:04"
)

// AdminActivityRow is the admin-facing projection of a stored activity.
// Raw client context (IP, user agent) never leaves the store through this view.
type AdminActivityRow struct {
	ID           uint   `json:"id"`
	Actor        string `json:"actor"`
	ActivityType string `json:"activity_type"`
	ServiceID    *uint  `json:"service_id"`
	CategoryID   *uint  `json:"category_id"`
	Metadata     string `json:"metadata"`
	Country      string `json:"country"`
	CreatedAt    string `json:"created_at"`
}

// AdminLeadRow is the admin-facing projection of a stored lead.
type AdminLeadRow struct {
	ID          uint   `json:"id"`
	Actor       string `json:"actor"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	ServiceName string `json:"service_name"`
	Message     string `json:"message"`
	CreatedAt   string `json:"created_at"`
}

// ToAdminActivityRows converts stored activities to their admin listing form,
// preserving input order.
func ToAdminActivityRows(items []activities.Activity) []AdminActivityRow {
	countries := gountries.New()
	caser := cases.Upper(language.AmericanEnglish)

	rows := make([]AdminActivityRow, len(items))
	for i, item := range items {
		rows[i] = AdminActivityRow{
			ID:           item.ID,
			Actor:        actorLabel(item.ActorUserID),
			ActivityType: item.ActivityType,
			ServiceID:    item.ServiceID,
			CategoryID:   item.CategoryID,
			Metadata:     previewMetadata(string(item.Metadata)),
			Country:      countryDisplayName(countries, caser, item.Country),
			CreatedAt:    item.CreatedAt.Local().Format(time.RFC3339),
		}
	}
	return rows
}

// ToAdminLeadRows converts stored leads to their admin listing form,
// preserving input order.
func ToAdminLeadRows(items []leads.Lead) []AdminLeadRow {
	rows := make([]AdminLeadRow, len(items))
	for i, item := range items {
		rows[i] = AdminLeadRow{
			ID:          item.ID,
			Actor:       actorLabel(item.ActorUserID),
			Name:        item.Name,
			Email:       item.Email,
			Phone:       item.Phone,
			ServiceName: item.ServiceName,
			Message:     item.Message,
			CreatedAt:   item.CreatedAt.Local().Format(time.RFC3339),
		}
	}
	return rows
}

// LeadsToCSV renders leads as a spreadsheet-ready export. Every field is
// wrapped in double quotes; all leads are exported with status "New" since
// triage state lives outside this system.
func LeadsToCSV(items []leads.Lead) string {
	var b strings.Builder

	writeCSVRow(&b, []string{"Date", "Name", "Email", "Phone", "Service", "Message", "Status"})
	for _, item := range items {
		writeCSVRow(&b, []string{
			item.CreatedAt.Local().Format(csvDateLayout),
			item.Name,
			item.Email,
			item.Phone,
			item.ServiceName,
			item.Message,
			"New",
		})
	}

	return b.String()
}

// CSVFileName returns the date-stamped download name for a leads export.
func CSVFileName(now time.Time) string {
	return fmt.Sprintf("leads-%s.csv", now.Local().Format("2006-01-02"))
}

func writeCSVRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(field)
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}

func actorLabel(userID *uint) string {
	return identity.Identity{UserID: userID}.Label()
}

// previewMetadata shortens long metadata payloads for list rendering. The full
// payload stays in the store; the admin listing only needs a glimpse. The limit
// counts runes, not bytes, so the cut never splits a multi-byte character.
func previewMetadata(raw string) string {
	if utf8.RuneCountInString(raw) <= metadataPreviewLimit {
		return raw
	}
	return string([]rune(raw)[:metadataPreviewLimit]) + "..."
}

func countryDisplayName(countries *gountries.Query, caser cases.Caser, code string) string {
	if code == "" || code == activities.UnknownCountry {
		return "Unknown"
	}
	country, err := countries.FindCountryByAlpha(code)
	if err != nil {
		return caser.String(code)
	}
	return country.Name.Common
}
