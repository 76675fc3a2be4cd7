package reports_test

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpulse/internal/activities"
	"leadpulse/internal/leads"
	"leadpulse/internal/reports"
)

func TestToAdminActivityRows(t *testing.T) {
	userID := uint(7)
	longMetadata := `{"note":"` + strings.Repeat("x", 200) + `"}`

	rows := reports.ToAdminActivityRows([]activities.Activity{
		{
			ID:             1,
			ActorUserID:    &userID,
			ActivityType:   activities.TypeServiceView,
			Country:        "us",
			IPAddress:      "203.0.113.7",
			UserAgent:      "Mozilla/5.0",
			CreatedAt:      time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC),
			Metadata:       []byte(longMetadata),
		},
		{
			ID:             2,
			ActorSessionID: "guest-abc",
			ActivityType:   activities.TypeCategoryBrowse,
			Country:        activities.UnknownCountry,
			CreatedAt:      time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
		},
	})

	require.Len(t, rows, 2)

	t.Run("labels actors without exposing identifiers", func(t *testing.T) {
		assert.Equal(t, "Registered User", rows[0].Actor)
		assert.Equal(t, "Guest User", rows[1].Actor)
	})

	t.Run("truncates long metadata with an ellipsis", func(t *testing.T) {
		assert.Len(t, rows[0].Metadata, 103)
		assert.True(t, strings.HasSuffix(rows[0].Metadata, "..."))
	})

	t.Run("keeps short metadata intact", func(t *testing.T) {
		assert.Empty(t, rows[1].Metadata)
	})

	t.Run("truncates multi-byte metadata on a rune boundary", func(t *testing.T) {
		accented := `{"note":"` + strings.Repeat("é", 120) + `"}`
		multiByte := reports.ToAdminActivityRows([]activities.Activity{
			{
				ID:             3,
				ActorSessionID: "guest-def",
				ActivityType:   activities.TypeServiceView,
				Country:        activities.UnknownCountry,
				CreatedAt:      time.Date(2026, 5, 1, 11, 0, 0, 0, time.UTC),
				Metadata:       []byte(accented),
			},
		})

		require.Len(t, multiByte, 1)
		preview := multiByte[0].Metadata
		assert.True(t, utf8.ValidString(preview))
		assert.Equal(t, 103, utf8.RuneCountInString(preview))
		assert.True(t, strings.HasSuffix(preview, "..."))
	})

	t.Run("resolves country codes to display names", func(t *testing.T) {
		assert.Equal(t, "United States", rows[0].Country)
		assert.Equal(t, "Unknown", rows[1].Country)
	})
}

func TestLeadsToCSV(t *testing.T) {
	items := []leads.Lead{
		{
			Name:        `Dana "Dee" Smith`,
			Email:       "dana@example.com",
			Phone:       "555-123-4567",
			ServiceName: "Web Development",
			Message:     "Need a site, budget $5k",
			CreatedAt:   time.Date(2026, 5, 1, 14, 30, 0, 0, time.UTC),
		},
	}

	csv := reports.LeadsToCSV(items)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")
	require.Len(t, lines, 2)

	t.Run("writes the quoted header row", func(t *testing.T) {
		assert.Equal(t, `"Date","Name","Email","Phone","Service","Message","Status"`, lines[0])
	})

	t.Run("quotes every field and stamps status New", func(t *testing.T) {
		assert.True(t, strings.HasPrefix(lines[1], `"`))
		assert.True(t, strings.HasSuffix(lines[1], `"New"`))
		assert.Contains(t, lines[1], `"dana@example.com"`)
	})

	t.Run("formats the date to minute precision", func(t *testing.T) {
		expected := items[0].CreatedAt.Local().Format("2006-01-02 15:04")
		assert.Contains(t, lines[1], `"`+expected+`"`)
	})

	t.Run("passes embedded quotes through unescaped", func(t *testing.T) {
		assert.Contains(t, lines[1], `"Dana "Dee" Smith"`)
	})

	t.Run("empty export still carries the header", func(t *testing.T) {
		empty := reports.LeadsToCSV(nil)
		assert.Equal(t, `"Date","Name","Email","Phone","Service","Message","Status"`+"\n", empty)
	})
}

func TestCSVFileName(t *testing.T) {
	now := time.Date(2026, 5, 1, 14, 30, 0, 0, time.Local)
	assert.Equal(t, "leads-2026-05-01.csv", reports.CSVFileName(now))
}

func TestToAdminLeadRows(t *testing.T) {
	userID := uint(3)
	rows := reports.ToAdminLeadRows([]leads.Lead{
		{
			ID:          9,
			ActorUserID: &userID,
			Name:        "Jamie Doe",
			Email:       "jamie@example.com",
			Phone:       "555-000-1111",
			ServiceName: "Brand Identity",
			Message:     "Quote please",
			CreatedAt:   time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC),
		},
	})

	require.Len(t, rows, 1)
	assert.Equal(t, "Registered User", rows[0].Actor)
	assert.Equal(t, "Brand Identity", rows[0].ServiceName)
	assert.NotEmpty(t, rows[0].CreatedAt)
}
