package leads_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpulse/internal/activities"
	"leadpulse/internal/catalog"
	"leadpulse/internal/leads"
	"leadpulse/internal/testsupport"
)

func fieldNames(fields []leads.FieldError) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Field
	}
	return names
}

func TestSubmitLead(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	service := testsupport.CreateTestService(t, db, "branding", "Brand Identity")

	t.Run("stores lead and correlated inquiry activity together", func(t *testing.T) {
		input := testsupport.CreateTestLeadInput("lead-session-1", service.ID)

		lead, err := leads.SubmitLead(dbManager, logger, input)

		require.NoError(t, err)
		assert.NotZero(t, lead.ID)
		assert.Equal(t, "Brand Identity", lead.ServiceName)

		inquiries, err := activities.FindByType(db, activities.TypeServiceInquiry)
		require.NoError(t, err)
		require.Len(t, inquiries, 1)
		assert.Equal(t, "lead-session-1", inquiries[0].ActorSessionID)
		assert.Equal(t, service.ID, *inquiries[0].ServiceID)
		assert.Contains(t, string(inquiries[0].Metadata), "lead_id")
		assert.Equal(t, lead.CreatedAt.Unix(), inquiries[0].CreatedAt.Unix())
	})

	t.Run("snapshots the service name at submission time", func(t *testing.T) {
		input := testsupport.CreateTestLeadInput("lead-session-2", service.ID)
		lead, err := leads.SubmitLead(dbManager, logger, input)
		require.NoError(t, err)

		require.NoError(t, db.Model(&catalog.Service{}).Where("id = ?", service.ID).Update("name", "Renamed Service").Error)
		t.Cleanup(func() {
			db.Model(&catalog.Service{}).Where("id = ?", service.ID).Update("name", "Brand Identity")
		})

		found, err := leads.FindLeadByEmail(db, lead.Email)
		require.NoError(t, err)
		assert.Equal(t, "Brand Identity", found.ServiceName)
	})

	t.Run("rejects a phone number with nine digits", func(t *testing.T) {
		input := testsupport.CreateTestLeadInput("lead-session-3", service.ID)
		input.Phone = "123-456-789"

		lead, err := leads.SubmitLead(dbManager, logger, input)

		assert.Nil(t, lead)
		var invalid *leads.InvalidLeadDataError
		require.ErrorAs(t, err, &invalid)
		assert.Contains(t, fieldNames(invalid.Fields), "phone")
	})

	t.Run("accepts a phone number with ten digits in any format", func(t *testing.T) {
		input := testsupport.CreateTestLeadInput("lead-session-4", service.ID)
		input.Phone = "(123) 456-7890"

		lead, err := leads.SubmitLead(dbManager, logger, input)

		require.NoError(t, err)
		assert.Equal(t, "(123) 456-7890", lead.Phone)
	})

	t.Run("collects every invalid field in one error", func(t *testing.T) {
		input := testsupport.CreateTestLeadInput("lead-session-5", service.ID)
		input.Name = "A"
		input.Email = "not-an-email"
		input.Phone = "12345"

		lead, err := leads.SubmitLead(dbManager, logger, input)

		assert.Nil(t, lead)
		var invalid *leads.InvalidLeadDataError
		require.ErrorAs(t, err, &invalid)
		names := fieldNames(invalid.Fields)
		assert.Contains(t, names, "name")
		assert.Contains(t, names, "email")
		assert.Contains(t, names, "phone")
	})

	t.Run("unknown service is reported before field validation", func(t *testing.T) {
		input := testsupport.CreateTestLeadInput("lead-session-6", 99999)
		input.Email = "not-an-email"

		lead, err := leads.SubmitLead(dbManager, logger, input)

		assert.Nil(t, lead)
		var notFound *catalog.ServiceNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, uint(99999), notFound.ServiceID)
	})

	t.Run("a failed submission stores nothing", func(t *testing.T) {
		leadsBefore, err := leads.CountLeads(db)
		require.NoError(t, err)
		activitiesBefore, err := activities.ListAll(db)
		require.NoError(t, err)

		input := testsupport.CreateTestLeadInput("lead-session-7", service.ID)
		input.Name = ""
		_, err = leads.SubmitLead(dbManager, logger, input)
		require.Error(t, err)

		leadsAfter, err := leads.CountLeads(db)
		require.NoError(t, err)
		activitiesAfter, err := activities.ListAll(db)
		require.NoError(t, err)
		assert.Equal(t, leadsBefore, leadsAfter)
		assert.Len(t, activitiesAfter, len(activitiesBefore))
	})
}

func TestFindLeadByEmail(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	service := testsupport.CreateTestService(t, db, "ui-ux", "UI/UX Design")

	t.Run("returns nil without error when no lead matches", func(t *testing.T) {
		lead, err := leads.FindLeadByEmail(db, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, lead)
	})

	t.Run("returns the most recent lead for the email", func(t *testing.T) {
		first := testsupport.CreateTestLeadInput("email-session", service.ID)
		first.Message = "first inquiry"
		_, err := leads.SubmitLead(dbManager, logger, first)
		require.NoError(t, err)

		second := testsupport.CreateTestLeadInput("email-session", service.ID)
		second.Message = "second inquiry"
		stored, err := leads.SubmitLead(dbManager, logger, second)
		require.NoError(t, err)

		found, err := leads.FindLeadByEmail(db, stored.Email)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "second inquiry", found.Message)
	})
}
