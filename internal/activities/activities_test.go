package activities_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadpulse/internal/activities"
	"leadpulse/internal/catalog"
	"leadpulse/internal/testsupport"
)

func TestRecordActivity(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	service := testsupport.CreateTestService(t, db, "web-development", "Web Development")

	t.Run("stores a guest activity with defaults applied", func(t *testing.T) {
		input := &activities.RecordActivityInput{
			ActorSessionID: "guest-session-1",
			ActivityType:   activities.TypeServiceView,
			ServiceID:      &service.ID,
		}

		stored, err := activities.RecordActivity(dbManager, logger, input)

		require.NoError(t, err)
		assert.NotZero(t, stored.ID)
		assert.True(t, stored.IsGuest())
		assert.Equal(t, "guest-session-1", stored.ActorSessionID)
		assert.Equal(t, "Unknown User Agent", stored.UserAgent)
		assert.Equal(t, activities.UnknownCountry, stored.Country)
		assert.False(t, stored.CreatedAt.IsZero())
	})

	t.Run("registered user wins when both actor variants arrive", func(t *testing.T) {
		userID := uint(42)
		input := &activities.RecordActivityInput{
			ActorUserID:    &userID,
			ActorSessionID: "stale-guest-session",
			ActivityType:   activities.TypeCategoryBrowse,
		}

		stored, err := activities.RecordActivity(dbManager, logger, input)

		require.NoError(t, err)
		assert.False(t, stored.IsGuest())
		assert.Equal(t, userID, *stored.ActorUserID)
		assert.Empty(t, stored.ActorSessionID)
	})

	t.Run("persists metadata as JSON", func(t *testing.T) {
		input := testsupport.CreateGuestActivityInput("guest-session-2", activities.TypeServiceView, &service.ID, time.Now().UTC())
		input.Metadata = map[string]interface{}{"referrer": "newsletter", "position": 3}

		stored, err := activities.RecordActivity(dbManager, logger, input)

		require.NoError(t, err)
		assert.Contains(t, string(stored.Metadata), "newsletter")
	})

	t.Run("rejects an activity without a type", func(t *testing.T) {
		input := &activities.RecordActivityInput{ActorSessionID: "guest-session-3"}

		stored, err := activities.RecordActivity(dbManager, logger, input)

		assert.Nil(t, stored)
		var invalid *activities.InvalidActivityError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "activityType", invalid.Fields[0].Field)
	})

	t.Run("rejects an activity without any actor", func(t *testing.T) {
		input := &activities.RecordActivityInput{ActivityType: activities.TypeServiceView}

		stored, err := activities.RecordActivity(dbManager, logger, input)

		assert.Nil(t, stored)
		var invalid *activities.InvalidActivityError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, "actor", invalid.Fields[0].Field)
	})

	t.Run("rejects a reference to an unknown service", func(t *testing.T) {
		unknownID := uint(99999)
		input := testsupport.CreateGuestActivityInput("guest-session-4", activities.TypeServiceView, &unknownID, time.Now().UTC())

		before, err := activities.ListAll(db)
		require.NoError(t, err)

		stored, err := activities.RecordActivity(dbManager, logger, input)

		assert.Nil(t, stored)
		var notFound *catalog.ServiceNotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, unknownID, notFound.ServiceID)

		after, err := activities.ListAll(db)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("rejects a reference to an unknown category", func(t *testing.T) {
		unknownID := uint(99999)
		input := testsupport.CreateGuestActivityInput("guest-session-5", activities.TypeCategoryBrowse, nil, time.Now().UTC())
		input.CategoryID = &unknownID

		stored, err := activities.RecordActivity(dbManager, logger, input)

		assert.Nil(t, stored)
		var notFound *catalog.CategoryNotFoundError
		require.ErrorAs(t, err, &notFound)
	})

	t.Run("accepts activity types outside the known set", func(t *testing.T) {
		input := testsupport.CreateGuestActivityInput("guest-session-6", "portfolio_download", nil, time.Now().UTC())

		stored, err := activities.RecordActivity(dbManager, logger, input)

		require.NoError(t, err)
		assert.Equal(t, "portfolio_download", stored.ActivityType)
	})
}

func TestListAllOrdering(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		input := testsupport.CreateGuestActivityInput("order-session", activities.TypeCategoryBrowse, nil, base.Add(time.Duration(i)*time.Hour))
		_, err := activities.RecordActivity(dbManager, logger, input)
		require.NoError(t, err)
	}

	records, err := activities.ListAll(db)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Most recent first: the reverse of append order.
	assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
	assert.True(t, records[1].CreatedAt.After(records[2].CreatedAt))
}

func TestListAllBreaksTimestampTiesByInsertionOrder(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	sameInstant := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	first, err := activities.RecordActivity(dbManager, logger,
		testsupport.CreateGuestActivityInput("tie-session", activities.TypeCategoryBrowse, nil, sameInstant))
	require.NoError(t, err)
	second, err := activities.RecordActivity(dbManager, logger,
		testsupport.CreateGuestActivityInput("tie-session", activities.TypeCategoryBrowse, nil, sameInstant))
	require.NoError(t, err)

	records, err := activities.ListAll(db)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, second.ID, records[0].ID)
	assert.Equal(t, first.ID, records[1].ID)
}

func TestFindByService(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	service := testsupport.CreateTestService(t, db, "web-design", "Web Design")
	other := testsupport.CreateTestService(t, db, "copywriting", "Copywriting")

	now := time.Now().UTC()
	_, err := activities.RecordActivity(dbManager, logger,
		testsupport.CreateGuestActivityInput("svc-session", activities.TypeServiceView, &service.ID, now.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = activities.RecordActivity(dbManager, logger,
		testsupport.CreateGuestActivityInput("svc-session", activities.TypeServiceView, &service.ID, now))
	require.NoError(t, err)
	_, err = activities.RecordActivity(dbManager, logger,
		testsupport.CreateGuestActivityInput("svc-session", activities.TypeServiceView, &other.ID, now))
	require.NoError(t, err)

	t.Run("returns only activities for the service, most recent first", func(t *testing.T) {
		records, err := activities.FindByService(db, service.ID)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.True(t, records[0].CreatedAt.After(records[1].CreatedAt))
		for _, record := range records {
			assert.Equal(t, service.ID, *record.ServiceID)
		}
	})

	t.Run("a service with no activity yields an empty slice", func(t *testing.T) {
		records, err := activities.FindByService(db, 99999)
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestFindInRange(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()

	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC)
	for _, createdAt := range []time.Time{
		from.Add(-time.Second),
		from,
		from.AddDate(0, 0, 14),
		to,
		to.Add(time.Second),
	} {
		_, err := activities.RecordActivity(dbManager, logger,
			testsupport.CreateGuestActivityInput("range-session", activities.TypeCategoryBrowse, nil, createdAt))
		require.NoError(t, err)
	}

	t.Run("both range ends are inclusive", func(t *testing.T) {
		records, err := activities.FindInRange(db, from, to)
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, to.Unix(), records[0].CreatedAt.Unix())
		assert.Equal(t, from.Unix(), records[2].CreatedAt.Unix())
	})

	t.Run("a range with no activity yields an empty slice", func(t *testing.T) {
		records, err := activities.FindInRange(db, to.AddDate(1, 0, 0), to.AddDate(1, 1, 0))
		require.NoError(t, err)
		assert.Empty(t, records)
	})
}

func TestGetFilteredActivities(t *testing.T) {
	dbManager, logger := testsupport.SetupTestDBManager(t)
	db := dbManager.GetConnection()
	service := testsupport.CreateTestService(t, db, "seo", "Search Engine Optimization")

	now := time.Now().UTC()
	_, err := activities.RecordActivity(dbManager, logger,
		testsupport.CreateGuestActivityInput("filter-session", activities.TypeServiceView, &service.ID, now.Add(-time.Hour)))
	require.NoError(t, err)
	_, err = activities.RecordActivity(dbManager, logger,
		testsupport.CreateGuestActivityInput("filter-session", activities.TypeCategoryBrowse, nil, now.Add(-2*time.Hour)))
	require.NoError(t, err)
	_, err = activities.RecordActivity(dbManager, logger,
		testsupport.CreateGuestActivityInput("filter-session", activities.TypeServiceView, &service.ID, now.Add(-30*24*time.Hour)))
	require.NoError(t, err)

	t.Run("filters by type", func(t *testing.T) {
		result, err := activities.GetFilteredActivities(db, activities.ActivityFilters{
			TypeFilter: activities.TypeServiceView,
			Limit:      50,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("filters by service", func(t *testing.T) {
		result, err := activities.GetFilteredActivities(db, activities.ActivityFilters{
			ServiceFilter: service.ID,
			Limit:         50,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("filters by date range", func(t *testing.T) {
		result, err := activities.GetFilteredActivities(db, activities.ActivityFilters{
			FromDate: now.Add(-24 * time.Hour),
			ToDate:   now,
			Limit:    50,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("paginates while reporting the full total", func(t *testing.T) {
		result, err := activities.GetFilteredActivities(db, activities.ActivityFilters{
			Limit:  2,
			Offset: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(3), result.Total)
		assert.Len(t, result.Activities, 2)
	})
}
