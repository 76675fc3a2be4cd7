package activities

import (
	"encoding/json"
	"time"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"leadpulse/internal/catalog"
)

// RecordActivityInput defines the input required to record an activity.
type RecordActivityInput struct {
	ActorUserID    *uint
	ActorSessionID string
	ActivityType   string
	ServiceID      *uint
	CategoryID     *uint
	Metadata       map[string]interface{}
	IPAddress      string
	UserAgent      string
	CreatedAt      time.Time
}

// RecordActivity validates catalog references and structural completeness,
// then appends one Activity to the store. The stored record is returned with
// its assigned id and timestamp. Records are never re-validated by the store
// beyond completeness: business validation is the caller's responsibility.
func RecordActivity(dbManager cartridge.DBManager, logger *slog.Logger, input *RecordActivityInput) (*Activity, error) {
	if err := checkStructure(input); err != nil {
		logger.Debug("Rejected malformed activity", slog.Any("error", err))
		return nil, err
	}

	db := dbManager.GetConnection()

	if input.ServiceID != nil {
		exists, err := catalog.ServiceExists(db, *input.ServiceID)
		if err != nil {
			logger.Error("Failed to check service reference", slog.Any("error", err))
			return nil, NewStorageUnavailableError("service lookup", err)
		}
		if !exists {
			return nil, catalog.NewServiceNotFoundError(*input.ServiceID)
		}
	}

	if input.CategoryID != nil {
		exists, err := catalog.CategoryExists(db, *input.CategoryID)
		if err != nil {
			logger.Error("Failed to check category reference", slog.Any("error", err))
			return nil, NewStorageUnavailableError("category lookup", err)
		}
		if !exists {
			return nil, catalog.NewCategoryNotFoundError(*input.CategoryID)
		}
	}

	activity, err := prepareActivity(input)
	if err != nil {
		logger.Error("Failed to prepare activity", slog.Any("error", err))
		return nil, err
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		return tx.Create(activity).Error
	})
	if err != nil {
		logger.Error("Failed to store activity", slog.Any("error", err))
		return nil, NewStorageUnavailableError("append activity", err)
	}

	return activity, nil
}

// checkStructure rejects activities with no actor or no type. An activity must
// carry exactly one actor variant; a registered user id wins when both arrive.
func checkStructure(input *RecordActivityInput) error {
	var fields []FieldError

	if input.ActivityType == "" {
		fields = append(fields, FieldError{Field: "activityType", Message: "is required"})
	}
	if input.ActorUserID == nil && input.ActorSessionID == "" {
		fields = append(fields, FieldError{Field: "actor", Message: "requires a user id or a guest session id"})
	}

	if len(fields) > 0 {
		return &InvalidActivityError{Fields: fields}
	}
	return nil
}

// prepareActivity builds an Activity from input data
func prepareActivity(input *RecordActivityInput) (*Activity, error) {
	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	userAgent := input.UserAgent
	if userAgent == "" {
		userAgent = "Unknown User Agent"
	}

	sessionID := input.ActorSessionID
	if input.ActorUserID != nil {
		// Registered actor wins; the session id is dropped so exactly one
		// actor variant is persisted.
		sessionID = ""
	}

	activity := &Activity{
		ActorUserID:    input.ActorUserID,
		ActorSessionID: sessionID,
		ActivityType:   input.ActivityType,
		ServiceID:      input.ServiceID,
		CategoryID:     input.CategoryID,
		IPAddress:      input.IPAddress,
		UserAgent:      userAgent,
		Country:        GetCountryFromIP(input.IPAddress),
		CreatedAt:      createdAt,
	}

	if len(input.Metadata) > 0 {
		raw, err := json.Marshal(input.Metadata)
		if err != nil {
			return nil, &InvalidActivityError{Fields: []FieldError{
				{Field: "metadata", Message: "is not serializable"},
			}}
		}
		activity.Metadata = datatypes.JSON(raw)
	}

	return activity, nil
}
