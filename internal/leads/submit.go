package leads

import (
	"encoding/json"
	"errors"
	"time"
	"unicode/utf8"

	"log/slog"

	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/sqlite"
	"go.elara.ws/pcre"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"leadpulse/internal/activities"
	"leadpulse/internal/catalog"
)

const (
	minNameLength  = 2
	minPhoneDigits = 10
)

var (
	emailPattern = pcre.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	digitPattern = pcre.MustCompile(`[0-9]`)
)

// SubmitLeadInput defines the input required to submit a sales inquiry.
type SubmitLeadInput struct {
	ActorUserID    *uint
	ActorSessionID string
	Name           string
	Email          string
	Phone          string
	ServiceID      uint
	Message        string
}

// SubmitLead validates and persists a sales inquiry. On success exactly one
// Lead and one correlated service_inquiry Activity exist afterward: both are
// written in the same transaction so inquiry counts derived from the activity
// store never drift from the lead table. On any failure nothing is persisted.
//
// The catalog reference is checked before the rest of the payload, since the
// denormalized service name snapshot depends on it.
func SubmitLead(dbManager cartridge.DBManager, logger *slog.Logger, input *SubmitLeadInput) (*Lead, error) {
	db := dbManager.GetConnection()

	serviceName, err := catalog.GetServiceDisplayName(db, input.ServiceID)
	if err != nil {
		var notFound *catalog.ServiceNotFoundError
		if errors.As(err, &notFound) {
			logger.Debug("Lead submitted for unknown service", slog.Uint64("service_id", uint64(input.ServiceID)))
			return nil, notFound
		}
		logger.Error("Failed to resolve lead service", slog.Any("error", err))
		return nil, activities.NewStorageUnavailableError("service lookup", err)
	}

	if err := validateFields(input); err != nil {
		logger.Debug("Rejected invalid lead submission", slog.Any("error", err))
		return nil, err
	}

	lead := &Lead{
		ActorUserID:    input.ActorUserID,
		ActorSessionID: input.ActorSessionID,
		Name:           input.Name,
		Email:          input.Email,
		Phone:          input.Phone,
		ServiceID:      input.ServiceID,
		ServiceName:    serviceName,
		Message:        input.Message,
		CreatedAt:      time.Now().UTC(),
	}
	if lead.ActorUserID != nil {
		lead.ActorSessionID = ""
	}

	err = sqlite.PerformWrite(logger, db, func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return err
		}

		meta, err := json.Marshal(map[string]interface{}{"lead_id": lead.ID})
		if err != nil {
			return err
		}

		serviceID := lead.ServiceID
		inquiry := &activities.Activity{
			ActorUserID:    lead.ActorUserID,
			ActorSessionID: lead.ActorSessionID,
			ActivityType:   activities.TypeServiceInquiry,
			ServiceID:      &serviceID,
			Metadata:       datatypes.JSON(meta),
			Country:        activities.UnknownCountry,
			CreatedAt:      lead.CreatedAt,
		}
		return tx.Create(inquiry).Error
	})
	if err != nil {
		logger.Error("Failed to store lead", slog.Any("error", err))
		return nil, activities.NewStorageUnavailableError("append lead", err)
	}

	logger.Info("Lead stored",
		slog.Uint64("lead_id", uint64(lead.ID)),
		slog.String("service", lead.ServiceName))

	return lead, nil
}

// validateFields collects every field-level problem before failing, so the
// caller can render per-field messages.
func validateFields(input *SubmitLeadInput) error {
	var fields []FieldError

	if utf8.RuneCountInString(input.Name) < minNameLength {
		fields = append(fields, FieldError{Field: "name", Message: "must be at least 2 characters"})
	}
	if !emailPattern.MatchString(input.Email) {
		fields = append(fields, FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if len(digitPattern.FindAllString(input.Phone, -1)) < minPhoneDigits {
		fields = append(fields, FieldError{Field: "phone", Message: "must contain at least 10 digits"})
	}
	if input.ActorUserID == nil && input.ActorSessionID == "" {
		fields = append(fields, FieldError{Field: "actor", Message: "requires a user id or a guest session id"})
	}

	if len(fields) > 0 {
		return &InvalidLeadDataError{Fields: fields}
	}
	return nil
}
