// Package leads implements the sales-inquiry pipeline: validation, persistence
// and the correlated service_inquiry activity record.
package leads

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"leadpulse/internal/activities"
)

// Lead represents a structured sales inquiry submitted through a service's
// contact form. Leads are created once and never updated here; status/triage
// workflows live outside this subsystem.
type Lead struct {
	ID             uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID    *uint  `gorm:"index" json:"actor_user_id"`
	ActorSessionID string `gorm:"index;size:64" json:"actor_session_id"`
	Name           string `gorm:"not null" json:"name"`
	Email          string `gorm:"index;not null" json:"email"`
	Phone          string `gorm:"not null" json:"phone"`
	ServiceID      uint   `gorm:"index;not null" json:"service_id"`
	// ServiceName is a snapshot of the catalog display name at submission
	// time, so historical leads stay readable if the catalog entry changes.
	ServiceName string    `gorm:"not null" json:"service_name"`
	Message     string    `gorm:"type:text" json:"message"`
	CreatedAt   time.Time `gorm:"index;not null" json:"created_at"`
}

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// InvalidLeadDataError is returned when a lead submission fails validation.
// It always carries field-level detail, never a bare message.
type InvalidLeadDataError struct {
	Fields []FieldError
}

func (e *InvalidLeadDataError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = fmt.Sprintf("%s %s", f.Field, f.Message)
	}
	return "invalid lead data: " + strings.Join(msgs, "; ")
}

// ListLeads returns every lead, most recent first (insertion order breaks ties).
func ListLeads(db *gorm.DB) ([]Lead, error) {
	var leads []Lead
	if err := db.Order("created_at DESC, id DESC").Find(&leads).Error; err != nil {
		return nil, activities.NewStorageUnavailableError("list leads", err)
	}
	return leads, nil
}

// FindLeadByEmail returns the most recent lead submitted with the given email,
// or nil when none exists. Used by the adjacent user-registration flow to
// detect returning inquirers.
func FindLeadByEmail(db *gorm.DB, email string) (*Lead, error) {
	var lead Lead
	err := db.Where("email = ?", email).Order("created_at DESC, id DESC").First(&lead).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, activities.NewStorageUnavailableError("find lead by email", err)
	}
	return &lead, nil
}

// CountLeads returns the number of stored leads.
func CountLeads(db *gorm.DB) (int64, error) {
	var count int64
	if err := db.Model(&Lead{}).Count(&count).Error; err != nil {
		return 0, activities.NewStorageUnavailableError("count leads", err)
	}
	return count, nil
}
