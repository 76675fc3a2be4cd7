package activities

import (
	"time"

	"gorm.io/datatypes"
)

// Well-known activity types. The set is open: callers may submit any label and
// the store treats it as an opaque string.
const (
	TypeServiceView    = "service_view"
	TypeCategoryBrowse = "category_browse"
	TypeServiceInquiry = "service_inquiry"
)

// Activity represents one immutable tracked user action. Records are
// append-only: no update or delete operation exists for them.
type Activity struct {
	ID             uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorUserID    *uint          `gorm:"index" json:"actor_user_id"`
	ActorSessionID string         `gorm:"index;size:64" json:"actor_session_id"`
	ActivityType   string         `gorm:"index;not null" json:"activity_type"`
	ServiceID      *uint          `gorm:"index" json:"service_id"`
	CategoryID     *uint          `gorm:"index" json:"category_id"`
	Metadata       datatypes.JSON `json:"metadata"`
	IPAddress      string         `json:"-"`
	UserAgent      string         `json:"-"`
	Country        string         `json:"country"`
	CreatedAt      time.Time      `gorm:"index;not null" json:"created_at"`
}

// IsGuest reports whether the activity was performed by an anonymous visitor.
func (a *Activity) IsGuest() bool {
	return a.ActorUserID == nil
}
