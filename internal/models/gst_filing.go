package models

import (
	"time"
)

// FilingStatus defines the state of a GST return
type FilingStatus string

const (
	FilingStatusPending FilingStatus = "pending"
	FilingStatusFiled   FilingStatus = "filed"
	FilingStatusOverdue FilingStatus = "overdue"
)

var filingTransitions = map[FilingStatus][]FilingStatus{
	FilingStatusPending: {FilingStatusFiled, FilingStatusOverdue},
	FilingStatusOverdue: {FilingStatusFiled},
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s FilingStatus) CanTransitionTo(next FilingStatus) bool {
	return canTransition(filingTransitions, s, next)
}

// GstFiling is a periodic tax return with a due date (e.g. GSTR-1, GSTR-3B, TDS)
type GstFiling struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	UserID     string       `gorm:"type:varchar(255);not null;index" json:"userId"`
	FilingType string       `gorm:"not null" json:"filingType"`
	Period     string       `gorm:"type:varchar(7);not null" json:"period"` // YYYY-MM
	DueDate    time.Time    `gorm:"type:date;not null;index" json:"dueDate"`
	Status     FilingStatus `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	FiledAt    *time.Time   `json:"filedAt"`

	// DaysLeft is derived per response, never stored
	DaysLeft *int `gorm:"-" json:"daysLeft,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Owner *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GstFiling model
func (GstFiling) TableName() string {
	return "gst_filings"
}

func (f *GstFiling) SetOwnerID(userID string) { f.UserID = userID }
func (f *GstFiling) GetEntityType() string { return "gst filing" }

// DaysUntilDue counts whole calendar days from now to the due date.
// Negative values mean the filing is past due.
func (f *GstFiling) DaysUntilDue(now time.Time) int {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	dy, dm, dd := f.DueDate.UTC().Date()
	due := time.Date(dy, dm, dd, 0, 0, 0, 0, time.UTC)
	return int(due.Sub(today).Hours() / 24)
}
