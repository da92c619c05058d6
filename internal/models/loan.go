package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// LoanStatus defines the lifecycle of a loan application
type LoanStatus string

const (
	LoanStatusDraft     LoanStatus = "draft"     // wizard in progress
	LoanStatusSubmitted LoanStatus = "submitted" // step 3 submitted
	LoanStatusApproved  LoanStatus = "approved"
	LoanStatusRejected  LoanStatus = "rejected"
	LoanStatusDisbursed LoanStatus = "disbursed" // counts as an active loan
)

// Wizard steps
const (
	LoanFirstStep = 1
	LoanLastStep  = 3
)

// loanTransitions are the back-office moves. A draft only becomes submitted
// through the wizard's final submit, never by a bare status change.
var loanTransitions = map[LoanStatus][]LoanStatus{
	LoanStatusSubmitted: {LoanStatusApproved, LoanStatusRejected},
	LoanStatusApproved:  {LoanStatusDisbursed},
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Staying in the same status is always allowed.
func (s LoanStatus) CanTransitionTo(next LoanStatus) bool {
	return canTransition(loanTransitions, s, next)
}

// LoanDocument is a file reference attached during the wizard
type LoanDocument struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
}

// LoanApplication is a multi-step business loan request
type LoanApplication struct {
	ID           uint                              `gorm:"primaryKey" json:"id"`
	UserID       string                            `gorm:"type:varchar(255);not null;index" json:"userId"`
	Amount       decimal.Decimal                   `gorm:"type:decimal(12,2);not null" json:"amount"`
	TenureMonths int                               `gorm:"column:tenure;not null" json:"tenure"`
	Purpose      string                            `gorm:"not null" json:"purpose"`
	Status       LoanStatus                        `gorm:"type:varchar(20);default:'draft';index" json:"status"`
	CurrentStep  int                               `gorm:"default:1" json:"currentStep"`
	Documents    datatypes.JSONSlice[LoanDocument] `json:"documents"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Owner *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for LoanApplication model
func (LoanApplication) TableName() string {
	return "loan_applications"
}

func (l *LoanApplication) SetOwnerID(userID string) { l.UserID = userID }
func (l *LoanApplication) GetEntityType() string { return "loan application" }
