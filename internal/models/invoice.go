package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus defines the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

var invoiceTransitions = map[InvoiceStatus][]InvoiceStatus{
	InvoiceStatusPending: {InvoiceStatusPaid, InvoiceStatusOverdue},
	InvoiceStatusOverdue: {InvoiceStatusPaid},
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s InvoiceStatus) CanTransitionTo(next InvoiceStatus) bool {
	return canTransition(invoiceTransitions, s, next)
}

// InvoiceItem is a single billed line
type InvoiceItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// Invoice is a bill raised by the user against a client.
// InvoiceNumber is unique across all users.
type Invoice struct {
	ID            uint                             `gorm:"primaryKey" json:"id"`
	UserID        string                           `gorm:"type:varchar(255);not null;index" json:"userId"`
	InvoiceNumber string                           `gorm:"uniqueIndex;not null" json:"invoiceNumber"`
	ClientName    string                           `gorm:"not null" json:"clientName"`
	Amount        decimal.Decimal                  `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status        InvoiceStatus                    `gorm:"type:varchar(20);default:'pending';index" json:"status"`
	DueDate       time.Time                        `gorm:"type:date;not null" json:"dueDate"`
	Description   *string                          `gorm:"type:text" json:"description"`
	Items         datatypes.JSONSlice[InvoiceItem] `json:"items,omitempty"`
	TaxRate       decimal.NullDecimal              `gorm:"type:decimal(5,2)" json:"taxRate"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Owner *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

func (i *Invoice) SetOwnerID(userID string) { i.UserID = userID }
func (i *Invoice) GetEntityType() string { return "invoice" }
