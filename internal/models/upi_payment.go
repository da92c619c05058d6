package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus defines the settlement state of a UPI payment request
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending: {PaymentStatusCompleted, PaymentStatusFailed},
}

// CanTransitionTo reports whether the lifecycle allows moving to next
func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	return canTransition(paymentTransitions, s, next)
}

// UpiPayment is a generated payment link (and QR) for collecting money.
// PaymentLink and QRCode are fixed at creation.
type UpiPayment struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      string          `gorm:"type:varchar(255);not null;index" json:"userId"`
	InvoiceID   *uint           `gorm:"index" json:"invoiceId"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description *string         `gorm:"type:text" json:"description"`
	PaymentLink string          `gorm:"type:text" json:"paymentLink"`
	QRCode      string          `gorm:"column:qr_code;type:text" json:"qrCode"`
	Status      PaymentStatus   `gorm:"type:varchar(20);default:'pending';index" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Owner   *User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Invoice *Invoice `gorm:"foreignKey:InvoiceID;constraint:OnDelete:SET NULL" json:"-"`
}

// TableName specifies the table name for UpiPayment model
func (UpiPayment) TableName() string {
	return "upi_payments"
}

func (p *UpiPayment) SetOwnerID(userID string) { p.UserID = userID }
func (p *UpiPayment) GetEntityType() string { return "upi payment" }
