// Package store provides owner-scoped persistence for every finflow entity.
package store

import (
	"gorm.io/gorm"

	"github.com/xelth-com/finflowgo/internal/services/payments"
)

// Store groups the entity stores over one database
type Store struct {
	Users    *UserStore
	Loans    *LoanStore
	Invoices *InvoiceStore
	Payments *PaymentStore
	Filings  *FilingStore
	KYC      *KycStore
}

// New wires every entity store to db. links issues UPI payment links.
func New(db *gorm.DB, links payments.LinkProvider) *Store {
	users := NewUserStore(db)
	return &Store{
		Users:    users,
		Loans:    NewLoanStore(db),
		Invoices: NewInvoiceStore(db),
		Payments: NewPaymentStore(db, links),
		Filings:  NewFilingStore(db),
		KYC:      NewKycStore(db, users),
	}
}
