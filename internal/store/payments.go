package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/services/payments"
)

// PaymentInput carries the fields of a new payment request
type PaymentInput struct {
	InvoiceID   *uint
	Amount      decimal.Decimal
	Description *string
}

// PaymentStore manages UPI payment requests
type PaymentStore struct {
	repo     *OwnedRepository[models.UpiPayment, *models.UpiPayment]
	invoices *OwnedRepository[models.Invoice, *models.Invoice]
	links    payments.LinkProvider
}

// NewPaymentStore creates a PaymentStore that asks links for payment links
func NewPaymentStore(db *gorm.DB, links payments.LinkProvider) *PaymentStore {
	return &PaymentStore{
		repo: NewOwnedRepository[models.UpiPayment](db, RepositorySpec{
			OrderBy: []string{"created_at DESC", "id DESC"},
		}),
		invoices: NewOwnedRepository[models.Invoice](db, RepositorySpec{}),
		links:    links,
	}
}

// Create validates the request, obtains a link and QR code and stores them.
// A referenced invoice must belong to the owner.
func (s *PaymentStore) Create(ctx context.Context, ownerID string, in PaymentInput) (*models.UpiPayment, error) {
	v := &ValidationError{}
	checkAmount(v, "amount", in.Amount, true)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if in.InvoiceID != nil {
		if _, err := s.invoices.GetOwned(ctx, ownerID, *in.InvoiceID); err != nil {
			if IsNotFound(err) {
				return nil, NewValidationError("invoiceId", "invoice not found")
			}
			return nil, err
		}
	}

	payment := &models.UpiPayment{
		InvoiceID: in.InvoiceID,
		Amount:    in.Amount,
		Status:    models.PaymentStatusPending,
	}
	req := payments.Request{Amount: in.Amount}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		payment.Description = &desc
		req.Description = desc
	}

	link, err := s.links.CreateLink(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create payment link: %w", err)
	}
	payment.PaymentLink = link.URL
	payment.QRCode = link.QRCode

	if err := s.repo.Create(ctx, ownerID, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

// List returns the owner's payment requests, newest first
func (s *PaymentStore) List(ctx context.Context, ownerID string, f ListFilter) ([]models.UpiPayment, error) {
	return s.repo.ListByOwner(ctx, ownerID, f)
}

// Get returns one of the owner's payment requests
func (s *PaymentStore) Get(ctx context.Context, ownerID string, id uint) (*models.UpiPayment, error) {
	return s.repo.GetOwned(ctx, ownerID, id)
}

// UpdateStatus settles a pending payment. The link and QR code never change.
func (s *PaymentStore) UpdateStatus(ctx context.Context, ownerID string, id uint, next models.PaymentStatus) (*models.UpiPayment, error) {
	payment, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if payment.Status == next {
		return payment, nil
	}
	if !payment.Status.CanTransitionTo(next) {
		return nil, NewValidationError("status", "cannot move from "+string(payment.Status)+" to "+string(next))
	}
	return s.repo.Update(ctx, ownerID, id, map[string]any{"status": next})
}
