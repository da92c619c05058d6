package store

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xelth-com/finflowgo/internal/finance"
	"github.com/xelth-com/finflowgo/internal/models"
)

// InvoiceInput carries invoice fields; on update nil fields are left unchanged
type InvoiceInput struct {
	InvoiceNumber *string
	ClientName    *string
	Amount        *decimal.Decimal
	Status        *models.InvoiceStatus
	DueDate       *time.Time
	Description   *string
	Items         []models.InvoiceItem
	TaxRate       *decimal.Decimal
}

// InvoiceStore manages invoices; the only entity with hard delete
type InvoiceStore struct {
	db   *gorm.DB
	repo *OwnedRepository[models.Invoice, *models.Invoice]
}

// NewInvoiceStore creates an InvoiceStore
func NewInvoiceStore(db *gorm.DB) *InvoiceStore {
	return &InvoiceStore{
		db: db,
		repo: NewOwnedRepository[models.Invoice](db, RepositorySpec{
			OrderBy:       []string{"created_at DESC", "id DESC"},
			SearchColumns: []string{"invoice_number", "client_name"},
		}),
	}
}

// Create stores a new invoice. When line items are given the amount is computed
// from them; when no number is given one is generated.
func (s *InvoiceStore) Create(ctx context.Context, ownerID string, in InvoiceInput) (*models.Invoice, error) {
	inv := &models.Invoice{Status: models.InvoiceStatusPending}
	if in.Status != nil {
		inv.Status = *in.Status
	}
	applyInvoiceFields(inv, in)

	if inv.InvoiceNumber == "" {
		number, err := s.nextNumber(ctx, s.db.NowFunc())
		if err != nil {
			return nil, err
		}
		inv.InvoiceNumber = number
	}

	v := validateInvoice(inv)
	if inv.DueDate.IsZero() {
		v.Add("dueDate", "is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	taken, err := s.numberTaken(ctx, inv.InvoiceNumber, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, invoiceConflict(inv.InvoiceNumber)
	}

	if err := s.repo.Create(ctx, ownerID, inv); err != nil {
		// lost a race with a concurrent create of the same number
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return nil, invoiceConflict(inv.InvoiceNumber)
		}
		return nil, err
	}
	return inv, nil
}

// List returns the owner's invoices, newest first, filtered by status and search
func (s *InvoiceStore) List(ctx context.Context, ownerID string, f ListFilter) ([]models.Invoice, error) {
	return s.repo.ListByOwner(ctx, ownerID, f)
}

// Get returns one of the owner's invoices
func (s *InvoiceStore) Get(ctx context.Context, ownerID string, id uint) (*models.Invoice, error) {
	return s.repo.GetOwned(ctx, ownerID, id)
}

// Update merges the given fields. Status changes follow the invoice lifecycle.
func (s *InvoiceStore) Update(ctx context.Context, ownerID string, id uint, in InvoiceInput) (*models.Invoice, error) {
	current, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	candidate := *current
	applyInvoiceFields(&candidate, in)
	v := validateInvoice(&candidate)
	// an itemized invoice's amount is derived; it changes only through items or taxRate
	if in.Amount != nil && in.Items == nil && in.TaxRate == nil && len(current.Items) > 0 {
		v.Add("amount", "is computed from items; update items or taxRate instead")
	}
	if in.Status != nil && !current.Status.CanTransitionTo(*in.Status) {
		v.Add("status", "cannot move from "+string(current.Status)+" to "+string(*in.Status))
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.InvoiceNumber != nil && candidate.InvoiceNumber != current.InvoiceNumber {
		taken, err := s.numberTaken(ctx, candidate.InvoiceNumber, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, invoiceConflict(candidate.InvoiceNumber)
		}
		changes["invoice_number"] = candidate.InvoiceNumber
	}
	if in.ClientName != nil {
		changes["client_name"] = candidate.ClientName
	}
	if in.Amount != nil || in.Items != nil || in.TaxRate != nil {
		changes["amount"] = candidate.Amount
	}
	if in.Status != nil {
		changes["status"] = *in.Status
	}
	if in.DueDate != nil {
		changes["due_date"] = candidate.DueDate
	}
	if in.Description != nil {
		changes["description"] = candidate.Description
	}
	if in.Items != nil {
		changes["items"] = candidate.Items
	}
	if in.TaxRate != nil {
		changes["tax_rate"] = candidate.TaxRate
	}

	updated, err := s.repo.Update(ctx, ownerID, id, changes)
	if err != nil {
		var conflict *ConflictError
		if errors.As(err, &conflict) {
			return nil, invoiceConflict(candidate.InvoiceNumber)
		}
		return nil, err
	}
	return updated, nil
}

// Delete permanently removes one of the owner's invoices
func (s *InvoiceStore) Delete(ctx context.Context, ownerID string, id uint) error {
	return s.repo.Delete(ctx, ownerID, id)
}

// CountByStatus counts the owner's invoices in status
func (s *InvoiceStore) CountByStatus(ctx context.Context, ownerID string, status models.InvoiceStatus) (int64, error) {
	return s.repo.CountByOwner(ctx, ownerID, string(status))
}

// PaidAmounts returns the amount of every paid invoice of the owner.
// Summing happens in the caller with decimals, not in SQL.
func (s *InvoiceStore) PaidAmounts(ctx context.Context, ownerID string) ([]decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("user_id = ? AND status = ?", ownerID, models.InvoiceStatusPaid).
		Pluck("amount", &amounts).Error
	if err != nil {
		return nil, fmt.Errorf("load paid invoice amounts: %w", err)
	}
	return amounts, nil
}

func (s *InvoiceStore) numberTaken(ctx context.Context, number string, exceptID uint) (bool, error) {
	var n int64
	q := s.db.WithContext(ctx).Model(&models.Invoice{}).Where("invoice_number = ?", number)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("check invoice number: %w", err)
	}
	return n > 0, nil
}

// nextNumber generates INV-<year>-<6 digits>, retrying on the rare collision
func (s *InvoiceStore) nextNumber(ctx context.Context, now time.Time) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
		if err != nil {
			return "", fmt.Errorf("generate invoice number: %w", err)
		}
		number := fmt.Sprintf("INV-%d-%06d", now.Year(), n.Int64())
		taken, err := s.numberTaken(ctx, number, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return number, nil
		}
	}
	return "", errors.New("generate invoice number: no free number after 5 attempts")
}

func invoiceConflict(number string) *ConflictError {
	return &ConflictError{Resource: "invoice", Field: "invoiceNumber", Value: number}
}

func applyInvoiceFields(inv *models.Invoice, in InvoiceInput) {
	if in.InvoiceNumber != nil {
		inv.InvoiceNumber = strings.TrimSpace(*in.InvoiceNumber)
	}
	if in.ClientName != nil {
		inv.ClientName = strings.TrimSpace(*in.ClientName)
	}
	if in.Amount != nil {
		inv.Amount = *in.Amount
	}
	if in.DueDate != nil {
		y, m, d := in.DueDate.Date()
		inv.DueDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		inv.Description = &desc
	}
	if in.TaxRate != nil {
		inv.TaxRate = decimal.NullDecimal{Decimal: *in.TaxRate, Valid: true}
	}
	if in.Items != nil {
		inv.Items = in.Items
	}

	if len(inv.Items) > 0 && (in.Items != nil || in.TaxRate != nil) {
		lines := make([]finance.LineItem, 0, len(inv.Items))
		for i := range inv.Items {
			item := &inv.Items[i]
			line := finance.LineItem{Description: item.Description, Quantity: item.Quantity, Rate: item.Rate}
			item.Amount = line.Amount()
			lines = append(lines, line)
		}
		rate := decimal.Zero
		if inv.TaxRate.Valid {
			rate = inv.TaxRate.Decimal
		}
		inv.Amount = finance.CalculateInvoiceTotals(lines, rate).Total
	}
}

func validateInvoice(inv *models.Invoice) *ValidationError {
	v := &ValidationError{}
	checkRequired(v, "invoiceNumber", inv.InvoiceNumber)
	checkRequired(v, "clientName", inv.ClientName)
	checkAmount(v, "amount", inv.Amount, true)
	switch inv.Status {
	case models.InvoiceStatusPending, models.InvoiceStatusPaid, models.InvoiceStatusOverdue:
	default:
		v.Add("status", "must be pending, paid or overdue")
	}
	for _, item := range inv.Items {
		if strings.TrimSpace(item.Description) == "" || !item.Quantity.IsPositive() || item.Rate.IsNegative() {
			v.Add("items", "each item needs a description, a positive quantity and a non-negative rate")
			break
		}
	}
	if inv.TaxRate.Valid && (inv.TaxRate.Decimal.IsNegative() || inv.TaxRate.Decimal.GreaterThan(decimal.NewFromInt(100))) {
		v.Add("taxRate", "must be between 0 and 100")
	}
	return v
}
