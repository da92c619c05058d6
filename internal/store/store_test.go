package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/services/payments"
	"github.com/xelth-com/finflowgo/internal/testutil"
)

type stubLinks struct {
	calls int
}

func (s *stubLinks) CreateLink(_ context.Context, req payments.Request) (payments.Link, error) {
	s.calls++
	return payments.Link{
		Reference: "PAY_test",
		URL:       "https://pay.example.com/PAY_test",
		QRCode:    "data:image/png;base64,AAAA",
	}, nil
}

func newTestDBWithUsers(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedUser(t, db, "alice")
	testutil.SeedUser(t, db, "bob")
	return db
}

func newTestStore(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()
	db := newTestDBWithUsers(t)
	return New(db, &stubLinks{}), db
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func str(s string) *string { return &s }

func intp(i int) *int { return &i }

func day(offset int) *time.Time {
	d := time.Now().UTC().AddDate(0, 0, offset)
	return &d
}

func mustInvoice(t *testing.T, s *Store, owner, number, amount string, status models.InvoiceStatus) *models.Invoice {
	t.Helper()
	inv, err := s.Invoices.Create(context.Background(), owner, InvoiceInput{
		InvoiceNumber: str(number),
		ClientName:    str("Client " + number),
		Amount:        dec(amount),
		Status:        &status,
		DueDate:       day(30),
	})
	if err != nil {
		t.Fatalf("Failed to create invoice %s: %v", number, err)
	}
	return inv
}

func TestListByOwnerNeverLeaksOtherUsers(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	mustInvoice(t, s, "alice", "INV-A1", "100", models.InvoiceStatusPending)
	mustInvoice(t, s, "bob", "INV-B1", "200", models.InvoiceStatusPending)
	if _, err := s.Loans.Create(ctx, "bob", LoanInput{Amount: dec("5000"), TenureMonths: intp(12), Purpose: str("Stock")}); err != nil {
		t.Fatalf("Create loan failed: %v", err)
	}

	invoices, err := s.Invoices.List(ctx, "alice", ListFilter{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(invoices) != 1 || invoices[0].UserID != "alice" {
		t.Errorf("Expected only alice's invoice, got %+v", invoices)
	}

	loans, err := s.Loans.List(ctx, "alice", ListFilter{})
	if err != nil {
		t.Fatalf("List loans failed: %v", err)
	}
	if loans == nil || len(loans) != 0 {
		t.Errorf("Expected empty non-nil list, got %v", loans)
	}
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	inv := mustInvoice(t, s, "alice", "INV-1", "100", models.InvoiceStatusPending)

	if _, err := s.Invoices.Get(ctx, "bob", inv.ID); !IsNotFound(err) {
		t.Errorf("Expected NotFoundError on foreign get, got %v", err)
	}
	if _, err := s.Invoices.Update(ctx, "bob", inv.ID, InvoiceInput{ClientName: str("Mallory")}); !IsNotFound(err) {
		t.Errorf("Expected NotFoundError on foreign update, got %v", err)
	}
	if err := s.Invoices.Delete(ctx, "bob", inv.ID); !IsNotFound(err) {
		t.Errorf("Expected NotFoundError on foreign delete, got %v", err)
	}
}

func TestNotFoundNamesTheEntity(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	for want, get := range map[string]func() error{
		"invoice":          func() error { _, err := s.Invoices.Get(ctx, "alice", 404); return err },
		"loan application": func() error { _, err := s.Loans.Get(ctx, "alice", 404); return err },
		"upi payment":      func() error { _, err := s.Payments.Get(ctx, "alice", 404); return err },
		"gst filing":       func() error { _, err := s.Filings.Get(ctx, "alice", 404); return err },
		"kyc document": func() error {
			_, err := s.KYC.Review(ctx, "alice", 404, models.KycDocumentApproved)
			return err
		},
	} {
		var nf *NotFoundError
		if err := get(); !errors.As(err, &nf) || nf.Resource != want {
			t.Errorf("Expected NotFoundError for %s, got %v", want, err)
		}
	}
}

func TestCreateForUnknownOwnerFails(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Filings.Create(context.Background(), "nobody", FilingInput{
		FilingType: str("GSTR-1"), Period: str("2026-09"), DueDate: day(5),
	})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "userId" {
		t.Errorf("Expected userId validation error, got %v", err)
	}
}

func TestDuplicateInvoiceNumberConflicts(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	original := mustInvoice(t, s, "alice", "INV-DUP", "100", models.InvoiceStatusPending)

	_, err := s.Invoices.Create(ctx, "bob", InvoiceInput{
		InvoiceNumber: str("INV-DUP"),
		ClientName:    str("Other"),
		Amount:        dec("999"),
		DueDate:       day(10),
	})
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("Expected ConflictError, got %v", err)
	}
	if conflict.Field != "invoiceNumber" || conflict.Value != "INV-DUP" {
		t.Errorf("Unexpected conflict detail: %+v", conflict)
	}

	got, err := s.Invoices.Get(ctx, "alice", original.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ClientName != original.ClientName || !got.Amount.Equal(original.Amount) {
		t.Errorf("Original invoice changed: %+v", got)
	}
}

func TestInvoiceSearchAndStatusFilter(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	mustInvoice(t, s, "alice", "INV-100", "100", models.InvoiceStatusPending)
	paid := mustInvoice(t, s, "alice", "INV-200", "200", models.InvoiceStatusPaid)
	mustInvoice(t, s, "alice", "INV-300", "300", models.InvoiceStatusOverdue)

	byStatus, err := s.Invoices.List(ctx, "alice", ListFilter{Status: "paid"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != paid.ID {
		t.Errorf("Expected only the paid invoice, got %+v", byStatus)
	}

	all, _ := s.Invoices.List(ctx, "alice", ListFilter{Status: "all"})
	if len(all) != 3 {
		t.Errorf("Expected 3 invoices for status=all, got %d", len(all))
	}
	if all[0].InvoiceNumber != "INV-300" {
		t.Errorf("Expected newest first, got %s", all[0].InvoiceNumber)
	}

	// search matches client name case-insensitively
	bySearch, _ := s.Invoices.List(ctx, "alice", ListFilter{Search: "client inv-2"})
	if len(bySearch) != 1 || bySearch[0].ID != paid.ID {
		t.Errorf("Expected search hit on client name, got %+v", bySearch)
	}

	// LIKE wildcards are literal
	none, _ := s.Invoices.List(ctx, "alice", ListFilter{Search: "%"})
	if len(none) != 0 {
		t.Errorf("Expected no match for literal %%, got %d", len(none))
	}
}

func TestInvoiceLineItemsDriveAmount(t *testing.T) {
	s, _ := newTestStore(t)
	inv, err := s.Invoices.Create(context.Background(), "alice", InvoiceInput{
		ClientName: str("Acme"),
		DueDate:    day(15),
		TaxRate:    dec("18"),
		Items: []models.InvoiceItem{
			{Description: "Design", Quantity: decimal.NewFromInt(3), Rate: decimal.RequireFromString("1500.50")},
			{Description: "Hosting", Quantity: decimal.NewFromInt(1), Rate: decimal.RequireFromString("999.99")},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if want := decimal.RequireFromString("6491.76"); !inv.Amount.Equal(want) {
		t.Errorf("Amount = %s, want %s", inv.Amount, want)
	}
	if !inv.Items[0].Amount.Equal(decimal.RequireFromString("4501.5")) {
		t.Errorf("First line amount = %s", inv.Items[0].Amount)
	}
	if !regexp.MustCompile(`^INV-\d{4}-\d{6}$`).MatchString(inv.InvoiceNumber) {
		t.Errorf("Unexpected generated number %q", inv.InvoiceNumber)
	}
}

func TestItemizedInvoiceAmountFollowsItems(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	inv, err := s.Invoices.Create(ctx, "alice", InvoiceInput{
		ClientName: str("Acme"),
		DueDate:    day(15),
		Items: []models.InvoiceItem{
			{Description: "Design", Quantity: decimal.NewFromInt(2), Rate: decimal.NewFromInt(100)},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = s.Invoices.Update(ctx, "alice", inv.ID, InvoiceInput{Amount: dec("999")})
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Fields[0].Field != "amount" {
		t.Fatalf("Expected amount violation, got %v", err)
	}

	updated, err := s.Invoices.Update(ctx, "alice", inv.ID, InvoiceInput{TaxRate: dec("10")})
	if err != nil {
		t.Fatalf("Tax update failed: %v", err)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(220)) {
		t.Errorf("Amount = %s, want 220", updated.Amount)
	}

	// dropping the items makes the amount editable again
	updated, err = s.Invoices.Update(ctx, "alice", inv.ID, InvoiceInput{Items: []models.InvoiceItem{}, Amount: dec("999")})
	if err != nil {
		t.Fatalf("Amount update without items failed: %v", err)
	}
	if !updated.Amount.Equal(decimal.NewFromInt(999)) || len(updated.Items) != 0 {
		t.Errorf("Unexpected invoice: amount %s, %d items", updated.Amount, len(updated.Items))
	}
}

func TestInvoiceValidation(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Invoices.Create(context.Background(), "alice", InvoiceInput{
		InvoiceNumber: str("INV-X"),
		Amount:        dec("-5"),
	})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("Expected ValidationError, got %v", err)
	}
	fields := map[string]bool{}
	for _, f := range ve.Fields {
		fields[f.Field] = true
	}
	for _, want := range []string{"clientName", "amount", "dueDate"} {
		if !fields[want] {
			t.Errorf("Expected violation for %s, got %+v", want, ve.Fields)
		}
	}
}

func TestInvoiceStatusLifecycle(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	inv := mustInvoice(t, s, "alice", "INV-L", "100", models.InvoiceStatusPending)

	overdue := models.InvoiceStatusOverdue
	updated, err := s.Invoices.Update(ctx, "alice", inv.ID, InvoiceInput{Status: &overdue})
	if err != nil {
		t.Fatalf("pending -> overdue failed: %v", err)
	}
	if updated.Status != overdue {
		t.Errorf("Status = %s", updated.Status)
	}
	if updated.UpdatedAt.Before(inv.UpdatedAt) {
		t.Errorf("UpdatedAt went backwards")
	}

	paid := models.InvoiceStatusPaid
	if _, err := s.Invoices.Update(ctx, "alice", inv.ID, InvoiceInput{Status: &paid}); err != nil {
		t.Fatalf("overdue -> paid failed: %v", err)
	}

	pending := models.InvoiceStatusPending
	if _, err := s.Invoices.Update(ctx, "alice", inv.ID, InvoiceInput{Status: &pending}); err == nil {
		t.Error("Expected paid -> pending to be rejected")
	}

	// same status is a no-op, not an error
	if _, err := s.Invoices.Update(ctx, "alice", inv.ID, InvoiceInput{Status: &paid}); err != nil {
		t.Errorf("paid -> paid should succeed: %v", err)
	}
}

func TestInvoiceDeleteRemovesFromList(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	inv := mustInvoice(t, s, "alice", "INV-D", "100", models.InvoiceStatusPending)

	if err := s.Invoices.Delete(ctx, "alice", inv.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	list, _ := s.Invoices.List(ctx, "alice", ListFilter{})
	if len(list) != 0 {
		t.Errorf("Expected empty list after delete, got %d", len(list))
	}
	if err := s.Invoices.Delete(ctx, "alice", inv.ID); !IsNotFound(err) {
		t.Errorf("Expected NotFoundError on second delete, got %v", err)
	}
}

func TestPaidAmountsSumExactly(t *testing.T) {
	s, _ := newTestStore(t)
	mustInvoice(t, s, "alice", "INV-P1", "45000.00", models.InvoiceStatusPaid)
	mustInvoice(t, s, "alice", "INV-P2", "125500.50", models.InvoiceStatusPaid)
	mustInvoice(t, s, "alice", "INV-P3", "75000", models.InvoiceStatusPending)

	amounts, err := s.Invoices.PaidAmounts(context.Background(), "alice")
	if err != nil {
		t.Fatalf("PaidAmounts failed: %v", err)
	}
	total := decimal.Sum(decimal.Zero, amounts...)
	if !total.Equal(decimal.RequireFromString("170500.50")) {
		t.Errorf("Total = %s, want 170500.50", total)
	}
}

func TestUserUpsertKeepsKycStatus(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	user, err := s.Users.Upsert(ctx, models.UserIdentity{ID: "carol", Email: str("carol@example.com"), FirstName: str("Carol")})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if user.KycStatus != models.KycStatusPending {
		t.Errorf("Expected pending kyc status, got %s", user.KycStatus)
	}

	if err := s.Users.SetKycStatus(ctx, "carol", models.KycStatusVerified); err != nil {
		t.Fatalf("SetKycStatus failed: %v", err)
	}

	again, err := s.Users.Upsert(ctx, models.UserIdentity{ID: "carol", LastName: str("Doe")})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if again.KycStatus != models.KycStatusVerified {
		t.Errorf("Upsert reset kyc status to %s", again.KycStatus)
	}
	if again.FirstName == nil || *again.FirstName != "Carol" || again.LastName == nil || *again.LastName != "Doe" {
		t.Errorf("Expected merged names, got %+v", again)
	}

	var count int64
	s.Users.db.Model(&models.User{}).Where("id = ?", "carol").Count(&count)
	if count != 1 {
		t.Errorf("Expected one user row, got %d", count)
	}
}
