package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xelth-com/finflowgo/internal/logging"
	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/services/payments"
	"github.com/xelth-com/finflowgo/internal/store"
	"github.com/xelth-com/finflowgo/internal/testutil"
)

func setup(t *testing.T) (*Aggregator, *store.Store) {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedUser(t, db, "alice")
	testutil.SeedUser(t, db, "bob")
	s := store.New(db, payments.NewUPIProvider("https://pay.example.com", "shop@upi", "Shop"))
	return NewAggregator(s, logging.Discard()), s
}

func addInvoice(t *testing.T, s *store.Store, owner, number, amount string, status models.InvoiceStatus) {
	t.Helper()
	client := "Client"
	amt := decimal.RequireFromString(amount)
	due := time.Now().UTC().AddDate(0, 0, 10)
	_, err := s.Invoices.Create(context.Background(), owner, store.InvoiceInput{
		InvoiceNumber: &number, ClientName: &client, Amount: &amt, Status: &status, DueDate: &due,
	})
	if err != nil {
		t.Fatalf("Failed to create invoice %s: %v", number, err)
	}
}

func addFiling(t *testing.T, s *store.Store, owner, filingType string, days int, status models.FilingStatus) {
	t.Helper()
	period := "2026-09"
	due := time.Now().UTC().AddDate(0, 0, days)
	_, err := s.Filings.Create(context.Background(), owner, store.FilingInput{
		FilingType: &filingType, Period: &period, DueDate: &due, Status: &status,
	})
	if err != nil {
		t.Fatalf("Failed to create filing %s: %v", filingType, err)
	}
}

func TestDashboardEmpty(t *testing.T) {
	agg, _ := setup(t)

	d, err := agg.Dashboard(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if !d.TotalRevenue.IsZero() || d.ActiveLoans != 0 || d.PendingInvoices != 0 || d.OverdueInvoices != 0 {
		t.Errorf("Expected zero metrics, got %+v", d)
	}
	if d.UpcomingGstFilings == nil || len(d.UpcomingGstFilings) != 0 {
		t.Errorf("Expected empty filings list, got %v", d.UpcomingGstFilings)
	}
}

func TestDashboardRevenueIsExactDecimalSum(t *testing.T) {
	agg, s := setup(t)

	addInvoice(t, s, "alice", "INV-1", "45000.00", models.InvoiceStatusPaid)
	addInvoice(t, s, "alice", "INV-2", "125500.50", models.InvoiceStatusPaid)
	addInvoice(t, s, "alice", "INV-3", "75000", models.InvoiceStatusPending)
	addInvoice(t, s, "bob", "INV-4", "99999", models.InvoiceStatusPaid)

	d, err := agg.Dashboard(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if want := decimal.RequireFromString("170500.50"); !d.TotalRevenue.Equal(want) {
		t.Errorf("TotalRevenue = %s, want %s", d.TotalRevenue, want)
	}
}

func TestDashboardInvoiceCountsPartitionByStatus(t *testing.T) {
	agg, s := setup(t)

	addInvoice(t, s, "alice", "INV-1", "100", models.InvoiceStatusPending)
	addInvoice(t, s, "alice", "INV-2", "100", models.InvoiceStatusPending)
	addInvoice(t, s, "alice", "INV-3", "100", models.InvoiceStatusOverdue)
	addInvoice(t, s, "alice", "INV-4", "100", models.InvoiceStatusPaid)

	d, err := agg.Dashboard(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if d.PendingInvoices != 2 || d.OverdueInvoices != 1 {
		t.Errorf("Expected 2 pending and 1 overdue, got %d and %d", d.PendingInvoices, d.OverdueInvoices)
	}
	if d.PendingInvoices+d.OverdueInvoices+1 != 4 {
		t.Errorf("Counts do not partition the invoices")
	}
}

func TestDashboardUpcomingFilings(t *testing.T) {
	agg, s := setup(t)

	addFiling(t, s, "alice", "GSTR-1", 5, models.FilingStatusPending)
	addFiling(t, s, "alice", "GSTR-3B", -5, models.FilingStatusFiled)

	d, err := agg.Dashboard(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if len(d.UpcomingGstFilings) != 1 || d.UpcomingGstFilings[0].FilingType != "GSTR-1" {
		t.Errorf("Expected only the pending filing, got %+v", d.UpcomingGstFilings)
	}
}

func TestDashboardUpcomingFilingsCappedAndSorted(t *testing.T) {
	agg, s := setup(t)

	for _, days := range []int{9, 3, 7, 1, 5, 2, 8} {
		addFiling(t, s, "alice", "TDS", days, models.FilingStatusPending)
	}

	d, err := agg.Dashboard(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if len(d.UpcomingGstFilings) != UpcomingFilingsLimit {
		t.Fatalf("Expected %d filings, got %d", UpcomingFilingsLimit, len(d.UpcomingGstFilings))
	}
	for i := 1; i < len(d.UpcomingGstFilings); i++ {
		if d.UpcomingGstFilings[i].DueDate.Before(d.UpcomingGstFilings[i-1].DueDate) {
			t.Errorf("Filings not sorted ascending at %d", i)
		}
	}
	if *d.UpcomingGstFilings[0].DaysLeft != 1 {
		t.Errorf("Expected the soonest filing first, got %d days left", *d.UpcomingGstFilings[0].DaysLeft)
	}
}

func TestDashboardActiveLoansCountsDisbursedOnly(t *testing.T) {
	agg, s := setup(t)
	ctx := context.Background()

	amount := decimal.NewFromInt(100000)
	tenure := 12
	purpose := "Expansion"
	step := 3
	loan, err := s.Loans.Create(ctx, "alice", store.LoanInput{Amount: &amount, TenureMonths: &tenure, Purpose: &purpose, Step: &step})
	if err != nil {
		t.Fatalf("Create loan failed: %v", err)
	}
	for _, next := range []models.LoanStatus{models.LoanStatusApproved, models.LoanStatusDisbursed} {
		next := next
		if _, err := s.Loans.Advance(ctx, "alice", loan.ID, store.LoanInput{Status: &next}); err != nil {
			t.Fatalf("Transition to %s failed: %v", next, err)
		}
	}
	if _, err := s.Loans.Create(ctx, "alice", store.LoanInput{Amount: &amount, TenureMonths: &tenure, Purpose: &purpose}); err != nil {
		t.Fatalf("Create draft failed: %v", err)
	}

	d, err := agg.Dashboard(ctx, "alice")
	if err != nil {
		t.Fatalf("Dashboard failed: %v", err)
	}
	if d.ActiveLoans != 1 {
		t.Errorf("ActiveLoans = %d, want 1", d.ActiveLoans)
	}
}
