// Package metrics computes the dashboard summary on every request.
package metrics

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/xelth-com/finflowgo/internal/finance"
	"github.com/xelth-com/finflowgo/internal/models"
	"github.com/xelth-com/finflowgo/internal/store"
)

// UpcomingFilingsLimit caps the filings shown on the dashboard
const UpcomingFilingsLimit = 5

// Dashboard is a point-in-time summary for one user; it is never stored
type Dashboard struct {
	TotalRevenue       decimal.Decimal    `json:"totalRevenue"`
	ActiveLoans        int64              `json:"activeLoans"`
	PendingInvoices    int64              `json:"pendingInvoices"`
	OverdueInvoices    int64              `json:"overdueInvoices"`
	UpcomingGstFilings []models.GstFiling `json:"upcomingGstFilings"`
}

// Aggregator reads the entity stores to build dashboards
type Aggregator struct {
	store *store.Store
	log   logrus.FieldLogger
}

// NewAggregator creates an Aggregator over s
func NewAggregator(s *store.Store, log logrus.FieldLogger) *Aggregator {
	return &Aggregator{store: s, log: log}
}

// Dashboard computes the summary for userID. Users without records get zero values.
func (a *Aggregator) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	paid, err := a.store.Invoices.PaidAmounts(ctx, userID)
	if err != nil {
		return nil, err
	}

	active, err := a.store.Loans.CountByStatus(ctx, userID, models.LoanStatusDisbursed)
	if err != nil {
		return nil, err
	}
	pending, err := a.store.Invoices.CountByStatus(ctx, userID, models.InvoiceStatusPending)
	if err != nil {
		return nil, err
	}
	overdue, err := a.store.Invoices.CountByStatus(ctx, userID, models.InvoiceStatusOverdue)
	if err != nil {
		return nil, err
	}
	filings, err := a.store.Filings.UpcomingPending(ctx, userID, UpcomingFilingsLimit)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{
		TotalRevenue:       finance.Sum(paid...),
		ActiveLoans:        active,
		PendingInvoices:    pending,
		OverdueInvoices:    overdue,
		UpcomingGstFilings: filings,
	}
	a.log.WithFields(logrus.Fields{
		"userId":  userID,
		"paid":    len(paid),
		"pending": pending,
		"overdue": overdue,
	}).Debug("Dashboard computed")
	return d, nil
}
