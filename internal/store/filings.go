package store

import (
	"context"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/xelth-com/finflowgo/internal/models"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// FilingInput carries GST filing fields; on update nil fields are left unchanged
type FilingInput struct {
	FilingType *string
	Period     *string
	DueDate    *time.Time
	Status     *models.FilingStatus
}

// FilingStore manages GST filings, soonest due first
type FilingStore struct {
	db   *gorm.DB
	repo *OwnedRepository[models.GstFiling, *models.GstFiling]
}

// NewFilingStore creates a FilingStore
func NewFilingStore(db *gorm.DB) *FilingStore {
	return &FilingStore{
		db: db,
		repo: NewOwnedRepository[models.GstFiling](db, RepositorySpec{
			OrderBy:       []string{"due_date ASC", "id ASC"},
			SearchColumns: []string{"filing_type", "period"},
		}),
	}
}

// Create stores a filing; one created as filed is stamped with filedAt
func (s *FilingStore) Create(ctx context.Context, ownerID string, in FilingInput) (*models.GstFiling, error) {
	filing := &models.GstFiling{Status: models.FilingStatusPending}
	if in.Status != nil {
		filing.Status = *in.Status
	}
	applyFilingFields(filing, in)

	v := validateFiling(filing)
	if filing.DueDate.IsZero() {
		v.Add("dueDate", "is required")
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}
	if filing.Status == models.FilingStatusFiled {
		now := s.db.NowFunc()
		filing.FiledAt = &now
	}

	if err := s.repo.Create(ctx, ownerID, filing); err != nil {
		return nil, err
	}
	return s.withDaysLeft(filing), nil
}

// List returns the owner's filings ordered by due date
func (s *FilingStore) List(ctx context.Context, ownerID string, f ListFilter) ([]models.GstFiling, error) {
	filings, err := s.repo.ListByOwner(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	for i := range filings {
		s.withDaysLeft(&filings[i])
	}
	return filings, nil
}

// UpcomingPending returns up to limit pending filings, soonest due first
func (s *FilingStore) UpcomingPending(ctx context.Context, ownerID string, limit int) ([]models.GstFiling, error) {
	return s.List(ctx, ownerID, ListFilter{Status: string(models.FilingStatusPending), Limit: limit})
}

// Get returns one of the owner's filings
func (s *FilingStore) Get(ctx context.Context, ownerID string, id uint) (*models.GstFiling, error) {
	filing, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	return s.withDaysLeft(filing), nil
}

// Update merges the given fields. filedAt is stamped only when the status moves to filed.
func (s *FilingStore) Update(ctx context.Context, ownerID string, id uint, in FilingInput) (*models.GstFiling, error) {
	current, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	candidate := *current
	applyFilingFields(&candidate, in)
	if in.Status != nil {
		candidate.Status = *in.Status
	}
	v := validateFiling(&candidate)
	if in.Status != nil && !current.Status.CanTransitionTo(*in.Status) {
		v.Add("status", "cannot move from "+string(current.Status)+" to "+string(*in.Status))
	}
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	changes := map[string]any{}
	if in.FilingType != nil {
		changes["filing_type"] = candidate.FilingType
	}
	if in.Period != nil {
		changes["period"] = candidate.Period
	}
	if in.DueDate != nil {
		changes["due_date"] = candidate.DueDate
	}
	if in.Status != nil && *in.Status != current.Status {
		changes["status"] = *in.Status
		if *in.Status == models.FilingStatusFiled {
			changes["filed_at"] = s.db.NowFunc()
		}
	}

	updated, err := s.repo.Update(ctx, ownerID, id, changes)
	if err != nil {
		return nil, err
	}
	return s.withDaysLeft(updated), nil
}

// withDaysLeft fills the derived countdown for filings still awaiting submission
func (s *FilingStore) withDaysLeft(f *models.GstFiling) *models.GstFiling {
	if f.Status == models.FilingStatusFiled {
		f.DaysLeft = nil
		return f
	}
	days := f.DaysUntilDue(s.db.NowFunc())
	f.DaysLeft = &days
	return f
}

func applyFilingFields(f *models.GstFiling, in FilingInput) {
	if in.FilingType != nil {
		f.FilingType = strings.TrimSpace(*in.FilingType)
	}
	if in.Period != nil {
		f.Period = strings.TrimSpace(*in.Period)
	}
	if in.DueDate != nil {
		y, m, d := in.DueDate.Date()
		f.DueDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
}

func validateFiling(f *models.GstFiling) *ValidationError {
	v := &ValidationError{}
	checkRequired(v, "filingType", f.FilingType)
	if !periodPattern.MatchString(f.Period) {
		v.Add("period", "must be in YYYY-MM format")
	}
	switch f.Status {
	case models.FilingStatusPending, models.FilingStatusFiled, models.FilingStatusOverdue:
	default:
		v.Add("status", "must be pending, filed or overdue")
	}
	return v
}
