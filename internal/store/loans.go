package store

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xelth-com/finflowgo/internal/models"
)

// LoanAction selects how a wizard step is persisted
type LoanAction string

const (
	LoanActionSubmit    LoanAction = "submit"     // strict validation, may advance the status
	LoanActionSaveDraft LoanAction = "save_draft" // partial data allowed, status stays draft
)

// LoanInput carries wizard fields; nil fields are left unchanged on update
type LoanInput struct {
	Amount       *decimal.Decimal
	TenureMonths *int
	Purpose      *string
	Documents    []models.LoanDocument
	Step         *int
	Action       LoanAction
	// Status without Action requests a back-office lifecycle transition.
	// status "draft" is how clients save a draft and maps to save_draft.
	Status *models.LoanStatus
}

func (in LoanInput) hasFields() bool {
	return in.Amount != nil || in.TenureMonths != nil || in.Purpose != nil || in.Documents != nil || in.Step != nil
}

// LoanStore manages loan applications and the application wizard
type LoanStore struct {
	repo *OwnedRepository[models.LoanApplication, *models.LoanApplication]
}

// NewLoanStore creates a LoanStore
func NewLoanStore(db *gorm.DB) *LoanStore {
	return &LoanStore{repo: NewOwnedRepository[models.LoanApplication](db, RepositorySpec{
		OrderBy: []string{"created_at DESC", "id DESC"},
	})}
}

// Create starts an application at the given step (default 1)
func (s *LoanStore) Create(ctx context.Context, ownerID string, in LoanInput) (*models.LoanApplication, error) {
	action, err := normalizeAction(in.Action)
	if err != nil {
		return nil, err
	}
	step := models.LoanFirstStep
	if in.Step != nil {
		step = *in.Step
	}
	if step < models.LoanFirstStep || step > models.LoanLastStep {
		return nil, NewValidationError("step", "must be between 1 and 3")
	}

	loan := &models.LoanApplication{Status: models.LoanStatusDraft}
	applyLoanFields(loan, in)
	loan.CurrentStep = step

	if err := validateLoan(loan, action == LoanActionSubmit); err != nil {
		return nil, err
	}
	if action == LoanActionSubmit && step == models.LoanLastStep {
		loan.Status = models.LoanStatusSubmitted
	}

	if err := s.repo.Create(ctx, ownerID, loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// List returns the owner's applications, newest first
func (s *LoanStore) List(ctx context.Context, ownerID string, f ListFilter) ([]models.LoanApplication, error) {
	return s.repo.ListByOwner(ctx, ownerID, f)
}

// Get returns one of the owner's applications
func (s *LoanStore) Get(ctx context.Context, ownerID string, id uint) (*models.LoanApplication, error) {
	return s.repo.GetOwned(ctx, ownerID, id)
}

// CountByStatus counts the owner's applications in status
func (s *LoanStore) CountByStatus(ctx context.Context, ownerID string, status models.LoanStatus) (int64, error) {
	return s.repo.CountByOwner(ctx, ownerID, string(status))
}

// Advance applies a wizard step or a lifecycle transition to an existing application.
//
// A submit of step N stores currentStep=N and, for the last step, moves the
// application to submitted. Steps may not skip ahead of currentStep+1.
// Submitting the last step again on a submitted application returns it unchanged.
func (s *LoanStore) Advance(ctx context.Context, ownerID string, id uint, in LoanInput) (*models.LoanApplication, error) {
	loan, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if in.Action == "" && in.Status != nil {
		switch {
		case *in.Status == models.LoanStatusDraft:
			in.Action = LoanActionSaveDraft
		case in.hasFields():
			return nil, NewValidationError("status", "cannot be changed together with application fields")
		default:
			return s.transition(ctx, ownerID, loan, *in.Status)
		}
	}

	action, err := normalizeAction(in.Action)
	if err != nil {
		return nil, err
	}
	step := loan.CurrentStep
	if in.Step != nil {
		step = *in.Step
	}
	if step < models.LoanFirstStep || step > models.LoanLastStep {
		return nil, NewValidationError("step", "must be between 1 and 3")
	}
	if step > loan.CurrentStep+1 {
		return nil, NewValidationError("step", "previous steps must be submitted first")
	}

	if loan.Status != models.LoanStatusDraft {
		if loan.Status == models.LoanStatusSubmitted && action == LoanActionSubmit && step == models.LoanLastStep {
			return loan, nil
		}
		return nil, NewValidationError("status", "application is no longer editable")
	}

	candidate := *loan
	applyLoanFields(&candidate, in)
	if err := validateLoan(&candidate, action == LoanActionSubmit); err != nil {
		return nil, err
	}

	changes := map[string]any{"current_step": step}
	if in.Amount != nil {
		changes["amount"] = candidate.Amount
	}
	if in.TenureMonths != nil {
		changes["tenure"] = candidate.TenureMonths
	}
	if in.Purpose != nil {
		changes["purpose"] = candidate.Purpose
	}
	if in.Documents != nil {
		changes["documents"] = candidate.Documents
	}
	if action == LoanActionSubmit && step == models.LoanLastStep {
		changes["status"] = models.LoanStatusSubmitted
	}

	return s.repo.Update(ctx, ownerID, id, changes)
}

func (s *LoanStore) transition(ctx context.Context, ownerID string, loan *models.LoanApplication, next models.LoanStatus) (*models.LoanApplication, error) {
	if next == loan.Status {
		return loan, nil
	}
	if !loan.Status.CanTransitionTo(next) {
		return nil, NewValidationError("status", "cannot move from "+string(loan.Status)+" to "+string(next))
	}
	return s.repo.Update(ctx, ownerID, loan.ID, map[string]any{"status": next})
}

func normalizeAction(a LoanAction) (LoanAction, error) {
	switch a {
	case "":
		return LoanActionSubmit, nil
	case LoanActionSubmit, LoanActionSaveDraft:
		return a, nil
	default:
		return "", NewValidationError("action", "must be submit or save_draft")
	}
}

func applyLoanFields(loan *models.LoanApplication, in LoanInput) {
	if in.Amount != nil {
		loan.Amount = *in.Amount
	}
	if in.TenureMonths != nil {
		loan.TenureMonths = *in.TenureMonths
	}
	if in.Purpose != nil {
		loan.Purpose = strings.TrimSpace(*in.Purpose)
	}
	if in.Documents != nil {
		loan.Documents = in.Documents
	}
}

func validateLoan(loan *models.LoanApplication, strict bool) error {
	v := &ValidationError{}
	checkAmount(v, "amount", loan.Amount, strict)
	switch {
	case strict && loan.TenureMonths <= 0:
		v.Add("tenure", "must be greater than 0")
	case loan.TenureMonths < 0:
		v.Add("tenure", "must not be negative")
	}
	if strict {
		checkRequired(v, "purpose", loan.Purpose)
	}
	for _, doc := range loan.Documents {
		if strings.TrimSpace(doc.Name) == "" || doc.Size < 0 {
			v.Add("documents", "each document needs a name and a non-negative size")
			break
		}
	}
	return v.OrNil()
}
