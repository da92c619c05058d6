package store

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/xelth-com/finflowgo/internal/models"
)

// KycInput carries the fields of an uploaded document
type KycInput struct {
	DocumentType models.KycDocumentType
	FileName     string
	FileURL      string
}

// KycOverall is the aggregated verification state shown to the user
type KycOverall string

const (
	KycOverallVerified KycOverall = "verified"
	KycOverallPartial  KycOverall = "partial"
	KycOverallPending  KycOverall = "pending"
)

// KycRequirement is the state of one document type in the summary
type KycRequirement struct {
	DocumentType models.KycDocumentType   `json:"documentType"`
	Required     bool                     `json:"required"`
	Status       models.KycDocumentStatus `json:"status,omitempty"` // empty when nothing was uploaded
	DocumentID   *uint                    `json:"documentId,omitempty"`
}

// KycSummary aggregates the latest document per type
type KycSummary struct {
	Status       KycOverall       `json:"status"`
	Progress     int              `json:"progress"` // percent of required types approved
	Approved     int              `json:"approved"`
	Required     int              `json:"required"`
	Requirements []KycRequirement `json:"requirements"`
}

// KycStore manages KYC documents and keeps the user's kycStatus in step with reviews
type KycStore struct {
	repo  *OwnedRepository[models.KycDocument, *models.KycDocument]
	users *UserStore
}

// NewKycStore creates a KycStore
func NewKycStore(db *gorm.DB, users *UserStore) *KycStore {
	return &KycStore{
		repo: NewOwnedRepository[models.KycDocument](db, RepositorySpec{
			OrderBy: []string{"created_at DESC", "id DESC"},
		}),
		users: users,
	}
}

// Create stores an uploaded document awaiting review. A new upload supersedes
// the previous one of its type, so the owner's kycStatus is recomputed.
func (s *KycStore) Create(ctx context.Context, ownerID string, in KycInput) (*models.KycDocument, error) {
	doc := &models.KycDocument{
		DocumentType: in.DocumentType,
		FileName:     strings.TrimSpace(in.FileName),
		FileURL:      strings.TrimSpace(in.FileURL),
		Status:       models.KycDocumentPending,
	}

	v := &ValidationError{}
	if !doc.DocumentType.Valid() {
		v.Add("documentType", "unknown document type")
	}
	checkRequired(v, "fileName", doc.FileName)
	checkRequired(v, "fileUrl", doc.FileURL)
	if err := v.OrNil(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, ownerID, doc); err != nil {
		return nil, err
	}
	if err := s.syncUserStatus(ctx, ownerID); err != nil {
		return nil, err
	}
	return doc, nil
}

// List returns the owner's documents, newest first
func (s *KycStore) List(ctx context.Context, ownerID string, f ListFilter) ([]models.KycDocument, error) {
	return s.repo.ListByOwner(ctx, ownerID, f)
}

// LatestByType keeps only the newest upload of each document type, newest first
func (s *KycStore) LatestByType(ctx context.Context, ownerID string) ([]models.KycDocument, error) {
	docs, err := s.repo.ListByOwner(ctx, ownerID, ListFilter{})
	if err != nil {
		return nil, err
	}
	seen := make(map[models.KycDocumentType]bool, len(models.KycDocumentTypes))
	latest := make([]models.KycDocument, 0, len(models.KycDocumentTypes))
	for _, doc := range docs {
		if seen[doc.DocumentType] {
			continue
		}
		seen[doc.DocumentType] = true
		latest = append(latest, doc)
	}
	return latest, nil
}

// Review approves or rejects a pending document and resyncs the owner's kycStatus
func (s *KycStore) Review(ctx context.Context, ownerID string, id uint, next models.KycDocumentStatus) (*models.KycDocument, error) {
	doc, err := s.repo.GetOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if doc.Status != next {
		if !doc.Status.CanTransitionTo(next) {
			return nil, NewValidationError("status", "cannot move from "+string(doc.Status)+" to "+string(next))
		}
		if doc, err = s.repo.Update(ctx, ownerID, id, map[string]any{"status": next}); err != nil {
			return nil, err
		}
	}

	if err := s.syncUserStatus(ctx, ownerID); err != nil {
		return nil, err
	}
	return doc, nil
}

// syncUserStatus stores the kycStatus implied by the owner's latest documents
func (s *KycStore) syncUserStatus(ctx context.Context, ownerID string) error {
	summary, err := s.Summary(ctx, ownerID)
	if err != nil {
		return err
	}
	return s.users.SetKycStatus(ctx, ownerID, userKycStatus(summary))
}

// Summary reports verification progress over the required document types
func (s *KycStore) Summary(ctx context.Context, ownerID string) (*KycSummary, error) {
	latest, err := s.LatestByType(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byType := make(map[models.KycDocumentType]models.KycDocument, len(latest))
	for _, doc := range latest {
		byType[doc.DocumentType] = doc
	}

	required := make(map[models.KycDocumentType]bool, len(models.RequiredKycDocumentTypes))
	for _, t := range models.RequiredKycDocumentTypes {
		required[t] = true
	}

	summary := &KycSummary{Required: len(models.RequiredKycDocumentTypes)}
	for _, t := range models.KycDocumentTypes {
		req := KycRequirement{DocumentType: t, Required: required[t]}
		if doc, ok := byType[t]; ok {
			id := doc.ID
			req.Status = doc.Status
			req.DocumentID = &id
			if req.Required && doc.Status == models.KycDocumentApproved {
				summary.Approved++
			}
		}
		summary.Requirements = append(summary.Requirements, req)
	}

	switch {
	case summary.Approved == summary.Required:
		summary.Status, summary.Progress = KycOverallVerified, 100
	case summary.Approved == 0:
		summary.Status, summary.Progress = KycOverallPending, 0
	default:
		summary.Status = KycOverallPartial
		summary.Progress = summary.Approved * 100 / summary.Required
	}
	return summary, nil
}

// userKycStatus maps the summary onto the user's stored status.
// A rejected latest document of a required type marks the user rejected until a new upload supersedes it.
func userKycStatus(summary *KycSummary) models.KycStatus {
	if summary.Status == KycOverallVerified {
		return models.KycStatusVerified
	}
	for _, req := range summary.Requirements {
		if req.Required && req.Status == models.KycDocumentRejected {
			return models.KycStatusRejected
		}
	}
	return models.KycStatusPending
}
