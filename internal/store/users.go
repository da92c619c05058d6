package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xelth-com/finflowgo/internal/models"
)

// UserStore persists identities synced from the identity provider
type UserStore struct {
	db *gorm.DB
}

// NewUserStore creates a UserStore
func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Get returns the user or a NotFoundError
func (s *UserStore) Get(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "user", ID: id}
		}
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &user, nil
}

// Upsert inserts the user if absent, otherwise overwrites the provided fields and updated_at.
// kycStatus is never touched by identity sync.
func (s *UserStore) Upsert(ctx context.Context, identity models.UserIdentity) (*models.User, error) {
	if identity.ID == "" {
		return nil, NewValidationError("id", "identity subject is required")
	}

	now := s.db.NowFunc()
	user := models.User{
		ID:              identity.ID,
		Email:           identity.Email,
		FirstName:       identity.FirstName,
		LastName:        identity.LastName,
		ProfileImageURL: identity.ProfileImageURL,
		CompanyName:     identity.CompanyName,
		KycStatus:       models.KycStatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	columns := []string{"updated_at"}
	if identity.Email != nil {
		columns = append(columns, "email")
	}
	if identity.FirstName != nil {
		columns = append(columns, "first_name")
	}
	if identity.LastName != nil {
		columns = append(columns, "last_name")
	}
	if identity.ProfileImageURL != nil {
		columns = append(columns, "profile_image_url")
	}
	if identity.CompanyName != nil {
		columns = append(columns, "company_name")
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(&user).Error
	if err != nil {
		if isUniqueViolation(err) {
			value := ""
			if identity.Email != nil {
				value = *identity.Email
			}
			return nil, &ConflictError{Resource: "user", Field: "email", Value: value}
		}
		return nil, fmt.Errorf("upsert user %s: %w", identity.ID, err)
	}

	return s.Get(ctx, identity.ID)
}

// SetKycStatus records the overall verification result for a user
func (s *UserStore) SetKycStatus(ctx context.Context, id string, status models.KycStatus) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]any{
		"kyc_status": status,
		"updated_at": s.db.NowFunc(),
	})
	if res.Error != nil {
		return fmt.Errorf("set kyc status for %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Resource: "user", ID: id}
	}
	return nil
}
