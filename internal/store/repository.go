package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/xelth-com/finflowgo/internal/models"
)

// ListFilter narrows ListByOwner results
type ListFilter struct {
	Status string // exact match; "" or "all" disables the filter
	Search string // case-insensitive substring over the searchable columns
	Limit  int    // 0 means no limit
}

// listAll is the status value meaning "no status filter"
const listAll = "all"

// RepositorySpec describes how one entity table is queried
type RepositorySpec struct {
	OrderBy       []string // ORDER BY clauses, applied in sequence
	SearchColumns []string
}

// OwnedRepository implements owner-scoped CRUD for any entity owned by a user.
// Every read and write is filtered by user_id; records of other users behave as missing.
type OwnedRepository[T any, PT interface {
	*T
	models.OwnedEntity
}] struct {
	db   *gorm.DB
	spec RepositorySpec
}

// NewOwnedRepository creates a repository over the table of T
func NewOwnedRepository[T any, PT interface {
	*T
	models.OwnedEntity
}](db *gorm.DB, spec RepositorySpec) *OwnedRepository[T, PT] {
	return &OwnedRepository[T, PT]{db: db, spec: spec}
}

// resource names T in errors
func (r *OwnedRepository[T, PT]) resource() string {
	return PT(new(T)).GetEntityType()
}

// Create forces the owner onto rec and inserts it
func (r *OwnedRepository[T, PT]) Create(ctx context.Context, ownerID string, rec PT) error {
	if ownerID == "" {
		return NewValidationError("userId", "owner is required")
	}
	rec.SetOwnerID(ownerID)

	var owners int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", ownerID).Count(&owners).Error; err != nil {
		return fmt.Errorf("check owner of %s: %w", r.resource(), err)
	}
	if owners == 0 {
		return NewValidationError("userId", "user does not exist")
	}

	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return &ConflictError{Resource: r.resource(), Field: "unique key", Value: ""}
		}
		return fmt.Errorf("create %s: %w", r.resource(), err)
	}
	return nil
}

// ListByOwner returns the owner's records; it never fails because nothing matched
func (r *OwnedRepository[T, PT]) ListByOwner(ctx context.Context, ownerID string, f ListFilter) ([]T, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)

	if status := strings.TrimSpace(f.Status); status != "" && status != listAll {
		q = q.Where("status = ?", status)
	}

	if search := strings.TrimSpace(f.Search); search != "" && len(r.spec.SearchColumns) > 0 {
		pattern := "%" + escapeLike(strings.ToLower(search)) + "%"
		conds := make([]string, 0, len(r.spec.SearchColumns))
		args := make([]any, 0, len(r.spec.SearchColumns))
		for _, col := range r.spec.SearchColumns {
			conds = append(conds, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col))
			args = append(args, pattern)
		}
		q = q.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	for _, order := range r.spec.OrderBy {
		q = q.Order(order)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	items := make([]T, 0)
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.resource(), err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// CountByOwner counts the owner's records with the given status ("" counts all)
func (r *OwnedRepository[T, PT]) CountByOwner(ctx context.Context, ownerID, status string) (int64, error) {
	q := r.db.WithContext(ctx).Model(PT(new(T))).Where("user_id = ?", ownerID)
	if status != "" && status != listAll {
		q = q.Where("status = ?", status)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", r.resource(), err)
	}
	return n, nil
}

// GetByID loads a record regardless of owner; callers must check ownership before exposing it
func (r *OwnedRepository[T, PT]) GetByID(ctx context.Context, id uint) (PT, error) {
	rec := PT(new(T))
	if err := r.db.WithContext(ctx).First(rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: r.resource(), ID: id}
		}
		return nil, fmt.Errorf("get %s %d: %w", r.resource(), id, err)
	}
	return rec, nil
}

// GetOwned loads a record only if it belongs to ownerID
func (r *OwnedRepository[T, PT]) GetOwned(ctx context.Context, ownerID string, id uint) (PT, error) {
	rec := PT(new(T))
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: r.resource(), ID: id}
		}
		return nil, fmt.Errorf("get %s %d: %w", r.resource(), id, err)
	}
	return rec, nil
}

// Update merges the given columns onto the owner's record and refreshes updated_at.
// Last write wins; there is no version check.
func (r *OwnedRepository[T, PT]) Update(ctx context.Context, ownerID string, id uint, changes map[string]any) (PT, error) {
	if changes == nil {
		changes = map[string]any{}
	}
	changes["updated_at"] = r.db.NowFunc()

	res := r.db.WithContext(ctx).Model(PT(new(T))).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(changes)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, &ConflictError{Resource: r.resource(), Field: "unique key"}
		}
		return nil, fmt.Errorf("update %s %d: %w", r.resource(), id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, &NotFoundError{Resource: r.resource(), ID: id}
	}
	return r.GetOwned(ctx, ownerID, id)
}

// Delete permanently removes the owner's record. A missing id is a NotFoundError.
func (r *OwnedRepository[T, PT]) Delete(ctx context.Context, ownerID string, id uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(PT(new(T)))
	if res.Error != nil {
		return fmt.Errorf("delete %s %d: %w", r.resource(), id, res.Error)
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Resource: r.resource(), ID: id}
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
