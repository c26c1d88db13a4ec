package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
	pkgerrors "github.com/UTDallasEPICS/the-samaritan-inn/pkg/errors"
)

// CurfewFilter list filter. Zero values do not filter.
type CurfewFilter struct {
	UserID string
	Status string
	Limit  int
}

// CurfewRepository curfew request data access. Requests are never deleted.
type CurfewRepository interface {
	Create(ctx context.Context, req *model.CurfewRequest) error
	GetByID(ctx context.Context, id string) (*model.CurfewRequest, error)
	// List returns requests newest first, with the owning user preloaded.
	List(ctx context.Context, filter CurfewFilter) ([]model.CurfewRequest, error)
	// Decide persists a decision on a request that is still pending at
	// req.Version. It returns pkgerrors.ErrOptimisticLock when the row was
	// decided or modified in the meantime; on success req.Version is bumped.
	Decide(ctx context.Context, req *model.CurfewRequest) error
}

type curfewRepo struct {
	db *gorm.DB
}

// NewCurfewRepo creates a CurfewRepository.
func NewCurfewRepo(db *gorm.DB) CurfewRepository {
	return &curfewRepo{db: db}
}

func (r *curfewRepo) Create(ctx context.Context, req *model.CurfewRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *curfewRepo) GetByID(ctx context.Context, id string) (*model.CurfewRequest, error) {
	var req model.CurfewRequest
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("curfew_request_id = ?", id).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *curfewRepo) List(ctx context.Context, filter CurfewFilter) ([]model.CurfewRequest, error) {
	var reqs []model.CurfewRequest
	db := r.db.WithContext(ctx).Preload("User")

	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	err := db.Order("created_at DESC, curfew_request_id DESC").Find(&reqs).Error
	return reqs, err
}

func (r *curfewRepo) Decide(ctx context.Context, req *model.CurfewRequest) error {
	result := r.db.WithContext(ctx).
		Model(&model.CurfewRequest{}).
		Where("curfew_request_id = ? AND status = ? AND version = ?",
			req.CurfewRequestID, model.CurfewStatusPending, req.Version).
		Updates(map[string]interface{}{
			"status":            req.Status,
			"reason_for_denial": req.ReasonForDenial,
			"decided_by":        req.DecidedBy,
			"decided_at":        req.DecidedAt,
			"version":           gorm.Expr("version + 1"),
			"updated_at":        gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	req.Version++
	return nil
}
