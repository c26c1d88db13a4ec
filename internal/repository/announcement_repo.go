package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
)

// AnnouncementRepository announcement data access
type AnnouncementRepository interface {
	Create(ctx context.Context, a *model.Announcement) error
	GetByID(ctx context.Context, id string) (*model.Announcement, error)
	List(ctx context.Context) ([]model.Announcement, error)
	Update(ctx context.Context, a *model.Announcement) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type announcementRepo struct {
	db *gorm.DB
}

// NewAnnouncementRepo creates an AnnouncementRepository.
func NewAnnouncementRepo(db *gorm.DB) AnnouncementRepository {
	return &announcementRepo{db: db}
}

func (r *announcementRepo) Create(ctx context.Context, a *model.Announcement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *announcementRepo) GetByID(ctx context.Context, id string) (*model.Announcement, error) {
	var a model.Announcement
	err := r.db.WithContext(ctx).
		Where("announcement_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *announcementRepo) List(ctx context.Context) ([]model.Announcement, error) {
	var list []model.Announcement
	err := r.db.WithContext(ctx).
		Order("created_at DESC, announcement_id DESC").
		Find(&list).Error
	return list, err
}

func (r *announcementRepo) Update(ctx context.Context, a *model.Announcement) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *announcementRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Announcement{}).
		Where("announcement_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
