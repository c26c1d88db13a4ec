package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/UTDallasEPICS/the-samaritan-inn/internal/model"
)

// EventRepository event data access
type EventRepository interface {
	Create(ctx context.Context, e *model.Event) error
	// CreateBatch inserts all events in one transaction.
	CreateBatch(ctx context.Context, events []model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	// List returns events overlapping [from, to], ordered by start.
	// A nil bound is open.
	List(ctx context.Context, from, to *time.Time) ([]model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type eventRepo struct {
	db *gorm.DB
}

// NewEventRepo creates an EventRepository.
func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) Create(ctx context.Context, e *model.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *eventRepo) CreateBatch(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&events, 100).Error
	})
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var e model.Event
	err := r.db.WithContext(ctx).
		Where("event_id = ?", id).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *eventRepo) List(ctx context.Context, from, to *time.Time) ([]model.Event, error) {
	var events []model.Event
	db := r.db.WithContext(ctx)

	if from != nil {
		db = db.Where("end_at >= ?", *from)
	}
	if to != nil {
		db = db.Where("start_at <= ?", *to)
	}

	err := db.Order("start_at ASC, event_id ASC").Find(&events).Error
	return events, err
}

func (r *eventRepo) Update(ctx context.Context, e *model.Event) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *eventRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Event{}).
		Where("event_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
