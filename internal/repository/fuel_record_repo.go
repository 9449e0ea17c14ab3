package repository

import (
	"context"
	"time"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FuelRecordRepository interface {
	// FindByTruck returns the truck's non-cancelled, non-deleted records,
	// newest first, capped at limit.
	FindByTruck(ctx context.Context, truckNo string, limit int) ([]model.FuelRecord, error)
	// FindByDo matches either the going or the return DO number.
	FindByDo(ctx context.Context, doNo string) (*model.FuelRecord, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.FuelRecord, error)
	Create(ctx context.Context, rec *model.FuelRecord) error
	Update(ctx context.Context, rec *model.FuelRecord) error
	// FirstQueued returns the truck's queued record with the lowest queue
	// order, used to promote the next journey when one completes.
	FirstQueued(ctx context.Context, truckNo string) (*model.FuelRecord, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) error
	DB() *gorm.DB
}

type fuelRecordRepo struct{ db *gorm.DB }

func NewFuelRecordRepository(db *gorm.DB) FuelRecordRepository { return &fuelRecordRepo{db: db} }

func (r *fuelRecordRepo) DB() *gorm.DB { return r.db }

func (r *fuelRecordRepo) live() *gorm.DB {
	return r.db.Where("is_cancelled = ? AND is_deleted = ?", false, false)
}

func (r *fuelRecordRepo) FindByTruck(ctx context.Context, truckNo string, limit int) ([]model.FuelRecord, error) {
	var recs []model.FuelRecord
	err := r.live().WithContext(ctx).
		Where("truck_no = ?", truckNo).
		Order("created_at DESC").
		Limit(limit).
		Find(&recs).Error
	return recs, err
}

func (r *fuelRecordRepo) FindByDo(ctx context.Context, doNo string) (*model.FuelRecord, error) {
	var rec model.FuelRecord
	err := r.live().WithContext(ctx).
		Where("going_do = ? OR return_do = ?", doNo, doNo).
		Order("created_at DESC").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *fuelRecordRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.FuelRecord, error) {
	var rec model.FuelRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *fuelRecordRepo) Create(ctx context.Context, rec *model.FuelRecord) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *fuelRecordRepo) Update(ctx context.Context, rec *model.FuelRecord) error {
	return r.db.WithContext(ctx).Save(rec).Error
}

func (r *fuelRecordRepo) FirstQueued(ctx context.Context, truckNo string) (*model.FuelRecord, error) {
	var rec model.FuelRecord
	err := r.live().WithContext(ctx).
		Where("truck_no = ? AND journey_status = ?", truckNo, model.JourneyQueued).
		Order("queue_order ASC, created_at ASC").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *fuelRecordRepo) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.FuelRecord{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_cancelled":        true,
			"cancelled_at":        &now,
			"cancellation_reason": &reason,
		}).Error
}
