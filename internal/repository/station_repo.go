package repository

import (
	"context"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StationRepository interface {
	// FindByName matches the station name case-insensitively among active
	// configurations.
	FindByName(ctx context.Context, name string) (*model.StationConfig, error)
	List(ctx context.Context, activeOnly bool) ([]model.StationConfig, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.StationConfig, error)
	Create(ctx context.Context, s *model.StationConfig) error
	Update(ctx context.Context, s *model.StationConfig) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type stationRepo struct{ db *gorm.DB }

func NewStationRepository(db *gorm.DB) StationRepository { return &stationRepo{db: db} }

func (r *stationRepo) FindByName(ctx context.Context, name string) (*model.StationConfig, error) {
	var s model.StationConfig
	err := r.db.WithContext(ctx).
		Where("UPPER(station_name) = UPPER(?) AND is_active = ?", name, true).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stationRepo) List(ctx context.Context, activeOnly bool) ([]model.StationConfig, error) {
	var stations []model.StationConfig
	q := r.db.WithContext(ctx).Order("station_name ASC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Find(&stations).Error
	return stations, err
}

func (r *stationRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.StationConfig, error) {
	var s model.StationConfig
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *stationRepo) Create(ctx context.Context, s *model.StationConfig) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *stationRepo) Update(ctx context.Context, s *model.StationConfig) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *stationRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.StationConfig{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
