package repository

import (
	"context"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"

	"gorm.io/gorm"
)

type DeliveryOrderRepository interface {
	FindByDoNo(ctx context.Context, doNo string) (*model.DeliveryOrder, error)
	Create(ctx context.Context, d *model.DeliveryOrder) error
}

type deliveryOrderRepo struct{ db *gorm.DB }

func NewDeliveryOrderRepository(db *gorm.DB) DeliveryOrderRepository {
	return &deliveryOrderRepo{db: db}
}

func (r *deliveryOrderRepo) FindByDoNo(ctx context.Context, doNo string) (*model.DeliveryOrder, error) {
	var d model.DeliveryOrder
	err := r.db.WithContext(ctx).Where("do_no = ?", doNo).First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *deliveryOrderRepo) Create(ctx context.Context, d *model.DeliveryOrder) error {
	return r.db.WithContext(ctx).Create(d).Error
}
