package repository

import (
	"context"
	"time"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/dto"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PurchaseOrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.PurchaseOrder) error
	NextOrderNumber(ctx context.Context, tx *gorm.DB) (int, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	// FindEntries returns non-cancelled entries for the duplicate guard:
	// same truck and station, optionally narrowed to one DO, optionally
	// excluding the order being edited.
	FindEntries(ctx context.Context, truckNo, station, doNo string, excludeOrderID *uuid.UUID) ([]model.PurchaseOrderEntry, error)
	CancelEntry(ctx context.Context, entryID uuid.UUID, reason, checkpoint string) error
	List(ctx context.Context, filter dto.OrderFilter) ([]model.PurchaseOrder, int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type purchaseOrderRepo struct{ db *gorm.DB }

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepo{db: db}
}

func (r *purchaseOrderRepo) DB() *gorm.DB { return r.db }

func (r *purchaseOrderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.PurchaseOrder) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *purchaseOrderRepo) NextOrderNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	// Uses a PostgreSQL sequence for atomic LPO number generation
	var num int
	err := tx.WithContext(ctx).Raw("SELECT nextval('purchase_orders_order_no_seq')").Scan(&num).Error
	return num, err
}

func (r *purchaseOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var o model.PurchaseOrder
	err := r.db.WithContext(ctx).Preload("Entries").First(&o, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *purchaseOrderRepo) FindEntries(ctx context.Context, truckNo, station, doNo string, excludeOrderID *uuid.UUID) ([]model.PurchaseOrderEntry, error) {
	var entries []model.PurchaseOrderEntry
	q := r.db.WithContext(ctx).
		Joins("JOIN purchase_orders ON purchase_orders.id = purchase_order_entries.order_id").
		Where("purchase_order_entries.truck_no = ?", truckNo).
		Where("UPPER(purchase_orders.station) = UPPER(?)", station).
		Where("purchase_order_entries.is_cancelled = ?", false)
	if doNo != "" {
		q = q.Where("purchase_order_entries.do_no = ?", doNo)
	}
	if excludeOrderID != nil {
		q = q.Where("purchase_order_entries.order_id <> ?", *excludeOrderID)
	}
	err := q.Preload("Order").Order("purchase_order_entries.created_at DESC").Find(&entries).Error
	return entries, err
}

func (r *purchaseOrderRepo) CancelEntry(ctx context.Context, entryID uuid.UUID, reason, checkpoint string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"is_cancelled":        true,
		"cancelled_at":        &now,
		"cancellation_reason": &reason,
	}
	if checkpoint != "" {
		updates["cancellation_checkpoint"] = &checkpoint
	}
	res := r.db.WithContext(ctx).Model(&model.PurchaseOrderEntry{}).
		Where("id = ? AND is_cancelled = ?", entryID, false).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *purchaseOrderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.PurchaseOrder{})
	if filter.Station != "" {
		q = q.Where("UPPER(station) = UPPER(?)", filter.Station)
	}
	if filter.Date != "" {
		q = q.Where("DATE(created_at) = ?", filter.Date)
	} else {
		// Default: today
		q = q.Where("DATE(created_at) = CURRENT_DATE")
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := q.Preload("Entries").
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error

	return orders, total, err
}
