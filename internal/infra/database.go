package infra

import (
	"fmt"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies idempotent SQL patches that GORM
// cannot express (sequences, partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies the schema. Shared with integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.FuelRecord{},
		&model.StationConfig{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderEntry{},
		&model.DeliveryOrder{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements beyond AutoMigrate's
// reach. Each statement uses IF NOT EXISTS semantics so re-running on an
// already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// LPO numbers come from a PG sequence so concurrent issuance never
		// collides.
		`CREATE SEQUENCE IF NOT EXISTS purchase_orders_order_no_seq START 2001`,

		// Partial index backing the duplicate guard's hot query: live
		// entries per truck. Cancelled entries are excluded from every
		// duplicate check.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_entries_live_truck') THEN
		    CREATE INDEX idx_entries_live_truck
		        ON purchase_order_entries (truck_no, do_no)
		        WHERE is_cancelled = false;
		  END IF;
		END $$`,

		// Journey resolution always filters on the soft flags first.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_fuel_records_live_truck') THEN
		    CREATE INDEX idx_fuel_records_live_truck
		        ON fuel_records (truck_no, created_at DESC)
		        WHERE is_cancelled = false AND is_deleted = false;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
