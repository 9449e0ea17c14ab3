package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StationConfig is the per-station allocation configuration maintained by the
// admins. A direction formula, when present, overrides the static default for
// that direction — but only when the caller has already fetched the truck and
// can supply totals (see service.StationService.Resolve).
type StationConfig struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StationName string    `gorm:"type:varchar(60);uniqueIndex;not null"`

	DefaultLitersGoing     int             `gorm:"not null;default:0"`
	DefaultLitersReturning int             `gorm:"not null;default:0"`
	DefaultRate            decimal.Decimal `gorm:"type:decimal(10,3);not null"`

	// Arithmetic expressions over totalLiters / extraLiters / balance,
	// e.g. "balance - 200" or "(totalLiters + extraLiters) / 2".
	FormulaGoing     *string `gorm:"type:text"`
	FormulaReturning *string `gorm:"type:text"`

	IsActive bool `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (StationConfig) TableName() string { return "station_configs" }
