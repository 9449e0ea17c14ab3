package model

import (
	"time"

	"github.com/google/uuid"
)

// Journey lifecycle values for FuelRecord.JourneyStatus.
// Legacy rows imported from the old sheet have no status at all — their
// lifecycle is inferred from balance and checkpoint fills (see service.Classify).
const (
	JourneyActive    = "active"
	JourneyQueued    = "queued"
	JourneyCompleted = "completed"
)

// PendingConfigReason values — set together with IsLocked when a record is
// imported before the route total liters or truck batch has been configured.
const (
	PendingMissingTotalLiters = "missing_total_liters"
	PendingMissingExtraFuel   = "missing_extra_fuel"
	PendingBoth               = "both"
)

// FuelRecord is one planned round trip for one truck: the going leg from the
// Dar yard out to the destination and the return leg back. Fuel is drawn at
// fixed checkpoints along each leg; each checkpoint has its own column so the
// clerks can see at a glance where the truck has already fuelled.
type FuelRecord struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TruckNo string    `gorm:"type:varchar(20);index;not null"`

	GoingDo  string  `gorm:"type:varchar(30);index"`
	ReturnDo *string `gorm:"type:varchar(30);index"`

	// Route. OriginalGoingTo keeps the going destination even when a later
	// export DO rewrites To for the return leg.
	Start           string `gorm:"type:varchar(60)"`
	From            string `gorm:"type:varchar(60)"`
	To              string `gorm:"type:varchar(60)"`
	OriginalGoingTo string `gorm:"type:varchar(60)"`

	// Quantities. TotalLts stays NULL until the route configuration is
	// entered; Balance is what the truck may still draw.
	TotalLts *int `gorm:"column:total_lts"`
	Extra    int  `gorm:"not null;default:0"`
	Balance  int  `gorm:"not null;default:0"`

	// Checkpoint columns, liters drawn at each. Zero = not yet filled.
	Yard          int `gorm:"not null;default:0"`
	TangaGoing    int `gorm:"not null;default:0"`
	MbeyaGoing    int `gorm:"not null;default:0"`
	TundumaGoing  int `gorm:"not null;default:0"`
	TangaReturn   int `gorm:"not null;default:0"`
	MbeyaReturn   int `gorm:"not null;default:0"`
	TundumaReturn int `gorm:"not null;default:0"`

	// Lifecycle
	JourneyStatus       *string `gorm:"type:varchar(12);index"`
	QueueOrder          int     `gorm:"not null;default:0"`
	IsLocked            bool    `gorm:"not null;default:false"`
	PendingConfigReason *string `gorm:"type:varchar(30)"`

	// Soft state — records are never physically deleted
	IsCancelled        bool `gorm:"not null;default:false;index"`
	CancelledAt        *time.Time
	CancellationReason *string
	IsDeleted          bool `gorm:"not null;default:false;index"`
	DeletedAt          *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (FuelRecord) TableName() string { return "fuel_records" }

// Checkpoints returns the named checkpoint columns, in leg order.
// Used by the checkpoint update endpoint and the balance recompute.
func (r *FuelRecord) Checkpoints() map[string]int {
	return map[string]int{
		CheckpointYard:          r.Yard,
		CheckpointTangaGoing:    r.TangaGoing,
		CheckpointMbeyaGoing:    r.MbeyaGoing,
		CheckpointTundumaGoing:  r.TundumaGoing,
		CheckpointTangaReturn:   r.TangaReturn,
		CheckpointMbeyaReturn:   r.MbeyaReturn,
		CheckpointTundumaReturn: r.TundumaReturn,
	}
}

// Checkpoint column names as used by the API and the cancellation metadata.
const (
	CheckpointYard          = "yard"
	CheckpointTangaGoing    = "tanga_going"
	CheckpointMbeyaGoing    = "mbeya_going"
	CheckpointTundumaGoing  = "tunduma_going"
	CheckpointTangaReturn   = "tanga_return"
	CheckpointMbeyaReturn   = "mbeya_return"
	CheckpointTundumaReturn = "tunduma_return"
)

// SetCheckpoint writes liters into the named checkpoint column.
// Returns false when the name is not a known checkpoint.
func (r *FuelRecord) SetCheckpoint(name string, liters int) bool {
	switch name {
	case CheckpointYard:
		r.Yard = liters
	case CheckpointTangaGoing:
		r.TangaGoing = liters
	case CheckpointMbeyaGoing:
		r.MbeyaGoing = liters
	case CheckpointTundumaGoing:
		r.TundumaGoing = liters
	case CheckpointTangaReturn:
		r.TangaReturn = liters
	case CheckpointMbeyaReturn:
		r.MbeyaReturn = liters
	case CheckpointTundumaReturn:
		r.TundumaReturn = liters
	default:
		return false
	}
	return true
}
