package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment modes for an LPO document. Cash orders use the checkpoint-based
// cancellation workflow instead of the duplicate guard.
const (
	PaymentAccount = "account"
	PaymentCash    = "cash"
)

// PurchaseOrder is one LPO document issued to a station, containing one line
// item per truck. Entries are immutable after issuance except for their
// cancellation fields.
type PurchaseOrder struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderNo     int       `gorm:"uniqueIndex;not null"`
	Station     string    `gorm:"type:varchar(60);index;not null"`
	PaymentMode string    `gorm:"type:varchar(10);not null;default:'account'"`
	IssuedBy    string    `gorm:"type:varchar(60)"`

	Entries []PurchaseOrderEntry `gorm:"foreignKey:OrderID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PurchaseOrder) TableName() string { return "purchase_orders" }

// PurchaseOrderEntry is one truck's allocation within an order document.
// Amount is always Liters × Rate, computed at issuance.
type PurchaseOrderEntry struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID uuid.UUID `gorm:"type:uuid;index;not null"`

	DoNo    string          `gorm:"type:varchar(30);index"`
	TruckNo string          `gorm:"type:varchar(20);index;not null"`
	Dest    string          `gorm:"type:varchar(60)"`
	Liters  int             `gorm:"not null"`
	Rate    decimal.Decimal `gorm:"type:decimal(10,3);not null"`
	Amount  decimal.Decimal `gorm:"type:decimal(14,2);not null"`

	// Cancellation metadata — checkpoint names which column the cancelled
	// liters were drawn against, for the cash-payment workflow.
	IsCancelled            bool `gorm:"not null;default:false;index"`
	CancelledAt            *time.Time
	CancellationReason     *string
	CancellationCheckpoint *string `gorm:"type:varchar(20)"`

	CreatedAt time.Time

	Order *PurchaseOrder `gorm:"foreignKey:OrderID"`
}

func (PurchaseOrderEntry) TableName() string { return "purchase_order_entries" }
