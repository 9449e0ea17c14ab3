package model

import (
	"time"

	"github.com/google/uuid"
)

// DeliveryOrder maps a DO number to its truck and destination. The DO-first
// lookup path reads this table before delegating to journey resolution; the
// import endpoint writes it together with the fuel record.
type DeliveryOrder struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DoNo        string    `gorm:"type:varchar(30);uniqueIndex;not null"`
	TruckNo     string    `gorm:"type:varchar(20);index;not null"`
	Destination string    `gorm:"type:varchar(60)"`

	CreatedAt time.Time
}

func (DeliveryOrder) TableName() string { return "delivery_orders" }
