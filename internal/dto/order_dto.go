package dto

import "github.com/shopspring/decimal"

// ─── Requests ────────────────────────────────────────────────────────────────

// OrderLineRequest is one truck line on the order form. Liters and rate are
// editable by the clerk, so they arrive explicitly rather than being re-derived
// server-side; the duplicate guard re-checks them against persisted state.
type OrderLineRequest struct {
	TruckNo   string          `json:"truck_no" validate:"required"`
	DoNo      string          `json:"do_no"`
	Direction string          `json:"direction" validate:"required,oneof=going returning"`
	Dest      string          `json:"dest"`
	Liters    int             `json:"liters" validate:"required,min=1"`
	Rate      decimal.Decimal `json:"rate" validate:"required"`
	RowRef    string          `json:"row_ref"`
}

// CancelSelectionRequest marks one pre-existing order entry for cancellation
// under cash-payment mode. Applied best-effort after the new order commits.
type CancelSelectionRequest struct {
	EntryID    string `json:"entry_id" validate:"required,uuid"`
	Reason     string `json:"reason" validate:"required,min=3"`
	Checkpoint string `json:"checkpoint" validate:"omitempty,oneof=yard tanga_going mbeya_going tunduma_going tanga_return mbeya_return tunduma_return"`
}

type CreateOrderRequest struct {
	Station       string                   `json:"station" validate:"required"`
	PaymentMode   string                   `json:"payment_mode,omitempty" validate:"omitempty,oneof=account cash"`
	IssuedBy      string                   `json:"issued_by"`
	Lines         []OrderLineRequest       `json:"lines" validate:"required,min=1,dive"`
	Cancellations []CancelSelectionRequest `json:"cancellations" validate:"omitempty,dive"`
}

type CancelEntryRequest struct {
	Reason     string `json:"reason" validate:"required,min=3"`
	Checkpoint string `json:"checkpoint" validate:"omitempty,oneof=yard tanga_going mbeya_going tunduma_going tanga_return mbeya_return tunduma_return"`
}

type DuplicateCheckRequest struct {
	TruckNo        string  `json:"truck_no" validate:"required"`
	Station        string  `json:"station" validate:"required"`
	Liters         int     `json:"liters" validate:"required,min=1"`
	DoNo           string  `json:"do_no"`
	ExcludeOrderID *string `json:"exclude_order_id" validate:"omitempty,uuid"`
}

type OrderFilter struct {
	Date    string `form:"date"` // YYYY-MM-DD; empty = today
	Station string `form:"station"`
	Page    int    `form:"page,default=1" validate:"min=1"`
	Limit   int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Responses ───────────────────────────────────────────────────────────────

type OrderEntryResponse struct {
	ID          string          `json:"id"`
	OrderID     string          `json:"order_id"`
	OrderNo     int             `json:"order_no,omitempty"`
	DoNo        string          `json:"do_no"`
	TruckNo     string          `json:"truck_no"`
	Dest        string          `json:"dest"`
	Liters      int             `json:"liters"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
	IsCancelled bool            `json:"is_cancelled"`
}

// TopUpNotice surfaces a legitimate re-allocation at the same station with a
// different liter amount. Informational only — never blocks.
type TopUpNotice struct {
	TruckNo        string `json:"truck_no"`
	Station        string `json:"station"`
	ExistingLiters []int  `json:"existing_liters"`
	NewLiters      int    `json:"new_liters"`
	Message        string `json:"message"`
}

type OrderResponse struct {
	ID          string               `json:"id"`
	OrderNo     int                  `json:"order_no"`
	Station     string               `json:"station"`
	PaymentMode string               `json:"payment_mode"`
	IssuedBy    string               `json:"issued_by,omitempty"`
	Entries     []OrderEntryResponse `json:"entries"`
	CreatedAt   string               `json:"created_at"`

	// Populated only on creation.
	TopUps               []TopUpNotice `json:"top_ups,omitempty"`
	CancellationFailures []string      `json:"cancellation_failures,omitempty"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

type DuplicateCheckResponse struct {
	HasDuplicate      bool                 `json:"has_duplicate"`
	IsDifferentAmount bool                 `json:"is_different_amount"`
	Existing          []OrderEntryResponse `json:"existing"`
	Message           string               `json:"message,omitempty"`
}
