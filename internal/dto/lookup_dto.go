package dto

import "github.com/shopspring/decimal"

// ─── Lookup ──────────────────────────────────────────────────────────────────

// LookupQuery is bound from the query string of the truck / DO lookup
// endpoints. RowRef is an opaque correlation id: the order form fires one
// lookup per row and needs to discard responses whose row has since changed,
// so every response echoes the RowRef it was issued with.
type LookupQuery struct {
	RowRef    string `form:"row_ref"`
	Station   string `form:"station"`
	Direction string `form:"direction,default=going" validate:"omitempty,oneof=going returning"`
}

// FuelRecordView is the API shape of a fuel record inside lookup responses.
type FuelRecordView struct {
	ID              string         `json:"id"`
	TruckNo         string         `json:"truck_no"`
	GoingDo         string         `json:"going_do"`
	ReturnDo        *string        `json:"return_do"`
	Start           string         `json:"start"`
	From            string         `json:"from"`
	To              string         `json:"to"`
	OriginalGoingTo string         `json:"original_going_to"`
	TotalLts        *int           `json:"total_lts"`
	Extra           int            `json:"extra"`
	Balance         int            `json:"balance"`
	Checkpoints     map[string]int `json:"checkpoints"`
	JourneyStatus   *string        `json:"journey_status"`
	QueueOrder      int            `json:"queue_order"`
	IsLocked        bool           `json:"is_locked"`
	PendingReason   *string        `json:"pending_config_reason"`
	CreatedAt       string         `json:"created_at"`
}

// AllocationView is the assembled line item for the selected journey at the
// requested station: what the order form pre-fills.
type AllocationView struct {
	DoNo            string          `json:"do_no"`
	Dest            string          `json:"dest"`
	Direction       string          `json:"direction"`
	Liters          int             `json:"liters"`
	Rate            decimal.Decimal `json:"rate"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Source          string          `json:"source"`
	FormulaStatus   string          `json:"formula_status,omitempty"`
	FormulaMessage  string          `json:"formula_message,omitempty"`
	ReturnDoMissing bool            `json:"return_do_missing"`
}

// CandidatesView keeps the full candidate set so the clerk can navigate
// between concurrent journeys manually.
type CandidatesView struct {
	Active     *FuelRecordView  `json:"active"`
	Queued     []FuelRecordView `json:"queued"`
	MostRecent *FuelRecordView  `json:"most_recent"`
}

type LookupResponse struct {
	RowRef     string          `json:"row_ref,omitempty"`
	TruckNo    string          `json:"truck_no"`
	Status     string          `json:"status"`
	Message    string          `json:"message,omitempty"`
	Selected   *FuelRecordView `json:"selected"`
	Candidates CandidatesView  `json:"candidates"`
	Allocation *AllocationView `json:"allocation,omitempty"`
}

// SwitchRequest selects a different candidate journey for a truck (the
// "switch journey" action on the order form) and recomputes the allocation.
type SwitchRequest struct {
	RowRef      string `json:"row_ref"`
	Slot        string `json:"slot" validate:"required,oneof=active queued"`
	QueuedIndex *int   `json:"queued_index" validate:"omitempty,min=0"`
	Station     string `json:"station"`
	Direction   string `json:"direction" validate:"omitempty,oneof=going returning"`
}
