package dto

import "github.com/shopspring/decimal"

type CreateStationRequest struct {
	StationName            string          `json:"station_name" validate:"required,min=2,max=60"`
	DefaultLitersGoing     int             `json:"default_liters_going" validate:"min=0"`
	DefaultLitersReturning int             `json:"default_liters_returning" validate:"min=0"`
	DefaultRate            decimal.Decimal `json:"default_rate" validate:"required"`
	FormulaGoing           *string         `json:"formula_going"`
	FormulaReturning       *string         `json:"formula_returning"`
}

type UpdateStationRequest struct {
	DefaultLitersGoing     *int             `json:"default_liters_going" validate:"omitempty,min=0"`
	DefaultLitersReturning *int             `json:"default_liters_returning" validate:"omitempty,min=0"`
	DefaultRate            *decimal.Decimal `json:"default_rate"`
	FormulaGoing           *string          `json:"formula_going"`
	FormulaReturning       *string          `json:"formula_returning"`
}

type StationResponse struct {
	ID                     string          `json:"id"`
	StationName            string          `json:"station_name"`
	DefaultLitersGoing     int             `json:"default_liters_going"`
	DefaultLitersReturning int             `json:"default_liters_returning"`
	DefaultRate            decimal.Decimal `json:"default_rate"`
	FormulaGoing           *string         `json:"formula_going"`
	FormulaReturning       *string         `json:"formula_returning"`
	IsActive               bool            `json:"is_active"`
	Currency               string          `json:"currency"`
}

// ResolveRequest asks for the (liters, rate) pair a station would allocate,
// optionally with the truck's numeric context for formula evaluation.
type ResolveRequest struct {
	Station     string `json:"station" validate:"required"`
	Direction   string `json:"direction" validate:"required,oneof=going returning"`
	Destination string `json:"destination"`
	TotalLiters *int   `json:"total_liters"`
	ExtraLiters *int   `json:"extra_liters"`
	Balance     *int   `json:"balance"`
}

type ResolveResponse struct {
	Liters         int             `json:"liters"`
	Rate           decimal.Decimal `json:"rate"`
	Currency       string          `json:"currency"`
	Source         string          `json:"source"`
	FormulaStatus  string          `json:"formula_status,omitempty"`
	FormulaMessage string          `json:"formula_message,omitempty"`
}
