package dto

// ImportDORequest creates a fuel record (and its delivery-order mapping) from
// an entered or imported DO. TotalLts/Extra may be absent at import time —
// the record is then created locked, pending configuration.
type ImportDORequest struct {
	DoNo     string  `json:"do_no" validate:"required"`
	TruckNo  string  `json:"truck_no" validate:"required"`
	ReturnDo *string `json:"return_do"`
	Start    string  `json:"start"`
	From     string  `json:"from" validate:"required"`
	To       string  `json:"to" validate:"required"`
	TotalLts *int    `json:"total_lts" validate:"omitempty,min=1"`
	Extra    *int    `json:"extra" validate:"omitempty,min=0"`
}

// CheckpointUpdateRequest fills one checkpoint column as the journey
// progresses. Balance is recomputed server-side.
type CheckpointUpdateRequest struct {
	Checkpoint string `json:"checkpoint" validate:"required,oneof=yard tanga_going mbeya_going tunduma_going tanga_return mbeya_return tunduma_return"`
	Liters     int    `json:"liters" validate:"required,min=1"`
}

type CancelFuelRecordRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

type FuelRecordListResponse struct {
	Data  []FuelRecordView `json:"data"`
	Total int              `json:"total"`
}
