package handler

import (
	"net/http"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/apierror"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/dto"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type LookupHandler struct{ svc service.JourneyService }

func NewLookupHandler(svc service.JourneyService) *LookupHandler { return &LookupHandler{svc: svc} }

// ByTruck godoc
// @Summary      Resolve a truck's current journey
// @Description  Finds the journey to fuel for a truck (locked > active > queued > completed precedence over a rolling month window) and, when a station is given, pre-computes the fuel allocation for the row.
// @Tags         lookup
// @Produce      json
// @Security     BearerAuth
// @Param        truck_no  path  string true  "Truck registration number"
// @Param        station   query string false "Station issuing the order"
// @Param        direction query string false "going | returning (default going)"
// @Param        row_ref   query string false "Opaque row correlation id, echoed back"
// @Success      200 {object} dto.LookupResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/lookup/truck/{truck_no} [get]
func (h *LookupHandler) ByTruck(c *gin.Context) {
	var q dto.LookupQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	res, err := h.svc.FindByTruck(c.Request.Context(), c.Param("truck_no"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Lookup failed"))
		return
	}
	c.JSON(http.StatusOK, h.respond(c, res, q))
}

// ByDO godoc
// @Summary      Resolve a journey by delivery order number
// @Description  Maps a DO number to its truck and resolves the journey exactly as the truck lookup does.
// @Tags         lookup
// @Produce      json
// @Security     BearerAuth
// @Param        do_no     path  string true  "Delivery order number"
// @Param        station   query string false "Station issuing the order"
// @Param        direction query string false "going | returning (default going)"
// @Param        row_ref   query string false "Opaque row correlation id, echoed back"
// @Success      200 {object} dto.LookupResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/lookup/do/{do_no} [get]
func (h *LookupHandler) ByDO(c *gin.Context) {
	var q dto.LookupQuery
	if !bindQueryAndValidate(c, &q) {
		return
	}
	res, err := h.svc.FindByDO(c.Request.Context(), c.Param("do_no"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Lookup failed"))
		return
	}
	c.JSON(http.StatusOK, h.respond(c, res, q))
}

// Switch godoc
// @Summary      Switch to a different candidate journey
// @Description  Re-selects the active or a specific queued journey for the truck and recomputes the allocation. Used when the clerk navigates between concurrent journeys.
// @Tags         lookup
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        truck_no path string             true "Truck registration number"
// @Param        body     body dto.SwitchRequest true "Candidate slot to select"
// @Success      200 {object} dto.LookupResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/lookup/truck/{truck_no}/switch [post]
func (h *LookupHandler) Switch(c *gin.Context) {
	var req dto.SwitchRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.FindByTruck(c.Request.Context(), c.Param("truck_no"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Lookup failed"))
		return
	}
	ov := &service.SelectOverride{Slot: req.Slot}
	if req.QueuedIndex != nil {
		ov.QueuedIndex = *req.QueuedIndex
	}
	selected, err := h.svc.Select(res, ov)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	res.Selected = selected
	res.Status = service.StatusOK
	res.Message = ""

	q := dto.LookupQuery{RowRef: req.RowRef, Station: req.Station, Direction: req.Direction}
	c.JSON(http.StatusOK, h.respond(c, res, q))
}

// respond maps a journey resolution (plus the optional allocation for the
// requested station) into the wire shape.
func (h *LookupHandler) respond(c *gin.Context, res *service.JourneyResolution, q dto.LookupQuery) *dto.LookupResponse {
	out := &dto.LookupResponse{
		RowRef:   q.RowRef,
		TruckNo:  res.TruckNo,
		Status:   string(res.Status),
		Message:  res.Message,
		Selected: fuelRecordView(res.Selected),
		Candidates: dto.CandidatesView{
			Active:     fuelRecordView(res.Candidates.Active),
			MostRecent: fuelRecordView(res.Candidates.MostRecent),
		},
	}
	for i := range res.Candidates.Queued {
		out.Candidates.Queued = append(out.Candidates.Queued, *fuelRecordView(&res.Candidates.Queued[i]))
	}

	// Allocation is only meaningful for a fuellable selection at a known
	// station. Locked journeys are surfaced but never priced.
	if q.Station == "" || res.Selected == nil || res.Status != service.StatusOK {
		return out
	}

	dir := service.DirectionGoing
	if q.Direction == string(service.DirectionReturning) {
		dir = service.DirectionReturning
	}
	alloc, err := h.svc.Allocate(c.Request.Context(), res.Selected, q.Station, dir)
	if err != nil {
		log.Warn().Err(err).Str("truck_no", res.TruckNo).Str("station", q.Station).Msg("allocation failed during lookup")
		return out
	}
	out.Allocation = &dto.AllocationView{
		DoNo:            alloc.DoNo,
		Dest:            alloc.Dest,
		Direction:       string(alloc.Direction),
		Liters:          alloc.Liters,
		Rate:            alloc.Rate,
		Amount:          alloc.Amount,
		Currency:        string(alloc.Currency),
		Source:          alloc.Source,
		FormulaStatus:   string(alloc.FormulaStatus),
		FormulaMessage:  alloc.FormulaMessage,
		ReturnDoMissing: alloc.ReturnDoMissing,
	}
	return out
}
