package handler

import (
	"net/http"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/apierror"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/dto"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type StationsHandler struct{ svc service.StationService }

func NewStationsHandler(svc service.StationService) *StationsHandler {
	return &StationsHandler{svc: svc}
}

// List godoc
// @Summary      List station configurations
// @Tags         stations
// @Produce      json
// @Security     BearerAuth
// @Param        all query bool false "Include deactivated stations"
// @Success      200 {array} dto.StationResponse
// @Router       /v1/stations [get]
func (h *StationsHandler) List(c *gin.Context) {
	activeOnly := c.Query("all") != "true"
	stations, err := h.svc.List(c.Request.Context(), activeOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list stations"))
		return
	}
	out := make([]dto.StationResponse, 0, len(stations))
	for i := range stations {
		out = append(out, stationResponse(&stations[i]))
	}
	c.JSON(http.StatusOK, out)
}

// Create godoc
// @Summary      Create a station configuration
// @Description  Registers liters/rate defaults and optional allocation formulas for a station. Formulas are validated before the row is written.
// @Tags         stations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateStationRequest true "Station configuration"
// @Success      201 {object} dto.StationResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stations [post]
func (h *StationsHandler) Create(c *gin.Context) {
	var req dto.CreateStationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	s := &model.StationConfig{
		StationName:            req.StationName,
		DefaultLitersGoing:     req.DefaultLitersGoing,
		DefaultLitersReturning: req.DefaultLitersReturning,
		DefaultRate:            req.DefaultRate,
		FormulaGoing:           req.FormulaGoing,
		FormulaReturning:       req.FormulaReturning,
		IsActive:               true,
	}
	if err := h.svc.Create(c.Request.Context(), s); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, stationResponse(s))
}

// Update godoc
// @Summary      Update a station configuration
// @Description  Patches defaults and formulas. Pass an empty string to clear a formula. The station resolve cache is invalidated.
// @Tags         stations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                   true "Station UUID"
// @Param        body body dto.UpdateStationRequest true "Fields to change"
// @Success      200 {object} dto.StationResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stations/{id} [put]
func (h *StationsHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid station id"))
		return
	}
	var req dto.UpdateStationRequest
	if !bindAndValidate(c, &req) {
		return
	}
	s, err := h.svc.Update(c.Request.Context(), id, func(s *model.StationConfig) {
		if req.DefaultLitersGoing != nil {
			s.DefaultLitersGoing = *req.DefaultLitersGoing
		}
		if req.DefaultLitersReturning != nil {
			s.DefaultLitersReturning = *req.DefaultLitersReturning
		}
		if req.DefaultRate != nil {
			s.DefaultRate = *req.DefaultRate
		}
		if req.FormulaGoing != nil {
			s.FormulaGoing = normalizeFormula(req.FormulaGoing)
		}
		if req.FormulaReturning != nil {
			s.FormulaReturning = normalizeFormula(req.FormulaReturning)
		}
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, stationResponse(s))
}

// Deactivate godoc
// @Summary      Deactivate a station configuration
// @Description  Soft-disables the station so resolution falls back to the legacy table or the conservative default. Idempotent.
// @Tags         stations
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Station UUID"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stations/{id} [delete]
func (h *StationsHandler) Deactivate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid station id"))
		return
	}
	if err := h.svc.Deactivate(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}

// Resolve godoc
// @Summary      Resolve a station allocation
// @Description  Runs the full resolution chain (config formula, config default, legacy table, fallback) for a station/direction/destination and returns the liters, rate, and currency it would allocate.
// @Tags         stations
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ResolveRequest true "Resolution inputs"
// @Success      200 {object} dto.ResolveResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/stations/resolve [post]
func (h *StationsHandler) Resolve(c *gin.Context) {
	var req dto.ResolveRequest
	if !bindAndValidate(c, &req) {
		return
	}
	res, err := h.svc.Resolve(c.Request.Context(), service.ResolveInput{
		Station:     req.Station,
		Direction:   service.Direction(req.Direction),
		Destination: req.Destination,
		TotalLiters: req.TotalLiters,
		ExtraLiters: req.ExtraLiters,
		Balance:     req.Balance,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Resolution failed"))
		return
	}
	c.JSON(http.StatusOK, dto.ResolveResponse{
		Liters:         res.Liters,
		Rate:           res.Rate,
		Currency:       string(res.Currency),
		Source:         res.Source,
		FormulaStatus:  string(res.FormulaStatus),
		FormulaMessage: res.FormulaMessage,
	})
}

func stationResponse(s *model.StationConfig) dto.StationResponse {
	return dto.StationResponse{
		ID:                     s.ID.String(),
		StationName:            s.StationName,
		DefaultLitersGoing:     s.DefaultLitersGoing,
		DefaultLitersReturning: s.DefaultLitersReturning,
		DefaultRate:            s.DefaultRate,
		FormulaGoing:           s.FormulaGoing,
		FormulaReturning:       s.FormulaReturning,
		IsActive:               s.IsActive,
		Currency:               string(service.StationCurrency(s.StationName)),
	}
}

// normalizeFormula treats an explicit empty string as "clear the formula".
func normalizeFormula(f *string) *string {
	if f == nil || *f == "" {
		return nil
	}
	return f
}
