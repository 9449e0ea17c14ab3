package handler

import (
	"net/http"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/apierror"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/dto"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type FuelRecordsHandler struct{ svc service.FuelRecordService }

func NewFuelRecordsHandler(svc service.FuelRecordService) *FuelRecordsHandler {
	return &FuelRecordsHandler{svc: svc}
}

// ImportDO godoc
// @Summary      Register a delivery order
// @Description  Creates the fuel record for a DO. When the route's total liters or the truck's extra allowance are not configured yet the record is created locked; when the truck already has a journey underway it is queued behind it.
// @Tags         fuel-records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ImportDORequest true "Delivery order"
// @Success      201 {object} dto.FuelRecordView
// @Failure      400 {object} apierror.APIError
// @Router       /v1/fuel-records [post]
func (h *FuelRecordsHandler) ImportDO(c *gin.Context) {
	var req dto.ImportDORequest
	if !bindAndValidate(c, &req) {
		return
	}
	rec, err := h.svc.ImportDO(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, fuelRecordView(rec))
}

// ListByTruck godoc
// @Summary      List a truck's fuel records
// @Description  Returns the truck's live fuel records, newest first.
// @Tags         fuel-records
// @Produce      json
// @Security     BearerAuth
// @Param        truck_no path string true "Truck registration number"
// @Success      200 {object} dto.FuelRecordListResponse
// @Router       /v1/fuel-records/truck/{truck_no} [get]
func (h *FuelRecordsHandler) ListByTruck(c *gin.Context) {
	recs, err := h.svc.ListByTruck(c.Request.Context(), c.Param("truck_no"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list fuel records"))
		return
	}
	resp := dto.FuelRecordListResponse{Total: len(recs)}
	for i := range recs {
		resp.Data = append(resp.Data, *fuelRecordView(&recs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// FillCheckpoint godoc
// @Summary      Record fuel drawn at a checkpoint
// @Description  Writes the liters drawn into the named checkpoint column and recomputes the balance. Filling the terminal return checkpoint completes the journey and promotes the next queued one.
// @Tags         fuel-records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                       true "Fuel record UUID"
// @Param        body body dto.CheckpointUpdateRequest true "Checkpoint and liters"
// @Success      200 {object} dto.FuelRecordView
// @Failure      400 {object} apierror.APIError
// @Router       /v1/fuel-records/{id}/checkpoint [put]
func (h *FuelRecordsHandler) FillCheckpoint(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid fuel record id"))
		return
	}
	var req dto.CheckpointUpdateRequest
	if !bindAndValidate(c, &req) {
		return
	}
	rec, err := h.svc.FillCheckpoint(c.Request.Context(), id, req.Checkpoint, req.Liters)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusOK, fuelRecordView(rec))
}

// Cancel godoc
// @Summary      Cancel a fuel record
// @Description  Soft-cancels the record with a reason. Cancelled records stop appearing in journey resolution and duplicate checks but remain queryable for audit.
// @Tags         fuel-records
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                      true "Fuel record UUID"
// @Param        body body dto.CancelFuelRecordRequest true "Cancellation reason"
// @Success      204
// @Failure      400 {object} apierror.APIError
// @Router       /v1/fuel-records/{id} [delete]
func (h *FuelRecordsHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid fuel record id"))
		return
	}
	var req dto.CancelFuelRecordRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.Cancel(c.Request.Context(), id, req.Reason); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
