package handler

import (
	"errors"
	"net/http"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/apierror"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/dto"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/middleware"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrdersHandler struct{ svc service.OrderService }

func NewOrdersHandler(svc service.OrderService) *OrdersHandler { return &OrdersHandler{svc: svc} }

// Create godoc
// @Summary      Issue a purchase order
// @Description  Issues an LPO for one station covering one or more truck lines. Lines with an exact duplicate allocation or a missing return DO block the whole submission (422); different-liter repeats at the same station are flagged as top-ups but go through. Cash mode skips the duplicate guard and may carry entry cancellations, applied best-effort after the order commits.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CreateOrderRequest true "Order lines"
// @Success      201 {object} dto.OrderResponse
// @Failure      400 {object} apierror.APIError
// @Failure      422 {object} apierror.BlockingError
// @Router       /v1/orders [post]
func (h *OrdersHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.IssuedBy == "" {
		if claims := middleware.GetClaims(c); claims != nil {
			req.IssuedBy = claims.Username
		}
	}

	resp, err := h.svc.CreateOrder(c.Request.Context(), req)
	if err != nil {
		var blocked *service.SubmissionBlockedError
		if errors.As(err, &blocked) {
			c.JSON(http.StatusUnprocessableEntity,
				apierror.NewBlocking("Order submission blocked", blocked.Conflicts))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// CheckDuplicate godoc
// @Summary      Check a line for duplicate allocation
// @Description  Pre-flight check the order form runs per row: reports an exact-liter duplicate at the same station (blocks) or a different-liter repeat (top-up warning).
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.DuplicateCheckRequest true "Line to check"
// @Success      200 {object} dto.DuplicateCheckResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/orders/check-duplicate [post]
func (h *OrdersHandler) CheckDuplicate(c *gin.Context) {
	var req dto.DuplicateCheckRequest
	if !bindAndValidate(c, &req) {
		return
	}
	var exclude *uuid.UUID
	if req.ExcludeOrderID != nil {
		id, err := uuid.Parse(*req.ExcludeOrderID)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("Invalid exclude_order_id"))
			return
		}
		exclude = &id
	}

	check, err := h.svc.CheckDuplicate(c.Request.Context(), req.TruckNo, req.Station, req.Liters, req.DoNo, exclude)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Duplicate check failed"))
		return
	}

	resp := dto.DuplicateCheckResponse{
		HasDuplicate:      check.HasDuplicate,
		IsDifferentAmount: check.IsDifferentAmount,
	}
	for i := range check.Existing {
		e := &check.Existing[i]
		entry := dto.OrderEntryResponse{
			ID:          e.ID.String(),
			OrderID:     e.OrderID.String(),
			DoNo:        e.DoNo,
			TruckNo:     e.TruckNo,
			Dest:        e.Dest,
			Liters:      e.Liters,
			Rate:        e.Rate,
			Amount:      e.Amount,
			IsCancelled: e.IsCancelled,
		}
		if e.Order != nil {
			entry.OrderNo = e.Order.OrderNo
		}
		resp.Existing = append(resp.Existing, entry)
	}
	switch {
	case check.HasDuplicate:
		resp.Message = "Truck already has this exact allocation at this station on an open order"
	case check.IsDifferentAmount:
		resp.Message = "Truck was already allocated a different amount at this station (possible top-up)"
	}
	c.JSON(http.StatusOK, resp)
}

// List godoc
// @Summary      List purchase orders
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        date    query string false "YYYY-MM-DD (default: today)"
// @Param        station query string false "Filter by station"
// @Param        page    query int    false "Page (default 1)"
// @Param        limit   query int    false "Rows per page (default 50)"
// @Success      200 {object} dto.OrderListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /v1/orders [get]
func (h *OrdersHandler) List(c *gin.Context) {
	var filter dto.OrderFilter
	if !bindQueryAndValidate(c, &filter) {
		return
	}
	resp, err := h.svc.ListOrders(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to list orders"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Fetch one purchase order with its entries
// @Tags         orders
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Order UUID"
// @Success      200 {object} dto.OrderResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/orders/{id} [get]
func (h *OrdersHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid order id"))
		return
	}
	resp, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Order not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Failed to fetch order"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelEntry godoc
// @Summary      Cancel one entry on an order
// @Description  Marks a single truck line cancelled with a reason and, optionally, the checkpoint the truck had reached. The entry stays on the order for the audit trail and stops counting toward duplicate checks.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path string                 true "Order UUID"
// @Param        entry_id path string                 true "Entry UUID"
// @Param        body     body dto.CancelEntryRequest true "Cancellation reason"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /v1/orders/{id}/entries/{entry_id} [delete]
func (h *OrdersHandler) CancelEntry(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid order id"))
		return
	}
	entryID, err := uuid.Parse(c.Param("entry_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid entry id"))
		return
	}
	var req dto.CancelEntryRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.svc.CancelEntry(c.Request.Context(), orderID, entryID, req.Reason, req.Checkpoint); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, apierror.New("Entry not found"))
			return
		}
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	c.Status(http.StatusNoContent)
}
