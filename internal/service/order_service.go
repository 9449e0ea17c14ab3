package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/dto"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/repository"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DuplicateCheck is the duplicate-allocation guard's verdict. An exact liter
// match is a hard duplicate; a different amount at the same station is a
// legitimate top-up, surfaced but never blocking.
type DuplicateCheck struct {
	HasDuplicate      bool
	IsDifferentAmount bool
	Existing          []model.PurchaseOrderEntry
}

// SubmissionBlockedError carries the per-line conflicts that stopped an order
// from being issued (exact duplicates and missing return DOs).
type SubmissionBlockedError struct {
	Conflicts []string
}

func (e *SubmissionBlockedError) Error() string {
	return fmt.Sprintf("order submission blocked: %s", strings.Join(e.Conflicts, "; "))
}

type OrderService interface {
	CheckDuplicate(ctx context.Context, truckNo, station string, liters int, doNo string, excludeOrderID *uuid.UUID) (*DuplicateCheck, error)
	CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	CancelEntry(ctx context.Context, orderID, entryID uuid.UUID, reason, checkpoint string) error
	ListOrders(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
}

type orderService struct {
	repo       repository.PurchaseOrderRepository
	dispatcher *worker.Dispatcher
}

func NewOrderService(repo repository.PurchaseOrderRepository, dispatcher *worker.Dispatcher) OrderService {
	return &orderService{repo: repo, dispatcher: dispatcher}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── CheckDuplicate ────────────────────────────────────────────────────────────

func (s *orderService) CheckDuplicate(ctx context.Context, truckNo, station string, liters int, doNo string, excludeOrderID *uuid.UUID) (*DuplicateCheck, error) {
	truckNo = strings.ToUpper(strings.TrimSpace(truckNo))

	entries, err := s.repo.FindEntries(ctx, truckNo, station, doNo, excludeOrderID)
	if err != nil {
		return nil, err
	}

	chk := &DuplicateCheck{Existing: entries}
	for _, e := range entries {
		if e.Liters == liters {
			chk.HasDuplicate = true
		} else {
			chk.IsDifferentAmount = true
		}
	}
	return chk, nil
}

// ── CreateOrder ───────────────────────────────────────────────────────────────
// Issues one LPO document:
//  1. Pre-flight per line: block on missing return DO (returning direction)
//     and on exact-liter duplicates against the latest persisted state.
//  2. BEGIN TX: nextval order number, create order + entries.
//  3. COMMIT.
//  4. Apply requested cancellations best-effort — failures are reported in
//     the response, never rolled back.
//  5. (async) dispatch order-issued notification.

func (s *orderService) CreateOrder(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	station := strings.ToUpper(strings.TrimSpace(req.Station))
	mode := req.PaymentMode
	if mode == "" {
		mode = model.PaymentAccount
	}

	var conflicts []string
	var topUps []dto.TopUpNotice

	for _, line := range req.Lines {
		truckNo := strings.ToUpper(strings.TrimSpace(line.TruckNo))

		if line.Direction == string(DirectionReturning) &&
			(strings.TrimSpace(line.DoNo) == "" || strings.EqualFold(strings.TrimSpace(line.DoNo), "NIL")) {
			conflicts = append(conflicts, fmt.Sprintf("truck %s: return DO is missing — returning allocation cannot be issued", truckNo))
			continue
		}

		// Cash orders settle against checkpoints, not prior LPO entries.
		if mode == model.PaymentCash {
			continue
		}

		chk, err := s.CheckDuplicate(ctx, truckNo, station, line.Liters, line.DoNo, nil)
		if err != nil {
			return nil, err
		}
		if chk.HasDuplicate {
			conflicts = append(conflicts, fmt.Sprintf("truck %s already has %d L at %s for DO %s (LPO #%d)",
				truckNo, line.Liters, station, line.DoNo, firstOrderNo(chk.Existing)))
			continue
		}
		if chk.IsDifferentAmount {
			existing := make([]int, 0, len(chk.Existing))
			for _, e := range chk.Existing {
				existing = append(existing, e.Liters)
			}
			topUps = append(topUps, dto.TopUpNotice{
				TruckNo:        truckNo,
				Station:        station,
				ExistingLiters: existing,
				NewLiters:      line.Liters,
				Message: fmt.Sprintf("truck %s topping up at %s: already drew %v L, now %d L",
					truckNo, station, existing, line.Liters),
			})
		}
	}

	if len(conflicts) > 0 {
		return nil, &SubmissionBlockedError{Conflicts: conflicts}
	}

	order := model.PurchaseOrder{
		Station:     station,
		PaymentMode: mode,
		IssuedBy:    req.IssuedBy,
	}
	for _, line := range req.Lines {
		liters := decimal.NewFromInt(int64(line.Liters))
		order.Entries = append(order.Entries, model.PurchaseOrderEntry{
			DoNo:    strings.TrimSpace(line.DoNo),
			TruckNo: strings.ToUpper(strings.TrimSpace(line.TruckNo)),
			Dest:    line.Dest,
			Liters:  line.Liters,
			Rate:    line.Rate,
			Amount:  line.Rate.Mul(liters),
		})
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		orderNo, err := s.repo.NextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}
		order.OrderNo = orderNo
		return s.repo.Create(ctx, tx, &order)
	})
	if txErr != nil {
		return nil, txErr
	}

	// Cancellations are fire-and-continue: the new order stands even when a
	// cancellation sub-step fails, and the failure is reported back.
	var cancelFailures []string
	for _, c := range req.Cancellations {
		entryID, err := uuid.Parse(c.EntryID)
		if err != nil {
			cancelFailures = append(cancelFailures, fmt.Sprintf("entry %s: invalid id", c.EntryID))
			continue
		}
		if err := s.repo.CancelEntry(ctx, entryID, c.Reason, c.Checkpoint); err != nil {
			log.Warn().Err(err).Str("entry_id", c.EntryID).Int("order_no", order.OrderNo).
				Msg("cancellation sub-step failed — order stands")
			cancelFailures = append(cancelFailures, fmt.Sprintf("entry %s: %v", c.EntryID, err))
		}
	}

	// Async notification — best-effort, fire & forget
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueOrderNotice(ctx, worker.OrderNoticePayload{
			OrderID: order.ID.String(),
			OrderNo: order.OrderNo,
			Station: order.Station,
			Trucks:  len(order.Entries),
		})
	}

	resp := orderToResponse(&order)
	resp.TopUps = topUps
	resp.CancellationFailures = cancelFailures
	return resp, nil
}

// ── CancelEntry ───────────────────────────────────────────────────────────────

func (s *orderService) CancelEntry(ctx context.Context, orderID, entryID uuid.UUID, reason, checkpoint string) error {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return fmt.Errorf("order %s: %w", orderID, err)
	}
	var found *model.PurchaseOrderEntry
	for i := range order.Entries {
		if order.Entries[i].ID == entryID {
			found = &order.Entries[i]
			break
		}
	}
	if found == nil {
		return fmt.Errorf("entry %s does not belong to LPO #%d", entryID, order.OrderNo)
	}
	if found.IsCancelled {
		return fmt.Errorf("entry for truck %s on LPO #%d is already cancelled", found.TruckNo, order.OrderNo)
	}
	return s.repo.CancelEntry(ctx, entryID, reason, checkpoint)
}

// ── Listing ───────────────────────────────────────────────────────────────────

func (s *orderService) ListOrders(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		items = append(items, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("order %s: %w", id, err)
	}
	return orderToResponse(order), nil
}

// ── mapping ───────────────────────────────────────────────────────────────────

func orderToResponse(o *model.PurchaseOrder) *dto.OrderResponse {
	entries := make([]dto.OrderEntryResponse, 0, len(o.Entries))
	for _, e := range o.Entries {
		entries = append(entries, dto.OrderEntryResponse{
			ID:          e.ID.String(),
			OrderID:     e.OrderID.String(),
			DoNo:        e.DoNo,
			TruckNo:     e.TruckNo,
			Dest:        e.Dest,
			Liters:      e.Liters,
			Rate:        e.Rate,
			Amount:      e.Amount,
			IsCancelled: e.IsCancelled,
		})
	}
	return &dto.OrderResponse{
		ID:          o.ID.String(),
		OrderNo:     o.OrderNo,
		Station:     o.Station,
		PaymentMode: o.PaymentMode,
		IssuedBy:    o.IssuedBy,
		Entries:     entries,
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}

func firstOrderNo(entries []model.PurchaseOrderEntry) int {
	for _, e := range entries {
		if e.Order != nil {
			return e.Order.OrderNo
		}
	}
	return 0
}
