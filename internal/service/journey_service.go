package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/repository"

	"github.com/shopspring/decimal"
)

// LookupStatus classifies the outcome of a journey lookup. Only StatusOK and
// StatusLocked carry a selected journey the clerk can allocate against; the
// rest are recoverable negative results — the clerk may still fill the row by
// hand.
type LookupStatus string

const (
	StatusOK               LookupStatus = "ok"
	StatusLocked           LookupStatus = "locked"
	StatusNotFound         LookupStatus = "not_found"
	StatusNoActiveRecord   LookupStatus = "no_active_record"
	StatusJourneyCompleted LookupStatus = "journey_completed"
)

// Candidates is the full disambiguation set, retained so the clerk can
// navigate between concurrent journeys manually.
type Candidates struct {
	Active     *model.FuelRecord
	Queued     []model.FuelRecord
	MostRecent *model.FuelRecord
}

type JourneyResolution struct {
	TruckNo    string
	Status     LookupStatus
	Message    string
	Selected   *model.FuelRecord
	Candidates Candidates
}

// SelectOverride requests a specific candidate slot instead of the default
// precedence — the interactive "switch journey" action.
type SelectOverride struct {
	Slot        string // "active" | "queued"
	QueuedIndex int
}

// Leg is the direction-dependent view of a journey: which DO number applies
// and which destination the allocation is for.
type Leg struct {
	DoNo            string
	Dest            string
	ReturnDoMissing bool
}

// Allocation is the assembled line item for one journey at one station —
// what the purchase-order form pre-fills.
type Allocation struct {
	Leg
	Direction      Direction
	Liters         int
	Rate           decimal.Decimal
	Amount         decimal.Decimal
	Currency       Currency
	Source         string
	FormulaStatus  FormulaStatus
	FormulaMessage string
}

type JourneyService interface {
	FindByTruck(ctx context.Context, truckNo string) (*JourneyResolution, error)
	// FindByDO maps a DO number to its truck via the delivery-order store
	// (falling back to the fuel records themselves) and then delegates to
	// FindByTruck.
	FindByDO(ctx context.Context, doNo string) (*JourneyResolution, error)
	Select(res *JourneyResolution, ov *SelectOverride) (*model.FuelRecord, error)
	Allocate(ctx context.Context, rec *model.FuelRecord, station string, dir Direction) (*Allocation, error)
}

type journeyService struct {
	fuel         repository.FuelRecordRepository
	delivery     repository.DeliveryOrderRepository
	stations     StationService
	windowMonths int
	fetchLimit   int
	now          func() time.Time
}

func NewJourneyService(fuel repository.FuelRecordRepository, delivery repository.DeliveryOrderRepository, stations StationService, windowMonths, fetchLimit int) JourneyService {
	if windowMonths < 1 {
		windowMonths = 4
	}
	if fetchLimit < 1 {
		fetchLimit = 50
	}
	return &journeyService{
		fuel:         fuel,
		delivery:     delivery,
		stations:     stations,
		windowMonths: windowMonths,
		fetchLimit:   fetchLimit,
		now:          time.Now,
	}
}

// ── FindByTruck ───────────────────────────────────────────────────────────────

func (s *journeyService) FindByTruck(ctx context.Context, truckNo string) (*JourneyResolution, error) {
	truckNo = strings.ToUpper(strings.TrimSpace(truckNo))
	res := &JourneyResolution{TruckNo: truckNo}

	recs, err := s.fuel.FindByTruck(ctx, truckNo, s.fetchLimit)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		res.Status = StatusNotFound
		res.Message = fmt.Sprintf("no fuel records for truck %s", truckNo)
		return res, nil
	}

	res.Candidates.MostRecent = &recs[0]

	// A locked record bypasses all other disambiguation: it is waiting on
	// admin configuration and must never be mistaken for a completed trip.
	for i := range recs {
		if recs[i].IsLocked {
			res.Status = StatusLocked
			res.Selected = &recs[i]
			res.Message = lockedMessage(&recs[i])
			return res, nil
		}
	}

	// Anchor the walk at the first of the current month: AddDate from a
	// month-end date normalizes the overflow (Mar 31 minus one month lands
	// in March again) and would skip whole months.
	now := s.now()
	anchor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	// Walk the rolling window month by month for an active journey; the
	// first month with a hit wins. Records arrive newest-first, so within a
	// month the first match is the most recent.
	for m := 0; m < s.windowMonths && res.Candidates.Active == nil; m++ {
		target := anchor.AddDate(0, -m, 0)
		for i := range recs {
			if sameMonth(recs[i].CreatedAt, target) && Classify(&recs[i]) == StateActive {
				res.Candidates.Active = &recs[i]
				break
			}
		}
	}

	// Same walk for queued journeys; within the winning month, queue order
	// decides. Later months are appended after, so the navigation list keeps
	// the precedence the walk established.
	for m := 0; m < s.windowMonths; m++ {
		target := anchor.AddDate(0, -m, 0)
		var month []model.FuelRecord
		for i := range recs {
			if sameMonth(recs[i].CreatedAt, target) && Classify(&recs[i]) == StateQueued {
				month = append(month, recs[i])
			}
		}
		sort.SliceStable(month, func(a, b int) bool {
			return month[a].QueueOrder < month[b].QueueOrder
		})
		res.Candidates.Queued = append(res.Candidates.Queued, month...)
	}

	switch {
	case res.Candidates.Active != nil:
		res.Status = StatusOK
		res.Selected = res.Candidates.Active
	case len(res.Candidates.Queued) > 0:
		res.Status = StatusOK
		res.Selected = &res.Candidates.Queued[0]
		res.Message = fmt.Sprintf("no active journey in the last %d months; queued journey selected", s.windowMonths)
	case Classify(res.Candidates.MostRecent) == StateCompleted:
		res.Status = StatusJourneyCompleted
		res.Selected = res.Candidates.MostRecent
		res.Message = fmt.Sprintf("latest journey for %s is completed (DO %s); fuel may be entered manually",
			truckNo, res.Candidates.MostRecent.GoingDo)
	default:
		res.Status = StatusNoActiveRecord
		res.Message = fmt.Sprintf("records exist for %s but none are active or queued within the last %d months",
			truckNo, s.windowMonths)
	}
	return res, nil
}

func (s *journeyService) FindByDO(ctx context.Context, doNo string) (*JourneyResolution, error) {
	doNo = strings.TrimSpace(doNo)

	if do, err := s.delivery.FindByDoNo(ctx, doNo); err == nil {
		return s.FindByTruck(ctx, do.TruckNo)
	}
	// Legacy records predate the delivery-order table; match the fuel
	// records directly on either leg's DO.
	if rec, err := s.fuel.FindByDo(ctx, doNo); err == nil {
		return s.FindByTruck(ctx, rec.TruckNo)
	}
	return &JourneyResolution{
		Status:  StatusNotFound,
		Message: fmt.Sprintf("no delivery order or fuel record matches DO %s", doNo),
	}, nil
}

// ── Select ────────────────────────────────────────────────────────────────────

// Select applies the default precedence (locked > active > queued > most
// recent completed), or the explicit override when the clerk navigates to a
// specific candidate.
func (s *journeyService) Select(res *JourneyResolution, ov *SelectOverride) (*model.FuelRecord, error) {
	if ov == nil {
		if res.Selected == nil {
			return nil, fmt.Errorf("no journey to select for truck %s", res.TruckNo)
		}
		return res.Selected, nil
	}
	switch ov.Slot {
	case "active":
		if res.Candidates.Active == nil {
			return nil, fmt.Errorf("truck %s has no active journey", res.TruckNo)
		}
		return res.Candidates.Active, nil
	case "queued":
		if ov.QueuedIndex < 0 || ov.QueuedIndex >= len(res.Candidates.Queued) {
			return nil, fmt.Errorf("truck %s has no queued journey at position %d", res.TruckNo, ov.QueuedIndex)
		}
		return &res.Candidates.Queued[ov.QueuedIndex], nil
	}
	return nil, fmt.Errorf("unknown journey slot %q", ov.Slot)
}

// ── Allocation ────────────────────────────────────────────────────────────────

// LegFor derives the direction-dependent DO number and destination. Going
// uses the original going destination even when an export DO has rewritten
// To; returning with an absent or "NIL" return DO flags the leg so order
// submission can block it.
func LegFor(rec *model.FuelRecord, dir Direction) Leg {
	if dir == DirectionReturning {
		leg := Leg{Dest: rec.To}
		if rec.ReturnDo != nil {
			leg.DoNo = strings.TrimSpace(*rec.ReturnDo)
		}
		if leg.DoNo == "" || strings.EqualFold(leg.DoNo, "NIL") {
			leg.DoNo = ""
			leg.ReturnDoMissing = true
		}
		return leg
	}
	dest := rec.OriginalGoingTo
	if dest == "" {
		dest = rec.To
	}
	return Leg{DoNo: rec.GoingDo, Dest: dest}
}

// Allocate assembles the concrete line item for one journey at one station:
// resolve the station rule with the journey's totals, then attach the
// direction-derived DO and destination and the computed amount.
func (s *journeyService) Allocate(ctx context.Context, rec *model.FuelRecord, station string, dir Direction) (*Allocation, error) {
	leg := LegFor(rec, dir)

	extra := rec.Extra
	balance := rec.Balance
	resolution, err := s.stations.Resolve(ctx, ResolveInput{
		Station:     station,
		Direction:   dir,
		Destination: leg.Dest,
		TotalLiters: rec.TotalLts,
		ExtraLiters: &extra,
		Balance:     &balance,
	})
	if err != nil {
		return nil, err
	}

	return &Allocation{
		Leg:            leg,
		Direction:      dir,
		Liters:         resolution.Liters,
		Rate:           resolution.Rate,
		Amount:         resolution.Rate.Mul(decimal.NewFromInt(int64(resolution.Liters))),
		Currency:       resolution.Currency,
		Source:         resolution.Source,
		FormulaStatus:  resolution.FormulaStatus,
		FormulaMessage: resolution.FormulaMessage,
	}, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

func lockedMessage(rec *model.FuelRecord) string {
	reason := "pending configuration"
	if rec.PendingConfigReason != nil {
		switch *rec.PendingConfigReason {
		case model.PendingMissingTotalLiters:
			reason = "route total liters not configured"
		case model.PendingMissingExtraFuel:
			reason = "extra fuel allowance not configured"
		case model.PendingBoth:
			reason = "route total liters and extra fuel not configured"
		}
	}
	return fmt.Sprintf("journey for truck %s (DO %s) is locked: %s", rec.TruckNo, rec.GoingDo, reason)
}
