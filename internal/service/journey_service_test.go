package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────

// stubFuelRepo is an in-memory FuelRecordRepository returning records
// newest-first, the way the real query does.
type stubFuelRepo struct {
	records []model.FuelRecord // kept newest-first by the test setup
}

func (r *stubFuelRepo) FindByTruck(_ context.Context, truckNo string, limit int) ([]model.FuelRecord, error) {
	var out []model.FuelRecord
	for _, rec := range r.records {
		if rec.TruckNo == truckNo && !rec.IsCancelled && !rec.IsDeleted {
			out = append(out, rec)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *stubFuelRepo) FindByDo(_ context.Context, doNo string) (*model.FuelRecord, error) {
	for i := range r.records {
		rec := &r.records[i]
		if rec.GoingDo == doNo || (rec.ReturnDo != nil && *rec.ReturnDo == doNo) {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFuelRepo) FindByID(_ context.Context, id uuid.UUID) (*model.FuelRecord, error) {
	for i := range r.records {
		if r.records[i].ID == id {
			return &r.records[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubFuelRepo) Create(_ context.Context, rec *model.FuelRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	r.records = append([]model.FuelRecord{*rec}, r.records...)
	return nil
}

func (r *stubFuelRepo) Update(_ context.Context, rec *model.FuelRecord) error {
	for i := range r.records {
		if r.records[i].ID == rec.ID {
			r.records[i] = *rec
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubFuelRepo) FirstQueued(_ context.Context, truckNo string) (*model.FuelRecord, error) {
	var best *model.FuelRecord
	for i := range r.records {
		rec := &r.records[i]
		if rec.TruckNo != truckNo || rec.IsCancelled || rec.IsDeleted || Classify(rec) != StateQueued {
			continue
		}
		if best == nil || rec.QueueOrder < best.QueueOrder {
			best = rec
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (r *stubFuelRepo) Cancel(_ context.Context, id uuid.UUID, reason string) error {
	for i := range r.records {
		if r.records[i].ID == id {
			now := time.Now()
			r.records[i].IsCancelled = true
			r.records[i].CancelledAt = &now
			r.records[i].CancellationReason = &reason
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *stubFuelRepo) DB() *gorm.DB { return nil }

var _ repository.FuelRecordRepository = (*stubFuelRepo)(nil)

// stubDeliveryRepo is an in-memory DeliveryOrderRepository.
type stubDeliveryRepo struct {
	orders map[string]*model.DeliveryOrder
}

func newStubDeliveryRepo() *stubDeliveryRepo {
	return &stubDeliveryRepo{orders: make(map[string]*model.DeliveryOrder)}
}

func (r *stubDeliveryRepo) FindByDoNo(_ context.Context, doNo string) (*model.DeliveryOrder, error) {
	d, ok := r.orders[doNo]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return d, nil
}

func (r *stubDeliveryRepo) Create(_ context.Context, d *model.DeliveryOrder) error {
	if _, exists := r.orders[d.DoNo]; exists {
		return errors.New("duplicate DO")
	}
	r.orders[d.DoNo] = d
	return nil
}

var _ repository.DeliveryOrderRepository = (*stubDeliveryRepo)(nil)

// stubStations returns a fixed resolution regardless of input.
type stubStations struct {
	res Resolution
}

func (s *stubStations) Resolve(_ context.Context, in ResolveInput) (*Resolution, error) {
	r := s.res
	if r.Currency == "" {
		r.Currency = StationCurrency(in.Station)
	}
	return &r, nil
}
func (s *stubStations) List(_ context.Context, _ bool) ([]model.StationConfig, error) {
	return nil, nil
}
func (s *stubStations) Create(_ context.Context, _ *model.StationConfig) error { return nil }
func (s *stubStations) Update(_ context.Context, _ uuid.UUID, _ func(*model.StationConfig)) (*model.StationConfig, error) {
	return nil, nil
}
func (s *stubStations) Deactivate(_ context.Context, _ uuid.UUID) error { return nil }

var _ StationService = (*stubStations)(nil)

// ── Fixtures ──────────────────────────────────────────────────────────────────

// Frozen clock: mid-June keeps the 4-month window entirely inside one year.
var testNow = time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

func buildJourneySvc(fuel *stubFuelRepo, delivery *stubDeliveryRepo) *journeyService {
	if delivery == nil {
		delivery = newStubDeliveryRepo()
	}
	svc := NewJourneyService(fuel, delivery, &stubStations{res: Resolution{Liters: 300, Rate: decimal.NewFromFloat(1.2), Source: SourceLegacyTable}}, 4, 50).(*journeyService)
	svc.now = func() time.Time { return testNow }
	return svc
}

func record(truckNo, goingDo, to string, status string, monthsAgo int, mutate ...func(*model.FuelRecord)) model.FuelRecord {
	rec := model.FuelRecord{
		ID:              uuid.New(),
		TruckNo:         truckNo,
		GoingDo:         goingDo,
		To:              to,
		OriginalGoingTo: to,
		CreatedAt:       testNow.AddDate(0, -monthsAgo, 0),
	}
	if status != "" {
		rec.JourneyStatus = strp(status)
	}
	for _, m := range mutate {
		m(&rec)
	}
	return rec
}

// ── FindByTruck ───────────────────────────────────────────────────────────────

func TestFindByTruck_NoRecords(t *testing.T) {
	svc := buildJourneySvc(&stubFuelRepo{}, nil)

	res, err := svc.FindByTruck(context.Background(), "t123 abc")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, res.Status)
	assert.Equal(t, "T123 ABC", res.TruckNo) // normalized
	assert.Nil(t, res.Selected)
}

func TestFindByTruck_LockedShortCircuits(t *testing.T) {
	locked := record("T1", "DO-9", "LUSAKA", "", 0, func(r *model.FuelRecord) {
		r.IsLocked = true
		r.PendingConfigReason = strp(model.PendingMissingTotalLiters)
	})
	active := record("T1", "DO-8", "LUSAKA", model.JourneyActive, 0, func(r *model.FuelRecord) { r.Balance = 400 })
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{locked, active}}, nil)

	res, err := svc.FindByTruck(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, StatusLocked, res.Status)
	assert.Equal(t, "DO-9", res.Selected.GoingDo)
	assert.Contains(t, res.Message, "route total liters not configured")
}

func TestFindByTruck_ActivePreferredOverQueued(t *testing.T) {
	queued := record("T1", "DO-2", "LUSAKA", model.JourneyQueued, 0, func(r *model.FuelRecord) { r.QueueOrder = 1 })
	active := record("T1", "DO-1", "LUSAKA", model.JourneyActive, 0, func(r *model.FuelRecord) { r.Balance = 200 })
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{queued, active}}, nil)

	res, err := svc.FindByTruck(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "DO-1", res.Selected.GoingDo)
	require.Len(t, res.Candidates.Queued, 1)
	assert.Equal(t, "DO-2", res.Candidates.Queued[0].GoingDo)
}

func TestFindByTruck_ActiveInOlderMonthBeatsCurrentQueued(t *testing.T) {
	// The whole window is walked for an active journey before any queued
	// one is considered.
	queuedNow := record("T1", "DO-NEW", "LUSAKA", model.JourneyQueued, 0)
	activeOld := record("T1", "DO-OLD", "LUSAKA", model.JourneyActive, 2, func(r *model.FuelRecord) { r.Balance = 150 })
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{queuedNow, activeOld}}, nil)

	res, err := svc.FindByTruck(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "DO-OLD", res.Selected.GoingDo)
}

func TestFindByTruck_ActiveOutsideWindowIgnored(t *testing.T) {
	// An active record 5 months back is outside the 4-month window; a
	// queued one inside the window wins instead.
	staleActive := record("T1", "DO-STALE", "LUSAKA", model.JourneyActive, 5, func(r *model.FuelRecord) { r.Balance = 100 })
	queued := record("T1", "DO-Q", "LUSAKA", model.JourneyQueued, 1)
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{queued, staleActive}}, nil)

	res, err := svc.FindByTruck(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "DO-Q", res.Selected.GoingDo)
	assert.Contains(t, res.Message, "queued journey selected")
}

func TestFindByTruck_MonthEndClockCoversEveryMonth(t *testing.T) {
	// From a month-end clock a naive AddDate walk lands on "Feb 31" → Mar 3
	// and never visits February. The walk must anchor at the first of the
	// month so an active February journey still outranks a queued March one.
	monthEnd := time.Date(2025, time.March, 31, 18, 0, 0, 0, time.UTC)
	queued := record("T1", "DO-Q", "LUSAKA", model.JourneyQueued, 0, func(r *model.FuelRecord) {
		r.CreatedAt = time.Date(2025, time.March, 30, 9, 0, 0, 0, time.UTC)
	})
	active := record("T1", "DO-FEB", "LUSAKA", model.JourneyActive, 0, func(r *model.FuelRecord) {
		r.Balance = 250
		r.CreatedAt = time.Date(2025, time.February, 15, 9, 0, 0, 0, time.UTC)
	})
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{queued, active}}, nil)
	svc.now = func() time.Time { return monthEnd }

	res, err := svc.FindByTruck(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "DO-FEB", res.Selected.GoingDo)
}

func TestFindByTruck_QueuedOrderWithinMonth(t *testing.T) {
	q2 := record("T1", "DO-Q2", "LUSAKA", model.JourneyQueued, 0, func(r *model.FuelRecord) { r.QueueOrder = 2 })
	q1 := record("T1", "DO-Q1", "LUSAKA", model.JourneyQueued, 0, func(r *model.FuelRecord) { r.QueueOrder = 1 })
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{q2, q1}}, nil)

	res, err := svc.FindByTruck(context.Background(), "T1")
	require.NoError(t, err)
	require.Len(t, res.Candidates.Queued, 2)
	assert.Equal(t, "DO-Q1", res.Selected.GoingDo)
	assert.Equal(t, "DO-Q2", res.Candidates.Queued[1].GoingDo)
}

func TestFindByTruck_CompletedJourney(t *testing.T) {
	done := record("T1", "DO-DONE", "LUSAKA", model.JourneyCompleted, 0, func(r *model.FuelRecord) { r.MbeyaReturn = 250 })
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{done}}, nil)

	res, err := svc.FindByTruck(context.Background(), "T1")
	require.NoError(t, err)
	assert.Equal(t, StatusJourneyCompleted, res.Status)
	assert.Equal(t, "DO-DONE", res.Selected.GoingDo)
	assert.Contains(t, res.Message, "DO-DONE")
}

// ── FindByDO ──────────────────────────────────────────────────────────────────

func TestFindByDO_ViaDeliveryOrder(t *testing.T) {
	active := record("T7", "DO-77", "LUSAKA", model.JourneyActive, 0, func(r *model.FuelRecord) { r.Balance = 300 })
	delivery := newStubDeliveryRepo()
	delivery.orders["DO-77"] = &model.DeliveryOrder{DoNo: "DO-77", TruckNo: "T7"}
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{active}}, delivery)

	res, err := svc.FindByDO(context.Background(), "DO-77")
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, "T7", res.TruckNo)
}

func TestFindByDO_FallsBackToFuelRecords(t *testing.T) {
	// Legacy record with no delivery-order row, matched on the return DO.
	rec := record("T8", "DO-88", "LUSAKA", model.JourneyActive, 0, func(r *model.FuelRecord) {
		r.Balance = 100
		r.ReturnDo = strp("RDO-88")
	})
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{rec}}, nil)

	res, err := svc.FindByDO(context.Background(), "RDO-88")
	require.NoError(t, err)
	assert.Equal(t, "T8", res.TruckNo)
	assert.Equal(t, StatusOK, res.Status)
}

func TestFindByDO_NotFound(t *testing.T) {
	svc := buildJourneySvc(&stubFuelRepo{}, nil)

	res, err := svc.FindByDO(context.Background(), "DO-NOPE")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, res.Status)
}

// ── Select ────────────────────────────────────────────────────────────────────

func TestSelect_OverrideQueuedIndex(t *testing.T) {
	q1 := record("T1", "DO-Q1", "LUSAKA", model.JourneyQueued, 0, func(r *model.FuelRecord) { r.QueueOrder = 1 })
	q2 := record("T1", "DO-Q2", "LUSAKA", model.JourneyQueued, 0, func(r *model.FuelRecord) { r.QueueOrder = 2 })
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{q1, q2}}, nil)

	res, err := svc.FindByTruck(context.Background(), "T1")
	require.NoError(t, err)

	rec, err := svc.Select(res, &SelectOverride{Slot: "queued", QueuedIndex: 1})
	require.NoError(t, err)
	assert.Equal(t, "DO-Q2", rec.GoingDo)

	_, err = svc.Select(res, &SelectOverride{Slot: "queued", QueuedIndex: 5})
	assert.Error(t, err)

	_, err = svc.Select(res, &SelectOverride{Slot: "active"})
	assert.Error(t, err) // no active journey

	rec, err = svc.Select(res, nil)
	require.NoError(t, err)
	assert.Equal(t, "DO-Q1", rec.GoingDo) // default precedence
}

// ── Allocate ──────────────────────────────────────────────────────────────────

func TestAllocate_GoingLeg(t *testing.T) {
	rec := record("T1", "DO-1", "LUSAKA", model.JourneyActive, 0, func(r *model.FuelRecord) {
		r.TotalLts = intp(1000)
		r.Balance = 700
	})
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{rec}}, nil)

	alloc, err := svc.Allocate(context.Background(), &rec, "LAKE KAPIRI", DirectionGoing)
	require.NoError(t, err)
	assert.Equal(t, "DO-1", alloc.DoNo)
	assert.Equal(t, "LUSAKA", alloc.Dest)
	assert.Equal(t, 300, alloc.Liters)
	assert.Equal(t, "360", alloc.Amount.String()) // 300 × 1.2
	assert.Equal(t, CurrencyUSD, alloc.Currency)
	assert.False(t, alloc.ReturnDoMissing)
}

func TestAllocate_ReturningLegMissingReturnDO(t *testing.T) {
	rec := record("T1", "DO-1", "LUSAKA", model.JourneyActive, 0, func(r *model.FuelRecord) {
		r.ReturnDo = strp("NIL")
	})
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{rec}}, nil)

	alloc, err := svc.Allocate(context.Background(), &rec, "GBP MBEYA", DirectionReturning)
	require.NoError(t, err)
	assert.True(t, alloc.ReturnDoMissing)
	assert.Empty(t, alloc.DoNo)
}

func TestAllocate_GoingUsesOriginalDestination(t *testing.T) {
	rec := record("T1", "DO-1", "DAR", model.JourneyActive, 0, func(r *model.FuelRecord) {
		r.OriginalGoingTo = "LUBUMBASHI" // export DO rewrote To
	})
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{rec}}, nil)

	alloc, err := svc.Allocate(context.Background(), &rec, "LAKE KAPIRI", DirectionGoing)
	require.NoError(t, err)
	assert.Equal(t, "LUBUMBASHI", alloc.Dest)
}

func TestAllocate_DirectionToggleRoundTrip(t *testing.T) {
	// Toggling going → returning → going on the same journey must reproduce
	// the original allocation exactly; the record is never mutated by a leg
	// derivation.
	rec := record("T1", "DO-1", "LUSAKA", model.JourneyActive, 0, func(r *model.FuelRecord) {
		r.ReturnDo = strp("DO-R1")
		r.TotalLts = intp(1000)
		r.Balance = 600
	})
	svc := buildJourneySvc(&stubFuelRepo{records: []model.FuelRecord{rec}}, nil)

	first, err := svc.Allocate(context.Background(), &rec, "LAKE KAPIRI", DirectionGoing)
	require.NoError(t, err)

	back, err := svc.Allocate(context.Background(), &rec, "LAKE KAPIRI", DirectionReturning)
	require.NoError(t, err)
	assert.Equal(t, "DO-R1", back.DoNo)
	assert.Equal(t, "LUSAKA", back.Dest)
	assert.False(t, back.ReturnDoMissing)

	again, err := svc.Allocate(context.Background(), &rec, "LAKE KAPIRI", DirectionGoing)
	require.NoError(t, err)
	assert.Equal(t, first.DoNo, again.DoNo)
	assert.Equal(t, first.Dest, again.Dest)
	assert.Equal(t, first.Liters, again.Liters)
	assert.True(t, first.Rate.Equal(again.Rate))
	assert.True(t, first.Amount.Equal(again.Amount))
	assert.Equal(t, first.Currency, again.Currency)
}
