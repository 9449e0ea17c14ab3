package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/dto"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"
	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type FuelRecordService interface {
	// ImportDO creates the fuel record (and its delivery-order mapping) for
	// an entered or imported DO. The record is locked when the route
	// configuration is incomplete, and queued when the truck already has a
	// journey underway.
	ImportDO(ctx context.Context, req dto.ImportDORequest) (*model.FuelRecord, error)
	ListByTruck(ctx context.Context, truckNo string) ([]model.FuelRecord, error)
	Cancel(ctx context.Context, id uuid.UUID, reason string) error
	// FillCheckpoint records liters drawn at a checkpoint, recomputes the
	// balance, and completes the journey when the terminal return checkpoint
	// fills — promoting the next queued journey to active.
	FillCheckpoint(ctx context.Context, id uuid.UUID, checkpoint string, liters int) (*model.FuelRecord, error)
}

type fuelRecordService struct {
	fuel     repository.FuelRecordRepository
	delivery repository.DeliveryOrderRepository
}

func NewFuelRecordService(fuel repository.FuelRecordRepository, delivery repository.DeliveryOrderRepository) FuelRecordService {
	return &fuelRecordService{fuel: fuel, delivery: delivery}
}

func (s *fuelRecordService) ImportDO(ctx context.Context, req dto.ImportDORequest) (*model.FuelRecord, error) {
	doNo := strings.TrimSpace(req.DoNo)
	truckNo := strings.ToUpper(strings.TrimSpace(req.TruckNo))

	if existing, err := s.delivery.FindByDoNo(ctx, doNo); err == nil && existing != nil {
		return nil, fmt.Errorf("DO %s is already imported for truck %s", doNo, existing.TruckNo)
	}

	rec := &model.FuelRecord{
		TruckNo:         truckNo,
		GoingDo:         doNo,
		ReturnDo:        req.ReturnDo,
		Start:           req.Start,
		From:            req.From,
		To:              req.To,
		OriginalGoingTo: req.To,
		TotalLts:        req.TotalLts,
	}
	if req.Extra != nil {
		rec.Extra = *req.Extra
	}

	// Lock until the route configuration is complete — a locked record is
	// exempt from lifecycle classification entirely.
	switch {
	case req.TotalLts == nil && req.Extra == nil:
		rec.IsLocked = true
		rec.PendingConfigReason = strPtr(model.PendingBoth)
	case req.TotalLts == nil:
		rec.IsLocked = true
		rec.PendingConfigReason = strPtr(model.PendingMissingTotalLiters)
	case req.Extra == nil:
		rec.IsLocked = true
		rec.PendingConfigReason = strPtr(model.PendingMissingExtraFuel)
	default:
		rec.Balance = *req.TotalLts + rec.Extra
	}

	// One active journey per truck: a new DO behind a running trip queues up.
	status := model.JourneyActive
	existing, err := s.fuel.FindByTruck(ctx, truckNo, 50)
	if err != nil {
		return nil, err
	}
	maxQueue := 0
	for i := range existing {
		switch Classify(&existing[i]) {
		case StateActive:
			status = model.JourneyQueued
		case StateQueued:
			status = model.JourneyQueued
			if existing[i].QueueOrder > maxQueue {
				maxQueue = existing[i].QueueOrder
			}
		}
	}
	rec.JourneyStatus = strPtr(status)
	if status == model.JourneyQueued {
		rec.QueueOrder = maxQueue + 1
	}

	if err := s.fuel.Create(ctx, rec); err != nil {
		return nil, err
	}
	if err := s.delivery.Create(ctx, &model.DeliveryOrder{
		DoNo:        doNo,
		TruckNo:     truckNo,
		Destination: req.To,
	}); err != nil {
		// The fuel record is the source of truth; a failed mapping only
		// degrades DO-first lookup, which falls back to the record itself.
		log.Warn().Err(err).Str("do_no", doNo).Msg("delivery-order mapping not created")
	}
	return rec, nil
}

func (s *fuelRecordService) ListByTruck(ctx context.Context, truckNo string) ([]model.FuelRecord, error) {
	return s.fuel.FindByTruck(ctx, strings.ToUpper(strings.TrimSpace(truckNo)), 50)
}

func (s *fuelRecordService) Cancel(ctx context.Context, id uuid.UUID, reason string) error {
	rec, err := s.fuel.FindByID(ctx, id)
	if err != nil {
		return errors.New("fuel record not found")
	}
	if rec.IsCancelled {
		return fmt.Errorf("record for truck %s (DO %s) is already cancelled", rec.TruckNo, rec.GoingDo)
	}
	return s.fuel.Cancel(ctx, id, reason)
}

func (s *fuelRecordService) FillCheckpoint(ctx context.Context, id uuid.UUID, checkpoint string, liters int) (*model.FuelRecord, error) {
	rec, err := s.fuel.FindByID(ctx, id)
	if err != nil {
		return nil, errors.New("fuel record not found")
	}
	if rec.IsCancelled || rec.IsDeleted {
		return nil, fmt.Errorf("record for truck %s (DO %s) is cancelled", rec.TruckNo, rec.GoingDo)
	}
	if rec.IsLocked {
		return nil, fmt.Errorf("journey for truck %s is locked pending configuration — checkpoints cannot be filled", rec.TruckNo)
	}
	if !rec.SetCheckpoint(checkpoint, liters) {
		return nil, fmt.Errorf("unknown checkpoint %q", checkpoint)
	}

	if rec.TotalLts != nil {
		drawn := 0
		for _, v := range rec.Checkpoints() {
			drawn += v
		}
		rec.Balance = *rec.TotalLts + rec.Extra - drawn
		if rec.Balance < 0 {
			rec.Balance = 0
		}
	}

	if IsComplete(rec) {
		rec.JourneyStatus = strPtr(model.JourneyCompleted)
	}

	if err := s.fuel.Update(ctx, rec); err != nil {
		return nil, err
	}

	// Completion promotes the truck's next queued journey. Best-effort:
	// the checkpoint fill already succeeded.
	if IsComplete(rec) {
		if next, err := s.fuel.FirstQueued(ctx, rec.TruckNo); err == nil && next != nil {
			next.JourneyStatus = strPtr(model.JourneyActive)
			next.QueueOrder = 0
			if err := s.fuel.Update(ctx, next); err != nil {
				log.Warn().Err(err).Str("truck_no", rec.TruckNo).Msg("queued journey promotion failed")
			} else {
				log.Info().Str("truck_no", rec.TruckNo).Str("going_do", next.GoingDo).
					Msg("queued journey promoted to active")
			}
		}
	}

	return rec, nil
}

func strPtr(s string) *string { return &s }
