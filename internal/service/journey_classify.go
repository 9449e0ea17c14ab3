package service

import (
	"strings"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"
)

// JourneyState is the lifecycle classification of one fuel record.
type JourneyState string

const (
	StateLocked    JourneyState = "locked"
	StateActive    JourneyState = "active"
	StateQueued    JourneyState = "queued"
	StateCompleted JourneyState = "completed"
)

// IsMSADestination reports whether a destination belongs to the Mombasa/MSA
// class, which routes the truck back through Tanga instead of Mbeya.
//
// Substring matching mirrors how destinations are keyed in the DO sheets
// ("MSA", "MOMBASA CBD", ...). A proper destination taxonomy would be
// tighter; kept in one place so it can be replaced wholesale.
func IsMSADestination(dest string) bool {
	d := strings.ToLower(dest)
	return strings.Contains(d, "msa") || strings.Contains(d, "mombasa")
}

// TerminalReturnCheckpoint names the checkpoint whose fill marks the journey
// finished: Tanga for Mombasa-class routes, Mbeya for everything else. Both
// the going and the recorded return destination are consulted, since an
// export DO may have rewritten To.
func TerminalReturnCheckpoint(rec *model.FuelRecord) string {
	if IsMSADestination(rec.To) || IsMSADestination(rec.OriginalGoingTo) {
		return model.CheckpointTangaReturn
	}
	return model.CheckpointMbeyaReturn
}

// IsComplete reports whether the record's terminal return checkpoint has been
// filled with a non-zero value. A record with zero balance but all
// checkpoints at zero is a fresh unconfigured import, not a finished trip,
// and is therefore not complete.
func IsComplete(rec *model.FuelRecord) bool {
	return rec.Checkpoints()[TerminalReturnCheckpoint(rec)] != 0
}

// Classify resolves the record's lifecycle state. Locked records are always
// StateLocked — they are pending admin configuration and must never read as
// completed, whatever their balance or checkpoints say. An explicit
// journeyStatus wins next; legacy rows without one fall back to inference:
// a non-zero balance, or a zero balance with the terminal checkpoint still
// unfilled, means the trip is still underway.
func Classify(rec *model.FuelRecord) JourneyState {
	if rec.IsLocked {
		return StateLocked
	}
	if rec.JourneyStatus != nil {
		switch *rec.JourneyStatus {
		case model.JourneyActive:
			return StateActive
		case model.JourneyQueued:
			return StateQueued
		case model.JourneyCompleted:
			return StateCompleted
		}
	}
	if rec.Balance != 0 {
		return StateActive
	}
	if !IsComplete(rec) {
		return StateActive
	}
	return StateCompleted
}
