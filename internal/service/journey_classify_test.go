package service

import (
	"testing"

	"github.com/Zakuwantungsten/fuel-Order-sytem-sub000/internal/model"

	"github.com/stretchr/testify/assert"
)

func strp(s string) *string { return &s }

func TestClassify_LockedWinsOverEverything(t *testing.T) {
	rec := &model.FuelRecord{
		IsLocked:      true,
		JourneyStatus: strp(model.JourneyCompleted),
		Balance:       0,
		MbeyaReturn:   250, // would otherwise read as completed
	}
	assert.Equal(t, StateLocked, Classify(rec))
}

func TestClassify_ExplicitStatus(t *testing.T) {
	assert.Equal(t, StateActive, Classify(&model.FuelRecord{JourneyStatus: strp(model.JourneyActive)}))
	assert.Equal(t, StateQueued, Classify(&model.FuelRecord{JourneyStatus: strp(model.JourneyQueued), Balance: 500}))
	assert.Equal(t, StateCompleted, Classify(&model.FuelRecord{JourneyStatus: strp(model.JourneyCompleted)}))
}

func TestClassify_LegacyInference(t *testing.T) {
	// Legacy sheet rows carry no status. Non-zero balance: underway.
	assert.Equal(t, StateActive, Classify(&model.FuelRecord{To: "LUSAKA", Balance: 120}))

	// Zero balance but the terminal return checkpoint untouched: the truck
	// spent its allocation but has not come back.
	assert.Equal(t, StateActive, Classify(&model.FuelRecord{To: "LUSAKA", Balance: 0}))

	// Terminal checkpoint filled: done.
	assert.Equal(t, StateCompleted, Classify(&model.FuelRecord{To: "LUSAKA", Balance: 0, MbeyaReturn: 300}))
}

func TestTerminalReturnCheckpoint(t *testing.T) {
	// Mombasa-class destinations return through Tanga.
	assert.Equal(t, model.CheckpointTangaReturn,
		TerminalReturnCheckpoint(&model.FuelRecord{To: "MSA"}))
	assert.Equal(t, model.CheckpointTangaReturn,
		TerminalReturnCheckpoint(&model.FuelRecord{To: "Mombasa CBD"}))

	// The going destination counts too — an export DO may rewrite To.
	assert.Equal(t, model.CheckpointTangaReturn,
		TerminalReturnCheckpoint(&model.FuelRecord{To: "DAR", OriginalGoingTo: "MSA PORT"}))

	// Everything else returns through Mbeya.
	assert.Equal(t, model.CheckpointMbeyaReturn,
		TerminalReturnCheckpoint(&model.FuelRecord{To: "LUBUMBASHI"}))
}

func TestTerminalCheckpoint_CompletionPerRoute(t *testing.T) {
	// A Mombasa truck that filled Mbeya-return is NOT complete; only the
	// Tanga-return fill finishes it.
	msa := &model.FuelRecord{To: "MSA", MbeyaReturn: 200}
	assert.False(t, IsComplete(msa))
	msa.TangaReturn = 180
	assert.True(t, IsComplete(msa))
}
