package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/routine/internal/domain"
)

var cadenceNow = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func TestScanGateNoRecordIsEligible(t *testing.T) {
	gate := ScanGateFrom(nil, nil, cadenceNow)
	require.True(t, gate.Allowed)
	require.Nil(t, gate.NextDate)
}

func TestScanGateBlockedByEarliestFutureDate(t *testing.T) {
	record := &domain.NextAction{
		UserID: "user-1",
		Type:   domain.CycleScan,
		Parts: []domain.CyclePart{
			{Part: domain.PartFace, Date: cadenceNow.Add(72 * time.Hour)},
			{Part: domain.PartHair, Date: cadenceNow.Add(24 * time.Hour)},
			{Part: domain.PartBody, Date: cadenceNow.Add(-24 * time.Hour)},
		},
	}

	gate := ScanGateFrom(record, nil, cadenceNow)

	require.False(t, gate.Allowed)
	require.NotNil(t, gate.NextDate)
	require.Equal(t, cadenceNow.Add(24*time.Hour), *gate.NextDate)
}

func TestScanGateIgnoresJustAnalyzedParts(t *testing.T) {
	record := &domain.NextAction{
		UserID: "user-1",
		Type:   domain.CycleScan,
		Parts: []domain.CyclePart{
			{Part: domain.PartFace, Date: cadenceNow.Add(72 * time.Hour)},
			{Part: domain.PartHair, Date: cadenceNow.Add(-24 * time.Hour)},
		},
	}

	gate := ScanGateFrom(record, []string{domain.PartFace}, cadenceNow)
	require.True(t, gate.Allowed)
}

func TestRoutineGateRequiresPriorScan(t *testing.T) {
	gate := RoutineGateFrom(nil, []string{domain.PartHair}, domain.PartFace, cadenceNow)
	require.False(t, gate.Allowed)
	require.Nil(t, gate.NextDate)
}

func TestRoutineGateBlockedByFutureCadence(t *testing.T) {
	record := &domain.NextAction{
		Type: domain.CycleRoutine,
		Parts: []domain.CyclePart{
			{Part: domain.PartFace, Date: cadenceNow.Add(48 * time.Hour)},
		},
	}

	gate := RoutineGateFrom(record, []string{domain.PartFace}, domain.PartFace, cadenceNow)

	require.False(t, gate.Allowed)
	require.Equal(t, cadenceNow.Add(48*time.Hour), *gate.NextDate)
}

func TestRoutineGateAllowsScannedPartWithoutEntry(t *testing.T) {
	record := &domain.NextAction{Type: domain.CycleRoutine}

	gate := RoutineGateFrom(record, []string{domain.PartFace}, domain.PartFace, cadenceNow)
	require.True(t, gate.Allowed)
}

func TestAdvanceCadenceRecordSortsAndPinsMinimum(t *testing.T) {
	record := &domain.NextAction{
		UserID: "user-1",
		Type:   domain.CycleScan,
		Parts: []domain.CyclePart{
			{Part: domain.PartFace, Date: cadenceNow.Add(-time.Hour)},
			{Part: domain.PartHair, Date: cadenceNow.Add(time.Hour)},
		},
	}

	next := cadenceNow.Add(7 * 24 * time.Hour)
	AdvanceCadenceRecord(record, []string{domain.PartFace, domain.PartMouth}, next)

	require.Len(t, record.Parts, 3)
	// Hair keeps its old date and is now the earliest entry.
	require.Equal(t, domain.PartHair, record.Parts[0].Part)
	require.Equal(t, record.Parts[0].Date, record.Date)
	require.Equal(t, next, record.Parts[1].Date)
	require.Equal(t, next, record.Parts[2].Date)
}

func TestEngineAdvanceCadenceUpsertsRecord(t *testing.T) {
	cadence := &mockCadenceRepo{}
	e := newTestEngine(
		Config{CadenceInterval: 7 * 24 * time.Hour},
		Stores{Cadence: cadence},
		WithClock(func() time.Time { return cadenceNow }),
	)

	err := e.AdvanceCadence(context.Background(), "user-1", domain.CycleScan, []string{domain.PartFace})
	require.NoError(t, err)

	require.Len(t, cadence.upserts, 1)
	record := cadence.upserts[0]
	require.Equal(t, domain.CycleScan, record.Type)
	require.Equal(t, cadenceNow.Add(7*24*time.Hour), record.Date)
	require.Equal(t, []domain.CyclePart{{Part: domain.PartFace, Date: record.Date}}, record.Parts)
}

func TestEngineCanStartScanRoundTrip(t *testing.T) {
	cadence := &mockCadenceRepo{}
	e := newTestEngine(
		Config{CadenceInterval: 7 * 24 * time.Hour},
		Stores{Cadence: cadence},
		WithClock(func() time.Time { return cadenceNow }),
	)

	// No record yet: scanning allowed.
	gate, err := e.CanStartScan(context.Background(), "user-1", nil)
	require.NoError(t, err)
	require.True(t, gate.Allowed)

	// After completing a face scan the face region is gated for a week.
	require.NoError(t, e.AdvanceCadence(context.Background(), "user-1", domain.CycleScan, []string{domain.PartFace}))

	gate, err = e.CanStartScan(context.Background(), "user-1", nil)
	require.NoError(t, err)
	require.False(t, gate.Allowed)
	require.Equal(t, cadenceNow.Add(7*24*time.Hour), *gate.NextDate)

	// Unless the face is the region just analyzed.
	gate, err = e.CanStartScan(context.Background(), "user-1", []string{domain.PartFace})
	require.NoError(t, err)
	require.True(t, gate.Allowed)
}

func TestEngineAdvanceCadenceValidation(t *testing.T) {
	e := newTestEngine(Config{}, Stores{Cadence: &mockCadenceRepo{}})

	err := e.AdvanceCadence(context.Background(), "", domain.CycleScan, []string{domain.PartFace})
	require.True(t, domain.IsKind(err, domain.KindValidation))

	err = e.AdvanceCadence(context.Background(), "user-1", domain.CycleScan, nil)
	require.True(t, domain.IsKind(err, domain.KindValidation))
}
