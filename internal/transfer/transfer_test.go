// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/daylog-go/internal/cycle"
	"github.com/olegiv/daylog-go/internal/model"
	"github.com/olegiv/daylog-go/internal/store"
	"github.com/olegiv/daylog-go/internal/testutil"
	"github.com/olegiv/daylog-go/internal/transfer"
)

func fptr(v float64) *float64 { return &v }

func seedSource(t *testing.T, q *store.Queries) {
	t.Helper()
	ctx := context.Background()

	for _, ev := range []model.Event{
		{Type: model.TypeSleepStart, TS: 1700000000000, Weather: &model.Reading{Temp: 17, Hum: 75}},
		{Type: model.TypeWake, TS: 1700010000000},
		{Type: model.TypeSleepEnd, TS: 1700020000000, Weather: &model.Reading{Temp: 19, Hum: 68}},
		{Type: model.TypeWater, TS: 1700030000000, Payload: model.DrinkPayload{AmountML: 510}},
		{Type: model.TypeGlicemia, TS: 1700030000000, Payload: model.GlicemiaPayload{Level: 97}},
	} {
		_, err := q.CreateEvent(ctx, ev)
		require.NoError(t, err)
	}

	day := model.WeatherDay{
		DateKey: "2023-11-14", Lat: 41.387, Lon: 2.169,
		Hours: []int64{1700000000000},
		Temps: []*float64{fptr(17)},
		Hums:  []*float64{fptr(75)},
	}
	day.ComputeExtrema()
	require.NoError(t, q.PutWeatherDay(ctx, day))
	require.NoError(t, q.SetSetting(ctx, "units", "metric"))
}

func TestSnapshotRoundTrip(t *testing.T) {
	srcDB, srcCleanup := testutil.TestDB(t)
	t.Cleanup(srcCleanup)
	src := store.New(srcDB)
	seedSource(t, src)

	logger := testutil.TestLoggerSilent()
	ctx := context.Background()

	snap, err := transfer.NewExporter(src, logger).Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, transfer.SnapshotVersion, snap.Version)
	assert.Len(t, snap.Events, 5)
	assert.Len(t, snap.Weather, 1)
	assert.Len(t, snap.Settings, 1)

	// Through the JSON wire form, as the HTTP surface would carry it.
	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	var decoded transfer.Snapshot
	require.NoError(t, json.Unmarshal(raw, &decoded))

	dstDB, dstCleanup := testutil.TestDB(t)
	t.Cleanup(dstCleanup)
	require.NoError(t, transfer.NewImporter(dstDB, logger).Import(ctx, &decoded))

	dst := store.New(dstDB)
	srcEvents, err := src.ListEvents(ctx)
	require.NoError(t, err)
	dstEvents, err := dst.ListEvents(ctx)
	require.NoError(t, err)

	require.Len(t, dstEvents, len(srcEvents))
	for i := range srcEvents {
		assert.Equal(t, srcEvents[i].ID, dstEvents[i].ID, "order preserved at index %d", i)
		assert.Equal(t, srcEvents[i].Type, dstEvents[i].Type)
		assert.Equal(t, srcEvents[i].TS, dstEvents[i].TS)
		assert.Equal(t, srcEvents[i].DateKey, dstEvents[i].DateKey)
		assert.Equal(t, srcEvents[i].Payload, dstEvents[i].Payload)
		assert.Equal(t, srcEvents[i].Weather, dstEvents[i].Weather)
	}

	// Derived cycles are identical on both sides.
	now := time.UnixMilli(1700040000000)
	srcCycles := cycle.Build(srcEvents, now)
	dstCycles := cycle.Build(dstEvents, now)
	require.Len(t, dstCycles, len(srcCycles))
	for i := range srcCycles {
		assert.Equal(t, srcCycles[i].Type, dstCycles[i].Type)
		assert.Equal(t, srcCycles[i].StartTS, dstCycles[i].StartTS)
		assert.Equal(t, srcCycles[i].EndTS, dstCycles[i].EndTS)
	}

	days, err := dst.ListWeatherDays(ctx)
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2023-11-14", days[0].DateKey)

	units, err := dst.GetSetting(ctx, "units")
	require.NoError(t, err)
	assert.Equal(t, "metric", units.Value)
}

func TestImportOverwritesDuplicates(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	q := store.New(db)
	ctx := context.Background()
	logger := testutil.TestLoggerSilent()

	_, err := q.CreateEvent(ctx, model.Event{ID: "dup", Type: model.TypeCoffee, TS: 100})
	require.NoError(t, err)

	snap := &transfer.Snapshot{
		Version: transfer.SnapshotVersion,
		Events: []model.Event{
			{ID: "dup", Type: model.TypeWater, TS: 200, Payload: model.DrinkPayload{AmountML: 330}},
		},
	}
	require.NoError(t, transfer.NewImporter(db, logger).Import(ctx, snap))

	got, err := q.GetEventByID(ctx, "dup")
	require.NoError(t, err)
	assert.Equal(t, model.TypeWater, got.Type)
	assert.Equal(t, int64(200), got.TS)

	n, err := q.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestImportRejectsUnversionedSnapshot(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	err := transfer.NewImporter(db, testutil.TestLoggerSilent()).Import(
		context.Background(), &transfer.Snapshot{})
	require.Error(t, err)
}

func TestImportAtomicOnFailure(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	logger := testutil.TestLoggerSilent()
	ctx := context.Background()

	snap := &transfer.Snapshot{
		Version: transfer.SnapshotVersion,
		Events: []model.Event{
			{ID: "ok", Type: model.TypeCoffee, TS: 100},
			{Type: model.TypeCoffee, TS: 200}, // missing id fails the upsert
		},
	}
	require.Error(t, transfer.NewImporter(db, logger).Import(ctx, snap))

	n, err := store.New(db).CountEvents(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "failed import leaves nothing behind")
}
