package localdb

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/typeledger/internal/metrics"
	"github.com/verte-zerg/typeledger/internal/model"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func sampleSnapshot() *model.Snapshot {
	snap := model.DefaultSnapshot(fixedNow)
	snap.Name = "local"
	snap.XP = 420
	snap.Results = append(snap.Results, model.Result{
		ID:          "r1",
		Mode:        model.ModeTime,
		Mode2:       "30",
		Punctuation: model.Bool(false),
		Numbers:     model.Bool(false),
		Difficulty:  model.DifficultyNormal,
		Language:    "english",
		WPM:         88.5,
		Acc:         97.1,
		RawWPM:      90,
		Consistency: 80,
		Timestamp:   fixedNow.UnixMilli(),
		Tags:        []string{},
	})
	snap.PersonalBests.Upsert(model.ModeTime, "30", model.VariantKey{Language: "english", Difficulty: model.DifficultyNormal},
		model.PBStats{WPM: 88.5, Acc: 97.1, Raw: 90, Consistency: 80}, fixedNow)
	return snap
}

func TestSaveLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := New(NewMemoryKV(), WithClock(clock))

	_, ok := db.Load(ctx)
	assert.False(t, ok)

	want := sampleSnapshot()
	db.Save(ctx, want)

	got, ok := db.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)

	saved, ok := db.LastSaved(ctx)
	require.True(t, ok)
	assert.Equal(t, fixedNow.UnixMilli(), saved.UnixMilli())
}

func TestLoadIgnoresOtherVersions(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	require.NoError(t, kv.Set(ctx, StorageKey, `{"version":2,"data":{"name":"x"},"lastSaved":1}`))

	_, ok := New(kv).Load(ctx)
	assert.False(t, ok)
}

func TestLoadIgnoresCorruptRecords(t *testing.T) {
	ctx := context.Background()
	for name, raw := range map[string]string{
		"not json": "{{{",
		"no data":  `{"version":1,"lastSaved":1}`,
		"array":    `[1,2,3]`,
	} {
		t.Run(name, func(t *testing.T) {
			kv := NewMemoryKV()
			require.NoError(t, kv.Set(ctx, StorageKey, raw))
			_, ok := New(kv).Load(ctx)
			assert.False(t, ok)
		})
	}
}

func TestLoadKeepsHistoryWithCorruptPBTable(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	raw := `{"version":1,"lastSaved":1,"data":{"name":"x","xp":40,"personalBests":"broken",` +
		`"results":[{"_id":"r1","mode":"time","mode2":"30","wpm":70}]}}`
	require.NoError(t, kv.Set(ctx, StorageKey, raw))

	snap, ok := New(kv).Load(ctx)
	require.True(t, ok)
	assert.Equal(t, 40, snap.XP)
	require.Len(t, snap.Results, 1)
	assert.NotNil(t, snap.PersonalBests.Time)
	_, found := snap.PersonalBests.Find(model.ModeTime, "30", model.VariantKey{Language: "english"})
	assert.False(t, found)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	db := New(NewMemoryKV())
	db.Save(ctx, sampleSnapshot())
	db.Clear(ctx)
	_, ok := db.Load(ctx)
	assert.False(t, ok)
	_, ok = db.LastSaved(ctx)
	assert.False(t, ok)
}

func TestInitializeCreatesOnce(t *testing.T) {
	ctx := context.Background()
	db := New(NewMemoryKV(), WithClock(clock))

	first := db.Initialize(ctx, "guest")
	assert.Equal(t, "guest", first.Name)
	assert.Equal(t, fixedNow.UnixMilli(), first.AddedAt)

	first.XP = 10
	db.Save(ctx, first)

	second := db.Initialize(ctx, "other")
	assert.Equal(t, "guest", second.Name)
	assert.Equal(t, 10, second.XP)
}

type failingKV struct{ *MemoryKV }

func (failingKV) Set(context.Context, string, string) error { return errors.New("disk full") }

func TestSaveFailureIsSwallowed(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewManager(metrics.WithRegistry(reg))
	db := New(failingKV{NewMemoryKV()}, WithMetrics(m))

	assert.NotPanics(t, func() { db.Save(context.Background(), sampleSnapshot()) })
	_, ok := db.Load(context.Background())
	assert.False(t, ok)
}

func TestSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "typeledger.db")

	kv, err := OpenSQLite(path)
	require.NoError(t, err)

	_, err = kv.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	db := New(kv, WithClock(clock))
	want := sampleSnapshot()
	db.Save(ctx, want)
	want.XP = 500
	db.Save(ctx, want)
	require.NoError(t, kv.Close())

	kv, err = OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()

	got, ok := New(kv).Load(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, kv.Delete(ctx, StorageKey))
	_, err = kv.Get(ctx, StorageKey)
	assert.ErrorIs(t, err, ErrNotFound)
}
