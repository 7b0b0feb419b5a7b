// Package localdb persists a single versioned snapshot record in a
// key-value store.
package localdb

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/typeledger/internal/metrics"
	"github.com/verte-zerg/typeledger/internal/model"
)

const (
	// StorageKey is the single slot the snapshot record lives under.
	StorageKey = "typeledger_local_snapshot"
	// StorageVersion is the record version this build reads and writes.
	// Records with any other version are ignored.
	StorageVersion = 1
)

// Record is the persisted envelope.
type Record struct {
	Version   int             `json:"version"`
	Data      *model.Snapshot `json:"data"`
	LastSaved int64           `json:"lastSaved"`
}

// DB reads and writes the snapshot record. Failures are logged and
// reported as absent data, never returned.
type DB struct {
	kv      KV
	logger  *zap.Logger
	metrics *metrics.Manager
	now     func() time.Time
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *DB) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMetrics sets the metrics manager.
func WithMetrics(m *metrics.Manager) Option {
	return func(d *DB) { d.metrics = m }
}

// WithClock overrides the time source used for lastSaved and defaults.
func WithClock(now func() time.Time) Option {
	return func(d *DB) {
		if now != nil {
			d.now = now
		}
	}
}

// New returns a DB over kv.
func New(kv KV, opts ...Option) *DB {
	d := &DB{kv: kv, logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Save writes snap as the current record.
func (d *DB) Save(ctx context.Context, snap *model.Snapshot) {
	payload, err := json.Marshal(Record{
		Version:   StorageVersion,
		Data:      snap,
		LastSaved: d.now().UnixMilli(),
	})
	if err == nil {
		err = d.kv.Set(ctx, StorageKey, string(payload))
	}
	if err != nil {
		d.logger.Error("failed to save snapshot", zap.Error(err))
		d.metrics.SnapshotWrite(metrics.OutcomeError)
		return
	}
	d.metrics.SnapshotWrite(metrics.OutcomeOK)
}

// Load returns the stored snapshot. It reports false when nothing is
// stored, the record cannot be decoded, or its version differs.
func (d *DB) Load(ctx context.Context) (*model.Snapshot, bool) {
	rec, ok := d.read(ctx)
	if !ok {
		return nil, false
	}
	if rec.Version != StorageVersion {
		d.logger.Warn("snapshot version mismatch, ignoring",
			zap.Int("stored", rec.Version),
			zap.Int("supported", StorageVersion),
		)
		d.metrics.SnapshotLoad(metrics.OutcomeMismatch)
		return nil, false
	}
	if rec.Data == nil {
		d.metrics.SnapshotLoad(metrics.OutcomeMissing)
		return nil, false
	}
	d.metrics.SnapshotLoad(metrics.OutcomeOK)
	return rec.Data, true
}

func (d *DB) read(ctx context.Context) (Record, bool) {
	raw, err := d.kv.Get(ctx, StorageKey)
	if errors.Is(err, ErrNotFound) {
		d.metrics.SnapshotLoad(metrics.OutcomeMissing)
		return Record{}, false
	}
	if err != nil {
		d.logger.Error("failed to read snapshot", zap.Error(err))
		d.metrics.SnapshotLoad(metrics.OutcomeError)
		return Record{}, false
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		d.logger.Error("failed to decode snapshot", zap.Error(err))
		d.metrics.SnapshotLoad(metrics.OutcomeError)
		return Record{}, false
	}
	return rec, true
}

// Clear removes the stored record.
func (d *DB) Clear(ctx context.Context) {
	if err := d.kv.Delete(ctx, StorageKey); err != nil {
		d.logger.Error("failed to clear snapshot", zap.Error(err))
	}
}

// LastSaved returns when the stored record was written.
func (d *DB) LastSaved(ctx context.Context) (time.Time, bool) {
	rec, ok := d.read(ctx)
	if !ok {
		return time.Time{}, false
	}
	return time.UnixMilli(rec.LastSaved), true
}

// Initialize returns the stored snapshot, or saves and returns a default
// one carrying name.
func (d *DB) Initialize(ctx context.Context, name string) *model.Snapshot {
	if snap, ok := d.Load(ctx); ok {
		return snap
	}
	snap := model.DefaultSnapshot(d.now())
	if name != "" {
		snap.Name = name
	}
	d.Save(ctx, snap)
	return snap
}
