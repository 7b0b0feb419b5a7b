// Package snapshot owns the live user snapshot: it guards replacement,
// persists every change and notifies observers.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/typeledger/internal/ape"
	"github.com/verte-zerg/typeledger/internal/event"
	"github.com/verte-zerg/typeledger/internal/funbox"
	"github.com/verte-zerg/typeledger/internal/metrics"
	"github.com/verte-zerg/typeledger/internal/model"
)

// Persister stores the snapshot between runs. localdb.DB implements it.
type Persister interface {
	Save(ctx context.Context, snap *model.Snapshot)
	Load(ctx context.Context) (*model.Snapshot, bool)
	Initialize(ctx context.Context, name string) *model.Snapshot
}

// Notification levels understood by a Notifier.
const (
	LevelError   = -1
	LevelNotice  = 0
	LevelSuccess = 1
)

// Notifier shows short messages to the user.
type Notifier interface {
	Add(message string, level int)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(message string, level int)

// Add implements Notifier.
func (f NotifierFunc) Add(message string, level int) { f(message, level) }

// InitError reports that the initial snapshot could not be established.
type InitError struct {
	Message      string
	ResponseCode int
	Err          error
}

// NewInitError returns an InitError with the given response code.
func NewInitError(message string, responseCode int) *InitError {
	return &InitError{Message: message, ResponseCode: responseCode}
}

func (e *InitError) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("init snapshot: %v", e.Err)
	}
	return fmt.Sprintf("init snapshot: %s (code %d)", e.Message, e.ResponseCode)
}

func (e *InitError) Unwrap() error { return e.Err }

// Config wires a Store to its collaborators. Persister is required; every
// other field has a default.
type Config struct {
	Persister Persister
	Bus       *event.Bus
	Gate      ape.Gate
	Funboxes  funbox.Lookup
	Notifier  Notifier
	Logger    *zap.Logger
	Metrics   *metrics.Manager
	// Clock defaults to time.Now.
	Clock func() time.Time
	// Location sets the calendar used for activity days. Defaults to UTC.
	Location *time.Location
	// Name is given to a freshly created snapshot.
	Name string
}

// Store holds the single live snapshot. It is not safe for concurrent use:
// callers drive it from one goroutine.
type Store struct {
	snap *model.Snapshot

	persister Persister
	bus       *event.Bus
	gate      ape.Gate
	funboxes  funbox.Lookup
	notifier  Notifier
	logger    *zap.Logger
	metrics   *metrics.Manager
	now       func() time.Time
	loc       *time.Location
	name      string
}

// New returns an uninitialized Store.
func New(cfg Config) *Store {
	s := &Store{
		persister: cfg.Persister,
		bus:       cfg.Bus,
		gate:      cfg.Gate,
		funboxes:  cfg.Funboxes,
		notifier:  cfg.Notifier,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		now:       cfg.Clock,
		loc:       cfg.Location,
		name:      cfg.Name,
	}
	if s.bus == nil {
		s.bus = event.NewBus()
	}
	if s.gate == nil {
		s.gate = ape.NewStaticGate(ape.Offline())
	}
	if s.funboxes == nil {
		s.funboxes = funbox.Get
	}
	if s.notifier == nil {
		s.notifier = NotifierFunc(func(string, int) {})
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	return s
}

// Bus returns the bus change notifications are dispatched on.
func (s *Store) Bus() *event.Bus {
	return s.bus
}

// Get returns the current snapshot, or nil before Init.
func (s *Store) Get() *model.Snapshot {
	return s.snap
}

type setOptions struct {
	dispatch bool
}

// SetOption adjusts a Set call.
type SetOption func(*setOptions)

// WithoutEvent suppresses the change notification.
func WithoutEvent() SetOption {
	return func(o *setOptions) { o.dispatch = false }
}

// Set installs snap as the current snapshot. The banned, verified and
// lbOptOut values of the outgoing snapshot always win over those of snap.
// A non-nil snapshot is persisted before observers are notified.
func (s *Store) Set(ctx context.Context, snap *model.Snapshot, opts ...SetOption) {
	o := setOptions{dispatch: true}
	for _, opt := range opts {
		opt(&o)
	}

	var banned, verified, lbOptOut bool
	if prev := s.snap; prev != nil {
		banned, verified, lbOptOut = prev.Banned, prev.Verified, prev.LbOptOut
	}

	s.snap = snap
	if snap != nil {
		snap.Banned = banned
		snap.Verified = verified
		snap.LbOptOut = lbOptOut
		s.persister.Save(ctx, snap)
	}

	if o.dispatch {
		s.dispatch(false)
	}
}

func (s *Store) dispatch(initial bool) {
	s.metrics.Notification()
	s.bus.Dispatch(event.Event{Type: event.SnapshotUpdated, IsInitial: initial})
}

// Init waits for the server configuration and installs the persisted
// snapshot, creating and saving a default one when none exists. On failure
// an in-memory default is installed and an *InitError is returned.
func (s *Store) Init(ctx context.Context) (*model.Snapshot, error) {
	snap, err := s.establish(ctx)
	if err != nil {
		s.snap = model.DefaultSnapshot(s.now())
		var ie *InitError
		if errors.As(err, &ie) {
			return s.snap, ie
		}
		return s.snap, &InitError{Message: err.Error(), Err: err}
	}
	s.snap = snap
	s.dispatch(true)
	return snap, nil
}

func (s *Store) establish(ctx context.Context) (*model.Snapshot, error) {
	if err := s.gate.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for configuration: %w", err)
	}
	if snap, ok := s.persister.Load(ctx); ok {
		s.logger.Debug("loaded local snapshot", zap.Int("results", len(snap.Results)))
		return snap, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.logger.Info("creating local snapshot")
	return s.persister.Initialize(ctx, s.name), nil
}

// save persists the current snapshot without notifying observers.
func (s *Store) save(ctx context.Context) {
	s.Set(ctx, s.snap, WithoutEvent())
}
