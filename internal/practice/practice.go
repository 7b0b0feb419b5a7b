// Package practice turns a finished test into snapshot updates: XP,
// personal bests, streak and history.
package practice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/typeledger/internal/ape"
	"github.com/verte-zerg/typeledger/internal/funbox"
	"github.com/verte-zerg/typeledger/internal/model"
	"github.com/verte-zerg/typeledger/internal/snapshot"
	"github.com/verte-zerg/typeledger/internal/xp"
)

// ErrNotInitialized is returned when the store holds no snapshot.
var ErrNotInitialized = errors.New("practice: snapshot not initialized")

// Submitter sends results to the remote API.
type Submitter interface {
	SaveResult(ctx context.Context, result model.Result) (ape.Response, error)
}

// ConfigSource exposes the current server configuration.
type ConfigSource interface {
	Get() ape.Configuration
}

// Outcome summarizes what a completed test changed.
type Outcome struct {
	Result    model.Result
	XP        int
	Breakdown xp.Breakdown
	IsPB      bool
	// PreviousPB is the wpm of the personal best the result was compared
	// against, 0 when there was none.
	PreviousPB float64
	TagPBs     []string
	Streak     int
	Saved      bool
}

// Service records completed tests.
type Service struct {
	store    *snapshot.Store
	calc     *xp.Calculator
	remote   Submitter
	config   ConfigSource
	funboxes funbox.Lookup
	logger   *zap.Logger
	now      func() time.Time
	loc      *time.Location
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the calendar used for streak days. Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithFunboxes overrides the funbox metadata lookup.
func WithFunboxes(lookup funbox.Lookup) Option {
	return func(s *Service) {
		if lookup != nil {
			s.funboxes = lookup
		}
	}
}

// New returns a Service.
func New(store *snapshot.Store, calc *xp.Calculator, remote Submitter, config ConfigSource, opts ...Option) *Service {
	s := &Service{
		store:    store,
		calc:     calc,
		remote:   remote,
		config:   config,
		funboxes: funbox.Get,
		logger:   zap.NewNop(),
		now:      time.Now,
		loc:      time.UTC,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Complete records a finished test.
func (s *Service) Complete(ctx context.Context, ev model.CompletedEvent) (Outcome, error) {
	snap := s.store.Get()
	if snap == nil {
		return Outcome{}, ErrNotInitialized
	}
	now := s.now()

	r := ev.Result
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Timestamp == 0 {
		r.Timestamp = now.UnixMilli()
	}
	if r.Tags == nil {
		r.Tags = append([]string{}, snap.ActiveTagIDs()...)
	}
	ev.Result = r

	var lastAt time.Time
	if last, ok := snap.LastResult(); ok {
		lastAt = last.Time()
	}
	total, breakdown := s.calc.Calculate(ev, snap.XP, lastAt)

	out := Outcome{Breakdown: breakdown, XP: max(total, 0)}

	key := r.Variant()
	canPB := r.Mode != model.ModeQuote && !r.BailedOut &&
		funbox.CanGetPB(funbox.Resolve(s.funboxes, r.Funbox))
	// Tag PBs are only written once the result is going to be recorded.
	var tagPBs []string
	if canPB {
		prev, ok := s.store.LocalPB(r.Mode, r.Mode2, key, r.Funbox)
		if ok {
			out.PreviousPB = prev.WPM
		}
		out.IsPB = !ok || r.WPM > prev.WPM
		for _, tagID := range r.Tags {
			if r.WPM > s.store.TagPB(tagID, r.Mode, r.Mode2, key) {
				tagPBs = append(tagPBs, tagID)
			}
		}
	}
	r.IsPB = out.IsPB

	out.Streak = s.streak(snap, lastAt, now)

	resp, err := s.remote.SaveResult(ctx, r)
	if err != nil {
		return Outcome{}, fmt.Errorf("submit result: %w", err)
	}
	if !resp.OK() {
		s.logger.Debug("remote result save skipped",
			zap.Int("status", resp.Status),
			zap.String("message", resp.Message()),
		)
	}

	out.Result = r
	if !s.config.Get().Results.SavingEnabled {
		s.logger.Warn("result saving is disabled, result not recorded", zap.String("id", r.ID))
		return out, nil
	}

	stats := model.PBStats{WPM: r.WPM, Acc: r.Acc, Raw: r.RawWPM, Consistency: r.Consistency}
	for _, tagID := range tagPBs {
		if s.store.SaveTagPB(tagID, r.Mode, r.Mode2, key, stats) {
			out.TagPBs = append(out.TagPBs, tagID)
		}
	}

	s.store.RecordResult(ctx, snapshot.LocalResult{
		Result: &r,
		XP:     &total,
		Streak: &out.Streak,
		IsPB:   out.IsPB,
	})
	out.Saved = true
	s.logger.Info("result recorded",
		zap.String("id", r.ID),
		zap.String("mode", string(r.Mode)),
		zap.String("mode2", string(r.Mode2)),
		zap.Float64("wpm", r.WPM),
		zap.Int("xp", out.XP),
		zap.Bool("pb", out.IsPB),
	)
	return out, nil
}

// streak extends the run when the previous result was yesterday, keeps it
// on the same day and restarts it otherwise.
func (s *Service) streak(snap *model.Snapshot, lastAt, now time.Time) int {
	if lastAt.IsZero() {
		return 1
	}
	today := dayOf(now, s.loc)
	last := dayOf(lastAt, s.loc)
	switch {
	case last.Equal(today):
		return max(snap.Streak, 1)
	case last.Equal(today.AddDate(0, 0, -1)):
		return snap.Streak + 1
	default:
		return 1
	}
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
