// Package ape holds the remote collaborators of the local store: the server
// configuration gate and the API client. This build runs offline, so both
// resolve immediately with fixed values.
package ape

import "context"

// Configuration is the subset of server configuration the client reads.
type Configuration struct {
	Maintenance  bool
	Results      ResultsConfiguration
	Users        UsersConfiguration
	Leaderboards LeaderboardsConfiguration
}

// ResultsConfiguration controls result saving.
type ResultsConfiguration struct {
	SavingEnabled bool
	MaxBatchSize  int
	RegularLimit  int
	PremiumLimit  int
}

// UsersConfiguration controls account features.
type UsersConfiguration struct {
	SignUp     bool
	XPEnabled  bool
	InboxLimit int
}

// LeaderboardsConfiguration controls leaderboard features.
type LeaderboardsConfiguration struct {
	MinTimeTyping float64
	WeeklyXP      bool
}

// Offline is the configuration served when no server is reachable.
func Offline() Configuration {
	return Configuration{
		Results: ResultsConfiguration{
			SavingEnabled: true,
			MaxBatchSize:  100,
			RegularLimit:  1000,
			PremiumLimit:  10000,
		},
	}
}

// Gate is awaited once before the snapshot is established.
type Gate interface {
	Wait(ctx context.Context) error
}

// GateFunc adapts a function to Gate.
type GateFunc func(ctx context.Context) error

// Wait implements Gate.
func (f GateFunc) Wait(ctx context.Context) error {
	return f(ctx)
}

// StaticGate serves a fixed configuration and is ready on construction.
type StaticGate struct {
	cfg   Configuration
	ready chan struct{}
}

// NewStaticGate returns a gate that is already settled with cfg.
func NewStaticGate(cfg Configuration) *StaticGate {
	ready := make(chan struct{})
	close(ready)
	return &StaticGate{cfg: cfg, ready: ready}
}

// Wait implements Gate.
func (g *StaticGate) Wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Get returns the configuration.
func (g *StaticGate) Get() Configuration {
	return g.cfg
}
