// Package engine runs cony's background maintenance: flagging patients who
// stopped checking in and purging dead sign-in sessions.
package engine

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type sweepStore interface {
	MarkInactive(before time.Time) (int64, error)
	PurgeExpiredSessions(cutoff time.Time) (int64, error)
}

type sweepReporter interface {
	SweepFinished(marked int64, err error)
}

// sessionRetention is how long ended or expired sessions are kept.
const sessionRetention = 7 * 24 * time.Hour

// Engine owns the periodic sweep.
type Engine struct {
	store         sweepStore
	log           *zap.Logger
	reporter      sweepReporter
	inactiveAfter time.Duration
	interval      time.Duration
	now           func() time.Time
}

// Option customizes an Engine.
type Option func(*Engine)

// WithReporter sends sweep results to r.
func WithReporter(r sweepReporter) Option {
	return func(e *Engine) { e.reporter = r }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine that marks patients inactive after inactiveAfterDays
// without activity, checking every interval.
func New(store sweepStore, logger *zap.Logger, inactiveAfterDays int, interval time.Duration, opts ...Option) *Engine {
	e := &Engine{
		store:         store,
		log:           logger.Named("engine"),
		inactiveAfter: time.Duration(inactiveAfterDays) * 24 * time.Hour,
		interval:      interval,
		now:           time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// SweepResult reports what one sweep changed.
type SweepResult struct {
	MarkedInactive int64
	SessionsPurged int64
}

// Sweep runs one maintenance pass.
func (e *Engine) Sweep() (SweepResult, error) {
	now := e.now()
	var res SweepResult

	marked, err := e.store.MarkInactive(now.Add(-e.inactiveAfter))
	if e.reporter != nil {
		e.reporter.SweepFinished(marked, err)
	}
	if err != nil {
		return res, fmt.Errorf("sweep mark inactive: %w", err)
	}
	res.MarkedInactive = marked

	purged, err := e.store.PurgeExpiredSessions(now.Add(-sessionRetention))
	if err != nil {
		return res, fmt.Errorf("sweep purge sessions: %w", err)
	}
	res.SessionsPurged = purged
	return res, nil
}

func (e *Engine) sweepAndLog() {
	res, err := e.Sweep()
	if err != nil {
		e.log.Error("sweep failed", zap.Error(err))
		return
	}
	if res.MarkedInactive > 0 || res.SessionsPurged > 0 {
		e.log.Info("sweep",
			zap.Int64("marked_inactive", res.MarkedInactive),
			zap.Int64("sessions_purged", res.SessionsPurged))
	}
}

// Run sweeps once at startup and then every interval until ctx is done.
// It always returns nil; sweep failures are logged and retried next tick.
func (e *Engine) Run(ctx context.Context) error {
	e.sweepAndLog()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.sweepAndLog()
		case <-ctx.Done():
			return nil
		}
	}
}
