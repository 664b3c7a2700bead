// Package scheduler triggers evaluation passes on a fixed interval, plus one
// immediate pass at startup. One pass runs to completion before the next tick
// is honored.
package scheduler

import (
	"context"
	"sync"
	"time"

	"ranch-alerting-service/internal/logging"
	"ranch-alerting-service/internal/models"
)

// PassRunner is the slice of the engine the scheduler needs.
type PassRunner interface {
	RunPass(ctx context.Context) ([]models.Notification, error)
}

// Sink receives accepted notifications after each pass. Optional.
type Sink interface {
	Deliver(ctx context.Context, notifications []models.Notification)
}

// Scheduler drives the evaluation loop.
type Scheduler struct {
	engine      PassRunner
	sink        Sink
	logger      *logging.Logger
	interval    time.Duration
	passTimeout time.Duration
	cancel      context.CancelFunc
}

// New builds a Scheduler. sink may be nil.
func New(engine PassRunner, sink Sink, logger *logging.Logger, interval, passTimeout time.Duration) *Scheduler {
	return &Scheduler{
		engine:      engine,
		sink:        sink,
		logger:      logger,
		interval:    interval,
		passTimeout: passTimeout,
	}
}

// Start launches the loop: one pass immediately, then one per interval, until
// Stop is called or the parent context is cancelled.
func (s *Scheduler) Start(parent context.Context, wg *sync.WaitGroup) {
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel

	wg.Add(1)
	go func() {
		defer wg.Done()
		s.runOnce(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Infof("Scheduler stopped")
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()
}

// Stop cancels the loop.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// runOnce executes a single pass under the defensive per-pass timeout.
func (s *Scheduler) runOnce(ctx context.Context) {
	passCtx, cancel := context.WithTimeout(ctx, s.passTimeout)
	defer cancel()

	start := time.Now()
	accepted, err := s.engine.RunPass(passCtx)
	if err != nil {
		s.logger.Errorf("Evaluation pass failed after %v: %v", time.Since(start), err)
		return
	}
	s.logger.Infof("Evaluation pass completed in %v, %d notifications accepted", time.Since(start), len(accepted))

	if s.sink != nil && len(accepted) > 0 {
		s.sink.Deliver(passCtx, accepted)
	}
}
