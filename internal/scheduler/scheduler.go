// Package scheduler drives the optional periodic batch sync (§5, §6.2
// scheduler.batch_sync_interval): the same repository-wide sync the HTTP
// Surface exposes on demand via `POST /api/v1/sync`, run on a cron cadence
// so the engine can operate as a long-lived process with no external cron
// caller. Disabled entirely when no interval is configured.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/prabasiva/greport/pkg/logger"
)

// BatchSyncFunc runs one full batch sync across every tracked repository,
// the same operation `POST /api/v1/sync` triggers on demand.
type BatchSyncFunc func(ctx context.Context) error

// Scheduler wraps a robfig/cron runner with the lifecycle shape the rest of
// the engine's long-running components use (Start/Stop against a
// context.Context, idempotent, safe to call Stop without a prior Start).
type Scheduler struct {
	cron     *cron.Cron
	syncAll  BatchSyncFunc
	log      *logger.Logger
	timeout  time.Duration

	mu      sync.Mutex
	running bool
}

// New builds a Scheduler from a cron expression. An empty spec disables the
// scheduler: New returns (nil, nil), and callers should skip Start/Stop
// entirely — this is the "disabled by default" state §6.2 describes.
func New(spec string, syncAll BatchSyncFunc, log *logger.Logger) (*Scheduler, error) {
	if spec == "" {
		return nil, nil
	}
	if log == nil {
		log = logger.NewDefault("scheduler")
	}
	c := cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)))
	s := &Scheduler{cron: c, syncAll: syncAll, log: log, timeout: 30 * time.Minute}
	if _, err := c.AddFunc(spec, s.tick); err != nil {
		return nil, err
	}
	return s, nil
}

// Start begins the cron runner. It returns immediately; the runner drives
// itself on its own goroutine until Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}
	s.running = true
	s.cron.Start()
	s.log.Info("batch sync scheduler started")
	return nil
}

// Stop halts the cron runner, waiting for any in-flight tick to finish or
// for ctx to expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.log.Info("batch sync scheduler stopped")
	return nil
}

// tick runs one batch sync, bounded by s.timeout so a stuck host call can
// never wedge the scheduler past the next scheduled tick indefinitely.
func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.syncAll(ctx); err != nil {
		s.log.WithError(err).Warn("scheduled batch sync failed")
	}
}
