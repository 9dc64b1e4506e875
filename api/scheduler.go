/*
scheduler.go - Daily taken-today reset scheduler

PURPOSE:
  Clears every member's taken-today marker once per day so a new
  dispensing day starts with a clean slate.

DESIGN:
  - Runs a background goroutine that fires at a configured hour
  - First fire is aligned to the next occurrence of ResetHour, then
    every 24 hours after that
  - Reset failures are logged and retried on the next fire; they never
    stop the scheduler

USAGE:
  scheduler := NewDailyResetScheduler(store, logger)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: ResetTaken endpoint (manual reset)
  - dispense/store.go: MemberStore.ResetTookToday
*/
package api

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/carebox/dispense-engine/dispense"
)

// DailyResetScheduler clears taken-today markers at a fixed hour each day.
type DailyResetScheduler struct {
	Store     dispense.Store
	Logger    *zap.Logger
	ResetHour int // local hour of day, 0-23
	Enabled   bool

	timer *time.Timer
	stop  chan bool
	wg    sync.WaitGroup
	mu    sync.Mutex
}

// NewDailyResetScheduler creates a scheduler that resets at midnight.
func NewDailyResetScheduler(store dispense.Store, logger *zap.Logger) *DailyResetScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyResetScheduler{
		Store:   store,
		Logger:  logger,
		Enabled: true,
		stop:    make(chan bool),
	}
}

// Start begins the scheduler.
func (ds *DailyResetScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		ds.Logger.Info("daily reset scheduler disabled, not starting")
		return
	}

	delay := ds.untilNextFire(time.Now())
	ds.timer = time.NewTimer(delay)
	ds.wg.Add(1)

	go ds.run()

	ds.Logger.Info("daily reset scheduler started",
		zap.Int("reset_hour", ds.ResetHour),
		zap.Duration("first_fire_in", delay))
}

// Stop stops the scheduler.
func (ds *DailyResetScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.timer != nil {
		ds.timer.Stop()
		close(ds.stop)
		ds.wg.Wait()
		ds.Logger.Info("daily reset scheduler stopped")
	}
}

// RunNow triggers an immediate reset (for testing/admin).
func (ds *DailyResetScheduler) RunNow() {
	ds.reset()
}

func (ds *DailyResetScheduler) run() {
	defer ds.wg.Done()

	for {
		select {
		case <-ds.timer.C:
			ds.reset()
			ds.timer.Reset(ds.untilNextFire(time.Now()))
		case <-ds.stop:
			return
		}
	}
}

func (ds *DailyResetScheduler) reset() {
	ctx := context.Background()

	cleared, err := ds.Store.ResetTookToday(ctx)
	if err != nil {
		ds.Logger.Error("daily taken-today reset failed", zap.Error(err))
		return
	}

	ds.Logger.Info("daily taken-today reset completed", zap.Int64("members_cleared", cleared))
}

// untilNextFire returns the duration until the next occurrence of ResetHour.
func (ds *DailyResetScheduler) untilNextFire(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), ds.ResetHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}
