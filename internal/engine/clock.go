package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mbellver/estatesim/internal/events"
	"github.com/mbellver/estatesim/internal/market"
	"github.com/mbellver/estatesim/internal/platform/metrics"
)

// Preset tick intervals. One tick advances the world by one simulated day.
const (
	SpeedSlow   = 1000 * time.Millisecond
	SpeedNormal = 500 * time.Millisecond
	SpeedFast   = 100 * time.Millisecond
)

// Clock drives the world: each tick runs the four phases in order
// (day advance with billing, mortgage servicing, rate review, protection
// billing), and every eventCheckTicks ticks it rolls the world event engine.
// Pausing short-circuits whole ticks; an in-flight tick always completes.
type Clock struct {
	world *World

	interval     atomic.Int64 // nanoseconds
	paused       atomic.Bool
	rateChanged  chan struct{}
	stopOnce     sync.Once
	stopChan     chan struct{}
	eventCheckAt int
}

// NewClock wires a clock to a world at the configured tick interval.
func NewClock(w *World) *Clock {
	c := &Clock{
		world:        w,
		rateChanged:  make(chan struct{}, 1),
		stopChan:     make(chan struct{}),
		eventCheckAt: w.cfg.Simulation.EventCheckTicks,
	}
	c.interval.Store(int64(w.cfg.Simulation.TickInterval))
	return c
}

// Start runs the tick loop until the context is cancelled or Stop is called.
// Call in a goroutine.
func (c *Clock) Start(ctx context.Context) {
	c.world.log.Info("simulation clock started at %v per day", time.Duration(c.interval.Load()))

	ticker := time.NewTicker(time.Duration(c.interval.Load()))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.world.log.Info("simulation clock stopped by context")
			return
		case <-c.stopChan:
			c.world.log.Info("simulation clock stopped")
			return
		case <-c.rateChanged:
			ticker.Reset(time.Duration(c.interval.Load()))
		case <-ticker.C:
			if c.paused.Load() {
				continue
			}
			c.tick()
		}
	}
}

// Stop gracefully stops the clock.
func (c *Clock) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

// SetTickRate changes the tick interval; takes effect before the next tick.
func (c *Clock) SetTickRate(d time.Duration) CommandResult {
	if d <= 0 {
		return CommandResult{OK: false, Message: "Tick rate must be positive."}
	}
	c.interval.Store(int64(d))
	select {
	case c.rateChanged <- struct{}{}:
	default:
	}
	return CommandResult{OK: true, Message: fmt.Sprintf("Tick rate set to %v.", d)}
}

// SetPaused pauses or resumes the simulation at the next tick boundary.
func (c *Clock) SetPaused(paused bool) CommandResult {
	c.paused.Store(paused)
	if paused {
		return CommandResult{OK: true, Message: "Simulation paused."}
	}
	return CommandResult{OK: true, Message: "Simulation resumed."}
}

// Paused reports whether the clock is currently paused.
func (c *Clock) Paused() bool {
	return c.paused.Load()
}

// AdvanceTicks runs n simulation steps back to back, without waiting on the
// wall clock. Used by headless scenario runs.
func (c *Clock) AdvanceTicks(n int) {
	for i := 0; i < n; i++ {
		c.tick()
	}
}

// tick runs one full simulation step under the world mutex.
func (c *Clock) tick() {
	started := time.Now()
	w := c.world

	w.mu.Lock()
	w.tickCount++

	w.advanceDay()
	w.serviceMortgage()
	w.reviewInterestRate()
	w.billRateProtection()

	if w.tickCount%int64(c.eventCheckAt) == 0 {
		w.checkWorldEvents()
	}
	w.mu.Unlock()

	metrics.Get().RecordTick(time.Since(started))
}

// checkWorldEvents expires finished events, rolls the template library and
// cascades related events. Callers hold the mutex.
func (w *World) checkWorldEvents() {
	var expired []string
	w.events, expired = market.ExpireEvents(w.events, w.currentDate)
	for _, id := range expired {
		w.record(events.EntryWorldEventEnded, -1, 0, id)
		metrics.Get().RecordWorldEvent(false)
	}

	spawned := market.CheckForNewEvents(w.rng, w.events, w.currentDate)
	w.events = append(w.events, spawned...)

	related := market.CheckForRelatedEvents(w.rng, w.events, w.currentDate)
	w.events = append(w.events, related...)

	for _, e := range append(spawned, related...) {
		w.record(events.EntryWorldEventStarted, -1, 0, fmt.Sprintf("%s (%s)", e.ID, e.Title))
		metrics.Get().RecordWorldEvent(true)
		if e.Severity == market.SeverityMajor {
			w.log.Warn("major event: %s", e.Title)
		}
	}
}
