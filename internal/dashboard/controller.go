// Package dashboard holds the per-session view state of the dashboard.
//
// Every view (summary, teams, players, stats and the two freshness lines) is
// driven by a Controller: a small state machine that issues one fetch per
// selection and keeps only the result of the latest one.
package dashboard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/blockedby/npb-dashboard/internal/logger"
)

// State is the lifecycle state of a view.
type State string

// State constants.
const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

// FetchFunc loads the data of a view for a selection.
type FetchFunc[S comparable, T any] func(ctx context.Context, sel S) (T, error)

// Snapshot is a copy of a controller's state.
type Snapshot[S comparable, T any] struct {
	View       string    `json:"view"`
	State      State     `json:"state"`
	Selection  S         `json:"selection"`
	Generation uint64    `json:"generation"`
	Data       T         `json:"data"`
	HasData    bool      `json:"has_data"`
	Error      string    `json:"error,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Change describes a state transition of one view.
type Change struct {
	View       string        `json:"view"`
	State      State         `json:"state"`
	Generation uint64        `json:"generation"`
	Error      string        `json:"error,omitempty"`
	Took       time.Duration `json:"took"`
}

// Controller runs the idle → loading → ready|failed cycle of one view.
//
// Each Select starts a new generation: the previous in-flight fetch is
// cancelled, prior data is dropped, and when a response arrives it is applied
// only if its generation is still current. A late response for an old
// selection therefore never overwrites a newer one.
type Controller[S comparable, T any] struct {
	view     string
	fetch    FetchFunc[S, T]
	onChange func(Change)
	log      *logger.Logger

	mu       sync.Mutex
	snap     Snapshot[S, T]
	cancelFn context.CancelFunc
	started  time.Time
	closed   bool
	wg       sync.WaitGroup
}

// NewController creates an idle controller. onChange may be nil; it is
// called outside the controller lock.
func NewController[S comparable, T any](view string, fetch FetchFunc[S, T], onChange func(Change), log *logger.Logger) *Controller[S, T] {
	if log == nil {
		log = logger.Get()
	}
	return &Controller[S, T]{
		view:     view,
		fetch:    fetch,
		onChange: onChange,
		log:      log,
		snap:     Snapshot[S, T]{View: view, State: StateIdle},
	}
}

// Select moves the view to loading for sel and starts the fetch in the
// background. It returns the generation of the new fetch, or 0 if the
// controller is closed.
func (c *Controller[S, T]) Select(sel S) uint64 {
	return c.start(sel, false)
}

// Reload re-fetches the current selection.
func (c *Controller[S, T]) Reload() uint64 {
	c.mu.Lock()
	sel := c.snap.Selection
	c.mu.Unlock()
	return c.Select(sel)
}

// EnsureStarted selects sel if the view has never been loaded. It reports
// whether a fetch was started. Concurrent callers start at most one fetch.
func (c *Controller[S, T]) EnsureStarted(sel S) bool {
	return c.start(sel, true) != 0
}

// start bumps the generation and launches the fetch. With onlyIdle set it
// does nothing unless the view is still idle; the check and the bump share
// one critical section.
func (c *Controller[S, T]) start(sel S, onlyIdle bool) uint64 {
	c.mu.Lock()
	if c.closed || (onlyIdle && c.snap.State != StateIdle) {
		c.mu.Unlock()
		return 0
	}

	if c.cancelFn != nil {
		c.cancelFn()
	}

	// detached from any request context: the fetch outlives the handler
	// that triggered it
	ctx, cancel := context.WithCancel(context.Background())
	c.cancelFn = cancel

	var zero T
	c.snap.Generation++
	c.snap.State = StateLoading
	c.snap.Selection = sel
	c.snap.Data = zero
	c.snap.HasData = false
	c.snap.Error = ""
	c.snap.UpdatedAt = time.Now()
	c.started = c.snap.UpdatedAt
	gen := c.snap.Generation

	c.wg.Add(1)
	c.mu.Unlock()

	c.log.Debug().Str("view", c.view).Uint64("generation", gen).Interface("selection", sel).Msg("fetch started")
	c.notify(Change{View: c.view, State: StateLoading, Generation: gen})

	go c.run(ctx, gen, sel)
	return gen
}

// Snapshot returns a copy of the current state.
func (c *Controller[S, T]) Snapshot() Snapshot[S, T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// View returns the view name.
func (c *Controller[S, T]) View() string {
	return c.view
}

// Wait blocks until all fetches started so far have finished.
func (c *Controller[S, T]) Wait() {
	c.wg.Wait()
}

// Close cancels the in-flight fetch and ignores any later result.
func (c *Controller[S, T]) Close() {
	c.mu.Lock()
	c.closed = true
	if c.cancelFn != nil {
		c.cancelFn()
		c.cancelFn = nil
	}
	c.mu.Unlock()
	c.wg.Wait()
}

func (c *Controller[S, T]) run(ctx context.Context, gen uint64, sel S) {
	defer c.wg.Done()

	data, err := c.fetch(ctx, sel)

	c.mu.Lock()
	if c.closed || gen != c.snap.Generation {
		current := c.snap.Generation
		c.mu.Unlock()
		c.log.Debug().
			Str("view", c.view).
			Uint64("generation", gen).
			Uint64("current", current).
			Msg("discarding stale response")
		return
	}

	took := time.Since(c.started)
	c.snap.UpdatedAt = time.Now()
	c.cancelFn = nil
	if err != nil {
		c.snap.State = StateFailed
		c.snap.Error = errorMessage(err)
	} else {
		c.snap.State = StateReady
		c.snap.Data = data
		c.snap.HasData = true
	}
	change := Change{View: c.view, State: c.snap.State, Generation: gen, Error: c.snap.Error, Took: took}
	c.mu.Unlock()

	if err != nil {
		c.log.Warn().Err(err).Str("view", c.view).Uint64("generation", gen).Msg("fetch failed")
	} else {
		c.log.Debug().Str("view", c.view).Uint64("generation", gen).Dur("took", took).Msg("fetch completed")
	}
	c.notify(change)
}

func (c *Controller[S, T]) notify(ch Change) {
	if c.onChange != nil {
		c.onChange(ch)
	}
}

func errorMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}
