// Package screen holds the dashboard's load state and the per-screen view
// state derived from user intents.
package screen

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sw33tLie/covidboard/internal/utils"
	"github.com/sw33tLie/covidboard/pkg/stats"
)

// Status is the load status of the dashboard.
type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// State is an immutable snapshot of the controller. Data is nil until the
// first successful load and is kept when a later load fails.
type State struct {
	Status     Status
	Data       *stats.AggregateData
	Err        error
	Generation uint64 // bumped on every successful load
	LoadedAt   time.Time
}

// Fetcher produces a fresh aggregate. gateway.Client satisfies it.
type Fetcher interface {
	FetchAggregate(ctx context.Context) (*stats.AggregateData, error)
}

// ErrStopped is returned by Load once a load has failed.
var ErrStopped = errors.New("loading stopped after a failure")

// ErrBusy is returned when a load is already in flight.
var ErrBusy = errors.New("a load is already in progress")

// Controller is the single source of truth for the dashboard data. It is
// safe for concurrent use.
type Controller struct {
	mu        sync.RWMutex
	state     State
	started   time.Time
	observers map[int]func(State)
	nextID    int
}

func NewController() *Controller {
	return &Controller{
		started:   time.Now(),
		observers: make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Uptime returns how long the controller has existed.
func (c *Controller) Uptime() time.Duration {
	return time.Since(c.started)
}

// Stopped reports whether the last load failed. Automatic loads are refused
// until Reload succeeds.
func (c *Controller) Stopped() bool {
	return c.State().Status == Failed
}

// Subscribe registers fn to receive every new state. The returned function
// removes the subscription.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.observers[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.observers, id)
		c.mu.Unlock()
	}
}

// StartLoad moves to Loading. It fails when a load is in flight.
func (c *Controller) StartLoad() error {
	return c.transition(func(s *State) error {
		if s.Status == Loading {
			return ErrBusy
		}
		s.Status = Loading
		s.Err = nil
		return nil
	})
}

// Succeed stores data, bumps the generation and moves to Ready.
func (c *Controller) Succeed(data *stats.AggregateData) error {
	return c.transition(func(s *State) error {
		if s.Status != Loading {
			return errors.New("succeed without a load in progress")
		}
		s.Status = Ready
		s.Data = data
		s.Err = nil
		s.Generation++
		s.LoadedAt = time.Now()
		return nil
	})
}

// Fail records err and moves to Failed.
func (c *Controller) Fail(err error) error {
	return c.transition(func(s *State) error {
		if s.Status != Loading {
			return errors.New("fail without a load in progress")
		}
		s.Status = Failed
		s.Err = err
		return nil
	})
}

// Load runs one fetch cycle unless a previous one failed.
func (c *Controller) Load(ctx context.Context, f Fetcher) error {
	if c.Stopped() {
		return ErrStopped
	}
	return c.load(ctx, f)
}

// Reload runs a fetch cycle even after a failure. It is meant for explicit
// user requests only.
func (c *Controller) Reload(ctx context.Context, f Fetcher) error {
	return c.load(ctx, f)
}

func (c *Controller) load(ctx context.Context, f Fetcher) error {
	if err := c.StartLoad(); err != nil {
		return err
	}

	data, err := f.FetchAggregate(ctx)
	if err != nil {
		utils.Log.WithError(err).Error("Failed to load dashboard data")
		if ferr := c.Fail(err); ferr != nil {
			return ferr
		}
		return err
	}

	utils.Log.WithField("countries", len(data.Countries)).Info("Dashboard data loaded")
	return c.Succeed(data)
}

func (c *Controller) transition(apply func(*State) error) error {
	c.mu.Lock()
	next := c.state
	if err := apply(&next); err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	observers := make([]func(State), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
	return nil
}
