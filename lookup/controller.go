// Package lookup owns the queried handle and keeps a profile and
// repository list in step with it.
//
// All state lives on a single goroutine. Setting a new handle starts a
// fetch cycle of two independent requests; each result is sent back to
// that goroutine and applied as soon as it arrives. Results that belong
// to a superseded cycle are dropped unless WithStaleResults is set.
package lookup

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrClosed is returned when waiting on a controller that has been closed.
var ErrClosed = errors.New("lookup: controller closed")

type slice int

const (
	sliceProfile slice = iota
	sliceRepositories
)

func (s slice) String() string {
	if s == sliceProfile {
		return "profile"
	}
	return "repositories"
}

// settled carries one request outcome back to the loop.
type settled struct {
	slice   slice
	cycle   uint64
	handle  string
	profile *Profile
	repos   []Repository
	err     error
}

// Option configures a Controller.
type Option func(*Controller)

// WithInitialHandle sets the handle fetched when the controller starts.
func WithInitialHandle(handle string) Option {
	return func(c *Controller) {
		c.initial = handle
	}
}

// WithLogger sets the entry failures and diagnostics are written to.
func WithLogger(entry *log.Entry) Option {
	return func(c *Controller) {
		if entry != nil {
			c.log = entry
		}
	}
}

// WithStaleResults lets results from superseded cycles overwrite the
// state, so whichever request settles last wins.
func WithStaleResults(allow bool) Option {
	return func(c *Controller) {
		c.allowStale = allow
	}
}

// WithRequestTimeout bounds each request. Zero means no timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.timeout = d
	}
}

// Controller tracks a queried handle and the data fetched for it.
type Controller struct {
	source     Source
	log        *log.Entry
	initial    string
	allowStale bool
	timeout    time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	handles     chan string
	results     chan settled
	subscribe   chan chan State
	unsubscribe chan chan State
	done        chan struct{}

	current   atomic.Pointer[State]
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New creates a controller and starts the fetch cycle for the initial
// handle.
func New(source Source, opts ...Option) *Controller {
	c := &Controller{
		source:      source,
		log:         log.NewEntry(log.StandardLogger()),
		initial:     DefaultHandle,
		handles:     make(chan string),
		results:     make(chan settled),
		subscribe:   make(chan chan State),
		unsubscribe: make(chan chan State),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())

	state := c.dispatch(State{Repositories: []Repository{}}, c.initial)
	c.store(state)

	go c.loop(state)
	return c
}

// SetHandle replaces the queried handle. A handle equal to the current
// one is ignored; any other value starts exactly one fetch cycle.
func (c *Controller) SetHandle(handle string) {
	select {
	case c.handles <- handle:
	case <-c.done:
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	return c.current.Load().clone()
}

// Subscribe returns a channel that always holds the most recent state.
// Intermediate states may be skipped by slow readers. The channel is
// closed when the controller closes or the returned func is called.
func (c *Controller) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)
	select {
	case c.subscribe <- ch:
	case <-c.done:
		close(ch)
		return ch, func() {}
	}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			select {
			case c.unsubscribe <- ch:
			case <-c.done:
			}
		})
	}
}

// Await sets the handle and blocks until both slices have settled for
// it.
func (c *Controller) Await(ctx context.Context, handle string) (State, error) {
	updates, unsubscribe := c.Subscribe()
	defer unsubscribe()

	c.SetHandle(handle)

	for {
		select {
		case s, ok := <-updates:
			if !ok {
				return c.Snapshot(), ErrClosed
			}
			if s.Handle == handle && s.Settled() {
				return s, nil
			}
		case <-ctx.Done():
			return c.Snapshot(), ctx.Err()
		}
	}
}

// Close stops the controller and cancels any requests still in flight.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.cancel()
		<-c.done
		c.wg.Wait()
	})
}

// Resolve runs a single fetch cycle for handle and returns the settled
// state.
func Resolve(ctx context.Context, source Source, handle string, opts ...Option) (State, error) {
	opts = append(slices.Clone(opts), WithInitialHandle(handle))
	c := New(source, opts...)
	defer c.Close()
	return c.Await(ctx, handle)
}

func (c *Controller) loop(state State) {
	defer close(c.done)

	subscribers := make(map[chan State]struct{})
	publish := func() {
		c.store(state)
		snapshot := c.current.Load().clone()
		for ch := range subscribers {
			deliver(ch, snapshot)
		}
	}

	for {
		select {
		case <-c.ctx.Done():
			for ch := range subscribers {
				close(ch)
			}
			return

		case handle := <-c.handles:
			if handle == state.Handle {
				c.log.WithField("handle", handle).Debug("handle unchanged, no fetch")
				continue
			}
			state = c.dispatch(state, handle)
			publish()

		case r := <-c.results:
			if c.apply(&state, r) {
				publish()
			}

		case ch := <-c.subscribe:
			subscribers[ch] = struct{}{}
			deliver(ch, c.current.Load().clone())

		case ch := <-c.unsubscribe:
			if _, ok := subscribers[ch]; ok {
				delete(subscribers, ch)
				close(ch)
			}
		}
	}
}

func (c *Controller) dispatch(state State, handle string) State {
	state.Handle = handle
	state.Cycle++
	state.ProfileStatus = StatusLoading
	state.RepositoriesStatus = StatusLoading

	c.log.WithFields(log.Fields{
		"handle": handle,
		"cycle":  state.Cycle,
	}).Debug("starting fetch cycle")

	c.wg.Add(2)
	go c.fetchRepositories(state.Cycle, handle)
	go c.fetchProfile(state.Cycle, handle)

	return state
}

func (c *Controller) fetchRepositories(cycle uint64, handle string) {
	defer c.wg.Done()

	ctx, cancel := c.requestContext()
	defer cancel()

	repos, err := c.source.Repositories(ctx, handle)
	c.settle(settled{
		slice:  sliceRepositories,
		cycle:  cycle,
		handle: handle,
		repos:  repos,
		err:    err,
	})
}

func (c *Controller) fetchProfile(cycle uint64, handle string) {
	defer c.wg.Done()

	ctx, cancel := c.requestContext()
	defer cancel()

	profile, err := c.source.Profile(ctx, handle)
	c.settle(settled{
		slice:   sliceProfile,
		cycle:   cycle,
		handle:  handle,
		profile: profile,
		err:     err,
	})
}

func (c *Controller) requestContext() (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(c.ctx, c.timeout)
	}
	return context.WithCancel(c.ctx)
}

func (c *Controller) settle(r settled) {
	select {
	case c.results <- r:
	case <-c.ctx.Done():
	}
}

// apply folds a settled result into state and reports whether the
// state changed.
func (c *Controller) apply(state *State, r settled) bool {
	entry := c.log.WithFields(log.Fields{
		"handle": r.handle,
		"slice":  r.slice.String(),
		"cycle":  r.cycle,
	})

	if r.err != nil {
		entry.WithError(r.err).Warnf("error fetching %s", r.slice)
	}

	current := r.cycle == state.Cycle
	if !current && !c.allowStale {
		entry.Debug("discarding result from superseded cycle")
		return false
	}

	switch r.slice {
	case sliceProfile:
		state.Profile = nil
		if r.err == nil && r.profile != nil {
			p := *r.profile
			state.Profile = &p
		}
		if current {
			state.ProfileStatus = StatusSettled
		}
	case sliceRepositories:
		state.Repositories = []Repository{}
		if r.err == nil && r.repos != nil {
			state.Repositories = slices.Clone(r.repos)
		}
		if current {
			state.RepositoriesStatus = StatusSettled
		}
	}

	return true
}

func (c *Controller) store(state State) {
	s := state.clone()
	c.current.Store(&s)
}

// deliver replaces whatever is buffered in ch with s. Only the loop
// sends on subscriber channels, so the send never blocks.
func deliver(ch chan State, s State) {
	select {
	case <-ch:
	default:
	}
	ch <- s
}
