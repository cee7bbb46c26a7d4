package app

import (
	"context"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/jonboulle/clockwork"
	"keyportal/internal/platform/storage"
)

const (
	defaultMaxOrigins  = 10000
	defaultIdleTimeout = 30 * time.Minute
)

// Registry holds the live State of recently seen origins. It keeps at
// most MaxOrigins of them; the least recently seen is closed first, and
// Sweep closes any not seen for IdleTimeout. Closing never touches the
// persisted store, so an evicted origin is restored on its next request.
type Registry struct {
	backend storage.Backend
	opts    Options
	clock   clockwork.Clock
	idle    time.Duration

	mu     sync.RWMutex
	states *lru.Cache
}

func NewRegistry(backend storage.Backend, opts Options) (*Registry, error) {
	size := opts.MaxOrigins
	if size <= 0 {
		size = defaultMaxOrigins
	}
	idle := opts.IdleTimeout
	if idle <= 0 {
		idle = defaultIdleTimeout
	}
	clock := opts.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	states, err := lru.NewWithEvict(size, func(_ interface{}, value interface{}) {
		value.(*State).Close()
	})
	if err != nil {
		return nil, err
	}

	return &Registry{
		backend: backend,
		opts:    opts,
		clock:   clock,
		idle:    idle,
		states:  states,
	}, nil
}

func (r *Registry) Get(origin string) *State {
	r.mu.RLock()
	if state, exists := r.lookup(origin); exists {
		r.mu.RUnlock()
		return state
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if state, exists := r.lookup(origin); exists {
		return state
	}

	state := NewState(origin, r.backend.ForOrigin(origin), r.opts)
	state.touch(r.clock.Now())
	r.states.Add(origin, state)
	return state
}

func (r *Registry) lookup(origin string) (*State, bool) {
	value, ok := r.states.Get(origin)
	if !ok {
		return nil, false
	}
	state := value.(*State)
	state.touch(r.clock.Now())
	return state, true
}

// Detached builds a State for origin without keeping it. It serves an
// origin that has just been minted and may never come back; whatever the
// request persists is restored by Get once the client returns the cookie.
func (r *Registry) Detached(origin string) *State {
	return NewState(origin, r.backend.ForOrigin(origin), r.opts)
}

func (r *Registry) Len() int {
	return r.states.Len()
}

// Sweep closes every origin idle for longer than the idle timeout and
// reports how many it closed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.clock.Now().Add(-r.idle)
	closed := 0
	// Keys runs from least to most recently seen.
	for _, key := range r.states.Keys() {
		value, ok := r.states.Peek(key)
		if !ok {
			continue
		}
		if value.(*State).lastSeen().After(cutoff) {
			break
		}
		r.states.Remove(key)
		closed++
	}
	return closed
}

// Run sweeps every half idle timeout until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	ticker := r.clock.NewTicker(r.idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if closed := r.Sweep(); closed > 0 {
				r.opts.Logger.Debug().Int("closed", closed).Int("live", r.Len()).Msg("swept idle origins")
			}
		}
	}
}

// CloseAll tears down every State without touching persisted data.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.states.Purge()
}
