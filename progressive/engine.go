package progressive

import (
	"log"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/lixenwraith/upi-engine/parameter"
	"github.com/lixenwraith/upi-engine/status"
)

// Lineage id prefixes keep transformation, offset and lengthening sessions apart in one cache
const (
	prefixTransform = "transform:"
	prefixOffset    = "offset:"
	prefixLengthen  = "lengthen:"
)

// Engine owns every progressive session behind a single mutex
// Sessions share one LRU so capacity bounds total memory
type Engine struct {
	mu       sync.Mutex
	sessions *simplelru.LRU[string, any]
	adding   bool // set while Add may evict for capacity
	seed     uint64
	capacity int

	created   *atomic.Int64
	steps     *atomic.Int64
	evictions *atomic.Int64
	resets    *atomic.Int64
}

// Option configures an Engine
type Option func(*Engine)

// WithMetrics publishes counters into reg
func WithMetrics(reg *status.Registry) Option {
	return func(e *Engine) {
		e.created = reg.Counter(status.KeySessions)
		e.steps = reg.Counter(status.KeySteps)
		e.evictions = reg.Counter(status.KeyEvictions)
		e.resets = reg.Counter(status.KeyResets)
	}
}

// WithSeed sets the base seed for progressive lengthening
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.seed = seed
	}
}

// New creates an engine holding at most capacity sessions; capacity < 1 uses the default
func New(capacity int, opts ...Option) *Engine {
	if capacity < 1 {
		capacity = parameter.ProgressiveCapacity
	}
	e := &Engine{
		seed:      parameter.DefaultSeed,
		capacity:  capacity,
		created:   new(atomic.Int64),
		steps:     new(atomic.Int64),
		evictions: new(atomic.Int64),
		resets:    new(atomic.Int64),
	}
	for _, opt := range opts {
		opt(e)
	}
	// Remove and Purge also invoke the callback; only capacity evictions count
	e.sessions, _ = simplelru.NewLRU[string, any](capacity, func(key string, _ any) {
		if !e.adding {
			return
		}
		e.evictions.Add(1)
		log.Printf("progressive: evicted %s", key)
	})
	return e
}

// store inserts id as most recently used; caller holds e.mu
func (e *Engine) store(id string, v any) {
	e.adding = true
	e.sessions.Add(id, v)
	e.adding = false
}

// Capacity returns the session bound
func (e *Engine) Capacity() int {
	return e.capacity
}

// Step advances the lineage of req by one onset, creating it at the base on first use
func (e *Engine) Step(req Request) (Snapshot, error) {
	if err := req.Validate(); err != nil {
		return Snapshot{}, err
	}
	id := prefixTransform + req.Key().String()

	e.mu.Lock()
	defer e.mu.Unlock()

	if v, ok := e.sessions.Get(id); ok {
		if s, ok := v.(*session); ok {
			s.advance()
			e.steps.Add(1)
			return s.snapshot(false), nil
		}
	}

	s := newSession(req)
	e.store(id, s)
	e.created.Add(1)
	return s.snapshot(true), nil
}

// Peek returns the current state of key without advancing it or touching recency
func (e *Engine) Peek(key Key) (Snapshot, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	v, ok := e.sessions.Peek(prefixTransform + key.String())
	if !ok {
		return Snapshot{}, false
	}
	s, ok := v.(*session)
	if !ok {
		return Snapshot{}, false
	}
	return s.snapshot(false), true
}

// Reset discards the transformation session for key
func (e *Engine) Reset(key Key) bool {
	return e.discard(prefixTransform + key.String())
}

// ResetOffset discards the progressive offset lineage for id
func (e *Engine) ResetOffset(id string) bool {
	return e.discard(prefixOffset + id)
}

// ResetLengthen discards the progressive lengthening lineage for id
func (e *Engine) ResetLengthen(id string) bool {
	return e.discard(prefixLengthen + id)
}

func (e *Engine) discard(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.sessions.Remove(id) {
		e.resets.Add(1)
		return true
	}
	return false
}

// ResetAll discards every session, returning how many were dropped
func (e *Engine) ResetAll() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.sessions.Len()
	e.sessions.Purge()
	e.resets.Add(int64(n))
	if n > 0 {
		log.Printf("progressive: reset %d sessions", n)
	}
	return n
}

// Len returns the number of live sessions across all lineage types
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions.Len()
}

// Keys lists live lineage ids from most to least recently used
func (e *Engine) Keys() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	keys := e.sessions.Keys()
	slices.Reverse(keys)
	return keys
}

// Evictions returns how many sessions were dropped for capacity
func (e *Engine) Evictions() int64 {
	return e.evictions.Load()
}
