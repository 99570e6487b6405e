package memory

import (
	"context"       // standard Go package for request-scoped context (timeouts, cancellation)
	"encoding/json" // raw values are kept exactly as written
	"sync"          // standard Go package for concurrency primitives like Mutex

	interfaces "github.com/sheikh-saqib/tripsync/internal/interfaces" // interface RemoteStore
)

// Store is an in-memory implementation of interfaces.RemoteStore.
// Every Set is fanned out synchronously to the watchers of that path, in the
// goroutine of the caller. It is safe for concurrent use and is the test double
// for everything that syncs through a remote store.
type Store struct {
	mu       sync.Mutex                               // protects every field below
	values   map[string]json.RawMessage               // current value per path
	writes   map[string]int                           // number of Set calls per path
	watchers map[string]map[int]func(json.RawMessage) // watchers per path, keyed by watch id
	nextID   int
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		values:   make(map[string]json.RawMessage),
		writes:   make(map[string]int),
		watchers: make(map[string]map[int]func(json.RawMessage)),
	}
}

// Watch registers fn for path and immediately delivers the current value.
func (s *Store) Watch(ctx context.Context, path string, fn func(raw json.RawMessage)) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	if s.watchers[path] == nil {
		s.watchers[path] = make(map[int]func(json.RawMessage))
	}
	s.watchers[path][id] = fn
	current := clone(s.values[path])
	s.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.watchers[path], id)
		})
	}, nil
}

// Set replaces the value at path and notifies every watcher of that path.
func (s *Store) Set(ctx context.Context, path string, raw json.RawMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.values[path] = clone(raw)
	s.writes[path]++
	fns := make([]func(json.RawMessage), 0, len(s.watchers[path]))
	for _, fn := range s.watchers[path] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	// deliver outside the lock, watchers may read the store
	for _, fn := range fns {
		fn(clone(raw))
	}
	return nil
}

// Value returns the raw value at path and whether one exists.
func (s *Store) Value(path string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[path]
	return clone(v), ok
}

// Writes returns how many times path was Set.
func (s *Store) Writes(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes[path]
}

// Seed stores a value without notifying watchers or counting a write.
// Useful to prepare a store before clients bind to it.
func (s *Store) Seed(path string, raw json.RawMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[path] = clone(raw)
}

// copy so callers can't modify internal state
func clone(raw json.RawMessage) json.RawMessage {
	if raw == nil {
		return nil
	}
	copied := make(json.RawMessage, len(raw))
	copy(copied, raw)
	return copied
}

// Compile-time check: ensure Store implements RemoteStore interface
var _ interfaces.RemoteStore = (*Store)(nil)
