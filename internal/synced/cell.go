// Package synced makes one path of a shared remote store look like local state.
//
// A Cell applies writes to memory first and notifies its subscribers right away,
// then replaces the whole remote value in the background. Every value observed
// from the store, written by this client or another one, replaces the local value
// wholesale: the last write to reach the store wins and nothing is merged.
//
//	squad, err := synced.Bind(ctx, store, "squad", []models.Participant{}, models.DecodeParticipants)
//	if err != nil {
//		return err
//	}
//	defer squad.Close()
//
//	squad.Update(func(cur []models.Participant) []models.Participant {
//		return append(slices.Clone(cur), models.Participant{ID: id, Name: "Ala"})
//	})
//
// Values handed to Update and returned by Read are shared with the cell and other
// subscribers. Treat them as immutable: derive a new value instead of editing one
// in place, otherwise the reference check in Update skips the write.
package synced

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	interfaces "github.com/sheikh-saqib/tripsync/internal/interfaces"
)

// Decoder parses a raw remote value into T, applying defaults for missing fields.
type Decoder[T any] func(raw json.RawMessage) (T, error)

// JSONDecoder returns a Decoder that relies on encoding/json alone.
func JSONDecoder[T any]() Decoder[T] {
	return func(raw json.RawMessage) (T, error) {
		var v T
		err := json.Unmarshal(raw, &v)
		return v, err
	}
}

// SyncedValue is a point-in-time view of a cell.
type SyncedValue[T any] struct {
	Path                string
	Value               T
	HasLoadedFromRemote bool
}

// Cell mirrors the value stored at one path. It is safe for concurrent use.
type Cell[T any] struct {
	store  interfaces.RemoteStore
	path   string
	decode Decoder[T]
	opts   options

	mu        sync.Mutex
	value     T
	lastRaw   json.RawMessage // encoding of value as last written or observed
	loaded    bool
	closed    bool
	listeners map[int]func(T)
	nextID    int
	queue     []json.RawMessage // whole values waiting to be sent, in write order
	pushing   bool
	idle      *sync.Cond // signalled when the push loop drains the queue

	// notifications waiting to run, in the order changes were applied
	notes    []note[T]
	emitting bool

	ready       chan struct{}
	readyOnce   sync.Once
	cancelWatch func()
}

// Bind creates a cell for path, starting in the Loading state with initial as
// its value, and starts watching the store. Bind fails only if the watch cannot
// be registered.
func Bind[T any](ctx context.Context, store interfaces.RemoteStore, path string, initial T, decode Decoder[T], opts ...Option) (*Cell[T], error) {
	if decode == nil {
		decode = JSONDecoder[T]()
	}
	c := &Cell[T]{
		store:     store,
		path:      path,
		decode:    decode,
		opts:      newOptions(opts),
		value:     initial,
		listeners: make(map[int]func(T)),
		ready:     make(chan struct{}),
	}
	c.idle = sync.NewCond(&c.mu)

	cancel, err := store.Watch(ctx, path, c.observe)
	if err != nil {
		return nil, fmt.Errorf("bind %q: %w", path, err)
	}

	c.mu.Lock()
	c.cancelWatch = cancel
	c.mu.Unlock()
	return c, nil
}

// Path returns the store path the cell is bound to.
func (c *Cell[T]) Path() string { return c.path }

// Read returns the current in-memory value. While Loading it is the initial value.
func (c *Cell[T]) Read() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Loading reports whether the first remote observation is still pending.
func (c *Cell[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.loaded
}

// Ready is closed once the first remote observation has been processed.
func (c *Cell[T]) Ready() <-chan struct{} { return c.ready }

// Snapshot returns path, value and loading state read together.
func (c *Cell[T]) Snapshot() SyncedValue[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return SyncedValue[T]{Path: c.path, Value: c.value, HasLoadedFromRemote: c.loaded}
}

// Subscribe registers fn to be called with the value after every change,
// including once after the first remote observation. It returns a func that
// removes the subscription.
//
// fn runs after the cell lock is released, one change at a time and in the order
// the changes were applied. It usually runs in the goroutine that caused the
// change; a change made while another one is being delivered, including a write
// from inside fn, is delivered by that goroutine once the current listeners return.
// fn may read and write the cell.
func (c *Cell[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.listeners, id)
		})
	}
}

// Set replaces the value. See Update.
func (c *Cell[T]) Set(next T) {
	c.Update(func(T) T { return next })
}

// Update computes the next value from the current local value, never from a
// remote one. When fn returns the very same value (see the package doc) nothing
// happens. Otherwise the value is replaced, subscribers are notified (see
// Subscribe), and the whole value is sent to the store in the background.
// Failures of that send are reported as *SyncError and never rolled back.
//
// fn runs with the cell locked and must not call back into the cell.
func (c *Cell[T]) Update(fn func(current T) T) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.opts.logger.Warn("write to closed cell dropped", "path", c.path)
		return
	}

	next := fn(c.value)
	if same(c.value, next) {
		c.mu.Unlock()
		return
	}
	c.value = next

	raw, encErr := json.Marshal(next)
	if encErr == nil {
		c.lastRaw = raw
		c.enqueue(raw)
	}
	c.queueNote(next)
	c.mu.Unlock()

	c.emit()

	if encErr != nil {
		c.fail(&SyncError{Path: c.path, Op: OpEncode, Err: encErr})
	}
}

// Wait blocks until every write issued so far has been handed to the store.
func (c *Cell[T]) Wait() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.pushing {
		c.idle.Wait()
	}
}

// Close stops watching the store, drops subscribers and waits for pending writes.
func (c *Cell[T]) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	cancel := c.cancelWatch
	c.listeners = make(map[int]func(T))
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.Wait()
}

// observe handles a value delivered by the store watch.
func (c *Cell[T]) observe(raw json.RawMessage) {
	var zero T
	if isNull(raw) {
		// nothing stored yet, or removed by someone: keep the local value
		c.apply(zero, nil, false)
		return
	}

	next, err := c.decode(raw)
	if err != nil {
		c.fail(&SyncError{Path: c.path, Op: OpDecode, Err: err})
		c.apply(zero, nil, false)
		return
	}
	c.apply(next, raw, true)
}

// apply installs a remote value (when replace is set) and marks the cell loaded.
// Subscribers hear about it when the value changed or when this is the first
// observation.
func (c *Cell[T]) apply(next T, raw json.RawMessage, replace bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	first := !c.loaded
	c.loaded = true

	changed := false
	if replace {
		// our own write coming back carries nothing new
		if !bytes.Equal(raw, c.lastRaw) {
			c.value = next
			c.lastRaw = raw
			changed = true
		}
	}
	if !changed && !first {
		c.mu.Unlock()
		return
	}
	c.queueNote(c.value)
	c.mu.Unlock()

	if first {
		c.readyOnce.Do(func() { close(c.ready) })
	}
	if changed && c.opts.observer != nil {
		c.opts.observer.SnapshotApplied(c.path)
	}
	c.emit()
}

type note[T any] struct {
	listeners []func(T)
	value     T
}

// queueNote must be called with c.mu held.
func (c *Cell[T]) queueNote(value T) {
	c.notes = append(c.notes, note[T]{listeners: c.listenerList(), value: value})
}

// emit delivers queued notifications unless another call is already doing so,
// in which case that call picks them up. No lock is held while listeners run.
func (c *Cell[T]) emit() {
	c.mu.Lock()
	if c.emitting {
		c.mu.Unlock()
		return
	}
	c.emitting = true
	c.mu.Unlock()

	drained := false
	defer func() {
		// a listener panicked: let the next change deliver what is left
		if !drained {
			c.mu.Lock()
			c.emitting = false
			c.mu.Unlock()
		}
	}()

	for {
		c.mu.Lock()
		if len(c.notes) == 0 {
			c.emitting = false
			drained = true
			c.mu.Unlock()
			return
		}
		n := c.notes[0]
		c.notes = c.notes[1:]
		c.mu.Unlock()

		notify(n.listeners, n.value)
	}
}

// enqueue must be called with c.mu held.
func (c *Cell[T]) enqueue(raw json.RawMessage) {
	c.queue = append(c.queue, raw)
	if !c.pushing {
		c.pushing = true
		go c.push()
	}
}

// push sends queued values one at a time so they reach the store in write order.
func (c *Cell[T]) push() {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.pushing = false
			c.idle.Broadcast()
			c.mu.Unlock()
			return
		}
		raw := c.queue[0]
		c.queue = c.queue[1:]
		c.mu.Unlock()

		if c.opts.observer != nil {
			c.opts.observer.WriteIssued(c.path)
		}
		if err := c.store.Set(c.opts.writeCtx, c.path, raw); err != nil {
			c.fail(&SyncError{Path: c.path, Op: OpWrite, Err: err})
		}
	}
}

func (c *Cell[T]) fail(err *SyncError) {
	c.opts.logger.Error("remote sync failed", "path", err.Path, "op", string(err.Op), "error", err.Err)
	if c.opts.observer != nil {
		c.opts.observer.SyncFailed(err.Path, err.Op)
	}
	if c.opts.onError != nil {
		c.opts.onError(err)
	}
}

// listenerList must be called with c.mu held.
func (c *Cell[T]) listenerList() []func(T) {
	// map order is random; order by registration
	out := make([]func(T), 0, len(c.listeners))
	for _, id := range slices.Sorted(maps.Keys(c.listeners)) {
		out = append(out, c.listeners[id])
	}
	return out
}

func notify[T any](listeners []func(T), value T) {
	for _, fn := range listeners {
		fn(value)
	}
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}
