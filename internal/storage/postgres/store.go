package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"
	interfaces "github.com/sheikh-saqib/tripsync/internal/interfaces" // interface RemoteStore
)

const (
	// NotifyChannel carries the changed path as payload.
	NotifyChannel = "kv_store_changed"

	// json rather than jsonb: values must come back byte for byte as written
	schema = `CREATE TABLE IF NOT EXISTS kv_store (
	path       TEXT PRIMARY KEY,
	value      JSON NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	fetchTimeout = 10 * time.Second
	pingInterval = 90 * time.Second
)

// ErrClosed is returned by Watch once the store is closed.
var ErrClosed = errors.New("postgres store closed")

// PostgresStore keeps one JSON document per path and turns every write into a
// NOTIFY, so all clients listening on the same database see each other's writes.
type PostgresStore struct {
	db       *sql.DB
	listener *pq.Listener
	logger   *slog.Logger
	fetch    func(ctx context.Context, path string) (json.RawMessage, error)

	// every read that ends in a delivery runs on the dispatch goroutine, so a
	// watcher never sees an older value after a newer one
	jobs chan func()

	mu       sync.Mutex
	watchers map[string]map[int]func(json.RawMessage)
	nextID   int

	done      chan struct{}
	closeOnce sync.Once
}

// Open connects to dsn, creates the table if needed and starts listening for changes.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv_store: %w", err)
	}

	listener := pq.NewListener(dsn, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("postgres listener event", "event", int(ev), "error", err)
		}
	})
	if err := listener.Listen(NotifyChannel); err != nil {
		listener.Close()
		db.Close()
		return nil, fmt.Errorf("listen %s: %w", NotifyChannel, err)
	}

	return NewPostgresStore(db, listener, logger), nil
}

// NewPostgresStore wraps an open database and a listener already subscribed to
// NotifyChannel, and starts dispatching notifications.
func NewPostgresStore(db *sql.DB, listener *pq.Listener, logger *slog.Logger) *PostgresStore {
	p := newStore(logger)
	p.db = db
	p.listener = listener
	p.fetch = p.Value
	go p.run(listener.Notify)
	return p
}

func newStore(logger *slog.Logger) *PostgresStore {
	return &PostgresStore{
		logger:   logger,
		jobs:     make(chan func()),
		watchers: make(map[string]map[int]func(json.RawMessage)),
		done:     make(chan struct{}),
	}
}

// Watch registers fn for path and delivers the current value before returning.
// fn runs on the store's dispatch goroutine and must not call Watch.
func (p *PostgresStore) Watch(ctx context.Context, path string, fn func(raw json.RawMessage)) (func(), error) {
	select {
	case <-p.done:
		return nil, ErrClosed
	default:
	}

	p.mu.Lock()
	id := p.nextID
	p.nextID++
	if p.watchers[path] == nil {
		p.watchers[path] = make(map[int]func(json.RawMessage))
	}
	p.watchers[path][id] = fn
	p.mu.Unlock()

	cancel := func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.watchers[path], id)
	}

	// registered first: a change racing with this read is delivered twice, never lost
	errc := make(chan error, 1)
	initial := func() {
		current, err := p.fetch(ctx, path)
		if err == nil {
			fn(current)
		}
		errc <- err
	}

	select {
	case p.jobs <- initial:
	case <-ctx.Done():
		cancel()
		return nil, ctx.Err()
	case <-p.done:
		cancel()
		return nil, ErrClosed
	}

	select {
	case err := <-errc:
		if err != nil {
			cancel()
			return nil, err
		}
		return cancel, nil
	case <-p.done:
		cancel()
		return nil, ErrClosed
	}
}

// Set upserts the value and notifies listeners in the same transaction, so the
// notification is only sent once the value is committed.
func (p *PostgresStore) Set(ctx context.Context, path string, raw json.RawMessage) (err error) {
	const upsert = `INSERT INTO kv_store (path, value, updated_at)
	VALUES ($1, $2::json, now())
	ON CONFLICT (path) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if _, err = dbTx.ExecContext(ctx, upsert, path, string(raw)); err != nil {
		return err
	}
	if _, err = dbTx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, NotifyChannel, path); err != nil {
		return err
	}
	return dbTx.Commit()
}

// Value reads the value at path; nil when there is none.
func (p *PostgresStore) Value(ctx context.Context, path string) (json.RawMessage, error) {
	const query = `SELECT value FROM kv_store WHERE path = $1`

	var value []byte
	err := p.db.QueryRowContext(ctx, query, path).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return json.RawMessage(value), nil
}

// Close stops dispatching and releases the connections.
func (p *PostgresStore) Close() error {
	var err error
	p.closeOnce.Do(func() {
		close(p.done)
		if p.listener != nil {
			err = p.listener.Close()
		}
		if p.db != nil {
			if derr := p.db.Close(); derr != nil && err == nil {
				err = derr
			}
		}
	})
	return err
}

func (p *PostgresStore) run(notify <-chan *pq.Notification) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case job := <-p.jobs:
			job()
		case n, ok := <-notify:
			if !ok {
				return
			}
			if n == nil {
				// reconnected: notifications may have been missed while down
				for _, path := range p.watchedPaths() {
					p.refresh(path)
				}
				continue
			}
			p.refresh(n.Extra)
		case <-ticker.C:
			if p.listener == nil {
				continue
			}
			go func() {
				if err := p.listener.Ping(); err != nil {
					p.logger.Warn("postgres listener ping failed", "error", err)
				}
			}()
		}
	}
}

func (p *PostgresStore) refresh(path string) {
	fns := p.watchersOf(path)
	if len(fns) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	value, err := p.fetch(ctx, path)
	if err != nil {
		p.logger.Error("refresh after notification failed", "path", path, "error", err)
		return
	}
	for _, fn := range fns {
		fn(value)
	}
}

func (p *PostgresStore) watchersOf(path string) []func(json.RawMessage) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fns := make([]func(json.RawMessage), 0, len(p.watchers[path]))
	for _, fn := range p.watchers[path] {
		fns = append(fns, fn)
	}
	return fns
}

func (p *PostgresStore) watchedPaths() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	paths := make([]string, 0, len(p.watchers))
	for path, fns := range p.watchers {
		if len(fns) > 0 {
			paths = append(paths, path)
		}
	}
	return paths
}

var _ interfaces.RemoteStore = (*PostgresStore)(nil)
