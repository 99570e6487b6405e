package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sheikh-saqib/tripsync/internal/config"
	kafkaevents "github.com/sheikh-saqib/tripsync/internal/events/kafka"
	interfaces "github.com/sheikh-saqib/tripsync/internal/interfaces"
	"github.com/sheikh-saqib/tripsync/internal/ledger"
	"github.com/sheikh-saqib/tripsync/internal/logging"
	"github.com/sheikh-saqib/tripsync/internal/metrics"
	"github.com/sheikh-saqib/tripsync/internal/models"
	"github.com/sheikh-saqib/tripsync/internal/packing"
	"github.com/sheikh-saqib/tripsync/internal/schedule"
	"github.com/sheikh-saqib/tripsync/internal/storage"
	"github.com/sheikh-saqib/tripsync/internal/storage/memory"
	"github.com/sheikh-saqib/tripsync/internal/storage/postgres"
	"github.com/sheikh-saqib/tripsync/internal/synced"
)

// Store paths shared with every other client of the trip.
const (
	PathSquad       = "squad"
	PathBudget      = "budget"
	PathPacking     = "packing-list"
	PathSchedule    = "schedule-data"
	PathNotes       = "schedule-notes-v2"
	PathNoteHeights = "schedule-note-heights-v2"
)

// App bundles the store, the cells and the services built on them.
type App struct {
	Config   config.Config
	Defaults config.TripDefaults
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Store    interfaces.RemoteStore

	Squad       *synced.Cell[[]models.Participant]
	Budget      *synced.Cell[[]models.ExpenseRecord]
	Packing     *synced.Cell[[]models.PackingItem]
	Schedule    *synced.Cell[[]models.DayPlan]
	Notes       *synced.Cell[map[string]string]
	NoteHeights *synced.Cell[map[string]string]

	Ledger      *ledger.Ledger
	PackingList *packing.List
	Planner     *schedule.Planner

	closers []func() error
	cells   []interface{ Close() }
}

// Option adjusts how New builds the App.
type Option func(*App)

// WithStore uses store instead of the one configured. The caller keeps ownership.
func WithStore(store interfaces.RemoteStore) Option {
	return func(a *App) { a.Store = store }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *App) { a.Logger = logger }
}

// New connects to the store and binds every cell. Cells start Loading; call
// WaitReady before acting on their values.
func New(ctx context.Context, cfg config.Config, opts ...Option) (_ *App, err error) {
	a := &App{Config: cfg}
	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.Defaults, err = config.LoadDefaults(cfg.TripDefaults); err != nil {
		return nil, err
	}
	if err = a.openStore(ctx); err != nil {
		return nil, err
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cellOpts := []synced.Option{
		synced.WithLogger(a.Logger),
		synced.WithObserver(metrics.New(a.Registry)),
	}

	if a.Squad, err = bind(ctx, a, PathSquad, []models.Participant{}, models.DecodeParticipants, cellOpts); err != nil {
		return nil, err
	}
	if a.Budget, err = bind(ctx, a, PathBudget, []models.ExpenseRecord{}, models.DecodeExpenses, cellOpts); err != nil {
		return nil, err
	}
	// nil until loaded so that seeding can tell "missing" from "empty"
	if a.Packing, err = bind[[]models.PackingItem](ctx, a, PathPacking, nil, models.DecodePackingItems, cellOpts); err != nil {
		return nil, err
	}
	if a.Schedule, err = bind[[]models.DayPlan](ctx, a, PathSchedule, nil, models.DecodeSchedule, cellOpts); err != nil {
		return nil, err
	}
	if a.Notes, err = bind(ctx, a, PathNotes, map[string]string{}, models.DecodeStringMap, cellOpts); err != nil {
		return nil, err
	}
	if a.NoteHeights, err = bind(ctx, a, PathNoteHeights, map[string]string{}, models.DecodeStringMap, cellOpts); err != nil {
		return nil, err
	}

	a.Ledger = ledger.NewLedger(a.Budget, a.Squad, ledger.WithLogger(a.Logger))
	a.PackingList = packing.New(a.Packing)
	a.Planner = schedule.New(a.Schedule, a.Notes, a.NoteHeights)
	return a, nil
}

func (a *App) openStore(ctx context.Context) error {
	if a.Store != nil {
		return nil
	}
	switch a.Config.Store {
	case config.StorePostgres:
		pg, err := postgres.Open(ctx, a.Config.DatabaseURL, a.Logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, pg.Close)
		a.Store = pg
	default:
		a.Store = memory.NewStore()
	}

	if len(a.Config.KafkaBrokers) > 0 {
		publisher := kafkaevents.NewPublisher(a.Config.KafkaBrokers)
		a.closers = append(a.closers, publisher.Close)
		a.Store = storage.NewPublishingStore(a.Store, publisher, a.Config.KafkaTopic, a.Logger)
	}
	a.Logger.Info("remote store ready", "store", a.Config.Store, "publishing", len(a.Config.KafkaBrokers) > 0)
	return nil
}

func bind[T any](ctx context.Context, a *App, path string, initial T, decode synced.Decoder[T], opts []synced.Option) (*synced.Cell[T], error) {
	cell, err := synced.Bind(ctx, a.Store, path, initial, decode, opts...)
	if err != nil {
		return nil, err
	}
	a.cells = append(a.cells, cell)
	return cell, nil
}

// WaitReady blocks until every cell has seen its first remote value.
func (a *App) WaitReady(ctx context.Context) error {
	for _, ready := range []<-chan struct{}{
		a.Squad.Ready(), a.Budget.Ready(), a.Packing.Ready(),
		a.Schedule.Ready(), a.Notes.Ready(), a.NoteHeights.Ready(),
	} {
		select {
		case <-ready:
			continue
		default:
		}
		select {
		case <-ready:
		case <-ctx.Done():
			return fmt.Errorf("waiting for remote state: %w", ctx.Err())
		}
	}
	return nil
}

// Seed writes the default packing list and schedule to paths that hold nothing yet.
func (a *App) Seed(ctx context.Context) error {
	seededPacking, err := a.PackingList.Seed(ctx, a.Defaults.Packing)
	if err != nil {
		return err
	}
	seededSchedule, err := a.Planner.Seed(ctx, a.Defaults.Schedule)
	if err != nil {
		return err
	}
	if seededPacking || seededSchedule {
		a.Logger.Info("seeded trip defaults", "packing", seededPacking, "schedule", seededSchedule)
	}
	return nil
}

// Flush waits until every write issued so far has been handed to the store.
func (a *App) Flush() {
	for _, c := range []interface{ Wait() }{a.Squad, a.Budget, a.Packing, a.Schedule, a.Notes, a.NoteHeights} {
		c.Wait()
	}
}

// Close stops the cells, then the store and publisher.
func (a *App) Close() error {
	for _, c := range a.cells {
		c.Close()
	}
	a.cells = nil

	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
