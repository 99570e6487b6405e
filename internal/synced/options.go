package synced

import (
	"context"
	"log/slog"
)

// Observer receives lifecycle signals from a cell, typically to feed metrics.
type Observer interface {
	WriteIssued(path string)
	SnapshotApplied(path string)
	SyncFailed(path string, op Op)
}

type options struct {
	logger   *slog.Logger
	observer Observer
	onError  func(*SyncError)
	writeCtx context.Context
}

// Option configures a Cell at Bind time.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

func WithObserver(obs Observer) Option {
	return func(o *options) { o.observer = obs }
}

// WithSyncErrorHandler installs fn to be called, from a background goroutine,
// for every SyncError.
func WithSyncErrorHandler(fn func(*SyncError)) Option {
	return func(o *options) { o.onError = fn }
}

// WithWriteContext sets the context used for background writes. Defaults to
// context.Background(); writes are never cancelled otherwise.
func WithWriteContext(ctx context.Context) Option {
	return func(o *options) { o.writeCtx = ctx }
}

func newOptions(opts []Option) options {
	o := options{
		logger:   slog.Default(),
		writeCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
