package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	interfaces "github.com/sheikh-saqib/tripsync/internal/interfaces"
	"github.com/sheikh-saqib/tripsync/internal/models/events"
)

// PublishingStore decorates a RemoteStore and publishes an events.PathChanged for
// every successful Set, keyed by path. Publishing failures are logged and never
// fail the write: the store remains the source of truth.
type PublishingStore struct {
	interfaces.RemoteStore
	publisher interfaces.EventPublisher
	topic     string
	logger    *slog.Logger
	now       func() time.Time
}

func NewPublishingStore(inner interfaces.RemoteStore, publisher interfaces.EventPublisher, topic string, logger *slog.Logger) *PublishingStore {
	return &PublishingStore{
		RemoteStore: inner,
		publisher:   publisher,
		topic:       topic,
		logger:      logger,
		now:         time.Now,
	}
}

func (p *PublishingStore) Set(ctx context.Context, path string, raw json.RawMessage) error {
	if err := p.RemoteStore.Set(ctx, path, raw); err != nil {
		return err
	}

	event := events.PathChanged{
		Path:       path,
		Value:      raw,
		OccurredAt: p.now().UTC(),
	}
	if err := p.publisher.Publish(ctx, p.topic, path, event); err != nil {
		p.logger.Warn("publish path change failed", "path", path, "topic", p.topic, "error", err)
	}
	return nil
}

var _ interfaces.RemoteStore = (*PublishingStore)(nil)
