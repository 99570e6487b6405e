package interfaces

import (
	"context"
	"encoding/json"
)

// RemoteStore is the shared, path-addressed key-value store every client syncs through.
//
// Values are opaque JSON documents replaced wholesale; there is no partial update
// and no atomicity across paths.
type RemoteStore interface {
	// Watch calls fn with the current value at path (nil when there is none) and
	// again after every later change, from any client. Delivery may be asynchronous.
	// The returned cancel func stops delivery.
	Watch(ctx context.Context, path string, fn func(raw json.RawMessage)) (cancel func(), err error)

	// Set replaces the whole value at path.
	Set(ctx context.Context, path string, raw json.RawMessage) error
}
