package events

import (
	"encoding/json"
	"time"
)

// PathChanged is published after a whole-value write to a path reached the store.
type PathChanged struct {
	Path       string          `json:"path"`
	Value      json.RawMessage `json:"value"`
	OccurredAt time.Time       `json:"occurred_at"`
}
