package synced

import "fmt"

// Op names the step of a sync that failed.
type Op string

const (
	OpEncode Op = "encode" // local value could not be marshalled
	OpWrite  Op = "write"  // the store rejected a whole-value write
	OpDecode Op = "decode" // a remote value did not parse
)

// SyncError reports a failed exchange with the remote store. It is never returned
// to the caller that issued a write: it is logged, counted, and handed to the
// handler installed with WithSyncErrorHandler.
type SyncError struct {
	Path string
	Op   Op
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }
