// Package storage is the durable client-side key-value layer backing the
// cart and session stores. Values are opaque strings (JSON snapshots written
// by the stores). Absent keys are normal, not errors; readers treat any
// malformed value as absent state.
package storage

import "context"

// Keys under which the stores persist their snapshots.
const (
	KeyCart    = "cart"
	KeySession = "userSession"
)

type Store interface {
	// Get returns the stored value and whether the key was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Watcher reports keys whose values were changed by another process, the
// cross-tab storage-event analogue. Delivery is eventual and may coalesce.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}
