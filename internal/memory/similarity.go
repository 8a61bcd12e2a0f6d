// Package memory defines the extension point for persisting agent memory
// across runs. spec.md section 9 names this out of scope: "memory between
// runs is not retained unless an embedding store is plugged in". Index is
// the seam a future embedding store would implement; nothing in this
// module provides a concrete backend.
package memory

import "context"

// Index is a similarity-search backend over past run memory entries. No
// implementation ships here; a caller wanting cross-run recall plugs one
// in.
type Index interface {
	Add(ctx context.Context, runID string, entry string) error
	Search(ctx context.Context, query string, limit int) ([]string, error)
}
