// Package history provides read access to a file's append-only audit log
// and its access statistics - a thin wrapper over store.Reader that
// resolves the caller's file key to an internal id once.
package history

import (
	"context"

	"github.com/nerdneilsfield/tagbox/internal/store"
)

// Viewer retrieves a file's history and access statistics.
type Viewer struct {
	store store.Reader
}

// New builds a Viewer over st.
func New(st store.Reader) *Viewer {
	return &Viewer{store: st}
}

// Versions returns every audit-log entry for the file identified by key,
// oldest first.
func (v *Viewer) Versions(ctx context.Context, key string) ([]store.HistoryEntry, error) {
	f, err := v.store.ByKey(ctx, key, true)
	if err != nil {
		return nil, err
	}
	return v.store.History(ctx, f.ID)
}

// AccessStats returns the access counter and last-access timestamp for the
// file identified by key.
func (v *Viewer) AccessStats(ctx context.Context, key string) (*store.AccessStats, error) {
	f, err := v.store.ByKey(ctx, key, true)
	if err != nil {
		return nil, err
	}
	return v.store.AccessStats(ctx, f.ID)
}
