// Package link validates and orchestrates directed file-to-file
// relationships over internal/store's Linker, per the link manager
// component: self-links forbidden, pair+relation triplets unique,
// operations idempotent where pre/post condition already matches.
package link

import (
	"context"

	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/validate"
)

// Manager validates link requests before delegating to the store.
type Manager struct {
	store store.Linker
}

// New builds a Manager over st.
func New(st store.Linker) *Manager {
	return &Manager{store: st}
}

// Link creates or restores a relation from fromKey to toKey.
func (m *Manager) Link(ctx context.Context, fromKey, toKey, relation string) (*store.Link, error) {
	if err := validate.Link(fromKey, toKey, relation); err != nil {
		return nil, err
	}
	return m.store.Link(ctx, fromKey, toKey, relation)
}

// Unlink removes a single relation between fromKey and toKey.
func (m *Manager) Unlink(ctx context.Context, fromKey, toKey, relation string) error {
	if err := validate.Link(fromKey, toKey, relation); err != nil {
		return err
	}
	return m.store.Unlink(ctx, fromKey, toKey, relation)
}

// BatchUnlink removes every outgoing relation from fromKey.
func (m *Manager) BatchUnlink(ctx context.Context, fromKey string) (int64, error) {
	return m.store.BatchUnlink(ctx, fromKey)
}

// Outgoing lists every live relation originating at fromKey.
func (m *Manager) Outgoing(ctx context.Context, fromKey string) ([]store.Link, error) {
	return m.store.Outgoing(ctx, fromKey)
}

// Incoming lists every live relation targeting toKey.
func (m *Manager) Incoming(ctx context.Context, toKey string) ([]store.Link, error) {
	return m.store.Incoming(ctx, toKey)
}
