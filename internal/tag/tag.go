// Package tag manages the hierarchical tag forest and its file
// associations - a thin validating layer over store.Tagger, the same shape
// internal/link and internal/author wrap their store interfaces with.
package tag

import (
	"context"

	"github.com/nerdneilsfield/tagbox/internal/store"
	"github.com/nerdneilsfield/tagbox/internal/validate"
)

// Manager adds, removes, and lists hierarchical tags on files.
type Manager struct {
	store store.Store
}

// New builds a Manager over st.
func New(st store.Store) *Manager {
	return &Manager{store: st}
}

// Add attaches tagPath to the file identified by key, creating any missing
// ancestor tags in the chain.
func (m *Manager) Add(ctx context.Context, key, tagPath string) error {
	if err := validate.TagPath(tagPath); err != nil {
		return err
	}
	f, err := m.store.ByKey(ctx, key, false)
	if err != nil {
		return err
	}
	return m.store.TagFile(ctx, f.ID, tagPath)
}

// Remove detaches tagPath from the file identified by key.
func (m *Manager) Remove(ctx context.Context, key, tagPath string) error {
	f, err := m.store.ByKey(ctx, key, false)
	if err != nil {
		return err
	}
	return m.store.UntagFile(ctx, f.ID, tagPath)
}

// List returns every tag attached to the file identified by key.
func (m *Manager) List(ctx context.Context, key string) ([]store.Tag, error) {
	f, err := m.store.ByKey(ctx, key, false)
	if err != nil {
		return nil, err
	}
	return m.store.TagsForFile(ctx, f.ID)
}

// Delete soft-deletes a tag node. File associations are not removed; see
// store.DeleteTag.
func (m *Manager) Delete(ctx context.Context, tagPath string) error {
	return m.store.DeleteTag(ctx, tagPath)
}
