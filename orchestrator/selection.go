package orchestrator

import (
	"sync"

	"github.com/moyoez/moneylens-go/types"
)

// SelectionManager is the set of file ids picked for export. Every id in it is a key of the
// store; removals and reloads drop the rest.
type SelectionManager struct {
	mu      sync.RWMutex
	ids     map[string]struct{}
	store   *ResultStore
	publish func(*types.Notification)
}

func newSelectionManager(store *ResultStore, publish func(*types.Notification)) *SelectionManager {
	return &SelectionManager{ids: make(map[string]struct{}), store: store, publish: publish}
}

// Toggle flips fileID and reports whether it is now selected.
func (m *SelectionManager) Toggle(fileID string) (bool, error) {
	m.mu.Lock()
	if !m.store.Has(fileID) {
		m.mu.Unlock()
		return false, ErrUnknownResult
	}
	_, selected := m.ids[fileID]
	if selected {
		delete(m.ids, fileID)
	} else {
		m.ids[fileID] = struct{}{}
	}
	size := len(m.ids)
	m.mu.Unlock()
	m.changed(size)
	return !selected, nil
}

// ToggleAll clears the selection when everything is selected, otherwise selects every result.
// It returns the new size.
func (m *SelectionManager) ToggleAll() int {
	m.mu.Lock()
	keys := m.store.Keys()
	if len(m.ids) == len(keys) {
		m.ids = make(map[string]struct{})
	} else {
		m.ids = make(map[string]struct{}, len(keys))
		for _, id := range keys {
			m.ids[id] = struct{}{}
		}
	}
	size := len(m.ids)
	m.mu.Unlock()
	m.changed(size)
	return size
}

func (m *SelectionManager) Clear() {
	m.mu.Lock()
	m.ids = make(map[string]struct{})
	m.mu.Unlock()
	m.changed(0)
}

func (m *SelectionManager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.ids)
}

func (m *SelectionManager) IsSelected(fileID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.ids[fileID]
	return ok
}

// IDs returns the selected ids in store order.
func (m *SelectionManager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.ids))
	for _, id := range m.store.Keys() {
		if _, ok := m.ids[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (m *SelectionManager) drop(fileID string) {
	m.mu.Lock()
	_, had := m.ids[fileID]
	delete(m.ids, fileID)
	size := len(m.ids)
	m.mu.Unlock()
	if had {
		m.changed(size)
	}
}

// reconcile drops ids that are no longer in the store.
func (m *SelectionManager) reconcile() {
	m.mu.Lock()
	before := len(m.ids)
	for id := range m.ids {
		if !m.store.Has(id) {
			delete(m.ids, id)
		}
	}
	size := len(m.ids)
	m.mu.Unlock()
	if size != before {
		m.changed(size)
	}
}

func (m *SelectionManager) changed(size int) {
	m.publish(&types.Notification{
		Type: types.NotifyTypeSelectionChanged,
		Data: map[string]any{"selected": size},
	})
}
