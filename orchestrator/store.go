package orchestrator

import (
	"sync"

	"github.com/moyoez/moneylens-go/types"
)

// ResultStore keeps results newest first with unique file ids.
type ResultStore struct {
	mu    sync.RWMutex
	order []string
	items map[string]types.ProcessingResult
}

func newResultStore() *ResultStore {
	return &ResultStore{items: make(map[string]types.ProcessingResult)}
}

// Insert puts r at the front. An entry with the same id is replaced and moved to the front.
func (s *ResultStore) Insert(r types.ProcessingResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.FileID]; ok {
		s.order = deleteID(s.order, r.FileID)
	}
	s.order = append([]string{r.FileID}, s.order...)
	s.items[r.FileID] = r.Clone()
}

// replace swaps the whole collection, keeping the first entry of any duplicated id.
func (s *ResultStore) replace(results []types.ProcessingResult) {
	order := make([]string, 0, len(results))
	items := make(map[string]types.ProcessingResult, len(results))
	for _, r := range results {
		if _, dup := items[r.FileID]; dup {
			continue
		}
		order = append(order, r.FileID)
		items[r.FileID] = r.Clone()
	}
	s.mu.Lock()
	s.order, s.items = order, items
	s.mu.Unlock()
}

func (s *ResultStore) remove(fileID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[fileID]; !ok {
		return false
	}
	delete(s.items, fileID)
	s.order = deleteID(s.order, fileID)
	return true
}

// Results returns a copy of every result, newest first.
func (s *ResultStore) Results() []types.ProcessingResult {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.ProcessingResult, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id].Clone())
	}
	return out
}

func (s *ResultStore) Get(fileID string) (types.ProcessingResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[fileID]
	if !ok {
		return types.ProcessingResult{}, false
	}
	return r.Clone(), true
}

func (s *ResultStore) Has(fileID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[fileID]
	return ok
}

func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Keys returns the file ids in display order.
func (s *ResultStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// Latest returns the most recently inserted result.
func (s *ResultStore) Latest() (types.ProcessingResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.order) == 0 {
		return types.ProcessingResult{}, false
	}
	return s.items[s.order[0]].Clone(), true
}

func deleteID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
