package notify

import (
	"sort"
	"sync"

	"github.com/swiftmeds/client/types"
)

// Store holds the latest reconciled notification snapshot. Each poll
// replaces the whole set; the server copy is always the truth.
type Store struct {
	mu    sync.RWMutex
	items map[int]types.Notification
}

func NewStore() *Store {
	return &Store{items: make(map[int]types.Notification)}
}

func (s *Store) ReplaceAll(list []types.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[int]types.Notification, len(list))
	for _, n := range list {
		s.items[n.ID] = n
	}
}

func (s *Store) Get(id int) (types.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.items[id]
	return n, ok
}

// List returns the snapshot newest-first.
func (s *Store) List() []types.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Notification, 0, len(s.items))
	for _, n := range s.items {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Store) Unread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, n := range s.items {
		if !n.IsRead {
			count++
		}
	}
	return count
}
