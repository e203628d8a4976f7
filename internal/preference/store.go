package preference

import (
	"sync"

	"github.com/google/uuid"
)

// Store accumulates accepted statements. Entries leave only through Remove.
type Store struct {
	mu    sync.RWMutex
	items []Statement
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Add appends statements whose id is not already present and returns how
// many were added.
func (s *Store) Add(stmts ...Statement) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := 0
	for _, st := range stmts {
		if s.indexLocked(st.ID) >= 0 {
			continue
		}
		s.items = append(s.items, st)
		added++
	}
	return added
}

// Remove deletes the statement with the given id. It reports whether one was found.
func (s *Store) Remove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 {
		return false
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return true
}

// All returns a copy of every statement in insertion order.
func (s *Store) All() []Statement {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Statement, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of statements.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) indexLocked(id uuid.UUID) int {
	for i, st := range s.items {
		if st.ID == id {
			return i
		}
	}
	return -1
}
