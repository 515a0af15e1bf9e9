package models

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Selection is a shopper's in-session set of chosen photo ids, scoped to one
// gallery. One instance is shared by every concurrent request of a session,
// so all set access goes through the mutex.
type Selection struct {
	GalleryID uuid.UUID

	mu  sync.Mutex
	ids map[uuid.UUID]struct{}
}

func NewSelection(galleryID uuid.UUID) *Selection {
	return &Selection{
		GalleryID: galleryID,
		ids:       make(map[uuid.UUID]struct{}),
	}
}

// Toggle adds the id if absent and removes it if present. Returns whether
// the id is selected after the call.
func (s *Selection) Toggle(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// ReplaceAll swaps the whole set for the given ids (select-all).
func (s *Selection) ReplaceAll(ids []uuid.UUID) {
	next := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		next[id] = struct{}{}
	}

	s.mu.Lock()
	s.ids = next
	s.mu.Unlock()
}

func (s *Selection) Clear() {
	s.mu.Lock()
	s.ids = make(map[uuid.UUID]struct{})
	s.mu.Unlock()
}

func (s *Selection) Contains(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.ids[id]
	return ok
}

func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.ids)
}

// IDs returns the selected ids in a stable order.
func (s *Selection) IDs() []uuid.UUID {
	s.mu.Lock()
	out := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
