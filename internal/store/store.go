// Package store provides the in-memory entity collection backing the chat
// model: a unique by-id index, an optional secondary text index, and
// insertion-ordered iteration.
//
// The text index maps each key to the ordered list of ids inserted under it.
// Duplicates are permitted; FirstByText deterministically returns the first
// inserted candidate, so later records with the same name or title are
// shadowed for text lookup but stay reachable by id.
//
// A Store is not safe for concurrent use; the model serializes access under
// its global lock.
package store

import "github.com/google/uuid"

// Store is an insertion-ordered collection of records addressed by id.
type Store[T any] struct {
	order  []uuid.UUID
	byID   map[uuid.UUID]T
	byText map[string][]uuid.UUID
}

// New creates an empty store.
func New[T any]() *Store[T] {
	return &Store[T]{
		byID:   make(map[uuid.UUID]T),
		byText: make(map[string][]uuid.UUID),
	}
}

// Put inserts a record under id and, when text is non-empty, registers it as
// a candidate for that text key. Inserting an id twice replaces the record
// but keeps its original position.
func (s *Store[T]) Put(id uuid.UUID, text string, v T) {
	if _, exists := s.byID[id]; !exists {
		s.order = append(s.order, id)
		if text != "" {
			s.byText[text] = append(s.byText[text], id)
		}
	}
	s.byID[id] = v
}

// Get returns the record stored under id.
func (s *Store[T]) Get(id uuid.UUID) (T, bool) {
	v, ok := s.byID[id]
	return v, ok
}

// FirstByText returns the first record ever inserted under the text key.
func (s *Store[T]) FirstByText(text string) (T, bool) {
	var zero T
	ids := s.byText[text]
	if len(ids) == 0 {
		return zero, false
	}
	return s.byID[ids[0]], true
}

// All returns the records in insertion order.
func (s *Store[T]) All() []T {
	out := make([]T, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Len returns the number of stored records.
func (s *Store[T]) Len() int {
	return len(s.order)
}
