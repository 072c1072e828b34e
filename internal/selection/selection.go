// Package selection implements the transient multi-select state over a
// displayed entry list.
//
// A Selection is scoped to one screen session: it is created when the list
// is displayed and discarded with it, it never touches the store.
package selection

import (
	"sync"

	"golang.org/x/exp/slices"
)

// Selection tracks which entries are selected while selection mode is
// active. All methods serialize on an internal mutex, concurrent toggles
// for the same entry are applied in issue order.
type Selection struct {
	mu       sync.Mutex
	active   bool
	selected map[uint64]bool
}

// New returns an inactive selection with nothing selected.
func New() *Selection {
	return &Selection{
		selected: make(map[uint64]bool),
	}
}

// Start enters selection mode with a long-press on an entry. Entering the
// mode selects that entry, there is no mode with zero implied selections.
func (s *Selection) Start(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = true
	s.selected[id] = true
}

// Toggle sets the selection state of exactly one entry, all others are
// left untouched.
func (s *Selection) Toggle(id uint64, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = true
	if value {
		s.selected[id] = true
	} else {
		delete(s.selected, id)
	}
}

// SelectAll sets every currently visible entry to value.
func (s *Selection) SelectAll(ids []uint64, value bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = true
	for _, id := range ids {
		if value {
			s.selected[id] = true
		} else {
			delete(s.selected, id)
		}
	}
}

// Clear exits selection mode and unselects everything.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active = false
	s.selected = make(map[uint64]bool)
}

// Active reports whether selection mode is on.
func (s *Selection) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

// IsSelected reports whether a single entry is selected.
func (s *Selection) IsSelected(id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.selected[id]
}

// IDs returns the ids of all selected entries in ascending order.
func (s *Selection) IDs() []uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint64, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}

	slices.Sort(ids)
	return ids
}

// Count returns the number of selected entries.
func (s *Selection) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.selected)
}
