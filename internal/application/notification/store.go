// Package notification caches the current user's notifications.
package notification

import (
	"slices"
	"sync"

	"github.com/eventease/portal/internal/domain"
)

// State is what subscribers observe after every mutation.
type State struct {
	Total  int
	Unread int
}

// Store owns the cached list. It keeps server order and never sorts.
type Store struct {
	mu    sync.RWMutex
	items []domain.Notification
	gen   uint64 // bumped whenever the collection is replaced

	lmu       sync.Mutex
	listeners map[int]func(State)
	nextID    int
}

func NewStore() *Store {
	return &Store{listeners: make(map[int]func(State))}
}

// Load replaces the whole collection with list.
func (s *Store) Load(list []domain.Notification) {
	items := make([]domain.Notification, len(list))
	for i := range list {
		items[i] = cloneNotification(list[i])
	}
	s.mu.Lock()
	s.items = items
	s.gen++
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
}

// MarkRead flags id as read. Unknown ids are ignored.
func (s *Store) MarkRead(id int64) { s.setRead(id, true) }

// MarkUnread flags id as unread. Unknown ids are ignored.
func (s *Store) MarkUnread(id int64) { s.setRead(id, false) }

// setRead reports the previous flag, the collection generation it was
// applied to and whether id was present.
func (s *Store) setRead(id int64, read bool) (prev bool, gen uint64, found bool) {
	s.mu.Lock()
	i := slices.IndexFunc(s.items, func(n domain.Notification) bool { return n.ID == id })
	if i < 0 {
		s.mu.Unlock()
		return false, 0, false
	}
	prev = s.items[i].IsRead
	gen = s.gen
	s.items[i].IsRead = read
	st := s.stateLocked()
	s.mu.Unlock()

	if prev != read {
		s.notify(st)
	}
	return prev, gen, true
}

// revert restores id's flag to prev unless the collection was replaced
// since generation gen.
func (s *Store) revert(id int64, prev bool, gen uint64) bool {
	s.mu.Lock()
	i := slices.IndexFunc(s.items, func(n domain.Notification) bool { return n.ID == id })
	if s.gen != gen || i < 0 || s.items[i].IsRead == prev {
		s.mu.Unlock()
		return false
	}
	s.items[i].IsRead = prev
	st := s.stateLocked()
	s.mu.Unlock()
	s.notify(st)
	return true
}

// UnreadCount counts unread entries on every call.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unreadLocked()
}

// List returns a copy of the collection in server order.
func (s *Store) List() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Notification, len(s.items))
	for i := range s.items {
		out[i] = cloneNotification(s.items[i])
	}
	return out
}

// Clear empties the store at session teardown.
func (s *Store) Clear() {
	s.mu.Lock()
	had := len(s.items) > 0
	s.items = nil
	s.gen++
	st := s.stateLocked()
	s.mu.Unlock()
	if had {
		s.notify(st)
	}
}

// Subscribe registers fn for changes and returns its cancel func.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.lmu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.lmu.Unlock()
	return func() {
		s.lmu.Lock()
		delete(s.listeners, id)
		s.lmu.Unlock()
	}
}

func (s *Store) unreadLocked() int {
	n := 0
	for i := range s.items {
		if !s.items[i].IsRead {
			n++
		}
	}
	return n
}

func (s *Store) stateLocked() State {
	return State{Total: len(s.items), Unread: s.unreadLocked()}
}

func (s *Store) notify(st State) {
	s.lmu.Lock()
	fns := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()
	for _, fn := range fns {
		fn(st)
	}
}

func cloneNotification(n domain.Notification) domain.Notification {
	if n.EventID != nil {
		id := *n.EventID
		n.EventID = &id
	}
	return n
}
