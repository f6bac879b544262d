package reaction

import (
	"sync"
	"time"
)

// Key identifies a tracked message. ThreadID is the channel or thread the message lives in.
type Key struct {
	ThreadID  string
	MessageID string
}

type Event struct {
	ArrivedAt     time.Time
	ParticipantID string
	IsBot         bool
}

// Store indexes reaction events per tracked message.
// Entries exist only between BeginTracking and Drain; nothing expires on its own.
type Store struct {
	mu      sync.Mutex
	entries map[Key][]Event
}

func NewStore() *Store {
	return &Store{entries: make(map[Key][]Event)}
}

// BeginTracking creates an empty entry for key. Calling it again keeps recorded events.
func (s *Store) BeginTracking(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[key]; ok {
		return
	}
	s.entries[key] = make([]Event, 0, 8)
}

// Record appends ev to the entry for key. Bot events and untracked keys are ignored.
func (s *Store) Record(key Key, ev Event) bool {
	if ev.IsBot || ev.ParticipantID == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	events, ok := s.entries[key]
	if !ok {
		return false
	}
	s.entries[key] = append(events, ev)
	return true
}

// Drain returns the events recorded for key in arrival order and stops tracking it.
func (s *Store) Drain(key Key) []Event {
	s.mu.Lock()
	events := s.entries[key]
	delete(s.entries, key)
	s.mu.Unlock()
	if events == nil {
		return []Event{}
	}
	return events
}

func (s *Store) IsTracked(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[key]
	return ok
}

func (s *Store) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
