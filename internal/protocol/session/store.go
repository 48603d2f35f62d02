package session

import (
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/danmuck/t3codec/internal/protocol"
)

var (
	ErrStoreFull     = errors.New("session: store is full")
	ErrEmptyStream   = errors.New("session: empty stream name")
	ErrProfileChange = errors.New("session: stream already open with another profile")
)

// Store keeps named stream sessions, bounded to a fixed count.
type Store struct {
	mu    sync.RWMutex
	limit int
	items map[string]*Session
}

// NewStore returns a store holding at most limit sessions; limit <= 0 means
// unbounded.
func NewStore(limit int) *Store {
	return &Store{
		limit: limit,
		items: make(map[string]*Session),
	}
}

// Open returns the session for stream, creating it with profile when absent.
func (st *Store) Open(stream string, profile protocol.ProfileID) (*Session, error) {
	key := strings.TrimSpace(stream)
	if key == "" {
		return nil, ErrEmptyStream
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.items[key]; ok {
		if s.Profile() != profile {
			return nil, ErrProfileChange
		}
		return s, nil
	}
	if st.limit > 0 && len(st.items) >= st.limit {
		return nil, ErrStoreFull
	}
	s := New(profile)
	st.items[key] = s
	return s, nil
}

func (st *Store) Get(stream string) (*Session, bool) {
	key := strings.TrimSpace(stream)
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.items[key]
	return s, ok
}

// Remove drops the stream and reports whether it existed.
func (st *Store) Remove(stream string) bool {
	key := strings.TrimSpace(stream)
	st.mu.Lock()
	defer st.mu.Unlock()
	_, ok := st.items[key]
	delete(st.items, key)
	return ok
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.items)
}

// List returns snapshots sorted by stream name.
func (st *Store) List() []Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]Snapshot, 0, len(st.items))
	for name, s := range st.items {
		out = append(out, s.Snapshot(name))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Stream < out[j].Stream
	})
	return out
}
