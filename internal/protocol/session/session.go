package session

import (
	"sync"

	"github.com/danmuck/t3codec/internal/protocol"
)

// Session is the decoder-side view of one stream.
type Session struct {
	mu        sync.RWMutex
	profile   protocol.ProfileID
	last      protocol.SuperframeHeader
	seen      bool
	frames    uint64
	corrected uint64
}

// New returns a session expecting frames of the given profile. ProfileRaw
// makes the decoder pass words through untouched.
func New(profile protocol.ProfileID) *Session {
	return &Session{profile: profile}
}

func (s *Session) Profile() protocol.ProfileID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// Raw reports whether the stream carries unprotected words.
func (s *Session) Raw() bool { return s.Profile() == protocol.ProfileRaw }

// LastSeen returns the most recent validated header.
func (s *Session) LastSeen() (protocol.SuperframeHeader, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.seen
}

// Observe records a validated header and the symbols corrected in its frame.
func (s *Session) Observe(h protocol.SuperframeHeader, corrected int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = h
	s.seen = true
	s.frames++
	if corrected > 0 {
		s.corrected += uint64(corrected)
	}
}

// ObserveRaw counts a pass-through frame.
func (s *Session) ObserveRaw() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
}

func (s *Session) Frames() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

func (s *Session) Corrected() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corrected
}

// Reset forgets the last header and counters but keeps the profile.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = protocol.SuperframeHeader{}
	s.seen = false
	s.frames = 0
	s.corrected = 0
}

// Snapshot is a point-in-time copy of a session for reporting.
type Snapshot struct {
	Stream    string
	Profile   protocol.ProfileID
	Seen      bool
	Last      protocol.SuperframeHeader
	Frames    uint64
	Corrected uint64
}

// Snapshot copies the session state under stream.
func (s *Session) Snapshot(stream string) Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Stream:    stream,
		Profile:   s.profile,
		Seen:      s.seen,
		Last:      s.last,
		Frames:    s.frames,
		Corrected: s.corrected,
	}
}
