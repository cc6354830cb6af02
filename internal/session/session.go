package session

import (
	"time"
)

// TripKey identifies a liked trip by structural equality.
type TripKey struct {
	Title string
	Area  string
}

// HistoryEntry is one liked trip in a user's history.
type HistoryEntry struct {
	Title   string
	Area    string
	SavedAt time.Time
}

// Key returns the duplicate-detection key for the entry.
func (e HistoryEntry) Key() TripKey {
	return TripKey{Title: e.Title, Area: e.Area}
}

// Session holds per-user browsing state. The seen set always mirrors the
// distinct (title, area) membership of History.
type Session struct {
	Area                 string
	Offset               int
	History              []HistoryEntry
	LastTemp             string
	AwaitingClearConfirm bool

	seen map[TripKey]struct{}
}

// New returns an empty session.
func New() *Session {
	return &Session{seen: make(map[TripKey]struct{})}
}

// ensureSeen rebuilds the seen set from History when the session was created
// without New (zero value or seeded from storage).
func (s *Session) ensureSeen() {
	if s.seen != nil {
		return
	}
	s.seen = make(map[TripKey]struct{}, len(s.History))
	for _, e := range s.History {
		s.seen[e.Key()] = struct{}{}
	}
}

// Liked reports whether the key is already in history.
func (s *Session) Liked(key TripKey) bool {
	s.ensureSeen()
	_, ok := s.seen[key]
	return ok
}

// MarkLiked appends a history entry unless its (title, area) key is already
// present. It reports whether the entry was appended.
func (s *Session) MarkLiked(entry HistoryEntry) bool {
	s.ensureSeen()
	key := entry.Key()
	if _, dup := s.seen[key]; dup {
		return false
	}
	s.seen[key] = struct{}{}
	s.History = append(s.History, entry)
	return true
}

// ClearHistory empties history and the seen set, preserving area and offset.
func (s *Session) ClearHistory() {
	s.History = nil
	s.seen = make(map[TripKey]struct{})
}

// SeedHistory replaces history wholesale, deduplicating by key while keeping
// first-occurrence order. Used when loading persisted history into a fresh session.
func (s *Session) SeedHistory(entries []HistoryEntry) {
	s.History = nil
	s.seen = make(map[TripKey]struct{}, len(entries))
	for _, e := range entries {
		key := e.Key()
		if _, dup := s.seen[key]; dup {
			continue
		}
		s.seen[key] = struct{}{}
		s.History = append(s.History, e)
	}
}

// Clone returns an independent copy of the session. History is copied so the
// clone stays stable while the original keeps mutating under the store lock.
func (s *Session) Clone() *Session {
	out := &Session{
		Area:                 s.Area,
		Offset:               s.Offset,
		LastTemp:             s.LastTemp,
		AwaitingClearConfirm: s.AwaitingClearConfirm,
	}
	if len(s.History) > 0 {
		out.History = make([]HistoryEntry, len(s.History))
		copy(out.History, s.History)
	}
	return out
}

// FirstUnseen returns the index of the first title not yet liked within the
// given area, or len(titles) when every trip was liked already.
func (s *Session) FirstUnseen(area string, titles []string) int {
	s.ensureSeen()
	for i, title := range titles {
		if _, liked := s.seen[TripKey{Title: title, Area: area}]; !liked {
			return i
		}
	}
	return len(titles)
}
