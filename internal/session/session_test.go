package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(title, area string) HistoryEntry {
	return HistoryEntry{Title: title, Area: area, SavedAt: time.Now()}
}

func TestMarkLikedRejectsDuplicates(t *testing.T) {
	s := New()

	assert.True(t, s.MarkLiked(entry("Masada", "South")))
	assert.False(t, s.MarkLiked(entry("Masada", "South")))
	assert.Len(t, s.History, 1)

	// Same title in a different area is a distinct trip.
	assert.True(t, s.MarkLiked(entry("Masada", "North")))
	assert.Len(t, s.History, 2)
}

func TestSeenSetMatchesHistoryMembership(t *testing.T) {
	s := New()
	s.MarkLiked(entry("A", "North"))
	s.MarkLiked(entry("B", "North"))
	s.MarkLiked(entry("A", "North"))

	require.Len(t, s.History, 2)
	assert.True(t, s.Liked(TripKey{Title: "A", Area: "North"}))
	assert.True(t, s.Liked(TripKey{Title: "B", Area: "North"}))
	assert.False(t, s.Liked(TripKey{Title: "C", Area: "North"}))
}

func TestClearHistoryPreservesAreaAndOffset(t *testing.T) {
	s := New()
	s.Area = "North"
	s.Offset = 3
	s.MarkLiked(entry("A", "North"))

	s.ClearHistory()

	assert.Empty(t, s.History)
	assert.False(t, s.Liked(TripKey{Title: "A", Area: "North"}))
	assert.Equal(t, "North", s.Area)
	assert.Equal(t, 3, s.Offset)

	// Clearing twice is a no-op, and liking again works.
	s.ClearHistory()
	assert.True(t, s.MarkLiked(entry("A", "North")))
}

func TestFirstUnseen(t *testing.T) {
	s := New()
	titles := []string{"A", "B", "C", "D", "E"}

	assert.Equal(t, 0, s.FirstUnseen("North", titles))

	s.MarkLiked(entry("A", "North"))
	s.MarkLiked(entry("B", "North"))
	assert.Equal(t, 2, s.FirstUnseen("North", titles))

	// Likes in another area do not advance this area's offset.
	assert.Equal(t, 0, s.FirstUnseen("South", titles))

	for _, title := range titles {
		s.MarkLiked(entry(title, "North"))
	}
	assert.Equal(t, len(titles), s.FirstUnseen("North", titles))
}

func TestSeedHistoryDeduplicates(t *testing.T) {
	s := New()
	s.SeedHistory([]HistoryEntry{
		entry("A", "North"),
		entry("B", "South"),
		entry("A", "North"),
	})

	require.Len(t, s.History, 2)
	assert.Equal(t, "A", s.History[0].Title)
	assert.Equal(t, "B", s.History[1].Title)
}

func TestZeroValueSessionRebuildsSeenSet(t *testing.T) {
	s := &Session{History: []HistoryEntry{entry("A", "North")}}

	assert.False(t, s.MarkLiked(entry("A", "North")))
	assert.True(t, s.MarkLiked(entry("B", "North")))
}

func TestMemoryStoreUpdateCreatesAndMutatesAtomically(t *testing.T) {
	store := NewMemoryStore()

	_, ok := store.Get(7)
	require.False(t, ok)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Update(7, func(s *Session) {
				s.Offset++
			})
		}()
	}
	wg.Wait()

	s, ok := store.Get(7)
	require.True(t, ok)
	assert.Equal(t, 50, s.Offset)
}

func TestMemoryStoreGetReturnsSnapshot(t *testing.T) {
	store := NewMemoryStore()
	store.Update(1, func(s *Session) { s.MarkLiked(entry("A", "North")) })

	snap, ok := store.Get(1)
	require.True(t, ok)

	store.Update(1, func(s *Session) { s.MarkLiked(entry("B", "North")) })
	assert.Len(t, snap.History, 1)
}

func TestMemoryStoreAwaitingConfirm(t *testing.T) {
	store := NewMemoryStore()
	assert.False(t, store.AwaitingConfirm(1))

	store.Update(1, func(s *Session) { s.AwaitingClearConfirm = true })
	assert.True(t, store.AwaitingConfirm(1))

	store.Update(1, func(s *Session) { s.AwaitingClearConfirm = false })
	assert.False(t, store.AwaitingConfirm(1))
}
