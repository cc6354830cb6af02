package flow

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saeedyasen/travelbot/internal/catalog"
	"github.com/saeedyasen/travelbot/internal/session"
	"github.com/saeedyasen/travelbot/internal/weather"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWeather struct {
	reading weather.Reading
	err     error
	calls   int
}

func (f *fakeWeather) CurrentTemp(_ context.Context, _ string) (weather.Reading, error) {
	f.calls++
	return f.reading, f.err
}

type fakeNarrator struct {
	text string
	err  error
}

func (f *fakeNarrator) TripSummary(_ context.Context, _, _, _ string) (string, error) {
	return f.text, f.err
}

type fakeHistoryRepo struct {
	entries  map[int64][]session.HistoryEntry
	appends  int
	clears   int
	loadErr  error
	appendEr error
}

func (f *fakeHistoryRepo) Load(_ context.Context, userID int64) ([]session.HistoryEntry, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.entries[userID], nil
}

func (f *fakeHistoryRepo) Append(_ context.Context, userID int64, entry session.HistoryEntry) error {
	if f.appendEr != nil {
		return f.appendEr
	}
	f.appends++
	if f.entries == nil {
		f.entries = make(map[int64][]session.HistoryEntry)
	}
	f.entries[userID] = append(f.entries[userID], entry)
	return nil
}

func (f *fakeHistoryRepo) Clear(_ context.Context, userID int64) error {
	f.clears++
	delete(f.entries, userID)
	return nil
}

func testCatalog(t *testing.T, trips []catalog.Trip) *catalog.Catalog {
	t.Helper()
	raw, err := json.Marshal(trips)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "trips.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	c, err := catalog.Load(path)
	require.NoError(t, err)
	return c
}

func northPair(t *testing.T) *catalog.Catalog {
	return testCatalog(t, []catalog.Trip{
		{Title: "A", Area: "North", Place: "PlaceA", Description: "descA", ImageURL: "http://img/a"},
		{Title: "B", Area: "North", Place: "PlaceB", Description: "descB", ImageURL: "http://img/b"},
	})
}

type env struct {
	ctrl  *Controller
	store *session.MemoryStore
	wx    *fakeWeather
	nar   *fakeNarrator
	repo  *fakeHistoryRepo
}

func newEnv(t *testing.T, c *catalog.Catalog, repo *fakeHistoryRepo) *env {
	t.Helper()
	e := &env{
		store: session.NewMemoryStore(),
		wx:    &fakeWeather{reading: weather.Reading{Temp: 21.5, Units: "metric"}},
		nar:   &fakeNarrator{text: "blurb"},
		repo:  repo,
	}
	var history HistoryRepo
	if repo != nil {
		history = repo
	}
	e.ctrl = NewController(Options{
		Catalog:  c,
		Store:    e.store,
		Weather:  e.wx,
		Narrator: e.nar,
		History:  history,
		Now:      func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) },
	})
	return e
}

func texts(replies []Reply) []string {
	var out []string
	for _, r := range replies {
		if r.Kind != ReplyPhoto {
			out = append(out, r.Text)
		}
	}
	return out
}

const uid = int64(42)

func TestStartGreetsWithAreaKeyboard(t *testing.T) {
	e := newEnv(t, northPair(t), nil)

	replies := e.ctrl.Start(context.Background(), uid)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Choose a travel area:")
	assert.Equal(t, KeyboardAreas, replies[0].Keyboard)
}

func TestPresentWithoutAreaReprompts(t *testing.T) {
	e := newEnv(t, northPair(t), nil)
	e.ctrl.Start(context.Background(), uid)

	replies := e.ctrl.Present(context.Background(), uid)
	require.Len(t, replies, 1)
	assert.Equal(t, "Please select a travel area first using /start.", replies[0].Text)
}

func TestSelectAreaPresentsFirstTripWithWeather(t *testing.T) {
	e := newEnv(t, northPair(t), nil)
	e.ctrl.Start(context.Background(), uid)

	replies := e.ctrl.SelectArea(context.Background(), uid, "North", false)
	require.Len(t, replies, 3)
	assert.Contains(t, replies[0].Text, "Great! You chose the North")

	assert.Equal(t, ReplyPhoto, replies[1].Kind)
	assert.Equal(t, "http://img/a", replies[1].PhotoURL)

	assert.Contains(t, replies[2].Text, "trip options in the North")
	assert.Contains(t, replies[2].Text, "A\n21.5°C\ndescA\nPlaceA")
	assert.Equal(t, KeyboardFeedback, replies[2].Keyboard)

	s, ok := e.store.Get(uid)
	require.True(t, ok)
	assert.Equal(t, "21.5°C", s.LastTemp)
}

func TestLikeSavesWithoutAdvancingThenShowMoreAdvances(t *testing.T) {
	e := newEnv(t, northPair(t), nil)
	e.ctrl.Start(context.Background(), uid)
	e.ctrl.SelectArea(context.Background(), uid, "North", false)

	replies := e.ctrl.Like(context.Background(), uid)
	require.Len(t, replies, 2)
	assert.Equal(t, "✅ A saved to your trip history!", replies[0].Text)
	assert.Contains(t, replies[1].Text, "📍 A")
	assert.Contains(t, replies[1].Text, "מזג האוויר היום: 21.5°C")
	assert.Contains(t, replies[1].Text, "blurb")
	assert.Equal(t, KeyboardShowMore, replies[1].Keyboard)

	s, _ := e.store.Get(uid)
	require.Len(t, s.History, 1)
	assert.Equal(t, 0, s.Offset)

	more := e.ctrl.ShowMore(context.Background(), uid)
	s, _ = e.store.Get(uid)
	assert.Equal(t, 1, s.Offset)
	assert.Contains(t, texts(more)[0], "B\n21.5°C\ndescB\nPlaceB")
}

func TestDuplicateLikeDoesNotGrowHistory(t *testing.T) {
	e := newEnv(t, northPair(t), nil)
	e.ctrl.Start(context.Background(), uid)
	e.ctrl.SelectArea(context.Background(), uid, "North", false)

	e.ctrl.Like(context.Background(), uid)
	replies := e.ctrl.Like(context.Background(), uid)
	assert.Equal(t, "ℹ️ A is already in your trip history.", replies[0].Text)

	s, _ := e.store.Get(uid)
	assert.Len(t, s.History, 1)
}

func TestSkipAdvancesAndExhausts(t *testing.T) {
	e := newEnv(t, northPair(t), nil)
	e.ctrl.Start(context.Background(), uid)
	e.ctrl.SelectArea(context.Background(), uid, "North", false)

	replies := e.ctrl.Skip(context.Background(), uid)
	assert.Contains(t, texts(replies)[0], "B\n")

	replies = e.ctrl.Skip(context.Background(), uid)
	require.Len(t, replies, 1)
	assert.Equal(t, "✅ You’ve seen all trip suggestions in this area.", replies[0].Text)

	// Past the end every further skip reports exhaustion without catalog access.
	calls := e.wx.calls
	replies = e.ctrl.Skip(context.Background(), uid)
	assert.Equal(t, "No more suggestions available.", replies[0].Text)
	assert.Equal(t, calls, e.wx.calls)
}

func TestAreaReselectionSkipsLikedPrefix(t *testing.T) {
	c := testCatalog(t, []catalog.Trip{
		{Title: "A", Area: "North", Place: "pa"},
		{Title: "B", Area: "North", Place: "pb"},
		{Title: "C", Area: "North", Place: "pc"},
		{Title: "D", Area: "North", Place: "pd"},
		{Title: "E", Area: "North", Place: "pe"},
	})
	e := newEnv(t, c, nil)
	e.ctrl.Start(context.Background(), uid)
	e.ctrl.SelectArea(context.Background(), uid, "North", false)

	// Like A, show more, like B.
	e.ctrl.Like(context.Background(), uid)
	e.ctrl.ShowMore(context.Background(), uid)
	e.ctrl.Like(context.Background(), uid)

	// Greeting preserves history; re-selecting the area recomputes the offset.
	e.ctrl.Start(context.Background(), uid)
	s, _ := e.store.Get(uid)
	assert.Len(t, s.History, 2)
	assert.Empty(t, s.Area)

	e.ctrl.SelectArea(context.Background(), uid, "North", false)
	s, _ = e.store.Get(uid)
	assert.Equal(t, 2, s.Offset)
}

func TestTextAreaSelectionResetsOffset(t *testing.T) {
	e := newEnv(t, northPair(t), nil)
	e.ctrl.Start(context.Background(), uid)
	e.ctrl.SelectArea(context.Background(), uid, "North", false)
	e.ctrl.Skip(context.Background(), uid)

	e.ctrl.SelectArea(context.Background(), uid, "North", true)
	s, _ := e.store.Get(uid)
	assert.Equal(t, 0, s.Offset)
}

func TestWeatherAPIErrorStillPresents(t *testing.T) {
	e := newEnv(t, northPair(t), nil)
	e.wx.err = &weather.APIError{StatusCode: 404, Message: "city not found"}
	e.ctrl.Start(context.Background(), uid)

	replies := e.ctrl.SelectArea(context.Background(), uid, "North", false)
	body := texts(replies)[1]
	assert.Contains(t, body, "Weather API error: city not found")
	assert.Contains(t, body, "A\n")
}

func TestWeatherTransportErrorFallsBackToUnavailable(t *testing.T) {
	e := newEnv(t, northPair(t), nil)
	e.wx.err = errors.New("dial tcp: connection refused")
	e.ctrl.Start(context.Background(), uid)

	replies := e.ctrl.SelectArea(context.Background(), uid, "North", false)
	assert.Contains(t, texts(replies)[1], "Temperature info not available")
}

func TestNarrativeFallsBackToExpandedDescription(t *testing.T) {
	c := testCatalog(t, []catalog.Trip{
		{Title: "A", Area: "North", Place: "pa", ExpandedDescription: "static blurb"},
		{Title: "B", Area: "North", Place: "pb"},
	})
	e := newEnv(t, c, nil)
	e.nar.err = errors.New("model overloaded")
	e.ctrl.Start(context.Background(), uid)
	e.ctrl.SelectArea(context.Background(), uid, "North", false)

	replies := e.ctrl.Like(context.Background(), uid)
	assert.Contains(t, replies[1].Text, "static blurb")

	// Without a static description, a generic placeholder is used.
	e.ctrl.ShowMore(context.Background(), uid)
	replies = e.ctrl.Like(context.Background(), uid)
	assert.Contains(t, replies[1].Text, "No additional description available.")
}

func TestFeedbackWithoutAreaPrompts(t *testing.T) {
	e := newEnv(t, northPair(t), nil)

	replies := e.ctrl.Like(context.Background(), uid)
	assert.Equal(t, "Please start by selecting an area using /start.", replies[0].Text)

	e.ctrl.Start(context.Background(), uid)
	replies = e.ctrl.Skip(context.Background(), uid)
	assert.Equal(t, "Please start by selecting an area using /start.", replies[0].Text)
}

func TestShowMoreWithoutSessionPrompts(t *testing.T) {
	e := newEnv(t, northPair(t), nil)

	replies := e.ctrl.ShowMore(context.Background(), uid)
	assert.Equal(t, "Please start with /start", replies[0].Text)
}

func TestHistoryListingAndClearFlow(t *testing.T) {
	e := newEnv(t, northPair(t), nil)

	replies := e.ctrl.History(context.Background(), uid)
	assert.Equal(t, "📭 No saved trips yet.", replies[0].Text)

	e.ctrl.Start(context.Background(), uid)
	e.ctrl.SelectArea(context.Background(), uid, "North", false)
	e.ctrl.Like(context.Background(), uid)

	replies = e.ctrl.History(context.Background(), uid)
	assert.Contains(t, replies[0].Text, "🗺️ Saved Trips:")
	assert.Contains(t, replies[0].Text, "1. A – North – saved on 2026-03-14 12:00")

	replies = e.ctrl.ClearRequest(context.Background(), uid)
	assert.Equal(t, "⚠️ Are you sure you want to delete your entire trip history?", replies[0].Text)
	assert.Equal(t, KeyboardConfirm, replies[0].Keyboard)
	assert.True(t, e.store.AwaitingConfirm(uid))

	before, _ := e.store.Get(uid)
	area, offset := before.Area, before.Offset

	replies = e.ctrl.ClearConfirm(context.Background(), uid)
	assert.Equal(t, "✅ All saved trips have been cleared.", replies[0].Text)
	assert.Equal(t, KeyboardRemove, replies[0].Keyboard)
	assert.False(t, e.store.AwaitingConfirm(uid))

	s, _ := e.store.Get(uid)
	assert.Empty(t, s.History)
	assert.Equal(t, area, s.Area)
	assert.Equal(t, offset, s.Offset)
}

func TestClearCancelLeavesHistoryUntouched(t *testing.T) {
	e := newEnv(t, northPair(t), nil)
	e.ctrl.Start(context.Background(), uid)
	e.ctrl.SelectArea(context.Background(), uid, "North", false)
	e.ctrl.Like(context.Background(), uid)

	e.ctrl.ClearRequest(context.Background(), uid)
	replies := e.ctrl.ClearCancel(context.Background(), uid)
	assert.Equal(t, "❎ Trip history was not deleted.", replies[0].Text)
	assert.False(t, e.store.AwaitingConfirm(uid))

	s, _ := e.store.Get(uid)
	assert.Len(t, s.History, 1)
}

func TestHistoryRepoSeedAppendClear(t *testing.T) {
	repo := &fakeHistoryRepo{entries: map[int64][]session.HistoryEntry{
		uid: {{Title: "A", Area: "North", SavedAt: time.Now()}},
	}}
	e := newEnv(t, northPair(t), repo)

	// Fresh session is seeded from storage.
	e.ctrl.Start(context.Background(), uid)
	s, _ := e.store.Get(uid)
	require.Len(t, s.History, 1)

	// Re-selecting the area skips the persisted like.
	e.ctrl.SelectArea(context.Background(), uid, "North", false)
	s, _ = e.store.Get(uid)
	assert.Equal(t, 1, s.Offset)

	// A new like writes through; clearing wipes the table.
	e.ctrl.Like(context.Background(), uid)
	assert.Equal(t, 1, repo.appends)

	e.ctrl.ClearRequest(context.Background(), uid)
	e.ctrl.ClearConfirm(context.Background(), uid)
	assert.Equal(t, 1, repo.clears)
	assert.Empty(t, repo.entries[uid])
}

func TestHistoryLoadFailureDegradesToEmpty(t *testing.T) {
	repo := &fakeHistoryRepo{loadErr: errors.New("db down")}
	e := newEnv(t, northPair(t), repo)

	e.ctrl.Start(context.Background(), uid)
	s, ok := e.store.Get(uid)
	require.True(t, ok)
	assert.Empty(t, s.History)
}

func TestLikeUsesLastTempAndFallsBackToNA(t *testing.T) {
	e := newEnv(t, northPair(t), nil)
	e.ctrl.Start(context.Background(), uid)

	// Like before any presentation stored a temperature.
	e.store.Update(uid, func(s *session.Session) { s.Area = "North" })
	replies := e.ctrl.Like(context.Background(), uid)
	assert.Contains(t, replies[1].Text, "מזג האוויר היום: N/A")
}
