package flow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saeedyasen/travelbot/core/logger"
	"github.com/saeedyasen/travelbot/core/telegram/format"
	"github.com/saeedyasen/travelbot/internal/catalog"
	"github.com/saeedyasen/travelbot/internal/session"
	"github.com/saeedyasen/travelbot/internal/weather"
	"log/slog"
)

// Weather fetches the current temperature for a place.
type Weather interface {
	CurrentTemp(ctx context.Context, place string) (weather.Reading, error)
}

// Narrator generates a short blurb for a liked trip.
type Narrator interface {
	TripSummary(ctx context.Context, title, place, temp string) (string, error)
}

// HistoryRepo persists liked trips across restarts. Optional.
type HistoryRepo interface {
	Load(ctx context.Context, userID int64) ([]session.HistoryEntry, error)
	Append(ctx context.Context, userID int64, entry session.HistoryEntry) error
	Clear(ctx context.Context, userID int64) error
}

// ReplyKind distinguishes how a reply is rendered by the transport binding.
type ReplyKind int

const (
	ReplyText ReplyKind = iota
	ReplyMarkdown
	ReplyPhoto
)

// Keyboard selects the markup attached to a reply.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardAreas
	KeyboardFeedback
	KeyboardShowMore
	KeyboardConfirm
	KeyboardRemove
)

// Reply is one outbound message produced by a flow operation, in send order.
type Reply struct {
	Kind     ReplyKind
	Text     string
	PhotoURL string
	Keyboard Keyboard
}

func textReply(text string) Reply {
	return Reply{Kind: ReplyText, Text: text}
}

// Controller implements the per-user browsing flow over injected collaborators.
type Controller struct {
	catalog  *catalog.Catalog
	store    session.Store
	weather  Weather
	narrator Narrator
	history  HistoryRepo

	now func() time.Time
}

// Options collects Controller dependencies. History may be nil.
type Options struct {
	Catalog  *catalog.Catalog
	Store    session.Store
	Weather  Weather
	Narrator Narrator
	History  HistoryRepo

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewController wires a Controller.
func NewController(opts Options) *Controller {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Controller{
		catalog:  opts.Catalog,
		store:    opts.Store,
		weather:  opts.Weather,
		narrator: opts.Narrator,
		history:  opts.History,
		now:      now,
	}
}

// Store exposes the session store for confirmation gating.
func (f *Controller) Store() session.Store {
	return f.store
}

func (f *Controller) areaTitles(area string) []string {
	trips := f.catalog.ByArea(area)
	titles := make([]string, len(trips))
	for i, t := range trips {
		titles[i] = t.Title
	}
	return titles
}

// Start creates or refreshes the session. History is preserved; when an area
// was selected before, the offset is recomputed to that area's first unseen
// trip so a returning user never re-enters at an already-liked entry.
func (f *Controller) Start(ctx context.Context, userID int64) []Reply {
	f.seedFromHistory(ctx, userID)

	var prevArea string
	f.store.Update(userID, func(s *session.Session) {
		prevArea = s.Area
		if prevArea != "" {
			s.Offset = s.FirstUnseen(prevArea, f.areaTitles(prevArea))
		}
		s.Area = ""
		s.AwaitingClearConfirm = false
	})

	logger.Info(ctx, "service.sessions", "session.start",
		slog.Int64("user_id", userID),
		slog.String("area", prevArea),
	)

	return []Reply{{Kind: ReplyText, Text: textWelcome, Keyboard: KeyboardAreas}}
}

// seedFromHistory loads persisted likes into a fresh session when a history
// repository is configured. Best effort: a storage fault degrades to an empty
// in-memory history rather than blocking the flow.
func (f *Controller) seedFromHistory(ctx context.Context, userID int64) {
	if f.history == nil {
		return
	}
	if _, ok := f.store.Get(userID); ok {
		return
	}
	entries, err := f.history.Load(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "service.sessions", "session.seed.failed",
			slog.Int64("user_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return
	}
	if len(entries) == 0 {
		return
	}
	f.store.Update(userID, func(s *session.Session) {
		s.SeedHistory(entries)
	})
}

// SelectArea handles both selection paths. The callback path recomputes the
// offset to skip already-liked trips; the legacy text path resets it to 0.
func (f *Controller) SelectArea(ctx context.Context, userID int64, area string, resetOffset bool) []Reply {
	f.store.Update(userID, func(s *session.Session) {
		s.Area = area
		if resetOffset {
			s.Offset = 0
		} else {
			s.Offset = s.FirstUnseen(area, f.areaTitles(area))
		}
	})

	logger.Info(ctx, "service.sessions", "session.area",
		slog.Int64("user_id", userID),
		slog.String("area", area),
	)

	replies := []Reply{textReply(fmt.Sprintf(textAreaChosen, area))}
	return append(replies, f.Present(ctx, userID)...)
}

// Present emits the trip at the current offset, or the appropriate prompt
// when no area is set or the area's list is exhausted.
func (f *Controller) Present(ctx context.Context, userID int64) []Reply {
	var (
		area   string
		offset int
		exists bool
	)
	if s, ok := f.store.Get(userID); ok {
		exists = true
		area = s.Area
		offset = s.Offset
	}

	if !exists || area == "" {
		return []Reply{textReply(textNoAreaSelected)}
	}

	trips := f.catalog.ByArea(area)
	if offset >= len(trips) {
		return []Reply{textReply(textExhausted)}
	}

	trip := trips[offset]
	temp := f.fetchTemp(ctx, trip)

	f.store.Update(userID, func(s *session.Session) {
		s.LastTemp = temp
	})

	replies := make([]Reply, 0, 2)
	if trip.ImageURL != "" {
		replies = append(replies, Reply{Kind: ReplyPhoto, PhotoURL: trip.ImageURL})
	}
	replies = append(replies, Reply{
		Kind:     ReplyText,
		Text:     fmt.Sprintf(textPresentation, area, trip.Title, temp, trip.Description, trip.Place),
		Keyboard: KeyboardFeedback,
	})

	logger.Debug(ctx, "service.sessions", "session.present",
		slog.Int64("user_id", userID),
		slog.String("area", area),
		slog.Int("offset", offset),
		slog.String("title", logger.SanitizeLimit(trip.Title, 64)),
	)
	return replies
}

// fetchTemp maps weather results to the user-visible strings. Failures never
// abort presentation.
func (f *Controller) fetchTemp(ctx context.Context, trip catalog.Trip) string {
	place := trip.Place
	if place == "" {
		place = "israel"
	}

	reading, err := f.weather.CurrentTemp(ctx, place)
	if err == nil {
		return reading.Format()
	}

	var apiErr *weather.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return fmt.Sprintf(textWeatherAPIError, apiErr.Message)
	}
	return textWeatherUnavailable
}

// Like saves the current trip into history (duplicates rejected) and follows
// up with a narrative blurb and a show-more affordance. The offset is not
// advanced; only show_more or a skip moves the cursor.
func (f *Controller) Like(ctx context.Context, userID int64) []Reply {
	var (
		area     string
		offset   int
		lastTemp string
		exists   bool
	)
	if s, ok := f.store.Get(userID); ok {
		exists = true
		area = s.Area
		offset = s.Offset
		lastTemp = s.LastTemp
	}

	if !exists || area == "" {
		return []Reply{textReply(textNoAreaFeedback)}
	}

	trips := f.catalog.ByArea(area)
	if offset >= len(trips) {
		return []Reply{textReply(textNoSuggestions)}
	}
	trip := trips[offset]

	entry := session.HistoryEntry{Title: trip.Title, Area: trip.Area, SavedAt: f.now()}
	var appended bool
	f.store.Update(userID, func(s *session.Session) {
		appended = s.MarkLiked(entry)
	})

	replies := make([]Reply, 0, 2)
	if appended {
		f.persistLike(ctx, userID, entry)
		replies = append(replies, textReply(fmt.Sprintf(textTripSaved, trip.Title)))
	} else {
		replies = append(replies, textReply(fmt.Sprintf(textTripDuplicate, trip.Title)))
	}

	logger.Info(ctx, "service.sessions", "session.like",
		slog.Int64("user_id", userID),
		slog.String("area", area),
		slog.String("title", logger.SanitizeLimit(trip.Title, 64)),
		slog.Bool("saved", appended),
	)

	temp := lastTemp
	if temp == "" {
		temp = textTempUnknown
	}
	replies = append(replies, Reply{
		Kind:     ReplyMarkdown,
		Text:     fmt.Sprintf(textLikedTrip, trip.Title, temp, f.narrative(ctx, trip, temp)),
		Keyboard: KeyboardShowMore,
	})
	return replies
}

// narrative calls the generator and falls back to the trip's static expanded
// description, then to a generic placeholder.
func (f *Controller) narrative(ctx context.Context, trip catalog.Trip, temp string) string {
	text, err := f.narrator.TripSummary(ctx, trip.Title, trip.Place, temp)
	if err != nil {
		logger.Warn(ctx, "service.narrative", "narrative.fallback",
			slog.String("title", logger.SanitizeLimit(trip.Title, 64)),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		if trip.ExpandedDescription != "" {
			return trip.ExpandedDescription
		}
		return textNoDescription
	}
	escaped, err := format.EscapeMarkdown(text, 1)
	if err != nil {
		return text
	}
	return escaped
}

func (f *Controller) persistLike(ctx context.Context, userID int64, entry session.HistoryEntry) {
	if f.history == nil {
		return
	}
	if err := f.history.Append(ctx, userID, entry); err != nil {
		logger.Warn(ctx, "service.sessions", "history.persist.failed",
			slog.Int64("user_id", userID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}

// Skip advances the offset and presents the next trip.
func (f *Controller) Skip(ctx context.Context, userID int64) []Reply {
	var (
		area   string
		offset int
		exists bool
	)
	if s, ok := f.store.Get(userID); ok {
		exists = true
		area = s.Area
		offset = s.Offset
	}
	if !exists || area == "" {
		return []Reply{textReply(textNoAreaFeedback)}
	}
	if offset >= len(f.catalog.ByArea(area)) {
		return []Reply{textReply(textNoSuggestions)}
	}

	f.store.Update(userID, func(s *session.Session) {
		s.Offset++
	})
	return f.Present(ctx, userID)
}

// ShowMore advances the offset after a liked trip and presents the next one.
func (f *Controller) ShowMore(ctx context.Context, userID int64) []Reply {
	if _, ok := f.store.Get(userID); !ok {
		return []Reply{textReply(textNoSession)}
	}
	f.store.Update(userID, func(s *session.Session) {
		s.Offset++
	})
	return f.Present(ctx, userID)
}

// History renders the 1-based liked-trip list.
func (f *Controller) History(ctx context.Context, userID int64) []Reply {
	s, ok := f.store.Get(userID)
	if !ok || len(s.History) == 0 {
		return []Reply{textReply(textHistoryEmpty)}
	}

	var b strings.Builder
	b.WriteString(textHistoryHeader)
	for i, e := range s.History {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf(textHistoryLine, i+1, e.Title, e.Area, e.SavedAt.Format(historyDateLayout)))
	}

	logger.Debug(ctx, "service.sessions", "session.history",
		slog.Int64("user_id", userID),
		slog.Int("history", len(s.History)),
	)
	return []Reply{textReply(b.String())}
}

// ClearRequest asks for confirmation before wiping history.
func (f *Controller) ClearRequest(ctx context.Context, userID int64) []Reply {
	f.store.Update(userID, func(s *session.Session) {
		s.AwaitingClearConfirm = true
	})
	return []Reply{{Kind: ReplyText, Text: textClearPrompt, Keyboard: KeyboardConfirm}}
}

// ClearConfirm wipes history in the session and, when configured, in storage.
func (f *Controller) ClearConfirm(ctx context.Context, userID int64) []Reply {
	f.store.Update(userID, func(s *session.Session) {
		s.ClearHistory()
		s.AwaitingClearConfirm = false
	})

	if f.history != nil {
		if err := f.history.Clear(ctx, userID); err != nil {
			logger.Warn(ctx, "service.sessions", "history.clear.failed",
				slog.Int64("user_id", userID),
				slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			)
		}
	}

	logger.Info(ctx, "service.sessions", "session.clear",
		slog.Int64("user_id", userID),
	)
	return []Reply{{Kind: ReplyText, Text: textClearConfirmed, Keyboard: KeyboardRemove}}
}

// ClearCancel leaves history untouched.
func (f *Controller) ClearCancel(ctx context.Context, userID int64) []Reply {
	f.store.Update(userID, func(s *session.Session) {
		s.AwaitingClearConfirm = false
	})
	return []Reply{{Kind: ReplyText, Text: textClearCancelled, Keyboard: KeyboardRemove}}
}
