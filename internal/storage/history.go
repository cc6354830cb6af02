package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/saeedyasen/travelbot/core/logger"
	"github.com/saeedyasen/travelbot/internal/session"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// HistoryRepo persists liked trips per user. The in-memory session store stays
// authoritative within a process; the table survives restarts.
type HistoryRepo struct {
	db *sqlx.DB
}

// NewHistoryRepo wraps the given database handle.
func NewHistoryRepo(db *sqlx.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

type likedTripRow struct {
	UserID  int64     `db:"user_id"`
	Title   string    `db:"title"`
	Area    string    `db:"area"`
	SavedAt time.Time `db:"saved_at"`
}

// Load returns the user's liked trips in save order.
func (r *HistoryRepo) Load(ctx context.Context, userID int64) ([]session.HistoryEntry, error) {
	var rows []likedTripRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT user_id, title, area, saved_at
		   FROM liked_trips
		  WHERE user_id = $1
		  ORDER BY saved_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("history load user %d: %w", userID, err)
	}

	entries := make([]session.HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, session.HistoryEntry{
			Title:   row.Title,
			Area:    row.Area,
			SavedAt: row.SavedAt,
		})
	}

	logger.Debug(ctx, "db", "history.load",
		slog.Int64("user_id", userID),
		slog.Int("history", len(entries)),
	)
	return entries, nil
}

// Append records a liked trip. Replays of the same (title, area) are ignored
// so the table mirrors the session's duplicate policy.
func (r *HistoryRepo) Append(ctx context.Context, userID int64, entry session.HistoryEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO liked_trips (user_id, title, area, saved_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, title, area) DO NOTHING`,
		userID, entry.Title, entry.Area, entry.SavedAt)
	if err != nil {
		return fmt.Errorf("history append user %d: %w", userID, err)
	}
	return nil
}

// Clear removes every liked trip for the user.
func (r *HistoryRepo) Clear(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM liked_trips WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("history clear user %d: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil {
		logger.Info(ctx, "db", "history.clear",
			slog.Int64("user_id", userID),
			slog.Int64("rows", n),
		)
	}
	return nil
}
