package middleware

import (
	"github.com/saeedyasen/travelbot/core/logger"
	tghelpers "github.com/saeedyasen/travelbot/core/telegram/helpers"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// ConfirmGetter is the minimal interface required from the session store.
type ConfirmGetter interface {
	AwaitingConfirm(userID int64) bool
}

// AwaitingConfirm returns a middleware that only passes text messages through
// while the user has a pending confirmation prompt.
func AwaitingConfirm(store ConfirmGetter) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			userID := c.Sender().ID
			pending := store.AwaitingConfirm(userID)
			ctx := tghelpers.BuildContext(c)
			if pending {
				logger.Debug(ctx, "tg", "confirm.match",
					slog.Int64("user_id", userID),
					slog.String("rid", logger.RIDFrom(ctx)),
				)
				return next(c)
			}
			logger.Debug(ctx, "tg", "confirm.skip",
				slog.Int64("user_id", userID),
				slog.String("rid", logger.RIDFrom(ctx)),
			)
			// Ignore message if no confirmation is pending
			return nil
		}
	}
}
