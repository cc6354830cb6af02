package middleware

import tele "gopkg.in/telebot.v4"

// PrivateChatOptions defines how non-private updates are handled.
type PrivateChatOptions struct {
	OnReject tele.HandlerFunc
}

// PrivateOnlyMiddleware ignores updates coming from groups and channels.
// Trip planning is a per-user conversation and has no group semantics.
func PrivateOnlyMiddleware(opts PrivateChatOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			if chat != nil && chat.Type != tele.ChatPrivate {
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
