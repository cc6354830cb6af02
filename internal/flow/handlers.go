package flow

import (
	"context"

	"github.com/saeedyasen/travelbot/core/logger"
	tg "github.com/saeedyasen/travelbot/core/telegram"
	"github.com/saeedyasen/travelbot/core/telegram/commands"
	tghelpers "github.com/saeedyasen/travelbot/core/telegram/helpers"
	"github.com/saeedyasen/travelbot/core/telegram/keyboard"
	"github.com/saeedyasen/travelbot/core/telegram/middleware"
	"github.com/saeedyasen/travelbot/internal/catalog"
	"log/slog"

	tele "gopkg.in/telebot.v4"
)

// markupFor renders the reply's keyboard selection.
func markupFor(kb Keyboard) *tele.ReplyMarkup {
	switch kb {
	case KeyboardAreas:
		return keyboard.SingleRow(
			keyboard.InlineBtn{Text: catalog.AreaNorth, Unique: CallbackAreaNorth},
			keyboard.InlineBtn{Text: catalog.AreaCentre, Unique: CallbackAreaCentre},
			keyboard.InlineBtn{Text: catalog.AreaSouth, Unique: CallbackAreaSouth},
		)
	case KeyboardFeedback:
		return keyboard.SingleRow(
			keyboard.InlineBtn{Text: btnLike, Unique: CallbackLike},
			keyboard.InlineBtn{Text: btnDislike, Unique: CallbackDislike},
		)
	case KeyboardShowMore:
		return keyboard.SingleRow(
			keyboard.InlineBtn{Text: btnShowMore, Unique: CallbackShowMore},
		)
	case KeyboardConfirm:
		return keyboard.OneTimeReplyButtons([]string{btnYes, btnNo})
	case KeyboardRemove:
		return keyboard.RemoveKeyboard()
	default:
		return nil
	}
}

// sendReplies renders flow replies through the async send helpers. The first
// send error wins but remaining replies are still attempted.
func sendReplies(c tele.Context, replies []Reply) error {
	var firstErr error
	for _, r := range replies {
		var err error
		switch r.Kind {
		case ReplyPhoto:
			err = tghelpers.SendPhotoURL(c, r.PhotoURL)
		case ReplyMarkdown:
			err = tghelpers.SendMD(c, r.Text, markupFor(r.Keyboard))
		default:
			if markup := markupFor(r.Keyboard); markup != nil {
				err = tghelpers.SendWithKeyboard(c, r.Text, markup)
			} else {
				err = tghelpers.SendText(c, r.Text)
			}
		}
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// handler adapts a Controller operation to a telebot handler.
func (ctrl *Controller) handler(op func(ctx context.Context, userID int64) []Reply) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		return sendReplies(c, op(ctx, c.Sender().ID))
	}
}

// RegisterCommands adds the bot's slash commands to the registry.
func RegisterCommands(reg *tg.Registry, ctrl *Controller) {
	reg.RegisterCommand("/start", commands.Command{
		Description: "Pick a travel area and browse trips",
		Handler:     ctrl.handler(ctrl.Start),
	})
	reg.RegisterCommand("/history", commands.Command{
		Description: "Show your saved trips",
		Handler:     ctrl.handler(ctrl.History),
	})
	reg.RegisterCommand("/clear", commands.Command{
		Description: "Delete your saved trip history",
		Handler:     ctrl.handler(ctrl.ClearRequest),
	})

	reg.SetTextFallback(func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		logger.Debug(ctx, "tg", "text.unhandled",
			slog.Int64("user_id", c.Sender().ID),
			slog.String("payload", logger.SanitizeLimit(c.Text(), 256)),
		)
		return nil
	})
}

// RegisterCallbacks adds the inline-button callbacks. The keys are the wire
// identifiers baked into deployed keyboards.
func RegisterCallbacks(reg *tg.Registry, ctrl *Controller) error {
	areaHandler := func(area string) tele.HandlerFunc {
		return func(c tele.Context) error {
			ctx := tghelpers.BuildContext(c)
			return sendReplies(c, ctrl.SelectArea(ctx, c.Sender().ID, area, false))
		}
	}

	cbs := map[string]tele.HandlerFunc{
		CallbackAreaNorth:  areaHandler(catalog.AreaNorth),
		CallbackAreaCentre: areaHandler(catalog.AreaCentre),
		CallbackAreaSouth:  areaHandler(catalog.AreaSouth),
		CallbackLike:       ctrl.handler(ctrl.Like),
		CallbackDislike:    ctrl.handler(ctrl.Skip),
		CallbackShowMore:   ctrl.handler(ctrl.ShowMore),
	}
	for key, h := range cbs {
		if err := reg.RegisterCallback(key, h); err != nil {
			return err
		}
	}
	return nil
}

// TextMatches maps exact message texts to handlers: the legacy plain-text
// area names and the clear-confirmation words. Yes/No only act while a
// confirmation prompt is pending.
func TextMatches(ctrl *Controller) map[string]tele.HandlerFunc {
	confirmGate := middleware.AwaitingConfirm(ctrl.Store())

	areaHandler := func(area string) tele.HandlerFunc {
		return func(c tele.Context) error {
			ctx := tghelpers.BuildContext(c)
			return sendReplies(c, ctrl.SelectArea(ctx, c.Sender().ID, area, true))
		}
	}

	return map[string]tele.HandlerFunc{
		catalog.AreaNorth:  areaHandler(catalog.AreaNorth),
		catalog.AreaCentre: areaHandler(catalog.AreaCentre),
		catalog.AreaSouth:  areaHandler(catalog.AreaSouth),
		btnYes:             confirmGate(ctrl.handler(ctrl.ClearConfirm)),
		btnNo:              confirmGate(ctrl.handler(ctrl.ClearCancel)),
	}
}
