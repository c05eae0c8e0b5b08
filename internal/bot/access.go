package bot

import (
	"errors"
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/hamrahbot/sabt/core/logger"
	"github.com/hamrahbot/sabt/core/telegram/callbacks"
	tghelpers "github.com/hamrahbot/sabt/core/telegram/helpers"
	"github.com/hamrahbot/sabt/internal/auth"
	"github.com/hamrahbot/sabt/internal/users"
)

// AccessGate classifies each update, applies the auth decision table
// and either attaches the verified customer or stops the update with
// the appropriate notice.
func (b *Bot) AccessGate(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		ev := classify(c)
		if !ev.HasActor {
			return next(c)
		}

		ctx := tghelpers.BuildContext(c)

		var rec *users.User
		u, err := b.users.ByTelegramID(ctx, ev.UserID)
		switch {
		case err == nil:
			rec = u
		case errors.Is(err, users.ErrNotFound):
		default:
			logger.Error(ctx, "tg.access", "directory_lookup_failed", slog.Any("err", err))
			return tghelpers.SendHTML(c, textInternalError)
		}

		inFlight, err := b.flow.InProgress(ctx, ev.UserID)
		if err != nil {
			logger.Error(ctx, "tg.access", "session_lookup_failed", slog.Any("err", err))
			return tghelpers.SendHTML(c, textInternalError)
		}

		verdict := b.auth.Decide(ev, rec, inFlight)
		logger.Debug(ctx, "tg.access", "decision",
			slog.String("verdict", verdict.String()))

		switch verdict {
		case auth.VerdictAllow:
			c.Set(ctxUserKey, rec)
			return next(c)
		case auth.VerdictChallenge:
			if cb := c.Callback(); cb != nil {
				_ = c.Respond(&tele.CallbackResponse{})
			}
			return tghelpers.SendHTML(c, textReverify, contactKeyboard())
		case auth.VerdictBlock:
			if cb := c.Callback(); cb != nil {
				_ = c.Respond(&tele.CallbackResponse{Text: textMustRegister})
				return nil
			}
			return tghelpers.SendHTML(c, textMustRegister, contactKeyboard())
		case auth.VerdictDisabled:
			if cb := c.Callback(); cb != nil {
				_ = c.Respond(&tele.CallbackResponse{Text: textAccountDisabled})
				return nil
			}
			return tghelpers.SendHTML(c, textAccountDisabled)
		default: // defer, register
			return next(c)
		}
	}
}

// classify maps a telebot update onto the auth event shape.
func classify(c tele.Context) auth.Event {
	ev := auth.Event{}
	sender := c.Sender()
	if sender == nil {
		return ev
	}
	ev.HasActor = true
	ev.UserID = sender.ID

	switch {
	case c.Callback() != nil:
		ev.Kind = auth.KindCallback
		key := callbacks.CallbackKey(c)
		ev.IsRegistrationAction = registrationCallbacks[key]
	case c.Message() != nil && c.Message().Contact != nil:
		ev.Kind = auth.KindContact
	default:
		ev.Kind = auth.KindMessage
		text := strings.TrimSpace(c.Text())
		ev.IsStart = text == "/start" || strings.HasPrefix(text, "/start ")
	}
	return ev
}
