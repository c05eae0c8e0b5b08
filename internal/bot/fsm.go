package bot

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/hamrahbot/sabt/core/logger"
	tghelpers "github.com/hamrahbot/sabt/core/telegram/helpers"
	"github.com/hamrahbot/sabt/internal/session"
)

// FSMAdapter satisfies the text router's conversation interface: it
// reports whether free text should be swallowed by an in-flight
// conversation, and feeds it in when so.
type FSMAdapter struct {
	bot *Bot
}

func (b *Bot) FSM() *FSMAdapter {
	return &FSMAdapter{bot: b}
}

// InProgress reports whether the user's next text belongs to a
// conversation rather than the command router.
func (f *FSMAdapter) InProgress(userID int64) bool {
	ctx := logger.Background()
	s, err := f.bot.sessions.Get(ctx, userID)
	if err != nil {
		logger.Error(ctx, "tg.fsm", "session_lookup_failed",
			slog.Int64("user_id", userID), slog.Any("err", err))
		return false
	}
	switch s.State {
	case session.StateStepInProgress,
		session.StateAwaitingDecision,
		session.StateAwaitingConfirmation,
		session.StateAwaitingChargeAmount:
		return true
	}
	return false
}

// Handle routes in-conversation text by session state.
func (f *FSMAdapter) Handle(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	userID := senderID(c)

	s, err := f.bot.sessions.Get(ctx, userID)
	if err != nil {
		logger.Error(ctx, "tg.fsm", "session_lookup_failed", slog.Any("err", err))
		return tghelpers.SendHTML(c, textInternalError)
	}

	switch s.State {
	case session.StateStepInProgress:
		res, err := f.bot.flow.Answer(ctx, userID, c.Text())
		if err != nil {
			logger.Error(ctx, "tg.fsm", "answer_failed", slog.Any("err", err))
			return tghelpers.SendHTML(c, textInternalError)
		}
		return f.bot.renderResult(c, res)

	case session.StateAwaitingChargeAmount:
		return f.bot.handleChargeAmount(c, s)

	case session.StateAwaitingDecision:
		// Only the decision buttons move this state forward.
		return tghelpers.SendHTML(c, textAskDecision, decisionKeyboard())

	case session.StateAwaitingConfirmation:
		return tghelpers.SendHTML(c, renderSummary(s), summaryKeyboard())
	}
	return nil
}
