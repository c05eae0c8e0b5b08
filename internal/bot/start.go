package bot

import (
	"log/slog"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/hamrahbot/sabt/core/logger"
	tghelpers "github.com/hamrahbot/sabt/core/telegram/helpers"
	"github.com/hamrahbot/sabt/internal/flow"
	"github.com/hamrahbot/sabt/internal/users"
)

// HandleStart greets verified customers with the menu and sends
// everyone else into contact verification. A deep-link payload is
// treated as a referral code.
func (b *Bot) HandleStart(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "/start")
	userID := senderID(c)

	if code := startPayload(c); code != "" && actor(c) == nil {
		if err := b.flow.AttachReferrer(ctx, userID, code); err != nil {
			logger.Warn(ctx, "tg.start", "referrer_attach_failed", slog.Any("err", err))
		}
	}

	if u := actor(c); u != nil {
		return b.renderResult(c, welcomeBack(u))
	}
	return tghelpers.SendHTML(c, textAskContact, contactKeyboard())
}

func welcomeBack(u *users.User) *flow.Result {
	return &flow.Result{Kind: flow.Verified, User: u}
}

// startPayload extracts the deep-link payload from "/start CODE".
func startPayload(c tele.Context) string {
	if m := c.Message(); m != nil && m.Payload != "" {
		return strings.TrimSpace(m.Payload)
	}
	text := strings.TrimSpace(c.Text())
	if idx := strings.IndexByte(text, ' '); idx > 0 {
		return strings.TrimSpace(text[idx+1:])
	}
	return ""
}
