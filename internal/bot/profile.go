package bot

import (
	"fmt"
	"time"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/hamrahbot/sabt/core/telegram/helpers"
)

// HandleProfile shows the stored profile with an edit button and the
// remaining verification window.
func (b *Bot) HandleProfile(c tele.Context) error {
	tghelpers.WithHandler(c, "/profile")
	u := actor(c)
	if u == nil {
		return tghelpers.SendHTML(c, textMustRegister)
	}
	text := renderProfile(u)
	if u.Verified() {
		left := b.auth.Window - time.Since(u.LastVerifiedAt.Time)
		days := int(left.Hours() / 24)
		if days < 0 {
			days = 0
		}
		text += fmt.Sprintf(textProfileExpiry, days)
	}
	return tghelpers.SendHTML(c, text, profileKeyboard())
}

// cbBeginProfileEdit seeds an edit conversation from the stored
// profile and shows the editable summary.
func (b *Bot) cbBeginProfileEdit(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb."+cbEditProfile)
	_ = c.Respond(&tele.CallbackResponse{})

	u := actor(c)
	if u == nil {
		return tghelpers.SendHTML(c, textMustRegister)
	}
	res, err := b.flow.BeginEdit(ctx, senderID(c), u)
	if err != nil {
		return b.flowError(c, ctx, "edit_begin_failed", err)
	}
	return b.renderResult(c, res)
}
