package bot

import (
	"fmt"
	"html"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/hamrahbot/sabt/core/telegram/helpers"
)

// HandleCredit shows the current balance.
func (b *Bot) HandleCredit(c tele.Context) error {
	tghelpers.WithHandler(c, "/credit")
	u := actor(c)
	if u == nil {
		return tghelpers.SendHTML(c, textMustRegister)
	}
	return tghelpers.SendHTML(c, fmt.Sprintf(textCreditBalance, u.Credit), creditKeyboard())
}

// HandleMarketing shows the referral invite banner with the user's
// deep link.
func (b *Bot) HandleMarketing(c tele.Context) error {
	tghelpers.WithHandler(c, "/marketing")
	u := actor(c)
	if u == nil || !u.ReferralCode.Valid {
		return tghelpers.SendHTML(c, textMustRegister)
	}
	code := u.ReferralCode.String
	link := fmt.Sprintf("https://t.me/%s?start=%s", b.botUsername(), code)
	return tghelpers.SendHTML(c, fmt.Sprintf(textMarketing, link, html.EscapeString(code)))
}

// HandleSupport shows the support contact line.
func (b *Bot) HandleSupport(c tele.Context) error {
	tghelpers.WithHandler(c, "/support")
	return tghelpers.SendHTML(c, fmt.Sprintf(textSupport, html.EscapeString(b.support)))
}

// HandleUnknown is the fallback for unroutable text.
func (b *Bot) HandleUnknown(c tele.Context) error {
	tghelpers.WithHandler(c, "unknown")
	if actor(c) != nil {
		return tghelpers.SendHTML(c, textUnknown, mainMenuKeyboard())
	}
	return tghelpers.SendHTML(c, textUnknown)
}
