package bot

import (
	"fmt"
	"html"
	"strings"

	tele "gopkg.in/telebot.v4"

	tghelpers "github.com/hamrahbot/sabt/core/telegram/helpers"
	"github.com/hamrahbot/sabt/internal/flow"
	"github.com/hamrahbot/sabt/internal/session"
	"github.com/hamrahbot/sabt/internal/steps"
	"github.com/hamrahbot/sabt/internal/users"
)

// renderResult turns a flow result into outgoing messages.
func (b *Bot) renderResult(c tele.Context, res *flow.Result) error {
	switch res.Kind {
	case flow.AskDecision:
		return tghelpers.SendHTML(c, textAskDecision, decisionKeyboard())

	case flow.Verified:
		name := res.User.FirstName
		if name == "" {
			name = "کاربر"
		}
		if err := tghelpers.SendHTML(c, fmt.Sprintf(textWelcomeBack, html.EscapeString(name))); err != nil {
			return err
		}
		return tghelpers.SendHTML(c, textMenuHint, mainMenuKeyboard())

	case flow.Prompt:
		return b.sendPrompt(c, res)

	case flow.Invalid:
		def, ok := steps.Lookup(res.Step)
		if !ok {
			return tghelpers.SendHTML(c, textInternalError)
		}
		if err := tghelpers.SendText(c, def.ErrorMsg); err != nil {
			return err
		}
		return b.sendPrompt(c, res)

	case flow.Summary:
		return tghelpers.SendHTML(c, renderSummary(res.Session), summaryKeyboard())

	case flow.Committed:
		code := ""
		if res.User.ReferralCode.Valid {
			code = res.User.ReferralCode.String
		}
		if err := tghelpers.SendHTML(c, fmt.Sprintf(textCommitted, html.EscapeString(code))); err != nil {
			return err
		}
		return tghelpers.SendHTML(c, textMenuHint, mainMenuKeyboard())

	case flow.Updated:
		return tghelpers.SendHTML(c, textUpdated, mainMenuKeyboard())

	case flow.Cancelled:
		return tghelpers.SendHTML(c, textCancelled, mainMenuKeyboard())

	case flow.Failed:
		switch res.Reason {
		case flow.FailIncomplete:
			return tghelpers.SendHTML(c, textIncomplete)
		case flow.FailDuplicatePhone:
			return tghelpers.SendHTML(c, textDuplicatePhone)
		default:
			return tghelpers.SendHTML(c, textInternalError)
		}
	}
	return nil
}

func (b *Bot) sendPrompt(c tele.Context, res *flow.Result) error {
	def, ok := steps.Lookup(res.Step)
	if !ok {
		return tghelpers.SendHTML(c, textInternalError)
	}
	// The gender step answers through a reply keyboard; a message can
	// carry only one markup, so nav buttons are dropped there.
	if res.Step == steps.Gender {
		return tghelpers.SendText(c, def.Prompt, &tele.SendOptions{ReplyMarkup: genderKeyboard()})
	}
	return tghelpers.SendText(c, def.Prompt, &tele.SendOptions{
		ReplyMarkup: stepKeyboard(res.CanGoBack),
	})
}

// renderSummary formats the collected answers for the confirmation
// message.
func renderSummary(s *session.Session) string {
	var sb strings.Builder
	sb.WriteString(textSummaryHeader)
	sb.WriteString("\n\n")
	for _, st := range steps.All() {
		def, _ := steps.Lookup(st)
		value := textSummarySkipped
		if v, ok := s.Field(st); ok && v != nil {
			value = html.EscapeString(*v)
		}
		fmt.Fprintf(&sb, "▪️ %s: <b>%s</b>\n", def.Label, value)
	}
	if s.PhoneNumber != "" {
		fmt.Fprintf(&sb, "▪️ شماره تماس: <b>%s</b>\n", html.EscapeString(s.PhoneNumber))
	}
	return sb.String()
}

// renderProfile formats the stored profile for /profile.
func renderProfile(u *users.User) string {
	var sb strings.Builder
	sb.WriteString("👤 <b>پروفایل شما</b>\n\n")
	fmt.Fprintf(&sb, "▪️ نام: <b>%s</b>\n", html.EscapeString(u.FirstName))
	fmt.Fprintf(&sb, "▪️ نام خانوادگی: <b>%s</b>\n", html.EscapeString(u.LastName))
	nid := textSummarySkipped
	if u.NationalID.Valid {
		nid = html.EscapeString(u.NationalID.String)
	}
	fmt.Fprintf(&sb, "▪️ کد ملی: <b>%s</b>\n", nid)
	fmt.Fprintf(&sb, "▪️ تاریخ تولد: <b>%s</b>\n", html.EscapeString(u.BirthDate))
	fmt.Fprintf(&sb, "▪️ جنسیت: <b>%s</b>\n", u.Gender.Label())
	fmt.Fprintf(&sb, "▪️ شماره تماس: <b>%s</b>\n", html.EscapeString(u.PhoneNumber))
	fmt.Fprintf(&sb, "▪️ اعتبار: <b>%d تومان</b>\n", u.Credit)
	if u.ReferralCode.Valid {
		fmt.Fprintf(&sb, "▪️ کد معرف: <code>%s</code>\n", html.EscapeString(u.ReferralCode.String))
	}
	return sb.String()
}
