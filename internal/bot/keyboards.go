package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/hamrahbot/sabt/core/telegram/keyboard"
	"github.com/hamrahbot/sabt/internal/steps"
)

func contactKeyboard() *tele.ReplyMarkup {
	return keyboard.ContactButton(textBtnShareContact)
}

func decisionKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: textBtnRegister, Unique: cbStartRegistration},
		{Text: textBtnDecline, Unique: cbCancelDecision},
	})
}

// stepKeyboard is shown under every step prompt: optional back
// navigation plus cancel. The gender step additionally gets a reply
// keyboard with the two accepted answers.
func stepKeyboard(canGoBack bool) *tele.ReplyMarkup {
	row := []keyboard.InlineBtn{}
	if canGoBack {
		row = append(row, keyboard.InlineBtn{Text: textBtnBack, Unique: cbStepBack})
	}
	row = append(row, keyboard.InlineBtn{Text: textBtnCancel, Unique: cbCancelFlow})
	return keyboard.InlineButtonsRows(row)
}

func genderKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons([]string{steps.GenderMale, steps.GenderFemale})
}

// summaryKeyboard offers one edit button per step plus confirm/cancel.
func summaryKeyboard() *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	for _, st := range steps.All() {
		def, _ := steps.Lookup(st)
		rows = append(rows, []keyboard.InlineBtn{{
			Text:   "✏️ " + def.Label,
			Unique: cbEditStep,
			Data:   st.String(),
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{
		{Text: textBtnConfirm, Unique: cbConfirm},
		{Text: textBtnCancel, Unique: cbCancelFlow},
	})
	return keyboard.InlineButtonsRows(rows...)
}

func mainMenuKeyboard() *tele.ReplyMarkup {
	return keyboard.ReplyButtons(
		[]string{menuProfile, menuCredit},
		[]string{menuCharge, menuMarketing},
		[]string{menuSupport},
	)
}

func profileKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: textProfileEdit, Unique: cbEditProfile},
	})
}

func creditKeyboard() *tele.ReplyMarkup {
	return keyboard.InlineButtons([]keyboard.InlineBtn{
		{Text: menuCharge, Unique: cbChargeCredit},
	})
}

func chargeLinkKeyboard(ref string) *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: textBtnPaid, Unique: cbVerifyPayment, Data: ref}},
		[]keyboard.InlineBtn{{Text: textBtnCancel, Unique: cbCancelCharge}},
	)
}
