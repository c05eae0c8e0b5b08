package bot

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/hamrahbot/sabt/core/logger"
	tghelpers "github.com/hamrahbot/sabt/core/telegram/helpers"
)

// HandleContact verifies a shared contact. The contact must belong to
// the sender; forwarded third-party contacts are rejected.
func (b *Bot) HandleContact(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "contact")

	msg := c.Message()
	if msg == nil || msg.Contact == nil {
		return nil
	}
	contact := msg.Contact
	userID := senderID(c)

	if contact.UserID != userID {
		logger.Warn(ctx, "tg.contact", "foreign_contact_rejected",
			slog.Int64("contact_user_id", contact.UserID))
		return tghelpers.SendHTML(c, textContactNotOwn, contactKeyboard())
	}

	res, err := b.flow.SubmitContact(ctx, userID, userID, contact.PhoneNumber)
	if err != nil {
		logger.Error(ctx, "tg.contact", "submit_failed", slog.Any("err", err))
		return tghelpers.SendHTML(c, textInternalError)
	}
	return b.renderResult(c, res)
}
