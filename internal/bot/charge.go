package bot

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	tele "gopkg.in/telebot.v4"

	"github.com/hamrahbot/sabt/core/logger"
	"github.com/hamrahbot/sabt/core/telegram/callbacks"
	tghelpers "github.com/hamrahbot/sabt/core/telegram/helpers"
	"github.com/hamrahbot/sabt/internal/session"
)

// HandleCharge opens the top-up conversation by asking for an amount.
func (b *Bot) HandleCharge(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "/charge")
	if actor(c) == nil {
		return tghelpers.SendHTML(c, textMustRegister)
	}
	userID := senderID(c)

	s, err := b.sessions.Get(ctx, userID)
	if err != nil {
		return b.flowError(c, ctx, "charge_open_failed", err)
	}
	s.State = session.StateAwaitingChargeAmount
	s.ChargeRef = ""
	s.ChargeAmount = 0
	if err := b.sessions.Put(ctx, userID, s); err != nil {
		return b.flowError(c, ctx, "charge_open_failed", err)
	}
	return tghelpers.SendHTML(c, fmt.Sprintf(textChargeAsk, b.minCharge))
}

// handleChargeAmount consumes the free-text amount, creates a payment
// reference and replies with the gateway link.
func (b *Bot) handleChargeAmount(c tele.Context, s *session.Session) error {
	ctx := tghelpers.WithHandler(c, "charge_amount")
	userID := senderID(c)

	amount, ok := parseAmount(c.Text())
	if !ok || amount < b.minCharge {
		return tghelpers.SendHTML(c, fmt.Sprintf(textChargeInvalid, b.minCharge))
	}

	ref := uuid.NewString()
	s.ChargeRef = ref
	s.ChargeAmount = amount
	if err := b.sessions.Put(ctx, userID, s); err != nil {
		return b.flowError(c, ctx, "charge_save_failed", err)
	}

	link := b.payments.PaymentLink(ref, amount)
	logger.Info(ctx, "tg.charge", "payment_link_issued",
		slog.String("ref", ref), slog.Int64("amount", amount))
	return tghelpers.SendHTML(c, fmt.Sprintf(textChargeLink, link), chargeLinkKeyboard(ref))
}

// cbOpenCharge opens the top-up conversation from the credit view.
func (b *Bot) cbOpenCharge(c tele.Context) error {
	_ = c.Respond(&tele.CallbackResponse{})
	return b.HandleCharge(c)
}

// cbVerifyCharge asks the gateway about the referenced payment and
// credits the account when it went through.
func (b *Bot) cbVerifyCharge(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb."+cbVerifyPayment)
	_ = c.Respond(&tele.CallbackResponse{})

	u := actor(c)
	if u == nil {
		return tghelpers.SendHTML(c, textMustRegister)
	}
	userID := senderID(c)

	s, err := b.sessions.Get(ctx, userID)
	if err != nil {
		return b.flowError(c, ctx, "charge_verify_failed", err)
	}
	ref := callbacks.CallbackPayload(c)
	if s.ChargeRef == "" || s.ChargeRef != ref {
		return tghelpers.SendHTML(c, textChargeExpired)
	}

	paid, err := b.payments.Verify(ctx, ref, s.ChargeAmount)
	if err != nil {
		logger.Error(ctx, "tg.charge", "gateway_verify_failed",
			slog.String("ref", ref), slog.Any("err", err))
		return tghelpers.SendHTML(c, textInternalError)
	}
	if !paid {
		return tghelpers.SendHTML(c, textChargeNotYet, chargeLinkKeyboard(ref))
	}

	balance, err := b.users.AddCredit(ctx, u.ID, s.ChargeAmount)
	if err != nil {
		logger.Error(ctx, "tg.charge", "credit_failed",
			slog.String("ref", ref), slog.Any("err", err))
		return tghelpers.SendHTML(c, textInternalError)
	}
	logger.Info(ctx, "tg.charge", "credited",
		slog.String("ref", ref), slog.Int64("amount", s.ChargeAmount),
		slog.Int64("balance", balance))

	if err := b.sessions.Clear(ctx, userID); err != nil {
		logger.Warn(ctx, "tg.charge", "session_clear_failed", slog.Any("err", err))
	}
	return tghelpers.SendHTML(c, fmt.Sprintf(textChargeDone, balance), mainMenuKeyboard())
}

// cbAbortCharge drops the pending payment request.
func (b *Bot) cbAbortCharge(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb."+cbCancelCharge)
	_ = c.Respond(&tele.CallbackResponse{})

	if err := b.sessions.Clear(ctx, senderID(c)); err != nil {
		return b.flowError(c, ctx, "charge_cancel_failed", err)
	}
	return tghelpers.SendHTML(c, textCancelled, mainMenuKeyboard())
}

// parseAmount reads a toman amount, accepting Persian and Arabic
// digits alongside ASCII.
func parseAmount(text string) (int64, bool) {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(text) {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r >= '۰' && r <= '۹': // U+06F0..U+06F9
			sb.WriteRune('0' + (r - '۰'))
		case r >= '٠' && r <= '٩': // U+0660..U+0669
			sb.WriteRune('0' + (r - '٠'))
		case r == ',' || r == '،' || r == ' ':
		default:
			return 0, false
		}
	}
	if sb.Len() == 0 {
		return 0, false
	}
	n, err := strconv.ParseInt(sb.String(), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
