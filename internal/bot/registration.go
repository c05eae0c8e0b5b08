package bot

import (
	"context"
	"errors"
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/hamrahbot/sabt/core/logger"
	"github.com/hamrahbot/sabt/core/telegram/callbacks"
	tghelpers "github.com/hamrahbot/sabt/core/telegram/helpers"
	"github.com/hamrahbot/sabt/internal/flow"
	"github.com/hamrahbot/sabt/internal/steps"
)

// Registration flow callbacks.

func (b *Bot) cbAcceptRegistration(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb."+cbStartRegistration)
	_ = c.Respond(&tele.CallbackResponse{})

	res, err := b.flow.Accept(ctx, senderID(c))
	if err != nil {
		return b.flowError(c, ctx, "accept_failed", err)
	}
	return b.renderResult(c, res)
}

func (b *Bot) cbDeclineRegistration(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb."+cbCancelDecision)
	_ = c.Respond(&tele.CallbackResponse{})

	if _, err := b.flow.Cancel(ctx, senderID(c)); err != nil {
		return b.flowError(c, ctx, "decline_failed", err)
	}
	return tghelpers.SendHTML(c, textDeclined)
}

func (b *Bot) cbStepBackNav(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb."+cbStepBack)
	_ = c.Respond(&tele.CallbackResponse{})

	res, err := b.flow.Back(ctx, senderID(c))
	if err != nil {
		return b.flowError(c, ctx, "back_failed", err)
	}
	return b.renderResult(c, res)
}

func (b *Bot) cbEditStepJump(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb."+cbEditStep)
	_ = c.Respond(&tele.CallbackResponse{})

	step, ok := steps.Parse(callbacks.CallbackPayload(c))
	if !ok || !step.Valid() {
		return tghelpers.SendHTML(c, textInternalError)
	}
	res, err := b.flow.JumpTo(ctx, senderID(c), step)
	if err != nil {
		return b.flowError(c, ctx, "jump_failed", err)
	}
	return b.renderResult(c, res)
}

func (b *Bot) cbConfirmRegistration(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb."+cbConfirm)
	_ = c.Respond(&tele.CallbackResponse{})

	userID := senderID(c)
	res, err := b.flow.Confirm(ctx, userID, userID, actor(c))
	if err != nil {
		return b.flowError(c, ctx, "confirm_failed", err)
	}
	return b.renderResult(c, res)
}

func (b *Bot) cbCancelConversation(c tele.Context) error {
	ctx := tghelpers.WithHandler(c, "cb."+cbCancelFlow)
	_ = c.Respond(&tele.CallbackResponse{})

	res, err := b.flow.Cancel(ctx, senderID(c))
	if err != nil {
		return b.flowError(c, ctx, "cancel_failed", err)
	}
	return b.renderResult(c, res)
}

// flowError maps engine errors to user messages. A stale button press
// after the conversation ended is common and gets the cancel notice.
func (b *Bot) flowError(c tele.Context, ctx context.Context, event string, err error) error {
	if errors.Is(err, flow.ErrNoConversation) || errors.Is(err, flow.ErrNoPendingPhone) {
		return tghelpers.SendHTML(c, textCancelled)
	}
	logger.Error(ctx, "tg.flow", event, slog.Any("err", err))
	return tghelpers.SendHTML(c, textInternalError)
}
