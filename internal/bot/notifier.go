package bot

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

// TelegramNotifier delivers out-of-update notices, such as the
// referral reward message to the referrer. The underlying bot is bound
// at startup.
type TelegramNotifier struct {
	bot atomic.Pointer[tele.Bot]
}

func NewTelegramNotifier() *TelegramNotifier {
	return &TelegramNotifier{}
}

// Bind attaches the running bot instance.
func (n *TelegramNotifier) Bind(b *tele.Bot) {
	n.bot.Store(b)
}

// ReferralReward notifies a referrer about a granted reward.
func (n *TelegramNotifier) ReferralReward(_ context.Context, telegramID, amount, balance int64) error {
	b := n.bot.Load()
	if b == nil {
		return errors.New("notifier: bot not bound")
	}
	text := fmt.Sprintf(textReferralReward, amount, balance)
	_, err := b.Send(&tele.User{ID: telegramID}, text, &tele.SendOptions{ParseMode: tele.ModeHTML})
	return err
}
