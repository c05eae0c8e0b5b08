// Package bot is the telegram glue: it classifies incoming updates,
// applies the access decision, drives the registration flow engine and
// renders its results.
package bot

import (
	"sync/atomic"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/hamrahbot/sabt/internal/auth"
	"github.com/hamrahbot/sabt/internal/flow"
	"github.com/hamrahbot/sabt/internal/payment"
	"github.com/hamrahbot/sabt/internal/session"
	"github.com/hamrahbot/sabt/internal/users"
)

// ctxUserKey is the tele.Context key the access gate uses to attach
// the verified customer record.
const ctxUserKey = "auth_user"

// Options carries the collaborators and tunables of the bot layer.
type Options struct {
	Flow     *flow.Engine
	Users    *users.Repository
	Sessions session.Store
	Auth     *auth.Engine
	Payments payment.Provider

	// MinChargeAmount is the smallest accepted top-up, in tomans.
	MinChargeAmount int64
	// SupportContact is the handle shown by /support.
	SupportContact string
}

// Bot wires handlers around the flow and auth engines.
type Bot struct {
	flow     *flow.Engine
	users    *users.Repository
	sessions session.Store
	auth     *auth.Engine
	payments payment.Provider

	minCharge int64
	support   string

	// username is the bot's own handle, learned at startup and used
	// to build referral deep links.
	username atomic.Pointer[string]
}

func New(opts Options) *Bot {
	if opts.MinChargeAmount <= 0 {
		opts.MinChargeAmount = 1000
	}
	return &Bot{
		flow:      opts.Flow,
		users:     opts.Users,
		sessions:  opts.Sessions,
		auth:      opts.Auth,
		payments:  opts.Payments,
		minCharge: opts.MinChargeAmount,
		support:   opts.SupportContact,
	}
}

// SetUsername records the bot's own handle once known.
func (b *Bot) SetUsername(name string) {
	b.username.Store(&name)
}

func (b *Bot) botUsername() string {
	if p := b.username.Load(); p != nil {
		return *p
	}
	return ""
}

// actor returns the customer record attached by the access gate.
func actor(c tele.Context) *users.User {
	u, _ := c.Get(ctxUserKey).(*users.User)
	return u
}

// senderID is the telegram user id of the update sender.
func senderID(c tele.Context) int64 {
	if s := c.Sender(); s != nil {
		return s.ID
	}
	return 0
}

// authWindow converts the configured expiration days to a duration.
func AuthWindow(days int) time.Duration {
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}
