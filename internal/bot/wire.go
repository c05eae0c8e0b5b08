package bot

import (
	"time"

	tg "github.com/hamrahbot/sabt/core/telegram"
	"github.com/hamrahbot/sabt/core/telegram/commands"
	"github.com/hamrahbot/sabt/core/telegram/middleware"
	"github.com/hamrahbot/sabt/core/telegram/router"
)

// BuildRegistry declares every command and callback the bot serves.
func (b *Bot) BuildRegistry() *tg.Registry {
	reg := tg.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{
		Handler:     b.HandleStart,
		Description: "شروع کار با ربات",
	})
	reg.RegisterCommand("/profile", commands.Command{
		Handler:     b.HandleProfile,
		Description: "مشاهده پروفایل",
		Aliases:     []string{menuProfile},
	})
	reg.RegisterCommand("/credit", commands.Command{
		Handler:     b.HandleCredit,
		Description: "مشاهده اعتبار",
		Aliases:     []string{menuCredit},
	})
	reg.RegisterCommand("/charge", commands.Command{
		Handler:     b.HandleCharge,
		Description: "افزایش اعتبار",
		Aliases:     []string{menuCharge},
	})
	reg.RegisterCommand("/marketing", commands.Command{
		Handler:     b.HandleMarketing,
		Description: "دعوت از دوستان",
		Aliases:     []string{menuMarketing},
	})
	reg.RegisterCommand("/support", commands.Command{
		Handler:     b.HandleSupport,
		Description: "پشتیبانی",
		Aliases:     []string{menuSupport},
	})

	reg.RegisterCallback(cbStartRegistration, b.cbAcceptRegistration)
	reg.RegisterCallback(cbCancelDecision, b.cbDeclineRegistration)
	reg.RegisterCallback(cbStepBack, b.cbStepBackNav)
	reg.RegisterCallback(cbEditStep, b.cbEditStepJump)
	reg.RegisterCallback(cbConfirm, b.cbConfirmRegistration)
	reg.RegisterCallback(cbCancelFlow, b.cbCancelConversation)
	reg.RegisterCallback(cbEditProfile, b.cbBeginProfileEdit)
	reg.RegisterCallback(cbChargeCredit, b.cbOpenCharge)
	reg.RegisterCallback(cbVerifyPayment, b.cbVerifyCharge)
	reg.RegisterCallback(cbCancelCharge, b.cbAbortCharge)

	reg.SetTextFallback(b.HandleUnknown)
	return reg
}

// Middlewares returns the global middleware chain: per-user rate
// limiting in front of the access gate.
func (b *Bot) Middlewares(rateInterval time.Duration, exclude map[string]struct{}) []tg.Middleware {
	return []tg.Middleware{
		{
			Name: "rate_limit",
			Use: middleware.RateLimitMiddleware(middleware.RateLimitOptions{
				Interval: rateInterval,
				Exclude:  exclude,
			}),
		},
		{Name: "access_gate", Use: b.AccessGate},
	}
}

// Routes assembles the endpoint table from the registry and the
// conversation adapter.
func (b *Bot) Routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg)
	routes = append(routes, router.TextRoutes(b.FSM(), reg, router.TextOptions{
		Contact:     b.HandleContact,
		UnknownText: b.HandleUnknown,
	})...)
	routes = append(routes, router.CallbackRoute(reg, router.CallbackOptions{}))
	return routes
}

// OnStart learns runtime identity and binds the notifier.
func (b *Bot) OnStart(rt tg.Runtime, notifier *TelegramNotifier) {
	if rt.Bot != nil && rt.Bot.Me != nil {
		b.SetUsername(rt.Bot.Me.Username)
	}
	if notifier != nil {
		notifier.Bind(rt.Bot)
	}
}
