package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/hamrahbot/sabt/core/bootstrap"
	coretelegram "github.com/hamrahbot/sabt/core/telegram"
	"github.com/hamrahbot/sabt/internal/auth"
	"github.com/hamrahbot/sabt/internal/bot"
	"github.com/hamrahbot/sabt/internal/flow"
	"github.com/hamrahbot/sabt/internal/payment"
	"github.com/hamrahbot/sabt/internal/session"
	"github.com/hamrahbot/sabt/internal/users"
)

// App is the composed application, ready to run.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	redis    *redis.Client
	bot      *bot.Bot
	notifier *bot.TelegramNotifier
}

// Bootstrap initializes infrastructure and wires the domain engines.
func Bootstrap(cfg *Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	app := &App{cfg: cfg, db: res.DB}

	store, err := app.buildSessionStore()
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	repo := users.NewRepository(res.DB)
	notifier := bot.NewTelegramNotifier()
	flowEngine := flow.New(store, repo, notifier, cfg.App.ReferralReward)
	authEngine := &auth.Engine{Window: bot.AuthWindow(cfg.App.AuthExpirationDays)}
	gateway := payment.NewGateway(cfg.Payment)

	app.notifier = notifier
	app.bot = bot.New(bot.Options{
		Flow:            flowEngine,
		Users:           repo,
		Sessions:        store,
		Auth:            authEngine,
		Payments:        gateway,
		MinChargeAmount: cfg.App.MinChargeAmount,
		SupportContact:  cfg.App.SupportContact,
	})
	return app, nil
}

func (a *App) buildSessionStore() (session.Store, error) {
	if a.cfg.Session.Backend != SessionBackendRedis {
		return session.NewMemoryStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Session.RedisAddr,
		Password: a.cfg.Session.RedisPassword,
		DB:       a.cfg.Session.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("session redis ping failed: %w", err)
	}
	a.redis = client

	ttl := time.Duration(a.cfg.Session.TTLHours) * time.Hour
	return session.NewRedisStore(client, ttl), nil
}

// TelegramRunOptions builds the runtime options for the core runner.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := a.bot.BuildRegistry()

	rl := a.cfg.Core.RateLimit
	exclude := make(map[string]struct{}, len(rl.ExcludeUpdates))
	for _, kind := range rl.ExcludeUpdates {
		exclude[kind] = struct{}{}
	}

	return coretelegram.RunOptions{
		Config:      a.cfg.CoreConfig(),
		Registry:    reg,
		Middlewares: a.bot.Middlewares(time.Duration(rl.IntervalMS)*time.Millisecond, exclude),
		Routes:      a.bot.Routes(reg),
		OnStart: func(_ context.Context, rt coretelegram.Runtime) error {
			a.bot.OnStart(rt, a.notifier)
			return nil
		},
		OnStop: func(_ context.Context, _ coretelegram.Runtime) error {
			return a.Close()
		},
	}, nil
}

// Close releases infrastructure owned by the app.
func (a *App) Close() error {
	var firstErr error
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			firstErr = err
		}
		a.redis = nil
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		a.db = nil
	}
	return firstErr
}
