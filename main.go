package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"quicksell-bot/internal/config"
	"quicksell-bot/internal/dialog"
	"quicksell-bot/internal/handlers"
	"quicksell-bot/internal/ledger"
	"quicksell-bot/internal/logger"
	"quicksell-bot/internal/scheduler"
	"quicksell-bot/internal/server"
	"quicksell-bot/internal/server/middleware"
	"quicksell-bot/internal/storage"
	"quicksell-bot/internal/utils"
)

func main() {
	_ = godotenv.Load() // TELEGRAM_BOT_TOKEN etc.

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.NewZapLogger(&logger.ZapLoggerConfig{
		IsDevelopment: cfg.Development(),
		Encoding:      cfg.Logger.Encoding,
		Level:         cfg.Logger.Level,
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zl); err != nil {
		zl.Fatal("bot stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, zl *zap.Logger) error {
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return err
	}
	zl.Info("authorized", zap.String("bot", bot.Self.UserName))

	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	states, sweeper, err := sessionStore(ctx, cfg, zl)
	if err != nil {
		return err
	}

	chatLimit, err := middleware.NewChatLimiter(cfg.HTTP.RateLimit)
	if err != nil {
		return err
	}

	loc := utils.Location(cfg.Timezone)
	h := &handlers.Handler{
		Bot:         bot,
		DB:          db,
		Ledger:      ledger.New(db, zl),
		States:      states,
		Log:         zl,
		Limiter:     chatLimit,
		AdminChatID: cfg.AdminChatID,
		Location:    loc,
	}

	deps := scheduler.Deps{Bot: bot, Payments: db, Log: zl, Location: loc}
	if sweeper != nil {
		deps.Sessions = sweeper
	}
	sched, err := scheduler.Start(deps)
	if err != nil {
		return err
	}
	defer func() { _ = sched.Shutdown() }()

	webhook := cfg.HTTP.WebhookURL != ""
	srv, err := server.New(server.Config{
		Addr:          cfg.HTTP.Addr,
		WebhookSecret: cfg.HTTP.WebhookSecret,
		RateLimit:     cfg.HTTP.RateLimit,
		Webhook:       webhook,
		Development:   cfg.Development(),
	}, db, h, zl)
	if err != nil {
		return err
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	if webhook {
		params := tgbotapi.Params{"url": cfg.HTTP.WebhookURL}
		params.AddNonEmpty("secret_token", cfg.HTTP.WebhookSecret)
		if _, err := bot.MakeRequest("setWebhook", params); err != nil {
			return err
		}
		zl.Info("webhook registered", zap.String("url", cfg.HTTP.WebhookURL))
	} else {
		if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
			zl.Warn("delete webhook", zap.Error(err))
		}
		go poll(ctx, bot, h)
	}

	select {
	case <-ctx.Done():
	case err := <-errc:
		if err != nil {
			return err
		}
	}

	zl.Info("shutting down")
	bot.StopReceivingUpdates()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func poll(ctx context.Context, bot *tgbotapi.BotAPI, h *handlers.Handler) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := bot.GetUpdatesChan(updateConfig)
	for upd := range updates {
		h.Dispatch(ctx, upd)
	}
}

// sessionStore keeps conversation state in Redis when REDIS_ADDR is set.
// The memory store is also returned as the sweeper for the scheduler.
func sessionStore(ctx context.Context, cfg *config.Config, zl *zap.Logger) (dialog.Store, *dialog.MemoryStore, error) {
	if cfg.Redis.Addr == "" {
		m := dialog.NewMemoryStore(cfg.State.TTL)
		return m, m, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, nil, errors.Join(errors.New("redis unreachable"), err)
	}
	zl.Info("conversation state in redis", zap.String("addr", cfg.Redis.Addr))
	return dialog.NewRedisStore(client, cfg.State.TTL), nil, nil
}
