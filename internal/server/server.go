// Package server exposes the health, stats and webhook endpoints.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"quicksell-bot/internal/models"
	"quicksell-bot/internal/server/middleware"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Dispatcher handles one Telegram update.
type Dispatcher interface {
	Dispatch(ctx context.Context, upd tgbotapi.Update)
}

// Store is what the status endpoints read.
type Store interface {
	PingContext(ctx context.Context) error
	Counts(ctx context.Context) (models.Stats, error)
}

type Config struct {
	Addr          string
	WebhookSecret string
	RateLimit     string
	Webhook       bool // serve POST /webhook
	Development   bool
}

type Server struct {
	cfg     Config
	store   Store
	bot     Dispatcher
	log     *zap.Logger
	started time.Time

	engine *gin.Engine
	http   *http.Server
}

func New(cfg Config, store Store, bot Dispatcher, log *zap.Logger) (*Server, error) {
	if !cfg.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	limit, err := middleware.RateLimit(cfg.RateLimit)
	if err != nil {
		return nil, err
	}

	s := &Server{cfg: cfg, store: store, bot: bot, log: log, started: time.Now()}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(log))

	r.GET("/", s.root)
	r.HEAD("/", s.root)
	r.GET("/health", s.health)
	r.GET("/stats", limit, s.stats)
	r.GET("/admin/status", limit, s.status)
	if cfg.Webhook {
		r.POST("/webhook", limit, s.webhook)
	}

	s.engine = r
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.engine }

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) root(c *gin.Context) {
	c.String(http.StatusOK, "QuickSell bot is running")
}

func (s *Server) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.PingContext(ctx); err != nil {
		s.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) stats(c *gin.Context) {
	st, err := s.store.Counts(c.Request.Context())
	if err != nil {
		s.log.Error("stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) status(c *gin.Context) {
	mode := "polling"
	if s.cfg.Webhook {
		mode = "webhook"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "running",
		"mode":           mode,
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"started_at":     s.started.UTC().Format(time.RFC3339),
	})
}

func (s *Server) webhook(c *gin.Context) {
	if s.cfg.WebhookSecret != "" {
		got := c.GetHeader(secretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.WebhookSecret)) != 1 {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
	}

	var upd tgbotapi.Update
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
		return
	}
	s.bot.Dispatch(c.Request.Context(), upd)
	c.Status(http.StatusOK)
}
