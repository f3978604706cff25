package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"CampusEventBot/ai"
	"CampusEventBot/catalog"
	"CampusEventBot/config"
	"CampusEventBot/dialog"
	"CampusEventBot/handler"
	"CampusEventBot/metrics"
	"CampusEventBot/repo"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("error loading configuration")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("error initializing storage")
	}

	manager := catalog.NewManager(store, catalog.Config{
		AdminPassphraseHash: cfg.AdminPassphraseHash,
		Moderation:          cfg.Moderation,
	}, logger)

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Fatal().Err(err).Msg("error registering metrics")
	}

	h := handler.New(dialog.NewSessions(), manager, newRecommender(cfg, logger), collector, cfg.MenuImagePath, logger)

	go runOpsServer(cfg.OpsAddr, collector, logger)

	b, err := bot.New(cfg.BotToken, bot.WithDefaultHandler(h.Handle))
	if err != nil {
		logger.Fatal().Err(err).Msg("error creating bot")
	}

	logger.Info().Str("storage", cfg.Storage.Backend).Str("ai", cfg.AI.Provider).Msg("bot starting")
	b.Start(ctx)
	logger.Info().Msg("bot stopped")
}

func newStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (repo.Store, error) {
	if cfg.Storage.Backend == "firebase" {
		return repo.NewFirebaseStore(ctx, cfg.Storage.ServiceAccountKeyPath, cfg.Storage.DatabaseURL, logger)
	}
	return repo.NewFileStore(cfg.Storage.DataDir, logger)
}

func newRecommender(cfg config.Config, logger zerolog.Logger) ai.Recommender {
	if cfg.AI.Provider == "openai" {
		return ai.NewOpenAIClient(cfg.AI.OpenAIKey, cfg.AI.Model, cfg.AI.MaxTokens, logger)
	}
	return ai.NewProxyClient(cfg.AI.URL, cfg.AI.Model, cfg.AI.MaxTokens, logger)
}

func runOpsServer(addr string, collector *metrics.Collector, logger zerolog.Logger) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(collector.Handler()))

	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("ops server stopped")
	}
}
