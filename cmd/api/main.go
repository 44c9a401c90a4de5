package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sharilka/internal/api"
	"sharilka/internal/config"
	"sharilka/internal/database"
	"sharilka/internal/domain"
	"sharilka/internal/events"
	"sharilka/internal/logging"
	"sharilka/internal/metrics"
	"sharilka/internal/models"
	"sharilka/internal/notify"
	"sharilka/internal/repository"
	"sharilka/internal/service"
	"sharilka/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v2"
)

const timelineCacheTTL = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := seedItems(ctx, cfg, db, logger); err != nil {
		return err
	}

	redisClient := initRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}
	cache := buildTimelineCache(redisClient, logger)

	eventBus := events.NewEventBus()
	initTelegram(cfg, db, eventBus, logger)

	ledger := worker.NewBookingLedger(cfg.Exports.Path, logger)
	exportWorker := worker.NewExportWorker(db, ledger, redisClient, worker.RetryPolicy{}, logger)
	go exportWorker.Start(ctx)

	backupService := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
	go backupService.Start(ctx)

	bookings := service.NewBookingService(db, cache, eventBus, exportWorker, logger)
	items := service.NewItemService(db, cache, eventBus, logger)
	users := service.NewUserService(db, logger)
	requests := service.NewRequestService(db, logger)

	httpServer := api.NewHTTPServer(cfg.API, cfg.Pagination, bookings, items, users, requests, logger)
	if redisClient != nil {
		// при нескольких инстансах лимит должен считаться в redis
		httpServer.UseRateCounter(cache)
	}

	startMetrics(ctx, cfg, logger)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
			stop()
		}
	}()

	logger.Info().Int("http_port", cfg.API.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, &logger, closer, nil
}

// seedOwner groups demo items under the user that owns them.
type seedOwner struct {
	Name  string        `yaml:"name"`
	Email string        `yaml:"email"`
	Items []models.Item `yaml:"items"`
}

// seedItems loads the optional seed file and creates its users and items.
// A seed owner whose email is already registered is treated as applied and
// skipped, so restarts do not duplicate items.
func seedItems(ctx context.Context, cfg *config.Config, db *database.DB, logger *zerolog.Logger) error {
	if cfg.SeedItems == "" {
		return nil
	}

	data, err := os.ReadFile(cfg.SeedItems)
	if err != nil {
		logger.Error().Err(err).Str("seed_path", cfg.SeedItems).Msg("read seed file")
		return err
	}

	var seed struct {
		Owners []seedOwner `yaml:"owners"`
	}
	if err := yaml.Unmarshal(data, &seed); err != nil {
		logger.Error().Err(err).Str("seed_path", cfg.SeedItems).Msg("parse seed file")
		return err
	}

	for _, owner := range seed.Owners {
		user := &models.User{Name: owner.Name, Email: owner.Email}
		if err := db.CreateUser(ctx, user); err != nil {
			if errors.Is(err, database.ErrEmailTaken) {
				continue
			}
			return fmt.Errorf("seed user %s: %w", owner.Email, err)
		}

		for i := range owner.Items {
			item := owner.Items[i]
			item.OwnerID = user.ID
			if err := db.CreateItem(ctx, &item); err != nil {
				return fmt.Errorf("seed item %s: %w", item.Name, err)
			}
		}
		logger.Info().Str("owner", owner.Email).Int("items", len(owner.Items)).Msg("seeded owner")
	}
	return nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// buildTimelineCache prefers redis with in-memory failover, falling back to a
// pure in-memory cache when redis is not configured.
func buildTimelineCache(redisClient *redis.Client, logger *zerolog.Logger) domain.TimelineCache {
	memory := repository.NewMemoryTimelineCache(timelineCacheTTL)
	if redisClient == nil {
		return memory
	}
	primary := repository.NewRedisTimelineCache(redisClient, timelineCacheTTL)
	return repository.NewFailoverTimelineCache(primary, memory, logger)
}

func initTelegram(cfg *config.Config, db *database.DB, bus *events.EventBus, logger *zerolog.Logger) {
	if cfg.Telegram.BotToken == "" {
		return
	}

	notifier, err := notify.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.Debug, db, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		return
	}
	notifier.Register(bus)
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
