package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/fintrack/internal/adapter/http"
	"github.com/iho/fintrack/internal/adapter/http/handler"
	"github.com/iho/fintrack/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/fintrack/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fintrack/internal/adapter/repository/redis"
	"github.com/iho/fintrack/internal/infrastructure/auth"
	"github.com/iho/fintrack/internal/infrastructure/config"
	"github.com/iho/fintrack/internal/infrastructure/eventpublisher"
	"github.com/iho/fintrack/internal/infrastructure/logger"
	"github.com/iho/fintrack/internal/infrastructure/metrics"
	"github.com/iho/fintrack/internal/infrastructure/redis"
	"github.com/iho/fintrack/internal/usecase"
)

// limiterIdleTTL is how long a caller's rate-limit bucket survives without
// requests.
const limiterIdleTTL = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	log.Logger = lg

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}

	lg.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, lg zerolog.Logger) error {
	store, err := openStorage(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer store.close()

	deps := map[string]handler.Pinger{"store": store.pinger}

	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL, redis.Options{ConnectTimeout: cfg.DatabaseConnectTimeout})
		if err != nil {
			return fmt.Errorf("connect to redis: %w", err)
		}
		defer closeQuietly(lg, "redis", redisClient)

		idempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		deps["redis"] = redis.NewPinger(redisClient)
		lg.Info().Msg("connected to redis")
	} else {
		lg.Warn().Msg("REDIS_URL not set, idempotency keys disabled")
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	idGen := postgresRepo.NewULIDGenerator()

	accountUC := usecase.NewAccountUseCase(store.accounts, idGen, cfg.DefaultCurrency)
	accountUC.SetMetrics(m)

	txUC := usecase.NewTransactionUseCase(
		store.txManager,
		store.accounts,
		store.transactions,
		store.entries,
		store.outbox,
		idGen,
		usecase.WithCommitTimeout(cfg.CommitTimeout),
		usecase.WithMetrics(m),
		usecase.WithLogger(lg),
	)

	routerCfg := httpAdapter.RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(txUC),
		SummaryHandler:     handler.NewSummaryHandler(usecase.NewSummaryUseCase(store.accounts)),
		LedgerHandler:      handler.NewLedgerHandler(usecase.NewReconciliationUseCase(store.ledger)),
		HealthHandler:      handler.NewHealthHandler(deps),
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		HTTPMetrics:        middleware.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Logger:             lg,
	}

	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		lg.Warn().Str("header", middleware.OwnerHeader).Msg("authentication disabled, trusting owner header")
	}

	if cfg.RateLimitRPS > 0 {
		routerCfg.RateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	publisher, closePublisher := newPublisher(cfg, lg)
	defer closePublisher()

	outbox := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: store.outbox,
		Publisher:  publisher,
		Observer:   m,
		Logger:     lg,
		BatchSize:  cfg.OutboxBatchSize,
		Interval:   cfg.OutboxInterval,
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		lg.Info().Str("port", cfg.HTTPPort).Str("storage", cfg.StorageDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		lg.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return ignoreCanceled(outbox.Start(gctx))
	})

	if routerCfg.RateLimiter != nil {
		g.Go(func() error {
			return sweepLimiters(gctx, routerCfg.RateLimiter, lg)
		})
	}

	return g.Wait()
}

// newPublisher picks Kafka when brokers are configured and falls back to
// logging events otherwise.
func newPublisher(cfg *config.Config, lg zerolog.Logger) (eventpublisher.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return eventpublisher.NewLogPublisher(lg), func() {}
	}

	kp := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	lg.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing events to kafka")

	return kp, func() { closeQuietly(lg, "kafka", kp) }
}

func sweepLimiters(ctx context.Context, rl *middleware.RateLimiter, lg zerolog.Logger) error {
	ticker := time.NewTicker(limiterIdleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := rl.CleanupLimiters(limiterIdleTTL); removed > 0 {
				lg.Debug().Int("removed", removed).Msg("dropped idle rate limiters")
			}
		}
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

type closer interface {
	Close() error
}

func closeQuietly(lg zerolog.Logger, name string, c closer) {
	if err := c.Close(); err != nil {
		lg.Warn().Err(err).Str("resource", name).Msg("close failed")
	}
}
