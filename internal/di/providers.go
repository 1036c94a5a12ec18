package di

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"GoldPredict/internal/domain/repository"
	"GoldPredict/internal/handler/api"
	internalrepo "GoldPredict/internal/repository"
	"GoldPredict/internal/repository/gormstore"
	"GoldPredict/internal/repository/memory"
	"GoldPredict/internal/service/finnhub"
	"GoldPredict/internal/service/goldapi"
	"GoldPredict/internal/service/metals"
	"GoldPredict/internal/service/pricefeed"
	"GoldPredict/internal/service/ratelimit"
	"GoldPredict/internal/usecase"
	"GoldPredict/pkg/cache"
	pkgch "GoldPredict/pkg/clickhouse"
	"GoldPredict/pkg/config"
	xhttp "GoldPredict/pkg/http"
	pkgkafka "GoldPredict/pkg/kafka"
	"GoldPredict/pkg/logger"
	"GoldPredict/pkg/metrics"
	"GoldPredict/pkg/postgres"
	"GoldPredict/pkg/scheduler"
	"GoldPredict/pkg/server"
)

const snapshotTable = "gold_price_snapshots"

// Stores is the persistence layer chosen by store.backend.
type Stores struct {
	Prices      repository.PriceStore
	Predictions repository.PredictionStore
	Stats       repository.UserStatsStore
	Ranks       repository.RankQuery
	Tx          repository.Transactor
	Health      api.HealthCheck
}

// ProvideLogger creates the root logger from the log section.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&cfg.Log)
}

// ProvideRegistry creates the Prometheus registry served on /metrics.
func ProvideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return reg
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics(reg *prometheus.Registry) repository.Metrics {
	return metrics.NewWithRegistry(reg)
}

// ProvideStores opens PostgreSQL or builds the in-memory store.
func ProvideStores(cfg *config.Config, log *logger.Logger) (*Stores, func(), error) {
	if cfg.Store.Backend == "memory" {
		log.Warn("using in-memory store, data is lost on restart")
		s := memory.New()
		return &Stores{
			Prices:      s.Prices,
			Predictions: s.Predictions,
			Stats:       s.Stats,
			Ranks:       s.Stats,
			Tx:          s,
		}, func() {}, nil
	}

	client, err := postgres.NewClient(
		postgres.WithDSN(cfg.Store.DSN),
		postgres.WithPool(cfg.Store.MaxOpenConns, cfg.Store.MaxIdleConns, cfg.Store.ConnMaxLifetime),
		postgres.WithQueryLog(cfg.Store.LogQueries),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres client: %w", err)
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			log.Warn("postgres close error", logger.Error(err))
		}
	}

	if cfg.Store.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := client.Migrate(ctx, gormstore.Tables()...); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrate: %w", err)
		}
	}

	s := gormstore.New(client.DB())
	return &Stores{
		Prices:      s.Prices,
		Predictions: s.Predictions,
		Stats:       s.Stats,
		Ranks:       s.Stats,
		Tx:          s,
		Health:      client.Health,
	}, cleanup, nil
}

// ProvideCache creates a Redis-backed layered cache, or a process-local one
// when Redis is disabled. It also serves as the sweep lock.
func ProvideCache(cfg *config.Config, log *logger.Logger) (cache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		c := cache.NewMemoryCache()
		return c, func() { _ = c.Close() }, nil
	}

	rc, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	lc := cache.NewLayeredCache(rc, cache.WithLayeredMemoryTTL(5*time.Second))
	return lc, func() {
		if err := lc.Close(); err != nil {
			log.Warn("redis close error", logger.Error(err))
		}
	}, nil
}

// ProvideEventPublisher publishes settlement events to Kafka when enabled.
func ProvideEventPublisher(cfg *config.Config, reg *prometheus.Registry, log *logger.Logger) (repository.EventPublisher, func(), error) {
	if !cfg.Kafka.Enabled {
		return internalrepo.NoopPublisher{}, func() {}, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithHashByKey(true),
		pkgkafka.WithRegisterer(reg),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Kafka.Topic), func() {
		if err := producer.Close(); err != nil {
			log.Warn("kafka producer close error", logger.Error(err))
		}
	}, nil
}

// ProvidePriceArchive appends ingested snapshots to ClickHouse when enabled.
func ProvidePriceArchive(cfg *config.Config, log *logger.Logger) (repository.PriceArchive, func(), error) {
	if !cfg.ClickHouse.Enabled {
		return internalrepo.NoopArchive{}, func() {}, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	table := cfg.ClickHouse.Database + "." + snapshotTable
	if err := client.InitSchema(ctx, internalrepo.PriceSnapshotSchema(table)); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return internalrepo.NewClickHouseArchive(client.DB(), table), func() {
		if err := client.Close(); err != nil {
			log.Warn("clickhouse close error", logger.Error(err))
		}
	}, nil
}

// ProvidePriceSource chains goldapi.io, metals.dev and Finnhub, then the mock if allowed.
func ProvidePriceSource(cfg *config.Config, log *logger.Logger) repository.PriceSource {
	client := xhttp.NewClient(
		xhttp.WithTimeout(cfg.PriceSource.Timeout),
		xhttp.WithRetries(cfg.PriceSource.Retries, 500*time.Millisecond),
	)
	sources := []repository.PriceSource{
		goldapi.New(cfg.PriceSource.GoldAPI.BaseURL, cfg.PriceSource.GoldAPI.APIKey, client),
		metals.New(cfg.PriceSource.Metals.BaseURL, cfg.PriceSource.Metals.APIKey, client),
		finnhub.New(cfg.PriceSource.Finnhub.BaseURL, cfg.PriceSource.Finnhub.APIKey, cfg.PriceSource.Finnhub.Symbol, client),
	}
	opts := []pricefeed.Option{pricefeed.WithTimeout(cfg.PriceSource.Timeout)}
	if cfg.PriceSource.MockFallback {
		opts = append(opts, pricefeed.WithMock(pricefeed.NewMock(0)))
	}
	return pricefeed.NewFallback(log, sources, opts...)
}

func ProvideMarketClock(cfg *config.Config) *usecase.MarketClock {
	return usecase.NewMarketClock(cfg.Market.CloseHour, cfg.Market.CloseMinute, cfg.Location())
}

func ProvideLeaderboard(stores *Stores, c cache.Service, cfg *config.Config, log *logger.Logger) *usecase.Leaderboard {
	return usecase.NewLeaderboard(stores.Stats, stores.Ranks, c, usecase.LeaderboardConfig{
		DefaultLimit:           cfg.Leaderboard.DefaultLimit,
		MaxLimit:               cfg.Leaderboard.MaxLimit,
		AccuracyMinPredictions: cfg.Leaderboard.AccuracyMinPredictions,
		CacheTTL:               cfg.Leaderboard.CacheTTL,
	}, log)
}

func ProvideSettlementEngine(
	cfg *config.Config,
	stores *Stores,
	clock *usecase.MarketClock,
	m repository.Metrics,
	log *logger.Logger,
	publisher repository.EventPublisher,
	locker cache.Service,
	board *usecase.Leaderboard,
) *usecase.SettlementEngine {
	return usecase.NewSettlementEngine(stores.Prices, stores.Predictions, stores.Tx, clock, m, log,
		usecase.WithWorkers(cfg.Settlement.Workers),
		usecase.WithRequireNextDayRecord(*cfg.Market.RequireNextDayRecord),
		usecase.WithEventPublisher(publisher),
		usecase.WithLocker(locker, cfg.Scheduler.JobTimeout),
		usecase.WithInvalidator(board),
	)
}

func ProvidePriceIngestor(source repository.PriceSource, stores *Stores, archive repository.PriceArchive, m repository.Metrics, log *logger.Logger) *usecase.PriceIngestor {
	return usecase.NewPriceIngestor(source, stores.Prices, archive, m, log)
}

func ProvidePredictionService(stores *Stores, log *logger.Logger) *usecase.PredictionService {
	return usecase.NewPredictionService(stores.Predictions, stores.Stats, stores.Prices, log)
}

func ProvideProfileService(stores *Stores, board *usecase.Leaderboard, log *logger.Logger) *usecase.ProfileService {
	return usecase.NewProfileService(stores.Stats, board, log)
}

func ProvidePriceQuery(stores *Stores) *usecase.PriceQuery {
	return usecase.NewPriceQuery(stores.Prices)
}

func ProvideAuthenticator(cfg *config.Config) *api.Authenticator {
	return api.NewAuthenticator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.SubmitPerMin, cfg.RateLimit.SubmitBurst)
}

// ProvideHandlers builds every route group served by the HTTP server.
func ProvideHandlers(
	cfg *config.Config,
	log *logger.Logger,
	stores *Stores,
	prices *usecase.PriceQuery,
	predictions *usecase.PredictionService,
	board *usecase.Leaderboard,
	profiles *usecase.ProfileService,
	auth *api.Authenticator,
	limiter *ratelimit.Limiter,
) []xhttp.Handler {
	checks := map[string]api.HealthCheck{}
	if stores.Health != nil {
		checks["store"] = stores.Health
	}

	var submitLimit echo.MiddlewareFunc
	if cfg.RateLimit.Enabled {
		submitLimit = ratelimit.Middleware(limiter, api.UserKey)
	}

	return []xhttp.Handler{
		api.NewHealthHandler(checks),
		api.NewPriceHandler(log, prices),
		api.NewPredictionHandler(log, predictions, auth, submitLimit),
		api.NewLeaderboardHandler(log, board, auth),
		api.NewProfileHandler(log, profiles, auth),
	}
}

func ProvideHTTPServer(cfg *config.Config, log *logger.Logger, handlers []xhttp.Handler, reg *prometheus.Registry) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(cfg.Server.AllowOrigins),
	}
	path := ""
	if cfg.Metrics.Enabled {
		path = cfg.Metrics.Path
	}
	opts = append(opts, xhttp.WithMetrics(path, reg, reg))
	return xhttp.NewServer(log, handlers, opts...)
}

// ProvideScheduler registers the ingest, settlement and housekeeping jobs.
func ProvideScheduler(
	cfg *config.Config,
	log *logger.Logger,
	m repository.Metrics,
	ingestor *usecase.PriceIngestor,
	engine *usecase.SettlementEngine,
	limiter *ratelimit.Limiter,
) (*scheduler.Scheduler, error) {
	s, err := scheduler.New(log, cfg.Location(),
		scheduler.WithTimeout(cfg.Scheduler.JobTimeout),
		scheduler.WithSkipHook(m.RecordJobSkip),
	)
	if err != nil {
		return nil, err
	}

	if err := schedule(s, server.JobIngest, cfg.Scheduler.IngestCron, cfg.Scheduler.IngestInterval, ingestor.Run); err != nil {
		return nil, err
	}
	if err := schedule(s, server.JobSettlement, cfg.Scheduler.SettlementCron, cfg.Scheduler.SettlementInterval, engine.Run); err != nil {
		return nil, err
	}
	if err := s.Every(server.JobPrune, 10*time.Minute, func(context.Context) error {
		limiter.Prune(time.Hour)
		return nil
	}); err != nil {
		return nil, err
	}
	return s, nil
}

func schedule(s *scheduler.Scheduler, name, cron string, every time.Duration, job scheduler.Job) error {
	if cron != "" {
		return s.Cron(name, cron, job)
	}
	return s.Every(name, every, job)
}

// ProvideApp creates the application server.
func ProvideApp(cfg *config.Config, log *logger.Logger, sched *scheduler.Scheduler, httpServer *xhttp.Server) *server.App {
	return server.New(cfg, log, sched, httpServer)
}
