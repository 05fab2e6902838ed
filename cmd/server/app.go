package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/fundledger/internal/adapter/http"
	"github.com/iho/fundledger/internal/adapter/http/handler"
	"github.com/iho/fundledger/internal/adapter/http/middleware"
	"github.com/iho/fundledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/fundledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/fundledger/internal/adapter/repository/redis"
	"github.com/iho/fundledger/internal/domain"
	"github.com/iho/fundledger/internal/infrastructure/auth"
	"github.com/iho/fundledger/internal/infrastructure/config"
	"github.com/iho/fundledger/internal/infrastructure/custody"
	"github.com/iho/fundledger/internal/infrastructure/eventpublisher"
	"github.com/iho/fundledger/internal/infrastructure/metrics"
	"github.com/iho/fundledger/internal/infrastructure/postgres"
	"github.com/iho/fundledger/internal/infrastructure/pricefeed"
	"github.com/iho/fundledger/internal/infrastructure/redis"
	"github.com/iho/fundledger/internal/usecase"
)

// app is the wired service.
type app struct {
	funding     *usecase.FundingUseCase
	handler     http.Handler
	publisher   *eventpublisher.EventPublisher
	rateLimiter *middleware.RateLimiter
	closers     []func()
}

type repositories struct {
	txManager     usecase.TransactionManager
	ledgers       usecase.LedgerRepository
	contributions usecase.ContributionRepository
	funders       usecase.FunderRepository
	outbox        usecase.OutboxRepository
	retrier       usecase.Retrier
}

func newApp(ctx context.Context, cfg *config.Config, m *metrics.Metrics, log zerolog.Logger) (_ *app, err error) {
	a := &app{}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	var checks []handler.Check

	repos, check, err := a.openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	if check != nil {
		checks = append(checks, *check)
	}

	feed := newPriceFeed(cfg)

	var idempotencyStore usecase.IdempotencyStore
	if cfg.RedisEnabled {
		client, err := redis.Dial(ctx, redis.Options{URL: cfg.RedisURL})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		log.Info().Msg("connected to redis")

		checks = append(checks, handler.RedisCheck(client))
		idempotencyStore = redisRepo.NewIdempotencyStore(client, cfg.RedisNamespace)
		feed = pricefeed.NewCachedFeed(feed, redisRepo.NewCache(client, cfg.RedisNamespace), cfg.QuoteCacheTTL, m, log)
	}

	a.funding = usecase.NewFundingUseCase(usecase.FundingConfig{
		LedgerID:         cfg.LedgerID,
		TxManager:        repos.txManager,
		LedgerRepo:       repos.ledgers,
		ContributionRepo: repos.contributions,
		FunderRepo:       repos.funders,
		OutboxRepo:       repos.outbox,
		PriceFeed:        feed,
		Transferer:       newTransferer(cfg),
		IDGen:            postgresRepo.NewULIDGenerator(),
		Retrier:          repos.retrier,
		Metrics:          m,
		Logger:           log,
		MinimumReference: cfg.MinimumReference,
	})

	ledger, err := a.funding.Deploy(ctx, usecase.DeployInput{
		Owner:     cfg.OwnerAddress,
		PriceFeed: feed.Address(),
	})
	if err != nil {
		return nil, fmt.Errorf("deploy ledger: %w", err)
	}
	log.Info().Str("ledger_id", ledger.ID).Str("owner", ledger.Owner).Str("balance", ledger.Balance.String()).Msg("ledger ready")

	if cfg.OutboxEnabled {
		a.publisher = eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: repos.outbox,
			Publisher:  a.newPublisher(cfg, log),
			Metrics:    m,
			Logger:     log,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
			Retention:  cfg.OutboxRetention,
		})
	}

	routerCfg := httpAdapter.RouterConfig{
		LedgerHandler:    handler.NewLedgerHandler(a.funding, usecase.NewLedgerUseCase(cfg.LedgerID, repos.ledgers)),
		HealthHandler:    handler.NewHealthHandler(checks...),
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		MetricsHandler:   promhttp.Handler(),
		Logger:           log,
	}
	if cfg.RateLimitEnabled {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).WithMetrics(m)
		routerCfg.RateLimiter = a.rateLimiter
	}
	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	} else {
		log.Warn().Msg("authentication disabled, mutation callers are taken from the request body")
	}

	a.handler = httpAdapter.NewRouter(routerCfg)

	return a, nil
}

func (a *app) openStorage(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*repositories, *handler.Check, error) {
	if cfg.Storage == config.StorageMemory {
		log.Warn().Msg("using in-memory storage, state is lost on restart")

		store := memory.NewStore()
		var outbox usecase.OutboxRepository = memory.NewOutboxRepository(store)
		if !cfg.OutboxEnabled {
			outbox = postgresRepo.NewNullOutboxRepository(log)
		}

		return &repositories{
			txManager:     memory.NewTxManager(store),
			ledgers:       memory.NewLedgerRepository(store),
			contributions: memory.NewContributionRepository(store),
			funders:       memory.NewFunderRepository(store),
			outbox:        outbox,
		}, nil, nil
	}

	if cfg.AutoMigrate {
		if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
			return nil, nil, err
		}
	}

	pool, err := postgres.Open(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)
	log.Info().Msg("connected to postgres")

	var outbox usecase.OutboxRepository = postgresRepo.NewOutboxRepository(pool)
	if !cfg.OutboxEnabled {
		outbox = postgresRepo.NewNullOutboxRepository(log)
	}

	check := handler.PostgresCheck(pool)
	return &repositories{
		txManager:     postgresRepo.NewTxManager(pool, postgresRepo.TxConfig{LockTimeout: cfg.DatabaseLockTimeout}),
		ledgers:       postgresRepo.NewLedgerRepository(pool),
		contributions: postgresRepo.NewContributionRepository(pool),
		funders:       postgresRepo.NewFunderRepository(pool),
		outbox:        outbox,
		retrier:       postgresRepo.NewRetrier(retryPolicy(cfg), log),
	}, &check, nil
}

func (a *app) newPublisher(cfg *config.Config, log zerolog.Logger) eventpublisher.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		return eventpublisher.NewLogPublisher(log)
	}

	kp := eventpublisher.NewKafkaPublisher(eventpublisher.KafkaConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
	})
	a.closers = append(a.closers, func() { _ = kp.Close() })

	return kp
}

func newPriceFeed(cfg *config.Config) usecase.PriceFeed {
	if cfg.PriceFeedMode == config.PriceFeedHTTP {
		return pricefeed.NewHTTPFeed(pricefeed.HTTPFeedConfig{
			URL:     cfg.PriceFeedURL,
			Address: cfg.PriceFeedAddress,
			Timeout: cfg.PriceFeedTimeout,
		})
	}

	return pricefeed.NewStatic(cfg.PriceFeedAddress, domain.PriceQuote{
		Price:    cfg.StaticPrice,
		Decimals: cfg.StaticDecimals,
	})
}

func newTransferer(cfg *config.Config) usecase.Transferer {
	if cfg.CustodyMode == config.CustodyHTTP {
		return custody.NewHTTPTransferer(custody.HTTPTransfererConfig{
			URL:     cfg.CustodyURL,
			Token:   cfg.CustodyToken,
			Timeout: cfg.CustodyTimeout,
		})
	}

	return custody.NewVault()
}

// close releases connections in reverse order of opening.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func retryPolicy(cfg *config.Config) postgresRepo.RetryPolicy {
	policy := postgresRepo.DefaultRetryPolicy()
	policy.MaxRetries = cfg.DatabaseMaxRetries
	return policy
}
