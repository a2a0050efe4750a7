package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/sitelist/internal/config"
	"github.com/MrSnakeDoc/sitelist/internal/directory"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver"
	"github.com/MrSnakeDoc/sitelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/sitelist/internal/logger"
	"github.com/MrSnakeDoc/sitelist/internal/mongo"
	"github.com/MrSnakeDoc/sitelist/internal/mq"
	"github.com/MrSnakeDoc/sitelist/internal/redis"
	"github.com/MrSnakeDoc/sitelist/internal/retry"
	"github.com/MrSnakeDoc/sitelist/internal/scheduler"
	"github.com/MrSnakeDoc/sitelist/internal/sources/seed"
	"github.com/MrSnakeDoc/sitelist/internal/store"
	"github.com/MrSnakeDoc/sitelist/internal/store/memory"
	mongostore "github.com/MrSnakeDoc/sitelist/internal/store/mongo"
	redisstore "github.com/MrSnakeDoc/sitelist/internal/store/redis"
	"github.com/MrSnakeDoc/sitelist/internal/version"
)

// redisRetry is short: the cache is optional and the app starts without it.
var redisRetry = retry.Policy{
	Total:         10 * time.Second,
	Initial:       500 * time.Millisecond,
	Max:           2 * time.Second,
	PerAttempt:    2 * time.Second,
	WarnThreshold: 3,
}

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	store       store.Store
	redisClient *goredis.Client
	events      mq.Publisher
	directory   *directory.Service
	warmer      *scheduler.CacheWarmer
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	st, err := openStore(cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:    cfg,
		logger: loggerClient,
		store:  st,
		events: mq.Noop{},
	}

	// Listing cache (optional, the app runs uncached when Redis is unreachable)
	var cache *redisstore.Cache
	if cfg.CacheEnabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(redis.ConnectOptions{
			Addr:     cfg.RedisAddr,
			User:     cfg.RedisUser,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Retry:    redisRetry,
		}, loggerClient.Named("redis"))
		if err != nil {
			loggerClient.Warn("redis unavailable, listing cache disabled", logger.Error(err))
		} else {
			a.redisClient = client
			cache = redisstore.NewCache(client, cfg.CacheTTL)
			loggerClient.Info("listing cache enabled", logger.Duration("ttl", cfg.CacheTTL))
		}
	}

	// Domain events (optional)
	if cfg.EventsEnabled() {
		pub, err := mq.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			loggerClient.Warn("rabbitmq unavailable, events disabled", logger.Error(err))
		} else {
			a.events = pub
			loggerClient.Info("event publishing enabled", logger.String("exchange", cfg.AMQPExchange))
		}
	}

	opts := directory.Options{
		Store:  st,
		Events: a.events,
		Logger: loggerClient.Named("directory"),
	}
	if cache != nil {
		opts.Cache = cache
	}
	a.directory = directory.New(opts)

	if cfg.SeedFile != "" {
		if err := a.seed(context.Background()); err != nil {
			loggerClient.Warn("seeding failed", logger.String("file", cfg.SeedFile), logger.Error(err))
		}
	}

	if cache != nil {
		a.warmer = scheduler.NewCacheWarmer(a.directory, loggerClient.Named("warmer"), cfg.CacheWarmInterval)
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		Directory:    a.directory,
		StoreBackend: cfg.Store,
		Events:       a.events,
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AdminCIDRS,
		TrustProxy:   cfg.TrustProxy,
	}
	if cache != nil {
		d.Cache = cache
	}

	a.server = httpserver.New(cfg, loggerClient, d)
	return a, nil
}

// openStore connects the configured backend.
func openStore(cfg *config.Config, log logger.Logger) (store.Store, error) {
	if cfg.Store == config.StoreMemory {
		log.Warn("using in-memory store, data is lost on restart")
		return memory.New(), nil
	}

	log.Infof("Connecting to MongoDB database %s", cfg.MongoDB)
	client, err := mongo.New(mongo.ConnectOptions{
		URI:      cfg.MongoURI,
		AppName:  "sitelist",
		PoolSize: cfg.MongoPoolSize,
		Retry: retry.Policy{
			Total:         cfg.MongoConnectTimeout,
			Initial:       cfg.MongoRetryInterval,
			Max:           cfg.MongoMaxWait,
			PerAttempt:    cfg.MongoPingTimeout,
			WarnThreshold: 3,
		},
	}, log.Named("mongo"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	st := mongostore.NewStore(client, cfg.MongoDB)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.MongoConnectTimeout)
	defer cancel()
	if err := st.EnsureIndexes(ctx); err != nil {
		_ = st.Close(context.Background())
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}
	log.Info("MongoDB initialized successfully")
	return st, nil
}

// seed fills an empty AllWebsites collection from the seed file.
func (a *App) seed(ctx context.Context) error {
	file, err := seed.NewLoader(a.cfg.SeedFile).Load()
	if err != nil {
		return err
	}
	sites, err := seed.MapSites(file)
	if err != nil {
		return err
	}
	n, err := a.directory.Seed(ctx, sites)
	if err != nil {
		return err
	}
	if n > 0 {
		a.logger.Info("seeded websites", logger.Int("count", n), logger.String("file", a.cfg.SeedFile))
	}
	return nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting sitelist v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("sitelist %s (commit=%s, built=%s, go=%s, store=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion, a.cfg.Store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.warmer != nil {
		if err := a.warmer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start cache warmer: %w", err)
		}
		a.logger.Info("cache warmer started",
			logger.Duration("interval", a.cfg.CacheWarmInterval))
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case runErr = <-errCh:
		a.logger.Error("http server failed, shutting down", logger.Error(runErr))
	}

	if a.warmer != nil {
		a.warmer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	a.closeBackends(shutdownCtx)

	if runErr != nil {
		return runErr
	}
	a.logger.Info("✅ sitelist stopped cleanly")
	_ = a.logger.Sync()
	return nil
}

// closeBackends releases every connection, logging failures.
func (a *App) closeBackends(ctx context.Context) {
	if err := a.events.Close(); err != nil {
		a.logger.Warnf("failed to close rabbitmq: %v", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	if err := a.store.Close(ctx); err != nil {
		a.logger.Warnf("failed to close store: %v", err)
	} else {
		a.logger.Info("✅ Store closed cleanly")
	}
}
