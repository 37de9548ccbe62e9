package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/cover"
	"github.com/MrSnakeDoc/shelf/internal/httpserver"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/records"
	"github.com/MrSnakeDoc/shelf/internal/redis"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
	"github.com/MrSnakeDoc/shelf/internal/sources/seed"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/shelf/internal/store/redis"
	"github.com/MrSnakeDoc/shelf/internal/store/sheets"
	"github.com/MrSnakeDoc/shelf/internal/utils"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

// startupTimeout bounds backend connection and seeding.
const startupTimeout = time.Minute

type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	health *scheduler.HealthMonitor
	closer io.Closer // backend connection, nil when there is none
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	// Open the record store early - fail fast if unavailable
	st, closer, err := openStore(ctx, cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open %s store: %v", cfg.Store, err)
		os.Exit(1)
	}
	loggerClient.Info("record store initialized", logger.String("backend", st.Backend()))

	if cfg.SeedFile != "" {
		if err := seedStore(ctx, st, cfg.SeedFile, loggerClient); err != nil {
			loggerClient.Errorf("Failed to seed store from %s: %v", cfg.SeedFile, err)
			os.Exit(1)
		}
	}

	tokens, err := auth.NewHMACTokens(cfg.SessionSecret, time.Now)
	if err != nil {
		loggerClient.Errorf("Failed to init session tokens: %v", err)
		os.Exit(1)
	}
	authenticator, err := auth.NewAuthenticator(cfg.AdminPassword, tokens)
	if err != nil {
		loggerClient.Errorf("Failed to init authenticator: %v", err)
		os.Exit(1)
	}

	fetcher := cover.NewFetcher(cover.Options{Timeout: cfg.CoverTimeout}, loggerClient)

	recordOpts := records.Options{DefaultCategory: cfg.DefaultCategory}
	if cfg.AutoCover {
		recordOpts.Covers = fetcher
	} else {
		loggerClient.Info("automatic cover lookup disabled")
	}
	service := records.New(st, loggerClient, recordOpts)

	health := scheduler.NewHealthMonitor(st, loggerClient, cfg.HealthInterval)

	// Dependencies passed to routes.
	d := deps.Deps{
		Logger:            loggerClient,
		StartTime:         time.Now(),
		Version:           version.Version,
		Commit:            version.Commit,
		BuildDate:         version.BuildDate,
		GoVersion:         version.GoVersion,
		TimeNow:           time.Now,
		AllowedHosts:      cfg.AllowedHosts,
		AllowedCIDRS:      cfg.AllowedCIDRS,
		TrustProxy:        cfg.TrustProxy,
		CORSOrigins:       cfg.CORSOrigins,
		Records:           service,
		Auth:              authenticator,
		Covers:            fetcher,
		Store:             st,
		Health:            health,
		LoginBurst:        cfg.LoginBurst,
		LoginRefillPerMin: cfg.LoginRefillPerMin,
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg, loggerClient, d),
		health: health,
		closer: closer,
	}
}

// openStore builds the configured backend. The returned closer may be nil.
func openStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Store, io.Closer, error) {
	switch cfg.Store {
	case config.StoreSheets:
		key, err := cfg.ServiceAccountKey()
		if err != nil {
			return nil, nil, err
		}
		gw, err := sheets.NewGoogleGateway(ctx, cfg.GoogleSheetID, key)
		if err != nil {
			return nil, nil, err
		}
		st := sheets.New(gw)
		if err := st.Ping(ctx); err != nil {
			return nil, nil, fmt.Errorf("spreadsheet %s unreachable: %w", cfg.GoogleSheetID, err)
		}
		return st, nil, nil

	case config.StoreRedis:
		client, err := redis.New(ctx, redis.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			RedisDB:        cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, log)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewStore(client), client, nil

	case config.StoreMemory:
		log.Warn("memory store selected, records are lost on restart")
		return memory.New([]string{cfg.DefaultCategory}), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
}

// seedStore loads fixtures into stores that support it.
func seedStore(ctx context.Context, st store.Store, path string, log logger.Logger) error {
	seeder, ok := st.(store.Seeder)
	if !ok {
		log.Warn("seed file ignored, backend does not support seeding",
			logger.String("backend", st.Backend()),
			logger.String("file", path))
		return nil
	}

	data, err := seed.NewLoader(path).Load()
	if err != nil {
		return err
	}

	err = seeder.Seed(ctx, data)
	switch {
	case errors.Is(err, store.ErrAlreadySeeded):
		log.Info("store already holds data, seed skipped", logger.String("file", path))
		return nil
	case err != nil:
		return err
	}

	log.Info("store seeded",
		logger.String("file", path),
		logger.Int("bookmarks", len(data.Bookmarks)),
		logger.Int("tags", len(data.Tags)),
		logger.Int("categories", len(data.Categories)))
	return nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Shelf v%s on %s (store=%s)", version.Version, a.cfg.ListenPort, a.cfg.Store)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.health.Start(ctx)
	a.logger.Info("store health monitor started",
		logger.Duration("interval", a.cfg.HealthInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		a.health.Stop()
		return err
	}

	a.health.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.closer != nil {
		utils.CloseLogged(a.closer, a.logger, a.cfg.Store)
	}

	a.logger.Info("✅ Shelf stopped cleanly")
	return nil
}
