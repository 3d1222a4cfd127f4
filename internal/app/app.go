package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/auth"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/httpserver"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/redis"
	"github.com/MrSnakeDoc/shelf/internal/seed"
	"github.com/MrSnakeDoc/shelf/internal/service"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/shelf/internal/store/redis"
	"github.com/MrSnakeDoc/shelf/internal/store/sqlite"
	"github.com/MrSnakeDoc/shelf/internal/utils"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

type App struct {
	cfg      *config.Config
	logger   logger.Logger
	server   *httpserver.Server
	store    io.Closer // nil for the memory store
	reloader *seed.Reloader
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)
	loggerClient.Debug("configuration loaded",
		logger.String("config", fmt.Sprintf("%+v", cfg.Redacted())))

	// Open the store early - fail fast if unavailable
	repo, closer, err := newRepository(context.Background(), cfg, loggerClient)
	if err != nil {
		loggerClient.Errorf("Failed to open %s store: %v", cfg.Store, err)
		os.Exit(1)
	}
	loggerClient.Info("store initialized", logger.String("backend", cfg.Store))

	bookmarks := service.NewBookmarkService(repo, loggerClient, cfg.StoreTimeout)

	// Seed import (optional), with a manual trigger exposed on /reload
	var (
		reloader    *seed.Reloader
		seedTrigger chan struct{}
	)
	if cfg.SeedFile != "" {
		loggerClient.Info("seed file configured",
			logger.String("file", cfg.SeedFile),
			logger.String("user_id", cfg.SeedUser))
		seedTrigger = make(chan struct{}, 1)
		importer := seed.NewImporter(cfg.SeedFile, cfg.SeedUser, bookmarks, loggerClient)
		reloader = seed.NewReloader(importer, loggerClient, cfg.SeedInterval, seedTrigger)
	}

	d := deps.Deps{
		Logger:       loggerClient,
		StartTime:    time.Now(),
		Version:      version.Version,
		Commit:       version.Commit,
		BuildDate:    version.BuildDate,
		GoVersion:    version.GoVersion,
		TimeNow:      time.Now,
		BasePath:     cfg.BasePath,
		StoreBackend: cfg.Store,
		Bookmarks:    bookmarks,
		Verifier:     newVerifier(cfg),
		AllowedHosts: cfg.AllowedHosts,
		AllowedCIDRS: cfg.AllowedCIDRS,
		TrustProxy:   cfg.TrustProxy,
		RateLimit: mw.RateLimitConfig{
			Burst:             cfg.RateBurst,
			RefillPerIPPerMin: cfg.RatePerMin,
			MaxEntries:        10000,
			TrustProxy:        cfg.TrustProxy,
		},
		SeedTrigger: seedTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:      cfg,
		logger:   loggerClient,
		server:   server,
		store:    closer,
		reloader: reloader,
	}
}

// newRepository opens the backend selected by SHELF_STORE. The returned
// closer is nil when there is nothing to release.
func newRepository(ctx context.Context, cfg *config.Config, log logger.Logger) (service.Repository, io.Closer, error) {
	switch cfg.Store {
	case config.StoreRedis:
		client, err := redis.New(ctx, redis.OptionsFromConfig(cfg), log)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.NewStore(client), client, nil
	case config.StoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.StoreMemory:
		log.Warn("using in-memory store, bookmarks are lost on restart")
		return memory.NewStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

// newVerifier builds the identity collaborator selected by SHELF_AUTH_MODE.
func newVerifier(cfg *config.Config) auth.Verifier {
	if cfg.AuthMode == config.AuthHeader {
		return auth.NewHeaderVerifier(cfg.UserHeader)
	}
	return auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Shelf v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Shelf %s", version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.reloader != nil {
		if err := a.reloader.Start(ctx); err != nil {
			return fmt.Errorf("failed to start seed import: %w", err)
		}
		a.logger.Info("seed import started",
			logger.Duration("interval", a.cfg.SeedInterval))
	}

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
		return err
	}

	if a.reloader != nil {
		a.reloader.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.store != nil {
		utils.CloseLogged(a.store, a.cfg.Store, a.logger)
	}

	a.logger.Info("✅ Shelf stopped cleanly")
	_ = a.logger.Sync()
	return nil
}
