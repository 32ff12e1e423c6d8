package app

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/grokmeetu/meetu-backend/internal/db"
	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/observability"
	"github.com/grokmeetu/meetu-backend/internal/sse"
)

// Mode selects which surface an App process serves.
type Mode int

const (
	ModeServing Mode = iota
	ModeAdmin
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	SSEHub   *sse.Hub

	mode         Mode
	cancel       context.CancelFunc
	otelShutdown func(context.Context) error
}

func New(mode Mode) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading configuration...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: logMode,
	})

	gdb, err := openDatabase(log)
	if err != nil {
		log.Sync()
		return nil, err
	}

	hub := sse.NewHub(log)
	reposet := wireRepos(gdb, log)

	serviceset, err := wireServices(log, cfg, reposet, hub)
	if err != nil {
		log.Sync()
		return nil, err
	}

	if cfg.SeedDemoData {
		if err := seedDemoData(context.Background(), log, reposet); err != nil {
			log.Warn("Demo data seed failed", "error", err)
		}
	}

	handlerset := wireHandlers(log, serviceset, hub)

	var router *gin.Engine
	switch mode {
	case ModeAdmin:
		router = wireAdminRouter(cfg, log, handlerset)
	default:
		router = wireRouter(cfg, handlerset)
	}

	return &App{
		Log:          log,
		DB:           gdb,
		Router:       router,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		SSEHub:       hub,
		mode:         mode,
		otelShutdown: otelShutdown,
	}, nil
}

// openDatabase picks the driver from DB_DRIVER; Postgres is the serving
// default, sqlite covers local development.
func openDatabase(log *logger.Logger) (*gorm.DB, error) {
	if os.Getenv("DB_DRIVER") == "sqlite" {
		dsn := os.Getenv("SQLITE_PATH")
		if dsn == "" {
			dsn = "meetu.db"
		}
		lite, err := db.NewSqliteService(dsn, log)
		if err != nil {
			return nil, fmt.Errorf("init sqlite: %w", err)
		}
		if err := lite.AutoMigrateAll(); err != nil {
			return nil, fmt.Errorf("sqlite automigrate: %w", err)
		}
		return lite.DB(), nil
	}

	pg, err := db.NewPostgresService(log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	return pg.DB(), nil
}

// Start launches the background pieces: the training worker on the admin
// process and the Redis forwarder when a bus is configured.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.mode == ModeAdmin && a.Services.Trainer != nil {
		a.Services.Trainer.StartWorker(ctx)
	}
	if a.Services.EventBus != nil {
		if err := a.Services.EventBus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			a.Log.Warn("Redis forwarder failed to start", "error", err)
		}
	}
}

func (a *App) Run(addr string) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Router.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.EventBus != nil {
		if err := a.Services.EventBus.Close(); err != nil {
			a.Log.Warn("Redis close failed", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("Otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
