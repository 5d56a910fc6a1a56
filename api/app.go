package api

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"reminder-board/cache"
	"reminder-board/config"
	"reminder-board/render"
	"reminder-board/storage"
	"reminder-board/storage/mysql"
	"reminder-board/storage/sqlite"
	handler "reminder-board/system"
	"reminder-board/ws"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const listCacheTTL = 5 * time.Minute

// App owns every long-lived resource of the server.
type App struct {
	DB      *sql.DB
	Redis   *redis.Client
	Hub     *ws.Hub
	Pool    *handler.EventWorkerPool
	Handler *handler.Handler
	Router  http.Handler

	cancel context.CancelFunc
}

func OpenDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	switch cfg.DBDriver {
	case mysql.Driver:
		return mysql.InitDB(ctx, cfg.DBDSN)
	default:
		return sqlite.InitDB(cfg.DBDriver, cfg.DBDSN)
	}
}

// NewApp opens the database (and Redis when configured), starts the hub
// and the event workers, and builds the router.
func NewApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}
	return newApp(ctx, cfg, db, logger)
}

func newApp(ctx context.Context, cfg config.Config, db *sql.DB, logger *zap.Logger) (*App, error) {
	renderer, err := render.New()
	if err != nil {
		db.Close()
		return nil, err
	}

	// Workers and the hub outlive the signal context so requests still in
	// flight during shutdown get their events; Close ends them.
	runCtx, cancel := context.WithCancel(context.Background())
	app := &App{DB: db, cancel: cancel}

	sqlStore := storage.NewSQLStore(db)
	var tasks storage.TaskStore = sqlStore
	var redisClient cache.RedisClientInterface
	if cfg.RedisAddr != "" {
		client, err := cache.InitRedis(ctx, cfg.RedisAddr)
		if err != nil {
			cancel()
			db.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		app.Redis = client
		redisClient = client
		tasks = storage.NewCachedStore(sqlStore, cache.New(client, listCacheTTL), logger)
	}

	app.Hub = ws.NewHub(logger)
	go app.Hub.Run(runCtx)

	app.Pool = handler.NewEventWorkerPool(sqlStore, app.Hub, cfg.EventWorkers, logger)
	app.Pool.Start(runCtx)

	app.Handler = handler.NewHandler(tasks, sqlStore, sqlStore, app.Pool, renderer, logger)
	app.Router = NewRouter(RouterDeps{
		Handler:    app.Handler,
		Hub:        app.Hub,
		Redis:      redisClient,
		RateLimit:  cfg.RateLimit,
		RateWindow: cfg.RateWindow,
		Logger:     logger,
	})
	return app, nil
}

// Close drains the event queue, stops the hub and releases connections.
func (a *App) Close() error {
	a.Pool.Stop()
	a.cancel()
	if a.Redis != nil {
		a.Redis.Close()
	}
	return a.DB.Close()
}
