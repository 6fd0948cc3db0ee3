// Package server wires the configuration, database, services and HTTP
// transport together and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophtodo/internal/logging"
	"github.com/dmitrijs2005/gophtodo/internal/server/auth"
	"github.com/dmitrijs2005/gophtodo/internal/server/config"
	"github.com/dmitrijs2005/gophtodo/internal/server/httpserver"
	"github.com/dmitrijs2005/gophtodo/internal/server/limiter"
	"github.com/dmitrijs2005/gophtodo/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophtodo/internal/server/services"
	"github.com/redis/go-redis/v9"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	server  *httpserver.HTTPServer
	closers []func() error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	codec, err := auth.NewTokenCodec([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token codec: %w", err)
	}
	sameSite, err := config.ParseSameSite(c.CookieSameSite)
	if err != nil {
		return nil, err
	}

	db, err := repomanager.OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app := &App{config: c, logger: logger, db: db, closers: []func() error{db.Close}}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	lim, err := app.newLimiter(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}

	as := services.NewAuthService(db, rm, auth.NewPasswordHasher(c.BcryptCost), codec, auth.CookieConfig{
		Secure:   c.CookieSecure,
		SameSite: sameSite,
	})
	ts := services.NewTodoService(db, rm)

	app.server = httpserver.NewHTTPServer(c.EndpointAddrHTTP, logger, as, ts, lim)
	return app, nil
}

// newLimiter picks Redis when an address is configured and falls back to an
// in-process cache otherwise.
func (app *App) newLimiter(ctx context.Context) (limiter.Limiter, error) {
	cfg := limiter.Config{
		MaxFailures: app.config.LoginMaxFailures,
		Window:      app.config.LoginFailureWindow,
	}
	if app.config.RedisAddr == "" {
		l, err := limiter.NewMemoryLimiter(cfg)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, l.Close)
		return l, nil
	}

	client := redis.NewClient(&redis.Options{Addr: app.config.RedisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis init error: %w", err)
	}
	app.closers = append(app.closers, client.Close)
	app.logger.Info(ctx, "Using redis login limiter", "address", app.config.RedisAddr)
	return limiter.NewRedisLimiter(client, cfg), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.Close()
	app.logger.Info(ctx, "App stopped")
}

// Close releases the database and limiter connections in reverse order.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		if err := app.closers[i](); err != nil {
			app.logger.Error(context.Background(), "close", "error", err)
		}
	}
	app.closers = nil
}
