// Package server initializes and runs the registration application server.
// It wires the connection pool, repositories, services, and the HTTP
// surface, and handles graceful shutdown on termination signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/svalekar/voterreg/internal/logging"
	"github.com/svalekar/voterreg/internal/server/config"
	"github.com/svalekar/voterreg/internal/server/db"
	"github.com/svalekar/voterreg/internal/server/httpapi"
	"github.com/svalekar/voterreg/internal/server/notify"
	"github.com/svalekar/voterreg/internal/server/services"
	"github.com/svalekar/voterreg/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	pool   *db.Pool
	http   *httpapi.HTTPServer
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	pool, err := db.NewPool(c)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := pool.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	repos := db.NewPostgresRepositoryManager()

	var notifier notify.Notifier
	if c.MessagingConfigured() {
		notifier = notify.NewWhatsAppClient(c)
	} else {
		logger.Warn(context.Background(), "messaging credentials absent, notifications disabled")
		notifier = notify.NoOp{}
	}

	store := storage.NewDocumentStore(c)

	subSvc := services.NewSubmissionService(pool, repos, store, notifier, logger)
	userSvc := services.NewUserService(pool, repos, notifier, logger)
	authSvc := services.NewAuthService(pool, repos, c, logger)

	router := httpapi.NewRouter(
		authSvc,
		httpapi.NewSubmissionHandler(subSvc, logger),
		httpapi.NewUserHandler(userSvc, logger),
		httpapi.NewAuthHandler(authSvc, logger),
		httpapi.NewHealthHandler(pool),
		logger,
	)

	httpServer := httpapi.NewHTTPServer(c.EndpointAddr, router, c.ShutdownTimeout, logger)

	return &App{config: c, logger: logger, pool: pool, http: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.pool.Close(); err != nil {
		app.logger.Error(ctx, "pool close error", "error", err.Error())
	}
	app.logger.Info(ctx, "app stopped")
}
