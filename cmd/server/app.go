package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/chayma544/BookMate-back/internal/api"
	"github.com/chayma544/BookMate-back/internal/api/middleware"
	"github.com/chayma544/BookMate-back/internal/config"
	"github.com/chayma544/BookMate-back/internal/events"
	"github.com/chayma544/BookMate-back/internal/platform/logger"
	"github.com/chayma544/BookMate-back/internal/platform/postgres"
	"github.com/chayma544/BookMate-back/internal/service"
	"github.com/chayma544/BookMate-back/internal/service/auth"
	"github.com/chayma544/BookMate-back/internal/task"
)

const (
	migrationsDir   = "migrations"
	shutdownTimeout = 10 * time.Second
)

// application bundles everything run() wires together.
type application struct {
	cfg        *config.Config
	logger     *slog.Logger
	db         *sql.DB
	taskRunner *task.TaskRunner
	server     *http.Server
}

func run(migrateCmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("setting up logger: %w", err)
	}

	db, err := openDatabase(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("failed to close database", slog.String("error", err.Error()))
		}
	}()

	if migrateCmd != "" {
		return runMigrations(db, migrateCmd, log)
	}

	// The server always migrates up on boot so a fresh database works
	// without a separate step.
	if err := runMigrations(db, "up", log); err != nil {
		return err
	}

	app, err := buildApplication(cfg, log, db)
	if err != nil {
		return err
	}

	return app.serve()
}

func openDatabase(url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

func runMigrations(db *sql.DB, command string, log *slog.Logger) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}

	var err error
	switch command {
	case "up":
		err = goose.Up(db, migrationsDir)
	case "down":
		err = goose.Down(db, migrationsDir)
	case "status":
		err = goose.Status(db, migrationsDir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
	if err != nil {
		return fmt.Errorf("running migrations %s: %w", command, err)
	}

	log.Info("migrations complete", slog.String("command", command))
	return nil
}

// buildApplication wires stores, services, the task runner, and the HTTP
// router into a runnable application.
func buildApplication(cfg *config.Config, log *slog.Logger, db *sql.DB) (*application, error) {
	// Stores.
	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost, log)
	bookStore := postgres.NewPostgresBookStore(db, log)
	requestStore := postgres.NewPostgresRequestStore(db, log)
	taskStore := postgres.NewPostgresTaskStore(db)

	// Background notification pipeline.
	notifier := task.NewLogNotifier(log)
	taskFactory := task.NewRequestDecidedTaskFactory(notifier, log)
	runnerCfg := task.TaskRunnerConfig{
		WorkerCount:  cfg.Task.WorkerCount,
		QueueSize:    cfg.Task.QueueSize,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMinutes) * time.Minute,
	}
	taskRunner := task.NewTaskRunner(taskStore, taskFactory, runnerCfg, log)

	emitter := events.NewInMemoryEventEmitter(log)
	emitter.RegisterHandler(task.NewTaskFactoryEventHandler(taskFactory, taskRunner, log))

	// Services.
	userRepo := service.NewUserRepositoryAdapter(userStore, db)
	bookRepo := service.NewBookRepositoryAdapter(bookStore, db)
	requestRepo := service.NewRequestRepositoryAdapter(requestStore, db)

	userService, err := service.NewUserService(userRepo, log)
	if err != nil {
		return nil, fmt.Errorf("creating user service: %w", err)
	}
	bookService, err := service.NewBookService(bookRepo, log)
	if err != nil {
		return nil, fmt.Errorf("creating book service: %w", err)
	}
	requestService, err := service.NewRequestService(requestRepo, bookRepo, userRepo, emitter, log)
	if err != nil {
		return nil, fmt.Errorf("creating request service: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("creating jwt service: %w", err)
	}

	// HTTP layer.
	authHandler := api.NewAuthHandler(userStore, jwtService, auth.NewBcryptVerifier(), log)
	bookHandler := api.NewBookHandler(bookService, log)
	requestHandler := api.NewRequestHandler(requestService, log)
	userHandler := api.NewUserHandler(userService, log)
	authMiddleware := middleware.NewAuthMiddleware(jwtService)

	router := newRouter(routerDeps{
		auth:     authHandler,
		books:    bookHandler,
		requests: requestHandler,
		users:    userHandler,
		authMW:   authMiddleware,
		db:       db,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &application{
		cfg:        cfg,
		logger:     log,
		db:         db,
		taskRunner: taskRunner,
		server:     server,
	}, nil
}

// serve starts the task runner and HTTP server, then blocks until a shutdown
// signal arrives and both have drained.
func (a *application) serve() error {
	if err := a.taskRunner.Start(); err != nil {
		return fmt.Errorf("starting task runner: %w", err)
	}
	defer a.taskRunner.Stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		a.logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	return nil
}
