package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/emirkorkmazz/lokanta-api/auth"
	"github.com/emirkorkmazz/lokanta-api/httpapi"
)

func main() {
	logger := newLogger()

	cfg, err := auth.ConfigFromEnv()
	if err != nil {
		// signing keys are mandatory; refuse to start without them
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	auth.SetBcryptCost(cfg.GetBcryptCost())

	db, err := openDatabase()
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bootstrapSchema(ctx, db); err != nil {
		logger.Error("failed to bootstrap schema", "error", err)
		os.Exit(1)
	}

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	denylist := auth.NewMemoryDenylist(5 * time.Minute)
	defer denylist.Close()

	tokens := auth.NewTokenService(cfg, logger, auth.WithDenylist(denylist))

	provider := auth.NewUserProvider(repo.Users()).WithLogger(logger)
	auther := auth.NewAuthenticator(provider, tokens).
		WithLogger(logger).
		WithDenylist(denylist).
		WithActivitySink(auth.ActivitySinkFunc(func(ctx context.Context, event auth.ActivityEvent) error {
			logger.Info("auth activity", "event", string(event.EventType), "user_id", event.UserID)
			return nil
		}))

	app := fiber.New(fiber.Config{
		AppName:               "lokanta-api",
		DisableStartupMessage: true,
	})

	controller := httpapi.NewAuthController(auther, repo, tokens, httpapi.WithLogger(logger))
	httpapi.RegisterAuthRoutes(app, controller)

	addr := os.Getenv("LOKANTA_LISTEN_ADDR")
	if addr == "" {
		addr = ":3000"
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := app.Listen(addr); err != nil {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func openDatabase() (*bun.DB, error) {
	dsn := os.Getenv("LOKANTA_DATABASE_DSN")
	if dsn == "" {
		dsn = "file:lokanta.db?cache=shared&_pragma=foreign_keys(1)"
	}

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	return bun.NewDB(sqldb, sqlitedialect.New()), nil
}

func bootstrapSchema(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*auth.User)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}
