package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/config"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/handlers"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/middleware"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/store"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/uploads"
	"github.com/yaswanth-2005/Task-Manager-Dashboard-Backend/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", slog.Any("err", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var (
		tasks store.TaskStore
		users store.UserStore
	)
	switch cfg.Store {
	case config.StoreMemory:
		mem := store.NewMemory()
		tasks, users = mem.Tasks(), mem.Users()
		logger.Warn("using in-memory store; data is lost on restart")
	default:
		client, err := config.ConnectDB(ctx, cfg.MongoURI)
		if err != nil {
			return err
		}
		defer func() {
			if err := client.Disconnect(context.Background()); err != nil {
				logger.Error("mongo disconnect", slog.Any("err", err))
			}
		}()
		logger.Info("connected to MongoDB", slog.String("db", cfg.MongoDB))

		db := store.NewMongo(client.Database(cfg.MongoDB), cfg.DBTimeout)
		if err := db.EnsureSchema(ctx); err != nil {
			return err
		}
		tasks, users = db.Tasks(), db.Users()
	}

	tokens, err := utils.NewJWT(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		return err
	}
	files, err := uploads.NewDisk(cfg.UploadDir)
	if err != nil {
		return err
	}

	h := &handlers.Handler{
		Tasks:          tasks,
		Users:          users,
		Tokens:         tokens,
		Uploads:        files,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
	}
	auth := &middleware.Auth{Tokens: tokens, Users: users, Logger: logger}

	mux := http.NewServeMux()
	h.Routes(mux, auth.AuthMiddleware)
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", files.Handler()))

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           middleware.Logging(logger, mux),
		ReadHeaderTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
