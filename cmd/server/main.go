package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sulbao/community/pkg/config"
	"github.com/tendant/chi-demo/app"
)

func main() {
	envFile := flag.String("env-file", ".env", "optional dotenv file loaded before reading the environment")
	flag.Usage = usage
	flag.Parse()

	if err := run(*envFile); err != nil {
		slog.Error("Server failed", "err", err)
		os.Exit(1)
	}
}

func run(envFile string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.Load(config.WithEnv())
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	ctx := context.Background()
	services, err := cfg.Build(ctx, logger)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	defer services.Close()

	server := app.DefaultApp()
	app.RoutesHealthz(server.R)
	app.RoutesHealthzReady(server.R)
	registerRoutes(server.R, cfg, services, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.R,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Community server starting",
			"port", cfg.Port,
			"env", cfg.Environment,
			"database", cfg.DatabaseType,
			"storage", cfg.Storage.Type,
			"redis", cfg.RedisURL != "",
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exiting")
	return nil
}

// newLogger installs JSON output in production and text output elsewhere
func newLogger(cfg *config.ServerConfig) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
	flag.PrintDefaults()

	desc, err := config.EnvDescription()
	if err != nil {
		return
	}
	fmt.Fprintln(flag.CommandLine.Output())
	fmt.Fprintln(flag.CommandLine.Output(), desc)
}
