package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"roastlog/internal/config"
	"roastlog/internal/handlers"
	"roastlog/internal/logger"
	"roastlog/internal/metrics"
	"roastlog/internal/repository"
	"roastlog/internal/repository/db"
	"roastlog/internal/server"
	"roastlog/internal/service"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// init logger
	log := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer func() { _ = log.Sync() }()

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Errorw("sqlite_init_failed", "path", cfg.DB.Path, "err", err)
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("sqlite_close_failed", "err", cerr)
		}
	}()

	// wire dependencies
	m := metrics.New()
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, cfg, m, log)
	apiHandler := handlers.NewHandler(services, log, handlers.Options{
		Metrics:      m,
		LiveInterval: cfg.WS.Interval,
	})

	// context for background goroutines
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// demo roast (no-op unless demo.enabled)
	go services.DemoRoaster.Run(ctx)

	// start HTTP server
	srv := &server.Server{}
	errc := runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	return waitForShutdown(cancel, srv, errc, log)
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) <-chan error {
	errc := make(chan error, 1)
	go func() {
		log.Infow("http_server_starting", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()
	return errc
}

// waitForShutdown blocks until a termination signal or a server failure,
// then stops background goroutines and drains in-flight requests.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, errc <-chan error, log *logger.Logger) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		log.Infow("shutting_down")
	case err, ok := <-errc:
		cancel()
		if ok && err != nil {
			log.Errorw("http_server_failed", "err", err)
			return err
		}
		return nil
	}

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server_forced_shutdown", "err", err)
		return err
	}
	return nil
}
