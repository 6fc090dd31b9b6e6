package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/solatis/fieldfilter/internal/core/api"
	"github.com/solatis/fieldfilter/internal/core/db"
	"github.com/solatis/fieldfilter/internal/core/server"
	"github.com/solatis/fieldfilter/internal/filter"
	"github.com/spf13/cobra"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gRPC and HTTP query servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, root)
		},
	}

	cmd.Flags().String("host", "0.0.0.0", "bind host")
	cmd.Flags().Int("grpc-port", 50051, "gRPC server port")
	cmd.Flags().Int("http-port", 8080, "HTTP server port (0 disables)")

	return cmd
}

func runServe(cmd *cobra.Command, root *rootOptions) error {
	cfg, err := root.config()
	if err != nil {
		return err
	}
	logger, err := root.logger(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("grpc-port") {
		cfg.Server.GRPCPort, _ = cmd.Flags().GetInt("grpc-port")
	}
	if cmd.Flags().Changed("http-port") {
		cfg.Server.HTTPPort, _ = cmd.Flags().GetInt("http-port")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// store is optional: without a database only inline queries are served
	var store api.DatasetStore
	if cfg.Database.URL != "" {
		database, err := openDB(ctx, cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if err := requireMigrated(ctx, database); err != nil {
			return err
		}
		recordStore, err := db.NewRecordStore(database)
		if err != nil {
			return fmt.Errorf("failed to load queries: %w", err)
		}
		store = recordStore
	} else {
		logger.Warn("no database configured, serving inline queries only")
	}

	tag, err := cfg.Filter.LocaleTag()
	if err != nil {
		return err
	}
	engine := filter.NewEngine(filter.WithLogger(logger), filter.WithLocale(tag))
	cache := filter.NewResultCache(filter.CacheConfig{
		TTL:        cfg.Cache.TTL,
		MaxEntries: cfg.Cache.MaxEntries,
	})

	service, err := api.NewQueryService(store, engine, cache, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	grpcServer, err := server.NewGRPCServer(cfg.Server, service, logger)
	if err != nil {
		return fmt.Errorf("failed to create grpc server: %w", err)
	}

	errChan := make(chan error, 2)
	go func() {
		errChan <- grpcServer.Start(ctx)
	}()

	var httpServer *server.HTTPServer
	if cfg.Server.HTTPPort != 0 {
		httpServer, err = server.NewHTTPServer(cfg.Server, service, logger)
		if err != nil {
			return fmt.Errorf("failed to create http server: %w", err)
		}
		go func() {
			errChan <- httpServer.Start(ctx)
		}()
	}

	logger.Info("fieldfilter serving",
		"version", Version,
		"host", cfg.Server.Host,
		"grpc_port", cfg.Server.GRPCPort,
		"http_port", cfg.Server.HTTPPort,
	)

	var serveErr error
	select {
	case serveErr = <-errChan:
		logger.Error("server stopped", "error", serveErr)
	case <-ctx.Done():
		logger.Info("shutting down gracefully")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if httpServer != nil {
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown", "error", err)
		}
	}
	if err := grpcServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("grpc shutdown", "error", err)
	}
	return serveErr
}
