package main

import (
	"context"
	"errors"
	"io"
	"net/http"

	httpserver "github.com/fyrsmithlabs/strategist/internal/http"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions, stderr io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web UI",
		Long: `Start the web UI and JSON API on server.host:server.port.

Routes:
  GET    /                   upload form and strategy generator
  POST   /documents          add a PDF to the knowledge base
  POST   /strategies         generate a strategy
  GET    /strategies/:file   download a saved strategy PDF
  GET    /api/v1/status      chunk count and cache statistics
  DELETE /api/v1/cache       clear the strategy cache
  GET    /health, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.configPath, stderr)
		},
	}
}

func runServe(ctx context.Context, configPath string, stderr io.Writer) error {
	rt, err := bootstrap(ctx, configPath, stderr)
	if err != nil {
		return err
	}
	defer rt.Close()

	sys, err := buildSystem(ctx, rt)
	if err != nil {
		rt.logger.Error(ctx, "initialization failed", zap.Error(err))
		return errReported
	}
	defer sys.Close()

	sys.populate(ctx)

	cfg := rt.cfg
	srv, err := httpserver.NewServer(sys.strategist, sys.knowledge, rt.logger, &httpserver.Config{
		Host:        cfg.Server.Host,
		Port:        cfg.Server.Port,
		ChunkSize:   cfg.VectorDB.ChunkSize,
		OutputDir:   cfg.Output.PDFOutputDir,
		UploadMaxMB: cfg.Server.UploadMaxMB,
		Version:     version,
	}, httpserver.WithGatherer(rt.registry))
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		rt.logger.Info(context.Background(), "shutdown signal received")
	case err := <-errCh:
		if err != nil {
			rt.logger.Error(ctx, "http server failed", zap.Error(err))
			return errReported
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.logger.Warn(shutdownCtx, "http server shutdown failed", zap.Error(err))
	}
	return nil
}
