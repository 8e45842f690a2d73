// Package app runs a service's HTTP listener, and the gRPC health endpoint
// when enabled, until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"pratica/internal/config"
	"pratica/pkg/grpcserver"
	"pratica/pkg/httpserver"
)

// Run binds the configured ports, logs the startup line and blocks until
// ctx is done or a listener fails. Shutdown is bounded by
// cfg.HTTP.ShutdownTimeout.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler, log *slog.Logger) error {
	lis, err := net.Listen("tcp", cfg.HTTP.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.HTTP.Addr(), err)
	}

	var grpcLis net.Listener
	if cfg.GRPC.Enabled() {
		grpcLis, err = net.Listen("tcp", cfg.GRPC.Addr())
		if err != nil {
			lis.Close()
			return fmt.Errorf("failed to listen on %s: %w", cfg.GRPC.Addr(), err)
		}
	}

	return serve(ctx, cfg, handler, log, lis, grpcLis)
}

func serve(ctx context.Context, cfg *config.Config, handler http.Handler, log *slog.Logger,
	lis, grpcLis net.Listener) error {

	errCh := make(chan error, 2)

	httpSrv := httpserver.New(cfg.HTTP, handler, log)
	go func() {
		errCh <- httpSrv.Serve(lis)
	}()

	var grpcSrv *grpcserver.Server
	if grpcLis != nil {
		grpcSrv = grpcserver.NewServer(cfg.App.Name, cfg.App.Env == "development", log)
		go func() {
			errCh <- grpcSrv.Serve(grpcLis)
		}()
	}

	log.Info(fmt.Sprintf("%s ouvindo na porta %d", cfg.App.Name, cfg.HTTP.Port),
		"port", cfg.HTTP.Port,
		"grpc_port", cfg.GRPC.Port,
		"env", cfg.App.Env,
		"version", cfg.App.Version,
	)

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errCh:
		if runErr == nil {
			runErr = errors.New("listener stopped unexpectedly")
		}
		log.Error("server failed", "error", runErr)
	}

	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "error", err)
		if runErr == nil {
			runErr = err
		}
	}

	log.Info("server stopped gracefully")
	return runErr
}
