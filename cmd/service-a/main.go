package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"pratica/internal/app"
	"pratica/internal/client/serviceb"
	"pratica/internal/config"
	httpdelivery "pratica/internal/delivery/http"
	"pratica/internal/domain"
	"pratica/internal/logger"
	"pratica/internal/service"
)

func main() {
	flags := pflag.NewFlagSet(domain.CallerLabel, pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.LoadConfig(domain.CallerLabel, flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logg := logger.New(cfg.Log, cfg.App.Name)

	// Outbound client to service-b
	client := serviceb.NewClient(cfg.Responder, logg)
	caller := service.NewCallerService(client, logg)
	handler := httpdelivery.NewCallerHandler(caller, cfg.App.Version, logg)

	logg.Info("forwarding calls", "responder_url", cfg.Responder.URL, "timeout", cfg.Responder.Timeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, handler.Router(), logg); err != nil {
		logg.Error("service-a stopped with error", "error", err)
		os.Exit(1)
	}
}
