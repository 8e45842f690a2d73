package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"pratica/internal/app"
	"pratica/internal/config"
	httpdelivery "pratica/internal/delivery/http"
	"pratica/internal/domain"
	"pratica/internal/logger"
	"pratica/internal/service"
)

func main() {
	flags := pflag.NewFlagSet(domain.ResponderLabel, pflag.ExitOnError)
	config.RegisterFlags(flags)
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.LoadConfig(domain.ResponderLabel, flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logg := logger.New(cfg.Log, cfg.App.Name)

	responder := service.NewResponderService()
	handler := httpdelivery.NewResponderHandler(responder, cfg.App.Version, logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, cfg, handler.Router(), logg); err != nil {
		logg.Error("service-b stopped with error", "error", err)
		os.Exit(1)
	}
}
