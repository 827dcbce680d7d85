package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/whatsapp-cloud/internal/config"
	"github.com/example/whatsapp-cloud/internal/logger"
	"github.com/example/whatsapp-cloud/internal/relay"
	"github.com/example/whatsapp-cloud/webhook"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fail("config load", err)
	}

	baseLogger, err := logger.New(cfg.App.Env, cfg.App.LogLevel)
	if err != nil {
		fail("logger init", err)
	}
	log := baseLogger.With().Str("service", "webhook-receiver").Logger()

	producer, err := relay.NewProducer(cfg.Kafka.Brokers, log.With().Str("component", "relay-producer").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create relay producer")
	}
	defer func() {
		if err := producer.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close relay producer")
		}
	}()

	publisher, err := relay.NewEventPublisher(producer, cfg.Kafka.EventsTopic, log.With().Str("component", "relay-publisher").Logger())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create event publisher")
	}

	handler, err := webhook.NewHandler(
		cfg.Webhook.VerifyToken,
		cfg.Webhook.AppSecret,
		func(r *http.Request, events []webhook.Event) error {
			return publisher.PublishEvents(r.Context(), events)
		},
		log.With().Str("component", "webhook-handler").Logger(),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create webhook handler")
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Webhook.Path, handler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("path", cfg.Webhook.Path).Msg("webhook receiver listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http server shutdown failed")
	}
}

func fail(stage string, err error) {
	fmt.Fprintf(os.Stderr, "webhook-receiver: %s: %v\n", stage, err)
	os.Exit(1)
}
