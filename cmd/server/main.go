package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docstruct/internal/api"
	"github.com/dgallion1/docstruct/internal/config"
	"github.com/dgallion1/docstruct/internal/extractor"
	"github.com/dgallion1/docstruct/internal/layoutsvc"
	"github.com/dgallion1/docstruct/internal/pipeline"
	"github.com/dgallion1/docstruct/internal/vision"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize clients.
	layout := layoutsvc.NewClient(cfg.LayoutURL, cfg.LayoutAPIKey)
	visionStats := vision.NewCallStats(time.Hour)
	var visionClient *vision.Client
	if cfg.AnthropicAPIKey != "" {
		visionClient = vision.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, visionStats)
	}

	registry := &extractor.Registry{
		Layout: layout,
		Vision: visionClient,
		Log:    log,
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, registry, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, visionStats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if visionClient != nil {
			visionClient.Close()
		}
		layout.Close()
	}()

	log.Info("starting docstruct", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
