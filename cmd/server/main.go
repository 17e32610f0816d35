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

	"github.com/dgallion1/doctex/internal/api"
	"github.com/dgallion1/doctex/internal/config"
	"github.com/dgallion1/doctex/internal/parser"
	"github.com/dgallion1/doctex/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Server-wide render defaults.
	abbreviations, err := config.LoadStringMap(cfg.AbbreviationsFile)
	if err != nil {
		log.Error("failed to load abbreviations", "error", err)
		os.Exit(1)
	}
	macros, err := config.LoadStringMap(cfg.MathMacrosFile)
	if err != nil {
		log.Error("failed to load math macros", "error", err)
		os.Exit(1)
	}
	renderer := &pipeline.Renderer{
		Abbreviations: abbreviations,
		Math:          macros,
		Strict:        cfg.StrictRender,
		Parser:        parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext},
		Log:           log,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := pipeline.NewOrchestrator(cfg, renderer, log)
	orch.Start(ctx)

	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("http shutdown", "error", err)
		}
		orch.Stop()
	}()

	log.Info("starting doctex",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"abbreviations", len(abbreviations),
		"math_macros", len(macros),
	)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-stopped
}
