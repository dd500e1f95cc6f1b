package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	h "github.com/veranemoloko/accession-downloader/internal/api/http"
	cfgpkg "github.com/veranemoloko/accession-downloader/internal/config"
	"github.com/veranemoloko/accession-downloader/internal/fetch"
	repo "github.com/veranemoloko/accession-downloader/internal/repository"
	svc "github.com/veranemoloko/accession-downloader/internal/service"
)

func main() {

	_ = godotenv.Load()

	cfg, err := cfgpkg.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	cfgpkg.SetupLogger(cfg)
	slog.Info("configuration loaded successfully", "environment", cfg.Environment)

	taskStorage, err := repo.NewTaskStorage(cfg.DBPath)
	if err != nil {
		slog.Error("failed to initialize task storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := taskStorage.Close(); err != nil {
			slog.Error("failed to close task storage", "error", err)
		}
	}()

	fetcher := fetch.NewFetcher(cfg.DownloadTimeout, cfg.ProbeTimeout, cfg.MaxFileSize)

	pipeline := svc.NewPipelineService(taskStorage, fetcher, cfg)
	taskService := svc.NewTaskService(taskStorage, fetcher, pipeline)

	if err := pipeline.ReconcileInterrupted(context.Background()); err != nil {
		slog.Error("failed to reconcile interrupted tasks", "error", err)
	}

	router := h.NewRouter(taskService, slog.Default())
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  cfg.HTTPTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	if err := pipeline.Shutdown(shutdownCtx); err != nil {
		slog.Error("pipeline shutdown failed", "error", err)
	} else {
		slog.Info("server stopped gracefully")
	}
}
