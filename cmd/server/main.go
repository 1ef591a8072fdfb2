package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/coursemap/internal/api"
	"github.com/dgallion1/coursemap/internal/browser"
	"github.com/dgallion1/coursemap/internal/config"
	"github.com/dgallion1/coursemap/internal/messaging"
	"github.com/dgallion1/coursemap/internal/mindmap"
	"github.com/dgallion1/coursemap/internal/remote"
	"github.com/dgallion1/coursemap/internal/render"
	"github.com/dgallion1/coursemap/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(os.Getenv("COURSEMAP_ENV_FILE")); err != nil {
		log.Error("read .env", "error", err)
		os.Exit(1)
	}
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ids, err := mindmap.NewIDGenerator(cfg.IDStrategy)
	if err != nil {
		log.Error("id strategy", "error", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Error("open store", "error", err)
		os.Exit(1)
	}

	artifacts, err := render.NewArtifacts(cfg.DataDir, render.PageOptions{Watermark: cfg.Watermark})
	if err != nil {
		log.Error("artifacts dir", "error", err)
		os.Exit(1)
	}

	var fwd messaging.Forwarder
	if cfg.ServerURL != "" {
		fwd = remote.NewClient(cfg.ServerURL, cfg.SubmitTimeout, log)
	}

	deps := api.Deps{
		Builder:   mindmap.NewBuilder(ids),
		Artifacts: artifacts,
		Outlines:  st.Outlines(),
		Messages:  messaging.NewHandler(st, fwd, log),
	}

	var lazy *browser.Lazy
	if cfg.OpenBrowser {
		lazy = browser.NewLazy(ctx, browser.Options{
			Headless: cfg.BrowserHeadless,
			Bin:      cfg.BrowserBin,
		}, log)
		deps.Opener = lazy
	}

	srv := api.NewServer(deps, log, cfg)

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}
		srv.Wait()
		cancel()
	}()

	log.Info("starting coursemap", "addr", httpServer.Addr, "data_dir", cfg.DataDir, "submit", cfg.ServerURL != "")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	<-done

	if lazy != nil {
		if err := lazy.Close(); err != nil {
			log.Warn("close browser", "error", err)
		}
	}
	if err := st.Close(); err != nil {
		log.Warn("close store", "error", err)
	}
}
