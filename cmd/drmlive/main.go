package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/eligiorbautista/drmlive/internal/api"
	"github.com/eligiorbautista/drmlive/internal/config"
	"github.com/eligiorbautista/drmlive/internal/database"
	"github.com/eligiorbautista/drmlive/internal/domain"
	"github.com/eligiorbautista/drmlive/internal/events"
	"github.com/eligiorbautista/drmlive/internal/logger"
	"github.com/eligiorbautista/drmlive/internal/settings"
	"github.com/eligiorbautista/drmlive/internal/webrtc"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Sugar().Fatalf("config: %v", err)
	}

	logger.Init(cfg.LogLevel)
	defer logger.Sync()
	log := zap.S()

	var store domain.SettingsStore
	if cfg.Database.Host != "" {
		db, err := database.Open(cfg.Database)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		store = settings.NewStore(db)
		log.Infof("settings backed by mysql at %s", cfg.Database.Host)
	} else {
		store = settings.NewMemoryStore()
		log.Warn("no DB_HOST configured, settings are in-memory only")
	}

	rtc, err := webrtc.NewAPI()
	if err != nil {
		log.Fatalf("webrtc api: %v", err)
	}

	broadcast, err := webrtc.NewBroadcast()
	if err != nil {
		log.Fatalf("broadcast: %v", err)
	}

	hub := events.NewHub()
	server := api.NewServer(cfg, store, hub, hub, broadcast, rtc)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	ossignal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received %s, shutting down", sig)
		cancel()
	}()

	go func() {
		log.Infof("listening on %s (merchant=%s env=%s)", cfg.ListenAddr, cfg.DRM.Merchant, cfg.DRM.Environment)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warnf("http shutdown: %v", err)
	}

	server.Close()
	hub.Close()
	log.Info("done")
}
