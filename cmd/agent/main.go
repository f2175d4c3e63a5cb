// The agent is the headless companion to the CLI: it keeps the
// notification feed polled on the configured interval, housekeeps expired
// notices, and exposes the poll state over /metrics for scraping.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/swiftmeds/client/internal/api"
	"github.com/swiftmeds/client/internal/config"
	"github.com/swiftmeds/client/internal/logger"
	"github.com/swiftmeds/client/internal/notify"
	"github.com/swiftmeds/client/internal/session"
	"github.com/swiftmeds/client/types"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := config.Load()
	zlog := logger.New()
	defer zlog.Sync()

	sess, err := session.NewFileSession(cfg.SessionFile)
	if err != nil {
		log.Fatalf("Session init error: %v", err)
	}
	if sess.Token() == "" {
		log.Fatal("No credentials in session file; log in with medctl first")
	}

	apiClient := api.New(cfg.BaseURL, sess, zlog)
	client := notify.NewClient(apiClient, sess, zlog)
	store := notify.NewStore()

	poller := notify.NewPoller(client, store, cfg.PollInterval, func(batch []types.Notification) {
		zlog.Debug("notification snapshot updated", zap.Int("count", len(batch)))
	}, zlog)

	go poller.Run(ctx)

	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "ok",
			"unread": store.Unread(),
		})
	}).Methods(http.MethodGet)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Println("Agent started on", cfg.ListenAddr)

	<-ctx.Done()
	log.Println("Shutting down agent...")

	poller.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Agent gracefully stopped")
}
