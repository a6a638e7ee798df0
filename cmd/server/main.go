package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nickolaschua/beyondbinary-sub001/internal/config"
	"github.com/nickolaschua/beyondbinary-sub001/internal/database"
	"github.com/nickolaschua/beyondbinary-sub001/internal/services"
	"github.com/nickolaschua/beyondbinary-sub001/internal/session"
)

var httpServer *http.Server

func main() {
	cfg := config.LoadConfig()

	log.Println("Starting sign detection server...")
	log.Printf("HTTP port: %s", cfg.HTTPPort)
	log.Printf("Inference sidecar: %s", cfg.InferenceAddr)
	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Window: %d frames, threshold %.2f, stability %d",
		cfg.SequenceLength, cfg.ConfidenceThreshold, cfg.StabilityWindow)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	metrics := services.GetMetrics()

	inference, err := services.NewInferenceClient(cfg.InferenceAddr, cfg.MaxInflight)
	if err != nil {
		log.Printf("Inference sidecar unavailable: %v", err)
		log.Println("Continuing without inference: new connections will be refused")
	}
	var gateway session.Gateway
	if inference != nil {
		defer inference.Close()
		gateway = inference
	}

	var store *database.Store
	if cfg.DatabaseDSN != "" {
		store, err = database.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Printf("Detection event store unavailable: %v", err)
			log.Println("Continuing without the event store")
			store = nil
		}
	}

	manager := session.NewManager(cfg, gateway, session.NewAPIKeyGate(cfg), metrics, store)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/sign-detection", manager.HandleWS)
	mux.HandleFunc("/health", handleHealth(cfg, inference, metrics, manager))
	mux.HandleFunc("/metrics", handleMetrics(metrics, manager))

	httpServer = &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on port %s", cfg.HTTPPort)
		log.Printf("WebSocket:  ws://localhost:%s/ws/sign-detection", cfg.HTTPPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	} else {
		log.Println("HTTP server gracefully stopped")
	}

	log.Println("Closing WebSocket connections...")
	manager.CloseAll()

	store.Close()

	log.Println("Goodbye!")
}

func handleHealth(cfg *config.Config, inference *services.InferenceClient, metrics *services.Metrics, manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": "Method not allowed",
			})
			return
		}

		modelLoaded := inference != nil && inference.HealthCheck()

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":           "ok",
			"model_loaded":     modelLoaded,
			"actions":          cfg.Actions,
			"sequence_length":  cfg.SequenceLength,
			"active_clients":   manager.ActiveSessions(),
			"avg_inference_ms": metrics.GetAvgInferenceMs(),
			"timestamp":        time.Now().Format(time.RFC3339),
		})
	}
}

func handleMetrics(metrics *services.Metrics, manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": "Method not allowed",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"frames_processed": metrics.GetFramesProcessed(),
			"frames_skipped":   metrics.GetFramesSkipped(),
			"frames_dropped":   metrics.GetFramesDropped(),
			"predictions":      metrics.GetPredictions(),
			"detections":       metrics.GetDetections(),
			"total_errors":     metrics.GetTotalErrors(),
			"active_clients":   manager.ActiveSessions(),
			"avg_inference_ms": metrics.GetAvgInferenceMs(),
			"timestamp":        time.Now().Format(time.RFC3339),
		})
	}
}
