package main

import (
	"FlowTagger/internal/api"
	"FlowTagger/internal/config"
	"FlowTagger/internal/query"
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to the YAML config file.")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Use the API's own ClickHouse settings, or the first enabled ClickHouse writer
	chCfg := cfg.API.ClickHouse
	if chCfg.Host == "" {
		for _, writerDef := range cfg.Writers {
			if writerDef.Enabled && writerDef.Type == "clickhouse" {
				chCfg = writerDef.ClickHouse
				break
			}
		}
	}
	if chCfg.Host == "" {
		log.Fatalf("No ClickHouse configured for the API. API server cannot start.")
	}

	querier, err := query.NewClickHouseQuerier(chCfg)
	if err != nil {
		log.Fatalf("Failed to create querier: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	server := &http.Server{
		Addr:    cfg.API.ListenAddr,
		Handler: api.NewRouter(querier, reg, reg),
	}

	go func() {
		log.Printf("API server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v", server.Addr, err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("API server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("API server exited.")
}
