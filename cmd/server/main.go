// Command server runs the evidence pack HTTP service. main wires config,
// backends, and the router; business logic lives in internal packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dossier/internal/evidence/access"
	evhandler "dossier/internal/evidence/handler"
	"dossier/internal/evidence/metrics"
	"dossier/internal/evidence/receipt"
	"dossier/internal/evidence/resolver"
	"dossier/internal/evidence/service"
	"dossier/internal/marketplace/store"
	"dossier/internal/platform/config"
	"dossier/internal/platform/httpserver"
	"dossier/internal/platform/logger"
	"dossier/internal/platform/postgres"
	platformredis "dossier/internal/platform/redis"
	httptransport "dossier/internal/transport/http"
	"dossier/pkg/platform/audit"
	auditsink "dossier/pkg/platform/audit/sink"
	auditmem "dossier/pkg/platform/audit/store/memory"
	auditpg "dossier/pkg/platform/audit/store/postgres"
)

func main() {
	cfg := config.FromEnv()
	log := logger.FromEnv()
	ctx := context.Background()

	checks := map[string]httptransport.HealthChecker{}

	primaryDB, err := postgres.Open(ctx, cfg.PrimaryDatabaseURL)
	if err != nil {
		log.Error("primary database unavailable", "error", err)
		os.Exit(1)
	}
	legacyDB, err := postgres.Open(ctx, cfg.LegacyDatabaseURL)
	if err != nil {
		log.Error("legacy database unavailable", "error", err)
		os.Exit(1)
	}

	sources := resolver.Sources{}
	if primaryDB != nil {
		primary := store.NewPrimary(primaryDB.DB)
		sources.Listings = append(sources.Listings, primary)
		sources.Users = append(sources.Users, primary)
		sources.Media = append(sources.Media, primary)
		sources.Reviews = append(sources.Reviews, primary)
		sources.Viewings = append(sources.Viewings, primary)
		sources.Events = append(sources.Events, primary)
		checks["postgres_primary"] = primaryDB
		defer primaryDB.Close()
	}
	if legacyDB != nil {
		legacy := store.NewLegacy(legacyDB.DB)
		sources.Listings = append(sources.Listings, legacy)
		sources.Users = append(sources.Users, legacy)
		sources.Media = append(sources.Media, legacy)
		sources.Events = append(sources.Events, legacy)
		checks["postgres_legacy"] = legacyDB
		defer legacyDB.Close()
	}
	if primaryDB == nil && legacyDB == nil {
		log.Warn("no database configured, serving from empty in-memory stores")
		mem := store.NewMemory()
		sources = resolver.Sources{
			Listings: []resolver.ListingSource{mem},
			Users:    []resolver.UserSource{mem},
			Media:    []resolver.MediaSource{mem},
			Reviews:  []resolver.ReviewSource{mem},
			Viewings: []resolver.ViewingSource{mem},
			Events:   []resolver.EventSource{mem},
		}
	}

	var sinks []audit.Store
	if primaryDB != nil {
		sinks = append(sinks, auditpg.New(primaryDB.DB))
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafka, err := auditsink.NewKafka(ctx, cfg.KafkaBrokers, cfg.KafkaAuditTopic, log)
		if err != nil {
			log.Error("kafka audit sink unavailable", "error", err)
			os.Exit(1)
		}
		defer kafka.Close()
		sinks = append(sinks, kafka)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, auditmem.New())
	}
	publisher := audit.NewPublisher(log, sinks...)
	defer publisher.Close()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	var receipts receipt.Store = receipt.NewMemory()
	if redisClient != nil {
		receipts = receipt.NewRedis(redisClient.Client, cfg.ReceiptTTL)
		checks["redis"] = redisClient
		defer redisClient.Close()
	}

	m := metrics.New()
	res := resolver.New(sources)
	svc := service.New(res, publisher,
		service.WithLogger(log),
		service.WithMetrics(m),
		service.WithReceipts(receipts),
	)
	gate := access.New(res)
	handler := evhandler.New(svc, gate, publisher, cfg.OperatorTokenHash, log, m,
		evhandler.WithReceipts(receipts))

	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(httptransport.Deps{
		Evidence:   handler,
		SigningKey: []byte(cfg.JWTSigningKey),
		Logger:     log,
		Checks:     checks,
	}))

	log.Info("starting evidence service", "addr", cfg.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}
