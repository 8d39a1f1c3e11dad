package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/signature-relay/internal/api"
	"github.com/ignite/signature-relay/internal/config"
	"github.com/ignite/signature-relay/internal/pkg/logger"
	"github.com/ignite/signature-relay/internal/relay"
	"github.com/ignite/signature-relay/internal/repository/postgres"
	"github.com/ignite/signature-relay/internal/sender"
	"github.com/ignite/signature-relay/internal/service/assignment"
	"github.com/ignite/signature-relay/internal/service/injection"
	"github.com/ignite/signature-relay/internal/tracking"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.PIIRedactionEnabled())

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	if err := db.Ping(); err != nil {
		log.Fatalf("ping: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var dedup relay.Deduper
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		dedup = relay.NewRedisDedup(rdb, time.Duration(cfg.Relay.DedupTTLHours)*time.Hour)
	}

	forwarder, err := buildForwarder(cfg)
	if err != nil {
		log.Fatalf("forwarder: %v", err)
	}

	resolver := assignment.NewService(postgres.NewAssignmentRepo(db))
	tracker := tracking.NewService(postgres.NewTrackingRepo(db), cfg.Tracking.BaseURL)
	pipeline := relay.NewPipeline(resolver, tracker, forwarder, injection.NewTemplateService())

	relayH := relay.NewHandler(pipeline, postgres.NewRelayConfigRepo(db), dedup)
	trackingH := tracking.NewHandler(tracker)
	handlers := api.NewHandlers(tracker, db)

	if cfg.Tracking.SessionRetentionDays > 0 {
		retention := time.Duration(cfg.Tracking.SessionRetentionDays) * 24 * time.Hour
		tracker.StartSessionSweeper(ctx, 6*time.Hour, retention)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      api.SetupRoutes(handlers, relayH, trackingH),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("relay listening", "addr", srv.Addr, "provider", cfg.Relay.Provider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down relay")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

func buildForwarder(cfg *config.Config) (relay.Forwarder, error) {
	switch cfg.Relay.Provider {
	case "sendgrid":
		return sender.NewSendGridForwarder(cfg.SendGrid.APIKey, cfg.SendGrid.BaseURL), nil
	case "ses":
		return sender.NewSESForwarder(cfg.SES.AccessKey, cfg.SES.SecretKey, cfg.SES.Region)
	case "graph":
		return sender.NewGraphForwarder(cfg.Graph.TenantID, cfg.Graph.ClientID, cfg.Graph.ClientSecret), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Relay.Provider)
	}
}
