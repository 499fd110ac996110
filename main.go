// Package main wires together the listing-scout service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"

	"github.com/musicweb/listing-scout/internal/api"
	"github.com/musicweb/listing-scout/internal/archive"
	"github.com/musicweb/listing-scout/internal/config"
	"github.com/musicweb/listing-scout/internal/ingest"
	"github.com/musicweb/listing-scout/internal/listing"
	"github.com/musicweb/listing-scout/internal/logging"
	"github.com/musicweb/listing-scout/internal/mailer"
	"github.com/musicweb/listing-scout/internal/metrics"
	"github.com/musicweb/listing-scout/internal/publisher"
	"github.com/musicweb/listing-scout/internal/scout"
	"github.com/musicweb/listing-scout/internal/store"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development, "listing-scout")
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()

	listingStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("store init failed", zap.Error(err))
	}
	defer listingStore.Close()

	generic, cleanup := buildGenericExtractor(cfg, logger)
	defer cleanup()

	reverb := scout.NewReverbExtractor(scout.ReverbConfig{
		BaseURL:   cfg.Scout.ReverbAPIURL,
		UserAgent: cfg.Scout.UserAgent,
		Timeout:   cfg.ScoutTimeout(),
	})

	archiver, err := buildArchiver(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("archive init failed", zap.Error(err))
	}

	var events listing.Publisher
	if cfg.PubSub.Enabled {
		ps, err := publisher.NewPubSub(ctx, cfg.PubSub.ProjectID, cfg.PubSub.TopicName)
		if err != nil {
			logger.Fatal("pubsub init failed", zap.Error(err))
		}
		defer func() {
			if closeErr := ps.Close(); closeErr != nil {
				logger.Warn("pubsub close failed", zap.Error(closeErr))
			}
		}()
		events = ps
	}

	mail := buildMailer(cfg, logger)

	svc := ingest.New(
		listingStore,
		mail,
		reverb,
		generic,
		archiver,
		events,
		ingest.Config{AdminEmail: cfg.Mail.AdminEmail},
		logger.Named("ingest"),
	)

	apiServer := api.NewServer(svc, listingStore, cfg, logger.Named("api"))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           apiServer.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server started", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
}

// buildStore selects Postgres when a DSN is configured, otherwise an
// in-memory store for local development.
func buildStore(ctx context.Context, cfg config.Config, logger *zap.Logger) (listing.Store, error) {
	if cfg.DB.DSN == "" {
		logger.Warn("db.dsn is not set; using in-memory store, listings will not survive restarts")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(ctx, store.PostgresConfig{
		DSN:      cfg.DB.DSN,
		Table:    cfg.DB.Table,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		return nil, err
	}
	if err := pg.EnsureSchema(ctx); err != nil {
		pg.Close()
		return nil, err
	}
	return pg, nil
}

// buildGenericExtractor wires the configured generic provider. The returned
// cleanup releases the headless renderer when one was started.
func buildGenericExtractor(cfg config.Config, logger *zap.Logger) (listing.Extractor, func()) {
	if cfg.Scout.Provider == "direct" {
		var renderer scout.PageRenderer
		cleanup := func() {}
		if cfg.Headless.Enabled {
			hr, err := scout.NewHeadlessRenderer(scout.HeadlessConfig{
				MaxParallel:       cfg.Headless.MaxParallel,
				UserAgent:         cfg.Scout.UserAgent,
				NavigationTimeout: time.Duration(cfg.Headless.NavTimeoutSec) * time.Second,
			})
			if err != nil {
				logger.Warn("headless renderer init failed; prerender hosts will be probed directly", zap.Error(err))
			} else {
				renderer = hr
				cleanup = hr.Close
			}
		}
		return scout.NewDirectExtractor(scout.DirectConfig{
			UserAgent:      cfg.Scout.UserAgent,
			Timeout:        cfg.ScoutTimeout(),
			PrerenderHosts: cfg.Scout.PrerenderHosts,
		}, renderer), cleanup
	}
	return scout.NewMicrolinkExtractor(scout.MicrolinkConfig{
		BaseURL:        cfg.Scout.MicrolinkURL,
		UserAgent:      cfg.Scout.UserAgent,
		Timeout:        cfg.ScoutTimeout(),
		PrerenderHosts: cfg.Scout.PrerenderHosts,
	}), func() {}
}

// buildMailer selects the notification channel. The noop provider accepts
// every message, so submissions are never rejected for missing mail
// credentials.
func buildMailer(cfg config.Config, logger *zap.Logger) listing.Mailer {
	switch cfg.Mail.Provider {
	case "noop":
		logger.Warn("mail.provider is noop; notification email will be discarded")
		return mailer.NoOp{}
	default:
		m := mailer.NewResend(mailer.ResendConfig{
			APIKey:   cfg.Mail.APIKey,
			Endpoint: cfg.Mail.Endpoint,
			From:     cfg.Mail.From,
		})
		if !m.Configured() {
			logger.Warn("mail.api_key is not set; submissions will be rejected until it is configured")
		}
		return m
	}
}

// buildArchiver selects the raw-payload blob store.
func buildArchiver(ctx context.Context, cfg config.Config, logger *zap.Logger) (listing.Archiver, error) {
	switch cfg.Archive.Provider {
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		logger.Info("archiving raw scout payloads to GCS", zap.String("bucket", cfg.Archive.GCSBucket))
		return archive.NewGCS(client, archive.GCSConfig{
			Bucket: cfg.Archive.GCSBucket,
			Prefix: cfg.Archive.Prefix,
		})
	default:
		return archive.NoOp{}, nil
	}
}
