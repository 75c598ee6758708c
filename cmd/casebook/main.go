// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the casebook binary. It exposes three
// subcommands: "serve" runs the HTTP server, "export" writes the JSON
// document, and "self-test" seeds and verifies a sample case end to end.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casebook/internal/cache"
	"casebook/internal/config"
	"casebook/internal/database"
	"casebook/internal/export"
	"casebook/internal/handlers"
	"casebook/internal/render"
	"casebook/internal/router"
	"casebook/internal/search"
	"casebook/internal/selftest"
	"casebook/internal/storage"
	"casebook/internal/store"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	command := "serve"
	args := os.Args[1:]
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	switch command {
	case "serve":
		runServe()
	case "export":
		runExport(args)
	case "self-test":
		runSelfTest(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\nusage: casebook [serve|export|self-test]\n", command)
		os.Exit(2)
	}
}

// setup loads configuration, connects to PostgreSQL, and applies migrations.
// Shared by all subcommands.
func setup() (*config.Config, *sql.DB) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	return cfg, db
}

// newStorage connects the optional S3 client. A nil client is fine: URLs are
// then built from bucket and key alone.
func newStorage(cfg *config.Config) *storage.Client {
	client, err := storage.New(
		cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey,
		cfg.S3BucketMedia, cfg.S3BucketDocuments, cfg.S3PublicURL,
	)
	if err != nil {
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	}
	if client == nil {
		slog.Warn("s3 storage not configured, media uploads disabled")
	} else {
		slog.Info("s3 storage connected",
			"endpoint", cfg.S3Endpoint,
			"media_bucket", cfg.S3BucketMedia,
			"documents_bucket", cfg.S3BucketDocuments,
		)
	}
	return client
}

// fileURLBuilder returns the object URL builder for the current config.
func fileURLBuilder(cfg *config.Config) func(bucket, key string) string {
	return func(bucket, key string) string {
		return storage.FileURL(cfg.S3Endpoint, cfg.S3PublicURL, bucket, key)
	}
}

func runServe() {
	cfg, db := setup()
	defer db.Close()

	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	// Seed reference data in development (no-op when already present).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	renderer, err := render.New()
	if err != nil {
		slog.Error("failed to initialize template renderer", "error", err)
		os.Exit(1)
	}

	caseStore := store.NewCaseStudyStore(db)
	tagStore := store.NewTagStore(db)
	metricStore := store.NewMetricStore(db)
	spendStore := store.NewChannelSpendStore(db)
	assetStore := store.NewAssetStore(db)
	orgStore := store.NewOrganizationStore(db)
	sectorStore := store.NewSectorStore(db)
	mediaStore := store.NewMediaStore(db)

	storageClient := newStorage(cfg)
	pageCache := cache.NewPageCache(valkeyClient, cache.DefaultPageTTL)

	// No external full-text service wired yet; the hook stays explicit so
	// one can be dropped in without touching the handlers.
	var indexer search.Indexer = search.Noop{}

	adminHandlers := handlers.NewAdmin(renderer, caseStore, tagStore, metricStore,
		spendStore, assetStore, orgStore, sectorStore, mediaStore, pageCache, indexer)
	publicHandlers := handlers.NewPublic(renderer, caseStore, tagStore, metricStore,
		spendStore, assetStore, mediaStore, storageClient, pageCache)

	r := router.New(adminHandlers, publicHandlers)

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	output := fs.String("output", "", "path of the JSON file to write (required)")
	includeNotes := fs.Bool("include-notes", false, "include the internal notes field on every record")
	includePrivate := fs.Bool("include-private", false, "include records marked confidentiality=private")
	fs.Parse(args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "export: --output is required")
		fs.Usage()
		os.Exit(2)
	}

	cfg, db := setup()
	defer db.Close()

	exporter := export.New(
		store.NewCaseStudyStore(db),
		store.NewTagStore(db),
		store.NewMetricStore(db),
		store.NewChannelSpendStore(db),
		store.NewAssetStore(db),
		store.NewMediaStore(db),
		export.NewStoreRenditions(store.NewRenditionStore(db), fileURLBuilder(cfg), cfg.S3BucketMedia),
		fileURLBuilder(cfg),
	)

	count, err := exporter.Run(export.Options{
		IncludeNotes:   *includeNotes,
		IncludePrivate: *includePrivate,
	}, *output)
	if err != nil {
		slog.Error("export failed", "error", err)
		os.Exit(1)
	}

	slog.Info("export written", "path", *output, "cases", count,
		"include_notes", *includeNotes, "include_private", *includePrivate)
}

func runSelfTest(args []string) {
	fs := flag.NewFlagSet("self-test", flag.ExitOnError)
	output := fs.String("output", "", "optional path to keep the verification export at")
	fs.Parse(args)

	cfg, db := setup()
	defer db.Close()

	runner := selftest.New(
		selftest.Stores{
			Cases:      store.NewCaseStudyStore(db),
			Tags:       store.NewTagStore(db),
			Metrics:    store.NewMetricStore(db),
			Spend:      store.NewChannelSpendStore(db),
			Assets:     store.NewAssetStore(db),
			Orgs:       store.NewOrganizationStore(db),
			Sectors:    store.NewSectorStore(db),
			Media:      store.NewMediaStore(db),
			Renditions: store.NewRenditionStore(db),
		},
		newStorage(cfg),
		cfg.S3BucketMedia,
		cfg.S3BucketDocuments,
		fileURLBuilder(cfg),
	)

	if err := runner.Run(context.Background(), *output); err != nil {
		slog.Error("self-test failed", "error", err)
		os.Exit(1)
	}

	slog.Info("self-test passed")
}
