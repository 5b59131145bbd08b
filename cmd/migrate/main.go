package main

import (
	"context"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"prodmigrate/internal/catalog"
	"prodmigrate/internal/config"
	"prodmigrate/internal/migration"
	"prodmigrate/internal/model"
	"prodmigrate/internal/observability"
	"prodmigrate/internal/sanity"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "product-migrate").Logger()
	log.Logger = logger

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	metrics := observability.NewMetrics()
	if cfg.MetricsPort != "" {
		metrics.Start(cfg.MetricsPort, logger)
		log.Info().Str("port", cfg.MetricsPort).Msg("serving metrics")
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	store := sanity.NewClient(sanity.Config{
		ProjectID:  cfg.Sanity.ProjectID,
		Dataset:    cfg.Sanity.Dataset,
		Token:      cfg.Sanity.Token,
		APIVersion: cfg.Sanity.APIVersion,
		UseCDN:     cfg.Sanity.UseCDN,
	}, httpClient)

	driver, err := migration.NewDriver(migration.Dependencies{
		Source:  catalog.NewClient(cfg.SourceURL, httpClient),
		Store:   store,
		Metrics: metrics,
		Logger:  logger,
		Workers: cfg.WorkerCount,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build migration driver")
	}

	ctx := context.Background()

	log.Info().
		Str("source", cfg.SourceURL).
		Str("project", cfg.Sanity.ProjectID).
		Str("dataset", cfg.Sanity.Dataset).
		Msg("starting product migration")

	_, runErr := driver.Run(ctx)

	if cfg.MetricsPushURL != "" {
		if err := metrics.Push(cfg.MetricsPushURL); err != nil {
			log.Error().Err(err).Msg("failed to push metrics")
		}
	}

	if runErr != nil {
		os.Exit(1)
	}

	count, err := store.CountDocuments(ctx, model.ProductType)
	if err != nil {
		log.Warn().Err(err).Msg("could not count product documents")
		return
	}
	log.Info().Int("products", count).Bool("cdn", cfg.Sanity.UseCDN).Msg("dataset product count")
}
