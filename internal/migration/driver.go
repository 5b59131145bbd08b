// Package migration copies product records from the catalog API into the
// content store, one independent task per record.
package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"prodmigrate/internal/catalog"
	"prodmigrate/internal/observability"
	"prodmigrate/internal/sanity"
)

const DefaultWorkers = 8

var (
	ErrSourceFetch       = errors.New("product list fetch failed")
	ErrInvalidPayload    = errors.New("invalid product data, expected an array")
	ErrMissingDependency = errors.New("missing migration dependency")
)

type ProductSource interface {
	FetchProducts(ctx context.Context) ([]json.RawMessage, error)
	FetchImage(ctx context.Context, url string) (catalog.Image, error)
}

type ContentStore interface {
	UploadImage(ctx context.Context, upload sanity.ImageUpload) (sanity.Asset, error)
	CreateDocument(ctx context.Context, doc any) (sanity.CreatedDocument, error)
}

type Dependencies struct {
	Source  ProductSource
	Store   ContentStore
	Metrics *observability.Metrics
	Logger  zerolog.Logger
	Workers int
}

type Driver struct {
	source  ProductSource
	store   ContentStore
	metrics *observability.Metrics
	logger  zerolog.Logger
	workers int
}

func NewDriver(deps Dependencies) (*Driver, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("%w: product source", ErrMissingDependency)
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("%w: content store", ErrMissingDependency)
	}

	workers := deps.Workers
	if workers < 1 {
		workers = DefaultWorkers
	}

	return &Driver{
		source:  deps.Source,
		store:   deps.Store,
		metrics: deps.Metrics,
		logger:  deps.Logger.With().Str("component", "migration").Logger(),
		workers: workers,
	}, nil
}

// Run fetches the product list and migrates every record. Only a failed list
// fetch fails the run; per-record problems end up in the summary.
func (d *Driver) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	logger := d.logger.With().Str("run_id", uuid.NewString()).Logger()

	logger.Info().Msg("fetching products")
	items, err := d.source.FetchProducts(ctx)
	if err != nil {
		if errors.Is(err, catalog.ErrNotArray) {
			err = fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		} else {
			err = fmt.Errorf("%w: %w", ErrSourceFetch, err)
		}
		logger.Error().Err(err).Msg("product migration aborted")
		return Summary{}, err
	}

	logger.Info().Int("count", len(items)).Int("workers", d.workers).Msg("fetched products, starting migration")

	outcomes := d.runWorkers(ctx, logger, items)
	summary := summarize(outcomes, time.Since(start))
	d.metrics.ObserveRun(summary.Duration)

	logger.Info().
		Int("total", summary.Total).
		Int("migrated", summary.Migrated).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("product migration completed")

	return summary, nil
}
