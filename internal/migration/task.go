package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"prodmigrate/internal/model"
	"prodmigrate/internal/sanity"
)

// migrateSafely turns a panic inside a task into a failed outcome.
func (d *Driver) migrateSafely(ctx context.Context, logger zerolog.Logger, index int, raw json.RawMessage) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Index: index, Kind: OutcomeFailed, Err: fmt.Errorf("panic: %v", r)}
			logger.Error().Int("index", index).Interface("panic", r).Msg("product task panicked")
		}
		d.metrics.RecordOutcome(out.Kind.String())
	}()
	return d.migrate(ctx, logger, index, raw)
}

func (d *Driver) migrate(ctx context.Context, logger zerolog.Logger, index int, raw json.RawMessage) Outcome {
	logger = logger.With().Int("index", index).Logger()

	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		logger.Warn().Msg("skipping empty product record")
		return Outcome{Index: index, Kind: OutcomeSkipped, Reason: "record is empty"}
	}

	var p model.SourceProduct
	if err := json.Unmarshal(raw, &p); err != nil {
		logger.Warn().Err(err).RawJSON("record", raw).Msg("skipping undecodable product record")
		return Outcome{Index: index, Kind: OutcomeSkipped, Reason: "record could not be decoded", Err: err}
	}

	out := Outcome{Index: index, Name: p.Name, ImageURL: p.ImagePath}

	if missing := p.MissingFields(); len(missing) > 0 {
		logger.Warn().Strs("missing", missing).RawJSON("record", raw).Msg("skipping product due to missing required fields")
		out.Kind = OutcomeSkipped
		out.Reason = "missing required fields"
		return out
	}

	price, err := p.Price.Float64()
	if err != nil {
		logger.Warn().Err(err).Str("product", p.Name).RawJSON("price", mustRaw(p.Price)).Msg("skipping product with unparsable price")
		out.Kind = OutcomeSkipped
		out.Reason = "unparsable price"
		out.Err = err
		return out
	}

	logger = logger.With().Str("product", p.Name).Logger()

	logger.Info().Str("image_url", p.ImagePath).Msg("uploading image")
	img, err := d.source.FetchImage(ctx, p.ImagePath)
	if err != nil {
		return d.fail(logger, out, fmt.Errorf("fetch image %s: %w", p.ImagePath, err), "failed to fetch image")
	}

	asset, err := d.store.UploadImage(ctx, sanity.ImageUpload{
		Data:        img.Data,
		Filename:    filenameHint(p.ImagePath),
		ContentType: img.ContentType,
	})
	if err != nil {
		return d.fail(logger, out, fmt.Errorf("upload image %s: %w", p.ImagePath, err), "failed to upload image")
	}
	d.metrics.AssetUploaded()
	out.AssetID = asset.ID
	logger.Info().Str("asset_id", asset.ID).Msg("image uploaded")

	created, err := d.store.CreateDocument(ctx, buildDocument(&p, price, asset.ID))
	if err != nil {
		return d.fail(logger, out, fmt.Errorf("create product %q: %w", p.Name, err), "failed to create product document")
	}

	out.Kind = OutcomeMigrated
	out.DocumentID = created.ID
	logger.Info().Str("document_id", created.ID).Msg("product uploaded")
	return out
}

func (d *Driver) fail(logger zerolog.Logger, out Outcome, err error, msg string) Outcome {
	logger.Error().Err(err).Str("image_url", out.ImageURL).Msg(msg)
	out.Kind = OutcomeFailed
	out.Err = err
	return out
}

func mustRaw(v json.Marshaler) []byte {
	b, err := v.MarshalJSON()
	if err != nil {
		return []byte("null")
	}
	return b
}
