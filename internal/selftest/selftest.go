// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package selftest seeds a fully populated sample case study, runs the
// export pipeline against it, and asserts the output contract end to end.
// It exercises every store, the slug generator, the hero invariant, and the
// notes redaction flag against a live database, then removes what it made.
package selftest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"casebook/internal/export"
	"casebook/internal/models"
	"casebook/internal/storage"
	"casebook/internal/store"
)

// Stores bundles the store dependencies the self-test drives.
type Stores struct {
	Cases      *store.CaseStudyStore
	Tags       *store.TagStore
	Metrics    *store.MetricStore
	Spend      *store.ChannelSpendStore
	Assets     *store.AssetStore
	Orgs       *store.OrganizationStore
	Sectors    *store.SectorStore
	Media      *store.MediaStore
	Renditions *store.RenditionStore
}

// Runner seeds, exports, and verifies. storageClient may be nil; placeholder
// files are then recorded in metadata only.
type Runner struct {
	stores        Stores
	storageClient *storage.Client
	mediaBucket   string
	docsBucket    string
	fileURL       func(bucket, key string) string
}

// New creates a self-test runner.
func New(stores Stores, storageClient *storage.Client, mediaBucket, docsBucket string, fileURL func(bucket, key string) string) *Runner {
	return &Runner{
		stores:        stores,
		storageClient: storageClient,
		mediaBucket:   mediaBucket,
		docsBucket:    docsBucket,
		fileURL:       fileURL,
	}
}

// Run executes the full cycle: seed a sample case with every child type,
// export without flags, assert the privacy defaults, re-export with notes,
// and clean up. Any failed assertion is returned as a descriptive error.
// When outputPath is empty the export goes to a temp file that is removed
// afterwards; otherwise the final (notes-included) export is left at that
// path for inspection.
func (r *Runner) Run(ctx context.Context, outputPath string) error {
	token := uuid.NewString()[:8]

	created, mediaIDs, err := r.seed(ctx, token)
	if created != nil {
		defer r.cleanup(created.ID, mediaIDs)
	}
	if err != nil {
		return fmt.Errorf("self-test seed: %w", err)
	}
	slog.Info("self-test case seeded", "slug", created.Slug)

	exporter := export.New(
		r.stores.Cases, r.stores.Tags, r.stores.Metrics, r.stores.Spend,
		r.stores.Assets, r.stores.Media,
		export.NewStoreRenditions(r.stores.Renditions, r.fileURL, r.mediaBucket),
		r.fileURL,
	)

	outPath := outputPath
	if outPath == "" {
		outPath = filepath.Join(os.TempDir(), fmt.Sprintf("casebook-selftest-%s.json", token))
		defer os.Remove(outPath)
	}

	if _, err := exporter.Run(export.Options{}, outPath); err != nil {
		return fmt.Errorf("self-test export: %w", err)
	}
	if err := r.verifyDefaultExport(outPath, created.Slug); err != nil {
		return err
	}

	if _, err := exporter.Run(export.Options{IncludeNotes: true}, outPath); err != nil {
		return fmt.Errorf("self-test export with notes: %w", err)
	}
	if err := verifyNotesPresent(outPath, created.Slug); err != nil {
		return err
	}

	slog.Info("self-test passed", "slug", created.Slug)
	return nil
}

// seed writes the sample aggregate. The title carries a random token so the
// slug never collides with real data, and repeated runs stay independent.
func (r *Runner) seed(ctx context.Context, token string) (*models.CaseStudy, []uuid.UUID, error) {
	org, err := r.stores.Orgs.GetOrCreate("Lorem Org")
	if err != nil {
		return nil, nil, err
	}
	sector, err := r.stores.Sectors.GetOrCreate("Consumer Tech")
	if err != nil {
		return nil, nil, err
	}

	cs := &models.CaseStudy{
		Title:           fmt.Sprintf("Lorem Ipsum Campaign %s", token),
		OrganizationID:  &org.ID,
		SectorID:        &sector.ID,
		BrandOrCampaign: "Lorem Launch",
		DateStart:       "January 2025",
		DateEnd:         "March 2025",
		Location:        "London",
		Confidentiality: models.ConfidentialityPublic,
		OneLiner:        "Placeholder campaign used by the self-test.",
		Objective:       "Verify that every write path works.",
		Strategy:        "Seed, export, assert.",
		MyContribution:  "Everything.",
		ResultsSummary:  "All assertions green.",
		SpendCurrency:   models.CurrencyGBP,
		SpendAmountMin:  decimal.NullDecimal{Decimal: decimal.RequireFromString("12000.00"), Valid: true},
		SpendAmountMax:  decimal.NullDecimal{Decimal: decimal.RequireFromString("18000.00"), Valid: true},
		ProofLinks:      "https://example.com/proof-1\nhttps://example.com/proof-2",
		Notes:           "Internal-only commentary for redaction checks.",
	}
	created, err := r.stores.Cases.Create(cs)
	if err != nil {
		return nil, nil, fmt.Errorf("create case: %w", err)
	}

	var mediaIDs []uuid.UUID
	fail := func(err error) (*models.CaseStudy, []uuid.UUID, error) {
		return created, mediaIDs, err
	}

	if err := r.stores.Tags.Set(created.ID, []string{"lorem", "ipsum", "casebook"}); err != nil {
		return fail(fmt.Errorf("set tags: %w", err))
	}

	if err := r.stores.Metrics.Replace(created.ID, []models.Metric{
		{MetricName: "ROAS", Value: "3.2", Timeframe: "Q1 2025", Source: "Ads Manager"},
		{MetricName: "Reach", Value: "4.5m users", Timeframe: "Q1 2025", Source: "Platform analytics"},
	}); err != nil {
		return fail(fmt.Errorf("replace metrics: %w", err))
	}

	if err := r.stores.Spend.Replace(created.ID, []models.ChannelSpend{
		{Channel: models.ChannelMeta, SpendCurrency: models.CurrencyGBP,
			SpendAmount: decimal.NullDecimal{Decimal: decimal.RequireFromString("9000.00"), Valid: true},
			Dates:       "Jan-Mar 2025"},
		{Channel: models.ChannelGoogle, SpendCurrency: models.CurrencyGBP,
			SpendAmount: decimal.NullDecimal{Decimal: decimal.RequireFromString("6000.00"), Valid: true},
			Dates:       "Feb-Mar 2025"},
	}); err != nil {
		return fail(fmt.Errorf("replace channel spend: %w", err))
	}

	// Three placeholder images, first one the hero, plus one video document.
	for i := 0; i < 3; i++ {
		media, err := r.placeholderImage(ctx, token, i)
		if err != nil {
			return fail(fmt.Errorf("placeholder image %d: %w", i, err))
		}
		mediaIDs = append(mediaIDs, media.ID)

		if err := r.stores.Renditions.CreateBatch([]models.Rendition{
			{MediaID: media.ID, Spec: models.RenditionFill1600x900,
				S3Key: fmt.Sprintf("renditions/%s-%d-fill.png", token, i), Width: 1600, Height: 900},
			{MediaID: media.ID, Spec: models.RenditionMax1200x1200,
				S3Key: fmt.Sprintf("renditions/%s-%d-max.png", token, i), Width: 1200, Height: 1200},
		}); err != nil {
			return fail(fmt.Errorf("renditions for image %d: %w", i, err))
		}

		if _, err := r.stores.Assets.Create(&models.Asset{
			CaseStudyID: created.ID,
			Position:    i,
			AssetType:   models.AssetTypeAdScreenshot,
			ImageID:     &media.ID,
			Caption:     fmt.Sprintf("Placeholder screenshot %d", i+1),
			Platform:    "Meta",
			IsHero:      i == 0,
			AltText:     "Solid colour placeholder",
		}); err != nil {
			return fail(fmt.Errorf("create image asset %d: %w", i, err))
		}
	}

	video, err := r.stores.Media.Create(&models.Media{
		Filename:     fmt.Sprintf("selftest-%s.mp4", token),
		OriginalName: "selftest.mp4",
		ContentType:  "video/mp4",
		SizeBytes:    1024,
		Bucket:       r.docsBucket,
		S3Key:        fmt.Sprintf("selftest/%s.mp4", token),
		Title:        "Self-test video",
	})
	if err != nil {
		return fail(fmt.Errorf("create video media: %w", err))
	}
	mediaIDs = append(mediaIDs, video.ID)

	if _, err := r.stores.Assets.Create(&models.Asset{
		CaseStudyID: created.ID,
		Position:    3,
		AssetType:   models.AssetTypeVideo,
		VideoID:     &video.ID,
		Caption:     "Placeholder cutdown",
	}); err != nil {
		return fail(fmt.Errorf("create video asset: %w", err))
	}

	// A second hero must be rejected; anything else is a broken invariant.
	if _, err := r.stores.Assets.Create(&models.Asset{
		CaseStudyID: created.ID,
		Position:    4,
		AssetType:   models.AssetTypeCreative,
		ImageID:     &mediaIDs[0],
		IsHero:      true,
	}); err == nil {
		return fail(fmt.Errorf("second hero asset was accepted; expected a validation error"))
	} else if models.AsValidationError(err) == nil {
		return fail(fmt.Errorf("second hero asset failed with the wrong error: %w", err))
	}

	return created, mediaIDs, nil
}

// placeholderImage encodes a small solid-colour PNG, uploads it when storage
// is configured, and records the media row.
func (r *Runner) placeholderImage(ctx context.Context, token string, i int) (*models.Media, error) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	fill := color.RGBA{R: uint8(60 * (i + 1)), G: 90, B: 160, A: 255}
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, fill)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	key := fmt.Sprintf("selftest/%s-%d.png", token, i)
	if r.storageClient != nil {
		if err := r.storageClient.Upload(ctx, r.mediaBucket, key, "image/png",
			bytes.NewReader(buf.Bytes()), int64(buf.Len())); err != nil {
			return nil, err
		}
	}

	return r.stores.Media.Create(&models.Media{
		Filename:     fmt.Sprintf("selftest-%s-%d.png", token, i),
		OriginalName: "placeholder.png",
		ContentType:  "image/png",
		SizeBytes:    int64(buf.Len()),
		Bucket:       r.mediaBucket,
		S3Key:        key,
		Title:        fmt.Sprintf("Self-test placeholder %d", i+1),
	})
}

// verifyDefaultExport checks the envelope and the seeded case in a default
// (privacy-filtered) export document.
func (r *Runner) verifyDefaultExport(path, slug string) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}

	for _, key := range []string{"generated_at", "count", "cases"} {
		if _, ok := doc[key]; !ok {
			return fmt.Errorf("export envelope is missing %q", key)
		}
	}

	exported, err := findCase(doc, slug)
	if err != nil {
		return err
	}

	for _, key := range []string{
		"title", "slug", "objective", "strategy", "my_contribution",
		"tags", "metrics", "channel_spend", "assets",
	} {
		if _, ok := exported[key]; !ok {
			return fmt.Errorf("exported case %s is missing %q", slug, key)
		}
	}
	if _, ok := exported["notes"]; ok {
		return fmt.Errorf("exported case %s contains notes without --include-notes", slug)
	}

	if got := childLen(exported, "tags"); got != 3 {
		return fmt.Errorf("exported case %s has %d tags, want 3", slug, got)
	}
	if got := childLen(exported, "metrics"); got != 2 {
		return fmt.Errorf("exported case %s has %d metrics, want 2", slug, got)
	}
	if got := childLen(exported, "channel_spend"); got != 2 {
		return fmt.Errorf("exported case %s has %d channel spend rows, want 2", slug, got)
	}
	if got := childLen(exported, "assets"); got != 4 {
		return fmt.Errorf("exported case %s has %d assets, want 4", slug, got)
	}

	if got, want := exported["spend_amount_min"], "12000.00"; got != want {
		return fmt.Errorf("exported case %s spend_amount_min = %v, want %s", slug, got, want)
	}
	if got, want := exported["spend_amount_max"], "18000.00"; got != want {
		return fmt.Errorf("exported case %s spend_amount_max = %v, want %s", slug, got, want)
	}

	heroes := 0
	assets, _ := exported["assets"].([]any)
	for _, raw := range assets {
		asset, _ := raw.(map[string]any)
		if hero, _ := asset["is_hero"].(bool); hero {
			heroes++
		}
	}
	if heroes != 1 {
		return fmt.Errorf("exported case %s has %d hero assets, want exactly 1", slug, heroes)
	}

	return nil
}

// verifyNotesPresent checks that --include-notes puts the notes field back.
func verifyNotesPresent(path, slug string) error {
	doc, err := readDocument(path)
	if err != nil {
		return err
	}
	exported, err := findCase(doc, slug)
	if err != nil {
		return err
	}
	notes, ok := exported["notes"].(string)
	if !ok || notes == "" {
		return fmt.Errorf("exported case %s is missing notes despite --include-notes", slug)
	}
	return nil
}

func readDocument(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export file: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse export file: %w", err)
	}
	return doc, nil
}

func findCase(doc map[string]any, slug string) (map[string]any, error) {
	cases, _ := doc["cases"].([]any)
	for _, raw := range cases {
		c, _ := raw.(map[string]any)
		if c["slug"] == slug {
			return c, nil
		}
	}
	return nil, fmt.Errorf("export does not contain case %s", slug)
}

func childLen(exported map[string]any, key string) int {
	list, _ := exported[key].([]any)
	return len(list)
}

// cleanup removes the seeded case and its media rows. Best effort; failures
// are logged, not returned, so they never mask the real test result.
func (r *Runner) cleanup(caseID uuid.UUID, mediaIDs []uuid.UUID) {
	if err := r.stores.Cases.Delete(caseID); err != nil {
		slog.Warn("self-test cleanup: delete case failed", "error", err)
	}
	for _, id := range mediaIDs {
		if _, err := r.stores.Media.Delete(id); err != nil {
			slog.Warn("self-test cleanup: delete media failed", "error", err, "media_id", id)
		}
	}
}
