// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package export walks the case study collection into a privacy-filtered
// JSON document. Private records and the internal notes field are excluded
// unless explicitly requested; decimals serialize as strings to avoid
// precision drift; image assets expand into named rendition URLs with
// per-rendition failures degrading to null.
package export

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"casebook/internal/models"
	"casebook/internal/store"
)

// Options controls record filtering and field redaction. The two flags are
// independent: IncludePrivate re-includes confidentiality=private records,
// IncludeNotes re-includes the notes field on every exported record.
type Options struct {
	IncludeNotes   bool
	IncludePrivate bool
}

// RenditionResolver resolves the URL of one named size variant of an image.
// A resolver error affects only that rendition entry, never the export.
type RenditionResolver interface {
	Resolve(mediaID uuid.UUID, spec string) (string, error)
}

// Document is the export envelope.
type Document struct {
	GeneratedAt string `json:"generated_at"`
	Count       int    `json:"count"`
	Cases       []Case `json:"cases"`
}

// Case is one exported case study: flat own fields plus nested child arrays.
type Case struct {
	Title                   string   `json:"title"`
	Slug                    string   `json:"slug"`
	Organization            *string  `json:"organization"`
	Sector                  *string  `json:"sector"`
	BrandOrCampaign         string   `json:"brand_or_campaign"`
	DateStart               string   `json:"date_start"`
	DateEnd                 string   `json:"date_end"`
	SortDate                string   `json:"sort_date"`
	Location                string   `json:"location"`
	Confidentiality         string   `json:"confidentiality"`
	OneLiner                string   `json:"one_liner"`
	Objective               string   `json:"objective"`
	Audience                string   `json:"audience"`
	Constraints             string   `json:"constraints"`
	Strategy                string   `json:"strategy"`
	CreativeDirection       string   `json:"creative_direction"`
	ProductionAndTooling    string   `json:"production_and_tooling"`
	DeliveryAndDistribution string   `json:"delivery_and_distribution"`
	MyContribution          string   `json:"my_contribution"`
	TeamAndPartners         string   `json:"team_and_partners"`
	ResultsSummary          string   `json:"results_summary"`
	WhatWorked              string   `json:"what_worked"`
	WhatIdDoDifferently     string   `json:"what_id_do_differently"`
	SpendCurrency           string   `json:"spend_currency"`
	SpendAmountMin          *string  `json:"spend_amount_min"`
	SpendAmountMax          *string  `json:"spend_amount_max"`
	SpendNotes              string   `json:"spend_notes"`
	ProofLinks              []string `json:"proof_links"`
	PressMentions           []string `json:"press_mentions"`
	Tags                    []string `json:"tags"`
	Metrics                 []Metric `json:"metrics"`
	ChannelSpend            []Spend  `json:"channel_spend"`
	Assets                  []Asset  `json:"assets"`
	Notes                   *string  `json:"notes,omitempty"`
}

// Metric is one exported metric line item.
type Metric struct {
	MetricName string `json:"metric_name"`
	Value      string `json:"value"`
	Timeframe  string `json:"timeframe"`
	Source     string `json:"source"`
	Notes      string `json:"notes"`
}

// Spend is one exported channel spend line item.
type Spend struct {
	Channel       string  `json:"channel"`
	SpendCurrency string  `json:"spend_currency"`
	SpendAmount   *string `json:"spend_amount"`
	Dates         string  `json:"dates"`
	Notes         string  `json:"notes"`
}

// ImageURLs holds the original plus named rendition URLs of an image asset.
// A rendition that could not be resolved is null, not an error.
type ImageURLs struct {
	Original     string  `json:"original"`
	Fill1600x900 *string `json:"fill_1600x900"`
	Max1200x1200 *string `json:"max_1200x1200"`
}

// Video holds the document-store data of a video asset. Fields are null for
// image assets.
type Video struct {
	Title    *string `json:"title"`
	URL      *string `json:"url"`
	Filename *string `json:"filename"`
}

// Asset is one exported asset line item.
type Asset struct {
	Type      string     `json:"type"`
	Caption   string     `json:"caption"`
	Platform  string     `json:"platform"`
	Format    string     `json:"format"`
	Date      string     `json:"date"`
	IsHero    bool       `json:"is_hero"`
	AltText   string     `json:"alt_text"`
	ImageURLs *ImageURLs `json:"image_urls"`
	Video     Video      `json:"video"`
}

// Exporter assembles export documents from the stores.
type Exporter struct {
	cases      *store.CaseStudyStore
	tags       *store.TagStore
	metrics    *store.MetricStore
	spend      *store.ChannelSpendStore
	assets     *store.AssetStore
	media      *store.MediaStore
	renditions RenditionResolver
	fileURL    func(bucket, key string) string
}

// New creates an Exporter over the given stores. fileURL builds the public
// URL for a stored object.
func New(
	cases *store.CaseStudyStore,
	tags *store.TagStore,
	metrics *store.MetricStore,
	spend *store.ChannelSpendStore,
	assets *store.AssetStore,
	media *store.MediaStore,
	renditions RenditionResolver,
	fileURL func(bucket, key string) string,
) *Exporter {
	return &Exporter{
		cases:      cases,
		tags:       tags,
		metrics:    metrics,
		spend:      spend,
		assets:     assets,
		media:      media,
		renditions: renditions,
		fileURL:    fileURL,
	}
}

// Build assembles the export document for the whole collection, applying the
// record filter and field redaction from opts. Cases keep the canonical
// listing order.
func (e *Exporter) Build(opts Options) (*Document, error) {
	all, err := e.cases.List(store.Filter{})
	if err != nil {
		return nil, fmt.Errorf("export load cases: %w", err)
	}

	var kept []models.CaseStudy
	for _, c := range all {
		if c.IsPrivate() && !opts.IncludePrivate {
			continue
		}
		kept = append(kept, c)
	}

	ids := make([]uuid.UUID, len(kept))
	for i, c := range kept {
		ids[i] = c.ID
	}

	tagsByCase, err := e.tags.ListByCases(ids)
	if err != nil {
		return nil, fmt.Errorf("export load tags: %w", err)
	}
	metricsByCase, err := e.metrics.ListByCases(ids)
	if err != nil {
		return nil, fmt.Errorf("export load metrics: %w", err)
	}
	spendByCase, err := e.spend.ListByCases(ids)
	if err != nil {
		return nil, fmt.Errorf("export load channel spend: %w", err)
	}
	assetsByCase, err := e.assets.ListByCases(ids)
	if err != nil {
		return nil, fmt.Errorf("export load assets: %w", err)
	}

	// Batch-load media referenced by any asset.
	var mediaIDs []uuid.UUID
	for _, assets := range assetsByCase {
		for _, a := range assets {
			if a.ImageID != nil {
				mediaIDs = append(mediaIDs, *a.ImageID)
			}
			if a.VideoID != nil {
				mediaIDs = append(mediaIDs, *a.VideoID)
			}
		}
	}
	mediaByID, err := e.media.FindByIDs(mediaIDs)
	if err != nil {
		return nil, fmt.Errorf("export load media: %w", err)
	}

	cases := make([]Case, 0, len(kept))
	for _, c := range kept {
		cases = append(cases, e.serializeCase(&c, opts,
			tagsByCase[c.ID], metricsByCase[c.ID], spendByCase[c.ID],
			assetsByCase[c.ID], mediaByID))
	}

	return &Document{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Count:       len(cases),
		Cases:       cases,
	}, nil
}

func (e *Exporter) serializeCase(
	c *models.CaseStudy,
	opts Options,
	tags []string,
	metrics []models.Metric,
	spend []models.ChannelSpend,
	assets []models.Asset,
	mediaByID map[uuid.UUID]models.Media,
) Case {
	out := Case{
		Title:                   c.Title,
		Slug:                    c.Slug,
		Organization:            c.OrganizationName,
		Sector:                  c.SectorName,
		BrandOrCampaign:         c.BrandOrCampaign,
		DateStart:               c.DateStart,
		DateEnd:                 c.DateEnd,
		SortDate:                c.SortDate,
		Location:                c.Location,
		Confidentiality:         string(c.Confidentiality),
		OneLiner:                c.OneLiner,
		Objective:               c.Objective,
		Audience:                c.Audience,
		Constraints:             c.Constraints,
		Strategy:                c.Strategy,
		CreativeDirection:       c.CreativeDirection,
		ProductionAndTooling:    c.ProductionAndTooling,
		DeliveryAndDistribution: c.DeliveryAndDistribution,
		MyContribution:          c.MyContribution,
		TeamAndPartners:         c.TeamAndPartners,
		ResultsSummary:          c.ResultsSummary,
		WhatWorked:              c.WhatWorked,
		WhatIdDoDifferently:     c.WhatIdDoDifferently,
		SpendCurrency:           string(c.SpendCurrency),
		SpendAmountMin:          decimalString(c.SpendAmountMin),
		SpendAmountMax:          decimalString(c.SpendAmountMax),
		SpendNotes:              c.SpendNotes,
		ProofLinks:              models.SplitLines(c.ProofLinks),
		PressMentions:           models.SplitLines(c.PressMentions),
		Tags:                    emptyIfNil(tags),
		Metrics:                 make([]Metric, 0, len(metrics)),
		ChannelSpend:            make([]Spend, 0, len(spend)),
		Assets:                  make([]Asset, 0, len(assets)),
	}

	for _, m := range metrics {
		out.Metrics = append(out.Metrics, Metric{
			MetricName: m.MetricName,
			Value:      m.Value,
			Timeframe:  m.Timeframe,
			Source:     m.Source,
			Notes:      m.Notes,
		})
	}

	for _, sp := range spend {
		out.ChannelSpend = append(out.ChannelSpend, Spend{
			Channel:       string(sp.Channel),
			SpendCurrency: string(sp.SpendCurrency),
			SpendAmount:   decimalString(sp.SpendAmount),
			Dates:         sp.Dates,
			Notes:         sp.Notes,
		})
	}

	for _, a := range assets {
		out.Assets = append(out.Assets, e.serializeAsset(&a, mediaByID))
	}

	if opts.IncludeNotes {
		notes := c.Notes
		out.Notes = &notes
	}

	return out
}

func (e *Exporter) serializeAsset(a *models.Asset, mediaByID map[uuid.UUID]models.Media) Asset {
	out := Asset{
		Type:     string(a.AssetType),
		Caption:  a.Caption,
		Platform: a.Platform,
		Format:   a.Format,
		Date:     a.Date,
		IsHero:   a.IsHero,
		AltText:  a.AltText,
	}

	if a.ImageID != nil {
		if m, ok := mediaByID[*a.ImageID]; ok {
			urls := &ImageURLs{Original: e.fileURL(m.Bucket, m.S3Key)}
			urls.Fill1600x900 = e.resolveRendition(m.ID, models.RenditionFill1600x900)
			urls.Max1200x1200 = e.resolveRendition(m.ID, models.RenditionMax1200x1200)
			out.ImageURLs = urls
		}
	}

	if a.VideoID != nil {
		if m, ok := mediaByID[*a.VideoID]; ok {
			title := m.Title
			url := e.fileURL(m.Bucket, m.S3Key)
			filename := m.Filename
			out.Video = Video{Title: &title, URL: &url, Filename: &filename}
		}
	}

	return out
}

// resolveRendition resolves one named rendition URL. Failures degrade the
// entry to null; renditions are a presentation nicety, not core data.
func (e *Exporter) resolveRendition(mediaID uuid.UUID, spec string) *string {
	url, err := e.renditions.Resolve(mediaID, spec)
	if err != nil {
		slog.Warn("rendition resolution failed", "media_id", mediaID, "spec", spec, "error", err)
		return nil
	}
	return &url
}

// WriteFile serializes the document and writes it to path, creating parent
// directories as needed. The write goes through a temp file and rename so a
// failure never corrupts previously exported output.
func WriteFile(doc *Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("export marshal: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("export create directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".casebook-export-*")
	if err != nil {
		return fmt.Errorf("export temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("export write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("export close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("export rename to %s: %w", path, err)
	}
	return nil
}

// Run builds the document and writes it to path, returning the number of
// exported cases.
func (e *Exporter) Run(opts Options, path string) (int, error) {
	doc, err := e.Build(opts)
	if err != nil {
		return 0, err
	}
	if err := WriteFile(doc, path); err != nil {
		return 0, err
	}
	return doc.Count, nil
}

// decimalString serializes a nullable amount to two decimal places, the
// scale of the NUMERIC(12,2) columns. Decimal.String() would trim trailing
// zeros ("12000.00" becomes "12000"), which breaks the round-trip.
func decimalString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.StringFixed(2)
	return &s
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
