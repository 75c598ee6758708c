// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"casebook/internal/models"
)

// fakeResolver resolves renditions from a fixed map and fails for anything
// else, mirroring a partially complete rendering service.
type fakeResolver struct {
	urls map[string]string // "mediaID/spec" -> url
}

func (f fakeResolver) Resolve(mediaID uuid.UUID, spec string) (string, error) {
	if url, ok := f.urls[mediaID.String()+"/"+spec]; ok {
		return url, nil
	}
	return "", fmt.Errorf("rendition %s not available", spec)
}

func testURL(bucket, key string) string {
	return "https://cdn.test/" + bucket + "/" + key
}

func testExporter(resolver RenditionResolver) *Exporter {
	return &Exporter{renditions: resolver, fileURL: testURL}
}

func nd(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

// TestSerializeCaseDefaults verifies redaction defaults, decimal string
// serialization, and line splitting of proof fields.
func TestSerializeCaseDefaults(t *testing.T) {
	org := "Lorem Org"
	cs := &models.CaseStudy{
		Title:            "Summer Launch",
		Slug:             "summer-launch",
		OrganizationName: &org,
		Confidentiality:  models.ConfidentialityPublic,
		SpendCurrency:    models.CurrencyGBP,
		SpendAmountMin:   nd("12000.00"),
		SpendAmountMax:   nd("18000.00"),
		ProofLinks:       "https://a.example\n\n https://b.example ",
		Notes:            "internal only",
	}

	e := testExporter(fakeResolver{})
	out := e.serializeCase(cs, Options{}, []string{"lorem"}, nil, nil, nil, nil)

	if out.Notes != nil {
		t.Errorf("notes exported by default: %q", *out.Notes)
	}
	if out.SpendAmountMin == nil || *out.SpendAmountMin != "12000.00" {
		t.Errorf("spend_amount_min = %v, want \"12000.00\"", out.SpendAmountMin)
	}
	if out.SpendAmountMax == nil || *out.SpendAmountMax != "18000.00" {
		t.Errorf("spend_amount_max = %v, want \"18000.00\"", out.SpendAmountMax)
	}
	if len(out.ProofLinks) != 2 || out.ProofLinks[1] != "https://b.example" {
		t.Errorf("proof_links = %v", out.ProofLinks)
	}
	if out.Organization == nil || *out.Organization != org {
		t.Errorf("organization = %v, want %q", out.Organization, org)
	}
	if out.Sector != nil {
		t.Errorf("sector = %v, want null", out.Sector)
	}
	if out.Metrics == nil || out.Tags == nil || out.Assets == nil {
		t.Error("child arrays must serialize as [] rather than null")
	}
}

// TestSerializeCaseIncludeNotes verifies the notes flag re-includes the field.
func TestSerializeCaseIncludeNotes(t *testing.T) {
	cs := &models.CaseStudy{Title: "T", Slug: "t", Notes: "internal only"}
	e := testExporter(fakeResolver{})

	out := e.serializeCase(cs, Options{IncludeNotes: true}, nil, nil, nil, nil, nil)
	if out.Notes == nil || *out.Notes != "internal only" {
		t.Errorf("notes = %v, want \"internal only\"", out.Notes)
	}

	// The key must be present even when the value is empty.
	cs.Notes = ""
	out = e.serializeCase(cs, Options{IncludeNotes: true}, nil, nil, nil, nil, nil)
	if out.Notes == nil {
		t.Error("empty notes should still export as \"\" when requested")
	}
}

// TestSerializeAssetImage verifies rendition URL expansion with per-rendition
// degradation to null.
func TestSerializeAssetImage(t *testing.T) {
	mediaID := uuid.New()
	imgMedia := models.Media{
		ID:     mediaID,
		Bucket: "casebook-media",
		S3Key:  "uploads/shot.png",
	}
	resolver := fakeResolver{urls: map[string]string{
		mediaID.String() + "/" + models.RenditionFill1600x900: "https://cdn.test/r/fill.png",
		// max-1200x1200 intentionally missing
	}}

	e := testExporter(resolver)
	asset := models.Asset{AssetType: models.AssetTypeAdScreenshot, ImageID: &mediaID, IsHero: true}
	out := e.serializeAsset(&asset, map[uuid.UUID]models.Media{mediaID: imgMedia})

	if out.ImageURLs == nil {
		t.Fatal("image asset missing image_urls")
	}
	if out.ImageURLs.Original != "https://cdn.test/casebook-media/uploads/shot.png" {
		t.Errorf("original = %q", out.ImageURLs.Original)
	}
	if out.ImageURLs.Fill1600x900 == nil || *out.ImageURLs.Fill1600x900 != "https://cdn.test/r/fill.png" {
		t.Errorf("fill_1600x900 = %v", out.ImageURLs.Fill1600x900)
	}
	if out.ImageURLs.Max1200x1200 != nil {
		t.Errorf("max_1200x1200 = %v, want null for missing rendition", out.ImageURLs.Max1200x1200)
	}
	if !out.IsHero {
		t.Error("is_hero lost in serialization")
	}
	if out.Video.URL != nil {
		t.Errorf("image asset has video url %v", out.Video.URL)
	}
}

// TestSerializeAssetVideo verifies the video document fields.
func TestSerializeAssetVideo(t *testing.T) {
	videoID := uuid.New()
	vidMedia := models.Media{
		ID:       videoID,
		Bucket:   "casebook-documents",
		S3Key:    "uploads/cutdown.mp4",
		Title:    "Launch cutdown",
		Filename: "cutdown.mp4",
	}

	e := testExporter(fakeResolver{})
	asset := models.Asset{AssetType: models.AssetTypeVideo, VideoID: &videoID}
	out := e.serializeAsset(&asset, map[uuid.UUID]models.Media{videoID: vidMedia})

	if out.ImageURLs != nil {
		t.Error("video asset should have null image_urls")
	}
	if out.Video.Title == nil || *out.Video.Title != "Launch cutdown" {
		t.Errorf("video.title = %v", out.Video.Title)
	}
	if out.Video.URL == nil || *out.Video.URL != "https://cdn.test/casebook-documents/uploads/cutdown.mp4" {
		t.Errorf("video.url = %v", out.Video.URL)
	}
	if out.Video.Filename == nil || *out.Video.Filename != "cutdown.mp4" {
		t.Errorf("video.filename = %v", out.Video.Filename)
	}
}

// TestCaseJSONShape pins the wire keys a downstream consumer depends on.
func TestCaseJSONShape(t *testing.T) {
	e := testExporter(fakeResolver{})
	cs := &models.CaseStudy{Title: "T", Slug: "t"}
	out := e.serializeCase(cs, Options{}, nil, nil, nil, nil, nil)

	data, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{
		"title", "slug", "organization", "sector", "confidentiality",
		"spend_amount_min", "spend_amount_max", "proof_links",
		"press_mentions", "tags", "metrics", "channel_spend", "assets",
	} {
		if _, ok := m[key]; !ok {
			t.Errorf("exported case JSON missing key %q", key)
		}
	}
	if _, ok := m["notes"]; ok {
		t.Error("notes key present without IncludeNotes")
	}
}

// TestWriteFile verifies directory creation, pretty output, and that no temp
// files are left behind.
func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out", "casebook.json")

	doc := &Document{GeneratedAt: "2026-01-01T00:00:00Z", Count: 0, Cases: []Case{}}
	if err := WriteFile(doc, path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !strings.Contains(string(data), "\"generated_at\"") {
		t.Error("output missing generated_at")
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("output should be indented")
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".casebook-export-") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
}

// TestDecimalString verifies null and exact-value handling.
func TestDecimalString(t *testing.T) {
	if got := decimalString(decimal.NullDecimal{}); got != nil {
		t.Errorf("decimalString(null) = %v, want nil", got)
	}
	if got := decimalString(nd("0.10")); got == nil || *got != "0.10" {
		t.Errorf("decimalString(0.10) = %v", got)
	}
}
