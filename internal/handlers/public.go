// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the casebook server.
// Handlers are grouped by concern (public browse, admin CRUD) and receive
// their dependencies through the handler struct.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"casebook/internal/cache"
	"casebook/internal/models"
	"casebook/internal/render"
	"casebook/internal/storage"
	"casebook/internal/store"
)

// Public groups handlers for the public-facing browse and detail views. It
// checks the Valkey page cache before hitting the database, and stores
// rendered results on miss. The unfiltered index and detail pages are
// cacheable; filtered listings are rendered fresh every time.
type Public struct {
	renderer      *render.Renderer
	caseStore     *store.CaseStudyStore
	tagStore      *store.TagStore
	metricStore   *store.MetricStore
	spendStore    *store.ChannelSpendStore
	assetStore    *store.AssetStore
	mediaStore    *store.MediaStore
	storageClient *storage.Client
	pageCache     *cache.PageCache
}

// NewPublic creates a new Public handler group. storageClient may be nil if
// S3 is not configured.
func NewPublic(renderer *render.Renderer, caseStore *store.CaseStudyStore, tagStore *store.TagStore, metricStore *store.MetricStore, spendStore *store.ChannelSpendStore, assetStore *store.AssetStore, mediaStore *store.MediaStore, storageClient *storage.Client, pageCache *cache.PageCache) *Public {
	return &Public{
		renderer:      renderer,
		caseStore:     caseStore,
		tagStore:      tagStore,
		metricStore:   metricStore,
		spendStore:    spendStore,
		assetStore:    assetStore,
		mediaStore:    mediaStore,
		storageClient: storageClient,
		pageCache:     pageCache,
	}
}

// Index renders the public case study listing, optionally filtered by free
// text, organization, sector, or tag.
func (p *Public) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter := store.Filter{
		Query:        r.URL.Query().Get("q"),
		Organization: r.URL.Query().Get("organization"),
		Sector:       r.URL.Query().Get("sector"),
		Tag:          r.URL.Query().Get("tag"),
	}
	unfiltered := filter == (store.Filter{})

	if unfiltered {
		if cached, ok := p.pageCache.Get(ctx, cache.IndexKey()); ok {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			w.Write(cached)
			return
		}
	}

	cases, err := p.caseStore.List(filter)
	if err != nil {
		slog.Error("list case studies failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := &render.PageData{
		Title:   "Case studies",
		Section: "browse",
		Data: map[string]any{
			"Cases":        cases,
			"Query":        filter.Query,
			"Organization": filter.Organization,
			"Sector":       filter.Sector,
			"Tag":          filter.Tag,
		},
	}

	if !unfiltered {
		p.renderer.Page(w, "index", data)
		return
	}

	html, err := p.renderer.PageBytes("index", data)
	if err != nil {
		slog.Error("render index failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.pageCache.Set(ctx, cache.IndexKey(), html)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// Detail renders the public detail page for one case study by slug.
func (p *Public) Detail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slugParam := chi.URLParam(r, "slug")

	if cached, ok := p.pageCache.Get(ctx, cache.DetailKey(slugParam)); ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(cached)
		return
	}

	cs, err := p.caseStore.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find case study by slug failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if cs == nil {
		http.NotFound(w, r)
		return
	}

	tags, err := p.tagStore.ListByCase(cs.ID)
	if err != nil {
		slog.Error("list tags failed", "error", err, "slug", slugParam)
	}
	metrics, err := p.metricStore.ListByCase(cs.ID)
	if err != nil {
		slog.Error("list metrics failed", "error", err, "slug", slugParam)
	}
	spend, err := p.spendStore.ListByCase(cs.ID)
	if err != nil {
		slog.Error("list channel spend failed", "error", err, "slug", slugParam)
	}
	gallery := p.buildGallery(cs)

	data := &render.PageData{
		Title:   cs.Title,
		Section: "browse",
		Data: map[string]any{
			"Case":          cs,
			"Tags":          tags,
			"Metrics":       metrics,
			"ChannelSpend":  spend,
			"Gallery":       gallery,
			"ProofLinks":    models.SplitLines(cs.ProofLinks),
			"PressMentions": models.SplitLines(cs.PressMentions),
		},
	}

	html, err := p.renderer.PageBytes("detail", data)
	if err != nil {
		slog.Error("render detail failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	p.pageCache.Set(ctx, cache.DetailKey(slugParam), html)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}

// GalleryItem is one asset resolved for display: the asset row plus the
// public URL of its image or video file. URL is empty when storage is not
// configured or the media row is missing.
type GalleryItem struct {
	Asset   models.Asset
	Media   *models.Media
	URL     string
	IsImage bool
}

// buildGallery loads the case study's assets in position order and resolves
// each one's media URL. Missing media degrades to an empty URL rather than
// failing the page.
func (p *Public) buildGallery(cs *models.CaseStudy) []GalleryItem {
	assets, err := p.assetStore.ListByCase(cs.ID)
	if err != nil {
		slog.Error("list assets failed", "error", err, "slug", cs.Slug)
		return nil
	}
	if len(assets) == 0 {
		return nil
	}

	var mediaIDs []uuid.UUID
	for _, a := range assets {
		if a.ImageID != nil {
			mediaIDs = append(mediaIDs, *a.ImageID)
		}
		if a.VideoID != nil {
			mediaIDs = append(mediaIDs, *a.VideoID)
		}
	}
	mediaByID, err := p.mediaStore.FindByIDs(mediaIDs)
	if err != nil {
		slog.Error("resolve asset media failed", "error", err, "slug", cs.Slug)
	}

	items := make([]GalleryItem, 0, len(assets))
	for _, a := range assets {
		item := GalleryItem{Asset: a, IsImage: a.HasImage()}
		mediaID := a.VideoID
		if a.HasImage() {
			mediaID = a.ImageID
		}
		if mediaID != nil {
			if m, ok := mediaByID[*mediaID]; ok {
				media := m
				item.Media = &media
				if p.storageClient != nil {
					item.URL = p.storageClient.FileURL(media.Bucket, media.S3Key)
				}
			}
		}
		items = append(items, item)
	}
	return items
}

// Health reports service liveness for load balancers and deploy checks.
func (p *Public) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
