// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"casebook/internal/cache"
	"casebook/internal/models"
	"casebook/internal/render"
	"casebook/internal/search"
	"casebook/internal/store"
)

// extraFormRows is how many blank child rows the form shows beyond the
// saved ones.
const extraFormRows = 2

// Admin groups the case study management handlers and their dependencies.
type Admin struct {
	renderer    *render.Renderer
	caseStore   *store.CaseStudyStore
	tagStore    *store.TagStore
	metricStore *store.MetricStore
	spendStore  *store.ChannelSpendStore
	assetStore  *store.AssetStore
	orgStore    *store.OrganizationStore
	sectorStore *store.SectorStore
	mediaStore  *store.MediaStore
	pageCache   *cache.PageCache
	indexer     search.Indexer
}

// NewAdmin creates a new Admin handler group with the given dependencies.
func NewAdmin(renderer *render.Renderer, caseStore *store.CaseStudyStore, tagStore *store.TagStore, metricStore *store.MetricStore, spendStore *store.ChannelSpendStore, assetStore *store.AssetStore, orgStore *store.OrganizationStore, sectorStore *store.SectorStore, mediaStore *store.MediaStore, pageCache *cache.PageCache, indexer search.Indexer) *Admin {
	return &Admin{
		renderer:    renderer,
		caseStore:   caseStore,
		tagStore:    tagStore,
		metricStore: metricStore,
		spendStore:  spendStore,
		assetStore:  assetStore,
		orgStore:    orgStore,
		sectorStore: sectorStore,
		mediaStore:  mediaStore,
		pageCache:   pageCache,
		indexer:     indexer,
	}
}

// CasesList renders the case study management page.
func (a *Admin) CasesList(w http.ResponseWriter, r *http.Request) {
	cases, err := a.caseStore.List(store.Filter{})
	if err != nil {
		slog.Error("list case studies failed", "error", err)
	}

	a.renderer.Page(w, "cases_list", &render.PageData{
		Title:   "Case studies",
		Section: "cases",
		Data:    map[string]any{"Items": cases},
	})
}

// caseForm carries one parsed (or to-be-rendered) form state: the aggregate,
// its child rows, and the raw values that must survive a failed validation
// round-trip.
type caseForm struct {
	cs        models.CaseStudy
	orgName   string
	tagsValue string
	spendMin  string
	spendMax  string
	metrics   []models.Metric
	spends    []models.ChannelSpend
	assets    []models.Asset
	heroIndex int
}

// CaseNew renders the empty create form.
func (a *Admin) CaseNew(w http.ResponseWriter, r *http.Request) {
	form := &caseForm{
		cs: models.CaseStudy{
			Confidentiality: models.ConfidentialityPublic,
			SpendCurrency:   models.CurrencyGBP,
		},
		heroIndex: -1,
	}
	a.renderForm(w, form, true, "/admin/cases", nil)
}

// CaseCreate handles the create form submission.
func (a *Admin) CaseCreate(w http.ResponseWriter, r *http.Request) {
	form, verr := a.parseForm(r)
	if !verr.Empty() {
		a.renderForm(w, form, true, "/admin/cases", verr)
		return
	}

	created, err := a.caseStore.Create(&form.cs)
	if err != nil {
		if v := models.AsValidationError(err); v != nil {
			a.renderForm(w, form, true, "/admin/cases", v)
			return
		}
		slog.Error("create case study failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.saveChildren(created.ID, form); err != nil {
		slog.Error("save case study children failed", "error", err, "slug", created.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.afterWrite(r, created)
	http.Redirect(w, r, "/cases/"+created.Slug, http.StatusSeeOther)
}

// CaseEdit renders the edit form for an existing case study.
func (a *Admin) CaseEdit(w http.ResponseWriter, r *http.Request) {
	cs, ok := a.findBySlugParam(w, r)
	if !ok {
		return
	}

	form := &caseForm{cs: *cs, heroIndex: -1}
	if cs.OrganizationName != nil {
		form.orgName = *cs.OrganizationName
	}
	if cs.SpendAmountMin.Valid {
		form.spendMin = cs.SpendAmountMin.Decimal.StringFixed(2)
	}
	if cs.SpendAmountMax.Valid {
		form.spendMax = cs.SpendAmountMax.Decimal.StringFixed(2)
	}

	tags, err := a.tagStore.ListByCase(cs.ID)
	if err != nil {
		slog.Error("list tags failed", "error", err, "slug", cs.Slug)
	}
	form.tagsValue = strings.Join(tags, ", ")

	form.metrics, err = a.metricStore.ListByCase(cs.ID)
	if err != nil {
		slog.Error("list metrics failed", "error", err, "slug", cs.Slug)
	}
	form.spends, err = a.spendStore.ListByCase(cs.ID)
	if err != nil {
		slog.Error("list channel spend failed", "error", err, "slug", cs.Slug)
	}
	form.assets, err = a.assetStore.ListByCase(cs.ID)
	if err != nil {
		slog.Error("list assets failed", "error", err, "slug", cs.Slug)
	}
	for i, asset := range form.assets {
		if asset.IsHero {
			form.heroIndex = i
			break
		}
	}

	a.renderForm(w, form, false, "/admin/cases/"+cs.Slug, nil)
}

// CaseUpdate handles the edit form submission.
func (a *Admin) CaseUpdate(w http.ResponseWriter, r *http.Request) {
	existing, ok := a.findBySlugParam(w, r)
	if !ok {
		return
	}
	action := "/admin/cases/" + existing.Slug

	form, verr := a.parseForm(r)
	form.cs.ID = existing.ID
	form.cs.CreatedAt = existing.CreatedAt
	if form.cs.Slug == "" {
		form.cs.Slug = existing.Slug
	}
	if !verr.Empty() {
		a.renderForm(w, form, false, action, verr)
		return
	}

	if err := a.caseStore.Update(&form.cs); err != nil {
		if v := models.AsValidationError(err); v != nil {
			a.renderForm(w, form, false, action, v)
			return
		}
		slog.Error("update case study failed", "error", err, "slug", existing.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if err := a.saveChildren(existing.ID, form); err != nil {
		slog.Error("save case study children failed", "error", err, "slug", form.cs.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	updated, err := a.caseStore.FindByID(existing.ID)
	if err != nil || updated == nil {
		updated = &form.cs
	}
	a.afterWrite(r, updated)
	http.Redirect(w, r, "/cases/"+updated.Slug, http.StatusSeeOther)
}

// CaseDelete removes a case study and all its children. POST only; the
// router rejects other methods.
func (a *Admin) CaseDelete(w http.ResponseWriter, r *http.Request) {
	cs, ok := a.findBySlugParam(w, r)
	if !ok {
		return
	}

	if err := a.caseStore.Delete(cs.ID); err != nil {
		slog.Error("delete case study failed", "error", err, "slug", cs.Slug)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	a.pageCache.InvalidateAll(r.Context())
	if err := a.indexer.Remove(r.Context(), cs.Slug); err != nil {
		slog.Warn("search index removal failed", "error", err, "slug", cs.Slug)
	}
	slog.Info("case study deleted", "slug", cs.Slug)
	http.Redirect(w, r, "/admin/cases", http.StatusSeeOther)
}

// findBySlugParam loads the case study named by the {slug} route parameter,
// writing the error response itself when the record is missing.
func (a *Admin) findBySlugParam(w http.ResponseWriter, r *http.Request) (*models.CaseStudy, bool) {
	slugParam := chi.URLParam(r, "slug")
	cs, err := a.caseStore.FindBySlug(slugParam)
	if err != nil {
		slog.Error("find case study by slug failed", "error", err, "slug", slugParam)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	if cs == nil {
		http.NotFound(w, r)
		return nil, false
	}
	return cs, true
}

// parseForm reads the submitted case study form, including all child row
// arrays. It never writes to the database except organization get-or-create;
// invalid values come back as field-scoped errors with the raw input
// preserved for re-rendering.
func (a *Admin) parseForm(r *http.Request) (*caseForm, *models.ValidationError) {
	verr := &models.ValidationError{}
	if err := r.ParseForm(); err != nil {
		verr.Add("form", "The submitted form could not be read.")
		return &caseForm{heroIndex: -1}, verr
	}

	form := &caseForm{
		cs: models.CaseStudy{
			Title:                   strings.TrimSpace(r.FormValue("title")),
			Slug:                    strings.TrimSpace(r.FormValue("slug")),
			BrandOrCampaign:         strings.TrimSpace(r.FormValue("brand_or_campaign")),
			DateStart:               strings.TrimSpace(r.FormValue("date_start")),
			DateEnd:                 strings.TrimSpace(r.FormValue("date_end")),
			SortDate:                strings.TrimSpace(r.FormValue("sort_date")),
			Location:                strings.TrimSpace(r.FormValue("location")),
			Confidentiality:         models.Confidentiality(r.FormValue("confidentiality")),
			OneLiner:                strings.TrimSpace(r.FormValue("one_liner")),
			Objective:               r.FormValue("objective"),
			Audience:                r.FormValue("audience"),
			Constraints:             r.FormValue("constraints"),
			Strategy:                r.FormValue("strategy"),
			CreativeDirection:       r.FormValue("creative_direction"),
			ProductionAndTooling:    r.FormValue("production_and_tooling"),
			DeliveryAndDistribution: r.FormValue("delivery_and_distribution"),
			MyContribution:          r.FormValue("my_contribution"),
			TeamAndPartners:         r.FormValue("team_and_partners"),
			ResultsSummary:          r.FormValue("results_summary"),
			WhatWorked:              r.FormValue("what_worked"),
			WhatIdDoDifferently:     r.FormValue("what_id_do_differently"),
			SpendCurrency:           models.Currency(r.FormValue("spend_currency")),
			SpendNotes:              r.FormValue("spend_notes"),
			ProofLinks:              r.FormValue("proof_links"),
			PressMentions:           r.FormValue("press_mentions"),
			Notes:                   r.FormValue("notes"),
		},
		orgName:   strings.TrimSpace(r.FormValue("organization")),
		tagsValue: r.FormValue("tags"),
		spendMin:  r.FormValue("spend_amount_min"),
		spendMax:  r.FormValue("spend_amount_max"),
		heroIndex: -1,
	}

	if form.cs.Confidentiality == "" {
		form.cs.Confidentiality = models.ConfidentialityPublic
	}
	if form.cs.SpendCurrency == "" {
		form.cs.SpendCurrency = models.CurrencyGBP
	}

	form.cs.SectorID = parseOptionalUUID(r.FormValue("sector_id"))
	form.cs.SpendAmountMin = parseDecimal(form.spendMin, "spend_amount_min", verr)
	form.cs.SpendAmountMax = parseDecimal(form.spendMax, "spend_amount_max", verr)

	if form.orgName != "" {
		org, err := a.orgStore.GetOrCreate(form.orgName)
		if err != nil {
			slog.Error("get or create organization failed", "error", err, "name", form.orgName)
			verr.Add("organization", "Organization could not be saved.")
		} else {
			form.cs.OrganizationID = &org.ID
		}
	}

	if hero := r.FormValue("hero_index"); hero != "" && hero != "-1" {
		fmt.Sscanf(hero, "%d", &form.heroIndex)
	}

	a.parseMetricRows(r, form)
	a.parseChannelRows(r, form, verr)
	a.parseAssetRows(r, form, verr)

	validateLengths(&form.cs, verr)
	if err := form.cs.Validate(); err != nil {
		if v := models.AsValidationError(err); v != nil {
			verr.Fields = append(verr.Fields, v.Fields...)
		}
	}
	return form, verr
}

// parseMetricRows collects the parallel metric row fields, skipping rows
// with an empty metric name.
func (a *Admin) parseMetricRows(r *http.Request, form *caseForm) {
	names := r.Form["metric_name"]
	for i, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		form.metrics = append(form.metrics, models.Metric{
			MetricName: name,
			Value:      strings.TrimSpace(formIndex(r, "metric_value", i)),
			Timeframe:  strings.TrimSpace(formIndex(r, "metric_timeframe", i)),
			Source:     strings.TrimSpace(formIndex(r, "metric_source", i)),
			Notes:      strings.TrimSpace(formIndex(r, "metric_notes", i)),
		})
	}
}

// parseChannelRows collects the parallel channel spend row fields, skipping
// rows with no channel selected.
func (a *Admin) parseChannelRows(r *http.Request, form *caseForm, verr *models.ValidationError) {
	channels := r.Form["channel_name"]
	for i, channel := range channels {
		channel = strings.TrimSpace(channel)
		if channel == "" {
			continue
		}
		row := models.ChannelSpend{
			Channel:       models.Channel(channel),
			SpendCurrency: models.Currency(formIndex(r, "channel_currency", i)),
			Dates:         strings.TrimSpace(formIndex(r, "channel_dates", i)),
			Notes:         strings.TrimSpace(formIndex(r, "channel_notes", i)),
		}
		if row.SpendCurrency == "" {
			row.SpendCurrency = form.cs.SpendCurrency
		}
		row.SpendAmount = parseDecimal(formIndex(r, "channel_amount", i), "channel_amount", verr)
		form.spends = append(form.spends, row)
	}
}

// parseAssetRows collects the asset rows, skipping rows with no media
// selected and no saved id. Media exclusivity is validated per row here so
// the whole save is rejected before any write happens.
func (a *Admin) parseAssetRows(r *http.Request, form *caseForm, verr *models.ValidationError) {
	ids := r.Form["asset_id"]
	for i := range ids {
		asset := models.Asset{
			Position:  i,
			AssetType: models.AssetType(formIndex(r, "asset_type", i)),
			ImageID:   parseOptionalUUID(formIndex(r, "asset_image_id", i)),
			VideoID:   parseOptionalUUID(formIndex(r, "asset_video_id", i)),
			Caption:   strings.TrimSpace(formIndex(r, "asset_caption", i)),
			Platform:  strings.TrimSpace(formIndex(r, "asset_platform", i)),
			Format:    strings.TrimSpace(formIndex(r, "asset_format", i)),
			Date:      strings.TrimSpace(formIndex(r, "asset_date", i)),
			AltText:   strings.TrimSpace(formIndex(r, "asset_alt", i)),
			IsHero:    form.heroIndex == i,
		}
		if id := parseOptionalUUID(ids[i]); id != nil {
			asset.ID = *id
		}
		if asset.ImageID == nil && asset.VideoID == nil && asset.ID == uuid.Nil {
			continue // blank extra row
		}
		if asset.AssetType == "" {
			asset.AssetType = models.AssetTypeOther
		}
		if err := asset.Validate(); err != nil {
			if v := models.AsValidationError(err); v != nil {
				verr.Fields = append(verr.Fields, v.Fields...)
			}
		}
		form.assets = append(form.assets, asset)
	}
}

// formIndex returns the i-th value of a repeated form field, or "" when the
// row arrays are ragged.
func formIndex(r *http.Request, key string, i int) string {
	values := r.Form[key]
	if i < len(values) {
		return values[i]
	}
	return ""
}

// saveChildren persists the tag set and all child collections after the
// aggregate row has been written. Assets are reconciled row by row: removed
// rows deleted first, then non-hero rows, then the hero, so a moved hero
// flag never trips the sibling check.
func (a *Admin) saveChildren(caseID uuid.UUID, form *caseForm) error {
	if err := a.tagStore.Set(caseID, splitTags(form.tagsValue)); err != nil {
		return fmt.Errorf("save tags: %w", err)
	}
	if err := a.metricStore.Replace(caseID, form.metrics); err != nil {
		return fmt.Errorf("save metrics: %w", err)
	}
	if err := a.spendStore.Replace(caseID, form.spends); err != nil {
		return fmt.Errorf("save channel spend: %w", err)
	}

	var keep []uuid.UUID
	for _, asset := range form.assets {
		if asset.ID != uuid.Nil {
			keep = append(keep, asset.ID)
		}
	}
	if err := a.assetStore.DeleteMissing(caseID, keep); err != nil {
		return fmt.Errorf("prune assets: %w", err)
	}

	writeAsset := func(asset models.Asset) error {
		asset.CaseStudyID = caseID
		if asset.ID == uuid.Nil {
			_, err := a.assetStore.Create(&asset)
			return err
		}
		return a.assetStore.Update(&asset)
	}
	for _, asset := range form.assets {
		if asset.IsHero {
			continue
		}
		if err := writeAsset(asset); err != nil {
			return fmt.Errorf("save asset: %w", err)
		}
	}
	for _, asset := range form.assets {
		if !asset.IsHero {
			continue
		}
		if err := writeAsset(asset); err != nil {
			return fmt.Errorf("save hero asset: %w", err)
		}
	}
	return nil
}

// afterWrite invalidates cached pages and notifies the search indexer.
func (a *Admin) afterWrite(r *http.Request, cs *models.CaseStudy) {
	a.pageCache.InvalidateAll(r.Context())
	if err := a.indexer.Index(r.Context(), cs); err != nil {
		slog.Warn("search indexing failed", "error", err, "slug", cs.Slug)
	}
	slog.Info("case study saved", "slug", cs.Slug, "title", cs.Title)
}

// renderForm renders the create/edit form, padding the child collections
// with blank rows for new entries.
func (a *Admin) renderForm(w http.ResponseWriter, form *caseForm, isNew bool, action string, verr *models.ValidationError) {
	sectors, err := a.sectorStore.List()
	if err != nil {
		slog.Error("list sectors failed", "error", err)
	}

	var images, videos []models.Media
	media, err := a.mediaStore.List()
	if err != nil {
		slog.Error("list media failed", "error", err)
	}
	for _, m := range media {
		if m.IsImage() {
			images = append(images, m)
		} else {
			videos = append(videos, m)
		}
	}

	metricRows := append([]models.Metric{}, form.metrics...)
	for i := 0; i < extraFormRows; i++ {
		metricRows = append(metricRows, models.Metric{})
	}
	channelRows := append([]models.ChannelSpend{}, form.spends...)
	for i := 0; i < extraFormRows; i++ {
		channelRows = append(channelRows, models.ChannelSpend{SpendCurrency: form.cs.SpendCurrency})
	}
	assetRows := append([]models.Asset{}, form.assets...)
	assetRows = append(assetRows, models.Asset{AssetType: models.AssetTypeOther})

	title := "Edit case study"
	if isNew {
		title = "New case study"
	}

	a.renderer.Page(w, "case_form", &render.PageData{
		Title:   title,
		Section: "cases",
		Errors:  verr,
		Data: map[string]any{
			"Case":              &form.cs,
			"IsNew":             isNew,
			"Action":            action,
			"OrganizationName":  form.orgName,
			"TagsValue":         form.tagsValue,
			"SpendMinValue":     form.spendMin,
			"SpendMaxValue":     form.spendMax,
			"Sectors":           sectors,
			"Images":            images,
			"Videos":            videos,
			"MetricRows":        metricRows,
			"ChannelRows":       channelRows,
			"AssetRows":         assetRows,
			"HeroIndex":         form.heroIndex,
			"AssetTypes":        models.AssetTypes,
			"Currencies":        models.Currencies,
			"Confidentialities": models.Confidentialities,
			"Channels":          models.Channels,
		},
	})
}
