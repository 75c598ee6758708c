// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"casebook/internal/models"
)

// Validation limits for case study form fields.
const (
	maxTitleLen     = 300
	maxSlugLen      = 300
	maxLabelLen     = 200
	maxNarrativeLen = 50_000
)

// validateLengths checks the form-level length caps that the model layer
// does not enforce. Failures land in verr under the field name.
func validateLengths(cs *models.CaseStudy, verr *models.ValidationError) {
	if utf8.RuneCountInString(cs.Title) > maxTitleLen {
		verr.Add("title", "Title is too long (max 300 characters).")
	}
	if utf8.RuneCountInString(cs.Slug) > maxSlugLen {
		verr.Add("slug", "Slug is too long (max 300 characters).")
	}
	for field, value := range map[string]string{
		"brand_or_campaign": cs.BrandOrCampaign,
		"date_start":        cs.DateStart,
		"date_end":          cs.DateEnd,
		"sort_date":         cs.SortDate,
		"location":          cs.Location,
	} {
		if utf8.RuneCountInString(value) > maxLabelLen {
			verr.Add(field, "Too long (max 200 characters).")
		}
	}
	if utf8.RuneCountInString(cs.Notes) > maxNarrativeLen {
		verr.Add("notes", "Notes are too long (max 50,000 characters).")
	}
}

// parseDecimal parses an optional money amount from a form value. An empty
// string is a valid null; anything else must parse as a decimal.
func parseDecimal(raw, field string, verr *models.ValidationError) decimal.NullDecimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		verr.Add(field, "Enter an amount like 12000.00.")
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// parseOptionalUUID parses a form value into a UUID pointer. Empty values
// and the nil UUID come back as nil.
func parseOptionalUUID(raw string) *uuid.UUID {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return nil
	}
	return &id
}

// splitTags turns a comma-separated tag field into trimmed names. Dedup and
// empty-entry handling happen in the tag store.
func splitTags(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			names = append(names, part)
		}
	}
	return names
}
