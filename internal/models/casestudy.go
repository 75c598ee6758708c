// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the casebook domain entities: the CaseStudy
// aggregate, its owned child collections (assets, metrics, channel spend),
// the organization/sector reference tables, and stored media metadata.
package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Confidentiality controls whether a case study is included in exports
// and how much of it may be shown publicly.
type Confidentiality string

const (
	ConfidentialityPublic     Confidentiality = "public"
	ConfidentialityAnonymised Confidentiality = "anonymised"
	ConfidentialityPrivate    Confidentiality = "private"
)

// Currency is the ISO-ish currency code used for spend estimates.
type Currency string

const (
	CurrencyGBP   Currency = "GBP"
	CurrencyUSD   Currency = "USD"
	CurrencyEUR   Currency = "EUR"
	CurrencyOther Currency = "Other"
)

// Currencies lists the selectable spend currencies in form display order.
var Currencies = []Currency{CurrencyGBP, CurrencyUSD, CurrencyEUR, CurrencyOther}

// Confidentialities lists the selectable confidentiality levels.
var Confidentialities = []Confidentiality{
	ConfidentialityPublic,
	ConfidentialityAnonymised,
	ConfidentialityPrivate,
}

// CaseStudy is the root record for one campaign or engagement. Date fields
// are flexible text labels ("January 2025", "Q1 2024"), not structured dates;
// they are stored and exported verbatim.
type CaseStudy struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Slug            string     `json:"slug"`
	OrganizationID  *uuid.UUID `json:"organization_id,omitempty"`
	SectorID        *uuid.UUID `json:"sector_id,omitempty"`
	BrandOrCampaign string     `json:"brand_or_campaign"`
	DateStart       string     `json:"date_start"`
	DateEnd         string     `json:"date_end"`
	// SortDate is the primary ordering key. Derived at save time from
	// DateEnd, then DateStart, when not explicitly set.
	SortDate        string          `json:"sort_date"`
	Location        string          `json:"location"`
	Confidentiality Confidentiality `json:"confidentiality"`

	OneLiner                string `json:"one_liner"`
	Objective               string `json:"objective"`
	Audience                string `json:"audience"`
	Constraints             string `json:"constraints"`
	Strategy                string `json:"strategy"`
	CreativeDirection       string `json:"creative_direction"`
	ProductionAndTooling    string `json:"production_and_tooling"`
	DeliveryAndDistribution string `json:"delivery_and_distribution"`
	MyContribution          string `json:"my_contribution"`
	TeamAndPartners         string `json:"team_and_partners"`
	ResultsSummary          string `json:"results_summary"`
	WhatWorked              string `json:"what_worked"`
	WhatIdDoDifferently     string `json:"what_id_do_differently"`

	SpendCurrency  Currency            `json:"spend_currency"`
	SpendAmountMin decimal.NullDecimal `json:"spend_amount_min"`
	SpendAmountMax decimal.NullDecimal `json:"spend_amount_max"`
	SpendNotes     string              `json:"spend_notes"`

	// ProofLinks and PressMentions hold one entry per line; they are split
	// into trimmed, non-empty lines at read/export time.
	ProofLinks    string `json:"proof_links"`
	PressMentions string `json:"press_mentions"`

	// Notes is internal commentary, excluded from export unless explicitly
	// requested.
	Notes string `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Resolved reference names, populated by list/detail queries.
	OrganizationName *string `json:"organization,omitempty"`
	SectorName       *string `json:"sector,omitempty"`
}

// IsPrivate returns true when the case study must be excluded from exports
// by default.
func (c *CaseStudy) IsPrivate() bool {
	return c.Confidentiality == ConfidentialityPrivate
}

// DeriveSortDate returns the sort date that should be stored for the current
// field values: the explicit sort date if present, otherwise the end date,
// otherwise the start date. Runs on every save.
func (c *CaseStudy) DeriveSortDate() string {
	if c.SortDate != "" {
		return c.SortDate
	}
	if c.DateEnd != "" {
		return c.DateEnd
	}
	return c.DateStart
}

// Validate checks the aggregate's cross-field invariants. Violations are
// reported per field and the write must be rejected, never auto-corrected.
func (c *CaseStudy) Validate() error {
	var verr ValidationError
	if strings.TrimSpace(c.Title) == "" {
		verr.Add("title", "Title is required.")
	}
	if c.SpendAmountMin.Valid && c.SpendAmountMax.Valid &&
		c.SpendAmountMin.Decimal.GreaterThan(c.SpendAmountMax.Decimal) {
		verr.Add("spend_amount_max", "Maximum spend must be greater than or equal to minimum spend.")
	}
	if verr.Empty() {
		return nil
	}
	return &verr
}

// SplitLines splits a newline-delimited text field into an ordered list of
// trimmed, non-empty lines. Used for proof links and press mentions.
func SplitLines(value string) []string {
	if value == "" {
		return []string{}
	}
	var lines []string
	for _, line := range strings.Split(value, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	if lines == nil {
		return []string{}
	}
	return lines
}
