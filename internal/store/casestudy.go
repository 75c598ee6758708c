// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store contains all database access for the casebook module,
// organized as one store per aggregate. Stores speak plain SQL over
// database/sql with the pgx driver.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"casebook/internal/models"
	"casebook/internal/slug"
)

// CaseStudyStore handles all case-study database operations, including slug
// assignment, sort-date derivation, and the tag many-to-many.
type CaseStudyStore struct {
	db *sql.DB
}

// NewCaseStudyStore creates a new CaseStudyStore with the given database connection.
func NewCaseStudyStore(db *sql.DB) *CaseStudyStore {
	return &CaseStudyStore{db: db}
}

const caseStudyColumns = `cs.id, cs.title, cs.slug, cs.organization_id, cs.sector_id,
	cs.brand_or_campaign, cs.date_start, cs.date_end, cs.sort_date, cs.location,
	cs.confidentiality, cs.one_liner, cs.objective, cs.audience, cs.constraints,
	cs.strategy, cs.creative_direction, cs.production_and_tooling,
	cs.delivery_and_distribution, cs.my_contribution, cs.team_and_partners,
	cs.results_summary, cs.what_worked, cs.what_id_do_differently,
	cs.spend_currency, cs.spend_amount_min, cs.spend_amount_max, cs.spend_notes,
	cs.proof_links, cs.press_mentions, cs.notes, cs.created_at, cs.updated_at,
	o.name, sec.name`

// caseStudyFrom joins the reference tables so every read resolves the
// organization and sector names in one query.
const caseStudyFrom = `FROM case_studies cs
	LEFT JOIN organizations o ON o.id = cs.organization_id
	LEFT JOIN sectors sec ON sec.id = cs.sector_id`

// caseStudyOrder is the canonical listing order, shared by the public index
// and the export pipeline. Date fields are free-text labels, so ordering is
// lexicographic descending with title as the final ascending tie-break.
const caseStudyOrder = `ORDER BY cs.sort_date DESC, cs.date_end DESC, cs.date_start DESC, cs.title ASC`

func scanCaseStudy(scanner interface{ Scan(...any) error }) (*models.CaseStudy, error) {
	var c models.CaseStudy
	err := scanner.Scan(
		&c.ID, &c.Title, &c.Slug, &c.OrganizationID, &c.SectorID,
		&c.BrandOrCampaign, &c.DateStart, &c.DateEnd, &c.SortDate, &c.Location,
		&c.Confidentiality, &c.OneLiner, &c.Objective, &c.Audience, &c.Constraints,
		&c.Strategy, &c.CreativeDirection, &c.ProductionAndTooling,
		&c.DeliveryAndDistribution, &c.MyContribution, &c.TeamAndPartners,
		&c.ResultsSummary, &c.WhatWorked, &c.WhatIdDoDifferently,
		&c.SpendCurrency, &c.SpendAmountMin, &c.SpendAmountMax, &c.SpendNotes,
		&c.ProofLinks, &c.PressMentions, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
		&c.OrganizationName, &c.SectorName,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Filter narrows the case study listing. All set filters combine with AND;
// the free-text query matches title, organization name, brand/campaign, and
// one-liner with OR.
type Filter struct {
	Query        string
	Organization string
	Sector       string
	Tag          string
}

// List returns case studies matching the filter in the canonical order.
func (s *CaseStudyStore) List(f Filter) ([]models.CaseStudy, error) {
	var conditions []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q := strings.TrimSpace(f.Query); q != "" {
		p := arg("%" + q + "%")
		conditions = append(conditions, fmt.Sprintf(
			`(cs.title ILIKE %[1]s OR o.name ILIKE %[1]s OR cs.brand_or_campaign ILIKE %[1]s OR cs.one_liner ILIKE %[1]s)`, p))
	}
	if org := strings.TrimSpace(f.Organization); org != "" {
		conditions = append(conditions, fmt.Sprintf(`o.name ILIKE %s`, arg(org)))
	}
	if sector := strings.TrimSpace(f.Sector); sector != "" {
		conditions = append(conditions, fmt.Sprintf(`sec.name ILIKE %s`, arg(sector)))
	}
	if tag := strings.TrimSpace(f.Tag); tag != "" {
		conditions = append(conditions, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM case_study_tags cst
			JOIN tags t ON t.id = cst.tag_id
			WHERE cst.case_study_id = cs.id AND t.name ILIKE %s
		)`, arg(tag)))
	}

	query := `SELECT ` + caseStudyColumns + ` ` + caseStudyFrom
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ` + caseStudyOrder

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list case studies: %w", err)
	}
	defer rows.Close()

	var items []models.CaseStudy
	for rows.Next() {
		c, err := scanCaseStudy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case study: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindBySlug retrieves a case study by its slug. Returns nil if not found.
func (s *CaseStudyStore) FindBySlug(slugVal string) (*models.CaseStudy, error) {
	c, err := scanCaseStudy(s.db.QueryRow(
		`SELECT `+caseStudyColumns+` `+caseStudyFrom+` WHERE cs.slug = $1`, slugVal))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find case study by slug: %w", err)
	}
	return c, nil
}

// FindByID retrieves a case study by its UUID. Returns nil if not found.
func (s *CaseStudyStore) FindByID(id uuid.UUID) (*models.CaseStudy, error) {
	c, err := scanCaseStudy(s.db.QueryRow(
		`SELECT `+caseStudyColumns+` `+caseStudyFrom+` WHERE cs.id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find case study by id: %w", err)
	}
	return c, nil
}

// SlugExists reports whether a slug is already taken by a record other than
// excludeID. Pass uuid.Nil for inserts.
func (s *CaseStudyStore) SlugExists(slugVal string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM case_studies WHERE slug = $1 AND id <> $2
		)`, slugVal, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("slug exists: %w", err)
	}
	return exists, nil
}

// ensureSlug assigns a unique slug when the stored slug is empty. The source
// falls back from title to brand/campaign to organization name to a random
// token, so the result is never empty. Once set, a slug is never recomputed.
func (s *CaseStudyStore) ensureSlug(c *models.CaseStudy, excludeID uuid.UUID) error {
	if c.Slug != "" {
		return nil
	}

	source := c.Title
	if slug.Generate(source) == "" {
		source = c.BrandOrCampaign
	}
	if slug.Generate(source) == "" && c.OrganizationID != nil {
		var name string
		err := s.db.QueryRow(`SELECT name FROM organizations WHERE id = $1`, *c.OrganizationID).Scan(&name)
		if err == nil {
			source = name
		}
	}
	if slug.Generate(source) == "" {
		source = "case-" + uuid.NewString()[:8]
	}

	assigned, err := slug.Unique(source, func(candidate string) (bool, error) {
		return s.SlugExists(candidate, excludeID)
	})
	if err != nil {
		return fmt.Errorf("ensure slug: %w", err)
	}
	c.Slug = assigned
	return nil
}

// Create validates and inserts a new case study, assigning the slug and
// derived sort date, and returns the stored row.
func (s *CaseStudyStore) Create(c *models.CaseStudy) (*models.CaseStudy, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := s.ensureSlug(c, uuid.Nil); err != nil {
		return nil, err
	}
	c.SortDate = c.DeriveSortDate()

	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO case_studies (
			title, slug, organization_id, sector_id, brand_or_campaign,
			date_start, date_end, sort_date, location, confidentiality,
			one_liner, objective, audience, constraints, strategy,
			creative_direction, production_and_tooling, delivery_and_distribution,
			my_contribution, team_and_partners, results_summary, what_worked,
			what_id_do_differently, spend_currency, spend_amount_min,
			spend_amount_max, spend_notes, proof_links, press_mentions, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		          $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		          $21, $22, $23, $24, $25, $26, $27, $28, $29, $30)
		RETURNING id
	`, c.Title, c.Slug, c.OrganizationID, c.SectorID, c.BrandOrCampaign,
		c.DateStart, c.DateEnd, c.SortDate, c.Location, c.Confidentiality,
		c.OneLiner, c.Objective, c.Audience, c.Constraints, c.Strategy,
		c.CreativeDirection, c.ProductionAndTooling, c.DeliveryAndDistribution,
		c.MyContribution, c.TeamAndPartners, c.ResultsSummary, c.WhatWorked,
		c.WhatIdDoDifferently, c.SpendCurrency, c.SpendAmountMin,
		c.SpendAmountMax, c.SpendNotes, c.ProofLinks, c.PressMentions, c.Notes,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create case study: %w", err)
	}
	return s.FindByID(id)
}

// Update validates and modifies an existing case study. The stored slug is
// kept unless it was empty (stability over freshness); the sort date is
// re-derived on every save.
func (s *CaseStudyStore) Update(c *models.CaseStudy) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.ensureSlug(c, c.ID); err != nil {
		return err
	}
	c.SortDate = c.DeriveSortDate()

	_, err := s.db.Exec(`
		UPDATE case_studies SET
			title = $1, slug = $2, organization_id = $3, sector_id = $4,
			brand_or_campaign = $5, date_start = $6, date_end = $7,
			sort_date = $8, location = $9, confidentiality = $10,
			one_liner = $11, objective = $12, audience = $13, constraints = $14,
			strategy = $15, creative_direction = $16,
			production_and_tooling = $17, delivery_and_distribution = $18,
			my_contribution = $19, team_and_partners = $20,
			results_summary = $21, what_worked = $22,
			what_id_do_differently = $23, spend_currency = $24,
			spend_amount_min = $25, spend_amount_max = $26, spend_notes = $27,
			proof_links = $28, press_mentions = $29, notes = $30,
			updated_at = NOW()
		WHERE id = $31
	`, c.Title, c.Slug, c.OrganizationID, c.SectorID, c.BrandOrCampaign,
		c.DateStart, c.DateEnd, c.SortDate, c.Location, c.Confidentiality,
		c.OneLiner, c.Objective, c.Audience, c.Constraints, c.Strategy,
		c.CreativeDirection, c.ProductionAndTooling, c.DeliveryAndDistribution,
		c.MyContribution, c.TeamAndPartners, c.ResultsSummary, c.WhatWorked,
		c.WhatIdDoDifferently, c.SpendCurrency, c.SpendAmountMin,
		c.SpendAmountMax, c.SpendNotes, c.ProofLinks, c.PressMentions, c.Notes,
		c.ID)
	if err != nil {
		return fmt.Errorf("update case study: %w", err)
	}
	return nil
}

// Delete removes a case study by ID. Child rows cascade at the database level.
func (s *CaseStudyStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM case_studies WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete case study: %w", err)
	}
	return nil
}

// Count returns the number of case studies.
func (s *CaseStudyStore) Count() (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM case_studies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count case studies: %w", err)
	}
	return count, nil
}
