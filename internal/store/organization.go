// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"casebook/internal/models"
)

// OrganizationStore handles database operations for the organization
// reference table.
type OrganizationStore struct {
	db *sql.DB
}

// NewOrganizationStore creates a new OrganizationStore with the given database connection.
func NewOrganizationStore(db *sql.DB) *OrganizationStore {
	return &OrganizationStore{db: db}
}

// List returns all organizations ordered by name.
func (s *OrganizationStore) List() ([]models.Organization, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at FROM organizations ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var items []models.Organization
	for rows.Next() {
		var o models.Organization
		if err := rows.Scan(&o.ID, &o.Name, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		items = append(items, o)
	}
	return items, rows.Err()
}

// GetOrCreate finds an organization by name, inserting it if absent.
func (s *OrganizationStore) GetOrCreate(name string) (*models.Organization, error) {
	o := &models.Organization{}
	err := s.db.QueryRow(`
		INSERT INTO organizations (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`, name).Scan(&o.ID, &o.Name, &o.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create organization %q: %w", name, err)
	}
	return o, nil
}

// FindByID retrieves an organization by its UUID. Returns nil if not found.
func (s *OrganizationStore) FindByID(id uuid.UUID) (*models.Organization, error) {
	o := &models.Organization{}
	err := s.db.QueryRow(`SELECT id, name, created_at FROM organizations WHERE id = $1`, id).
		Scan(&o.ID, &o.Name, &o.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find organization by id: %w", err)
	}
	return o, nil
}

// SectorStore handles database operations for the sector reference table.
type SectorStore struct {
	db *sql.DB
}

// NewSectorStore creates a new SectorStore with the given database connection.
func NewSectorStore(db *sql.DB) *SectorStore {
	return &SectorStore{db: db}
}

// List returns all sectors ordered by name.
func (s *SectorStore) List() ([]models.Sector, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at FROM sectors ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list sectors: %w", err)
	}
	defer rows.Close()

	var items []models.Sector
	for rows.Next() {
		var sec models.Sector
		if err := rows.Scan(&sec.ID, &sec.Name, &sec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		items = append(items, sec)
	}
	return items, rows.Err()
}

// GetOrCreate finds a sector by name, inserting it if absent.
func (s *SectorStore) GetOrCreate(name string) (*models.Sector, error) {
	sec := &models.Sector{}
	err := s.db.QueryRow(`
		INSERT INTO sectors (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, created_at
	`, name).Scan(&sec.ID, &sec.Name, &sec.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("get or create sector %q: %w", name, err)
	}
	return sec, nil
}
