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

// AssetStore handles database operations for case assets. It enforces the
// single-hero rule with an advisory sibling check before every write; the
// partial unique index on (case_study_id) WHERE is_hero backs the check
// against concurrent writers.
type AssetStore struct {
	db *sql.DB
}

// NewAssetStore creates a new AssetStore with the given database connection.
func NewAssetStore(db *sql.DB) *AssetStore {
	return &AssetStore{db: db}
}

const assetColumns = `id, case_study_id, position, asset_type, image_id, video_id,
	caption, platform, format, date, is_hero, alt_text, created_at`

func scanAsset(scanner interface{ Scan(...any) error }) (*models.Asset, error) {
	var a models.Asset
	err := scanner.Scan(
		&a.ID, &a.CaseStudyID, &a.Position, &a.AssetType, &a.ImageID, &a.VideoID,
		&a.Caption, &a.Platform, &a.Format, &a.Date, &a.IsHero, &a.AltText,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// heroTaken reports whether a sibling asset of the same case study is
// already the hero, excluding excludeID (pass uuid.Nil for inserts).
func (s *AssetStore) heroTaken(caseStudyID, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS (
			SELECT 1 FROM case_assets
			WHERE case_study_id = $1 AND is_hero AND id <> $2
		)`, caseStudyID, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("hero check: %w", err)
	}
	return exists, nil
}

// validateForWrite runs the media-exclusivity check and the sibling hero
// check. Violations come back as field-scoped validation errors.
func (s *AssetStore) validateForWrite(a *models.Asset, excludeID uuid.UUID) error {
	if err := a.Validate(); err != nil {
		return err
	}
	if a.IsHero {
		taken, err := s.heroTaken(a.CaseStudyID, excludeID)
		if err != nil {
			return err
		}
		if taken {
			verr := &models.ValidationError{}
			verr.Add("is_hero", "Only one hero asset is allowed per case study.")
			return verr
		}
	}
	return nil
}

// ListByCase returns the assets of one case study in persisted position order.
func (s *AssetStore) ListByCase(caseStudyID uuid.UUID) ([]models.Asset, error) {
	rows, err := s.db.Query(`
		SELECT `+assetColumns+` FROM case_assets
		WHERE case_study_id = $1
		ORDER BY position, created_at
	`, caseStudyID)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer rows.Close()

	var assets []models.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, rows.Err()
}

// ListByCases returns assets for multiple case studies at once, keyed by
// case study ID. Used by the export pipeline.
func (s *AssetStore) ListByCases(caseStudyIDs []uuid.UUID) (map[uuid.UUID][]models.Asset, error) {
	if len(caseStudyIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(caseStudyIDs)
	rows, err := s.db.Query(`
		SELECT `+assetColumns+` FROM case_assets
		WHERE case_study_id IN (`+placeholders+`)
		ORDER BY case_study_id, position, created_at
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list assets by cases: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]models.Asset)
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		result[a.CaseStudyID] = append(result[a.CaseStudyID], *a)
	}
	return result, rows.Err()
}

// FindByID retrieves an asset by its UUID. Returns nil if not found.
func (s *AssetStore) FindByID(id uuid.UUID) (*models.Asset, error) {
	a, err := scanAsset(s.db.QueryRow(
		`SELECT `+assetColumns+` FROM case_assets WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find asset by id: %w", err)
	}
	return a, nil
}

// Create validates and inserts a new asset, returning the stored row.
func (s *AssetStore) Create(a *models.Asset) (*models.Asset, error) {
	if err := s.validateForWrite(a, uuid.Nil); err != nil {
		return nil, err
	}

	var id uuid.UUID
	err := s.db.QueryRow(`
		INSERT INTO case_assets (case_study_id, position, asset_type, image_id,
			video_id, caption, platform, format, date, is_hero, alt_text)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, a.CaseStudyID, a.Position, a.AssetType, a.ImageID, a.VideoID,
		a.Caption, a.Platform, a.Format, a.Date, a.IsHero, a.AltText,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create asset: %w", err)
	}
	return s.FindByID(id)
}

// Update validates and modifies an existing asset. The sibling hero check
// excludes the asset's own id.
func (s *AssetStore) Update(a *models.Asset) error {
	if err := s.validateForWrite(a, a.ID); err != nil {
		return err
	}

	_, err := s.db.Exec(`
		UPDATE case_assets SET
			position = $1, asset_type = $2, image_id = $3, video_id = $4,
			caption = $5, platform = $6, format = $7, date = $8,
			is_hero = $9, alt_text = $10
		WHERE id = $11
	`, a.Position, a.AssetType, a.ImageID, a.VideoID, a.Caption, a.Platform,
		a.Format, a.Date, a.IsHero, a.AltText, a.ID)
	if err != nil {
		return fmt.Errorf("update asset: %w", err)
	}
	return nil
}

// Delete removes an asset by ID.
func (s *AssetStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM case_assets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete asset: %w", err)
	}
	return nil
}

// DeleteMissing removes the case study's assets whose ids are not in keep.
// Used when an edited form no longer contains previously saved rows.
func (s *AssetStore) DeleteMissing(caseStudyID uuid.UUID, keep []uuid.UUID) error {
	if len(keep) == 0 {
		_, err := s.db.Exec(`DELETE FROM case_assets WHERE case_study_id = $1`, caseStudyID)
		if err != nil {
			return fmt.Errorf("delete assets: %w", err)
		}
		return nil
	}

	placeholders := ""
	args := []any{caseStudyID}
	for i, id := range keep {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+2)
		args = append(args, id)
	}

	_, err := s.db.Exec(`
		DELETE FROM case_assets
		WHERE case_study_id = $1 AND id NOT IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return fmt.Errorf("delete missing assets: %w", err)
	}
	return nil
}
