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

// RenditionStore handles database operations for precomputed image
// renditions. The rendering service writes these rows; this module reads
// them to resolve export URLs.
type RenditionStore struct {
	db *sql.DB
}

// NewRenditionStore creates a new RenditionStore with the given database connection.
func NewRenditionStore(db *sql.DB) *RenditionStore {
	return &RenditionStore{db: db}
}

const renditionColumns = `id, media_id, spec, s3_key, width, height, created_at`

func scanRendition(scanner interface{ Scan(...any) error }) (*models.Rendition, error) {
	var r models.Rendition
	err := scanner.Scan(
		&r.ID, &r.MediaID, &r.Spec, &r.S3Key, &r.Width, &r.Height, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateBatch inserts multiple renditions in a single transaction. Used
// after the rendering service produces all size variants for an image.
func (s *RenditionStore) CreateBatch(renditions []models.Rendition) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rendition batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO renditions (media_id, spec, s3_key, width, height)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("prepare rendition insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range renditions {
		if _, err := stmt.Exec(r.MediaID, r.Spec, r.S3Key, r.Width, r.Height); err != nil {
			return fmt.Errorf("insert rendition %s: %w", r.Spec, err)
		}
	}

	return tx.Commit()
}

// FindByMediaID returns all renditions for a media item, ordered by width.
func (s *RenditionStore) FindByMediaID(mediaID uuid.UUID) ([]models.Rendition, error) {
	rows, err := s.db.Query(`
		SELECT `+renditionColumns+` FROM renditions
		WHERE media_id = $1
		ORDER BY width ASC
	`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("find renditions by media: %w", err)
	}
	defer rows.Close()

	var renditions []models.Rendition
	for rows.Next() {
		r, err := scanRendition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rendition: %w", err)
		}
		renditions = append(renditions, *r)
	}
	return renditions, rows.Err()
}

// FindBySpec returns the rendition of a media item matching one named size
// spec. Returns nil if the rendering service has not produced it.
func (s *RenditionStore) FindBySpec(mediaID uuid.UUID, spec string) (*models.Rendition, error) {
	r, err := scanRendition(s.db.QueryRow(`
		SELECT `+renditionColumns+` FROM renditions
		WHERE media_id = $1 AND spec = $2
	`, mediaID, spec))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find rendition %s: %w", spec, err)
	}
	return r, nil
}

// FindByMediaIDs returns renditions for multiple media items at once, keyed
// by media ID. Used for batch resolution during export.
func (s *RenditionStore) FindByMediaIDs(mediaIDs []uuid.UUID) (map[uuid.UUID][]models.Rendition, error) {
	if len(mediaIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(mediaIDs)
	rows, err := s.db.Query(`
		SELECT `+renditionColumns+` FROM renditions
		WHERE media_id IN (`+placeholders+`)
		ORDER BY media_id, width ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("find renditions by media ids: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]models.Rendition)
	for rows.Next() {
		r, err := scanRendition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan rendition: %w", err)
		}
		result[r.MediaID] = append(result[r.MediaID], *r)
	}
	return result, rows.Err()
}
