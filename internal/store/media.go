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

// MediaStore handles database operations for uploaded media metadata.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore creates a new MediaStore with the given database connection.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

const mediaColumns = `id, filename, original_name, content_type, size_bytes,
	bucket, s3_key, title, created_at`

func scanMedia(scanner interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	err := scanner.Scan(
		&m.ID, &m.Filename, &m.OriginalName, &m.ContentType, &m.SizeBytes,
		&m.Bucket, &m.S3Key, &m.Title, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new media row and returns it with the generated ID.
func (s *MediaStore) Create(m *models.Media) (*models.Media, error) {
	result := &models.Media{}
	err := s.db.QueryRow(`
		INSERT INTO media (filename, original_name, content_type, size_bytes,
			bucket, s3_key, title)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+mediaColumns+`
	`, m.Filename, m.OriginalName, m.ContentType, m.SizeBytes, m.Bucket,
		m.S3Key, m.Title,
	).Scan(
		&result.ID, &result.Filename, &result.OriginalName, &result.ContentType,
		&result.SizeBytes, &result.Bucket, &result.S3Key, &result.Title,
		&result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create media: %w", err)
	}
	return result, nil
}

// FindByID retrieves a media item by its UUID. Returns nil if not found.
func (s *MediaStore) FindByID(id uuid.UUID) (*models.Media, error) {
	m, err := scanMedia(s.db.QueryRow(
		`SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by id: %w", err)
	}
	return m, nil
}

// FindByIDs returns media rows for multiple ids at once, keyed by id. Used
// for batch resolution in export and detail views.
func (s *MediaStore) FindByIDs(ids []uuid.UUID) (map[uuid.UUID]models.Media, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(ids)
	rows, err := s.db.Query(`
		SELECT `+mediaColumns+` FROM media WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("find media by ids: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID]models.Media)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		result[m.ID] = *m
	}
	return result, rows.Err()
}

// List returns all media metadata, newest first. Used by the admin asset
// pickers.
func (s *MediaStore) List() ([]models.Media, error) {
	rows, err := s.db.Query(`SELECT ` + mediaColumns + ` FROM media ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list media: %w", err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

// Delete removes a media row by ID. Returns the deleted row so the caller
// can clean up the stored object.
func (s *MediaStore) Delete(id uuid.UUID) (*models.Media, error) {
	m, err := scanMedia(s.db.QueryRow(
		`DELETE FROM media WHERE id = $1 RETURNING `+mediaColumns, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delete media: %w", err)
	}
	return m, nil
}
