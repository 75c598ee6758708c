// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// TagStore manages the free-text tag set and its case-study links. Tags are
// unordered in storage; reads return them in stable tag-id order.
type TagStore struct {
	db *sql.DB
}

// NewTagStore creates a new TagStore with the given database connection.
func NewTagStore(db *sql.DB) *TagStore {
	return &TagStore{db: db}
}

// Set replaces the tag set of a case study with the given names. Names are
// trimmed, empty entries dropped, and tag rows created on demand. Runs in a
// single transaction so the link table never holds a partial set.
func (s *TagStore) Set(caseStudyID uuid.UUID, names []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tag set: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM case_study_tags WHERE case_study_id = $1`, caseStudyID); err != nil {
		return fmt.Errorf("clear tags: %w", err)
	}

	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true

		var tagID int64
		err := tx.QueryRow(`
			INSERT INTO tags (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id
		`, name).Scan(&tagID)
		if err != nil {
			return fmt.Errorf("upsert tag %q: %w", name, err)
		}

		if _, err := tx.Exec(`
			INSERT INTO case_study_tags (case_study_id, tag_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING
		`, caseStudyID, tagID); err != nil {
			return fmt.Errorf("link tag %q: %w", name, err)
		}
	}

	return tx.Commit()
}

// ListByCase returns the tag names of one case study in tag-id order.
func (s *TagStore) ListByCase(caseStudyID uuid.UUID) ([]string, error) {
	rows, err := s.db.Query(`
		SELECT t.name FROM tags t
		JOIN case_study_tags cst ON cst.tag_id = t.id
		WHERE cst.case_study_id = $1
		ORDER BY t.id
	`, caseStudyID)
	if err != nil {
		return nil, fmt.Errorf("list tags by case: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// ListByCases returns tag names for multiple case studies at once, keyed by
// case study ID. Used by the export pipeline to avoid per-case queries.
func (s *TagStore) ListByCases(caseStudyIDs []uuid.UUID) (map[uuid.UUID][]string, error) {
	if len(caseStudyIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(caseStudyIDs)
	rows, err := s.db.Query(`
		SELECT cst.case_study_id, t.name FROM tags t
		JOIN case_study_tags cst ON cst.tag_id = t.id
		WHERE cst.case_study_id IN (`+placeholders+`)
		ORDER BY cst.case_study_id, t.id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tags by cases: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]string)
	for rows.Next() {
		var caseID uuid.UUID
		var name string
		if err := rows.Scan(&caseID, &name); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		result[caseID] = append(result[caseID], name)
	}
	return result, rows.Err()
}

// inClause builds a "$1, $2, …" placeholder list and matching args slice
// for an IN query over UUIDs.
func inClause(ids []uuid.UUID) (string, []any) {
	placeholders := ""
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	return placeholders, args
}
