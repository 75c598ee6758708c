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

// MetricStore handles database operations for case metrics.
type MetricStore struct {
	db *sql.DB
}

// NewMetricStore creates a new MetricStore with the given database connection.
func NewMetricStore(db *sql.DB) *MetricStore {
	return &MetricStore{db: db}
}

const metricColumns = `id, case_study_id, position, metric_name, value,
	timeframe, source, notes, created_at`

func scanMetric(scanner interface{ Scan(...any) error }) (*models.Metric, error) {
	var m models.Metric
	err := scanner.Scan(
		&m.ID, &m.CaseStudyID, &m.Position, &m.MetricName, &m.Value,
		&m.Timeframe, &m.Source, &m.Notes, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByCase returns the metrics of one case study in persisted position order.
func (s *MetricStore) ListByCase(caseStudyID uuid.UUID) ([]models.Metric, error) {
	rows, err := s.db.Query(`
		SELECT `+metricColumns+` FROM case_metrics
		WHERE case_study_id = $1
		ORDER BY position, created_at
	`, caseStudyID)
	if err != nil {
		return nil, fmt.Errorf("list metrics: %w", err)
	}
	defer rows.Close()

	var metrics []models.Metric
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		metrics = append(metrics, *m)
	}
	return metrics, rows.Err()
}

// ListByCases returns metrics for multiple case studies at once, keyed by
// case study ID. Used by the export pipeline.
func (s *MetricStore) ListByCases(caseStudyIDs []uuid.UUID) (map[uuid.UUID][]models.Metric, error) {
	if len(caseStudyIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(caseStudyIDs)
	rows, err := s.db.Query(`
		SELECT `+metricColumns+` FROM case_metrics
		WHERE case_study_id IN (`+placeholders+`)
		ORDER BY case_study_id, position, created_at
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list metrics by cases: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]models.Metric)
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, fmt.Errorf("scan metric: %w", err)
		}
		result[m.CaseStudyID] = append(result[m.CaseStudyID], *m)
	}
	return result, rows.Err()
}

// Create inserts a new metric and returns the stored row.
func (s *MetricStore) Create(m *models.Metric) (*models.Metric, error) {
	result := &models.Metric{}
	err := s.db.QueryRow(`
		INSERT INTO case_metrics (case_study_id, position, metric_name, value,
			timeframe, source, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+metricColumns+`
	`, m.CaseStudyID, m.Position, m.MetricName, m.Value, m.Timeframe,
		m.Source, m.Notes,
	).Scan(
		&result.ID, &result.CaseStudyID, &result.Position, &result.MetricName,
		&result.Value, &result.Timeframe, &result.Source, &result.Notes,
		&result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create metric: %w", err)
	}
	return result, nil
}

// Replace swaps the metric rows of a case study for the given set, assigning
// positions from slice order. Runs in one transaction so a failed save never
// leaves a partial collection.
func (s *MetricStore) Replace(caseStudyID uuid.UUID, metrics []models.Metric) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin metric replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM case_metrics WHERE case_study_id = $1`, caseStudyID); err != nil {
		return fmt.Errorf("clear metrics: %w", err)
	}

	for i, m := range metrics {
		if _, err := tx.Exec(`
			INSERT INTO case_metrics (case_study_id, position, metric_name,
				value, timeframe, source, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, caseStudyID, i, m.MetricName, m.Value, m.Timeframe, m.Source, m.Notes); err != nil {
			return fmt.Errorf("insert metric %d: %w", i, err)
		}
	}

	return tx.Commit()
}
