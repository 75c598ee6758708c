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

// ChannelSpendStore handles database operations for per-channel spend rows.
type ChannelSpendStore struct {
	db *sql.DB
}

// NewChannelSpendStore creates a new ChannelSpendStore with the given database connection.
func NewChannelSpendStore(db *sql.DB) *ChannelSpendStore {
	return &ChannelSpendStore{db: db}
}

const channelSpendColumns = `id, case_study_id, position, channel,
	spend_currency, spend_amount, dates, notes, created_at`

func scanChannelSpend(scanner interface{ Scan(...any) error }) (*models.ChannelSpend, error) {
	var cs models.ChannelSpend
	err := scanner.Scan(
		&cs.ID, &cs.CaseStudyID, &cs.Position, &cs.Channel,
		&cs.SpendCurrency, &cs.SpendAmount, &cs.Dates, &cs.Notes, &cs.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

// ListByCase returns the channel spend rows of one case study in persisted
// position order.
func (s *ChannelSpendStore) ListByCase(caseStudyID uuid.UUID) ([]models.ChannelSpend, error) {
	rows, err := s.db.Query(`
		SELECT `+channelSpendColumns+` FROM case_channel_spend
		WHERE case_study_id = $1
		ORDER BY position, created_at
	`, caseStudyID)
	if err != nil {
		return nil, fmt.Errorf("list channel spend: %w", err)
	}
	defer rows.Close()

	var items []models.ChannelSpend
	for rows.Next() {
		cs, err := scanChannelSpend(rows)
		if err != nil {
			return nil, fmt.Errorf("scan channel spend: %w", err)
		}
		items = append(items, *cs)
	}
	return items, rows.Err()
}

// ListByCases returns channel spend rows for multiple case studies at once,
// keyed by case study ID. Used by the export pipeline.
func (s *ChannelSpendStore) ListByCases(caseStudyIDs []uuid.UUID) (map[uuid.UUID][]models.ChannelSpend, error) {
	if len(caseStudyIDs) == 0 {
		return nil, nil
	}

	placeholders, args := inClause(caseStudyIDs)
	rows, err := s.db.Query(`
		SELECT `+channelSpendColumns+` FROM case_channel_spend
		WHERE case_study_id IN (`+placeholders+`)
		ORDER BY case_study_id, position, created_at
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list channel spend by cases: %w", err)
	}
	defer rows.Close()

	result := make(map[uuid.UUID][]models.ChannelSpend)
	for rows.Next() {
		cs, err := scanChannelSpend(rows)
		if err != nil {
			return nil, fmt.Errorf("scan channel spend: %w", err)
		}
		result[cs.CaseStudyID] = append(result[cs.CaseStudyID], *cs)
	}
	return result, rows.Err()
}

// Create inserts a new channel spend row and returns it.
func (s *ChannelSpendStore) Create(cs *models.ChannelSpend) (*models.ChannelSpend, error) {
	result := &models.ChannelSpend{}
	err := s.db.QueryRow(`
		INSERT INTO case_channel_spend (case_study_id, position, channel,
			spend_currency, spend_amount, dates, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+channelSpendColumns+`
	`, cs.CaseStudyID, cs.Position, cs.Channel, cs.SpendCurrency,
		cs.SpendAmount, cs.Dates, cs.Notes,
	).Scan(
		&result.ID, &result.CaseStudyID, &result.Position, &result.Channel,
		&result.SpendCurrency, &result.SpendAmount, &result.Dates,
		&result.Notes, &result.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("create channel spend: %w", err)
	}
	return result, nil
}

// Replace swaps the channel spend rows of a case study for the given set,
// assigning positions from slice order, in one transaction.
func (s *ChannelSpendStore) Replace(caseStudyID uuid.UUID, items []models.ChannelSpend) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin channel spend replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM case_channel_spend WHERE case_study_id = $1`, caseStudyID); err != nil {
		return fmt.Errorf("clear channel spend: %w", err)
	}

	for i, cs := range items {
		if _, err := tx.Exec(`
			INSERT INTO case_channel_spend (case_study_id, position, channel,
				spend_currency, spend_amount, dates, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, caseStudyID, i, cs.Channel, cs.SpendCurrency, cs.SpendAmount,
			cs.Dates, cs.Notes); err != nil {
			return fmt.Errorf("insert channel spend %d: %w", i, err)
		}
	}

	return tx.Commit()
}
