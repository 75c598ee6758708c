// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Seed populates the reference tables with a starter set of organizations
// and sectors. It is a no-op when reference data already exists, so it is
// safe to run on every startup.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sectors").Scan(&count); err != nil {
		return fmt.Errorf("seed check sectors: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	sectors := []string{
		"Consumer Tech",
		"E-commerce",
		"Entertainment",
		"Finance",
		"Health & Wellness",
		"Travel",
	}
	for _, name := range sectors {
		if _, err := db.Exec(`
			INSERT INTO sectors (name) VALUES ($1)
			ON CONFLICT (name) DO NOTHING
		`, name); err != nil {
			return fmt.Errorf("seed insert sector %q: %w", name, err)
		}
	}

	slog.Info("database seeded with reference sectors", "count", len(sectors))
	return nil
}
