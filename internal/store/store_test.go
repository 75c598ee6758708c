// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// store_test.go provides a shared test database helper for all store
// integration tests. Tests are skipped if PostgreSQL is not available.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"testing"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"casebook/internal/database"
	"casebook/internal/models"
)

// testDSN returns the PostgreSQL connection string for testing. Uses
// environment variables with defaults matching local development.
func testDSN() string {
	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "casebook")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "casebook")
	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test database and runs migrations. If the
// database is unavailable, the test is skipped. A cleanup function is
// registered to close the connection when the test finishes.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", testDSN())
	if err != nil {
		t.Skipf("skipping integration test: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping integration test: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// token returns a short unique suffix so concurrent test runs never collide
// on slugs or names.
func token() string {
	return uuid.NewString()[:8]
}

// createTestCase inserts a minimal valid case study and registers cleanup.
func createTestCase(t *testing.T, db *sql.DB, title string) *models.CaseStudy {
	t.Helper()

	cases := NewCaseStudyStore(db)
	created, err := cases.Create(&models.CaseStudy{
		Title:           title,
		Confidentiality: models.ConfidentialityPublic,
		SpendCurrency:   models.CurrencyGBP,
	})
	if err != nil {
		t.Fatalf("create test case: %v", err)
	}
	t.Cleanup(func() { cases.Delete(created.ID) })
	return created
}

// createTestImage inserts a media row for asset tests and registers cleanup.
func createTestImage(t *testing.T, db *sql.DB) *models.Media {
	t.Helper()

	media := NewMediaStore(db)
	m, err := media.Create(&models.Media{
		Filename:     fmt.Sprintf("test-%s.png", token()),
		OriginalName: "test.png",
		ContentType:  "image/png",
		SizeBytes:    128,
		Bucket:       "casebook-media",
		S3Key:        fmt.Sprintf("test/%s.png", token()),
		Title:        "Test image",
	})
	if err != nil {
		t.Fatalf("create test media: %v", err)
	}
	t.Cleanup(func() { media.Delete(m.ID) })
	return m
}
