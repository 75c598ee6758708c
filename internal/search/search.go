// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search defines the indexing hook invoked after case study writes.
// The full-text index itself is an external service; this package only
// carries the notification contract so callers receive explicit dependencies
// instead of relying on implicit registration.
package search

import (
	"context"
	"log/slog"

	"casebook/internal/models"
)

// Indexer receives case study changes so an external full-text index can
// stay current. Implementations must tolerate being called on every save.
type Indexer interface {
	// Index upserts the case study in the external index.
	Index(ctx context.Context, cs *models.CaseStudy) error
	// Remove drops the case study from the external index.
	Remove(ctx context.Context, slug string) error
}

// Noop is an Indexer that only logs. Used when no external index is
// configured.
type Noop struct{}

// Index logs the update and succeeds.
func (Noop) Index(ctx context.Context, cs *models.CaseStudy) error {
	slog.Debug("search index skipped (no indexer configured)", "slug", cs.Slug)
	return nil
}

// Remove logs the removal and succeeds.
func (Noop) Remove(ctx context.Context, slug string) error {
	slog.Debug("search removal skipped (no indexer configured)", "slug", slug)
	return nil
}
