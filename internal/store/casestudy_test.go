// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"testing"

	"casebook/internal/models"
)

// TestCaseStudyCreateAssignsSlugAndSortDate verifies slug generation from
// the title and sort-date derivation on insert.
func TestCaseStudyCreateAssignsSlugAndSortDate(t *testing.T) {
	db := testDB(t)
	cases := NewCaseStudyStore(db)

	title := fmt.Sprintf("Slug Test %s", token())
	created, err := cases.Create(&models.CaseStudy{
		Title:           title,
		DateStart:       "January 2025",
		DateEnd:         "March 2025",
		Confidentiality: models.ConfidentialityPublic,
		SpendCurrency:   models.CurrencyGBP,
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	t.Cleanup(func() { cases.Delete(created.ID) })

	if created.Slug == "" {
		t.Fatal("Create() left slug empty")
	}
	if created.SortDate != "March 2025" {
		t.Errorf("sort_date = %q, want %q", created.SortDate, "March 2025")
	}
}

// TestCaseStudySlugCollision verifies the numeric suffix on duplicate titles.
func TestCaseStudySlugCollision(t *testing.T) {
	db := testDB(t)
	cases := NewCaseStudyStore(db)

	title := fmt.Sprintf("Collision Test %s", token())
	first := createTestCase(t, db, title)
	second := createTestCase(t, db, title)

	if second.Slug == first.Slug {
		t.Fatalf("duplicate slug %q assigned twice", first.Slug)
	}
	if want := first.Slug + "-2"; second.Slug != want {
		t.Errorf("second slug = %q, want %q", second.Slug, want)
	}

	// Editing must keep the stored slug even when the title changes.
	second.Title = title + " renamed"
	if err := cases.Update(second); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	reloaded, err := cases.FindByID(second.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("FindByID() = %v, %v", reloaded, err)
	}
	if reloaded.Slug != second.Slug {
		t.Errorf("slug changed on update: %q -> %q", second.Slug, reloaded.Slug)
	}
}

// TestCaseStudyCreateRejectsInvalid verifies that validation failures reach
// the caller as field errors and insert nothing.
func TestCaseStudyCreateRejectsInvalid(t *testing.T) {
	db := testDB(t)
	cases := NewCaseStudyStore(db)

	before, err := cases.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}

	_, err = cases.Create(&models.CaseStudy{Title: "   "})
	verr := models.AsValidationError(err)
	if verr == nil {
		t.Fatalf("Create(no title) = %v, want *ValidationError", err)
	}
	if verr.For("title") == "" {
		t.Errorf("missing title field error: %v", verr)
	}

	after, err := cases.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if after != before {
		t.Errorf("invalid create changed row count: %d -> %d", before, after)
	}
}

// TestCaseStudyFindBySlugMissing verifies the nil-without-error contract.
func TestCaseStudyFindBySlugMissing(t *testing.T) {
	db := testDB(t)
	cases := NewCaseStudyStore(db)

	cs, err := cases.FindBySlug("no-such-slug-" + token())
	if err != nil {
		t.Fatalf("FindBySlug() error: %v", err)
	}
	if cs != nil {
		t.Errorf("FindBySlug(missing) = %+v, want nil", cs)
	}
}

// TestCaseStudyListTagFilter verifies the tag filter joins through the link
// table.
func TestCaseStudyListTagFilter(t *testing.T) {
	db := testDB(t)
	cases := NewCaseStudyStore(db)
	tags := NewTagStore(db)

	tag := "filter-" + token()
	tagged := createTestCase(t, db, fmt.Sprintf("Tagged %s", token()))
	createTestCase(t, db, fmt.Sprintf("Untagged %s", token()))

	if err := tags.Set(tagged.ID, []string{tag}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}

	got, err := cases.List(Filter{Tag: tag})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 1 || got[0].ID != tagged.ID {
		t.Errorf("List(tag=%s) returned %d rows", tag, len(got))
	}
}

// TestCaseStudyListOrder verifies the canonical listing order shared by the
// public index and the export pipeline: sort_date descending, then date_end
// and date_start descending, then title ascending as the final tie-break.
func TestCaseStudyListOrder(t *testing.T) {
	db := testDB(t)
	cases := NewCaseStudyStore(db)

	suffix := token()
	create := func(title, dateEnd string) *models.CaseStudy {
		t.Helper()
		created, err := cases.Create(&models.CaseStudy{
			Title:           fmt.Sprintf("Ordering %s %s", title, suffix),
			DateEnd:         dateEnd,
			Confidentiality: models.ConfidentialityPublic,
			SpendCurrency:   models.CurrencyGBP,
		})
		if err != nil {
			t.Fatalf("Create(%s) error: %v", title, err)
		}
		t.Cleanup(func() { cases.Delete(created.ID) })
		return created
	}

	// Dates are free-text labels ordered lexicographically; these sort
	// cleanly. B and A tie on every date field, so title decides.
	newest := create("C", "2025-03")
	later := create("B", "2025-01")
	earlier := create("A", "2025-01")

	got, err := cases.List(Filter{Query: suffix})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List() returned %d rows, want 3", len(got))
	}
	want := []string{newest.Slug, earlier.Slug, later.Slug}
	for i, cs := range got {
		if cs.Slug != want[i] {
			t.Errorf("row %d = %s, want %s", i, cs.Slug, want[i])
		}
	}
}

// TestTagSetReplacesAndDedupes verifies replace semantics and
// case-insensitive deduplication.
func TestTagSetReplacesAndDedupes(t *testing.T) {
	db := testDB(t)
	tags := NewTagStore(db)

	cs := createTestCase(t, db, fmt.Sprintf("Tags %s", token()))
	suffix := token()

	if err := tags.Set(cs.ID, []string{"lorem-" + suffix, "Lorem-" + suffix, "", " ipsum-" + suffix}); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, err := tags.ListByCase(cs.ID)
	if err != nil {
		t.Fatalf("ListByCase() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("tags after dedupe = %v, want 2 entries", got)
	}

	if err := tags.Set(cs.ID, []string{"only-" + suffix}); err != nil {
		t.Fatalf("Set() replace error: %v", err)
	}
	got, err = tags.ListByCase(cs.ID)
	if err != nil {
		t.Fatalf("ListByCase() error: %v", err)
	}
	if len(got) != 1 || got[0] != "only-"+suffix {
		t.Errorf("tags after replace = %v", got)
	}
}

// TestCaseStudyDeleteCascades verifies child rows go with the aggregate.
func TestCaseStudyDeleteCascades(t *testing.T) {
	db := testDB(t)
	cases := NewCaseStudyStore(db)
	metrics := NewMetricStore(db)

	cs := createTestCase(t, db, fmt.Sprintf("Cascade %s", token()))
	if err := metrics.Replace(cs.ID, []models.Metric{
		{MetricName: "ROAS", Value: "3.2"},
	}); err != nil {
		t.Fatalf("Replace() error: %v", err)
	}

	if err := cases.Delete(cs.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	left, err := metrics.ListByCase(cs.ID)
	if err != nil {
		t.Fatalf("ListByCase() error: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("%d metric rows survived the cascade", len(left))
	}
}
