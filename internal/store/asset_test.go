// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"casebook/internal/models"
)

// TestAssetCreateRejectsSecondHero verifies the single-hero rule at the
// store level.
func TestAssetCreateRejectsSecondHero(t *testing.T) {
	db := testDB(t)
	assets := NewAssetStore(db)

	cs := createTestCase(t, db, fmt.Sprintf("Hero %s", token()))
	img := createTestImage(t, db)

	hero, err := assets.Create(&models.Asset{
		CaseStudyID: cs.ID,
		AssetType:   models.AssetTypeAdScreenshot,
		ImageID:     &img.ID,
		IsHero:      true,
	})
	if err != nil {
		t.Fatalf("Create(hero) error: %v", err)
	}

	_, err = assets.Create(&models.Asset{
		CaseStudyID: cs.ID,
		AssetType:   models.AssetTypeAdScreenshot,
		ImageID:     &img.ID,
		IsHero:      true,
		Position:    1,
	})
	verr := models.AsValidationError(err)
	if verr == nil {
		t.Fatalf("Create(second hero) = %v, want *ValidationError", err)
	}
	if verr.For("is_hero") == "" {
		t.Errorf("second hero rejection missing is_hero field error: %v", verr)
	}

	// Updating the existing hero must not trip its own sibling check.
	hero.Caption = "updated"
	if err := assets.Update(hero); err != nil {
		t.Errorf("Update(hero) error: %v", err)
	}
}

// TestAssetCreateRejectsBothMedia verifies media exclusivity reaches the
// caller as a field error.
func TestAssetCreateRejectsBothMedia(t *testing.T) {
	db := testDB(t)
	assets := NewAssetStore(db)

	cs := createTestCase(t, db, fmt.Sprintf("Exclusive %s", token()))
	img := createTestImage(t, db)

	_, err := assets.Create(&models.Asset{
		CaseStudyID: cs.ID,
		AssetType:   models.AssetTypeVideo,
		ImageID:     &img.ID,
		VideoID:     &img.ID,
	})
	verr := models.AsValidationError(err)
	if verr == nil {
		t.Fatalf("Create(image+video) = %v, want *ValidationError", err)
	}
}

// TestAssetDeleteMissing verifies that rows absent from keep are removed and
// kept rows survive.
func TestAssetDeleteMissing(t *testing.T) {
	db := testDB(t)
	assets := NewAssetStore(db)

	cs := createTestCase(t, db, fmt.Sprintf("Prune %s", token()))
	img := createTestImage(t, db)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		a, err := assets.Create(&models.Asset{
			CaseStudyID: cs.ID,
			AssetType:   models.AssetTypeAdScreenshot,
			ImageID:     &img.ID,
			Position:    i,
		})
		if err != nil {
			t.Fatalf("Create(asset %d) error: %v", i, err)
		}
		ids = append(ids, a.ID)
	}

	if err := assets.DeleteMissing(cs.ID, ids[:1]); err != nil {
		t.Fatalf("DeleteMissing() error: %v", err)
	}

	left, err := assets.ListByCase(cs.ID)
	if err != nil {
		t.Fatalf("ListByCase() error: %v", err)
	}
	if len(left) != 1 || left[0].ID != ids[0] {
		t.Fatalf("after DeleteMissing got %d rows", len(left))
	}

	// An empty keep list clears the whole set.
	if err := assets.DeleteMissing(cs.ID, nil); err != nil {
		t.Fatalf("DeleteMissing(nil) error: %v", err)
	}
	left, err = assets.ListByCase(cs.ID)
	if err != nil {
		t.Fatalf("ListByCase() error: %v", err)
	}
	if len(left) != 0 {
		t.Errorf("after DeleteMissing(nil) got %d rows", len(left))
	}
}

// TestAssetListByCaseOrder verifies position ordering.
func TestAssetListByCaseOrder(t *testing.T) {
	db := testDB(t)
	assets := NewAssetStore(db)

	cs := createTestCase(t, db, fmt.Sprintf("Order %s", token()))
	img := createTestImage(t, db)

	for _, pos := range []int{2, 0, 1} {
		if _, err := assets.Create(&models.Asset{
			CaseStudyID: cs.ID,
			AssetType:   models.AssetTypeAdScreenshot,
			ImageID:     &img.ID,
			Position:    pos,
		}); err != nil {
			t.Fatalf("Create(position %d) error: %v", pos, err)
		}
	}

	got, err := assets.ListByCase(cs.ID)
	if err != nil {
		t.Fatalf("ListByCase() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("ListByCase() returned %d rows, want 3", len(got))
	}
	for i, a := range got {
		if a.Position != i {
			t.Errorf("row %d has position %d", i, a.Position)
		}
	}
}
