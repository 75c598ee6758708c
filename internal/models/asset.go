// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AssetType categorises a case asset for filtering and export context.
type AssetType string

const (
	AssetTypeAdScreenshot AssetType = "ad_screenshot"
	AssetTypeCreative     AssetType = "creative"
	AssetTypeDashboard    AssetType = "dashboard"
	AssetTypePress        AssetType = "press"
	AssetTypeVideo        AssetType = "video"
	AssetTypeVideoStill   AssetType = "video_still"
	AssetTypeOther        AssetType = "other"
)

// AssetTypes lists the selectable asset categories in form display order.
var AssetTypes = []AssetType{
	AssetTypeAdScreenshot,
	AssetTypeCreative,
	AssetTypeDashboard,
	AssetTypePress,
	AssetTypeVideo,
	AssetTypeVideoStill,
	AssetTypeOther,
}

// Asset is an ordered media line item owned by a case study. Exactly one of
// ImageID or VideoID must be set. Position is a persisted sequence number,
// not creation time.
type Asset struct {
	ID          uuid.UUID  `json:"id"`
	CaseStudyID uuid.UUID  `json:"case_study_id"`
	Position    int        `json:"position"`
	AssetType   AssetType  `json:"asset_type"`
	ImageID     *uuid.UUID `json:"image_id,omitempty"`
	VideoID     *uuid.UUID `json:"video_id,omitempty"`
	Caption     string     `json:"caption"`
	Platform    string     `json:"platform"`
	Format      string     `json:"format"`
	Date        string     `json:"date"`
	IsHero      bool       `json:"is_hero"`
	AltText     string     `json:"alt_text"`
	CreatedAt   time.Time  `json:"created_at"`
}

// HasImage returns true when the asset references an image.
func (a *Asset) HasImage() bool { return a.ImageID != nil }

// HasVideo returns true when the asset references a video document.
func (a *Asset) HasVideo() bool { return a.VideoID != nil }

// Validate checks the media-exclusivity invariant: an asset references
// either an image or a video, never both and never neither. The hero
// uniqueness rule needs sibling state and is checked by the asset store.
func (a *Asset) Validate() error {
	var verr ValidationError
	switch {
	case a.ImageID == nil && a.VideoID == nil:
		verr.Add("image", "An asset requires either an image or a video.")
	case a.ImageID != nil && a.VideoID != nil:
		verr.Add("video", "An asset may reference an image or a video, not both.")
	}
	if verr.Empty() {
		return nil
	}
	return &verr
}
