// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package export

import (
	"fmt"

	"github.com/google/uuid"

	"casebook/internal/store"
)

// StoreRenditions resolves rendition URLs from the precomputed rendition
// rows written by the external rendering service.
type StoreRenditions struct {
	renditions *store.RenditionStore
	fileURL    func(bucket, key string) string
	bucket     string
}

// NewStoreRenditions creates a resolver over the rendition store. bucket is
// the media bucket holding rendition objects.
func NewStoreRenditions(renditions *store.RenditionStore, fileURL func(bucket, key string) string, bucket string) *StoreRenditions {
	return &StoreRenditions{renditions: renditions, fileURL: fileURL, bucket: bucket}
}

// Resolve returns the URL of the named rendition, or an error when the
// rendering service has not produced it. Callers treat errors as a null
// entry for that rendition only.
func (r *StoreRenditions) Resolve(mediaID uuid.UUID, spec string) (string, error) {
	rendition, err := r.renditions.FindBySpec(mediaID, spec)
	if err != nil {
		return "", err
	}
	if rendition == nil {
		return "", fmt.Errorf("rendition %s not available for media %s", spec, mediaID)
	}
	return r.fileURL(r.bucket, rendition.S3Key), nil
}
