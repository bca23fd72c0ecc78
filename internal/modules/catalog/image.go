package catalog

import (
	"fmt"

	"github.com/soko-labs/storefront-backend/internal/apperr"
)

// ImageKind discriminates the two image shapes a product can carry.
type ImageKind string

const (
	ImageLegacy ImageKind = "legacy" // bare URL from the old catalog
	ImageCDN    ImageKind = "cdn"    // id + URL on the media service
)

// ProductImage is the tagged union of a legacy URL and a CDN descriptor.
// It is validated once at the write boundary; everything downstream can
// rely on the invariants per kind.
type ProductImage struct {
	Kind     ImageKind `json:"kind"`
	URL      string    `json:"url"`
	PublicID string    `json:"publicId,omitempty"`
	Alt      string    `json:"alt,omitempty"`
}

func (img ProductImage) validate() error {
	switch img.Kind {
	case ImageLegacy:
		if img.URL == "" {
			return fmt.Errorf("legacy image: url is required")
		}
	case ImageCDN:
		if img.PublicID == "" {
			return fmt.Errorf("cdn image: publicId is required")
		}
		if img.URL == "" {
			return fmt.Errorf("cdn image: url is required")
		}
	default:
		return fmt.Errorf("unknown image kind %q", img.Kind)
	}
	return nil
}

// CDNImagePayload is the wire shape for a media-service image reference.
type CDNImagePayload struct {
	PublicID string `json:"publicId"`
	URL      string `json:"url"`
	Alt      string `json:"alt,omitempty"`
}

// normalizeImages folds the two payload shapes into the tagged union and
// rejects a completely empty image set or a malformed CDN descriptor.
func normalizeImages(legacy []string, cdn []CDNImagePayload) ([]ProductImage, error) {
	images := make([]ProductImage, 0, len(legacy)+len(cdn))
	for i, url := range legacy {
		img := ProductImage{Kind: ImageLegacy, URL: url}
		if err := img.validate(); err != nil {
			return nil, apperr.Validationf("images[%d]: %v", i, err)
		}
		images = append(images, img)
	}
	for i, d := range cdn {
		img := ProductImage{Kind: ImageCDN, URL: d.URL, PublicID: d.PublicID, Alt: d.Alt}
		if err := img.validate(); err != nil {
			return nil, apperr.Validationf("cloudinaryImages[%d]: %v", i, err)
		}
		images = append(images, img)
	}
	if len(images) == 0 {
		return nil, apperr.Validation("a product needs at least one image")
	}
	return images, nil
}
