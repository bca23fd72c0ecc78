package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryRoundTrip(t *testing.T) {
	// For every canonical id, display name and back must return the id.
	for _, c := range Categories() {
		display := DisplayName(c.ID)
		assert.Equal(t, c.Display, display)
		assert.Equal(t, c.ID, CategoryID(display), "round trip for %s", c.ID)
	}
}

func TestCategoryIDNormalizesLegacyLabels(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"clothing", "fashion"},
		{"Apparel", "fashion"},
		{"  GADGETS  ", "electronics"},
		{"furniture", "home-living"},
		{"skincare", "beauty"},
		{"grocery", "groceries"},
		{"toys", "kids"},
		{"gym", "sports"},
		{"electronics", "electronics"},
		{"Fashion & Apparel", "fashion"},
		{"misc", CategoryOther},
		{"definitely not a category", CategoryOther},
		{"", CategoryOther},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryID(tt.label))
		})
	}
}

func TestDisplayNameUnknownBucketsToOthers(t *testing.T) {
	assert.Equal(t, "Others", DisplayName("no-such-category"))
}
