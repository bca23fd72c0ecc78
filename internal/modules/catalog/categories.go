package catalog

import "strings"

// CategoryOther is the catch-all bucket for labels nothing else matches.
const CategoryOther = "others"

// Category pairs a canonical category id with its display name.
type Category struct {
	ID      string `json:"id"`
	Display string `json:"displayName"`
}

// The canonical category set is fixed at build time. Legacy free-text
// labels are folded into it via the alias table below.
var categories = []Category{
	{ID: "electronics", Display: "Electronics"},
	{ID: "fashion", Display: "Fashion & Apparel"},
	{ID: "home-living", Display: "Home & Living"},
	{ID: "beauty", Display: "Beauty & Personal Care"},
	{ID: "groceries", Display: "Groceries"},
	{ID: "kids", Display: "Kids & Toys"},
	{ID: "sports", Display: "Sports & Outdoors"},
	{ID: CategoryOther, Display: "Others"},
}

// legacyAliases maps labels from the old catalog onto canonical ids.
var legacyAliases = map[string]string{
	"electronic":    "electronics",
	"gadgets":       "electronics",
	"phones":        "electronics",
	"accessories":   "electronics",
	"clothing":      "fashion",
	"apparel":       "fashion",
	"shoes":         "fashion",
	"bags":          "fashion",
	"home":          "home-living",
	"furniture":     "home-living",
	"kitchen":       "home-living",
	"decor":         "home-living",
	"cosmetics":     "beauty",
	"skincare":      "beauty",
	"haircare":      "beauty",
	"food":          "groceries",
	"grocery":       "groceries",
	"drinks":        "groceries",
	"toys":          "kids",
	"baby":          "kids",
	"fitness":       "sports",
	"outdoor":       "sports",
	"gym":           "sports",
	"other":         CategoryOther,
	"misc":          CategoryOther,
	"uncategorized": CategoryOther,
	"general":       CategoryOther,
}

var (
	displayByID = map[string]string{}
	idByLabel   = map[string]string{}
)

func init() {
	for _, c := range categories {
		displayByID[c.ID] = c.Display
		idByLabel[c.ID] = c.ID
		idByLabel[strings.ToLower(c.Display)] = c.ID
	}
	for label, id := range legacyAliases {
		idByLabel[label] = id
	}
}

// Categories returns the canonical category set.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// CategoryID normalizes any label — canonical id, display name or legacy
// alias — to a canonical category id. Unknown labels bucket to others.
func CategoryID(label string) string {
	if id, ok := idByLabel[strings.ToLower(strings.TrimSpace(label))]; ok {
		return id
	}
	return CategoryOther
}

// DisplayName returns the display name for a canonical id, resolving
// non-canonical input through CategoryID first.
func DisplayName(id string) string {
	return displayByID[CategoryID(id)]
}
