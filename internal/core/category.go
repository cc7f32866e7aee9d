package core

import "strings"

const (
	Food          Category = "food"
	Transport     Category = "transport"
	Entertainment Category = "entertainment"
	Stationery    Category = "stationery"
	Rent          Category = "rent"
	Clothing      Category = "clothing"
	Health        Category = "health"
	Other         Category = "other"
)

type (
	// Category is the fixed classification of an expense.
	Category string

	// CategoryInfo is the display metadata used to render category badges.
	CategoryInfo struct {
		Key   Category
		Label string
		Color string
	}
)

// categoryTable keeps display order.
var categoryTable = []CategoryInfo{
	{Key: Food, Label: "🍕 Food & Dining", Color: "#ff6b6b"},
	{Key: Transport, Label: "🚌 Transport", Color: "#4ecdc4"},
	{Key: Entertainment, Label: "🎬 Entertainment", Color: "#45b7d1"},
	{Key: Stationery, Label: "📚 Stationery", Color: "#96ceb4"},
	{Key: Rent, Label: "🏠 Rent & Bills", Color: "#ffeaa7"},
	{Key: Clothing, Label: "👕 Clothing", Color: "#dda0dd"},
	{Key: Health, Label: "💊 Health & Medical", Color: "#98d8c8"},
	{Key: Other, Label: "🔧 Other", Color: "#a29bfe"},
}

// Categories returns the full category table in display order.
func Categories() []CategoryInfo {
	return append([]CategoryInfo(nil), categoryTable...)
}

// ParseCategory normalizes s and reports whether it names a known category.
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	return c, c.Valid()
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	_, ok := c.info()
	return ok
}

// Label returns the human-readable name, or the raw key for unknown values.
func (c Category) Label() string {
	if info, ok := c.info(); ok {
		return info.Label
	}
	return string(c)
}

// Color returns the accent colour used for the category badge.
func (c Category) Color() string {
	if info, ok := c.info(); ok {
		return info.Color
	}
	return ""
}

// Icon is the first token of the label.
func (c Category) Icon() string {
	label := c.Label()
	if i := strings.IndexByte(label, ' '); i > 0 {
		return label[:i]
	}
	return label
}

func (c Category) String() string {
	return string(c)
}

func (c Category) info() (CategoryInfo, bool) {
	for _, info := range categoryTable {
		if info.Key == c {
			return info, true
		}
	}
	return CategoryInfo{}, false
}
