package models

import "strings"

// Category is the slug used in the content sheet's category column
type Category string

const (
	CategoryGreetings   Category = "greetings"
	CategoryQuestions   Category = "questions"
	CategoryDirections  Category = "directions"
	CategoryFood        Category = "food"
	CategoryNumbers     Category = "numbers"
	CategoryShopping    Category = "shopping"
	CategoryEmergencies Category = "emergencies"
	CategorySocial      Category = "social"
	CategoryFamily      Category = "family"
	CategoryMisc        Category = "misc"
)

// DefaultCategory receives rows whose category is missing or unknown
const DefaultCategory = CategoryMisc

var categoryLabels = map[Category]string{
	CategoryGreetings:   "Greetings & Introductions",
	CategoryQuestions:   "Common Questions & Responses",
	CategoryDirections:  "Directions & Transportation",
	CategoryFood:        "Food & Dining",
	CategoryNumbers:     "Numbers, Time & Dates",
	CategoryShopping:    "Shopping & Money",
	CategoryEmergencies: "Emergencies & Health",
	CategorySocial:      "Social / Small Talk",
	CategoryFamily:      "Family & People",
	CategoryMisc:        "Miscellaneous",
}

// Categories returns the known categories in display order
func Categories() []Category {
	return []Category{
		CategoryGreetings,
		CategoryQuestions,
		CategoryDirections,
		CategoryFood,
		CategoryNumbers,
		CategoryShopping,
		CategoryEmergencies,
		CategorySocial,
		CategoryFamily,
		CategoryMisc,
	}
}

// NormalizeCategory maps a raw sheet value onto a known category.
// Unknown or empty values fall back to DefaultCategory.
func NormalizeCategory(raw string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := categoryLabels[c]; ok {
		return c
	}
	return DefaultCategory
}

// Label returns the human readable name of the category
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return categoryLabels[DefaultCategory]
}
