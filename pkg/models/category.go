package models

// Category is the Bantotal naming-convention category of a table, derived
// from the table-name prefix (FST, FSD, FSR, ...).
type Category string

const (
	CategoryBasic        Category = "basic"        // FST - generic base tables
	CategoryData         Category = "data"         // FSD - core data
	CategoryRelationship Category = "relationship" // FSR - relations
	CategoryExtension    Category = "extension"    // FSE - extensions
	CategoryHistorical   Category = "historical"   // FSH - history
	CategoryText         Category = "text"         // FSX - free text
	CategoryAuxiliary    Category = "auxiliary"    // FSA - auxiliary
	CategoryInformation  Category = "information"  // FSI - informational
	CategoryMenu         Category = "menu"         // FSM - menus
	CategoryNumerator    Category = "numerator"    // FSN - numerators
	CategoryUnknown      Category = "unknown"      // anything outside the convention
)

// ValidCategories contains all naming-convention categories, ordered by
// relevance priority descending.
var ValidCategories = []Category{
	CategoryBasic,
	CategoryData,
	CategoryRelationship,
	CategoryExtension,
	CategoryHistorical,
	CategoryText,
	CategoryAuxiliary,
	CategoryInformation,
	CategoryMenu,
	CategoryNumerator,
}

// categoryPriorities mirrors the relevance scoring used when ranking tables
// during search: basic tables first, numerators last.
var categoryPriorities = map[Category]int{
	CategoryBasic:        100,
	CategoryData:         90,
	CategoryRelationship: 80,
	CategoryExtension:    70,
	CategoryHistorical:   60,
	CategoryText:         50,
	CategoryAuxiliary:    40,
	CategoryInformation:  30,
	CategoryMenu:         20,
	CategoryNumerator:    10,
}

// Priority returns the relevance priority of the category. Unknown
// categories rank below every convention category.
func (c Category) Priority() int {
	if p, ok := categoryPriorities[c]; ok {
		return p
	}
	return 5
}

// IsValidCategory checks if the given category is part of the convention.
func IsValidCategory(c Category) bool {
	for _, v := range ValidCategories {
		if v == c {
			return true
		}
	}
	return false
}
