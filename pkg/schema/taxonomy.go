// Package schema holds the in-memory schema metadata store and the Bantotal
// naming-convention taxonomy it is organized around.
package schema

import (
	"strings"

	"github.com/bantotal-ai/bantotal-engine/pkg/models"
)

// prefixCategories maps Bantotal table-name prefixes to categories. Order
// matters only for documentation; prefixes are disjoint.
var prefixCategories = []struct {
	Prefix   string
	Category models.Category
}{
	{"FST", models.CategoryBasic},
	{"FSD", models.CategoryData},
	{"FSR", models.CategoryRelationship},
	{"FSE", models.CategoryExtension},
	{"FSH", models.CategoryHistorical},
	{"FSX", models.CategoryText},
	{"FSA", models.CategoryAuxiliary},
	{"FSI", models.CategoryInformation},
	{"FSM", models.CategoryMenu},
	{"FSN", models.CategoryNumerator},
}

// CategoryFor classifies a table name by its naming-convention prefix.
// Names outside the convention map to CategoryUnknown.
func CategoryFor(tableName string) models.Category {
	upper := strings.ToUpper(tableName)
	for _, pc := range prefixCategories {
		if strings.HasPrefix(upper, pc.Prefix) {
			return pc.Category
		}
	}
	return models.CategoryUnknown
}

// categoryAdjacency is the finite relation of category families scanned
// during structural relationship inference. Core data tables relate
// preferentially to basic and relationship tables (and to each other, since
// the composite keys of FSD tables share leading columns).
var categoryAdjacency = map[models.Category][]models.Category{
	models.CategoryBasic:        {models.CategoryBasic, models.CategoryRelationship},
	models.CategoryData:         {models.CategoryBasic, models.CategoryRelationship, models.CategoryData},
	models.CategoryRelationship: {models.CategoryBasic, models.CategoryData},
	models.CategoryExtension:    {models.CategoryData, models.CategoryBasic},
	models.CategoryHistorical:   {models.CategoryData, models.CategoryBasic},
}

// AdjacentCategories returns the category families a table of category c is
// allowed to relate to structurally. Categories without a dedicated entry
// fall back to basic tables only.
func AdjacentCategories(c models.Category) []models.Category {
	if adj, ok := categoryAdjacency[c]; ok {
		return adj
	}
	return []models.Category{models.CategoryBasic}
}

// aliasCodes is the deterministic two-letter alias prefix per category used
// for joined tables in generated SQL.
var aliasCodes = map[models.Category]string{
	models.CategoryBasic:        "tb",
	models.CategoryData:         "dt",
	models.CategoryRelationship: "rl",
	models.CategoryExtension:    "ex",
	models.CategoryHistorical:   "hs",
	models.CategoryText:         "tx",
	models.CategoryAuxiliary:    "ax",
	models.CategoryInformation:  "in",
	models.CategoryMenu:         "mn",
	models.CategoryNumerator:    "nm",
}

// AliasCode returns the two-letter alias code for a table. Tables outside
// the convention use the first two letters of their name, lowercased.
func AliasCode(tableName string) string {
	if code, ok := aliasCodes[CategoryFor(tableName)]; ok {
		return code
	}
	name := strings.ToLower(tableName)
	if len(name) >= 2 {
		return name[:2]
	}
	return name
}
