package services

import (
	"regexp"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/schema"
)

// conceptTables maps business concepts mentioned in queries to the Bantotal
// tables that hold them. The first table of each entry is the primary one.
var conceptTables = map[string][]string{
	// financial operations
	"pagos":         {"FSD010"},
	"operaciones":   {"FSD010"},
	"transacciones": {"FSD010"},
	"payments":      {"FSD010"},

	// term operations
	"plazos":      {"FSD601"},
	"depositos":   {"FSD601"},
	"inversiones": {"FSD601"},
	"deposits":    {"FSD601"},

	// customers and persons
	"clientes": {"FST002", "FST003"},
	"abonados": {"FST003", "FST002"},
	"usuarios": {"FST002"},
	"personas": {"FST002", "FST023"},
	"customer": {"FST002"},
	"client":   {"FST002"},

	// organizational structure
	"sucursales": {"FST001"},
	"cuentas":    {"FST001", "FST002"},
	"branch":     {"FST001"},
	"account":    {"FST001"},

	// products and services
	"productos": {"FST023", "FST024"},
	"servicios": {"FST023"},
	"genero":    {"FST023"},
}

// tableNamePattern matches explicit Bantotal table names in query text.
var tableNamePattern = regexp.MustCompile(`(?i)\bFS[TDRSEHXAIMN]\d+\b`)

// tablePhrasePatterns extract a table name mentioned after a keyword, e.g.
// "tabla abonados" or "from FSD601".
var tablePhrasePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\btabla\s+(\w+)`),
	regexp.MustCompile(`(?i)\btable\s+(\w+)`),
	regexp.MustCompile(`(?i)\bfrom\s+(\w+)`),
	regexp.MustCompile(`(?i)\binto\s+(\w+)`),
}

// TableResolver maps a free-text query to a target table registered in the
// schema store: explicit Bantotal names first, then business concepts, then
// "tabla <name>" phrases.
type TableResolver struct {
	store  *schema.Store
	logger *zap.Logger
}

// NewTableResolver creates a TableResolver over the given store.
func NewTableResolver(store *schema.Store, logger *zap.Logger) *TableResolver {
	return &TableResolver{store: store, logger: logger.Named("resolver")}
}

// Resolve returns the target table name for the query and whether one was
// found. Concept matches prefer tables actually present in the store.
func (r *TableResolver) Resolve(query string) (string, bool) {
	if m := tableNamePattern.FindString(query); m != "" {
		return strings.ToUpper(m), true
	}

	lower := strings.ToLower(query)
	for _, tok := range tokenSplitter.Split(lower, -1) {
		if tok == "" {
			continue
		}
		candidates, ok := conceptTables[tok]
		if !ok {
			// English plurals singularize ("customers" -> "customer");
			// Spanish plurals are listed directly in the concept map.
			candidates, ok = conceptTables[inflection.Singular(tok)]
		}
		if !ok {
			continue
		}
		for _, table := range candidates {
			if r.store.Has(table) {
				return table, true
			}
		}
		return candidates[0], true
	}

	for _, pattern := range tablePhrasePatterns {
		if m := pattern.FindStringSubmatch(query); len(m) == 2 && r.store.Has(m[1]) {
			return strings.ToUpper(m[1]), true
		}
	}

	r.logger.Debug("No target table resolved", zap.String("query", lower))
	return "", false
}
