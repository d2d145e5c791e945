package services

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/models"
	"github.com/bantotal-ai/bantotal-engine/pkg/schema"
)

// DefaultMaxRelationships matches the system-wide join cap.
const DefaultMaxRelationships = 3

// MinStructuralMatch is the minimum shared leading key columns for a
// structural match. A single shared column (typically the company code) is
// not evidence of a relationship on its own.
const MinStructuralMatch = 2

// RelationshipInferencer discovers candidate related tables for a target
// table, from declared foreign keys first and from shared leading
// primary-key columns when declarations are absent or incomplete.
type RelationshipInferencer struct {
	store  *schema.Store
	logger *zap.Logger
}

// NewRelationshipInferencer creates a RelationshipInferencer over the given
// schema store.
func NewRelationshipInferencer(store *schema.Store, logger *zap.Logger) *RelationshipInferencer {
	return &RelationshipInferencer{
		store:  store,
		logger: logger.Named("relationships"),
	}
}

// FindRelationships returns up to maxResults candidates for the named table,
// ranked by matched-column count descending, declared FKs before structural
// matches, then remote table name ascending. A table with no candidates
// returns an empty slice; an unregistered table returns ErrUnknownTable.
func (ri *RelationshipInferencer) FindRelationships(tableName string, maxResults int) ([]models.RelationshipCandidate, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxRelationships
	}

	table, err := ri.store.Table(tableName)
	if err != nil {
		return nil, err
	}

	candidates := ri.declaredCandidates(table)
	if len(candidates) < maxResults {
		candidates = append(candidates, ri.structuralCandidates(table, candidates)...)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Less(candidates[j])
	})
	if len(candidates) > maxResults {
		candidates = candidates[:maxResults]
	}
	return candidates, nil
}

// declaredCandidates yields one candidate per declared foreign key whose
// remote table is present in the store. Foreign keys pointing outside the
// introspected schema are skipped, not an error.
func (ri *RelationshipInferencer) declaredCandidates(table *models.TableDescriptor) []models.RelationshipCandidate {
	var out []models.RelationshipCandidate
	for _, fk := range table.ForeignKeys {
		if !ri.store.Has(fk.RemoteTable) {
			ri.logger.Warn("Foreign key references table outside the schema store",
				zap.String("table", table.TableName),
				zap.String("remote_table", fk.RemoteTable))
			continue
		}
		out = append(out, models.RelationshipCandidate{
			RemoteTable: strings.ToUpper(fk.RemoteTable),
			Pairs:       fk.Pairs,
			MatchCount:  len(fk.Pairs),
			Origin:      models.OriginDeclaredFK,
		})
	}
	return out
}

// structuralCandidates scans tables in the adjacent category families and
// counts identical leading primary-key column names. Bantotal composite keys
// share a leading run of columns (company code, module, branch, currency),
// so two tables whose PKs start with the same names are very likely related
// even without a declared constraint.
func (ri *RelationshipInferencer) structuralCandidates(table *models.TableDescriptor, existing []models.RelationshipCandidate) []models.RelationshipCandidate {
	seen := make(map[string]bool, len(existing)+1)
	seen[strings.ToUpper(table.TableName)] = true
	for _, c := range existing {
		seen[c.RemoteTable] = true
	}

	ownPK := table.PrimaryKeyColumns()
	if len(ownPK) < MinStructuralMatch {
		return nil
	}

	var out []models.RelationshipCandidate
	for _, other := range ri.store.TablesInCategories(schema.AdjacentCategories(table.Category)...) {
		key := strings.ToUpper(other.TableName)
		if seen[key] {
			continue
		}
		pairs := sharedLeadingKeyColumns(ownPK, other.PrimaryKeyColumns())
		if len(pairs) < MinStructuralMatch {
			continue
		}
		out = append(out, models.RelationshipCandidate{
			RemoteTable: key,
			Pairs:       pairs,
			MatchCount:  len(pairs),
			Origin:      models.OriginStructural,
		})
	}
	return out
}

// sharedLeadingKeyColumns returns the leading run of primary-key columns
// whose names are identical (case-insensitively) in both tables.
func sharedLeadingKeyColumns(a, b []models.ColumnDescriptor) []models.ColumnPair {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var pairs []models.ColumnPair
	for i := 0; i < n; i++ {
		if !strings.EqualFold(a[i].Name, b[i].Name) {
			break
		}
		pairs = append(pairs, models.ColumnPair{Local: a[i].Name, Remote: b[i].Name})
	}
	return pairs
}
