package services

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/apperrors"
	"github.com/bantotal-ai/bantotal-engine/pkg/models"
	"github.com/bantotal-ai/bantotal-engine/pkg/schema"
	enginesql "github.com/bantotal-ai/bantotal-engine/pkg/sql"
)

const (
	// DefaultRowLimit caps SELECT statements unless the request overrides it.
	DefaultRowLimit = 100
	// DefaultProjectionSize is how many own columns a SELECT projects when
	// the request asks for neither an explicit subset nor all columns.
	DefaultProjectionSize = 10
)

// essentialColumnPriority is the fixed semantic priority used to pick one
// projected column per joined table. Matching is case-insensitive
// containment; the first column of the remote table that matches the
// earliest tier wins.
var essentialColumnPriority = [][]string{
	{"descripcion", "description"},
	{"nombre", "name"},
	{"codigo", "code"},
	{"id"},
	{"estado", "status"},
}

// orderByPriority is the fixed priority for ORDER BY column selection:
// date columns, then primary keys, then identifier-like columns.
var orderBySuffixes = []string{"id", "codigo", "numero", "secuencia"}

// sequenceMarkers flags columns fed by a database sequence; INSERT renders
// them as NEXT VALUE FOR instead of a value placeholder. Numeric columns
// whose name ends in "id" count as well.
var sequenceMarkers = []string{"secuencia", "correl"}

// numericDataTypes are the type names both introspectors report for
// integer and decimal columns.
var numericDataTypes = []string{"int", "integer", "bigint", "smallint", "tinyint", "decimal", "numeric"}

// SynthesizerConfig carries the tunable synthesis parameters.
type SynthesizerConfig struct {
	MaxJoins     int
	DefaultLimit int
}

// Synthesizer builds SQL statements from normalized requests against the
// schema metadata store. Output is deterministic: identical request and
// schema state produce byte-identical statement text (the generation
// timestamp comes from the injected clock).
type Synthesizer struct {
	store      *schema.Store
	inferencer *RelationshipInferencer
	cfg        SynthesizerConfig
	now        func() time.Time
	logger     *zap.Logger
}

// NewSynthesizer creates a Synthesizer. Zero config values fall back to the
// system defaults (3 joins, top-100 limit).
func NewSynthesizer(store *schema.Store, inferencer *RelationshipInferencer, cfg SynthesizerConfig, logger *zap.Logger) *Synthesizer {
	if cfg.MaxJoins <= 0 {
		cfg.MaxJoins = DefaultMaxRelationships
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultRowLimit
	}
	return &Synthesizer{
		store:      store,
		inferencer: inferencer,
		cfg:        cfg,
		now:        time.Now,
		logger:     logger.Named("synthesizer"),
	}
}

// WithClock replaces the generation-timestamp clock. Tests pin it.
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	s.now = now
	return s
}

// Synthesize builds the statement for one request.
func (s *Synthesizer) Synthesize(req models.SynthesisRequest) (*models.SynthesisResult, error) {
	if !models.IsValidOperation(req.Operation) {
		return nil, fmt.Errorf("%w: %q (table %s)", apperrors.ErrUnsupportedOperation, req.Operation, req.Table)
	}
	table, err := s.store.Table(req.Table)
	if err != nil {
		return nil, fmt.Errorf("synthesize %s: %w", req.Operation, err)
	}
	if err := s.screenFilterHints(req); err != nil {
		return nil, err
	}

	var result *models.SynthesisResult
	switch req.Operation {
	case models.OperationSelect:
		result, err = s.synthesizeSelect(table, req)
	case models.OperationInsert:
		result, err = s.synthesizeInsert(table, req)
	case models.OperationUpdate:
		result, err = s.synthesizeUpdate(table, req)
	case models.OperationDelete:
		result, err = s.synthesizeDelete(table, req)
	}
	if err != nil {
		return nil, err
	}
	result.Warnings = append(result.Warnings, enginesql.Lint(result.SQL)...)

	s.logger.Debug("Statement synthesized",
		zap.String("operation", string(req.Operation)),
		zap.String("table", table.QualifiedName()),
		zap.Int("joins", result.JoinCount),
		zap.Int("warnings", len(result.Warnings)))
	return result, nil
}

// screenFilterHints rejects filter hints carrying SQL injection patterns
// before they are embedded into a WHERE clause.
func (s *Synthesizer) screenFilterHints(req models.SynthesisRequest) error {
	for _, hint := range req.FilterHints {
		if check := enginesql.CheckFilterFragment(hint); check != nil {
			return fmt.Errorf("%w: %q (fingerprint %s)", apperrors.ErrUnsafeFilter, hint, check.Fingerprint)
		}
	}
	return nil
}

func (s *Synthesizer) synthesizeSelect(table *models.TableDescriptor, req models.SynthesisRequest) (*models.SynthesisResult, error) {
	own, trimmed, err := s.resolveProjection(table, req)
	if err != nil {
		return nil, err
	}

	var joins []joinPlan
	if req.WithJoins {
		candidates, err := s.inferencer.FindRelationships(table.TableName, s.cfg.MaxJoins)
		if err != nil {
			return nil, err
		}
		joins = s.planJoins(table, candidates)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}
	mainAlias := mainTableAlias(table, joins)

	var b statementBuilder
	b.header(fmt.Sprintf("Consulta SELECT para %s", table.QualifiedName()), table, len(joins), s.now())
	exprs := make([]string, 0, len(own)+len(joins))
	for _, col := range own {
		exprs = append(exprs, fmt.Sprintf("%s.%s", mainAlias, col.Name))
	}
	ownCount := len(exprs)
	for _, j := range joins {
		// A join without an essential column still contributes its predicate
		// for filtering, just nothing to the projection.
		if j.essential == "" {
			continue
		}
		exprs = append(exprs, fmt.Sprintf("%s.%s AS %s_%s", j.alias, j.essential, j.alias, strings.ToLower(j.essential)))
	}

	b.linef("SELECT TOP %d", limit)
	for i, expr := range exprs {
		sep := ","
		if i == len(exprs)-1 {
			sep = ""
		}
		b.linef("    %s%s", expr, sep)
		if trimmed > 0 && i == ownCount-1 {
			b.linef("    -- ... y %d campos mas en la tabla", trimmed)
		}
	}
	b.linef("FROM %s %s", table.QualifiedName(), mainAlias)
	for _, j := range joins {
		b.linef("%s JOIN %s %s ON %s", req.EffectiveJoinKind(), j.qualifiedName, j.alias, j.predicate(mainAlias))
	}
	if len(req.FilterHints) > 0 {
		b.linef("WHERE %s", strings.Join(req.FilterHints, "\n  AND "))
	}
	if orderBy := selectOrderColumns(table, own); len(orderBy) > 0 {
		qualified := make([]string, len(orderBy))
		for i, name := range orderBy {
			qualified[i] = mainAlias + "." + name
		}
		b.linef("ORDER BY %s;", strings.Join(qualified, ", "))
	} else {
		b.terminate()
	}

	result := &models.SynthesisResult{
		SQL:       b.String(),
		Operation: models.OperationSelect,
		Tables:    resultTables(table, joins),
		JoinCount: len(joins),
	}
	return result, nil
}

func (s *Synthesizer) synthesizeInsert(table *models.TableDescriptor, req models.SynthesisRequest) (*models.SynthesisResult, error) {
	var names, values []string
	for _, col := range table.Columns {
		names = append(names, "    "+col.Name)
		if isSequenceColumn(col) {
			values = append(values, fmt.Sprintf("    NEXT VALUE FOR seq_%s", strings.ToLower(table.TableName)))
		} else {
			values = append(values, "    @"+col.Name)
		}
	}

	var b statementBuilder
	b.header(fmt.Sprintf("INSERT para %s", table.QualifiedName()), table, 0, s.now())
	b.linef("INSERT INTO %s (", table.QualifiedName())
	b.raw(strings.Join(names, ",\n") + "\n")
	b.linef(") VALUES (")
	b.raw(strings.Join(values, ",\n") + "\n")
	b.linef(");")

	return &models.SynthesisResult{
		SQL:       b.String(),
		Operation: models.OperationInsert,
		Tables:    []string{strings.ToUpper(table.TableName)},
	}, nil
}

func (s *Synthesizer) synthesizeUpdate(table *models.TableDescriptor, req models.SynthesisRequest) (*models.SynthesisResult, error) {
	pks := table.PrimaryKeyColumns()
	var sets []string
	for _, col := range table.Columns {
		if col.IsPrimaryKey {
			continue
		}
		sets = append(sets, fmt.Sprintf("    %s = @%s", col.Name, col.Name))
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: table %s has only key columns", apperrors.ErrEmptyProjection, table.QualifiedName())
	}

	var b statementBuilder
	b.header(fmt.Sprintf("UPDATE para %s", table.QualifiedName()), table, 0, s.now())
	b.linef("UPDATE %s", table.QualifiedName())
	b.linef("SET")
	b.raw(strings.Join(sets, ",\n") + "\n")

	warnings := []string{models.WarningUpdateAllPKs}
	where := req.FilterHints
	if len(where) == 0 {
		if len(pks) == 0 {
			b.linef("WHERE 1 = 0; -- sin clave primaria: completar condicion manualmente")
			return &models.SynthesisResult{
				SQL:       b.String(),
				Operation: models.OperationUpdate,
				Tables:    []string{strings.ToUpper(table.TableName)},
				Warnings:  append(warnings, "UPDATE without primary key"),
			}, nil
		}
		for _, pk := range pks {
			where = append(where, fmt.Sprintf("%s = @pk_%s", pk.Name, pk.Name))
		}
	} else if len(pks) > 0 {
		// Primary-key predicates are always included, even when the request
		// supplies its own filters.
		for _, pk := range pks {
			where = append(where, fmt.Sprintf("%s = @pk_%s", pk.Name, pk.Name))
		}
	}
	b.linef("WHERE %s;", strings.Join(where, "\n  AND "))

	return &models.SynthesisResult{
		SQL:       b.String(),
		Operation: models.OperationUpdate,
		Tables:    []string{strings.ToUpper(table.TableName)},
		Warnings:  warnings,
	}, nil
}

func (s *Synthesizer) synthesizeDelete(table *models.TableDescriptor, req models.SynthesisRequest) (*models.SynthesisResult, error) {
	var b statementBuilder
	b.header(fmt.Sprintf("DELETE para %s", table.QualifiedName()), table, 0, s.now())
	b.linef("DELETE FROM %s", table.QualifiedName())

	var warnings []string
	if len(req.FilterHints) > 0 {
		b.linef("WHERE %s;", strings.Join(req.FilterHints, "\n  AND "))
	} else {
		// Never emit an unguarded DELETE: the placeholder predicate matches
		// nothing until it is completed by hand.
		warnings = append(warnings, models.WarningDeleteNoWhere)
		b.linef("WHERE 1 = 0; -- completar condicion manualmente antes de ejecutar")
	}

	return &models.SynthesisResult{
		SQL:       b.String(),
		Operation: models.OperationDelete,
		Tables:    []string{strings.ToUpper(table.TableName)},
		Warnings:  warnings,
	}, nil
}

// resolveProjection picks the own-table columns a SELECT projects and how
// many were left out by the default trimming.
func (s *Synthesizer) resolveProjection(table *models.TableDescriptor, req models.SynthesisRequest) ([]models.ColumnDescriptor, int, error) {
	if len(req.Columns) > 0 {
		var cols []models.ColumnDescriptor
		for _, name := range req.Columns {
			col, ok := table.Column(name)
			if !ok {
				return nil, 0, fmt.Errorf("%w: %q not in table %s", apperrors.ErrUnknownColumn, name, table.QualifiedName())
			}
			cols = append(cols, col)
		}
		return cols, 0, nil
	}
	if len(table.Columns) == 0 {
		return nil, 0, fmt.Errorf("%w: table %s", apperrors.ErrEmptyProjection, table.QualifiedName())
	}
	if req.AllColumns || len(table.Columns) <= DefaultProjectionSize {
		return table.Columns, 0, nil
	}
	return table.Columns[:DefaultProjectionSize], len(table.Columns) - DefaultProjectionSize, nil
}

// joinPlan is one resolved join of a SELECT.
type joinPlan struct {
	candidate     models.RelationshipCandidate
	qualifiedName string
	alias         string
	essential     string
}

func (j joinPlan) predicate(mainAlias string) string {
	parts := make([]string, len(j.candidate.Pairs))
	for i, p := range j.candidate.Pairs {
		parts[i] = fmt.Sprintf("%s.%s = %s.%s", mainAlias, p.Local, j.alias, p.Remote)
	}
	return strings.Join(parts, " AND ")
}

// planJoins assigns aliases and essential columns to ranked candidates.
// Aliases are assigned in ranking order, so collisions resolve the same way
// on every run: the first table with a code keeps it bare, later ones get a
// numeric suffix starting at 2.
func (s *Synthesizer) planJoins(table *models.TableDescriptor, candidates []models.RelationshipCandidate) []joinPlan {
	used := map[string]int{schema.AliasCode(table.TableName): 1}
	plans := make([]joinPlan, 0, len(candidates))
	for _, c := range candidates {
		remote, err := s.store.Table(c.RemoteTable)
		if err != nil {
			continue
		}
		code := schema.AliasCode(remote.TableName)
		used[code]++
		alias := code
		if used[code] > 1 {
			alias = fmt.Sprintf("%s%d", code, used[code])
		}
		plans = append(plans, joinPlan{
			candidate:     c,
			qualifiedName: remote.QualifiedName(),
			alias:         alias,
			essential:     essentialColumn(remote),
		})
	}
	return plans
}

// mainTableAlias returns the alias of the statement's own table.
func mainTableAlias(table *models.TableDescriptor, _ []joinPlan) string {
	return schema.AliasCode(table.TableName)
}

// essentialColumn picks the remote column worth projecting for a join,
// by the fixed semantic priority. Empty when nothing matches.
func essentialColumn(table *models.TableDescriptor) string {
	for _, tier := range essentialColumnPriority {
		for _, col := range table.Columns {
			lower := strings.ToLower(col.Name)
			for _, marker := range tier {
				if strings.Contains(lower, marker) {
					return col.Name
				}
			}
		}
	}
	return ""
}

// selectOrderColumns picks up to two ORDER BY columns: a date column first,
// else primary-key columns, else identifier-like columns. Returns nil when
// nothing qualifies.
func selectOrderColumns(table *models.TableDescriptor, projected []models.ColumnDescriptor) []string {
	var out []string
	add := func(name string) bool {
		for _, existing := range out {
			if strings.EqualFold(existing, name) {
				return len(out) >= 2
			}
		}
		out = append(out, name)
		return len(out) >= 2
	}

	for _, col := range table.Columns {
		if strings.Contains(strings.ToLower(col.Name), "fecha") {
			if add(col.Name) {
				return out
			}
		}
	}
	if len(out) == 0 {
		for _, col := range table.PrimaryKeyColumns() {
			if add(col.Name) {
				return out
			}
		}
	}
	if len(out) == 0 {
		for _, col := range table.Columns {
			lower := strings.ToLower(col.Name)
			for _, marker := range orderBySuffixes {
				if strings.Contains(lower, marker) {
					if add(col.Name) {
						return out
					}
					break
				}
			}
		}
	}
	return out
}

// isSequenceColumn applies the sequence-marker heuristic for INSERT.
func isSequenceColumn(col models.ColumnDescriptor) bool {
	lower := strings.ToLower(col.Name)
	for _, marker := range sequenceMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return strings.HasSuffix(lower, "id") && isNumericType(col.DataType)
}

func isNumericType(dataType string) bool {
	lower := strings.ToLower(dataType)
	for _, t := range numericDataTypes {
		if lower == t || strings.HasPrefix(lower, t+"(") {
			return true
		}
	}
	return false
}

// resultTables lists the main table plus every joined table, upper-cased.
func resultTables(table *models.TableDescriptor, joins []joinPlan) []string {
	out := []string{strings.ToUpper(table.TableName)}
	for _, j := range joins {
		out = append(out, j.candidate.RemoteTable)
	}
	return out
}

// statementBuilder accumulates statement text with the standard header
// comment block.
type statementBuilder struct {
	sb strings.Builder
}

func (b *statementBuilder) header(title string, table *models.TableDescriptor, joins int, now time.Time) {
	b.linef("-- %s", title)
	b.linef("-- Total campos: %d", len(table.Columns))
	b.linef("-- Joins: %d", joins)
	b.linef("-- Generado: %s", now.Format("2006-01-02 15:04:05"))
	b.raw("\n")
}

func (b *statementBuilder) linef(format string, args ...any) {
	fmt.Fprintf(&b.sb, format+"\n", args...)
}

func (b *statementBuilder) raw(s string) {
	b.sb.WriteString(s)
}

// terminate appends the statement terminator to the last emitted line.
func (b *statementBuilder) terminate() {
	text := strings.TrimRight(b.sb.String(), "\n")
	b.sb.Reset()
	b.sb.WriteString(text)
	b.sb.WriteString(";\n")
}

func (b *statementBuilder) String() string {
	return strings.TrimRight(b.sb.String(), "\n") + "\n"
}
