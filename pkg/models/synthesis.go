package models

import "strings"

// Operation is the SQL statement kind a synthesis request asks for.
type Operation string

const (
	OperationSelect Operation = "SELECT"
	OperationInsert Operation = "INSERT"
	OperationUpdate Operation = "UPDATE"
	OperationDelete Operation = "DELETE"
)

// ValidOperations contains the four supported statement kinds.
var ValidOperations = []Operation{
	OperationSelect,
	OperationInsert,
	OperationUpdate,
	OperationDelete,
}

// IsValidOperation checks if the given operation is supported.
func IsValidOperation(op Operation) bool {
	for _, v := range ValidOperations {
		if v == op {
			return true
		}
	}
	return false
}

// ParseOperation normalizes a free-form operation string to an Operation.
func ParseOperation(s string) (Operation, bool) {
	op := Operation(strings.ToUpper(strings.TrimSpace(s)))
	return op, IsValidOperation(op)
}

// JoinKind is the join type used for related tables.
type JoinKind string

const (
	JoinKindLeft  JoinKind = "LEFT"
	JoinKindInner JoinKind = "INNER"
)

// SynthesisRequest carries one normalized statement-generation request. It
// is built per query by the director and consumed by the synthesizer.
type SynthesisRequest struct {
	Operation   Operation `json:"operation"`
	Table       string    `json:"table"`
	Columns     []string  `json:"columns,omitempty"`      // explicit projection subset
	FilterHints []string  `json:"filter_hints,omitempty"` // raw predicate fragments
	AllColumns  bool      `json:"all_columns"`            // project every own column
	WithJoins   bool      `json:"with_joins"`
	JoinKind    JoinKind  `json:"join_kind,omitempty"` // empty means LEFT
	Limit       int       `json:"limit,omitempty"`     // 0 means the configured default
	RawQuery    string    `json:"raw_query,omitempty"` // original user text, when known
}

// EffectiveJoinKind returns the join kind, defaulting to LEFT.
func (r *SynthesisRequest) EffectiveJoinKind() JoinKind {
	if r.JoinKind == JoinKindInner {
		return JoinKindInner
	}
	return JoinKindLeft
}

// SynthesisResult is the outcome of one statement synthesis.
type SynthesisResult struct {
	SQL       string    `json:"sql"`
	Operation Operation `json:"operation"`
	Tables    []string  `json:"tables"`
	Warnings  []string  `json:"warnings,omitempty"`
	JoinCount int       `json:"join_count"`
	CacheHit  bool      `json:"cache_hit"`
}

// Warning texts attached to generated statements. WarningDeleteNoWhere is
// mandatory on every DELETE synthesized without a filter hint.
const (
	WarningDeleteNoWhere   = "DELETE without WHERE"
	WarningUpdateAllPKs    = "UPDATE restricted by primary key placeholders; fill all values before executing"
	WarningSelectUnlimited = "SELECT without row limit"
)
