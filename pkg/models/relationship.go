package models

// RelationshipOrigin says how a relationship candidate was discovered.
type RelationshipOrigin string

const (
	// OriginDeclaredFK means the relationship comes from a declared foreign key.
	OriginDeclaredFK RelationshipOrigin = "declared-fk"
	// OriginStructural means the relationship was inferred from a shared
	// leading run of primary-key columns.
	OriginStructural RelationshipOrigin = "structural-heuristic"
)

// ValidRelationshipOrigins contains all valid origin values.
var ValidRelationshipOrigins = []RelationshipOrigin{
	OriginDeclaredFK,
	OriginStructural,
}

// originRank orders declared foreign keys before heuristic matches when
// match counts tie.
var originRank = map[RelationshipOrigin]int{
	OriginDeclaredFK: 0,
	OriginStructural: 1,
}

// Rank returns the tie-break rank of the origin, lower first.
func (o RelationshipOrigin) Rank() int {
	if r, ok := originRank[o]; ok {
		return r
	}
	return len(originRank)
}

// RelationshipCandidate is an ephemeral candidate relation between the
// request's target table and RemoteTable. Candidates are recomputed per
// synthesis request and never persisted.
type RelationshipCandidate struct {
	RemoteTable string             `json:"remote_table"`
	Pairs       []ColumnPair       `json:"pairs"`
	MatchCount  int                `json:"match_count"`
	Origin      RelationshipOrigin `json:"origin"`
}

// Less defines the total order used to rank candidates: matched-column count
// descending, then declared FKs before heuristics, then remote table name
// ascending.
func (c RelationshipCandidate) Less(other RelationshipCandidate) bool {
	if c.MatchCount != other.MatchCount {
		return c.MatchCount > other.MatchCount
	}
	if c.Origin != other.Origin {
		return c.Origin.Rank() < other.Origin.Rank()
	}
	return c.RemoteTable < other.RemoteTable
}
