package models

// Intent is the routed destination of a user query.
type Intent string

const (
	IntentSQL   Intent = "sql"
	IntentDocs  Intent = "docs"
	IntentMixed Intent = "mixed"
)

// ValidIntents contains all routing destinations.
var ValidIntents = []Intent{
	IntentSQL,
	IntentDocs,
	IntentMixed,
}

// IsValidIntent checks if the given intent is valid.
func IsValidIntent(i Intent) bool {
	for _, v := range ValidIntents {
		if v == i {
			return true
		}
	}
	return false
}

// MatchedSignal records one signal category hit, kept for explainability.
type MatchedSignal struct {
	Intent   Intent `json:"intent"`
	Category string `json:"category"`
	Signal   string `json:"signal"`
}

// ClassificationResult is the per-query routing decision.
type ClassificationResult struct {
	Intent         Intent          `json:"intent"`
	SQLConfidence  float64         `json:"sql_confidence"`
	DocsConfidence float64         `json:"docs_confidence"`
	Signals        []MatchedSignal `json:"signals,omitempty"`
}

// Confidence returns the confidence of the routed intent. Mixed intent
// reports the lower of the two sides, since both must hold.
func (r ClassificationResult) Confidence() float64 {
	switch r.Intent {
	case IntentSQL:
		return r.SQLConfidence
	case IntentDocs:
		return r.DocsConfidence
	default:
		if r.SQLConfidence < r.DocsConfidence {
			return r.SQLConfidence
		}
		return r.DocsConfidence
	}
}
