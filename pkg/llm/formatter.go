// Package llm provides the natural-language formatter collaborator: given a
// structured query result, it produces the presentation text returned to the
// user. The engine treats it as a black box.
package llm

import "context"

// FormatContext is the structured input handed to the formatter. The
// formatter never invents data; it only presents what the engine produced.
type FormatContext struct {
	Query    string   // original user query
	Intent   string   // routed intent
	SQL      string   // generated statement, empty on the docs-only path
	Warnings []string // statement warnings, verbatim
	Passages []string // retrieved documentation passages, ranked
}

// Formatter renders a FormatContext into user-facing text.
type Formatter interface {
	Format(ctx context.Context, fc FormatContext) (string, error)
}
