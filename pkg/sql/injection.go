// Package sql provides screening and linting for generated SQL and for the
// free-text filter fragments embedded into it.
package sql

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheckResult contains the result of an injection check on a
// filter fragment.
type InjectionCheckResult struct {
	IsSQLi      bool   // True if SQL injection pattern detected
	Fingerprint string // libinjection fingerprint of the detected pattern
	Fragment    string // The fragment that failed the check
}

// CheckFilterFragment uses libinjection to detect SQL injection patterns in
// a user-supplied filter hint before it is embedded into a WHERE clause.
//
// Returns nil if no injection is detected.
func CheckFilterFragment(fragment string) *InjectionCheckResult {
	if fragment == "" {
		return nil
	}
	isSQLi, fingerprint := libinjection.IsSQLi(fragment)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
		Fragment:    fragment,
	}
}

// CheckAllFragments screens every fragment and returns one result per
// fragment that failed. Empty slice means all fragments are clean.
func CheckAllFragments(fragments []string) []*InjectionCheckResult {
	results := make([]*InjectionCheckResult, 0)
	for _, f := range fragments {
		if r := CheckFilterFragment(f); r != nil {
			results = append(results, r)
		}
	}
	return results
}
