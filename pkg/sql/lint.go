package sql

import "strings"

// Lint applies basic safety checks to a generated statement and returns
// human-readable warnings. These mirror the checks a DBA would make before
// running the statement by hand.
func Lint(sqlText string) []string {
	var warnings []string
	upper := strings.ToUpper(sqlText)

	if strings.Contains(upper, "UPDATE") && !strings.Contains(upper, "WHERE") {
		warnings = append(warnings, "UPDATE without WHERE affects every row")
	}
	if strings.Contains(upper, "SELECT *") && !strings.Contains(upper, "TOP") && !strings.Contains(upper, "LIMIT") {
		warnings = append(warnings, "SELECT * without a row limit")
	}
	if strings.Contains(upper, "DROP ") || strings.Contains(upper, "TRUNCATE ") {
		warnings = append(warnings, "destructive DDL detected")
	}
	return warnings
}
