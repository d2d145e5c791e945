package apperrors

import "errors"

var (
	// ErrInvalidQuery indicates an empty or unparseable user query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrUnknownTable indicates the target or a related table is not present
	// in the schema metadata store.
	ErrUnknownTable = errors.New("unknown table")
	// ErrUnsupportedOperation indicates an operation kind outside
	// SELECT/INSERT/UPDATE/DELETE.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrUnknownColumn indicates a requested column is not present in the
	// target table.
	ErrUnknownColumn = errors.New("unknown column")
	// ErrEmptyProjection indicates a SELECT would project zero columns.
	ErrEmptyProjection = errors.New("empty projection")
	// ErrUnsafeFilter indicates a filter hint failed injection screening.
	ErrUnsafeFilter = errors.New("unsafe filter hint")
)
