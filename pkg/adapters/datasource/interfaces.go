package datasource

import "context"

// Introspector reads table metadata from a Bantotal database.
// Each implementation owns its connection and must be closed when done.
type Introspector interface {
	// TestConnection verifies the database is reachable with valid credentials.
	TestConnection(ctx context.Context) error

	// ListTables returns all user tables, sorted by schema then name.
	ListTables(ctx context.Context) ([]TableMetadata, error)

	// ListColumns returns columns for a table in ordinal order.
	ListColumns(ctx context.Context, schemaName, tableName string) ([]ColumnMetadata, error)

	// ListForeignKeys returns declared foreign keys for a table.
	ListForeignKeys(ctx context.Context, schemaName, tableName string) ([]ForeignKeyMetadata, error)

	// Close releases the database connection.
	Close() error
}

// TableMetadata identifies a table discovered during introspection.
type TableMetadata struct {
	SchemaName string `json:"schema_name"`
	TableName  string `json:"table_name"`
}

// ColumnMetadata describes one column of a discovered table.
type ColumnMetadata struct {
	Name            string `json:"name"`
	DataType        string `json:"data_type"`
	OrdinalPosition int    `json:"ordinal_position"`
	IsNullable      bool   `json:"is_nullable"`
	IsPrimaryKey    bool   `json:"is_primary_key"`
}

// ForeignKeyMetadata describes one declared foreign key constraint.
// LocalColumns and RemoteColumns are parallel slices in constraint order.
type ForeignKeyMetadata struct {
	ConstraintName string   `json:"constraint_name"`
	RemoteSchema   string   `json:"remote_schema"`
	RemoteTable    string   `json:"remote_table"`
	LocalColumns   []string `json:"local_columns"`
	RemoteColumns  []string `json:"remote_columns"`
}
