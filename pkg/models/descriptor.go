package models

import (
	"fmt"
	"strings"
)

// ColumnDescriptor describes a single table column as reported by
// introspection.
type ColumnDescriptor struct {
	Name         string  `json:"name"`
	DataType     string  `json:"data_type"`
	IsPrimaryKey bool    `json:"is_primary_key"`
	Description  *string `json:"description,omitempty"`
}

// ColumnPair is one (local column, remote column) equality of a foreign key
// or an inferred relationship.
type ColumnPair struct {
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

// ForeignKeyDescriptor describes a declared foreign key. RemoteTable is a
// name lookup into the schema store, not a reference to the descriptor.
type ForeignKeyDescriptor struct {
	Name        string       `json:"name"`
	RemoteTable string       `json:"remote_table"`
	Pairs       []ColumnPair `json:"pairs"`
}

// TableDescriptor is the immutable per-session description of one table.
// Descriptors are created once per introspection pass and owned by the
// schema store.
type TableDescriptor struct {
	SchemaName      string                 `json:"schema_name"`
	TableName       string                 `json:"table_name"`
	Category        Category               `json:"category"`
	Columns         []ColumnDescriptor     `json:"columns"`
	ForeignKeys     []ForeignKeyDescriptor `json:"foreign_keys,omitempty"`
	Description     string                 `json:"description,omitempty"`
	IndexCount      int                    `json:"index_count"`
	ConstraintCount int                    `json:"constraint_count"`
}

// QualifiedName returns the schema-qualified table name.
func (t *TableDescriptor) QualifiedName() string {
	if t.SchemaName == "" {
		return t.TableName
	}
	return t.SchemaName + "." + t.TableName
}

// PrimaryKeyColumns returns the table's primary-key columns in declared
// column order.
func (t *TableDescriptor) PrimaryKeyColumns() []ColumnDescriptor {
	var pks []ColumnDescriptor
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			pks = append(pks, c)
		}
	}
	return pks
}

// Column returns the column with the given name (case-insensitive) and
// whether it exists.
func (t *TableDescriptor) Column(name string) (ColumnDescriptor, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnDescriptor{}, false
}

// Validate checks the descriptor invariants: at least one column, PK columns
// form a subset of the columns, and every foreign key pair names columns
// that exist locally.
func (t *TableDescriptor) Validate() error {
	if t.TableName == "" {
		return fmt.Errorf("table descriptor without a name")
	}
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %s has no columns", t.QualifiedName())
	}
	for _, fk := range t.ForeignKeys {
		if len(fk.Pairs) == 0 {
			return fmt.Errorf("table %s: foreign key %q has no column pairs", t.QualifiedName(), fk.Name)
		}
		if fk.RemoteTable == "" {
			return fmt.Errorf("table %s: foreign key %q has no remote table", t.QualifiedName(), fk.Name)
		}
		for _, p := range fk.Pairs {
			if _, ok := t.Column(p.Local); !ok {
				return fmt.Errorf("table %s: foreign key %q references missing local column %q", t.QualifiedName(), fk.Name, p.Local)
			}
		}
	}
	return nil
}
