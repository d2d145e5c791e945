package datasource

import (
	"context"
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/models"
	"github.com/bantotal-ai/bantotal-engine/pkg/schema"
)

// bantotalTablePattern matches Bantotal core table names such as FSD010 or FST001.
var bantotalTablePattern = regexp.MustCompile(`(?i)^FS[TDRSEHXAIMN]\d+$`)

// LoadStore introspects the database and populates a schema store with every
// Bantotal table found. Tables whose names do not follow the Bantotal naming
// convention are skipped with a debug log. The returned store is frozen.
func LoadStore(ctx context.Context, intro Introspector, logger *zap.Logger) (*schema.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tables, err := intro.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}

	store := schema.NewStore(logger)
	skipped := 0

	for _, t := range tables {
		if !bantotalTablePattern.MatchString(t.TableName) {
			skipped++
			logger.Debug("Skipping non-Bantotal table",
				zap.String("schema", t.SchemaName),
				zap.String("table", t.TableName))
			continue
		}

		desc, err := buildDescriptor(ctx, intro, t)
		if err != nil {
			return nil, fmt.Errorf("introspect %s.%s: %w", t.SchemaName, t.TableName, err)
		}

		if err := store.Add(desc); err != nil {
			return nil, fmt.Errorf("register %s: %w", t.TableName, err)
		}
	}

	store.Freeze()
	logger.Info("Schema loaded from database",
		zap.Int("tables", store.Len()),
		zap.Int("skipped", skipped))

	return store, nil
}

func buildDescriptor(ctx context.Context, intro Introspector, t TableMetadata) (*models.TableDescriptor, error) {
	cols, err := intro.ListColumns(ctx, t.SchemaName, t.TableName)
	if err != nil {
		return nil, fmt.Errorf("list columns: %w", err)
	}

	fks, err := intro.ListForeignKeys(ctx, t.SchemaName, t.TableName)
	if err != nil {
		return nil, fmt.Errorf("list foreign keys: %w", err)
	}

	desc := &models.TableDescriptor{
		SchemaName: t.SchemaName,
		TableName:  t.TableName,
	}

	for _, c := range cols {
		desc.Columns = append(desc.Columns, models.ColumnDescriptor{
			Name:         c.Name,
			DataType:     c.DataType,
			IsPrimaryKey: c.IsPrimaryKey,
		})
	}

	for _, fk := range fks {
		d := models.ForeignKeyDescriptor{
			Name:        fk.ConstraintName,
			RemoteTable: fk.RemoteTable,
		}
		for i := range fk.LocalColumns {
			d.Pairs = append(d.Pairs, models.ColumnPair{
				Local:  fk.LocalColumns[i],
				Remote: fk.RemoteColumns[i],
			})
		}
		desc.ForeignKeys = append(desc.ForeignKeys, d)
	}

	return desc, nil
}
