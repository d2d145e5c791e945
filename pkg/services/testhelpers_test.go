package services

import (
	"testing"

	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/models"
	"github.com/bantotal-ai/bantotal-engine/pkg/schema"
)

// operationKey is the shared leading run of primary-key columns the core
// operation tables start with.
var operationKey = []string{"Pgcod", "Aomod", "Aosuc", "Aomda", "Aopap", "Aocta", "Aooper", "Aosbop", "Aotope"}

func testTable(name string, pks, others []string, fks ...models.ForeignKeyDescriptor) *models.TableDescriptor {
	t := &models.TableDescriptor{
		SchemaName:  "dbo",
		TableName:   name,
		ForeignKeys: fks,
	}
	for _, n := range pks {
		t.Columns = append(t.Columns, models.ColumnDescriptor{Name: n, DataType: "int", IsPrimaryKey: true})
	}
	for _, n := range others {
		t.Columns = append(t.Columns, models.ColumnDescriptor{Name: n, DataType: "varchar"})
	}
	return t
}

func newTestStore(t *testing.T, tables ...*models.TableDescriptor) *schema.Store {
	t.Helper()
	store := schema.NewStore(zap.NewNop())
	for _, table := range tables {
		if err := store.Add(table); err != nil {
			t.Fatalf("add %s: %v", table.TableName, err)
		}
	}
	store.Freeze()
	return store
}

// bantotalFixture builds a store with the shape of a small Bantotal core
// schema: two sibling operation tables sharing the composite key of FSD601
// plus the basic tables the resolver knows about.
func bantotalFixture(t *testing.T) *schema.Store {
	t.Helper()
	return newTestStore(t,
		testTable("FSD601", operationKey, []string{
			"Aofecha", "Aofvto", "Aopzo", "Aotasa", "Aotmor", "Aoimp", "Aosdo",
			"Aostat", "Aoeste", "Aonume", "Aousr", "Aohor", "Aocond", "Aoflag",
			"Aotipo", "Aoclase", "Aonemo", "Aobase", "Aocapit", "Aorenov",
			"Aoorig", "Aosecuencia",
		}),
		testTable("FSD010", operationKey, []string{"Aoestado", "Aoimp"}),
		testTable("FSD602", append(append([]string{}, operationKey...), "Sbsecu"), []string{"Sbdescripcion", "Sbimp"}),
		testTable("FST001", []string{"Pgcod", "Sucurs"}, []string{"Scnombre", "Scdireccion"}),
		testTable("FST002", []string{"Pgcod", "Pecod"}, []string{"Penombre", "Pedocum"}),
		testTable("FST003", []string{"Pgcod", "Abocod"}, []string{"Abnombre"}),
		testTable("FST023", []string{"Pgcod", "Sscod"}, []string{"Ssdescripcion"}),
	)
}
