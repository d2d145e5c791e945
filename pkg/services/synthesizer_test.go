package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/apperrors"
	"github.com/bantotal-ai/bantotal-engine/pkg/models"
	"github.com/bantotal-ai/bantotal-engine/pkg/schema"
)

func fixedClock() time.Time {
	return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func newTestSynthesizer(t *testing.T, store *schema.Store) *Synthesizer {
	t.Helper()
	logger := zap.NewNop()
	inferencer := NewRelationshipInferencer(store, logger)
	return NewSynthesizer(store, inferencer, SynthesizerConfig{}, logger).WithClock(fixedClock)
}

func TestSynthesizeSelectWithJoins(t *testing.T) {
	s := newTestSynthesizer(t, bantotalFixture(t))

	result, err := s.Synthesize(models.SynthesisRequest{
		Operation:  models.OperationSelect,
		Table:      "FSD601",
		AllColumns: true,
		WithJoins:  true,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	if result.JoinCount != 2 {
		t.Errorf("JoinCount = %d, want 2", result.JoinCount)
	}
	wantTables := []string{"FSD601", "FSD010", "FSD602"}
	if len(result.Tables) != len(wantTables) {
		t.Fatalf("Tables = %v, want %v", result.Tables, wantTables)
	}
	for i, want := range wantTables {
		if result.Tables[i] != want {
			t.Errorf("Tables[%d] = %s, want %s", i, result.Tables[i], want)
		}
	}

	for _, want := range []string{
		"-- Consulta SELECT para dbo.FSD601",
		"-- Total campos: 31",
		"-- Joins: 2",
		"-- Generado: 2026-08-30 12:00:00",
		"SELECT TOP 100",
		"FROM dbo.FSD601 dt",
		"LEFT JOIN dbo.FSD010 dt2 ON dt.Pgcod = dt2.Pgcod AND dt.Aomod = dt2.Aomod",
		"LEFT JOIN dbo.FSD602 dt3 ON dt.Pgcod = dt3.Pgcod",
		"dt2.Aoestado AS dt2_aoestado",
		"dt3.Sbdescripcion AS dt3_sbdescripcion",
		"ORDER BY dt.Aofecha;",
	} {
		if !strings.Contains(result.SQL, want) {
			t.Errorf("SQL missing %q:\n%s", want, result.SQL)
		}
	}
}

func TestSynthesizeSelectIsDeterministic(t *testing.T) {
	store := bantotalFixture(t)
	req := models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "FSD601",
		WithJoins: true,
	}

	s := newTestSynthesizer(t, store)
	first, err := s.Synthesize(req)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	second, err := s.Synthesize(req)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if first.SQL != second.SQL {
		t.Errorf("repeated synthesis differs:\n%s\n---\n%s", first.SQL, second.SQL)
	}

	// A fresh synthesizer over the same schema produces the same text.
	third, err := newTestSynthesizer(t, store).Synthesize(req)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if first.SQL != third.SQL {
		t.Errorf("synthesis across instances differs:\n%s\n---\n%s", first.SQL, third.SQL)
	}
}

func TestSynthesizeSelectTrimsWideProjection(t *testing.T) {
	s := newTestSynthesizer(t, bantotalFixture(t))

	result, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "FSD601",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(result.SQL, "-- ... y 21 campos mas en la tabla") {
		t.Errorf("SQL missing trim comment:\n%s", result.SQL)
	}
	if strings.Contains(result.SQL, "dt.Aosecuencia") {
		t.Errorf("trimmed column still projected:\n%s", result.SQL)
	}
}

func TestSynthesizeSelectExplicitColumns(t *testing.T) {
	s := newTestSynthesizer(t, bantotalFixture(t))

	result, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "fsd601",
		Columns:   []string{"aofecha", "PGCOD"},
		Limit:     20,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(result.SQL, "SELECT TOP 20") {
		t.Errorf("explicit limit not applied:\n%s", result.SQL)
	}
	// Requested order is kept and names come back in their declared casing.
	if !strings.Contains(result.SQL, "    dt.Aofecha,\n    dt.Pgcod\n") {
		t.Errorf("explicit projection wrong:\n%s", result.SQL)
	}

	_, err = s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "FSD601",
		Columns:   []string{"NoSuchColumn"},
	})
	if !errors.Is(err, apperrors.ErrUnknownColumn) {
		t.Errorf("error = %v, want ErrUnknownColumn for missing column", err)
	}
}

func TestSynthesizeSelectWithoutOrderColumns(t *testing.T) {
	// No date column, no primary key, no identifier-like names: the
	// statement ends on the FROM line.
	store := newTestStore(t, testTable("FSX001", nil, []string{"Txdesc", "Txtexto"}))
	s := newTestSynthesizer(t, store)

	result, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "FSX001",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if strings.Contains(result.SQL, "ORDER BY") {
		t.Errorf("unexpected ORDER BY:\n%s", result.SQL)
	}
	if !strings.HasSuffix(result.SQL, "FROM dbo.FSX001 tx;\n") {
		t.Errorf("terminator not on the FROM line:\n%s", result.SQL)
	}
}

func TestSynthesizeJoinCap(t *testing.T) {
	store := newTestStore(t,
		testTable("FSD100", []string{"Pgcod", "Aomod", "Aosuc"}, []string{"Dcimp"}),
		testTable("FSD110", []string{"Pgcod", "Aomod", "Aosuc"}, []string{"Aimp"}),
		testTable("FSD120", []string{"Pgcod", "Aomod", "Aosuc"}, []string{"Bimp"}),
		testTable("FSD130", []string{"Pgcod", "Aomod", "Aosuc"}, []string{"Cimp"}),
		testTable("FSD140", []string{"Pgcod", "Aomod", "Aosuc"}, []string{"Dimp"}),
		testTable("FSD160", []string{"Pgcod", "Aomod", "Aosuc"}, []string{"Eimp"}),
	)
	s := newTestSynthesizer(t, store)

	result, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "FSD100",
		WithJoins: true,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if result.JoinCount != 3 {
		t.Errorf("JoinCount = %d, want the cap of 3", result.JoinCount)
	}
}

func TestSynthesizeInnerJoinKind(t *testing.T) {
	s := newTestSynthesizer(t, bantotalFixture(t))

	result, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "FSD601",
		WithJoins: true,
		JoinKind:  models.JoinKindInner,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(result.SQL, "INNER JOIN dbo.FSD010") {
		t.Errorf("SQL missing INNER JOIN:\n%s", result.SQL)
	}
	if strings.Contains(result.SQL, "LEFT JOIN") {
		t.Errorf("LEFT JOIN used despite INNER request:\n%s", result.SQL)
	}
}

func TestSynthesizeInsert(t *testing.T) {
	s := newTestSynthesizer(t, bantotalFixture(t))

	result, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationInsert,
		Table:     "FSD601",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	for _, want := range []string{
		"INSERT INTO dbo.FSD601 (",
		"    @Pgcod",
		"    NEXT VALUE FOR seq_fsd601",
	} {
		if !strings.Contains(result.SQL, want) {
			t.Errorf("SQL missing %q:\n%s", want, result.SQL)
		}
	}
	if strings.Contains(result.SQL, "@Aosecuencia") {
		t.Errorf("sequence column rendered as placeholder:\n%s", result.SQL)
	}
}

func TestSynthesizeInsertIdentityColumn(t *testing.T) {
	// A numeric column ending in "id" counts as sequence-fed; a text one
	// with the same suffix does not.
	table := &models.TableDescriptor{
		SchemaName: "dbo",
		TableName:  "FSA100",
		Columns: []models.ColumnDescriptor{
			{Name: "Axid", DataType: "int", IsPrimaryKey: true},
			{Name: "Axextid", DataType: "varchar"},
			{Name: "Axdesc", DataType: "varchar"},
		},
	}
	s := newTestSynthesizer(t, newTestStore(t, table))

	result, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationInsert,
		Table:     "FSA100",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(result.SQL, "    NEXT VALUE FOR seq_fsa100") {
		t.Errorf("identity column not sequence-rendered:\n%s", result.SQL)
	}
	if strings.Contains(result.SQL, "@Axid") {
		t.Errorf("identity column rendered as placeholder:\n%s", result.SQL)
	}
	if !strings.Contains(result.SQL, "    @Axextid") {
		t.Errorf("text id-suffix column must stay a placeholder:\n%s", result.SQL)
	}
}

func TestSynthesizeUpdate(t *testing.T) {
	s := newTestSynthesizer(t, bantotalFixture(t))

	result, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationUpdate,
		Table:     "FSD601",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	for _, want := range []string{
		"UPDATE dbo.FSD601",
		"    Aofecha = @Aofecha",
		"WHERE Pgcod = @pk_Pgcod",
		"  AND Aotope = @pk_Aotope;",
	} {
		if !strings.Contains(result.SQL, want) {
			t.Errorf("SQL missing %q:\n%s", want, result.SQL)
		}
	}
	if strings.Contains(result.SQL, "Pgcod = @Pgcod,") {
		t.Errorf("primary key column must not be updated:\n%s", result.SQL)
	}
	if len(result.Warnings) == 0 || result.Warnings[0] != models.WarningUpdateAllPKs {
		t.Errorf("Warnings = %v, want placeholder warning first", result.Warnings)
	}
}

func TestSynthesizeUpdateKeyOnlyTable(t *testing.T) {
	store := newTestStore(t,
		testTable("FSN001", []string{"Pgcod", "Nucod"}, nil),
	)
	s := newTestSynthesizer(t, store)

	_, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationUpdate,
		Table:     "FSN001",
	})
	if !errors.Is(err, apperrors.ErrEmptyProjection) {
		t.Errorf("error = %v, want ErrEmptyProjection", err)
	}
}

func TestSynthesizeDeleteWithoutFilter(t *testing.T) {
	s := newTestSynthesizer(t, bantotalFixture(t))

	result, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationDelete,
		Table:     "FSD601",
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	found := false
	for _, w := range result.Warnings {
		if w == models.WarningDeleteNoWhere {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want %q", result.Warnings, models.WarningDeleteNoWhere)
	}
	if !strings.Contains(result.SQL, "WHERE 1 = 0") {
		t.Errorf("unfiltered DELETE must carry the no-match placeholder:\n%s", result.SQL)
	}
}

func TestSynthesizeDeleteWithFilter(t *testing.T) {
	store := bantotalFixture(t)
	s := newTestSynthesizer(t, store)
	table, err := store.Table("FSD601")
	if err != nil {
		t.Fatalf("Table: %v", err)
	}

	result, err := s.synthesizeDelete(table, models.SynthesisRequest{
		Operation:   models.OperationDelete,
		Table:       "FSD601",
		FilterHints: []string{"Aostat = 'VENCIDO'"},
	})
	if err != nil {
		t.Fatalf("synthesizeDelete: %v", err)
	}
	if !strings.Contains(result.SQL, "WHERE Aostat = 'VENCIDO';") {
		t.Errorf("filter hint not rendered:\n%s", result.SQL)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", result.Warnings)
	}
}

func TestSynthesizeRejectsInjectionInFilterHint(t *testing.T) {
	s := newTestSynthesizer(t, bantotalFixture(t))

	_, err := s.Synthesize(models.SynthesisRequest{
		Operation:   models.OperationDelete,
		Table:       "FSD601",
		FilterHints: []string{"' OR '1'='1"},
	})
	if !errors.Is(err, apperrors.ErrUnsafeFilter) {
		t.Errorf("error = %v, want ErrUnsafeFilter", err)
	}
}

func TestSynthesizeUnsupportedOperation(t *testing.T) {
	s := newTestSynthesizer(t, bantotalFixture(t))

	_, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.Operation("MERGE"),
		Table:     "FSD601",
	})
	if !errors.Is(err, apperrors.ErrUnsupportedOperation) {
		t.Errorf("error = %v, want ErrUnsupportedOperation", err)
	}
}

func TestSynthesizeUnknownTable(t *testing.T) {
	s := newTestSynthesizer(t, bantotalFixture(t))

	_, err := s.Synthesize(models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "FSD999",
	})
	if !errors.Is(err, apperrors.ErrUnknownTable) {
		t.Errorf("error = %v, want ErrUnknownTable", err)
	}
}
