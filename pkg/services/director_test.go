package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/apperrors"
	"github.com/bantotal-ai/bantotal-engine/pkg/llm"
	"github.com/bantotal-ai/bantotal-engine/pkg/models"
	"github.com/bantotal-ai/bantotal-engine/pkg/retrieval"
)

func newTestDirector(t *testing.T, retrievalSvc retrieval.Service, formatter llm.Formatter) *Director {
	t.Helper()
	logger := zap.NewNop()
	store := bantotalFixture(t)
	classifier := NewClassifier(ClassifierConfig{}, logger)
	resolver := NewTableResolver(store, logger)
	inferencer := NewRelationshipInferencer(store, logger)
	synthesizer := NewSynthesizer(store, inferencer, SynthesizerConfig{}, logger).WithClock(fixedClock)
	cache := NewSynthesisCache(DefaultCacheCapacity)
	return NewDirector(classifier, resolver, synthesizer, cache, retrievalSvc, formatter, logger)
}

func TestProcessSQLQuery(t *testing.T) {
	director := newTestDirector(t, &retrieval.MockService{}, nil)

	resp, err := director.Process(context.Background(), "consultar la tabla FSD601 con todos los campos")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Intent != models.IntentSQL {
		t.Fatalf("Intent = %s, want sql", resp.Intent)
	}
	if resp.SQL == nil {
		t.Fatal("expected generated SQL")
	}
	if !strings.Contains(resp.SQL.SQL, "FROM dbo.FSD601") {
		t.Errorf("SQL targets wrong table:\n%s", resp.SQL.SQL)
	}
	if resp.SQL.CacheHit {
		t.Error("first synthesis must be a miss")
	}
	if len(resp.Passages) != 0 {
		t.Errorf("SQL-only query fetched passages: %v", resp.Passages)
	}

	// The same query again is served from the cache.
	resp, err = director.Process(context.Background(), "consultar la tabla FSD601 con todos los campos")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !resp.SQL.CacheHit {
		t.Error("repeated query must hit the cache")
	}

	stats := director.Stats()
	if stats.TotalQueries != 2 || stats.SQLRouted != 2 || stats.CacheHits != 1 {
		t.Errorf("stats = %+v, want 2 queries, 2 sql, 1 hit", stats)
	}
}

func TestProcessDocsQuery(t *testing.T) {
	retrievalSvc := &retrieval.MockService{
		SearchFunc: func(ctx context.Context, query string, topK int) ([]retrieval.Passage, error) {
			if topK != 5 {
				t.Errorf("topK = %d, want default 5", topK)
			}
			return []retrieval.Passage{{Source: "manual.pdf", Content: "Pasos de instalacion", Score: 0.9}}, nil
		},
	}
	formatter := &llm.MockFormatter{
		FormatFunc: func(ctx context.Context, fc llm.FormatContext) (string, error) {
			return "Resumen: " + fc.Passages[0], nil
		},
	}
	director := newTestDirector(t, retrievalSvc, formatter)

	resp, err := director.Process(context.Background(), "manual de instalación")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Intent != models.IntentDocs {
		t.Fatalf("Intent = %s, want docs", resp.Intent)
	}
	if len(resp.Passages) != 1 {
		t.Fatalf("Passages = %v, want one", resp.Passages)
	}
	if resp.SQL != nil {
		t.Error("docs query must not synthesize SQL")
	}
	if resp.Answer != "Resumen: Pasos de instalacion" {
		t.Errorf("Answer = %q", resp.Answer)
	}
	if retrievalSvc.SearchCalls != 1 || formatter.FormatCalls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", retrievalSvc.SearchCalls, formatter.FormatCalls)
	}

	stats := director.Stats()
	if stats.DocsRouted != 1 {
		t.Errorf("stats = %+v, want 1 docs routed", stats)
	}
}

func TestProcessMixedToleratesOneFailure(t *testing.T) {
	retrievalSvc := &retrieval.MockService{
		SearchFunc: func(ctx context.Context, query string, topK int) ([]retrieval.Passage, error) {
			return nil, fmt.Errorf("search service unavailable")
		},
	}
	director := newTestDirector(t, retrievalSvc, nil)

	resp, err := director.Process(context.Background(), "proceso de clientes y consulta sql")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Intent != models.IntentMixed {
		t.Fatalf("Intent = %s, want mixed", resp.Intent)
	}
	if resp.SQL == nil {
		t.Fatal("surviving SQL path must still answer")
	}
	found := false
	for _, w := range resp.Warnings {
		if strings.HasPrefix(w, "docs path:") {
			found = true
		}
	}
	if !found {
		t.Errorf("Warnings = %v, want docs path failure recorded", resp.Warnings)
	}
}

func TestProcessDocsWithoutRetrievalFails(t *testing.T) {
	director := newTestDirector(t, nil, nil)

	_, err := director.Process(context.Background(), "manual de instalación")
	if err == nil {
		t.Fatal("expected error when retrieval is not configured")
	}
	stats := director.Stats()
	if stats.RoutingErrors != 1 {
		t.Errorf("stats = %+v, want 1 routing error", stats)
	}
}

func TestProcessFormatterFailureDegrades(t *testing.T) {
	formatter := &llm.MockFormatter{
		FormatFunc: func(ctx context.Context, fc llm.FormatContext) (string, error) {
			return "", errors.New("model offline")
		},
	}
	director := newTestDirector(t, nil, formatter)

	resp, err := director.Process(context.Background(), "consultar la tabla FSD601")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if resp.Answer != "" {
		t.Errorf("Answer = %q, want empty on formatter failure", resp.Answer)
	}
	if resp.SQL == nil {
		t.Error("structured result must survive formatter failure")
	}
}

func TestProcessEmptyQuery(t *testing.T) {
	director := newTestDirector(t, nil, nil)

	_, err := director.Process(context.Background(), "   ")
	if !errors.Is(err, apperrors.ErrInvalidQuery) {
		t.Errorf("error = %v, want ErrInvalidQuery", err)
	}
}

func TestSynthesizeStructuredRequestsDoNotCollide(t *testing.T) {
	director := newTestDirector(t, &retrieval.MockService{}, nil)

	first, err := director.Synthesize(models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "FSD601",
		Limit:     20,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !strings.Contains(first.SQL, "SELECT TOP 20") {
		t.Errorf("first statement wrong:\n%s", first.SQL)
	}

	// Same table and operation with a different limit must be recomputed,
	// not served from the first request's entry.
	second, err := director.Synthesize(models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "FSD601",
		Limit:     500,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if second.CacheHit {
		t.Error("limit-differing request served from cache")
	}
	if !strings.Contains(second.SQL, "SELECT TOP 500") {
		t.Errorf("second statement reused the first limit:\n%s", second.SQL)
	}

	// Repeating a request verbatim still hits.
	again, err := director.Synthesize(models.SynthesisRequest{
		Operation: models.OperationSelect,
		Table:     "FSD601",
		Limit:     20,
	})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if !again.CacheHit || !strings.Contains(again.SQL, "SELECT TOP 20") {
		t.Errorf("verbatim repeat must hit with its own statement, hit=%t:\n%s", again.CacheHit, again.SQL)
	}
}

func TestBuildSynthesisRequest(t *testing.T) {
	director := newTestDirector(t, nil, nil)

	tests := []struct {
		name       string
		query      string
		table      string
		operation  models.Operation
		withJoins  bool
		allColumns bool
		joinKind   models.JoinKind
		limit      int
	}{
		{
			name:      "select by concept",
			query:     "consultar pagos",
			table:     "FSD010",
			operation: models.OperationSelect,
		},
		{
			name:      "insert verb",
			query:     "insertar en la tabla FSD601",
			table:     "FSD601",
			operation: models.OperationInsert,
		},
		{
			name:      "update verb",
			query:     "actualizar plazos",
			table:     "FSD601",
			operation: models.OperationUpdate,
		},
		{
			name:      "delete verb",
			query:     "eliminar registros de FSD010",
			table:     "FSD010",
			operation: models.OperationDelete,
		},
		{
			name:       "joins and all columns",
			query:      "consultar FSD601 con todos los campos",
			table:      "FSD601",
			operation:  models.OperationSelect,
			withJoins:  true,
			allColumns: true,
		},
		{
			name:      "inner join request",
			query:     "consultar FSD601 con inner join",
			table:     "FSD601",
			operation: models.OperationSelect,
			withJoins: true,
			joinKind:  models.JoinKindInner,
		},
		{
			name:      "explicit limit",
			query:     "mostrar primeros 20 pagos",
			table:     "FSD010",
			operation: models.OperationSelect,
			limit:     20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := director.BuildSynthesisRequest(tt.query)
			if err != nil {
				t.Fatalf("BuildSynthesisRequest(%q): %v", tt.query, err)
			}
			if req.Table != tt.table {
				t.Errorf("Table = %s, want %s", req.Table, tt.table)
			}
			if req.Operation != tt.operation {
				t.Errorf("Operation = %s, want %s", req.Operation, tt.operation)
			}
			if req.WithJoins != tt.withJoins {
				t.Errorf("WithJoins = %v, want %v", req.WithJoins, tt.withJoins)
			}
			if req.AllColumns != tt.allColumns {
				t.Errorf("AllColumns = %v, want %v", req.AllColumns, tt.allColumns)
			}
			if req.JoinKind != tt.joinKind {
				t.Errorf("JoinKind = %q, want %q", req.JoinKind, tt.joinKind)
			}
			if req.Limit != tt.limit {
				t.Errorf("Limit = %d, want %d", req.Limit, tt.limit)
			}
		})
	}
}

func TestBuildSynthesisRequestUnknownTable(t *testing.T) {
	director := newTestDirector(t, nil, nil)

	_, err := director.BuildSynthesisRequest("consultar algo indefinido")
	if !errors.Is(err, apperrors.ErrUnknownTable) {
		t.Errorf("error = %v, want ErrUnknownTable", err)
	}
}
