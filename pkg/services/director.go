package services

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/apperrors"
	"github.com/bantotal-ai/bantotal-engine/pkg/llm"
	"github.com/bantotal-ai/bantotal-engine/pkg/logging"
	"github.com/bantotal-ai/bantotal-engine/pkg/models"
	"github.com/bantotal-ai/bantotal-engine/pkg/retrieval"
)

// operationVerbs maps query verbs to the statement kind they ask for.
// Checked in order; the default is SELECT.
var operationVerbs = []struct {
	Operation models.Operation
	Verbs     []string
}{
	{models.OperationInsert, []string{"insert", "insertar", "agregar", "añadir", "anadir"}},
	{models.OperationUpdate, []string{"update", "actualizar", "modificar", "cambiar", "editar"}},
	{models.OperationDelete, []string{"delete", "eliminar", "borrar", "quitar"}},
	{models.OperationSelect, []string{"select", "consultar", "consulta", "obtener", "buscar", "mostrar", "listar"}},
}

// joinWords enable relationship joins when mentioned in a SELECT query.
var joinWords = []string{"join", "relacion", "relaciones", "relacionar", "con", "detalle"}

// allColumnPhrases ask for the full projection instead of the trimmed one.
var allColumnPhrases = []string{"todos los campos", "all fields", "*"}

// limitPattern extracts an explicit row limit ("top 50", "primeros 20").
var limitPattern = regexp.MustCompile(`(?i)\b(?:top|limit|primeros)\s+(\d+)\b`)

// DirectorStats counts routed queries per path.
type DirectorStats struct {
	TotalQueries  int `json:"total_queries"`
	SQLRouted     int `json:"sql_routed"`
	DocsRouted    int `json:"docs_routed"`
	MixedRouted   int `json:"mixed_routed"`
	RoutingErrors int `json:"routing_errors"`
	CacheHits     int `json:"cache_hits"`
}

// QueryResponse is the unified result of one processed query.
type QueryResponse struct {
	RequestID  uuid.UUID                   `json:"request_id"`
	Query      string                      `json:"query"`
	Intent     models.Intent               `json:"intent"`
	Confidence float64                     `json:"confidence"`
	SQL        *models.SynthesisResult     `json:"sql,omitempty"`
	Passages   []retrieval.Passage         `json:"passages,omitempty"`
	Answer     string                      `json:"answer,omitempty"`
	Signals    []models.MatchedSignal      `json:"signals,omitempty"`
	Warnings   []string                    `json:"warnings,omitempty"`
	Result     models.ClassificationResult `json:"-"`
}

// Director routes classified queries to the SQL synthesis path, the
// documentation retrieval path, or both, and merges the outcomes.
type Director struct {
	classifier  *Classifier
	resolver    *TableResolver
	synthesizer *Synthesizer
	cache       *SynthesisCache
	retrieval   retrieval.Service
	formatter   llm.Formatter
	docsTopK    int
	logger      *zap.Logger

	mu    sync.Mutex
	stats DirectorStats
}

// NewDirector wires the director. retrieval and formatter may be nil; the
// corresponding path then degrades to a structured-only response.
func NewDirector(
	classifier *Classifier,
	resolver *TableResolver,
	synthesizer *Synthesizer,
	cache *SynthesisCache,
	retrievalSvc retrieval.Service,
	formatter llm.Formatter,
	logger *zap.Logger,
) *Director {
	return &Director{
		classifier:  classifier,
		resolver:    resolver,
		synthesizer: synthesizer,
		cache:       cache,
		retrieval:   retrievalSvc,
		formatter:   formatter,
		docsTopK:    5,
		logger:      logger.Named("director"),
	}
}

// Process classifies the query, runs the routed path(s), and merges the
// results. Mixed queries tolerate one side failing as long as the other
// produces an answer.
func (d *Director) Process(ctx context.Context, query string) (*QueryResponse, error) {
	classification, err := d.classifier.Classify(query)
	if err != nil {
		d.countError()
		return nil, err
	}

	resp := &QueryResponse{
		RequestID:  uuid.New(),
		Query:      query,
		Intent:     classification.Intent,
		Confidence: classification.Confidence(),
		Signals:    classification.Signals,
		Result:     classification,
	}

	d.logger.Info("Query routed",
		zap.String("request_id", resp.RequestID.String()),
		zap.String("intent", string(classification.Intent)),
		zap.Float64("confidence", resp.Confidence),
		zap.String("query", logging.SanitizeQuery(query)))

	wantSQL := classification.Intent == models.IntentSQL || classification.Intent == models.IntentMixed
	wantDocs := classification.Intent == models.IntentDocs || classification.Intent == models.IntentMixed

	var sqlErr, docsErr error
	if wantSQL {
		resp.SQL, sqlErr = d.runSQLPath(query)
		if sqlErr != nil {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("sql path: %v", sqlErr))
		}
	}
	if wantDocs {
		resp.Passages, docsErr = d.runDocsPath(ctx, query)
		if docsErr != nil {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("docs path: %v", docsErr))
		}
	}

	switch {
	case wantSQL && wantDocs && sqlErr != nil && docsErr != nil:
		d.countError()
		return nil, fmt.Errorf("both paths failed: %v; %v", sqlErr, docsErr)
	case wantSQL && !wantDocs && sqlErr != nil:
		d.countError()
		return nil, sqlErr
	case wantDocs && !wantSQL && docsErr != nil:
		d.countError()
		return nil, docsErr
	}

	d.count(classification.Intent, resp.SQL)
	d.format(ctx, resp)
	return resp, nil
}

// BuildSynthesisRequest derives a normalized synthesis request from the raw
// query text: operation verb, target table, projection and join wishes, and
// an optional explicit limit.
func (d *Director) BuildSynthesisRequest(query string) (models.SynthesisRequest, error) {
	table, ok := d.resolver.Resolve(query)
	if !ok {
		return models.SynthesisRequest{}, fmt.Errorf("%w: no target table in query %q", apperrors.ErrUnknownTable, logging.TruncateString(query, 80))
	}

	lower := strings.ToLower(query)
	tokens := tokenSet(lower)
	req := models.SynthesisRequest{
		Operation: detectOperation(tokens),
		Table:     table,
		RawQuery:  query,
	}

	for _, phrase := range allColumnPhrases {
		if strings.Contains(lower, phrase) {
			req.AllColumns = true
			break
		}
	}
	for _, word := range joinWords {
		if tokens[word] {
			req.WithJoins = true
			break
		}
	}
	if strings.Contains(lower, "inner") {
		req.JoinKind = models.JoinKindInner
	}
	if m := limitPattern.FindStringSubmatch(query); len(m) == 2 {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			req.Limit = n
		}
	}
	return req, nil
}

// WithDocsTopK replaces the passage count requested per docs query.
func (d *Director) WithDocsTopK(k int) *Director {
	if k > 0 {
		d.docsTopK = k
	}
	return d
}

// Classify runs intent classification alone, without either pipeline.
func (d *Director) Classify(query string) (models.ClassificationResult, error) {
	return d.classifier.Classify(query)
}

// Synthesize runs a structured synthesis request through the result cache.
func (d *Director) Synthesize(req models.SynthesisRequest) (*models.SynthesisResult, error) {
	return d.cache.GetOrCompute(RequestCacheKey(req), func() (*models.SynthesisResult, error) {
		return d.synthesizer.Synthesize(req)
	})
}

// Stats returns a snapshot of the routing counters.
func (d *Director) Stats() DirectorStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

func (d *Director) runSQLPath(query string) (*models.SynthesisResult, error) {
	req, err := d.BuildSynthesisRequest(query)
	if err != nil {
		return nil, err
	}
	return d.cache.GetOrCompute(CacheKey(query, req.Table), func() (*models.SynthesisResult, error) {
		return d.synthesizer.Synthesize(req)
	})
}

func (d *Director) runDocsPath(ctx context.Context, query string) ([]retrieval.Passage, error) {
	if d.retrieval == nil {
		return nil, fmt.Errorf("documentation retrieval is not configured")
	}
	return d.retrieval.Search(ctx, query, d.docsTopK)
}

// format renders the merged result through the formatter collaborator.
// Formatting failures degrade to the structured response, never to an error.
func (d *Director) format(ctx context.Context, resp *QueryResponse) {
	if d.formatter == nil {
		return
	}
	fc := llm.FormatContext{
		Query:  resp.Query,
		Intent: string(resp.Intent),
	}
	if resp.SQL != nil {
		fc.SQL = resp.SQL.SQL
		fc.Warnings = resp.SQL.Warnings
	}
	for _, p := range resp.Passages {
		fc.Passages = append(fc.Passages, p.Content)
	}

	answer, err := d.formatter.Format(ctx, fc)
	if err != nil {
		d.logger.Warn("Formatter failed, returning structured response",
			zap.String("request_id", resp.RequestID.String()),
			zap.Error(err))
		return
	}
	resp.Answer = answer
}

func (d *Director) count(intent models.Intent, sql *models.SynthesisResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.TotalQueries++
	switch intent {
	case models.IntentSQL:
		d.stats.SQLRouted++
	case models.IntentDocs:
		d.stats.DocsRouted++
	case models.IntentMixed:
		d.stats.MixedRouted++
	}
	if sql != nil && sql.CacheHit {
		d.stats.CacheHits++
	}
}

func (d *Director) countError() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.TotalQueries++
	d.stats.RoutingErrors++
}

// detectOperation maps query verbs to a statement kind, defaulting to
// SELECT.
func detectOperation(tokens map[string]bool) models.Operation {
	for _, group := range operationVerbs {
		for _, verb := range group.Verbs {
			if tokens[verb] {
				return group.Operation
			}
		}
	}
	return models.OperationSelect
}
