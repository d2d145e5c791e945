package services

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/apperrors"
	"github.com/bantotal-ai/bantotal-engine/pkg/models"
)

// DefaultMixedThreshold is the minimum per-intent confidence for a query to
// count toward that intent. When both intents clear it the query is mixed;
// when neither does, documentation is the safe fallback.
const DefaultMixedThreshold = 0.15

// signalCategory is one named group of signal words for an intent.
// Multi-word signals are matched as phrases, single words as whole tokens.
type signalCategory struct {
	Name    string
	Signals []string
}

// sqlSignalCategories are the signal groups that indicate SQL intent.
// Spanish operation verbs sit alongside the SQL keywords because users mix
// both freely ("generar un SELECT", "consultar la tabla").
var sqlSignalCategories = []signalCategory{
	{Name: "select-verbs", Signals: []string{"select", "consultar", "consulta", "obtener", "mostrar", "buscar", "listar", "generar", "query"}},
	{Name: "insert-verbs", Signals: []string{"insert", "insertar", "agregar", "añadir", "anadir", "crear registro"}},
	{Name: "update-verbs", Signals: []string{"update", "actualizar", "modificar", "cambiar", "editar"}},
	{Name: "delete-verbs", Signals: []string{"delete", "eliminar", "borrar", "quitar"}},
	{Name: "schema-nouns", Signals: []string{"tabla", "campo", "campos", "columna", "clave", "sql", "base de datos"}},
	{Name: "table-pattern", Signals: nil}, // matched by tablePattern below
}

// docsSignalCategories are the signal groups that indicate documentation
// intent.
var docsSignalCategories = []signalCategory{
	{Name: "genexus", Signals: []string{"genexus", "for each", "transaction", "web panel", "procedure"}},
	{Name: "bantotal", Signals: []string{"bantotal", "banco", "financiero", "proceso bancario"}},
	{Name: "technical", Signals: []string{"instalacion", "instalación", "configuracion", "configuración", "configurar", "setup", "deployment"}},
	{Name: "procedure", Signals: []string{"como", "cómo", "pasos", "tutorial", "guia", "guía", "procedimiento", "proceso"}},
	{Name: "documentation", Signals: []string{"documentacion", "documentación", "manual", "ayuda", "informacion", "información", "explicar"}},
}

// tablePattern matches Bantotal table names anywhere in the query.
var tablePattern = regexp.MustCompile(`(?i)\bFS[TDRSEHXAIMN]\d+\b`)

// tokenSplitter breaks query text into word tokens for single-word signal
// matching.
var tokenSplitter = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// ClassifierConfig carries the tunable classification parameters. The mixed
// threshold is empirically tuned, not derived; keep it configurable.
type ClassifierConfig struct {
	MixedThreshold float64
}

// Classifier routes free-text queries to the SQL path, the documentation
// path, or both. It is a pure function of its input and the static signal
// tables.
type Classifier struct {
	cfg    ClassifierConfig
	logger *zap.Logger
}

// NewClassifier creates a Classifier. A zero threshold falls back to the
// default.
func NewClassifier(cfg ClassifierConfig, logger *zap.Logger) *Classifier {
	if cfg.MixedThreshold <= 0 {
		cfg.MixedThreshold = DefaultMixedThreshold
	}
	return &Classifier{cfg: cfg, logger: logger.Named("classifier")}
}

// Classify scores the query against both signal sets and decides routing.
// Confidence per intent is the number of distinct matched signal categories
// divided by the number of categories defined for that intent.
func (c *Classifier) Classify(query string) (models.ClassificationResult, error) {
	if strings.TrimSpace(query) == "" {
		return models.ClassificationResult{}, fmt.Errorf("%w: empty query text", apperrors.ErrInvalidQuery)
	}

	normalized := strings.ToLower(query)
	tokens := tokenSet(normalized)

	var signals []models.MatchedSignal
	sqlHits := matchCategories(models.IntentSQL, sqlSignalCategories, normalized, tokens, &signals)
	if tablePattern.MatchString(query) {
		sqlHits++
		signals = append(signals, models.MatchedSignal{
			Intent:   models.IntentSQL,
			Category: "table-pattern",
			Signal:   tablePattern.FindString(query),
		})
	}
	docsHits := matchCategories(models.IntentDocs, docsSignalCategories, normalized, tokens, &signals)

	sqlConf := clip01(float64(sqlHits) / float64(len(sqlSignalCategories)))
	docsConf := clip01(float64(docsHits) / float64(len(docsSignalCategories)))

	result := models.ClassificationResult{
		SQLConfidence:  sqlConf,
		DocsConfidence: docsConf,
		Signals:        signals,
	}
	threshold := c.cfg.MixedThreshold
	switch {
	case sqlConf >= threshold && docsConf >= threshold:
		result.Intent = models.IntentMixed
	case sqlConf >= threshold:
		result.Intent = models.IntentSQL
	case docsConf >= threshold:
		result.Intent = models.IntentDocs
	default:
		// Neither side is convincing: documentation is the safe fallback,
		// never a guessed destructive SQL statement.
		result.Intent = models.IntentDocs
	}

	c.logger.Debug("Query classified",
		zap.String("intent", string(result.Intent)),
		zap.Float64("sql_confidence", sqlConf),
		zap.Float64("docs_confidence", docsConf),
		zap.Int("signals", len(signals)))
	return result, nil
}

// matchCategories counts distinct categories with at least one signal hit
// and records the first hit of each for explainability.
func matchCategories(intent models.Intent, categories []signalCategory, normalized string, tokens map[string]bool, out *[]models.MatchedSignal) int {
	hits := 0
	for _, cat := range categories {
		for _, sig := range cat.Signals {
			if !signalMatches(sig, normalized, tokens) {
				continue
			}
			hits++
			*out = append(*out, models.MatchedSignal{Intent: intent, Category: cat.Name, Signal: sig})
			break
		}
	}
	return hits
}

// signalMatches checks a phrase by substring and a single word by whole
// token, so "como" does not fire inside unrelated words.
func signalMatches(signal, normalized string, tokens map[string]bool) bool {
	if strings.ContainsRune(signal, ' ') {
		return strings.Contains(normalized, signal)
	}
	return tokens[signal]
}

func tokenSet(normalized string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range tokenSplitter.Split(normalized, -1) {
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
