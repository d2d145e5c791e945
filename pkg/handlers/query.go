package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bantotal-ai/bantotal-engine/pkg/apperrors"
	"github.com/bantotal-ai/bantotal-engine/pkg/logging"
	"github.com/bantotal-ai/bantotal-engine/pkg/models"
	"github.com/bantotal-ai/bantotal-engine/pkg/services"
)

// QueryRequest is the body for /query and /classify.
type QueryRequest struct {
	Query string `json:"query"`
}

// SynthesizeRequest is the body for /synthesize. When Table is empty the
// request text is classified and resolved the same way /query does it.
type SynthesizeRequest struct {
	Query     string   `json:"query,omitempty"`
	Operation string   `json:"operation,omitempty"`
	Table     string   `json:"table,omitempty"`
	Columns   []string `json:"columns,omitempty"`
	Filters   []string `json:"filters,omitempty"`
	AllFields bool     `json:"all_fields,omitempty"`
	WithJoins bool     `json:"with_joins,omitempty"`
	JoinKind  string   `json:"join_kind,omitempty"`
	Limit     int      `json:"limit,omitempty"`
}

// QueryHandler exposes the query pipeline over HTTP.
type QueryHandler struct {
	director *services.Director
	logger   *zap.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(director *services.Director, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{director: director, logger: logger.Named("query-handler")}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /query", h.Query)
	mux.HandleFunc("POST /classify", h.Classify)
	mux.HandleFunc("POST /synthesize", h.Synthesize)
	mux.HandleFunc("GET /stats", h.Stats)
}

// Query handles POST /query requests.
// Runs the full pipeline: classification, routing, synthesis or retrieval,
// and response formatting.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a query field")
		return
	}

	resp, err := h.director.Process(r.Context(), req.Query)
	if err != nil {
		h.writeError(w, req.Query, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("Failed to encode query response", zap.Error(err))
	}
}

// Classify handles POST /classify requests.
// Returns the intent and confidence scores without executing either pipeline.
func (h *QueryHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON with a query field")
		return
	}

	result, err := h.director.Classify(req.Query)
	if err != nil {
		h.writeError(w, req.Query, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode classification response", zap.Error(err))
	}
}

// Synthesize handles POST /synthesize requests.
// Generates a SQL statement either from a structured request or from free
// text when no table is given.
func (h *QueryHandler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var req SynthesizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	synthReq, err := h.buildRequest(req)
	if err != nil {
		h.writeError(w, req.Query, err)
		return
	}

	result, err := h.director.Synthesize(synthReq)
	if err != nil {
		h.writeError(w, req.Query, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, result); err != nil {
		h.logger.Error("Failed to encode synthesis response", zap.Error(err))
	}
}

// Stats handles GET /stats requests.
func (h *QueryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if err := WriteJSON(w, http.StatusOK, h.director.Stats()); err != nil {
		h.logger.Error("Failed to encode stats response", zap.Error(err))
	}
}

func (h *QueryHandler) buildRequest(req SynthesizeRequest) (models.SynthesisRequest, error) {
	if req.Table == "" {
		return h.director.BuildSynthesisRequest(req.Query)
	}

	op := models.OperationSelect
	if req.Operation != "" {
		parsed, ok := models.ParseOperation(req.Operation)
		if !ok {
			return models.SynthesisRequest{}, apperrors.ErrUnsupportedOperation
		}
		op = parsed
	}

	kind := models.JoinKindLeft
	if models.JoinKind(req.JoinKind) == models.JoinKindInner {
		kind = models.JoinKindInner
	}

	return models.SynthesisRequest{
		Operation:   op,
		Table:       req.Table,
		Columns:     req.Columns,
		FilterHints: req.Filters,
		AllColumns:  req.AllFields,
		WithJoins:   req.WithJoins,
		JoinKind:    kind,
		Limit:       req.Limit,
		RawQuery:    req.Query,
	}, nil
}

func (h *QueryHandler) writeError(w http.ResponseWriter, query string, err error) {
	h.logger.Warn("Query pipeline error",
		zap.String("query", logging.SanitizeQuery(query)),
		zap.Error(err))

	switch {
	case errors.Is(err, apperrors.ErrInvalidQuery):
		_ = ErrorResponse(w, http.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, apperrors.ErrUnknownTable):
		_ = ErrorResponse(w, http.StatusNotFound, "unknown_table", err.Error())
	case errors.Is(err, apperrors.ErrUnknownColumn):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "unknown_column", err.Error())
	case errors.Is(err, apperrors.ErrUnsupportedOperation):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "unsupported_operation", err.Error())
	case errors.Is(err, apperrors.ErrEmptyProjection):
		_ = ErrorResponse(w, http.StatusUnprocessableEntity, "empty_projection", err.Error())
	case errors.Is(err, apperrors.ErrUnsafeFilter):
		_ = ErrorResponse(w, http.StatusBadRequest, "unsafe_filter", err.Error())
	default:
		_ = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "query processing failed")
	}
}
