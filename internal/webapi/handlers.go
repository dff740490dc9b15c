// Package webapi exposes the analyses over HTTP: one POST endpoint per
// analysis kind, plus endpoints to read the latest result of each kind,
// render a report and change the generation settings.
package webapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ctalab/ctaeval/internal/llm"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/reporting"
	"github.com/ctalab/ctaeval/internal/resultstore"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Analyzer runs the analyses. *analysis.Analyzer satisfies it.
type Analyzer interface {
	Transliterate(ctx context.Context, req models.TransliterationRequest) models.Outcome[models.TransliterationReport]
	AnalyzeRisks(ctx context.Context, req models.RiskAnalysisRequest) models.Outcome[models.RiskReport]
	AlignCognates(ctx context.Context, req models.CognateAlignmentRequest) models.Outcome[models.CognateReport]
	AlignCognatesText(ctx context.Context, text string) models.Outcome[models.CognateReport]
	AnalyzeEffectiveness(ctx context.Context, req models.EffectivenessRequest) models.Outcome[models.EffectivenessReport]
	EffectivenessBatch(ctx context.Context, datasets []models.Dataset) models.EffectivenessBatchReport
	Settings() *llm.Settings
}

// Store keeps the latest outcome per kind. *resultstore.Store satisfies it.
type Store interface {
	Snapshot() (resultstore.Snapshot, error)
	Get(kind models.TaskKind) (any, error)
	Clear(kind models.TaskKind) error
	PutTransliteration(o models.Outcome[models.TransliterationReport]) error
	PutRisk(o models.Outcome[models.RiskReport]) error
	PutCognate(o models.Outcome[models.CognateReport]) error
	PutEffectiveness(o models.Outcome[models.EffectivenessReport]) error
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	analyzer Analyzer
	store    Store
}

// NewHandlers creates a new Handlers.
func NewHandlers(analyzer Analyzer, store Store) *Handlers {
	return &Handlers{analyzer: analyzer, store: store}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

func (h *Handlers) HandleTransliterate(w http.ResponseWriter, r *http.Request) {
	var req models.TransliterationRequest
	if !decode(w, r, &req) {
		return
	}
	out := h.analyzer.Transliterate(r.Context(), req)
	h.save(h.store.PutTransliteration(out))
	writeOutcome(w, out.Failure, out)
}

func (h *Handlers) HandleRisk(w http.ResponseWriter, r *http.Request) {
	var req models.RiskAnalysisRequest
	if !decode(w, r, &req) {
		return
	}
	out := h.analyzer.AnalyzeRisks(r.Context(), req)
	h.save(h.store.PutRisk(out))
	writeOutcome(w, out.Failure, out)
}

func (h *Handlers) HandleCognates(w http.ResponseWriter, r *http.Request) {
	var req CognateRequest
	if !decode(w, r, &req) {
		return
	}
	var out models.Outcome[models.CognateReport]
	if len(req.Candidates) > 0 {
		out = h.analyzer.AlignCognates(r.Context(), models.CognateAlignmentRequest{Candidates: req.Candidates})
	} else {
		out = h.analyzer.AlignCognatesText(r.Context(), req.Text)
	}
	h.save(h.store.PutCognate(out))
	writeOutcome(w, out.Failure, out)
}

func (h *Handlers) HandleEffectiveness(w http.ResponseWriter, r *http.Request) {
	var req models.EffectivenessRequest
	if !decode(w, r, &req) {
		return
	}
	out := h.analyzer.AnalyzeEffectiveness(r.Context(), req)
	h.save(h.store.PutEffectiveness(out))
	writeOutcome(w, out.Failure, out)
}

// HandleBatch runs effectiveness over several datasets. Batch results are
// returned but not stored; the effectiveness slot keeps single runs only.
func (h *Handlers) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Datasets) == 0 {
		writeError(w, http.StatusBadRequest, "datasets must not be empty")
		return
	}
	writeJSON(w, http.StatusOK, h.analyzer.EffectivenessBatch(r.Context(), req.Datasets))
}

// HandleResults returns every stored outcome.
func (h *Handlers) HandleResults(w http.ResponseWriter, _ *http.Request) {
	snap, err := h.store.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// HandleResult returns the stored outcome of one kind.
func (h *Handlers) HandleResult(w http.ResponseWriter, r *http.Request) {
	v, err := h.store.Get(models.TaskKind(r.PathValue("kind")))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// HandleClearResult empties the slot of one kind.
func (h *Handlers) HandleClearResult(w http.ResponseWriter, r *http.Request) {
	kind := models.TaskKind(r.PathValue("kind"))
	if kind == "" {
		writeError(w, http.StatusBadRequest, "analysis kind is required")
		return
	}
	if err := h.store.Clear(kind); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReport renders the stored outcomes; ?format= selects md (default),
// html, csv or json.
func (h *Handlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	format := reporting.FormatMarkdown
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := reporting.ParseFormat(f)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		format = parsed
	}
	snap, err := h.store.Snapshot()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := reporting.Write(&buf, format, snap, reporting.Options{}); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck
}

func (h *Handlers) HandleGetSettings(w http.ResponseWriter, _ *http.Request) {
	cfg := h.analyzer.Settings().Snapshot()
	writeJSON(w, http.StatusOK, SettingsResponse{
		Provider:  string(cfg.Provider),
		Model:     cfg.Model,
		HasAPIKey: cfg.APIKey != "",
	})
}

func (h *Handlers) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsUpdate
	if !decode(w, r, &req) {
		return
	}
	settings := h.analyzer.Settings()
	if req.Provider != nil {
		p, err := llm.ParseProvider(*req.Provider)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		settings.SetProvider(p)
	}
	if req.Model != nil {
		settings.SetModel(strings.TrimSpace(*req.Model))
	}
	if req.APIKey != nil {
		settings.SetAPIKey(strings.TrimSpace(*req.APIKey))
	}
	h.HandleGetSettings(w, r)
}

// save logs persistence failures; the analysis result is still returned.
func (h *Handlers) save(err error) {
	if err != nil {
		slog.Warn("storing result failed", "error", err)
	}
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, analyzer Analyzer, store Store) {
	h := NewHandlers(analyzer, store)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("POST /api/transliterate", h.HandleTransliterate)
	mux.HandleFunc("POST /api/risk", h.HandleRisk)
	mux.HandleFunc("POST /api/cognates", h.HandleCognates)
	mux.HandleFunc("POST /api/effectiveness", h.HandleEffectiveness)
	mux.HandleFunc("POST /api/effectiveness/batch", h.HandleBatch)
	mux.HandleFunc("GET /api/results", h.HandleResults)
	mux.HandleFunc("GET /api/results/{kind}", h.HandleResult)
	mux.HandleFunc("DELETE /api/results/{kind}", h.HandleClearResult)
	mux.HandleFunc("GET /api/report", h.HandleReport)
	mux.HandleFunc("GET /api/settings", h.HandleGetSettings)
	mux.HandleFunc("PUT /api/settings", h.HandleUpdateSettings)
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// StatusFor maps a failure kind to the HTTP status of the response.
func StatusFor(f *models.Failure) int {
	if f == nil {
		return http.StatusOK
	}
	switch f.Kind {
	case models.FailureInput:
		return http.StatusBadRequest
	case models.FailureConfiguration:
		return http.StatusServiceUnavailable
	case models.FailureQuota:
		return http.StatusTooManyRequests
	case models.FailureTransport, models.FailureExtraction:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	return true
}

func writeOutcome(w http.ResponseWriter, f *models.Failure, v any) {
	writeJSON(w, StatusFor(f), v)
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, resultstore.ErrNoResult) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if errors.Is(err, resultstore.ErrUnknownKind) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
