package webserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ctalab/ctaeval/internal/webapi"
)

// endpoints is served at / as a self-description of the API.
var endpoints = []string{
	"GET /api/health",
	"POST /api/transliterate",
	"POST /api/risk",
	"POST /api/cognates",
	"POST /api/effectiveness",
	"POST /api/effectiveness/batch",
	"GET /api/results",
	"GET /api/results/{kind}",
	"DELETE /api/results/{kind}",
	"GET /api/report?format=md|html|csv|json",
	"GET /api/settings",
	"PUT /api/settings",
}

func registerRoutes(mux *http.ServeMux, cfg Config) {
	webapi.RegisterRoutes(mux, cfg.Analyzer, cfg.Store)
	mux.HandleFunc("GET /{$}", handleIndex)
	mux.HandleFunc("/api/", handleAPINotFound)
}

func handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
		"name":      "ctaeval",
		"version":   webapi.Version,
		"endpoints": endpoints,
	})
}

// handleAPINotFound returns JSON instead of the default text 404.
func handleAPINotFound(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(webapi.ErrorResponse{Error: "not found", Code: http.StatusNotFound}) //nolint:errcheck
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "status", rec.status, "elapsed", time.Since(start))
	})
}
