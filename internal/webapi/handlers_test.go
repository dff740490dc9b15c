package webapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctalab/ctaeval/internal/analysis"
	"github.com/ctalab/ctaeval/internal/llm"
	"github.com/ctalab/ctaeval/internal/models"
	"github.com/ctalab/ctaeval/internal/resultstore"
)

func newTestMux(t *testing.T, newClient llm.NewFunc) (*http.ServeMux, *resultstore.Store, *analysis.Analyzer) {
	t.Helper()
	a := analysis.New(analysis.Options{
		Settings:  llm.NewSettings(llm.Config{Provider: llm.ProviderMock}),
		NewClient: newClient,
	})
	store := resultstore.New("")
	mux := http.NewServeMux()
	RegisterRoutes(mux, a, store)
	return mux, store, a
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHandleHealth(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)
	rec := do(t, mux, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, Version, body.Version)
}

func TestTransliterate_StoresResult(t *testing.T) {
	mux, store, _ := newTestMux(t, nil)

	rec := do(t, mux, http.MethodPost, "/api/transliterate", `{"source_text":"Merhaba dünya","source_language":"tr"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[models.Outcome[models.TransliterationReport]](t, rec)
	require.True(t, out.OK())
	assert.Equal(t, "Merhaba dünya", out.Value.Result.OutputText)

	v, err := store.Get(models.TaskTransliteration)
	require.NoError(t, err)
	assert.True(t, v.(*models.Outcome[models.TransliterationReport]).OK())

	rec = do(t, mux, http.MethodGet, "/api/results/transliteration", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTransliterate_InputFailureOverwritesSlot(t *testing.T) {
	mux, store, _ := newTestMux(t, nil)
	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/api/transliterate", `{"source_text":"Merhaba"}`).Code)

	rec := do(t, mux, http.MethodPost, "/api/transliterate", `{"source_text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	out := decodeBody[models.Outcome[models.TransliterationReport]](t, rec)
	require.NotNil(t, out.Failure)
	assert.Equal(t, models.FailureInput, out.Failure.Kind)

	snap, err := store.Snapshot()
	require.NoError(t, err)
	require.NotNil(t, snap.Transliteration.Failure)
}

func TestRisk(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	rec := do(t, mux, http.MethodPost, "/api/risk", `{"normalized_text":"xabər qaqa"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[models.Outcome[models.RiskReport]](t, rec)
	require.True(t, out.OK())
	assert.NotEmpty(t, out.Value.Risks)
	assert.Equal(t, []string{"x", "ə", "q"}, out.Value.Statistics.NewLettersFound)
}

func TestCognates_FromText(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	rec := do(t, mux, http.MethodPost, "/api/cognates", `{"text":"tr:su\nkk:su\n"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[models.Outcome[models.CognateReport]](t, rec)
	require.True(t, out.OK())
	assert.Equal(t, 1, out.Value.Statistics.GroupsFound)
}

func TestCognates_NoCandidates(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)
	rec := do(t, mux, http.MethodPost, "/api/cognates", `{"text":"no colon here"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEffectiveness(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	rec := do(t, mux, http.MethodPost, "/api/effectiveness",
		`{"original_text":"Қазақ тілі","normalized_text":"Qazaq tili","dataset_label":"kk"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decodeBody[models.Outcome[models.EffectivenessReport]](t, rec)
	require.True(t, out.OK())
	assert.Equal(t, "kk", out.Value.Metadata.DatasetLabel)
	require.NotNil(t, out.Value.Metrics)
}

func TestBatch(t *testing.T) {
	mux, store, _ := newTestMux(t, nil)

	rec := do(t, mux, http.MethodPost, "/api/effectiveness/batch", `{"datasets":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodPost, "/api/effectiveness/batch", `{"datasets":[
		{"name":"a","original":"Қазақ","normalized":"Qazaq"},
		{"name":"b","original":"","normalized":""}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	report := decodeBody[models.EffectivenessBatchReport](t, rec)
	assert.Equal(t, 2, report.Summary.TotalDatasets)
	assert.Equal(t, 1, report.Summary.SuccessfulAnalyses)

	_, err := store.Get(models.TaskEffectiveness)
	assert.ErrorIs(t, err, resultstore.ErrNoResult)
}

func TestConfigurationFailure(t *testing.T) {
	mux, _, _ := newTestMux(t, func(llm.Config) (llm.Client, error) {
		return nil, &llm.AuthenticationError{Provider: "openai", EnvVar: llm.OpenAIKeyEnv}
	})
	rec := do(t, mux, http.MethodPost, "/api/transliterate", `{"source_text":"Merhaba"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	out := decodeBody[models.Outcome[models.TransliterationReport]](t, rec)
	require.NotNil(t, out.Failure)
	assert.Equal(t, models.FailureConfiguration, out.Failure.Kind)
}

func TestInvalidBodies(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	rec := do(t, mux, http.MethodPost, "/api/risk", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Error, "invalid request body")

	rec = do(t, mux, http.MethodPost, "/api/risk", `{"text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, mux, http.MethodPost, "/api/risk", `{"normalized_text":"`+strings.Repeat("a", maxBodyBytes)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestResults(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)

	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/results/risk", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/api/results/poetry", "").Code)

	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/api/risk", `{"normalized_text":"qaqa"}`).Code)
	rec := do(t, mux, http.MethodGet, "/api/results", "")
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeBody[resultstore.Snapshot](t, rec)
	assert.NotNil(t, snap.Risk)
	assert.Nil(t, snap.Cognate)

	assert.Equal(t, http.StatusNoContent, do(t, mux, http.MethodDelete, "/api/results/risk", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, mux, http.MethodGet, "/api/results/risk", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodDelete, "/api/results/poetry", "").Code)
}

func TestReport(t *testing.T) {
	mux, _, _ := newTestMux(t, nil)
	require.Equal(t, http.StatusOK, do(t, mux, http.MethodPost, "/api/risk", `{"normalized_text":"qaqa"}`).Code)

	rec := do(t, mux, http.MethodGet, "/api/report", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Phonetic Risk Analysis")

	rec = do(t, mux, http.MethodGet, "/api/report?format=html", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<!doctype html>")

	assert.Equal(t, http.StatusBadRequest, do(t, mux, http.MethodGet, "/api/report?format=pdf", "").Code)
}

func TestSettings(t *testing.T) {
	mux, _, a := newTestMux(t, nil)

	rec := do(t, mux, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[SettingsResponse](t, rec)
	assert.Equal(t, "mock", got.Provider)
	assert.False(t, got.HasAPIKey)

	rec = do(t, mux, http.MethodPut, "/api/settings", `{"model":" gpt-4o-mini ","apiKey":"sk-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	got = decodeBody[SettingsResponse](t, rec)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.True(t, got.HasAPIKey)
	assert.Equal(t, "sk-1", a.Settings().Snapshot().APIKey)
	assert.NotContains(t, rec.Body.String(), "sk-1")

	rec = do(t, mux, http.MethodPut, "/api/settings", `{"provider":"bogus"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	tests := map[models.FailureKind]int{
		models.FailureInput:         http.StatusBadRequest,
		models.FailureConfiguration: http.StatusServiceUnavailable,
		models.FailureQuota:         http.StatusTooManyRequests,
		models.FailureTransport:     http.StatusBadGateway,
		models.FailureExtraction:    http.StatusBadGateway,
		models.FailureInternal:      http.StatusInternalServerError,
	}
	for kind, want := range tests {
		assert.Equal(t, want, StatusFor(&models.Failure{Kind: kind}), string(kind))
	}
	assert.Equal(t, http.StatusOK, StatusFor(nil))
}

func TestCORSMiddleware(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	h := CORSMiddleware(inner, "http://localhost:5173")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/risk", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
