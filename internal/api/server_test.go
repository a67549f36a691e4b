package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gofit/app"
	"gofit/internal/config"
	"gofit/models"
)

func newTestServer() *Server {
	service := app.NewFitService(app.NewAnalysisBuilder(nil), nil)
	defaults := config.BootstrapConfig{Datasets: 200, Workers: 1}
	return NewServer(service, defaults, nil)
}

func analysisBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	def := models.AnalysisDef{
		Name: "mu fit",
		Parameters: []models.ParameterDef{
			{Name: "mu", Min: 0, Central: 1.0, Max: 2.0},
		},
		Constraints: []models.ConstraintDef{
			{
				Name: "mu measurement",
				Blocks: []models.BlockDef{
					{
						Type:         models.BlockTypeGaussian,
						Observable:   &models.ObservableDef{Name: "parameter::value,name=mu"},
						Min:          0.9,
						Central:      1.0,
						Max:          1.1,
						Observations: 1,
					},
				},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(def))
	return &buf
}

func TestServerHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServerEvaluate(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", analysisBody(t))
	newTestServer().Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report models.EvaluationReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, "mu fit", report.Analysis)
	assert.Equal(t, uint(1), report.Observations)
	require.Len(t, report.Constraints, 1)
}

func TestServerEvaluateRejectsBadBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", strings.NewReader("{not json"))
	newTestServer().Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "INVALID_INPUT", resp.Code)
}

func TestServerEvaluateUnknownObservable(t *testing.T) {
	def := models.AnalysisDef{
		Parameters: []models.ParameterDef{{Name: "mu", Min: 0, Central: 1, Max: 2}},
		Constraints: []models.ConstraintDef{
			{
				Name: "unmatched",
				Blocks: []models.BlockDef{
					{
						Type:       models.BlockTypeGaussian,
						Observable: &models.ObservableDef{Name: "b->gamma::BR@Belle"},
						Min:        0.9, Central: 1.0, Max: 1.1,
					},
				},
			},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(def))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/evaluate", &buf)
	newTestServer().Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServerBootstrap(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bootstrap?datasets=100&workers=2", analysisBody(t))
	newTestServer().Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var report models.BootstrapReport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&report))
	assert.Equal(t, uint(100), report.Datasets)
	assert.Equal(t, 2, report.Workers)
	assert.GreaterOrEqual(t, report.PValue, 0.0)
	assert.LessOrEqual(t, report.PValue, 1.0)
}

func TestServerBootstrapRejectsBadQuery(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/bootstrap?datasets=0", analysisBody(t))
	newTestServer().Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServerReport(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/report", analysisBody(t))
	newTestServer().Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "# Fit report: mu fit")

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/report?format=html", analysisBody(t))
	newTestServer().Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1")
}
