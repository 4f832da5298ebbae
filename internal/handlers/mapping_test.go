package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financial-import-platform/internal/config"
	"financial-import-platform/internal/logger"
	"financial-import-platform/internal/mapping"
	"financial-import-platform/internal/services"
)

func newTestMappingRouter(t *testing.T) *mux.Router {
	t.Helper()

	log := &logger.Logger{Logger: logrus.New()}
	cfg := &config.Config{
		Importer: config.ImporterConfig{
			DecimalSeparator:   ",",
			ThousandsSeparator: ".",
			DateFormats:        []string{"DD/MM/YYYY", "YYYY-MM-DD"},
			TransformWorkers:   2,
		},
	}
	svc, err := services.NewMappingService(log, cfg)
	require.NoError(t, err)

	router := mux.NewRouter()
	NewMappingHandler(log, svc).RegisterRoutes(router)
	return router
}

func TestMappingHandler_ResolveMapping(t *testing.T) {
	router := newTestMappingRouter(t)

	body := ResolveRequest{
		Columns: []mapping.Column{
			{Name: "Empresa", Index: 0, InferredType: mapping.TypeText, Samples: []interface{}{"Matriz"}},
			{Name: "Conta Contábil", Index: 1, InferredType: mapping.TypeText, Samples: []interface{}{"1.01.001"}},
			{Name: "Valor", Index: 2, InferredType: mapping.TypeNumber, Samples: []interface{}{"1.234,56"}},
		},
	}
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/mappings/resolve", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ResolveResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Len(t, resp.Mappings, 3)
	assert.True(t, resp.Summary.IsValid)
}

func TestMappingHandler_ResolveMapping_UnknownField(t *testing.T) {
	router := newTestMappingRouter(t)

	cfg := mapping.DefaultConfig()
	cfg.CustomMappings = map[string]string{"Valor": "ebitda"}
	payload, err := json.Marshal(ResolveRequest{
		Columns: []mapping.Column{{Name: "Valor", Index: 0, InferredType: mapping.TypeNumber}},
		Config:  &cfg,
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/mappings/resolve", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown canonical field: ebitda")
}

func TestMappingHandler_ResolveMapping_InvalidBody(t *testing.T) {
	router := newTestMappingRouter(t)

	req := httptest.NewRequest("POST", "/api/v1/mappings/resolve", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMappingHandler_ApplyMapping(t *testing.T) {
	router := newTestMappingRouter(t)

	payload, err := json.Marshal(ApplyRequest{
		Rows: [][]interface{}{
			{"1.01.001", "1.234,56"},
		},
		Mappings: []mapping.ColumnMapping{
			{SourceColumn: "Conta", SourceIndex: 0, TargetField: mapping.FieldAccount, Confidence: 1, Transform: mapping.TransformNormalizeText},
			{SourceColumn: "Valor", SourceIndex: 1, TargetField: mapping.FieldValue, Confidence: 1, Transform: mapping.TransformParseNumber},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/mappings/apply", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Records []map[string]interface{} `json:"records"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Records, 1)
	assert.Equal(t, "1.01.001", resp.Records[0][mapping.FieldAccount])
	assert.InDelta(t, 1234.56, resp.Records[0][mapping.FieldValue].(float64), 1e-9)
	assert.Equal(t, mapping.SourceFileImport, resp.Records[0][mapping.AuditSourceKey])
}

func TestMappingHandler_RenderReport(t *testing.T) {
	router := newTestMappingRouter(t)

	payload, err := json.Marshal(ReportRequest{
		Mappings: []mapping.ColumnMapping{
			{SourceColumn: "Valor", SourceIndex: 0, TargetField: mapping.FieldValue, Confidence: 0.9},
		},
		Summary: mapping.ValidationSummary{IsValid: true},
	})
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/mappings/report", bytes.NewReader(payload))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain")
	assert.Contains(t, w.Body.String(), "Column Mapping Report")
	assert.Contains(t, w.Body.String(), "Validation: VALID")
}

func TestMappingHandler_ListFields(t *testing.T) {
	router := newTestMappingRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/fields", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Fields []FieldInfo `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.NotEmpty(t, resp.Fields)
	assert.Equal(t, mapping.FieldEntity, resp.Fields[0].ID)

	ids := make(map[string]bool, len(resp.Fields))
	for _, f := range resp.Fields {
		ids[f.ID] = true
	}
	assert.True(t, ids[mapping.FieldValue])
	assert.True(t, ids[mapping.FieldPeriod])
}
