package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"financial-import-platform/internal/logger"
	"financial-import-platform/internal/mapping"
	"financial-import-platform/internal/services"
)

// MappingHandler handles HTTP requests for ad hoc mapping resolution,
// transformation and diagnostics.
type MappingHandler struct {
	logger     *logger.Logger
	mappingSvc services.MappingService
}

// NewMappingHandler creates a new mapping handler
func NewMappingHandler(logger *logger.Logger, mappingSvc services.MappingService) *MappingHandler {
	return &MappingHandler{
		logger:     logger,
		mappingSvc: mappingSvc,
	}
}

// RegisterRoutes registers the mapping engine routes
func (h *MappingHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/mappings/resolve", h.ResolveMapping).Methods("POST")
	router.HandleFunc("/api/v1/mappings/apply", h.ApplyMapping).Methods("POST")
	router.HandleFunc("/api/v1/mappings/report", h.RenderReport).Methods("POST")
	router.HandleFunc("/api/v1/fields", h.ListFields).Methods("GET")
}

// ResolveRequest is the payload for ad hoc mapping resolution.
type ResolveRequest struct {
	Columns []mapping.Column `json:"columns"`
	Config  *mapping.Config  `json:"config,omitempty"`
}

// ResolveResponse carries a resolved mapping set and its validation summary.
type ResolveResponse struct {
	Mappings []mapping.ColumnMapping   `json:"mappings"`
	Summary  mapping.ValidationSummary `json:"summary"`
}

// ResolveMapping resolves column metadata against the field registry
func (h *MappingHandler) ResolveMapping(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg := mapping.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	mappings, summary, err := h.mappingSvc.ResolveMapping(r.Context(), req.Columns, cfg)
	if err != nil {
		var unknownField *mapping.UnknownFieldError
		if errors.As(err, &unknownField) {
			writeErrorResponse(w, http.StatusBadRequest, unknownField.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to resolve mapping")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to resolve mapping")
		return
	}

	writeJSONResponse(w, http.StatusOK, ResolveResponse{Mappings: mappings, Summary: summary})
}

// ApplyRequest is the payload for transforming raw rows.
type ApplyRequest struct {
	Rows     [][]interface{}         `json:"rows"`
	Mappings []mapping.ColumnMapping `json:"mappings"`
	Config   *mapping.Config         `json:"config,omitempty"`
}

// ApplyMapping converts raw rows into canonical records
func (h *MappingHandler) ApplyMapping(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	cfg := mapping.DefaultConfig()
	if req.Config != nil {
		cfg = *req.Config
	}

	records := h.mappingSvc.ApplyMapping(r.Context(), req.Rows, req.Mappings, cfg)
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"records": records})
}

// ReportRequest is the payload for rendering a mapping report.
type ReportRequest struct {
	Mappings []mapping.ColumnMapping   `json:"mappings"`
	Summary  mapping.ValidationSummary `json:"summary"`
}

// RenderReport renders a human-readable mapping report
func (h *MappingHandler) RenderReport(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	report := h.mappingSvc.RenderReport(req.Mappings, req.Summary)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report))
}

// FieldInfo describes one canonical field for API consumers.
type FieldInfo struct {
	ID               string   `json:"id"`
	DefaultTransform string   `json:"default_transform,omitempty"`
	NaturalType      string   `json:"natural_type"`
	ValidationRules  []string `json:"validation_rules,omitempty"`
}

// ListFields enumerates the canonical field registry
func (h *MappingHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	fields := h.mappingSvc.Registry().All()
	infos := make([]FieldInfo, 0, len(fields))
	for _, f := range fields {
		infos = append(infos, FieldInfo{
			ID:               f.ID,
			DefaultTransform: f.DefaultTransform,
			NaturalType:      string(f.NaturalType),
			ValidationRules:  f.ValidationRules,
		})
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{"fields": infos})
}

// Shared response helpers for all handlers in this package.
func writeJSONResponse(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeErrorResponse(w http.ResponseWriter, status int, message string) {
	writeJSONResponse(w, status, map[string]string{"error": message})
}
