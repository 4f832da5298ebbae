package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"financial-import-platform/internal/logger"
	"financial-import-platform/internal/mapping"
	"financial-import-platform/internal/models"
	"financial-import-platform/internal/services"
)

// ConfigurationHandler handles HTTP requests for mapping configuration management
type ConfigurationHandler struct {
	logger    *logger.Logger
	configSvc services.ConfigurationService
}

// NewConfigurationHandler creates a new configuration handler
func NewConfigurationHandler(logger *logger.Logger, configSvc services.ConfigurationService) *ConfigurationHandler {
	return &ConfigurationHandler{
		logger:    logger,
		configSvc: configSvc,
	}
}

// RegisterRoutes registers all configuration management routes
func (h *ConfigurationHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/mapping-configs", h.CreateConfiguration).Methods("POST")
	router.HandleFunc("/api/v1/mapping-configs", h.GetConfigurations).Methods("GET")
	router.HandleFunc("/api/v1/mapping-configs/match", h.MatchConfiguration).Methods("GET")
	router.HandleFunc("/api/v1/mapping-configs/{id}", h.GetConfiguration).Methods("GET")
	router.HandleFunc("/api/v1/mapping-configs/{id}", h.UpdateConfiguration).Methods("PUT")
	router.HandleFunc("/api/v1/mapping-configs/{id}", h.DeleteConfiguration).Methods("DELETE")
	router.HandleFunc("/api/v1/mapping-configs/{id}/test", h.TestConfiguration).Methods("POST")
}

// CreateConfiguration creates a new mapping configuration
func (h *ConfigurationHandler) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var config models.MappingConfiguration
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.configSvc.CreateConfiguration(r.Context(), &config)
	if err != nil {
		var unknownField *mapping.UnknownFieldError
		if errors.As(err, &unknownField) {
			writeErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to create mapping configuration")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to create configuration")
		return
	}

	writeJSONResponse(w, http.StatusCreated, created)
}

// GetConfiguration retrieves a mapping configuration by ID
func (h *ConfigurationHandler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	config, err := h.configSvc.GetConfiguration(r.Context(), id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get mapping configuration")
		writeErrorResponse(w, http.StatusNotFound, "Configuration not found")
		return
	}

	writeJSONResponse(w, http.StatusOK, config)
}

// GetConfigurations retrieves all mapping configurations
func (h *ConfigurationHandler) GetConfigurations(w http.ResponseWriter, r *http.Request) {
	configs, err := h.configSvc.GetConfigurations(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list mapping configurations")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to list configurations")
		return
	}

	writeJSONResponse(w, http.StatusOK, configs)
}

// MatchConfiguration finds the configuration whose file pattern matches the
// given file name (?file=...).
func (h *ConfigurationHandler) MatchConfiguration(w http.ResponseWriter, r *http.Request) {
	fileName := r.URL.Query().Get("file")
	if fileName == "" {
		writeErrorResponse(w, http.StatusBadRequest, "Missing 'file' query parameter")
		return
	}

	config, err := h.configSvc.MatchConfigurationForFile(r.Context(), fileName)
	if err != nil {
		h.logger.WithError(err).Error("Failed to match configuration for file")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to match configuration")
		return
	}
	if config == nil {
		writeErrorResponse(w, http.StatusNotFound, "No configuration matches this file name")
		return
	}

	writeJSONResponse(w, http.StatusOK, config)
}

// UpdateConfiguration updates an existing mapping configuration
func (h *ConfigurationHandler) UpdateConfiguration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var config models.MappingConfiguration
	if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	config.ID = id
	updated, err := h.configSvc.UpdateConfiguration(r.Context(), &config)
	if err != nil {
		var unknownField *mapping.UnknownFieldError
		if errors.As(err, &unknownField) {
			writeErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.WithError(err).Error("Failed to update mapping configuration")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to update configuration")
		return
	}

	writeJSONResponse(w, http.StatusOK, updated)
}

// DeleteConfiguration deletes a mapping configuration
func (h *ConfigurationHandler) DeleteConfiguration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.configSvc.DeleteConfiguration(r.Context(), id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "Configuration not found")
			return
		}
		h.logger.WithError(err).Error("Failed to delete mapping configuration")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to delete configuration")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// TestRequest is the payload for testing a configuration against sample data.
type TestRequest struct {
	Columns []mapping.Column `json:"columns"`
	Rows    [][]interface{}  `json:"rows,omitempty"`
}

// TestConfiguration runs a stored configuration against sample columns/rows
func (h *ConfigurationHandler) TestConfiguration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req TestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.configSvc.TestConfiguration(r.Context(), id, req.Columns, req.Rows)
	if err != nil {
		var unknownField *mapping.UnknownFieldError
		if errors.As(err, &unknownField) {
			writeErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeErrorResponse(w, http.StatusNotFound, "Configuration not found")
			return
		}
		h.logger.WithError(err).Error("Failed to test mapping configuration")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to test configuration")
		return
	}

	writeJSONResponse(w, http.StatusOK, result)
}
