package services

import (
	"context"

	"financial-import-platform/internal/mapping"
	"financial-import-platform/internal/models"
)

// MappingService exposes the column mapping engine to the HTTP layer and the
// ingestion pipeline.
type MappingService interface {
	ResolveMapping(ctx context.Context, columns []mapping.Column, cfg mapping.Config) ([]mapping.ColumnMapping, mapping.ValidationSummary, error)
	ApplyMapping(ctx context.Context, rows [][]interface{}, mappings []mapping.ColumnMapping, cfg mapping.Config) []mapping.Record
	RenderReport(mappings []mapping.ColumnMapping, summary mapping.ValidationSummary) string
	Registry() *mapping.Registry
}

// TestResult is the outcome of running a configuration against sample data.
type TestResult struct {
	Mappings []mapping.ColumnMapping   `json:"mappings"`
	Summary  mapping.ValidationSummary `json:"summary"`
	Records  []mapping.Record          `json:"records,omitempty"`
	Report   string                    `json:"report"`
}

// ConfigurationService defines the interface for mapping configuration management
type ConfigurationService interface {
	CreateConfiguration(ctx context.Context, config *models.MappingConfiguration) (*models.MappingConfiguration, error)
	UpdateConfiguration(ctx context.Context, config *models.MappingConfiguration) (*models.MappingConfiguration, error)
	DeleteConfiguration(ctx context.Context, id string) error
	GetConfiguration(ctx context.Context, id string) (*models.MappingConfiguration, error)
	GetConfigurationByName(ctx context.Context, name string) (*models.MappingConfiguration, error)
	GetConfigurations(ctx context.Context) ([]*models.MappingConfiguration, error)
	MatchConfigurationForFile(ctx context.Context, fileName string) (*models.MappingConfiguration, error)
	TestConfiguration(ctx context.Context, id string, columns []mapping.Column, rows [][]interface{}) (*TestResult, error)
}
