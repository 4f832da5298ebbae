package services

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"financial-import-platform/internal/config"
	"financial-import-platform/internal/logger"
	"financial-import-platform/internal/mapping"
)

var (
	resolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mapping_resolutions_total",
		Help: "Number of mapping resolutions, labelled by validation outcome",
	}, []string{"valid"})

	mappingConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mapping_confidence",
		Help:    "Confidence of accepted column mappings",
		Buckets: prometheus.LinearBuckets(0, 0.1, 11),
	})

	rowsTransformedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mapping_rows_transformed_total",
		Help: "Number of raw rows converted into canonical records",
	})
)

// mappingService implements MappingService over the pure mapping engine,
// adding logging, metrics and configuration defaults.
type mappingService struct {
	logger   *logger.Logger
	config   *config.Config
	resolver *mapping.Resolver
}

// NewMappingService creates the mapping service. The field registry is built
// once here, with optional pattern overrides from the importer configuration.
func NewMappingService(log *logger.Logger, cfg *config.Config) (MappingService, error) {
	overrides, err := mapping.LoadPatternOverrides(cfg.Importer.RegistryOverridePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry overrides: %w", err)
	}
	registry, err := mapping.NewRegistryWithOverrides(overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to build field registry: %w", err)
	}

	return &mappingService{
		logger:   log,
		config:   cfg,
		resolver: mapping.NewResolver(registry),
	}, nil
}

// Registry exposes the canonical field registry.
func (s *mappingService) Registry() *mapping.Registry {
	return s.resolver.Registry()
}

// ResolveMapping resolves columns against the registry using the given config.
func (s *mappingService) ResolveMapping(ctx context.Context, columns []mapping.Column, cfg mapping.Config) ([]mapping.ColumnMapping, mapping.ValidationSummary, error) {
	mappings, summary, err := s.resolver.Resolve(columns, s.withImporterDefaults(cfg))
	if err != nil {
		s.logger.WithError(err).Error("Mapping resolution failed")
		return nil, mapping.ValidationSummary{}, err
	}

	resolutionsTotal.WithLabelValues(fmt.Sprintf("%t", summary.IsValid)).Inc()
	for _, m := range mappings {
		mappingConfidence.Observe(m.Confidence)
	}

	s.logger.WithField("mappings", len(mappings)).
		WithField("valid", summary.IsValid).
		Info("Resolved column mappings")
	return mappings, summary, nil
}

// ApplyMapping converts raw rows into canonical records, fanning out per row
// when the importer is configured with more than one transform worker.
func (s *mappingService) ApplyMapping(ctx context.Context, rows [][]interface{}, mappings []mapping.ColumnMapping, cfg mapping.Config) []mapping.Record {
	records := mapping.ApplyParallel(rows, mappings, s.withImporterDefaults(cfg), s.config.Importer.TransformWorkers)
	rowsTransformedTotal.Add(float64(len(records)))
	return records
}

// RenderReport formats a resolved mapping set for diagnostics.
func (s *mappingService) RenderReport(mappings []mapping.ColumnMapping, summary mapping.ValidationSummary) string {
	return mapping.RenderReport(mappings, summary)
}

// withImporterDefaults fills unset locale options from the importer config.
func (s *mappingService) withImporterDefaults(cfg mapping.Config) mapping.Config {
	if cfg.DecimalSeparator == "" {
		cfg.DecimalSeparator = s.config.Importer.DecimalSeparator
	}
	if cfg.ThousandsSeparator == "" {
		cfg.ThousandsSeparator = s.config.Importer.ThousandsSeparator
	}
	if len(cfg.DateFormats) == 0 {
		cfg.DateFormats = s.config.Importer.DateFormats
	}
	return cfg
}
