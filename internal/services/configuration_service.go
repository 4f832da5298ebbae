package services

import (
	"context"
	"fmt"
	"regexp"

	"financial-import-platform/internal/config"
	"financial-import-platform/internal/logger"
	"financial-import-platform/internal/mapping"
	"financial-import-platform/internal/models"
	"financial-import-platform/internal/repositories"
)

// configurationService implements ConfigurationService
type configurationService struct {
	logger     *logger.Logger
	config     *config.Config
	repo       repositories.MappingConfigurationRepository
	cache      *CacheService
	validation *models.ValidationService
	mappingSvc MappingService
}

// NewConfigurationService creates a new configuration service
func NewConfigurationService(
	log *logger.Logger,
	cfg *config.Config,
	repo repositories.MappingConfigurationRepository,
	cache *CacheService,
	validation *models.ValidationService,
	mappingSvc MappingService,
) ConfigurationService {
	return &configurationService{
		logger:     log,
		config:     cfg,
		repo:       repo,
		cache:      cache,
		validation: validation,
		mappingSvc: mappingSvc,
	}
}

// CreateConfiguration validates and persists a new mapping configuration
func (s *configurationService) CreateConfiguration(ctx context.Context, config *models.MappingConfiguration) (*models.MappingConfiguration, error) {
	if err := s.validateConfiguration(config); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to create mapping configuration: %w", err)
	}

	s.logger.WithConfig(config.ID).Info("Created mapping configuration")
	return config, nil
}

// UpdateConfiguration validates and persists changes to a mapping configuration
func (s *configurationService) UpdateConfiguration(ctx context.Context, config *models.MappingConfiguration) (*models.MappingConfiguration, error) {
	if err := s.validateConfiguration(config); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, config); err != nil {
		return nil, fmt.Errorf("failed to update mapping configuration: %w", err)
	}

	s.invalidate(ctx, config)
	s.logger.WithConfig(config.ID).Info("Updated mapping configuration")
	return config, nil
}

// DeleteConfiguration removes a mapping configuration
func (s *configurationService) DeleteConfiguration(ctx context.Context, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load mapping configuration %s: %w", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete mapping configuration %s: %w", id, err)
	}

	s.invalidate(ctx, existing)
	s.logger.WithConfig(id).Info("Deleted mapping configuration")
	return nil
}

// GetConfiguration retrieves a mapping configuration by ID, cache first
func (s *configurationService) GetConfiguration(ctx context.Context, id string) (*models.MappingConfiguration, error) {
	if s.config.Cache.Enabled {
		var cached models.MappingConfiguration
		if err := s.cache.Get(ctx, s.cache.BuildConfigurationKey(id), &cached); err == nil {
			return &cached, nil
		}
	}

	cfg, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.config.Cache.Enabled {
		_ = s.cache.Set(ctx, s.cache.BuildConfigurationKey(id), cfg, s.cache.ConfigurationTTL())
	}
	return cfg, nil
}

// GetConfigurationByName retrieves a mapping configuration by name, cache first
func (s *configurationService) GetConfigurationByName(ctx context.Context, name string) (*models.MappingConfiguration, error) {
	if s.config.Cache.Enabled {
		var cached models.MappingConfiguration
		if err := s.cache.Get(ctx, s.cache.BuildConfigurationNameKey(name), &cached); err == nil {
			return &cached, nil
		}
	}

	cfg, err := s.repo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if s.config.Cache.Enabled {
		_ = s.cache.Set(ctx, s.cache.BuildConfigurationNameKey(name), cfg, s.cache.ConfigurationTTL())
	}
	return cfg, nil
}

// GetConfigurations retrieves all mapping configurations
func (s *configurationService) GetConfigurations(ctx context.Context) ([]*models.MappingConfiguration, error) {
	return s.repo.GetAll(ctx)
}

// MatchConfigurationForFile finds the first active configuration whose file
// pattern matches the incoming file name. Used by the ingestion pipeline when
// no configuration name was supplied.
func (s *configurationService) MatchConfigurationForFile(ctx context.Context, fileName string) (*models.MappingConfiguration, error) {
	configs, err := s.repo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active configurations: %w", err)
	}

	for _, cfg := range configs {
		if cfg.FilePattern == "" {
			continue
		}
		matched, err := regexp.MatchString(cfg.FilePattern, fileName)
		if err != nil {
			s.logger.WithConfig(cfg.ID).WithError(err).Warn("Invalid file pattern, skipping")
			continue
		}
		if matched {
			return cfg, nil
		}
	}

	return nil, nil
}

// TestConfiguration resolves and applies a stored configuration against
// caller-supplied sample columns and rows, returning the full diagnostic
// result including the rendered report.
func (s *configurationService) TestConfiguration(ctx context.Context, id string, columns []mapping.Column, rows [][]interface{}) (*TestResult, error) {
	stored, err := s.GetConfiguration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load mapping configuration %s: %w", id, err)
	}

	cfg := stored.ToMappingConfig()
	mappings, summary, err := s.mappingSvc.ResolveMapping(ctx, columns, cfg)
	if err != nil {
		return nil, err
	}

	result := &TestResult{
		Mappings: mappings,
		Summary:  summary,
		Report:   s.mappingSvc.RenderReport(mappings, summary),
	}
	if len(rows) > 0 {
		result.Records = s.mappingSvc.ApplyMapping(ctx, rows, mappings, cfg)
	}
	return result, nil
}

// validateConfiguration checks the struct fields, the file pattern and that
// every custom mapping targets a registered canonical field.
func (s *configurationService) validateConfiguration(config *models.MappingConfiguration) error {
	if err := s.validation.ValidateStruct(config); err != nil {
		return err
	}

	if config.FilePattern != "" {
		if _, err := regexp.Compile(config.FilePattern); err != nil {
			return fmt.Errorf("invalid file pattern %q: %w", config.FilePattern, err)
		}
	}

	registry := s.mappingSvc.Registry()
	for column, fieldID := range config.CustomMappings {
		if _, err := registry.Lookup(fieldID); err != nil {
			return fmt.Errorf("custom mapping for column %q: %w", column, err)
		}
	}
	for _, fieldID := range config.RequiredFields {
		if _, err := registry.Lookup(fieldID); err != nil {
			return fmt.Errorf("required field: %w", err)
		}
	}

	return nil
}

func (s *configurationService) invalidate(ctx context.Context, config *models.MappingConfiguration) {
	if !s.config.Cache.Enabled || config == nil {
		return
	}
	_ = s.cache.Delete(ctx, s.cache.BuildConfigurationKey(config.ID))
	_ = s.cache.Delete(ctx, s.cache.BuildConfigurationNameKey(config.Name))
}
