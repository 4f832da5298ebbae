package repositories

import (
	"context"

	"financial-import-platform/internal/database"
	"financial-import-platform/internal/models"
)

// mappingConfigurationRepository implements MappingConfigurationRepository
type mappingConfigurationRepository struct {
	db *database.Connection
}

// NewMappingConfigurationRepository creates a new mapping configuration repository
func NewMappingConfigurationRepository(db *database.Connection) MappingConfigurationRepository {
	return &mappingConfigurationRepository{db: db}
}

// Create creates a new mapping configuration
func (r *mappingConfigurationRepository) Create(ctx context.Context, config *models.MappingConfiguration) error {
	return r.db.WithContext(ctx).Create(config).Error
}

// GetByID retrieves a mapping configuration by ID
func (r *mappingConfigurationRepository) GetByID(ctx context.Context, id string) (*models.MappingConfiguration, error) {
	var config models.MappingConfiguration
	err := r.db.WithContext(ctx).First(&config, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// GetByName retrieves a mapping configuration by its unique name
func (r *mappingConfigurationRepository) GetByName(ctx context.Context, name string) (*models.MappingConfiguration, error) {
	var config models.MappingConfiguration
	err := r.db.WithContext(ctx).First(&config, "name = ?", name).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// GetAll retrieves all mapping configurations
func (r *mappingConfigurationRepository) GetAll(ctx context.Context) ([]*models.MappingConfiguration, error) {
	var configs []*models.MappingConfiguration
	err := r.db.WithContext(ctx).Order("name").Find(&configs).Error
	return configs, err
}

// GetActive retrieves all active mapping configurations
func (r *mappingConfigurationRepository) GetActive(ctx context.Context) ([]*models.MappingConfiguration, error) {
	var configs []*models.MappingConfiguration
	err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("name").Find(&configs).Error
	return configs, err
}

// Update updates an existing mapping configuration
func (r *mappingConfigurationRepository) Update(ctx context.Context, config *models.MappingConfiguration) error {
	return r.db.WithContext(ctx).Save(config).Error
}

// Delete soft deletes a mapping configuration
func (r *mappingConfigurationRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&models.MappingConfiguration{}, "id = ?", id).Error
}
