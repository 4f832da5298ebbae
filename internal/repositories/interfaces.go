package repositories

import (
	"context"

	"financial-import-platform/internal/models"
)

// MappingConfigurationRepository defines data access for persisted mapping
// configurations.
type MappingConfigurationRepository interface {
	Create(ctx context.Context, config *models.MappingConfiguration) error
	GetByID(ctx context.Context, id string) (*models.MappingConfiguration, error)
	GetByName(ctx context.Context, name string) (*models.MappingConfiguration, error)
	GetAll(ctx context.Context) ([]*models.MappingConfiguration, error)
	GetActive(ctx context.Context) ([]*models.MappingConfiguration, error)
	Update(ctx context.Context, config *models.MappingConfiguration) error
	Delete(ctx context.Context, id string) error
}
