package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"financial-import-platform/internal/mapping"
	"financial-import-platform/internal/models"
)

// MockMappingConfigurationRepository is a mock implementation of
// MappingConfigurationRepository for testing
type MockMappingConfigurationRepository struct {
	mock.Mock
}

func (m *MockMappingConfigurationRepository) Create(ctx context.Context, config *models.MappingConfiguration) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockMappingConfigurationRepository) GetByID(ctx context.Context, id string) (*models.MappingConfiguration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MappingConfiguration), args.Error(1)
}

func (m *MockMappingConfigurationRepository) GetByName(ctx context.Context, name string) (*models.MappingConfiguration, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MappingConfiguration), args.Error(1)
}

func (m *MockMappingConfigurationRepository) GetAll(ctx context.Context) ([]*models.MappingConfiguration, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.MappingConfiguration), args.Error(1)
}

func (m *MockMappingConfigurationRepository) GetActive(ctx context.Context) ([]*models.MappingConfiguration, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.MappingConfiguration), args.Error(1)
}

func (m *MockMappingConfigurationRepository) Update(ctx context.Context, config *models.MappingConfiguration) error {
	args := m.Called(ctx, config)
	return args.Error(0)
}

func (m *MockMappingConfigurationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func createTestConfigurationService(t *testing.T, repo *MockMappingConfigurationRepository) ConfigurationService {
	t.Helper()
	// Caching is disabled in the test config, so no cache service is needed.
	return NewConfigurationService(
		createTestLogger(),
		createTestConfig(),
		repo,
		nil,
		models.NewValidationService(),
		createTestMappingService(t),
	)
}

func TestCreateConfiguration(t *testing.T) {
	ctx := context.Background()

	t.Run("valid configuration is persisted", func(t *testing.T) {
		repo := &MockMappingConfigurationRepository{}
		svc := createTestConfigurationService(t, repo)

		cfg := &models.MappingConfiguration{
			Name:           "razao-mensal",
			FilePattern:    `^razao_\d{6}\.xlsx$`,
			AutoDetect:     true,
			CustomMappings: models.StringMap{"Vlr Lançamento": mapping.FieldValue},
			RequiredFields: models.StringList{mapping.FieldEntity, mapping.FieldAccount, mapping.FieldValue},
		}
		repo.On("Create", ctx, cfg).Return(nil)

		created, err := svc.CreateConfiguration(ctx, cfg)
		require.NoError(t, err)
		assert.Equal(t, cfg, created)
		repo.AssertExpectations(t)
	})

	t.Run("missing name fails validation", func(t *testing.T) {
		repo := &MockMappingConfigurationRepository{}
		svc := createTestConfigurationService(t, repo)

		_, err := svc.CreateConfiguration(ctx, &models.MappingConfiguration{})
		require.Error(t, err)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("custom mapping to an unregistered field is rejected", func(t *testing.T) {
		repo := &MockMappingConfigurationRepository{}
		svc := createTestConfigurationService(t, repo)

		cfg := &models.MappingConfiguration{
			Name:           "broken",
			CustomMappings: models.StringMap{"Coluna X": "ebitda"},
		}

		_, err := svc.CreateConfiguration(ctx, cfg)
		require.Error(t, err)
		var unknown *mapping.UnknownFieldError
		assert.ErrorAs(t, err, &unknown)
		assert.Equal(t, "ebitda", unknown.FieldID)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unregistered required field is rejected", func(t *testing.T) {
		repo := &MockMappingConfigurationRepository{}
		svc := createTestConfigurationService(t, repo)

		cfg := &models.MappingConfiguration{
			Name:           "broken",
			RequiredFields: models.StringList{"margin"},
		}

		_, err := svc.CreateConfiguration(ctx, cfg)
		var unknown *mapping.UnknownFieldError
		assert.ErrorAs(t, err, &unknown)
	})

	t.Run("invalid file pattern is rejected", func(t *testing.T) {
		repo := &MockMappingConfigurationRepository{}
		svc := createTestConfigurationService(t, repo)

		cfg := &models.MappingConfiguration{Name: "broken", FilePattern: "("}

		_, err := svc.CreateConfiguration(ctx, cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid file pattern")
	})
}

func TestDeleteConfiguration(t *testing.T) {
	ctx := context.Background()

	t.Run("existing configuration", func(t *testing.T) {
		repo := &MockMappingConfigurationRepository{}
		svc := createTestConfigurationService(t, repo)

		stored := &models.MappingConfiguration{ID: "cfg-1", Name: "razao-mensal"}
		repo.On("GetByID", ctx, "cfg-1").Return(stored, nil)
		repo.On("Delete", ctx, "cfg-1").Return(nil)

		require.NoError(t, svc.DeleteConfiguration(ctx, "cfg-1"))
		repo.AssertExpectations(t)
	})

	t.Run("missing configuration", func(t *testing.T) {
		repo := &MockMappingConfigurationRepository{}
		svc := createTestConfigurationService(t, repo)

		repo.On("GetByID", ctx, "missing").Return(nil, errors.New("record not found"))

		err := svc.DeleteConfiguration(ctx, "missing")
		require.Error(t, err)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestGetConfiguration(t *testing.T) {
	ctx := context.Background()

	repo := &MockMappingConfigurationRepository{}
	svc := createTestConfigurationService(t, repo)

	stored := &models.MappingConfiguration{ID: "cfg-1", Name: "razao-mensal"}
	repo.On("GetByID", ctx, "cfg-1").Return(stored, nil)

	got, err := svc.GetConfiguration(ctx, "cfg-1")
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestMatchConfigurationForFile(t *testing.T) {
	ctx := context.Background()

	active := []*models.MappingConfiguration{
		{ID: "cfg-1", Name: "sem-padrao"},
		{ID: "cfg-2", Name: "padrao-quebrado", FilePattern: "("},
		{ID: "cfg-3", Name: "razao-mensal", FilePattern: `^razao_\d{6}\.xlsx$`},
	}

	t.Run("first matching pattern wins, invalid patterns are skipped", func(t *testing.T) {
		repo := &MockMappingConfigurationRepository{}
		svc := createTestConfigurationService(t, repo)
		repo.On("GetActive", ctx).Return(active, nil)

		got, err := svc.MatchConfigurationForFile(ctx, "razao_202401.xlsx")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "cfg-3", got.ID)
	})

	t.Run("no match yields nil without error", func(t *testing.T) {
		repo := &MockMappingConfigurationRepository{}
		svc := createTestConfigurationService(t, repo)
		repo.On("GetActive", ctx).Return(active, nil)

		got, err := svc.MatchConfigurationForFile(ctx, "balancete_2024.xlsx")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestTestConfiguration(t *testing.T) {
	ctx := context.Background()

	repo := &MockMappingConfigurationRepository{}
	svc := createTestConfigurationService(t, repo)

	stored := &models.MappingConfiguration{
		ID:             "cfg-1",
		Name:           "razao-mensal",
		AutoDetect:     true,
		RequiredFields: models.StringList{mapping.FieldEntity, mapping.FieldAccount, mapping.FieldValue},
	}
	repo.On("GetByID", ctx, "cfg-1").Return(stored, nil)

	rows := [][]interface{}{
		{"Matriz", "1.01.001", "31/01/2024", "1.234,56"},
		{"Filial Sul", "3.01.002", "29/02/2024", "-500,00"},
	}

	result, err := svc.TestConfiguration(ctx, "cfg-1", sampleColumns(), rows)
	require.NoError(t, err)
	assert.True(t, result.Summary.IsValid)
	assert.Len(t, result.Mappings, 4)
	assert.Contains(t, result.Report, "Column Mapping Report")

	// The text-typed Valor column must get the numeric transform so the raw
	// strings below come back as floats, not pass-through text.
	for _, m := range result.Mappings {
		if m.TargetField == mapping.FieldValue {
			assert.Equal(t, mapping.TransformParseNumber, m.Transform)
		}
	}

	require.Len(t, result.Records, 2)
	assert.InDelta(t, 1234.56, result.Records[0][mapping.FieldValue].(float64), 1e-9)
	assert.Equal(t, "Filial Sul", result.Records[1][mapping.FieldEntity])
}
