package services

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financial-import-platform/internal/config"
	"financial-import-platform/internal/logger"
	"financial-import-platform/internal/mapping"
)

// createTestLogger creates a logger for testing
func createTestLogger() *logger.Logger {
	return &logger.Logger{Logger: logrus.New()}
}

// createTestConfig returns an application config with caching disabled and the
// default Brazilian importer settings.
func createTestConfig() *config.Config {
	return &config.Config{
		Logging: config.LoggingConfig{Level: "error", Format: "text"},
		Importer: config.ImporterConfig{
			DecimalSeparator:   ",",
			ThousandsSeparator: ".",
			DateFormats:        []string{"DD/MM/YYYY", "YYYY-MM-DD", "MM/DD/YYYY"},
			TransformWorkers:   2,
		},
		Cache: config.CacheConfig{Enabled: false},
	}
}

func createTestMappingService(t *testing.T) MappingService {
	t.Helper()
	svc, err := NewMappingService(createTestLogger(), createTestConfig())
	require.NoError(t, err)
	return svc
}

func sampleColumns() []mapping.Column {
	return []mapping.Column{
		{Name: "Empresa", Index: 0, InferredType: mapping.TypeText, Samples: []interface{}{"Filial Sul", "Matriz"}},
		{Name: "Conta Contábil", Index: 1, InferredType: mapping.TypeText, Samples: []interface{}{"1.01.001", "3.01.002"}},
		{Name: "Data", Index: 2, InferredType: mapping.TypeText, Samples: []interface{}{"31/01/2024", "29/02/2024"}},
		{Name: "Valor", Index: 3, InferredType: mapping.TypeText, Samples: []interface{}{"1.234,56", "-500,00"}},
	}
}

func TestMappingServiceResolveAndApply(t *testing.T) {
	svc := createTestMappingService(t)
	ctx := context.Background()

	t.Run("resolves a typical sheet", func(t *testing.T) {
		mappings, summary, err := svc.ResolveMapping(ctx, sampleColumns(), mapping.DefaultConfig())
		require.NoError(t, err)
		assert.True(t, summary.IsValid)
		assert.Len(t, mappings, 4)
	})

	t.Run("importer defaults fill unset locale options", func(t *testing.T) {
		// No separators or date formats in the request config; the service
		// must fall back to the importer configuration.
		cfg := mapping.Config{AutoDetect: true}

		mappings, _, err := svc.ResolveMapping(ctx, sampleColumns(), cfg)
		require.NoError(t, err)

		rows := [][]interface{}{
			{"Matriz", "1.01.001", "31/01/2024", "1.234,56"},
		}
		records := svc.ApplyMapping(ctx, rows, mappings, cfg)
		require.Len(t, records, 1)
		assert.InDelta(t, 1234.56, records[0][mapping.FieldValue].(float64), 1e-9)
	})

	t.Run("render report delegates to the engine", func(t *testing.T) {
		mappings, summary, err := svc.ResolveMapping(ctx, sampleColumns(), mapping.DefaultConfig())
		require.NoError(t, err)

		report := svc.RenderReport(mappings, summary)
		assert.Contains(t, report, "Column Mapping Report")
		assert.Contains(t, report, "Validation: VALID")
	})

	t.Run("unknown custom mapping target surfaces as an error", func(t *testing.T) {
		cfg := mapping.DefaultConfig()
		cfg.CustomMappings = map[string]string{"Valor": "bogus"}

		_, _, err := svc.ResolveMapping(ctx, sampleColumns(), cfg)
		require.Error(t, err)
		var unknown *mapping.UnknownFieldError
		assert.ErrorAs(t, err, &unknown)
	})
}

func TestProperty_ResolvedMappingsAreWellFormed(t *testing.T) {
	svc := createTestMappingService(t)
	ctx := context.Background()

	properties := gopter.NewProperties(nil)

	properties.Property("every accepted mapping has an in-range confidence and a known target", prop.ForAll(
		func(names []string) bool {
			columns := make([]mapping.Column, 0, len(names))
			for i, name := range names {
				columns = append(columns, mapping.Column{Name: name, Index: i, InferredType: mapping.TypeText})
			}

			mappings, _, err := svc.ResolveMapping(ctx, columns, mapping.DefaultConfig())
			if err != nil {
				return false
			}
			if len(mappings) > len(columns) {
				return false
			}
			for _, m := range mappings {
				if m.Confidence < 0 || m.Confidence > 1 {
					return false
				}
				if _, err := svc.Registry().Lookup(m.TargetField); err != nil {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.AnyString()),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
