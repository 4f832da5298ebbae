package config

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProperty_ConfigurationStructure(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("configuration should be fully accessible programmatically", prop.ForAll(
		func(dbPort int, workers int) bool {
			config := &Config{
				Server: ServerConfig{
					Port: "8080",
					Host: "0.0.0.0",
				},
				Database: DatabaseConfig{
					Host:     "localhost",
					Port:     dbPort,
					User:     "testuser",
					Password: "testpass",
					DBName:   "testdb",
					SSLMode:  "disable",
				},
				Logging: LoggingConfig{
					Level:  "info",
					Format: "json",
				},
				Importer: ImporterConfig{
					DecimalSeparator:   ",",
					ThousandsSeparator: ".",
					DateFormats:        []string{"DD/MM/YYYY"},
					TransformWorkers:   workers,
				},
			}

			if config.Server.Port == "" || config.Server.Host == "" {
				return false
			}

			if config.Database.Host == "" || config.Database.Port <= 0 || config.Database.Port > 65535 {
				return false
			}

			if config.Logging.Level == "" || config.Logging.Format == "" {
				return false
			}

			// Importer settings drive value parsing, so they must always be
			// present and structurally valid.
			return config.Importer.DecimalSeparator != "" &&
				config.Importer.ThousandsSeparator != "" &&
				len(config.Importer.DateFormats) > 0 &&
				config.Importer.TransformWorkers > 0
		},
		gen.IntRange(1, 65535), // dbPort
		gen.IntRange(1, 64),    // workers
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestLoadConfig(t *testing.T) {
	// Test that configuration can be loaded successfully
	config, err := LoadConfig()
	require.NoError(t, err)
	assert.NotNil(t, config)

	// Verify default values are set
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
	assert.Equal(t, "localhost", config.Database.Host)
	assert.Equal(t, 5432, config.Database.Port)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)

	// Redis cache pool defaults
	assert.Equal(t, 10, config.Redis.PoolSize)
	assert.Equal(t, 2, config.Redis.MinIdleConns)

	// Importer defaults: Brazilian number formatting, day-first dates
	assert.Equal(t, ",", config.Importer.DecimalSeparator)
	assert.Equal(t, ".", config.Importer.ThousandsSeparator)
	assert.Equal(t, []string{"DD/MM/YYYY", "YYYY-MM-DD", "MM/DD/YYYY"}, config.Importer.DateFormats)
	assert.Equal(t, 4, config.Importer.TransformWorkers)

	// Cache defaults
	assert.True(t, config.Cache.Enabled)
	assert.Equal(t, 300, config.Cache.DefaultTTL)
	assert.Equal(t, 900, config.Cache.ConfigurationTTL)
}
