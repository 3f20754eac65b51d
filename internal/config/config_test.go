package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Env:                      "development",
		Port:                     "8080",
		DBDriver:                 "postgres",
		DBPassword:               "secure-password",
		DBSSLMode:                "require",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		ImageMaxUploadSizeMB:     10,
		DBConnMaxLifetimeMinutes: 1,
		TracingSamplerRatio:      1,
		CSRFEnabled:              true,
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with disable SSL mode", "prod", "disable", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"missing port", func(c *Config) { c.Port = "" }, "PORT is required"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET is required"},
		{"zero upload size", func(c *Config) { c.ImageMaxUploadSizeMB = 0 }, "IMAGE_MAX_UPLOAD_SIZE_MB"},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, "unsupported DB_DRIVER"},
		{"sampler out of range", func(c *Config) { c.TracingSamplerRatio = 1.5 }, "TRACING_SAMPLER_RATIO"},
		{"default secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = defaultJWTSecret
		}, "must be changed"},
		{"short secret in production", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "short"
		}, "at least 32 characters"},
		{"weak db password in production", func(c *Config) {
			c.Env = "production"
			c.DBPassword = "password"
		}, "DB_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestConfig_ValidateSQLiteInProductionSkipsDBChecks(t *testing.T) {
	c := validConfig()
	c.Env = "production"
	c.DBDriver = "sqlite"
	c.DBPassword = ""
	c.DBSSLMode = ""

	assert.NoError(t, c.Validate())
}

func TestConfig_MaxUploadBytes(t *testing.T) {
	c := &Config{ImageMaxUploadSizeMB: 2}
	assert.Equal(t, int64(2*1024*1024), c.MaxUploadBytes())
}

func TestLoadConfig_Normalization(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("DB_DRIVER", "SQLite")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "sqlite", c.DBDriver)
}

func TestLoadConfig_Defaults(t *testing.T) {
	defer viper.Reset()
	_ = os.Unsetenv("PORT")
	t.Setenv("APP_ENV", "test")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8375", c.Port)
	assert.True(t, c.CSRFEnabled)
	assert.Equal(t, 10, c.ImageMaxUploadSizeMB)
	assert.Equal(t, "stdout", c.TracingExporter)
}

func TestLoadConfig_MissingProfileFails(t *testing.T) {
	defer viper.Reset()
	t.Setenv("APP_ENV", "staging-nonexistent")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.staging-nonexistent.yml")
}
