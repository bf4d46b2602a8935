package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "server:\n  address: \":9090\"\n"))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, StorageModeMemory, cfg.Storage.Mode)
	assert.True(t, cfg.Storage.Seed)
	assert.Equal(t, "report", cfg.DB.Table)
	assert.Equal(t, "mysql", cfg.DB.Driver)
	assert.False(t, cfg.IsSQL())
}

func TestLoadFileSQLStorage(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, `
storage:
  mode: sql
database:
  driver: postgres
  host: db.internal
  port: 5432
  user: reports
  password: c2VjcmV0
  name: reports
  table: reports
security:
  secret: topsecret
logging:
  level: debug
  format: json
`))
	require.NoError(t, err)

	assert.True(t, cfg.IsSQL())
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "reports", cfg.DB.Table)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("APP_STORAGE_MODE", "sql")
	t.Setenv("APP_DATABASE_DRIVER", "sqlite")
	t.Setenv("APP_DATABASE_NAME", "reports.db")
	t.Setenv("APP_LOGGING_LEVEL", "warn")

	cfg, err := LoadFile(writeConfig(t, "storage:\n  mode: memory\n"))
	require.NoError(t, err)

	assert.Equal(t, StorageModeSQL, cfg.Storage.Mode)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown storage mode", "storage:\n  mode: redis\n"},
		{"unknown driver", "database:\n  driver: oracle\n"},
		{"bad log level", "logging:\n  level: loud\n"},
		{"sql without host", "storage:\n  mode: sql\ndatabase:\n  driver: mysql\n  host: \"\"\n"},
		{"encrypted password without secret", "storage:\n  mode: sql\ndatabase:\n  password: abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestStringHidesSecrets(t *testing.T) {
	cfg := Config{
		DB:       DB{Driver: "mysql", DSN: "user:pass@tcp(db)/reports", Password: "cipher"},
		Security: Security{Secret: "topsecret"},
	}

	s := cfg.String()
	assert.NotContains(t, s, "user:pass")
	assert.NotContains(t, s, "cipher")
	assert.NotContains(t, s, "topsecret")
}
