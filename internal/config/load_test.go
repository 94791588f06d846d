package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupEnv sets environment variables for the duration of the test
func setupEnv(t *testing.T, envVars map[string]string) {
	t.Helper()
	for name, value := range envVars {
		t.Setenv(name, value)
	}
}

// TestLoadDefaults verifies that Load applies the expected defaults
// when no environment variables are set.
func TestLoadDefaults(t *testing.T) {
	setupEnv(t, map[string]string{
		ConfigFileEnv:                 "",
		"TASKTRACK_LOG_LEVEL":         "",
		"TASKTRACK_STORAGE_ROOT":      "",
		"TASKTRACK_QUERY_WINDOW_SIZE": "",
	})

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with default values")
	require.NotNil(t, cfg, "Load() should return a non-nil config")
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "info", cfg.Log.Level, "Default log level should be 'info'")
	assert.Equal(t, "data", cfg.Storage.Root)
	assert.Equal(t, "structured", cfg.Storage.DefaultFormat)
	assert.True(t, cfg.Storage.BackupOnSave)
	assert.Equal(t, 7, cfg.Storage.RetentionDays)
	assert.Equal(t, 10, cfg.Query.WindowSize)
}

// TestLoadFromEnv verifies that Load reads values from environment variables.
func TestLoadFromEnv(t *testing.T) {
	setupEnv(t, map[string]string{
		ConfigFileEnv:                      "",
		"TASKTRACK_LOG_LEVEL":              "debug",
		"TASKTRACK_STORAGE_ROOT":           "/var/lib/tasktrack",
		"TASKTRACK_STORAGE_DEFAULT_FORMAT": "opaque",
		"TASKTRACK_STORAGE_BACKUP_ON_SAVE": "false",
		"TASKTRACK_STORAGE_RETENTION_DAYS": "30",
		"TASKTRACK_QUERY_WINDOW_SIZE":      "25",
		"TASKTRACK_QUERY_ID_PREFIX":        "TASK",
	})

	cfg, err := Load()

	require.NoError(t, err, "Load() should not return an error with valid environment variables")
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/var/lib/tasktrack", cfg.Storage.Root)
	assert.Equal(t, "opaque", cfg.Storage.DefaultFormat)
	assert.False(t, cfg.Storage.BackupOnSave)
	assert.Equal(t, 30, cfg.Storage.RetentionDays)
	assert.Equal(t, 25, cfg.Query.WindowSize)
	assert.Equal(t, "TASK", cfg.Query.IDPrefix)
}

// TestLoadValidationErrors verifies that invalid values are rejected.
func TestLoadValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"invalid log level", map[string]string{"TASKTRACK_LOG_LEVEL": "verbose"}},
		{"unknown format", map[string]string{"TASKTRACK_STORAGE_DEFAULT_FORMAT": "xml"}},
		{"negative retention", map[string]string{"TASKTRACK_STORAGE_RETENTION_DAYS": "-1"}},
		{"zero window", map[string]string{"TASKTRACK_QUERY_WINDOW_SIZE": "0"}},
		{"colliding directories", map[string]string{"TASKTRACK_STORAGE_OPAQUE_DIR": "json"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			env := map[string]string{ConfigFileEnv: ""}
			for k, v := range tc.env {
				env[k] = v
			}
			setupEnv(t, env)

			cfg, err := Load()
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "configuration validation failed")
		})
	}
}

// TestLoadFile verifies that a YAML file is read and that environment
// variables still take precedence over it.
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tasktrack.yaml")
	content := []byte(`
log:
  level: warn
storage:
  root: /srv/tasks
  retention_days: 14
query:
  window_size: 5
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	setupEnv(t, map[string]string{
		"TASKTRACK_LOG_LEVEL":         "",
		"TASKTRACK_STORAGE_ROOT":      "",
		"TASKTRACK_QUERY_WINDOW_SIZE": "7",
	})

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "/srv/tasks", cfg.Storage.Root)
	assert.Equal(t, 14, cfg.Storage.RetentionDays)
	assert.Equal(t, 7, cfg.Query.WindowSize, "environment should override the file")
	assert.Equal(t, "json", cfg.Storage.StructuredDir, "unset keys keep their defaults")
}

func TestLoadFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to read config file "+path)
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
