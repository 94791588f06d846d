package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "TASKTRACK"

// ConfigFileEnv names the environment variable holding an optional YAML config file path.
const ConfigFileEnv = EnvPrefix + "_CONFIG_FILE"

// Load configuration from environment variables and optionally a config file
// named by TASKTRACK_CONFIG_FILE. Environment variables take precedence over
// values from the config file.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadFile(os.Getenv(ConfigFileEnv))
}

// LoadFile is Load with an explicit config file path. An empty path reads
// only defaults and environment variables.
func LoadFile(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigType("yaml")
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	// Configure environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind every key so Unmarshal sees environment-only values
	for _, key := range boundKeys {
		envVar := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", envVar, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks a Config against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	return nil
}

// Default returns a Config populated only with default values.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Storage: StorageConfig{
			Root:          "data",
			StructuredDir: "json",
			OpaqueDir:     "binary",
			BackupsDir:    "backups",
			DefaultFormat: "structured",
			BackupOnSave:  true,
			RetentionDays: 7,
		},
		Query: QueryConfig{
			WindowSize:  10,
			DueSoonDays: 3,
			IDPrefix:    "ID",
		},
	}
}

var boundKeys = []string{
	"log.level",
	"storage.root",
	"storage.structured_dir",
	"storage.opaque_dir",
	"storage.backups_dir",
	"storage.default_format",
	"storage.backup_on_save",
	"storage.retention_days",
	"query.window_size",
	"query.due_soon_days",
	"query.id_prefix",
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("storage.root", d.Storage.Root)
	v.SetDefault("storage.structured_dir", d.Storage.StructuredDir)
	v.SetDefault("storage.opaque_dir", d.Storage.OpaqueDir)
	v.SetDefault("storage.backups_dir", d.Storage.BackupsDir)
	v.SetDefault("storage.default_format", d.Storage.DefaultFormat)
	v.SetDefault("storage.backup_on_save", d.Storage.BackupOnSave)
	v.SetDefault("storage.retention_days", d.Storage.RetentionDays)
	v.SetDefault("query.window_size", d.Query.WindowSize)
	v.SetDefault("query.due_soon_days", d.Query.DueSoonDays)
	v.SetDefault("query.id_prefix", d.Query.IDPrefix)
}
