package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log     LogConfig     `mapstructure:"log" validate:"required"`
	Storage StorageConfig `mapstructure:"storage" validate:"required"`
	Query   QueryConfig   `mapstructure:"query" validate:"required"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// StorageConfig contains the on-disk layout and persistence defaults.
type StorageConfig struct {
	// Root is the base directory every other storage directory lives under.
	Root string `mapstructure:"root" validate:"required"`
	// StructuredDir, OpaqueDir and BackupsDir are relative to Root.
	StructuredDir string `mapstructure:"structured_dir" validate:"required,nefield=OpaqueDir,nefield=BackupsDir"`
	OpaqueDir     string `mapstructure:"opaque_dir" validate:"required,nefield=BackupsDir"`
	BackupsDir    string `mapstructure:"backups_dir" validate:"required"`
	// DefaultFormat is used when a caller does not name a format.
	DefaultFormat string `mapstructure:"default_format" validate:"required,oneof=structured opaque"`
	// BackupOnSave controls the backup taken before an existing file is overwritten.
	BackupOnSave bool `mapstructure:"backup_on_save"`
	// RetentionDays is the default age threshold for pruning backups.
	RetentionDays int `mapstructure:"retention_days" validate:"gte=0"`
}

// QueryConfig contains defaults for the lazy query helpers.
type QueryConfig struct {
	WindowSize  int    `mapstructure:"window_size" validate:"gt=0"`
	DueSoonDays int    `mapstructure:"due_soon_days" validate:"gte=0"`
	IDPrefix    string `mapstructure:"id_prefix" validate:"required"`
}
