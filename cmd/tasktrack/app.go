package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/tasktrack/internal/config"
	"github.com/phrazzld/tasktrack/internal/events"
	"github.com/phrazzld/tasktrack/internal/platform/filestore"
	"github.com/phrazzld/tasktrack/internal/platform/logger"
	"github.com/phrazzld/tasktrack/internal/service"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/spf13/pflag"
)

// globalOptions are the flags accepted before the command name.
type globalOptions struct {
	configFile string
	logLevel   string
	root       string
}

func parseGlobalFlags(args []string, stderr io.Writer) (globalOptions, []string, error) {
	var opts globalOptions

	fs := pflag.NewFlagSet("tasktrack", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(false)
	fs.StringVarP(&opts.configFile, "config", "c", "", "YAML config file (default from "+config.ConfigFileEnv+")")
	fs.StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")
	fs.StringVar(&opts.root, "root", "", "override storage.root")
	fs.Usage = func() { usage(stderr) }

	if err := fs.Parse(args); err != nil {
		return opts, nil, err
	}
	return opts, fs.Args(), nil
}

// application holds all the shared application dependencies.
type application struct {
	config      *config.Config
	logger      *slog.Logger
	persistence service.PersistenceService
}

// initializeApp loads configuration, sets up logging and wires the
// persistence stack. Log output goes to logOut so stdout stays reserved for
// command results.
func initializeApp(opts globalOptions, logOut io.Writer) (*application, error) {
	cfg, err := loadAppConfig(opts)
	if err != nil {
		return nil, err
	}

	l, err := logger.SetupWithWriter(cfg.Log, logOut)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Debug("configuration loaded",
		"log_level", cfg.Log.Level,
		"storage_root", cfg.Storage.Root,
		"default_format", cfg.Storage.DefaultFormat)

	persistence, err := newPersistenceService(cfg, l)
	if err != nil {
		return nil, err
	}

	return &application{
		config:      cfg,
		logger:      l,
		persistence: persistence,
	}, nil
}

func loadAppConfig(opts globalOptions) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configFile != "" {
		cfg, err = config.LoadFile(opts.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.root != "" {
		cfg.Storage.Root = opts.root
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newPersistenceService builds the filesystem-backed persistence stack with
// storage events routed to the logger.
func newPersistenceService(cfg *config.Config, l *slog.Logger) (service.PersistenceService, error) {
	defaultFormat, err := store.ParseFormat(cfg.Storage.DefaultFormat)
	if err != nil {
		return nil, err
	}

	emitter := events.NewInMemoryEventEmitter(l)
	emitter.RegisterHandler(events.NewLoggingHandler(l))

	opts := []filestore.Option{
		filestore.WithEmitter(emitter),
		filestore.WithBackupOnSave(cfg.Storage.BackupOnSave),
	}

	layout := filestore.NewLayout(cfg.Storage)
	backups := filestore.NewBackupCoordinator(layout, l, opts...)
	stores := []store.CollectionStore{
		filestore.NewStructuredStore(layout, backups, l, opts...),
		filestore.NewOpaqueStore(layout, backups, l, opts...),
	}

	return service.NewPersistenceService(layout, stores, backups, emitter, defaultFormat, l)
}
