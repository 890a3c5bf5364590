// Package wire provides dependency injection for the riskledger application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	cliadapter "github.com/example/riskledger/internal/adapters/cli"
	"github.com/example/riskledger/internal/adapters/sqlite"
	"github.com/example/riskledger/internal/app"
	"github.com/example/riskledger/internal/config"
	"github.com/example/riskledger/internal/core/scoring"
	"github.com/example/riskledger/internal/db"
	"github.com/example/riskledger/internal/logging"
	"github.com/example/riskledger/internal/metrics"
	"github.com/example/riskledger/internal/ports/primary"
)

// Settings are command-line overrides applied over the loaded config.
// Empty fields leave the config value alone.
type Settings struct {
	ConfigPath string
	DBPath     string
	LogLevel   string
}

var (
	settings Settings

	cfg     *config.Config
	logger  *zap.Logger
	cfgErr  error
	cfgOnce sync.Once

	database *sql.DB
	dbErr    error
	dbOnce   sync.Once

	recorder          *metrics.Recorder
	assessmentService primary.AssessmentService
	initErr           error
	once              sync.Once
)

// Configure sets the overrides used when services are first built.
// It has no effect after the first lookup.
func Configure(s Settings) {
	settings = s
}

// Config returns the loaded configuration.
func Config() (*config.Config, error) {
	cfgOnce.Do(initConfig)
	return cfg, cfgErr
}

// Logger returns the process logger, or a no-op logger if config failed to load.
func Logger() *zap.Logger {
	cfgOnce.Do(initConfig)
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// Database returns the migrated database handle.
func Database() (*sql.DB, error) {
	dbOnce.Do(initDatabase)
	return database, dbErr
}

// AssessmentService returns the singleton AssessmentService instance.
func AssessmentService() (primary.AssessmentService, error) {
	once.Do(initServices)
	return assessmentService, initErr
}

// AssessmentAdapter returns a new AssessmentAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func AssessmentAdapter() (*cliadapter.AssessmentAdapter, error) {
	return AssessmentAdapterWithOutput(os.Stdout)
}

// AssessmentAdapterWithOutput returns a new AssessmentAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func AssessmentAdapterWithOutput(out io.Writer) (*cliadapter.AssessmentAdapter, error) {
	service, err := AssessmentService()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewAssessmentAdapter(service, out), nil
}

// Close writes the metrics textfile (when configured) and closes the
// database. Safe to call when nothing was initialized.
func Close() error {
	var errs []error

	if recorder != nil && cfg != nil && cfg.MetricsFile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsFile); err != nil {
			errs = append(errs, err)
		}
	}
	if database != nil {
		if err := database.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
		database = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}

	return errors.Join(errs...)
}

// initConfig loads the config and builds the logger.
// This is called once via sync.Once.
func initConfig() {
	loaded, err := config.Load(settings.ConfigPath)
	if err != nil {
		cfgErr = err
		return
	}
	if settings.DBPath != "" {
		loaded.DBPath = settings.DBPath
	}
	if settings.LogLevel != "" {
		loaded.LogLevel = settings.LogLevel
	}

	l, err := logging.New(loaded.LogLevel)
	if err != nil {
		cfgErr = err
		return
	}

	cfg, logger = loaded, l
	logger.Debug("config loaded",
		zap.String("source", cfg.Source),
		zap.String("db_path", cfg.DBPath),
	)
}

// initDatabase opens and migrates the configured database.
// This is called once via sync.Once.
func initDatabase() {
	c, err := Config()
	if err != nil {
		dbErr = err
		return
	}
	database, dbErr = db.Open(c.DBPath)
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	c, err := Config()
	if err != nil {
		initErr = err
		return
	}

	scoringCfg, err := c.ScoringConfig()
	if err != nil {
		initErr = fmt.Errorf("invalid weights: %w", err)
		return
	}
	engine, err := scoring.NewEngine(scoringCfg)
	if err != nil {
		initErr = err
		return
	}

	conn, err := Database()
	if err != nil {
		initErr = err
		return
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	assessmentRepo := sqlite.NewAssessmentRepository(conn)
	recorder = metrics.NewRecorder()

	// Create services (primary ports implementation)
	assessmentService = app.NewAssessmentService(assessmentRepo, engine, recorder, logger)
}
