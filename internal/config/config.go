// Package config defines riskledger configuration and how it is loaded.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/riskledger/internal/core/assessment"
	"github.com/example/riskledger/internal/core/scoring"
)

// ErrUnknownCategory is returned when weights name a category that does not exist.
var ErrUnknownCategory = errors.New("unknown weight category")

// Config is the flat riskledger configuration.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `koanf:"db_path"`

	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// MetricsFile, when set, receives a Prometheus textfile dump after each command.
	MetricsFile string `koanf:"metrics_file"`

	// Weights overrides category weights by category id. Entries merge over
	// the defaults; the result must still sum to 1.
	Weights map[string]float64 `koanf:"weights"`

	// Source is the config file that was loaded, if any.
	Source string `koanf:"-"`
}

// Dir returns ~/.riskledger.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".riskledger"), nil
}

// New returns a Config holding the defaults.
func New() *Config {
	c := &Config{
		LogLevel: "warn",
		Weights:  make(map[string]float64),
	}
	if dir, err := Dir(); err == nil {
		c.DBPath = filepath.Join(dir, "riskledger.db")
	}
	for _, cat := range assessment.Categories() {
		c.Weights[string(cat.ID)] = cat.DefaultWeight
	}
	return c
}

// ScoringConfig converts the weights into an engine config. Range and sum
// checks are left to scoring.NewEngine.
func (c *Config) ScoringConfig() (scoring.Config, error) {
	sc := scoring.DefaultConfig()

	var unknown []string
	for name, w := range c.Weights {
		cat := assessment.Category(name)
		if _, ok := assessment.LookupCategory(cat); !ok {
			unknown = append(unknown, name)
			continue
		}
		sc.Weights[cat] = w
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return scoring.Config{}, fmt.Errorf("%w: %s", ErrUnknownCategory, strings.Join(unknown, ", "))
	}
	return sc, nil
}
