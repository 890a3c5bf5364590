package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "RISKLEDGER_"

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. YAML file: path if non-empty, else RISKLEDGER_CONFIG, else
//     ~/.riskledger/config.yaml when it exists
//  3. env (prefix RISKLEDGER_); RISKLEDGER_WEIGHTS_<CATEGORY> sets one weight
//
// An explicitly named file that does not exist is an error.
func Load(path string) (*Config, error) {
	cfg := New()
	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvPrefix + "CONFIG")
		explicit = path != ""
	}
	if !explicit {
		if dir, err := Dir(); err == nil {
			path = filepath.Join(dir, "config.yaml")
		}
	}

	if path != "" {
		err := k.Load(file.Provider(path), yaml.Parser())
		switch {
		case err == nil:
			cfg.Source = path
		case !explicit && errors.Is(err, fs.ErrNotExist):
			// no default config file
		default:
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	// RISKLEDGER_DB_PATH -> db_path, RISKLEDGER_WEIGHTS_ILLICIT_MARKETS -> weights.illicit_markets
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		if rest, ok := strings.CutPrefix(s, "weights_"); ok {
			return "weights." + rest
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.DBPath == "" {
		return nil, errors.New("db_path must not be empty")
	}
	return cfg, nil
}
