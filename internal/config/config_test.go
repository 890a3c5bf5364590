package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/example/riskledger/internal/core/assessment"
	"github.com/example/riskledger/internal/core/scoring"
)

// isolate points HOME at a temp dir and clears RISKLEDGER_CONFIG.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("RISKLEDGER_CONFIG", "")
	return home
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBPath != filepath.Join(home, ".riskledger", "riskledger.db") {
		t.Errorf("unexpected default db path %s", cfg.DBPath)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.LogLevel)
	}
	if cfg.Source != "" {
		t.Errorf("expected no config source, got %s", cfg.Source)
	}
	if len(cfg.Weights) != len(assessment.Categories()) {
		t.Errorf("expected default weights for every category, got %v", cfg.Weights)
	}
}

func TestLoad_DefaultFileInHome(t *testing.T) {
	home := isolate(t)
	path := writeConfig(t, filepath.Join(home, ".riskledger"), "log_level: debug\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected log level from file, got %s", cfg.LogLevel)
	}
	if cfg.Source != path {
		t.Errorf("expected source %s, got %s", path, cfg.Source)
	}
}

func TestLoad_ExplicitFileAndEnvPrecedence(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), `
db_path: /data/from-file.db
log_level: info
metrics_file: /var/lib/node_exporter/riskledger.prom
weights:
  political_stability: 0.30
  social_indicators: 0.10
`)
	t.Setenv("RISKLEDGER_DB_PATH", "/data/from-env.db")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DBPath != "/data/from-env.db" {
		t.Errorf("expected env to override file, got %s", cfg.DBPath)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level info, got %s", cfg.LogLevel)
	}
	if cfg.MetricsFile != "/var/lib/node_exporter/riskledger.prom" {
		t.Errorf("unexpected metrics file %s", cfg.MetricsFile)
	}
	if cfg.Weights["political_stability"] != 0.30 || cfg.Weights["social_indicators"] != 0.10 {
		t.Errorf("expected file weights, got %v", cfg.Weights)
	}
	if cfg.Weights["illicit_markets"] != 0.20 {
		t.Errorf("expected unlisted weights to keep defaults, got %v", cfg.Weights)
	}
}

func TestLoad_ConfigFromEnvVar(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "log_level: error\n")
	t.Setenv("RISKLEDGER_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("expected log level from RISKLEDGER_CONFIG file, got %s", cfg.LogLevel)
	}
}

func TestLoad_WeightFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("RISKLEDGER_WEIGHTS_ILLICIT_MARKETS", "0.15")
	t.Setenv("RISKLEDGER_WEIGHTS_POLITICAL_STABILITY", "0.30")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Weights["illicit_markets"] != 0.15 || cfg.Weights["political_stability"] != 0.30 {
		t.Errorf("expected env weights, got %v", cfg.Weights)
	}

	sc, err := cfg.ScoringConfig()
	if err != nil {
		t.Fatalf("ScoringConfig failed: %v", err)
	}
	if _, err := scoring.NewEngine(sc); err != nil {
		t.Errorf("expected reweighted config to be valid, got %v", err)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	isolate(t)
	path := writeConfig(t, t.TempDir(), "log_level: [unclosed\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestScoringConfig(t *testing.T) {
	tests := []struct {
		name       string
		weights    map[string]float64
		wantErr    error
		engineFail bool
	}{
		{
			name:    "defaults",
			weights: New().Weights,
		},
		{
			name:    "unknown category",
			weights: map[string]float64{"weather": 0.1},
			wantErr: ErrUnknownCategory,
		},
		{
			name:       "sum off",
			weights:    map[string]float64{"political_stability": 0.5},
			engineFail: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			for k, v := range tt.weights {
				cfg.Weights[k] = v
			}

			sc, err := cfg.ScoringConfig()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ScoringConfig failed: %v", err)
			}

			_, err = scoring.NewEngine(sc)
			if tt.engineFail && !errors.Is(err, scoring.ErrInvalidConfig) {
				t.Errorf("expected engine to reject weights, got %v", err)
			}
			if !tt.engineFail && err != nil {
				t.Errorf("expected valid engine config, got %v", err)
			}
		})
	}
}
