package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Backtest.StartCash != 10000.0 {
		t.Errorf("StartCash = %v, want 10000", cfg.Backtest.StartCash)
	}
	if cfg.Optimize.OOSFrac != 0.2 {
		t.Errorf("OOSFrac = %v, want 0.2", cfg.Optimize.OOSFrac)
	}
	if cfg.Optimize.MaxResults != 50 {
		t.Errorf("MaxResults = %d, want 50", cfg.Optimize.MaxResults)
	}
	if cfg.Optimize.MinBars != 150 {
		t.Errorf("MinBars = %d, want 150", cfg.Optimize.MinBars)
	}
}

func TestLoad(t *testing.T) {
	yml := `
storage:
  data_dir: /tmp/bars
logging:
  level: debug
optimize:
  folds: 5
  oos_frac: 0.3
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Storage.DataDir != "/tmp/bars" {
		t.Errorf("DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/bars")
	}
	if cfg.Optimize.Folds != 5 {
		t.Errorf("Folds = %d, want 5", cfg.Optimize.Folds)
	}
	// Fields absent from the file keep their defaults.
	if cfg.Backtest.Commission != 0.0005 {
		t.Errorf("Commission = %v, want default 0.0005", cfg.Backtest.Commission)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("DATA_DIR", "/env/data")
	t.Setenv("APCA_API_KEY_ID", "key-from-env")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("DataDir = %q, want %q", cfg.Storage.DataDir, "/env/data")
	}
	if cfg.Alpaca.APIKey != "key-from-env" {
		t.Errorf("APIKey = %q, want %q", cfg.Alpaca.APIKey, "key-from-env")
	}
}
