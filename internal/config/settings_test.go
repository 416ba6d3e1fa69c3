package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSettingsDefaults(t *testing.T) {
	settings := DefaultSettings()
	if settings.MealLimitPerPersonCAD != 60 {
		t.Errorf("default meal limit = %g, want 60", settings.MealLimitPerPersonCAD)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	settings := &Settings{MealLimitPerPersonCAD: 85}
	if err := SaveSettings(path, settings); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.MealLimitPerPersonCAD != 85 {
		t.Errorf("loaded limit = %g, want 85", loaded.MealLimitPerPersonCAD)
	}
}

func TestLoadSettingsMissingFileUsesDefaults(t *testing.T) {
	loaded, err := LoadSettings(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if loaded.MealLimitPerPersonCAD != 60 {
		t.Errorf("loaded limit = %g, want default 60", loaded.MealLimitPerPersonCAD)
	}
}

func TestSaveSettingsRejectsInvalidLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")

	for _, limit := range []float64{0, -10} {
		if err := SaveSettings(path, &Settings{MealLimitPerPersonCAD: limit}); err == nil {
			t.Errorf("limit %g should be rejected", limit)
		}
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("invalid settings must not be written")
	}
}

func TestConfigLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config should not error: %v", err)
	}
	if cfg.Storage != StorageSQLite || cfg.Lake.Backend != LakeFilesystem {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage = "cloud-magic"
	if err := cfg.Validate(); err == nil {
		t.Error("unknown storage backend should be rejected")
	}

	cfg = Default()
	cfg.Storage = StoragePostgres
	if err := cfg.Validate(); err == nil {
		t.Error("postgres without a DSN should be rejected")
	}

	cfg = Default()
	cfg.Lake.Backend = LakeS3
	if err := cfg.Validate(); err == nil {
		t.Error("s3 lake without a bucket should be rejected")
	}
}

func TestConfigLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "storage: memory\nlake:\n  backend: memory\npipeline_delay: 50ms\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Storage != StorageMemory || cfg.Lake.Backend != LakeMemory {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.PipelineWait.Std().Milliseconds() != 50 {
		t.Errorf("pipeline delay = %v, want 50ms", cfg.PipelineWait)
	}
}
