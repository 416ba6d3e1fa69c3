package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage backends for the claim store.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// Lake backends for the blob store.
const (
	LakeMemory     = "memory"
	LakeFilesystem = "filesystem"
	LakeS3         = "s3"
)

// Duration wraps time.Duration so YAML files can spell delays as "500ms".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the application configuration.
type Config struct {
	Storage      string     `yaml:"storage"`
	DatabasePath string     `yaml:"database_path"`
	PostgresDSN  string     `yaml:"postgres_dsn"`
	Lake         LakeConfig `yaml:"lake"`
	PipelineWait Duration   `yaml:"pipeline_delay"`
	SettingsPath string     `yaml:"settings_path"`
	LogFile      string     `yaml:"log_file"`
}

// LakeConfig configures the lake blob store backend.
type LakeConfig struct {
	Backend   string `yaml:"backend"`
	Root      string `yaml:"root"`
	S3Bucket  string `yaml:"s3_bucket"`
	S3Prefix  string `yaml:"s3_prefix"`
	AWSRegion string `yaml:"aws_region"`
}

// Default returns the built-in configuration for the local demo loop.
func Default() *Config {
	return &Config{
		Storage:      StorageSQLite,
		DatabasePath: ".data/claims.db",
		Lake: LakeConfig{
			Backend: LakeFilesystem,
			Root:    ".data/lake",
		},
		PipelineWait: Duration(500 * time.Millisecond),
		SettingsPath: ".data/settings.yaml",
	}
}

// Load reads configuration from a YAML file, filling unset fields with
// defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageSQLite, StoragePostgres:
	default:
		return fmt.Errorf("unknown storage backend: %s", c.Storage)
	}
	switch c.Lake.Backend {
	case LakeMemory, LakeFilesystem, LakeS3:
	default:
		return fmt.Errorf("unknown lake backend: %s", c.Lake.Backend)
	}
	if c.Storage == StoragePostgres && c.PostgresDSN == "" {
		return fmt.Errorf("postgres storage requires postgres_dsn")
	}
	if c.Lake.Backend == LakeS3 && c.Lake.S3Bucket == "" {
		return fmt.Errorf("s3 lake requires s3_bucket")
	}
	return nil
}
