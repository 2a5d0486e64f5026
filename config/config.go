package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"featurestore/internal/errors"
)

const (
	// DefaultDatabaseName is the logical database bound when none is given.
	DefaultDatabaseName = "Proj1"
	// DefaultURLEnv names the environment variable holding the connection URL.
	DefaultURLEnv = "MONGODB_URL"
	// DefaultBatchSize keeps each page inside the hosted free-tier ceiling.
	DefaultBatchSize = 50000
	// SplitSeed fixes the train/test partition across runs.
	SplitSeed = 42
)

// Config holds all configuration for the feature store ingestion.
type Config struct {
	Mongo     MongoConfig     `yaml:"mongo"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// MongoConfig holds document store connection configuration.
type MongoConfig struct {
	URLEnv         string `yaml:"url_env"`
	Database       string `yaml:"database"`
	TLSCAFile      string `yaml:"tls_ca_file"`     // PEM bundle; system roots when empty
	LogCredentials bool   `yaml:"log_credentials"` // log the connection URL unredacted
}

// IngestionConfig holds export, split and output configuration.
type IngestionConfig struct {
	Collection       string   `yaml:"collection"`
	BatchSize        int      `yaml:"batch_size"`
	NullMarker       string   `yaml:"null_marker"`
	SortKey          string   `yaml:"sort_key"` // empty keeps store order
	ExcludeColumns   []string `yaml:"exclude_columns"`
	SplitRatio       float64  `yaml:"split_ratio"` // fraction held out for testing
	FeatureStorePath string   `yaml:"feature_store_path"`
	TrainingPath     string   `yaml:"training_path"`
	TestingPath      string   `yaml:"testing_path"`
}

// ArtifactsConfig holds run bookkeeping configuration.
type ArtifactsConfig struct {
	DBPath string `yaml:"db_path"`
}

// MetricsConfig holds metrics export configuration.
type MetricsConfig struct {
	Textfile string `yaml:"textfile"` // node_exporter textfile path; disabled when empty
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Mongo: MongoConfig{
			URLEnv:   DefaultURLEnv,
			Database: DefaultDatabaseName,
		},
		Ingestion: IngestionConfig{
			Collection:       "Proj1-Data",
			BatchSize:        DefaultBatchSize,
			NullMarker:       "na",
			SplitRatio:       0.25,
			FeatureStorePath: filepath.Join("artifact", "data_ingestion", "feature_store", "data.csv"),
			TrainingPath:     filepath.Join("artifact", "data_ingestion", "ingested", "train.csv"),
			TestingPath:      filepath.Join("artifact", "data_ingestion", "ingested", "test.csv"),
		},
		Artifacts: ArtifactsConfig{
			DBPath: filepath.Join(".featurestore", "runs.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, errors.Wrapf(errors.ErrConfiguration, err, "reading config %s", path)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(errors.ErrConfiguration, err, "parsing config %s", path)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for featurestore.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "featurestore.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".featurestore", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the options the ingestion run depends on.
func (c *Config) Validate() error {
	in := c.Ingestion
	if c.Mongo.URLEnv == "" {
		return errors.New(errors.ErrConfiguration, "mongo.url_env is required")
	}
	if in.Collection == "" {
		return errors.New(errors.ErrConfiguration, "ingestion.collection is required")
	}
	if in.BatchSize < 0 {
		return errors.Newf(errors.ErrConfiguration, "ingestion.batch_size must not be negative, got %d", in.BatchSize)
	}
	if in.SplitRatio <= 0 || in.SplitRatio >= 1 {
		return errors.Newf(errors.ErrConfiguration, "ingestion.split_ratio must be in (0,1), got %g", in.SplitRatio)
	}
	for name, p := range map[string]string{
		"feature_store_path": in.FeatureStorePath,
		"training_path":      in.TrainingPath,
		"testing_path":       in.TestingPath,
	} {
		if p == "" {
			return errors.Newf(errors.ErrConfiguration, "ingestion.%s is required", name)
		}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.Newf(errors.ErrConfiguration, "unknown logging.level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return errors.Newf(errors.ErrConfiguration, "unknown logging.format %q", c.Logging.Format)
	}
	return nil
}

// ResolvePaths makes every relative output path relative to dir.
func (c *Config) ResolvePaths(dir string) {
	for _, p := range []*string{
		&c.Ingestion.FeatureStorePath,
		&c.Ingestion.TrainingPath,
		&c.Ingestion.TestingPath,
		&c.Artifacts.DBPath,
		&c.Metrics.Textfile,
	} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(dir, *p)
		}
	}
}
