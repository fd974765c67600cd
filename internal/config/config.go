package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// PathsConfig locates the inputs and outputs of a run.
type PathsConfig struct {
	BaseDir     string `yaml:"base_dir"`
	LookupTable string `yaml:"lookup_table"`
	OutputDir   string `yaml:"output_dir"`
}

// SQLiteConfig holds settings for the SQLite report writer.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// ClickHouseConfig holds connection settings for ClickHouse.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// NATSConfig holds settings for the NATS report publisher.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// WriterDef defines an optional report sink.
type WriterDef struct {
	Type       string           `yaml:"type"`
	Enabled    bool             `yaml:"enabled"`
	SQLite     SQLiteConfig     `yaml:"sqlite"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	NATS       NATSConfig       `yaml:"nats"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"`
}

// APIConfig holds the configuration for the report API server.
type APIConfig struct {
	ListenAddr string           `yaml:"listen_addr"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	Paths   PathsConfig   `yaml:"paths"`
	Writers []WriterDef   `yaml:"writers"`
	Metrics MetricsConfig `yaml:"metrics"`
	API     APIConfig     `yaml:"api"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			BaseDir:     ".",
			LookupTable: filepath.Join("input", "sample_lookup_table.txt"),
			OutputDir:   "output",
		},
		API: APIConfig{
			ListenAddr: ":8080",
		},
	}
}

// LoadConfig reads the configuration from a YAML file and returns a Config struct.
// Fields missing from the file keep their default values.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	return cfg, nil
}

// Resolve joins a configured path onto the base directory unless it is absolute.
func (p PathsConfig) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.BaseDir, path)
}

// LookupTablePath returns the resolved lookup table path.
func (p PathsConfig) LookupTablePath() string {
	return p.Resolve(p.LookupTable)
}

// OutputPath returns the resolved path of an output file name.
func (p PathsConfig) OutputPath(name string) string {
	return filepath.Join(p.Resolve(p.OutputDir), name)
}
