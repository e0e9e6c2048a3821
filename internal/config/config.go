package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the working directory.
const FileName = "supportbank.yaml"

// Environment variables that override file settings.
const (
	EnvLogLevel          = "SUPPORTBANK_LOG_LEVEL"
	EnvLogFile           = "SUPPORTBANK_LOG_FILE"
	EnvAuditLog          = "SUPPORTBANK_AUDIT_LOG"
	EnvRejectSelfPayment = "SUPPORTBANK_REJECT_SELF_PAYMENTS"
)

// Config represents the top-level supportbank.yaml configuration.
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Import ImportConfig `yaml:"import"`
	Export ExportConfig `yaml:"export"`
}

// LogConfig controls the diagnostic log.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty means stderr
}

// ImportConfig controls how files are imported.
type ImportConfig struct {
	RejectSelfPayments bool   `yaml:"reject_self_payments"`
	MoveProcessed      bool   `yaml:"move_processed"`
	AuditLog           string `yaml:"audit_log,omitempty"` // empty disables the audit log
}

// ExportConfig controls the export file.
type ExportConfig struct {
	Indent bool `yaml:"indent"`
}

// Load reads a supportbank.yaml file from disk. Keys absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields Default.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "debug",
			File:  "logs/debug.log",
		},
		Import: ImportConfig{
			RejectSelfPayments: true,
		},
		Export: ExportConfig{
			Indent: true,
		},
	}
}

// ApplyEnv loads a .env file from the working directory if one exists, then
// overrides cfg with any SUPPORTBANK_* variables that are set.
func ApplyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		cfg.Log.Level = v
	}
	if v, ok := os.LookupEnv(EnvLogFile); ok {
		cfg.Log.File = v
	}
	if v, ok := os.LookupEnv(EnvAuditLog); ok {
		cfg.Import.AuditLog = v
	}
	if v, ok := os.LookupEnv(EnvRejectSelfPayment); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRejectSelfPayment, err)
		}
		cfg.Import.RejectSelfPayments = b
	}
	return nil
}
