package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/Aarxn-Jibz/BoQ-Optimization-and-Formwork-Fitting/pkg/contracts/domain"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PipelineConfig is the configuration surface consumed by the generator and
// the cleaner. It is passed by value and never mutated once a run starts.
type PipelineConfig struct {
	RecordCount        int    `yaml:"record_count" envconfig:"RECORD_COUNT" validate:"gt=0"`
	BaseDate           string `yaml:"base_date" envconfig:"BASE_DATE" validate:"required,datetime=2006-01-02"`
	RawStorePath       string `yaml:"raw_store_path" envconfig:"RAW_STORE_PATH" validate:"required"`
	CanonicalStorePath string `yaml:"canonical_store_path" envconfig:"CANONICAL_STORE_PATH" validate:"required,nefield=RawStorePath"`

	// Optional outputs, empty disables them
	XLSXPath    string `yaml:"xlsx_path" envconfig:"XLSX_PATH"`
	SummaryPath string `yaml:"summary_path" envconfig:"SUMMARY_PATH"`
	MetricsPath string `yaml:"metrics_path" envconfig:"METRICS_PATH"`

	// Seed fixes the generator's random source. Zero means unseeded.
	Seed int64 `yaml:"seed" envconfig:"SEED"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required_unless=Output console"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName   string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"gte=0,lte=1"`
}

// Base parses the configured base date.
func (p PipelineConfig) Base() (domain.Date, error) {
	return domain.ParseDate(p.BaseDate)
}

// Load loads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. A .env file in the working
// directory is loaded into the environment first.
func Load() (*Config, error) {
	loadEnvFile()
	return load(getConfigFilePath())
}

func load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Variables that are not set leave the current value alone, so the
	// environment only overrides what it names.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg; keys absent from the file
// keep their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// loadEnvFile loads .env without overriding variables already set.
func loadEnvFile() {
	for _, path := range []string{".env", filepath.Join("configs", ".env")} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	return nil
}

// ResolvePaths makes every relative pipeline path absolute against paths.BaseDir.
func (p PipelineConfig) ResolvePaths(paths *Paths) PipelineConfig {
	resolved := p
	resolved.RawStorePath = paths.Resolve(p.RawStorePath)
	resolved.CanonicalStorePath = paths.Resolve(p.CanonicalStorePath)
	resolved.XLSXPath = paths.Resolve(p.XLSXPath)
	resolved.SummaryPath = paths.Resolve(p.SummaryPath)
	resolved.MetricsPath = paths.Resolve(p.MetricsPath)
	return resolved
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if explicit := os.Getenv(EnvPrefix + "_CONFIG_FILE"); explicit != "" {
		return explicit
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Pipeline: PipelineConfig{
			RecordCount:        DefaultRecordCount,
			BaseDate:           DefaultBaseDate,
			RawStorePath:       filepath.Join(DefaultRawDir, RawStoreFileName),
			CanonicalStorePath: filepath.Join(DefaultCleanDir, CanonicalStoreFileName),
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: filepath.Join(DefaultLogsDir, "pipeline.log"),
		},
		Telemetry: TelemetryConfig{
			ServiceName:   ServiceName,
			Environment:   "development",
			TraceExporter: "none",
			SampleRatio:   1.0,
		},
	}
}
