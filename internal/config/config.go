package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/txk/image-augmentor/pkg/types"
)

// Config holds the application configuration
type Config struct {
	Settings  types.EnhancementSettings `json:"settings" yaml:"settings"`
	Output    OutputConfig              `json:"output" yaml:"output"`
	Batch     BatchConfig               `json:"batch" yaml:"batch"`
	Log       LogConfig                 `json:"log" yaml:"log"`
	Telemetry TelemetryConfig           `json:"telemetry" yaml:"telemetry"`
}

// OutputConfig holds encoder options for written images
type OutputConfig struct {
	JPEGQuality    int    `json:"jpeg_quality" yaml:"jpeg_quality" env:"AUGMENT_JPEG_QUALITY" env-description:"JPEG output quality (1..100)" validate:"gte=1,lte=100"`
	PNGCompression string `json:"png_compression" yaml:"png_compression" env:"AUGMENT_PNG_COMPRESSION" env-description:"PNG compression: default, none, speed or best" validate:"oneof=default none speed best"`
}

// BatchConfig holds batch run behavior
type BatchConfig struct {
	FailurePolicy types.FailurePolicy `json:"failure_policy" yaml:"failure_policy" env:"AUGMENT_FAILURE_POLICY" env-description:"what to do when a file fails: halt or continue" validate:"oneof=halt continue"`
}

// LogConfig holds logger options
type LogConfig struct {
	Level  string `json:"level" yaml:"level" env:"AUGMENT_LOG_LEVEL" env-description:"log level: debug, info, warn or error" validate:"oneof=debug info warn warning error"`
	Format string `json:"format" yaml:"format" env:"AUGMENT_LOG_FORMAT" env-description:"log format: text or json" validate:"oneof=text json"`
}

// TelemetryConfig holds tracing and metrics export options
type TelemetryConfig struct {
	ServiceName   string `json:"service_name" yaml:"service_name" env:"AUGMENT_SERVICE_NAME" env-description:"service name attached to traces"`
	TraceExporter string `json:"trace_exporter" yaml:"trace_exporter" env:"AUGMENT_TRACE_EXPORTER" env-description:"trace exporter: none, stdout or otlp" validate:"oneof=none stdout otlp"`
	OTLPEndpoint  string `json:"otlp_endpoint" yaml:"otlp_endpoint" env:"AUGMENT_OTLP_ENDPOINT" env-description:"OTLP/HTTP collector host:port" validate:"required_if=TraceExporter otlp"`
	OTLPInsecure  bool   `json:"otlp_insecure" yaml:"otlp_insecure" env:"AUGMENT_OTLP_INSECURE" env-description:"disable TLS for the OTLP exporter"`
	MetricsFile   string `json:"metrics_file" yaml:"metrics_file" env:"AUGMENT_METRICS_FILE" env-description:"write Prometheus metrics to this textfile after each run"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Settings: types.EnhancementSettings{
			DestDir: "./output",
		},
		Output: OutputConfig{
			JPEGQuality:    75,
			PNGCompression: "default",
		},
		Batch: BatchConfig{
			FailurePolicy: types.FailHalt,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "image-augmentor",
			TraceExporter: "none",
		},
	}
}

// Load builds a configuration from the defaults, an optional config file and
// AUGMENT_* environment variables, in that order of precedence.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		if err := cleanenv.ReadConfig(filename, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, nil
}

// SaveToFile saves configuration as YAML or JSON, depending on the extension
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
	default:
		return fmt.Errorf("unsupported config format: %q", filepath.Ext(filename))
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Settings.Validate(); err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	if err := types.Validator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s: invalid value %v (rule %s)", fe.Namespace(), fe.Value(), fe.Tag())
		}
		return err
	}

	return nil
}

// PNGCompressionLevel maps the configured name onto the encoder level
func (o OutputConfig) PNGCompressionLevel() png.CompressionLevel {
	switch strings.ToLower(o.PNGCompression) {
	case "none":
		return png.NoCompression
	case "speed":
		return png.BestSpeed
	case "best":
		return png.BestCompression
	default:
		return png.DefaultCompression
	}
}

// Describe returns the documentation of every supported environment variable
func Describe() (string, error) {
	return cleanenv.GetDescription(Default(), nil)
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.yaml"
	}
	return filepath.Join(home, ".config", "image-augmentor", "config.yaml")
}
