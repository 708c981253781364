package config

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/txk/image-augmentor/pkg/types"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid: %v", err)
	}
	if cfg.Settings.ScalePercent != 0 {
		t.Errorf("expected no scaling by default, got %d", cfg.Settings.ScalePercent)
	}
	if cfg.Batch.FailurePolicy != types.FailHalt {
		t.Errorf("expected halt policy by default, got %q", cfg.Batch.FailurePolicy)
	}
	if cfg.Output.JPEGQuality != 75 {
		t.Errorf("expected JPEG quality 75, got %d", cfg.Output.JPEGQuality)
	}
}

func TestLoadYAMLKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `settings:
  scale_percent: 50
  brightness_offset: -20
  rotate_left: true
  source_dir: /in
  dest_dir: /out
batch:
  failure_policy: continue
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	s := cfg.Settings
	if s.ScalePercent != 50 || s.BrightnessOffset != -20 || !s.RotateLeft {
		t.Errorf("settings not loaded: %+v", s)
	}
	if s.SourceDir != "/in" || s.DestDir != "/out" {
		t.Errorf("paths not loaded: %q %q", s.SourceDir, s.DestDir)
	}
	if cfg.Batch.FailurePolicy != types.FailContinue {
		t.Errorf("expected continue policy, got %q", cfg.Batch.FailurePolicy)
	}
	if cfg.Log.Level != "info" || cfg.Output.JPEGQuality != 75 {
		t.Error("unset sections should keep their defaults")
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"settings":{"blur_radius":1,"dest_dir":"out"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AUGMENT_BLUR", "3")
	t.Setenv("AUGMENT_FLIP", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Settings.BlurRadius != 3 {
		t.Errorf("expected env blur 3, got %d", cfg.Settings.BlurRadius)
	}
	if !cfg.Settings.FlipHorizontal {
		t.Error("expected env flip")
	}
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("AUGMENT_SCALE_PERCENT", "25")
	t.Setenv("AUGMENT_LOG_FORMAT", "json")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Settings.ScalePercent != 25 {
		t.Errorf("expected scale 25, got %d", cfg.Settings.ScalePercent)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected json format, got %q", cfg.Log.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestSaveToFileRoundTrip(t *testing.T) {
	for _, name := range []string{"cfg.yaml", "cfg.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.Settings.ContrastOffset = 30
			cfg.Settings.RotateRight = true

			if err := cfg.SaveToFile(path); err != nil {
				t.Fatalf("SaveToFile failed: %v", err)
			}
			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if loaded.Settings.ContrastOffset != 30 || !loaded.Settings.RotateRight {
				t.Errorf("settings lost in round trip: %+v", loaded.Settings)
			}
		})
	}
}

func TestSaveToFileUnsupportedFormat(t *testing.T) {
	if err := Default().SaveToFile(filepath.Join(t.TempDir(), "cfg.ini")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"settings range", func(c *Config) { c.Settings.ScalePercent = 200 }, "ScalePercent"},
		{"jpeg quality", func(c *Config) { c.Output.JPEGQuality = 0 }, "JPEGQuality"},
		{"png compression", func(c *Config) { c.Output.PNGCompression = "max" }, "PNGCompression"},
		{"failure policy", func(c *Config) { c.Batch.FailurePolicy = "retry" }, "FailurePolicy"},
		{"log level", func(c *Config) { c.Log.Level = "trace-all" }, "Level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "Format"},
		{"trace exporter", func(c *Config) { c.Telemetry.TraceExporter = "zipkin" }, "TraceExporter"},
		{"otlp endpoint", func(c *Config) { c.Telemetry.TraceExporter = "otlp" }, "OTLPEndpoint"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %s", err, tt.want)
			}
		})
	}
}

func TestPNGCompressionLevel(t *testing.T) {
	tests := map[string]png.CompressionLevel{
		"default": png.DefaultCompression,
		"none":    png.NoCompression,
		"speed":   png.BestSpeed,
		"BEST":    png.BestCompression,
	}
	for name, want := range tests {
		if got := (OutputConfig{PNGCompression: name}).PNGCompressionLevel(); got != want {
			t.Errorf("%s: got %v, want %v", name, got, want)
		}
	}
}

func TestDescribe(t *testing.T) {
	desc, err := Describe()
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}
	for _, env := range []string{"AUGMENT_SCALE_PERCENT", "AUGMENT_SOURCE_DIR", "AUGMENT_TRACE_EXPORTER"} {
		if !strings.Contains(desc, env) {
			t.Errorf("description missing %s", env)
		}
	}
}
