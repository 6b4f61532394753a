package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/swdee/go-faceveil"
	"github.com/swdee/go-faceveil/render"
)

func lookupMap(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestFromLookup(t *testing.T) {

	cfg, err := FromLookup(lookupMap(map[string]string{
		"FACEVEIL_WORKERS":         "3",
		"FACEVEIL_POLICY":          "per-worker",
		"FACEVEIL_BATCH_SIZE":      "8",
		"FACEVEIL_DRAIN_TIMEOUT":   "250ms",
		"FACEVEIL_SHAPE":           "circle",
		"FACEVEIL_SCORE_THRESHOLD": "0.6",
		"FACEVEIL_LOG_LEVEL":       " ",
	}))

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Workers != 3 || cfg.BatchSize != 8 || cfg.Policy != "per-worker" {
		t.Errorf("unexpected pool settings %+v", cfg)
	}

	if cfg.DrainTimeout != 250*time.Millisecond {
		t.Errorf("drain timeout = %s", cfg.DrainTimeout)
	}

	if cfg.ScoreThreshold != 0.6 {
		t.Errorf("score threshold = %v", cfg.ScoreThreshold)
	}

	// blank values keep the default
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q, want info", cfg.LogLevel)
	}

	opts, err := cfg.PipelineOptions(zerolog.Nop())

	if err != nil {
		t.Fatal(err)
	}

	if opts.Policy != faceveil.PolicyPerWorker {
		t.Errorf("policy = %s", opts.Policy)
	}

	comp, err := cfg.Compositor(zerolog.Nop())

	if err != nil {
		t.Fatal(err)
	}

	if comp.Shape != render.ShapeCircle || comp.Color != render.Green {
		t.Errorf("unexpected compositor %+v", comp)
	}
}

func TestFromLookupParseErrors(t *testing.T) {

	_, err := FromLookup(lookupMap(map[string]string{
		"FACEVEIL_WORKERS":       "many",
		"FACEVEIL_DRAIN_TIMEOUT": "5",
	}))

	if !errors.Is(err, faceveil.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidate(t *testing.T) {

	tests := []struct {
		name   string
		modify func(c *Config)
		target error
	}{
		{"unknown detector", func(c *Config) { c.Detector = "haar" }, faceveil.ErrUnknownDetector},
		{"unknown policy", func(c *Config) { c.Policy = "pooled" }, faceveil.ErrInvalidConfig},
		{"unknown shape", func(c *Config) { c.Shape = "star" }, faceveil.ErrInvalidConfig},
		{"zero workers", func(c *Config) { c.Workers = 0 }, faceveil.ErrInvalidConfig},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }, faceveil.ErrInvalidConfig},
		{"zero window", func(c *Config) { c.WindowSize = 0 }, faceveil.ErrInvalidConfig},
		{"negative padding", func(c *Config) { c.Padding = -1 }, faceveil.ErrInvalidConfig},
		{"bad fourcc", func(c *Config) { c.FourCC = "h264x" }, faceveil.ErrInvalidConfig},
		{"bad threshold", func(c *Config) { c.ScoreThreshold = 1.5 }, faceveil.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			if err := cfg.Validate(); !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestLoadEnvFile(t *testing.T) {

	path := filepath.Join(t.TempDir(), ".env")

	data := "FACEVEIL_WINDOW_SIZE=12\nFACEVEIL_PADDING=4\n"

	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	// the process environment wins over the file
	t.Setenv("FACEVEIL_PADDING", "9")

	cfg, err := Load(path)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.WindowSize != 12 {
		t.Errorf("window size = %d, want 12", cfg.WindowSize)
	}

	if cfg.Padding != 9 {
		t.Errorf("padding = %d, want 9", cfg.Padding)
	}
}

func TestLoadMissingEnvFile(t *testing.T) {

	cfg, err := Load(filepath.Join(t.TempDir(), "none.env"))

	if err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}

	if cfg.WindowSize != 30 {
		t.Errorf("window size = %d, want 30", cfg.WindowSize)
	}
}
