package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/swdee/go-faceveil"
	"github.com/swdee/go-faceveil/detector"
	"github.com/swdee/go-faceveil/render"
	"github.com/swdee/go-faceveil/video"
)

// prefix of every environment variable read
const prefix = "FACEVEIL_"

// Config holds the settings for detection and rendering
type Config struct {
	Detector       string
	Model          string
	ModelConfig    string
	ScoreThreshold float64
	NMSThreshold   float64
	Workers        int
	Policy         string
	BatchSize      int
	BatchWorkers   int
	// QueueSize of 0 uses twice the number of workers
	QueueSize    int
	MaxFrames    int
	DrainTimeout time.Duration
	WindowSize   int
	Shape        string
	Color        string
	Padding      int
	FourCC       string
	LogLevel     string
}

// Default returns the built in settings
func Default() *Config {
	return &Config{
		Detector:       "yunet",
		Model:          "face_detection_yunet_2023mar.onnx",
		ScoreThreshold: 0.4,
		NMSThreshold:   0.3,
		Workers:        runtime.NumCPU(),
		Policy:         faceveil.PolicyShared.String(),
		BatchSize:      1,
		BatchWorkers:   4,
		DrainTimeout:   5 * time.Second,
		WindowSize:     30,
		Shape:          render.ShapeRectangle.String(),
		Color:          "green",
		FourCC:         "mp4v",
		LogLevel:       "info",
	}
}

// Load returns the defaults overlaid with the variables from envFile and
// then the process environment.  A missing envFile is ignored.
func Load(envFile string) (*Config, error) {

	fileVars := map[string]string{}

	if envFile != "" {
		vars, err := godotenv.Read(envFile)

		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("error reading %s: %w", envFile, err)
		default:
			fileVars = vars
		}
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	})
}

// FromLookup returns the defaults overlaid with the variables returned by
// lookup
func FromLookup(lookup func(key string) (string, bool)) (*Config, error) {

	cfg := Default()
	e := &env{lookup: lookup}

	e.str("DETECTOR", &cfg.Detector)
	e.str("MODEL", &cfg.Model)
	e.str("MODEL_CONFIG", &cfg.ModelConfig)
	e.number("SCORE_THRESHOLD", &cfg.ScoreThreshold)
	e.number("NMS_THRESHOLD", &cfg.NMSThreshold)
	e.integer("WORKERS", &cfg.Workers)
	e.str("POLICY", &cfg.Policy)
	e.integer("BATCH_SIZE", &cfg.BatchSize)
	e.integer("BATCH_WORKERS", &cfg.BatchWorkers)
	e.integer("QUEUE_SIZE", &cfg.QueueSize)
	e.integer("MAX_FRAMES", &cfg.MaxFrames)
	e.duration("DRAIN_TIMEOUT", &cfg.DrainTimeout)
	e.integer("WINDOW_SIZE", &cfg.WindowSize)
	e.str("SHAPE", &cfg.Shape)
	e.str("COLOR", &cfg.Color)
	e.integer("PADDING", &cfg.Padding)
	e.str("FOURCC", &cfg.FourCC)
	e.str("LOG_LEVEL", &cfg.LogLevel)

	if err := errors.Join(e.errs...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks every setting, all problems found are returned together
func (c *Config) Validate() error {

	var errs []error

	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format,
			append([]any{faceveil.ErrInvalidConfig}, args...)...))
	}

	if !slices.Contains(detector.Names(), strings.ToLower(c.Detector)) {
		errs = append(errs, fmt.Errorf("%w: %q", faceveil.ErrUnknownDetector, c.Detector))
	}

	if _, err := faceveil.ParsePolicy(c.Policy); err != nil {
		errs = append(errs, err)
	}

	if _, err := render.ParseShape(c.Shape); err != nil {
		fail("%v", err)
	}

	if _, err := render.ParseColor(c.Color); err != nil {
		fail("%v", err)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		fail("log level %q", c.LogLevel)
	}

	if err := video.ValidFourCC(c.FourCC); err != nil {
		fail("%v", err)
	}

	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		fail("score threshold %v outside 0..1", c.ScoreThreshold)
	}

	if c.NMSThreshold < 0 || c.NMSThreshold > 1 {
		fail("nms threshold %v outside 0..1", c.NMSThreshold)
	}

	if c.Workers < 1 {
		fail("workers must be at least 1, got %d", c.Workers)
	}

	if c.BatchSize < 1 {
		fail("batch size must be at least 1, got %d", c.BatchSize)
	}

	if c.BatchWorkers < 1 {
		fail("batch workers must be at least 1, got %d", c.BatchWorkers)
	}

	if c.QueueSize < 0 {
		fail("queue size must not be negative, got %d", c.QueueSize)
	}

	if c.MaxFrames < 0 {
		fail("max frames must not be negative, got %d", c.MaxFrames)
	}

	if c.DrainTimeout <= 0 {
		fail("drain timeout must be positive, got %s", c.DrainTimeout)
	}

	if c.WindowSize < 1 {
		fail("window size must be at least 1, got %d", c.WindowSize)
	}

	if c.Padding < 0 {
		fail("padding must not be negative, got %d", c.Padding)
	}

	return errors.Join(errs...)
}

// Level returns the zerolog level, info if it can not be parsed
func (c *Config) Level() zerolog.Level {

	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))

	if err != nil {
		return zerolog.InfoLevel
	}

	return lvl
}

// PipelineOptions returns the detection pipeline settings
func (c *Config) PipelineOptions(log zerolog.Logger) (faceveil.Options, error) {

	policy, err := faceveil.ParsePolicy(c.Policy)

	if err != nil {
		return faceveil.Options{}, err
	}

	return faceveil.Options{
		Workers:      c.Workers,
		Policy:       policy,
		BatchSize:    c.BatchSize,
		BatchWorkers: c.BatchWorkers,
		QueueSize:    c.QueueSize,
		MaxFrames:    c.MaxFrames,
		DrainTimeout: c.DrainTimeout,
		Logger:       log,
	}, nil
}

// DetectorParams returns the settings for the detector backend
func (c *Config) DetectorParams() detector.Params {

	p := detector.DefaultParams()
	p.ModelPath = c.Model
	p.ConfigPath = c.ModelConfig
	p.ScoreThreshold = float32(c.ScoreThreshold)
	p.NMSThreshold = float32(c.NMSThreshold)

	return p
}

// Compositor returns the overlay renderer settings
func (c *Config) Compositor(log zerolog.Logger) (*render.Compositor, error) {

	shape, err := render.ParseShape(c.Shape)

	if err != nil {
		return nil, err
	}

	clr, err := render.ParseColor(c.Color)

	if err != nil {
		return nil, err
	}

	return &render.Compositor{
		WindowSize: c.WindowSize,
		Shape:      shape,
		Color:      clr,
		Padding:    c.Padding,
		Log:        log,
	}, nil
}

// env reads typed values, collecting parse errors
type env struct {
	lookup func(key string) (string, bool)
	errs   []error
}

func (e *env) get(key string) (string, bool) {

	v, ok := e.lookup(prefix + key)

	if !ok {
		return "", false
	}

	v = strings.TrimSpace(v)
	return v, v != ""
}

func (e *env) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *env) integer(key string, dst *int) {

	v, ok := e.get(key)

	if !ok {
		return
	}

	n, err := strconv.Atoi(v)

	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%w: %s%s=%q is not an integer",
			faceveil.ErrInvalidConfig, prefix, key, v))
		return
	}

	*dst = n
}

func (e *env) number(key string, dst *float64) {

	v, ok := e.get(key)

	if !ok {
		return
	}

	f, err := strconv.ParseFloat(v, 64)

	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%w: %s%s=%q is not a number",
			faceveil.ErrInvalidConfig, prefix, key, v))
		return
	}

	*dst = f
}

func (e *env) duration(key string, dst *time.Duration) {

	v, ok := e.get(key)

	if !ok {
		return
	}

	d, err := time.ParseDuration(v)

	if err != nil {
		e.errs = append(e.errs, fmt.Errorf("%w: %s%s=%q is not a duration",
			faceveil.ErrInvalidConfig, prefix, key, v))
		return
	}

	*dst = d
}
