/*
Command overlay detects the faces in one or more video files and writes an
overlay video with every face covered by a filled shape.

Detection results are saved next to each video as <name>.bboxes.bin so a
later run with -reuse can skip detection, or resume it when the previous run
was interrupted.
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/swdee/go-faceveil"
	"github.com/swdee/go-faceveil/config"
	"github.com/swdee/go-faceveil/detector"
	"github.com/swdee/go-faceveil/render"
	"github.com/swdee/go-faceveil/state"
	"github.com/swdee/go-faceveil/video"
)

// options are the per run switches that are not part of the config
type options struct {
	dataOnly     bool
	writeOverlay bool
	writeMerged  bool
	reuse        bool
	preview      int
}

func main() {

	def := config.Default()

	envFile := flag.String("env", ".env", "Environment file with FACEVEIL_* settings")
	dataOnly := flag.Bool("data-only", false, "Only detect and save bounding boxes, skip rendering")
	writeOverlay := flag.Bool("write-overlay", true, "Write overlay video, shapes on a black background")
	writeMerged := flag.Bool("write-merged", false, "Write shapes over the source video, audio is not kept")
	reuse := flag.Bool("reuse", false, "Use bounding boxes saved by a previous run, resuming it if it was interrupted")
	preview := flag.Int("preview", -1, "Write a PNG of the overlay at this frame position")

	// tuning flags, when set they take priority over the environment
	flag.String("detector", def.Detector, "Detector backend ["+strings.Join(detector.Names(), "|")+"]")
	flag.String("model", def.Model, "Detector model file")
	flag.String("model-config", def.ModelConfig, "Detector network config file, needed by some backends")
	flag.Int("workers", def.Workers, "Number of detection workers")
	flag.String("policy", def.Policy, "Detector sharing between workers [shared|per-worker]")
	flag.Int("batch", def.BatchSize, "Frames per work item, 1 dispatches single frames")
	flag.Int("max-frames", def.MaxFrames, "Stop after this many frames, 0 reads the whole video")
	flag.Int("window", def.WindowSize, "Number of frames drawn on each overlay frame")
	flag.String("shape", def.Shape, "Shape drawn over faces [rect|circle]")
	flag.String("color", def.Color, "Shape color, a name or #rrggbb")
	flag.Int("padding", def.Padding, "Grow each face box by this many pixels")
	flag.String("fourcc", def.FourCC, "Codec of the videos written")
	flag.String("log-level", def.LogLevel, "Log level [trace|debug|info|warn|error]")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] video...\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*envFile)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	applyFlags(cfg)

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(cfg.Level()).With().Timestamp().Str("run", uuid.NewString()).Logger()

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := options{
		dataOnly:     *dataOnly,
		writeOverlay: *writeOverlay,
		writeMerged:  *writeMerged,
		reuse:        *reuse,
		preview:      *preview,
	}

	os.Exit(run(ctx, cfg, opts, flag.Args(), log))
}

// applyFlags copies the tuning flags given on the command line over the
// config
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		v := f.Value.String()

		switch f.Name {
		case "detector":
			cfg.Detector = v
		case "model":
			cfg.Model = v
		case "model-config":
			cfg.ModelConfig = v
		case "policy":
			cfg.Policy = v
		case "shape":
			cfg.Shape = v
		case "color":
			cfg.Color = v
		case "fourcc":
			cfg.FourCC = v
		case "log-level":
			cfg.LogLevel = v
		case "workers":
			cfg.Workers = intFlag(f)
		case "batch":
			cfg.BatchSize = intFlag(f)
		case "max-frames":
			cfg.MaxFrames = intFlag(f)
		case "window":
			cfg.WindowSize = intFlag(f)
		case "padding":
			cfg.Padding = intFlag(f)
		}
	})
}

// intFlag returns the value of an int flag
func intFlag(f *flag.Flag) int {
	return f.Value.(flag.Getter).Get().(int)
}

// run processes every file and returns the exit code
func run(ctx context.Context, cfg *config.Config, opts options, files []string, log zerolog.Logger) int {

	total := startPhase(log, "program")
	defer total.Stop()

	factory, err := detector.NewFactory(cfg.Detector, cfg.DetectorParams())

	if err != nil {
		log.Error().Err(err).Msg("Error creating detector")
		return 1
	}

	pipeOpts, err := cfg.PipelineOptions(log)

	if err != nil {
		log.Error().Err(err).Msg("Invalid pipeline options")
		return 1
	}

	comp, err := cfg.Compositor(log)

	if err != nil {
		log.Error().Err(err).Msg("Invalid render options")
		return 1
	}

	// detectors are loaded once and shared by every file
	var pipe *faceveil.Pipeline

	newPipeline := func() (*faceveil.Pipeline, error) {
		if pipe != nil {
			return pipe, nil
		}

		sw := startPhase(log, "load detectors")
		defer sw.Stop()

		created, err := faceveil.NewPipeline(factory, pipeOpts)

		if err != nil {
			return nil, err
		}

		pipe = created
		return pipe, nil
	}

	defer func() {
		if pipe != nil {
			pipe.Close()
		}
	}()

	failed := 0

	for i, path := range files {
		flog := log.With().Str("file", path).Logger()
		flog.Info().Msg("Processing")

		p := &processor{
			cfg:         cfg,
			opts:        opts,
			comp:        comp,
			newPipeline: newPipeline,
			log:         flog,
		}

		err := p.process(ctx, path)

		if err == nil {
			continue
		}

		failed++
		flog.Error().Err(err).Msg("Failed")

		if errors.Is(err, faceveil.ErrCancelled) || ctx.Err() != nil {
			log.Warn().Int("skipped", len(files)-i-1).Msg("Interrupted, remaining files skipped")
			break
		}
	}

	if failed > 0 {
		return 1
	}

	return 0
}

// processor runs detection and rendering for a single video file
type processor struct {
	cfg         *config.Config
	opts        options
	comp        *render.Compositor
	newPipeline func() (*faceveil.Pipeline, error)
	log         zerolog.Logger
}

// process detects, saves and renders a single video
func (p *processor) process(ctx context.Context, path string) error {

	statePath := state.Path(path)

	capture, err := video.OpenCapture(path)

	if err != nil {
		return err
	}

	meta := capture.Metadata()
	p.log.Info().Stringer("video", meta).Msg("Opened video")

	var prior *faceveil.Sequence

	if p.opts.reuse {
		seq, err := state.Open(statePath)

		if err == nil {
			prior = seq
			p.log.Info().Str("state", statePath).Int("frames", seq.Len()).
				Bool("partial", seq.Partial()).Msg("Using previous bounding boxes")
		} else {
			p.log.Info().Str("state", statePath).Str("reason", err.Error()).
				Msg("No usable previous bounding boxes, detecting again")
		}
	}

	var seq *faceveil.Sequence

	if prior != nil && !prior.Partial() {
		_ = capture.Close()
		seq = prior

	} else {
		seq, err = p.detect(ctx, capture, prior, statePath)

		if err != nil {
			return err
		}
	}

	if p.opts.dataOnly {
		return nil
	}

	if p.opts.writeOverlay {
		if err := p.writeOverlay(ctx, path, seq, meta); err != nil {
			return err
		}
	}

	if p.opts.writeMerged {
		if err := p.writeMerged(ctx, path, seq, meta); err != nil {
			return err
		}
	}

	if p.opts.preview >= 0 {
		if err := p.writePreview(path, seq, meta); err != nil {
			return err
		}
	}

	return nil
}

// detect runs the pipeline over the capture and saves the results, also
// when the run did not finish so it can be resumed later
func (p *processor) detect(ctx context.Context, capture *video.Capture,
	prior *faceveil.Sequence, statePath string) (*faceveil.Sequence, error) {

	pipe, err := p.newPipeline()

	if err != nil {
		_ = capture.Close()
		return nil, err
	}

	sw := startPhase(p.log, "detect")

	var seq *faceveil.Sequence

	if prior != nil {
		seq = pipe.Resume(ctx, capture, prior)
	} else {
		seq = pipe.Run(ctx, capture)
	}

	sw.Stop()

	p.log.Info().Str("state", statePath).Int("frames", seq.Len()).
		Str("status", seq.Status.String()).Msg("Saving bounding boxes")

	if err := state.Save(statePath, seq); err != nil {
		p.log.Warn().Err(err).Msg("Could not save bounding boxes")
	}

	if seq.Partial() {
		return nil, fmt.Errorf("detection %s: %w", seq.Status, seq.Err)
	}

	return seq, nil
}

// writeOverlay renders the overlay video
func (p *processor) writeOverlay(ctx context.Context, path string,
	seq *faceveil.Sequence, meta faceveil.VideoMetadata) error {

	dest := outputPath(path, "overlay")
	p.log.Info().Str("dest", dest).Msg("Writing overlay video")

	sw := startPhase(p.log, "write overlay")
	defer sw.Stop()

	w, err := video.NewWriter(dest, p.cfg.FourCC, meta.FPS, meta.Width, meta.Height)

	if err != nil {
		return err
	}

	_, err = p.comp.WriteOverlay(ctx, w, seq, meta)

	return errors.Join(err, w.Close())
}

// writeMerged renders the shapes over a second pass of the source video
func (p *processor) writeMerged(ctx context.Context, path string,
	seq *faceveil.Sequence, meta faceveil.VideoMetadata) error {

	dest := outputPath(path, "merged")
	p.log.Info().Str("dest", dest).Msg("Writing merged video")

	sw := startPhase(p.log, "write merged")
	defer sw.Stop()

	capture, err := video.OpenCapture(path)

	if err != nil {
		return err
	}

	defer capture.Close()

	w, err := video.NewWriter(dest, p.cfg.FourCC, meta.FPS, meta.Width, meta.Height)

	if err != nil {
		return err
	}

	_, err = p.comp.WriteMerged(ctx, w, capture, seq, meta)

	return errors.Join(err, w.Close())
}

// writePreview saves a single overlay frame as PNG
func (p *processor) writePreview(path string, seq *faceveil.Sequence, meta faceveil.VideoMetadata) error {

	dest := strings.TrimSuffix(path, filepath.Ext(path)) + ".preview.png"

	f, err := os.Create(dest)

	if err != nil {
		return fmt.Errorf("error creating preview: %w", err)
	}

	img := p.comp.Preview(seq, p.opts.preview, meta)

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("error encoding preview: %w", err)
	}

	p.log.Info().Str("dest", dest).Int("position", p.opts.preview).Msg("Saved preview")

	return f.Close()
}

// outputPath returns <stem>.<kind><ext> next to the source video
func outputPath(path, kind string) string {

	ext := filepath.Ext(path)

	if ext == "" {
		ext = ".mp4"
	}

	return strings.TrimSuffix(path, filepath.Ext(path)) + "." + kind + ext
}
