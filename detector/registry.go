package detector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/swdee/go-faceveil"
)

// Params are the settings shared by every detector backend.  Backends ignore
// the fields they have no use for.
type Params struct {
	// ModelPath is the model weights file
	ModelPath string
	// ConfigPath is the network description file for backends that need one
	ConfigPath string
	// ScoreThreshold drops detections with a lower confidence
	ScoreThreshold float32
	// NMSThreshold is the IoU threshold used for non maximum suppression
	NMSThreshold float32
	// TopK limits the number of candidates kept before NMS
	TopK int
}

// DefaultParams returns the YuNet settings
func DefaultParams() Params {
	return Params{
		ModelPath:      "face_detection_yunet_2023mar.onnx",
		ScoreThreshold: 0.4,
		NMSThreshold:   0.3,
		TopK:           5000,
	}
}

// constructor creates a single detector instance
type constructor func(p Params) (faceveil.Detector, error)

var backends = map[string]constructor{
	"yunet": func(p Params) (faceveil.Detector, error) { return NewYuNet(p) },
	"ssd":   func(p Params) (faceveil.Detector, error) { return NewSSD(p) },
}

// register adds a backend available only on some builds
func register(name string, c constructor) {
	backends[name] = c
}

// Names returns the detector backends compiled in
func Names() []string {

	names := make([]string, 0, len(backends))

	for name := range backends {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

// NewFactory returns a DetectorFactory for the named backend.  The model
// files are checked here so a missing model is reported before any detector
// is loaded.
func NewFactory(name string, p Params) (faceveil.DetectorFactory, error) {

	name = strings.ToLower(strings.TrimSpace(name))
	c, ok := backends[name]

	if !ok {
		return nil, fmt.Errorf("%w: %q, available backends are %s",
			faceveil.ErrUnknownDetector, name, strings.Join(Names(), ", "))
	}

	if err := checkFile(p.ModelPath); err != nil {
		return nil, err
	}

	if p.ConfigPath != "" {
		if err := checkFile(p.ConfigPath); err != nil {
			return nil, err
		}
	}

	return func() (faceveil.Detector, error) {
		det, err := c(p)

		if err != nil {
			return nil, fmt.Errorf("error loading %s detector: %w", name, err)
		}

		return det, nil
	}, nil
}

// checkFile returns ErrModelNotFound if the path does not exist
func checkFile(path string) error {

	if path == "" {
		return fmt.Errorf("%w: no model path given", faceveil.ErrModelNotFound)
	}

	_, err := os.Stat(path)

	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", faceveil.ErrModelNotFound, path)
	}

	if err != nil {
		return fmt.Errorf("error checking model file %s: %w", path, err)
	}

	return nil
}
