package detector

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/swdee/go-faceveil"
)

func TestNewFactoryUnknownBackend(t *testing.T) {

	_, err := NewFactory("haar", DefaultParams())

	if !errors.Is(err, faceveil.ErrUnknownDetector) {
		t.Fatalf("expected ErrUnknownDetector, got %v", err)
	}
}

func TestNewFactoryMissingModel(t *testing.T) {

	dir := t.TempDir()

	model := filepath.Join(dir, "model.onnx")

	if err := os.WriteFile(model, []byte("onnx"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		params Params
	}{
		{"no model path", Params{}},
		{"missing model", Params{ModelPath: filepath.Join(dir, "nope.onnx")}},
		{"missing config", Params{ModelPath: model, ConfigPath: filepath.Join(dir, "deploy.prototxt")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFactory("ssd", tt.params)

			if !errors.Is(err, faceveil.ErrModelNotFound) {
				t.Errorf("expected ErrModelNotFound, got %v", err)
			}
		})
	}
}

func TestNewFactoryDoesNotLoad(t *testing.T) {

	model := filepath.Join(t.TempDir(), "model.onnx")

	if err := os.WriteFile(model, []byte("onnx"), 0644); err != nil {
		t.Fatal(err)
	}

	p := DefaultParams()
	p.ModelPath = model

	factory, err := NewFactory(" YuNet ", p)

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if factory == nil {
		t.Fatal("expected a factory")
	}
}

func TestNames(t *testing.T) {

	names := Names()

	want := map[string]bool{"ssd": false, "yunet": false}

	for _, n := range names {
		if _, ok := want[n]; ok {
			want[n] = true
		}
	}

	for n, found := range want {
		if !found {
			t.Errorf("backend %s not registered", n)
		}
	}

	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("names not sorted: %v", names)
		}
	}
}
