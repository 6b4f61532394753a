package state

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/swdee/go-faceveil"
)

// Path returns the detection results file kept next to a video
func Path(video string) string {
	ext := filepath.Ext(video)
	return strings.TrimSuffix(video, ext) + ".bboxes.bin"
}

// Save writes the sequence to path.  It is written to a temporary file in the
// same directory first and renamed over path, so a reader never sees a half
// written file.
func Save(path string, seq *faceveil.Sequence) (err error) {

	dir, name := filepath.Split(path)

	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")

	if err != nil {
		return fmt.Errorf("error creating temp file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err = Write(tmp, seq); err != nil {
		return fmt.Errorf("error encoding %s: %w", path, err)
	}

	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("error syncing %s: %w", tmpName, err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", tmpName, err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("error renaming %s to %s: %w", tmpName, path, err)
	}

	return nil
}

// Load reads the sequence saved at path.  A missing, truncated or corrupt
// file is reported as no state with ok false, the results then need to be
// detected again.
func Load(path string) (seq *faceveil.Sequence, ok bool) {

	seq, err := Open(path)

	if err != nil {
		return nil, false
	}

	return seq, true
}

// Open reads the sequence saved at path returning the reason on failure
func Open(path string) (*faceveil.Sequence, error) {

	f, err := os.Open(path)

	if err != nil {
		return nil, err
	}

	defer f.Close()

	seq, err := Read(f)

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return seq, nil
}
