package output

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// TagLayout formats the generation timestamp in output file names.
	TagLayout = "20060102_150405"

	// DefaultDir is where output files are written when no directory is given.
	DefaultDir = "output_data"

	// DefaultPrefix starts every scored output file name.
	DefaultPrefix = "scored_output"

	dirMode = 0o755

	// maxAttempts bounds the numeric suffix search.
	maxAttempts = 1000
)

// Tag formats t as a file name timestamp in local time or UTC.
func Tag(t time.Time, utc bool) string {
	if utc {
		t = t.UTC()
	} else {
		t = t.Local()
	}
	return t.Format(TagLayout)
}

// Path creates dir and returns a path for <prefix>_<tag><ext> that does not
// exist yet. A numeric suffix (_2, _3, ...) is added when the name is taken.
func Path(dir, prefix, ext string, t time.Time, utc bool) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return "", fmt.Errorf("failed to create dir %s: %w", dir, err)
	}

	base := fmt.Sprintf("%s_%s", prefix, Tag(t, utc))
	for i := 1; i <= maxAttempts; i++ {
		name := base
		if i > 1 {
			name = fmt.Sprintf("%s_%d", base, i)
		}
		p := filepath.Join(dir, name+ext)
		_, err := os.Stat(p)
		if errors.Is(err, os.ErrNotExist) {
			return p, nil
		}
		if err != nil {
			return "", fmt.Errorf("error checking %s: %w", p, err)
		}
	}

	return "", fmt.Errorf("no free file name for %s in %s", base+ext, dir)
}

// Sibling derives a companion file path, such as the rejects or report file,
// from a scored output path by inserting label after the prefix and
// swapping the extension.
func Sibling(path, prefix, label, ext string) string {
	dir, name := filepath.Split(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if prefix != "" && label != "" && strings.HasPrefix(name, prefix+"_") {
		name = prefix + "_" + label + "_" + strings.TrimPrefix(name, prefix+"_")
	} else if label != "" {
		name = name + "_" + label
	}
	return filepath.Join(dir, name+ext)
}
