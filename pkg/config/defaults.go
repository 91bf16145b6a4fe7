package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"github.com/mchmarny/smecredit/pkg/prior"
	"github.com/mchmarny/smecredit/pkg/table"
)

const (
	defaultsDir       = "defaults"
	defaultPriorsFile = "priors.csv"

	dirMode  = 0o755
	fileMode = 0o644
)

//go:embed defaults/*
var defaults embed.FS

// Defaults returns the built-in configuration. Its PriorsPath is relative
// and only meaningful after WriteDefaults.
func Defaults() (*Bundle, error) {
	var (
		md ModelDoc
		sd ScaleDoc
		cd SectorDoc
	)
	for _, d := range []struct {
		name string
		v    any
	}{{ModelFile, &md}, {ScaleFile, &sd}, {SectorFile, &cd}} {
		name := path.Join(defaultsDir, d.name+".yaml")
		b, err := defaults.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("%w: error reading embedded %s: %v", ErrConfig, name, err)
		}
		if err := Decode(name, b, d.v); err != nil {
			return nil, err
		}
	}
	return newBundle("", &md, &sd, &cd), nil
}

// DefaultPriors returns the lookup built from the sample prior table.
func DefaultPriors() (prior.Lookup, error) {
	b, err := defaults.ReadFile(path.Join(defaultsDir, defaultPriorsFile))
	if err != nil {
		return nil, fmt.Errorf("error reading embedded priors: %w", err)
	}
	t, err := table.DecodeCSV(bytes.NewReader(b), ',')
	if err != nil {
		return nil, fmt.Errorf("error parsing embedded priors: %w", err)
	}
	return prior.FromTable(t)
}

// WriteDefaults writes the built-in documents and the sample prior table
// into dir. Existing files are skipped unless force is set.
// It returns the paths written.
func WriteDefaults(dir string, force bool) ([]string, error) {
	if dir == "" {
		return nil, errors.New("config directory required")
	}

	if err := os.MkdirAll(dir, dirMode); err != nil {
		return nil, fmt.Errorf("failed to create dir %s: %w", dir, err)
	}

	entries, err := fs.ReadDir(defaults, defaultsDir)
	if err != nil {
		return nil, fmt.Errorf("error listing embedded defaults: %w", err)
	}

	var written []string
	for _, e := range entries {
		target := filepath.Join(dir, e.Name())
		if _, err := os.Stat(target); err == nil && !force {
			slog.Warn("file exists, skipping", "path", target)
			continue
		}

		b, err := defaults.ReadFile(path.Join(defaultsDir, e.Name()))
		if err != nil {
			return written, fmt.Errorf("error reading embedded %s: %w", e.Name(), err)
		}
		if err := os.WriteFile(target, b, fileMode); err != nil {
			return written, fmt.Errorf("failed to write config file %s: %w", target, err)
		}
		written = append(written, target)
	}

	return written, nil
}
