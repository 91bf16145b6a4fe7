package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mchmarny/smecredit/pkg/curve"
	"github.com/mchmarny/smecredit/pkg/rating"
	"github.com/mchmarny/smecredit/pkg/score"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultDir is the configuration directory used when none is given.
	DefaultDir = "config"

	ModelFile  = "model_config"
	ScaleFile  = "rating_scale"
	SectorFile = "sector_config"
)

// ErrConfig is returned for any missing, unreadable or incomplete document.
var ErrConfig = errors.New("configuration error")

// Extensions are tried in this order for every document.
var Extensions = []string{".yaml", ".yml", ".toml", ".json"}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validateModelDoc, ModelDoc{})
	return v
}

// Bundle is everything the scorer needs from configuration.
// It is immutable once loaded.
type Bundle struct {
	Dir    string
	Model  *score.Model
	Scale  rating.Scale
	Curves curve.Table

	// PriorsPath is resolved against Dir when relative.
	PriorsPath  string
	PriorsSheet string
}

// Load reads and validates the three configuration documents in dir.
func Load(dir string) (*Bundle, error) {
	if dir == "" {
		dir = DefaultDir
	}

	var (
		md ModelDoc
		sd ScaleDoc
		cd SectorDoc
	)
	for _, d := range []struct {
		name string
		v    any
	}{{ModelFile, &md}, {ScaleFile, &sd}, {SectorFile, &cd}} {
		path, err := find(dir, d.name)
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: error reading %s: %v", ErrConfig, path, err)
		}
		if err := Decode(path, b, d.v); err != nil {
			return nil, err
		}
		slog.Debug("config loaded", "path", path)
	}

	return newBundle(dir, &md, &sd, &cd), nil
}

func newBundle(dir string, md *ModelDoc, sd *ScaleDoc, cd *SectorDoc) *Bundle {
	path, sheet := md.PriorsFile()
	if path != "" && !filepath.IsAbs(path) && dir != "" {
		path = filepath.Join(dir, path)
	}

	return &Bundle{
		Dir:         dir,
		Model:       md.Model(),
		Scale:       sd.Scale(),
		Curves:      cd.Curves(),
		PriorsPath:  path,
		PriorsSheet: sheet,
	}
}

// find returns the first existing document file for name in dir.
func find(dir, name string) (string, error) {
	for _, ext := range Extensions {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s%v not found in %s", ErrConfig, name, Extensions, dir)
}

// Decode parses a document in the format implied by the name extension
// into v and validates its required keys.
func Decode(name string, b []byte, v any) error {
	var err error
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, v)
	case ".toml":
		err = toml.Unmarshal(b, v)
	case ".json":
		err = json.NewDecoder(bytes.NewReader(b)).Decode(v)
	default:
		return fmt.Errorf("%w: unsupported document format: %s", ErrConfig, name)
	}
	if err != nil {
		return fmt.Errorf("%w: error decoding %s: %v", ErrConfig, name, err)
	}

	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrConfig, name, describe(err))
	}
	return nil
}

// describe lists invalid keys by their document path.
func describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	list := make([]string, 0, len(ve))
	for _, fe := range ve {
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		if strings.HasPrefix(fe.Tag(), "required") {
			list = append(list, "missing key "+key)
			continue
		}
		list = append(list, fmt.Sprintf("invalid key %s (%s=%s)", key, fe.Tag(), fe.Param()))
	}
	return strings.Join(list, ", ")
}
