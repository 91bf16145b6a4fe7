package config

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mchmarny/smecredit/pkg/curve"
	"github.com/mchmarny/smecredit/pkg/rating"
	"github.com/mchmarny/smecredit/pkg/score"
)

// Pointer fields mark required keys: a nil pointer means the key was absent.

// ModelDoc is the model_config document.
type ModelDoc struct {
	Weights   *WeightsDoc   `yaml:"weights" json:"weights" toml:"weights" validate:"required"`
	Overlays  *OverlaysDoc  `yaml:"overlays" json:"overlays" toml:"overlays" validate:"required"`
	Penalties *PenaltiesDoc `yaml:"penalties" json:"penalties" toml:"penalties" validate:"required"`
	Limits    *LimitsDoc    `yaml:"limits" json:"limits" toml:"limits" validate:"required"`
	Toggles   *TogglesDoc   `yaml:"toggles" json:"toggles" toml:"toggles" validate:"required"`
	Bayes     *BayesDoc     `yaml:"bayes" json:"bayes" toml:"bayes" validate:"required"`
}

type WeightsDoc struct {
	X1 *float64 `yaml:"W_X1" json:"W_X1" toml:"W_X1" validate:"required"`
	X2 *float64 `yaml:"W_X2" json:"W_X2" toml:"W_X2" validate:"required"`
	X3 *float64 `yaml:"W_X3" json:"W_X3" toml:"W_X3" validate:"required"`
	X4 *float64 `yaml:"W_X4" json:"W_X4" toml:"W_X4" validate:"required"`
	X5 *float64 `yaml:"W_X5" json:"W_X5" toml:"W_X5" validate:"required"`
}

type OverlaysDoc struct {
	AltWeight  *float64 `yaml:"ALT_WT" json:"ALT_WT" toml:"ALT_WT" validate:"required"`
	CFFCF      *float64 `yaml:"CF_FCF" json:"CF_FCF" toml:"CF_FCF" validate:"required"`
	CFIC       *float64 `yaml:"CF_IC" json:"CF_IC" toml:"CF_IC" validate:"required"`
	CFRQ       *float64 `yaml:"CF_RQ" json:"CF_RQ" toml:"CF_RQ" validate:"required"`
	AgePenLT3  *float64 `yaml:"AGE_PEN_LT3" json:"AGE_PEN_LT3" toml:"AGE_PEN_LT3" validate:"required"`
	AgePen3To5 *float64 `yaml:"AGE_PEN_3_5" json:"AGE_PEN_3_5" toml:"AGE_PEN_3_5" validate:"required"`
	QualWeight *float64 `yaml:"QUAL_WT" json:"QUAL_WT" toml:"QUAL_WT" validate:"required"`
}

type PenaltiesDoc struct {
	Scale    *float64 `yaml:"SCALE_PEN" json:"SCALE_PEN" toml:"SCALE_PEN" validate:"required"`
	Leverage *float64 `yaml:"LOW_LEV_PEN" json:"LOW_LEV_PEN" toml:"LOW_LEV_PEN" validate:"required"`
}

type LimitsDoc struct {
	MVCap *float64 `yaml:"MV_CAP" json:"MV_CAP" toml:"MV_CAP" validate:"required,gt=0"`
}

type TogglesDoc struct {
	CapCountryRating *bool `yaml:"CAP_COUNTRY_RATING" json:"CAP_COUNTRY_RATING" toml:"CAP_COUNTRY_RATING" validate:"required"`
	UseBayesPrior    *bool `yaml:"USE_BAYES_PRIOR" json:"USE_BAYES_PRIOR" toml:"USE_BAYES_PRIOR" validate:"required"`
}

// BayesDoc locates the prior table and sets the blend weights.
// BAYES_XLSX is accepted in place of BAYES_FILE. The file is only required
// when USE_BAYES_PRIOR is on.
type BayesDoc struct {
	DefaultAlpha   *float64           `yaml:"DEFAULT_BAYES_ALPHA" json:"DEFAULT_BAYES_ALPHA" toml:"DEFAULT_BAYES_ALPHA" validate:"required,gte=0,lte=1"`
	AlphaByCountry map[string]float64 `yaml:"BAYES_ALPHA_BY_COUNTRY" json:"BAYES_ALPHA_BY_COUNTRY" toml:"BAYES_ALPHA_BY_COUNTRY" validate:"required,dive,gte=0,lte=1"`
	File           *string            `yaml:"BAYES_FILE" json:"BAYES_FILE" toml:"BAYES_FILE"`
	LegacyFile     *string            `yaml:"BAYES_XLSX" json:"BAYES_XLSX" toml:"BAYES_XLSX"`
	Sheet          *string            `yaml:"BAYES_SHEET" json:"BAYES_SHEET" toml:"BAYES_SHEET"`
}

// validateModelDoc requires a prior table when the bayes blend is on.
func validateModelDoc(sl validator.StructLevel) {
	d, ok := sl.Current().Interface().(ModelDoc)
	if !ok || d.Toggles == nil || d.Toggles.UseBayesPrior == nil || d.Bayes == nil {
		return
	}
	if *d.Toggles.UseBayesPrior && d.Bayes.File == nil && d.Bayes.LegacyFile == nil {
		sl.ReportError(d.Bayes.File, "bayes.BAYES_FILE", "File", "required_if", "USE_BAYES_PRIOR")
	}
}

// Model converts a validated document into scoring parameters.
func (d *ModelDoc) Model() *score.Model {
	alpha := make(map[string]float64, len(d.Bayes.AlphaByCountry))
	for k, v := range d.Bayes.AlphaByCountry {
		alpha[score.NormalizeCountry(k)] = v
	}

	return &score.Model{
		Weights: score.Weights{
			X1: *d.Weights.X1,
			X2: *d.Weights.X2,
			X3: *d.Weights.X3,
			X4: *d.Weights.X4,
			X5: *d.Weights.X5,
		},
		Overlays: score.Overlays{
			AltWeight:  *d.Overlays.AltWeight,
			CFFCF:      *d.Overlays.CFFCF,
			CFIC:       *d.Overlays.CFIC,
			CFRQ:       *d.Overlays.CFRQ,
			AgePenLT3:  *d.Overlays.AgePenLT3,
			AgePen3To5: *d.Overlays.AgePen3To5,
			QualWeight: *d.Overlays.QualWeight,
		},
		Penalties: score.Penalties{
			Scale:    *d.Penalties.Scale,
			Leverage: *d.Penalties.Leverage,
		},
		MVCap:               *d.Limits.MVCap,
		CapCountryRating:    *d.Toggles.CapCountryRating,
		UseBayesPrior:       *d.Toggles.UseBayesPrior,
		DefaultBayesAlpha:   *d.Bayes.DefaultAlpha,
		BayesAlphaByCountry: alpha,
	}
}

// PriorsFile returns the configured prior table path and sheet.
func (d *ModelDoc) PriorsFile() (path, sheet string) {
	switch {
	case d.Bayes.File != nil:
		path = *d.Bayes.File
	case d.Bayes.LegacyFile != nil:
		path = *d.Bayes.LegacyFile
	}
	if d.Bayes.Sheet != nil {
		sheet = *d.Bayes.Sheet
	}
	return path, sheet
}

// ScaleDoc is the rating_scale document.
type ScaleDoc struct {
	Ratings []BandDoc `yaml:"ratings" json:"ratings" toml:"ratings" validate:"required,min=1,dive"`
}

// BandDoc is one rating band. High may be absent, null or non-numeric,
// all of which mean unbounded.
type BandDoc struct {
	Label *string  `yaml:"label" json:"label" toml:"label" validate:"required"`
	Low   *float64 `yaml:"low" json:"low" toml:"low" validate:"required"`
	High  any      `yaml:"high" json:"high" toml:"high"`
}

// Scale converts the document into an ordered rating scale.
func (d *ScaleDoc) Scale() rating.Scale {
	s := make(rating.Scale, 0, len(d.Ratings))
	for _, b := range d.Ratings {
		s = append(s, rating.Band{
			Label: strings.TrimSpace(*b.Label),
			Low:   *b.Low,
			High:  upperBound(b.High),
		})
	}
	return s
}

func upperBound(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint64:
		f = float64(x)
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.Inf(1)
		}
		f = p
	default:
		return math.Inf(1)
	}
	if math.IsNaN(f) {
		return math.Inf(1)
	}
	return f
}

// SectorDoc is the sector_config document.
type SectorDoc struct {
	Sectors map[string]CurveDoc `yaml:"sectors" json:"sectors" toml:"sectors" validate:"required,min=1,dive"`
}

type CurveDoc struct {
	Slope     *float64 `yaml:"slope" json:"slope" toml:"slope" validate:"required"`
	Intercept *float64 `yaml:"int" json:"int" toml:"int" validate:"required"`
}

// Curves converts the document into a sector curve table.
func (d *SectorDoc) Curves() curve.Table {
	t := make(curve.Table, len(d.Sectors))
	for name, c := range d.Sectors {
		t[strings.TrimSpace(name)] = curve.Curve{Slope: *c.Slope, Intercept: *c.Intercept}
	}
	return t
}
