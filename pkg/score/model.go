package score

import "strings"

// GroupGCC is the BayesAlphaByCountry key shared by the Gulf countries.
const GroupGCC = "GCC"

var gccCountries = map[string]bool{
	"UAE":          true,
	"SAUDI ARABIA": true,
	"OMAN":         true,
	"QATAR":        true,
	"KUWAIT":       true,
	"BAHRAIN":      true,
}

// Model holds the scoring parameters. It is built once at startup and
// shared read-only by every Score call.
type Model struct {
	Weights   Weights   `json:"weights" yaml:"weights"`
	Overlays  Overlays  `json:"overlays" yaml:"overlays"`
	Penalties Penalties `json:"penalties" yaml:"penalties"`

	// MVCap caps the market value of equity to liabilities ratio (X4).
	MVCap float64 `json:"mv_cap" yaml:"mvCap"`

	CapCountryRating bool `json:"cap_country_rating" yaml:"capCountryRating"`
	UseBayesPrior    bool `json:"use_bayes_prior" yaml:"useBayesPrior"`

	DefaultBayesAlpha float64 `json:"default_bayes_alpha" yaml:"defaultBayesAlpha"`
	// BayesAlphaByCountry keys are upper case country names or GroupGCC.
	BayesAlphaByCountry map[string]float64 `json:"bayes_alpha_by_country,omitempty" yaml:"bayesAlphaByCountry,omitempty"`
}

// Weights of the five Z-score ratios.
type Weights struct {
	X1 float64 `json:"x1" yaml:"x1"`
	X2 float64 `json:"x2" yaml:"x2"`
	X3 float64 `json:"x3" yaml:"x3"`
	X4 float64 `json:"x4" yaml:"x4"`
	X5 float64 `json:"x5" yaml:"x5"`
}

// Overlays are the weights and coefficients of the additive Z adjustments.
type Overlays struct {
	AltWeight  float64 `json:"alt_wt" yaml:"altWt"`
	CFFCF      float64 `json:"cf_fcf" yaml:"cfFcf"`
	CFIC       float64 `json:"cf_ic" yaml:"cfIc"`
	CFRQ       float64 `json:"cf_rq" yaml:"cfRq"`
	AgePenLT3  float64 `json:"age_pen_lt3" yaml:"agePenLt3"`
	AgePen3To5 float64 `json:"age_pen_3_5" yaml:"agePen35"`
	QualWeight float64 `json:"qual_wt" yaml:"qualWt"`
}

// Penalties are flat Z adjustments.
type Penalties struct {
	Scale    float64 `json:"scale_pen" yaml:"scalePen"`
	Leverage float64 `json:"low_lev_pen" yaml:"lowLevPen"`
}

// BayesAlpha resolves the prior blend weight for a country.
func (m *Model) BayesAlpha(country string) float64 {
	country = NormalizeCountry(country)
	if gccCountries[country] {
		if v, ok := m.BayesAlphaByCountry[GroupGCC]; ok {
			return v
		}
	}
	if v, ok := m.BayesAlphaByCountry[country]; ok {
		return v
	}
	return m.DefaultBayesAlpha
}

// NormalizeCountry upper-cases and trims a country code.
func NormalizeCountry(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}
