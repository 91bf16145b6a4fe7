package score

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mchmarny/smecredit/pkg/curve"
	"github.com/mchmarny/smecredit/pkg/rating"
	"gonum.org/v1/gonum/stat"
)

const (
	// SmallScaleRevenue is the revenue below which the scale penalty applies.
	SmallScaleRevenue = 5_000_000

	// HighLeverageRatio is the liabilities to assets ratio above which the
	// leverage penalty applies.
	HighLeverageRatio = 0.5

	youngAgeYears  = 3
	matureAgeYears = 5
)

// ErrDomain is returned when a ratio or transform is undefined for the input.
var ErrDomain = errors.New("arithmetic domain error")

// Result is the full score breakdown for one firm.
type Result struct {
	X1 float64 `json:"X1" yaml:"X1"`
	X2 float64 `json:"X2" yaml:"X2"`
	X3 float64 `json:"X3" yaml:"X3"`
	X4 float64 `json:"X4" yaml:"X4"`
	X5 float64 `json:"X5" yaml:"X5"`

	ZRaw     float64 `json:"Z_raw" yaml:"Z_raw"`
	AltAdj   float64 `json:"alt_adj" yaml:"alt_adj"`
	CFAdj    float64 `json:"cf_adj" yaml:"cf_adj"`
	QualAdj  float64 `json:"qual_adj" yaml:"qual_adj"`
	ScalePen float64 `json:"scale_pen" yaml:"scale_pen"`
	LevPen   float64 `json:"lev_pen" yaml:"lev_pen"`
	ZAdj     float64 `json:"Z_adj" yaml:"Z_adj"`

	PDModel float64 `json:"PD_model" yaml:"PD_model"`
	PDFinal float64 `json:"PD_final" yaml:"PD_final"`
	Rating  string  `json:"Rating" yaml:"Rating"`
}

// Columns are the output column names of a Result, in output order.
var Columns = []string{
	"X1", "X2", "X3", "X4", "X5",
	"Z_raw", "alt_adj", "cf_adj", "qual_adj", "scale_pen", "lev_pen", "Z_adj",
	"PD_model", "PD_final", "Rating",
}

// Numbers returns the numeric fields in Columns order (Rating excluded).
func (r *Result) Numbers() []float64 {
	return []float64{
		r.X1, r.X2, r.X3, r.X4, r.X5,
		r.ZRaw, r.AltAdj, r.CFAdj, r.QualAdj, r.ScalePen, r.LevPen, r.ZAdj,
		r.PDModel, r.PDFinal,
	}
}

// Score computes the PD and rating of a firm. The firm's SectorPriorPD must
// already be resolved. Score has no side effects.
func Score(f Firm, sector string, m *Model, curves curve.Table, scale rating.Scale) (*Result, error) {
	if m == nil {
		return nil, errors.New("model required")
	}
	if f.TotalAssets == 0 {
		return nil, fmt.Errorf("%w: total_assets is zero", ErrDomain)
	}
	if f.TotalLiabilities == 0 {
		return nil, fmt.Errorf("%w: total_liabilities is zero", ErrDomain)
	}
	if f.Signals.CFIntCov <= -1 {
		return nil, fmt.Errorf("%w: log1p undefined for cf_int_cov %v", ErrDomain, f.Signals.CFIntCov)
	}

	r := &Result{
		X1: f.WorkingCapital / f.TotalAssets,
		X2: f.RetainedEarnings / f.TotalAssets,
		X3: f.EBIT / f.TotalAssets,
		X4: math.Min(f.MarketValueEquity/f.TotalLiabilities, m.MVCap),
		X5: f.Revenue / f.TotalAssets,
	}

	w := m.Weights
	r.ZRaw = w.X1*r.X1 + w.X2*r.X2 + w.X3*r.X3 + w.X4*r.X4 + w.X5*r.X5

	o := m.Overlays
	s := f.Signals

	r.AltAdj = o.AltWeight * (stat.Mean(s.altData(), nil) - Neutral)

	r.CFAdj = o.CFFCF*s.FCFVolRatio +
		o.CFIC*math.Log1p(s.CFIntCov) +
		o.CFRQ*(s.RevenueQuality-Neutral)

	r.QualAdj = agePenalty(s.BusinessAgeYears, o) +
		o.QualWeight*(s.MgmtTrackRecord-Neutral) +
		o.QualWeight*(s.IndustrySurvivalRate-Neutral) -
		o.QualWeight*s.GeoRisk

	if f.Revenue < SmallScaleRevenue {
		r.ScalePen = m.Penalties.Scale
	}
	if f.TotalLiabilities/f.TotalAssets > HighLeverageRatio {
		r.LevPen = m.Penalties.Leverage
	}

	r.ZAdj = r.ZRaw + r.AltAdj + r.CFAdj + r.QualAdj + r.ScalePen + r.LevPen
	r.PDModel = curves.For(sector).PD(r.ZAdj)

	r.PDFinal = r.PDModel
	if m.UseBayesPrior {
		alpha := m.BayesAlpha(f.Country)
		r.PDFinal = (1-alpha)*r.PDModel + alpha*f.SectorPriorPD
	}

	if m.CapCountryRating && strings.TrimSpace(f.CountryRating) != "" {
		r.PDFinal = math.Max(r.PDFinal, scale.PD(f.CountryRating))
	}

	r.Rating = scale.Rating(r.PDFinal)
	return r, nil
}

func agePenalty(age float64, o Overlays) float64 {
	switch {
	case age < youngAgeYears:
		return o.AgePenLT3
	case age < matureAgeYears:
		return o.AgePen3To5
	default:
		return 0
	}
}
