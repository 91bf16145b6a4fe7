package report

import (
	"math"
	"slices"

	"github.com/mchmarny/smecredit/pkg/rating"
	"github.com/mchmarny/smecredit/pkg/score"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HistogramBins is the number of PD buckets in the summary histogram.
const HistogramBins = 10

// Summary describes one batch run.
type Summary struct {
	RunID    string `json:"run_id" yaml:"runID"`
	Input    string `json:"input" yaml:"input"`
	Output   string `json:"output,omitempty" yaml:"output,omitempty"`
	Rejects  string `json:"rejects,omitempty" yaml:"rejects,omitempty"`
	Report   string `json:"report,omitempty" yaml:"report,omitempty"`
	Rows     int    `json:"rows" yaml:"rows"`
	Scored   int    `json:"scored" yaml:"scored"`
	Rejected int    `json:"rejected" yaml:"rejected"`

	Ratings []RatingCount `json:"ratings,omitempty" yaml:"ratings,omitempty"`
	PD      *PDStats      `json:"pd,omitempty" yaml:"pd,omitempty"`
}

// RatingCount is the number of firms assigned a rating.
type RatingCount struct {
	Rating string `json:"rating" yaml:"rating"`
	Count  int    `json:"count" yaml:"count"`
}

// PDStats describes the distribution of final PDs.
type PDStats struct {
	Mean   float64 `json:"mean" yaml:"mean"`
	StdDev float64 `json:"std_dev" yaml:"stdDev"`
	Min    float64 `json:"min" yaml:"min"`
	Median float64 `json:"median" yaml:"median"`
	P90    float64 `json:"p90" yaml:"p90"`
	Max    float64 `json:"max" yaml:"max"`
	Bins   []Bin   `json:"bins,omitempty" yaml:"bins,omitempty"`
}

// Bin is one histogram bucket [Low, High).
type Bin struct {
	Low   float64 `json:"low" yaml:"low"`
	High  float64 `json:"high" yaml:"high"`
	Count int     `json:"count" yaml:"count"`
}

// Summarize counts ratings in scale order and computes PD statistics.
// Ratings not on the scale, such as NR, follow the scale labels.
func Summarize(scores []*score.Result, scale rating.Scale) *Summary {
	s := &Summary{Scored: len(scores)}
	if len(scores) == 0 {
		return s
	}

	counts := map[string]int{}
	var extra []string
	pds := make([]float64, 0, len(scores))
	for _, r := range scores {
		if _, seen := counts[r.Rating]; !seen {
			if _, ok := scale.Band(r.Rating); !ok {
				extra = append(extra, r.Rating)
			}
		}
		counts[r.Rating]++
		if !math.IsNaN(r.PDFinal) {
			pds = append(pds, r.PDFinal)
		}
	}

	for _, l := range append(scale.Labels(), extra...) {
		if n := counts[l]; n > 0 {
			s.Ratings = append(s.Ratings, RatingCount{Rating: l, Count: n})
		}
	}

	s.PD = pdStats(pds)
	return s
}

func pdStats(pds []float64) *PDStats {
	if len(pds) == 0 {
		return nil
	}
	slices.Sort(pds)

	p := &PDStats{
		Mean:   stat.Mean(pds, nil),
		Min:    floats.Min(pds),
		Median: stat.Quantile(0.5, stat.Empirical, pds, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, pds, nil),
		Max:    floats.Max(pds),
	}
	if len(pds) > 1 {
		p.StdDev = stat.StdDev(pds, nil)
	}
	p.Bins = histogram(pds, p.Min, p.Max)
	return p
}

// histogram buckets sorted data into HistogramBins equal-width bins.
func histogram(sorted []float64, lo, hi float64) []Bin {
	if math.IsInf(lo, 0) || math.IsInf(hi, 0) {
		return nil
	}
	if hi <= lo {
		hi = lo + 1e-6
	}
	dividers := floats.Span(make([]float64, HistogramBins+1), lo, hi)
	// the upper divider is exclusive
	dividers[HistogramBins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, sorted, nil)
	bins := make([]Bin, len(counts))
	for i, c := range counts {
		bins[i] = Bin{Low: dividers[i], High: dividers[i+1], Count: int(c)}
	}
	return bins
}
