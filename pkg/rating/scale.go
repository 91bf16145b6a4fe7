package rating

import (
	"math"
	"strings"
)

const (
	// NotRated is returned when no band contains the PD.
	NotRated = "NR"

	// UnknownLabelPD is the PD implied by a label that is not on the scale.
	// It is the worst case so an unknown sovereign rating never understates risk.
	UnknownLabelPD = 1.0
)

// Band is a half-open PD interval [Low, High) mapped to a rating label.
// High is +Inf for the topmost band.
type Band struct {
	Label string  `json:"label" yaml:"label"`
	Low   float64 `json:"low" yaml:"low"`
	High  float64 `json:"high" yaml:"high"`
}

// Bounded reports whether the band has a finite upper bound.
func (b Band) Bounded() bool {
	return !math.IsInf(b.High, 1)
}

// Contains reports whether pd falls inside [Low, High).
func (b Band) Contains(pd float64) bool {
	return b.Low <= pd && pd < b.High
}

// PD returns the representative PD of the band: the midpoint when bounded,
// the lower bound otherwise.
func (b Band) PD() float64 {
	if !b.Bounded() {
		return b.Low
	}
	return (b.Low + b.High) / 2
}

// Scale is the ordered list of rating bands. Order matters: lookups return
// the first matching band. Bands are expected to partition [0, +Inf) but
// this is not verified.
type Scale []Band

// Rating maps a PD to the label of the first band containing it.
func (s Scale) Rating(pd float64) string {
	for _, b := range s {
		if b.Contains(pd) {
			return b.Label
		}
	}
	return NotRated
}

// PD maps a rating label (case-insensitive, trimmed) to the PD it implies.
func (s Scale) PD(label string) float64 {
	if b, ok := s.Band(label); ok {
		return b.PD()
	}
	return UnknownLabelPD
}

// Band returns the band with the given label.
func (s Scale) Band(label string) (Band, bool) {
	want := normalizeLabel(label)
	if want == "" {
		return Band{}, false
	}
	for _, b := range s {
		if normalizeLabel(b.Label) == want {
			return b, true
		}
	}
	return Band{}, false
}

// Labels returns the labels in scale order.
func (s Scale) Labels() []string {
	list := make([]string, 0, len(s))
	for _, b := range s {
		list = append(list, b.Label)
	}
	return list
}

func normalizeLabel(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}
