package rating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScale() Scale {
	return Scale{
		{Label: "AAA", Low: 0, High: 0.0003},
		{Label: "AA", Low: 0.0003, High: 0.001},
		{Label: "A", Low: 0.001, High: 0.0025},
		{Label: "BBB", Low: 0.0025, High: 0.007},
		{Label: "BBB-", Low: 0.007, High: 0.012},
		{Label: "BB", Low: 0.012, High: 0.035},
		{Label: "B", Low: 0.035, High: 0.2},
		{Label: "CCC", Low: 0.2, High: 1.0},
		{Label: "D", Low: 1.0, High: math.Inf(1)},
	}
}

func TestScale_RoundTrip(t *testing.T) {
	s := testScale()
	for _, b := range s {
		if !b.Bounded() {
			continue
		}
		t.Run(b.Label, func(t *testing.T) {
			assert.Equal(t, b.Label, s.Rating(s.PD(b.Label)))
		})
	}
}

func TestScale_Rating(t *testing.T) {
	s := testScale()
	tests := []struct {
		name string
		pd   float64
		want string
	}{
		{"zero", 0, "AAA"},
		{"inside", 0.02, "BB"},
		{"upper boundary goes to next band", 0.0025, "BBB"},
		{"top boundary", 1.0, "D"},
		{"above one", 2.0, "D"},
		{"negative", -0.01, NotRated},
		{"nan", math.NaN(), NotRated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Rating(tt.pd))
		})
	}
}

func TestScale_RatingGap(t *testing.T) {
	s := Scale{
		{Label: "A", Low: 0, High: 0.1},
		{Label: "B", Low: 0.2, High: math.Inf(1)},
	}
	assert.Equal(t, NotRated, s.Rating(0.15))
}

func TestScale_PD(t *testing.T) {
	s := testScale()
	assert.InDelta(t, 0.0235, s.PD("BB"), 1e-12)
	assert.InDelta(t, 0.0235, s.PD("  bb "), 1e-12)
	assert.Equal(t, 1.0, s.PD("D"))
	assert.Equal(t, UnknownLabelPD, s.PD("ZZZ"))
	assert.Equal(t, UnknownLabelPD, s.PD(""))
}

func TestScale_Band(t *testing.T) {
	s := testScale()
	b, ok := s.Band("bbb-")
	require.True(t, ok)
	assert.Equal(t, "BBB-", b.Label)
	assert.True(t, b.Bounded())

	_, ok = s.Band("nope")
	assert.False(t, ok)
}

func TestScale_Labels(t *testing.T) {
	s := testScale()
	labels := s.Labels()
	require.Len(t, labels, len(s))
	assert.Equal(t, "AAA", labels[0])
	assert.Equal(t, "D", labels[len(labels)-1])
}
