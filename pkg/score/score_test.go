package score

import (
	"math"
	"testing"

	"github.com/mchmarny/smecredit/pkg/curve"
	"github.com/mchmarny/smecredit/pkg/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delta = 1e-9

func testModel() *Model {
	return &Model{
		Weights: Weights{X1: 0.717, X2: 0.847, X3: 3.107, X4: 0.420, X5: 0.998},
		Overlays: Overlays{
			AltWeight:  0.5,
			CFFCF:      -0.5,
			CFIC:       0.2,
			CFRQ:       0.3,
			AgePenLT3:  -0.4,
			AgePen3To5: -0.2,
			QualWeight: 0.3,
		},
		Penalties:           Penalties{Scale: -0.3, Leverage: -0.25},
		MVCap:               3.0,
		UseBayesPrior:       true,
		DefaultBayesAlpha:   0.3,
		BayesAlphaByCountry: map[string]float64{GroupGCC: 0.4, "INDIA": 0.35},
	}
}

func testCurves() curve.Table {
	return curve.Table{"Industrials": {Slope: -0.015, Intercept: 0.06}}
}

func testScale() rating.Scale {
	return rating.Scale{
		{Label: "AAA", Low: 0, High: 0.0003},
		{Label: "A", Low: 0.0003, High: 0.0025},
		{Label: "BBB", Low: 0.0025, High: 0.012},
		{Label: "BB", Low: 0.012, High: 0.035},
		{Label: "B+", Low: 0.035, High: 0.08},
		{Label: "B", Low: 0.08, High: 0.12},
		{Label: "CCC", Low: 0.12, High: 1.0},
		{Label: "D", Low: 1.0, High: math.Inf(1)},
	}
}

func baseFirm() Firm {
	return Firm{
		Revenue:           10_000_000,
		TotalAssets:       20_000_000,
		TotalLiabilities:  8_000_000,
		EBIT:              1_500_000,
		RetainedEarnings:  2_000_000,
		WorkingCapital:    1_000_000,
		MarketValueEquity: 12_000_000,
		Country:           "UAE",
		SectorPriorPD:     0.02,
		Signals:           NeutralSignals(),
	}
}

func TestScore_EndToEnd(t *testing.T) {
	r, err := Score(baseFirm(), "Industrials", testModel(), testCurves(), testScale())
	require.NoError(t, err)

	assert.InDelta(t, 0.05, r.X1, delta)
	assert.InDelta(t, 0.1, r.X2, delta)
	assert.InDelta(t, 0.075, r.X3, delta)
	assert.InDelta(t, 1.5, r.X4, delta)
	assert.InDelta(t, 0.5, r.X5, delta)

	assert.InDelta(t, 1.482575, r.ZRaw, delta)
	assert.InDelta(t, 0.0, r.AltAdj, delta)
	assert.InDelta(t, -0.1+0.2*math.Log(3), r.CFAdj, delta)
	assert.InDelta(t, -0.15, r.QualAdj, delta)
	assert.Equal(t, 0.0, r.ScalePen, "revenue above small-scale threshold")
	assert.Equal(t, 0.0, r.LevPen, "leverage 0.4 is below threshold")

	wantZ := 1.482575 + (-0.1 + 0.2*math.Log(3)) - 0.15
	assert.InDelta(t, wantZ, r.ZAdj, delta)

	wantModel := 0.06 - 0.015*wantZ
	assert.InDelta(t, wantModel, r.PDModel, delta)
	assert.InDelta(t, 0.6*wantModel+0.4*0.02, r.PDFinal, delta)

	assert.GreaterOrEqual(t, r.PDFinal, 0.0)
	assert.LessOrEqual(t, r.PDFinal, 1.0)
	assert.Equal(t, "BB", r.Rating)
}

func TestScore_UnknownSectorUsesDefaultCurve(t *testing.T) {
	r, err := Score(baseFirm(), "UnknownSector", testModel(), testCurves(), testScale())
	require.NoError(t, err)
	assert.InDelta(t, curve.Default.PD(r.ZAdj), r.PDModel, delta)
	assert.False(t, math.IsNaN(r.PDFinal) || math.IsInf(r.PDFinal, 0))
	assert.GreaterOrEqual(t, r.PDFinal, 0.0)
	assert.NotEmpty(t, r.Rating)
}

func TestScore_BayesToggleOff(t *testing.T) {
	m := testModel()
	m.UseBayesPrior = false

	f := baseFirm()
	f.SectorPriorPD = 0.9
	r, err := Score(f, "Industrials", m, testCurves(), testScale())
	require.NoError(t, err)
	assert.Equal(t, r.PDModel, r.PDFinal)
}

func TestScore_SovereignFloor(t *testing.T) {
	m := testModel()
	m.CapCountryRating = true

	f := baseFirm()
	f.CountryRating = "b"
	r, err := Score(f, "Industrials", m, testCurves(), testScale())
	require.NoError(t, err)
	assert.InDelta(t, 0.10, r.PDFinal, delta)
	assert.Equal(t, "B", r.Rating)

	// a floor below the blended PD never lowers it
	f.CountryRating = "AAA"
	low, err := Score(f, "Industrials", m, testCurves(), testScale())
	require.NoError(t, err)
	assert.Greater(t, low.PDFinal, testScale().PD("AAA"))
	assert.Equal(t, "BB", low.Rating)

	// toggle off ignores the country rating
	m.CapCountryRating = false
	f.CountryRating = "D"
	off, err := Score(f, "Industrials", m, testCurves(), testScale())
	require.NoError(t, err)
	assert.Equal(t, low.PDFinal, off.PDFinal)
}

func TestScore_SovereignFloorUnknownLabel(t *testing.T) {
	m := testModel()
	m.CapCountryRating = true

	f := baseFirm()
	f.CountryRating = "not-a-rating"
	r, err := Score(f, "Industrials", m, testCurves(), testScale())
	require.NoError(t, err)
	assert.Equal(t, rating.UnknownLabelPD, r.PDFinal)
	assert.Equal(t, "D", r.Rating)
}

func TestScore_Penalties(t *testing.T) {
	f := baseFirm()
	f.Revenue = 4_000_000
	f.TotalLiabilities = 12_000_000

	r, err := Score(f, "Industrials", testModel(), testCurves(), testScale())
	require.NoError(t, err)
	assert.Equal(t, -0.3, r.ScalePen)
	assert.Equal(t, -0.25, r.LevPen)
}

func TestScore_X4Cap(t *testing.T) {
	f := baseFirm()
	f.TotalLiabilities = 1_000_000
	r, err := Score(f, "Industrials", testModel(), testCurves(), testScale())
	require.NoError(t, err)
	assert.Equal(t, 3.0, r.X4)
}

func TestScore_AgeTiers(t *testing.T) {
	tests := []struct {
		age  float64
		want float64
	}{
		{1, -0.4},
		{2.99, -0.4},
		{3, -0.2},
		{4.5, -0.2},
		{5, 0},
		{20, 0},
	}
	for _, tt := range tests {
		f := baseFirm()
		f.Signals.BusinessAgeYears = tt.age
		r, err := Score(f, "Industrials", testModel(), testCurves(), testScale())
		require.NoError(t, err)
		// neutral mgmt/survival leave only the age penalty and the geo risk term
		assert.InDelta(t, tt.want-0.15, r.QualAdj, delta, "age %v", tt.age)
	}
}

func TestScore_AltOverlay(t *testing.T) {
	f := baseFirm()
	f.Signals.TradeCredit = 1
	f.Signals.UtilityPay = 1
	f.Signals.BankTx = 1
	f.Signals.TaxCompliance = 1
	f.Signals.DigitalFootprint = 1
	r, err := Score(f, "Industrials", testModel(), testCurves(), testScale())
	require.NoError(t, err)
	assert.InDelta(t, 0.25, r.AltAdj, delta)
}

func TestScore_DomainErrors(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Firm)
	}{
		{"zero assets", func(f *Firm) { f.TotalAssets = 0 }},
		{"zero liabilities", func(f *Firm) { f.TotalLiabilities = 0 }},
		{"coverage below minus one", func(f *Firm) { f.Signals.CFIntCov = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := baseFirm()
			tt.mod(&f)
			_, err := Score(f, "Industrials", testModel(), testCurves(), testScale())
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDomain)
		})
	}
}

func TestScore_NilModel(t *testing.T) {
	_, err := Score(baseFirm(), "Industrials", nil, testCurves(), testScale())
	assert.Error(t, err)
}

func TestModel_BayesAlpha(t *testing.T) {
	m := testModel()
	assert.Equal(t, 0.4, m.BayesAlpha("uae"))
	assert.Equal(t, 0.4, m.BayesAlpha(" Saudi Arabia "))
	assert.Equal(t, 0.35, m.BayesAlpha("India"))
	assert.Equal(t, 0.3, m.BayesAlpha("FRANCE"))
	assert.Equal(t, 0.3, m.BayesAlpha(""))

	noGroup := &Model{DefaultBayesAlpha: 0.1, BayesAlphaByCountry: map[string]float64{"QATAR": 0.7}}
	assert.Equal(t, 0.7, noGroup.BayesAlpha("qatar"))
	assert.Equal(t, 0.1, noGroup.BayesAlpha("OMAN"))
}

func TestSignals(t *testing.T) {
	n := NeutralSignals()
	assert.Equal(t, 0.5, n.TradeCredit)
	assert.Equal(t, 0.2, n.FCFVolRatio)
	assert.Equal(t, 2.0, n.CFIntCov)
	assert.Equal(t, 6.0, n.BusinessAgeYears)
	assert.Equal(t, 0.5, n.GeoRisk)

	s := SignalsFrom(func(col string) (float64, bool) {
		if col == "geo_risk" {
			return 0.9, true
		}
		return 0, false
	})
	assert.Equal(t, 0.9, s.GeoRisk)
	assert.Equal(t, 0.5, s.MgmtTrackRecord)

	for _, f := range SignalFields {
		assert.NotEmpty(t, f.Column)
	}
}

func TestFirm_SetFinancial(t *testing.T) {
	var f Firm
	for i, col := range MandatoryColumns {
		assert.True(t, f.SetFinancial(col, float64(i+1)))
	}
	assert.Equal(t, 1.0, f.Revenue)
	assert.Equal(t, 7.0, f.MarketValueEquity)
	assert.False(t, f.SetFinancial("geo_risk", 1))
}

func TestResult_Numbers(t *testing.T) {
	r := &Result{X1: 1, PDFinal: 0.5, Rating: "BB"}
	nums := r.Numbers()
	require.Len(t, nums, len(Columns)-1)
	assert.Equal(t, 1.0, nums[0])
	assert.Equal(t, 0.5, nums[len(nums)-1])
}
