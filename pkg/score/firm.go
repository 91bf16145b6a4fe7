package score

// Neutral is the value of a signal that carries no information.
const Neutral = 0.5

// Mandatory financial columns. A firm cannot be scored without all of them.
const (
	ColRevenue           = "revenue"
	ColTotalAssets       = "total_assets"
	ColTotalLiabilities  = "total_liabilities"
	ColEBIT              = "ebit"
	ColRetainedEarnings  = "retained_earnings"
	ColWorkingCapital    = "working_capital"
	ColMarketValueEquity = "market_value_equity"
)

// MandatoryColumns lists the financial columns in validation order.
var MandatoryColumns = []string{
	ColRevenue,
	ColTotalAssets,
	ColTotalLiabilities,
	ColEBIT,
	ColRetainedEarnings,
	ColWorkingCapital,
	ColMarketValueEquity,
}

// Firm is one SME at one point in time.
type Firm struct {
	Revenue           float64 `json:"revenue" yaml:"revenue"`
	TotalAssets       float64 `json:"total_assets" yaml:"totalAssets"`
	TotalLiabilities  float64 `json:"total_liabilities" yaml:"totalLiabilities"`
	EBIT              float64 `json:"ebit" yaml:"ebit"`
	RetainedEarnings  float64 `json:"retained_earnings" yaml:"retainedEarnings"`
	WorkingCapital    float64 `json:"working_capital" yaml:"workingCapital"`
	MarketValueEquity float64 `json:"market_value_equity" yaml:"marketValueEquity"`

	Country       string  `json:"country,omitempty" yaml:"country,omitempty"`
	CountryRating string  `json:"country_rating,omitempty" yaml:"countryRating,omitempty"`
	SectorPriorPD float64 `json:"sector_prior_pd" yaml:"sectorPriorPD"`

	Signals Signals `json:"signals" yaml:"signals"`
}

// SetFinancial assigns a mandatory column value by name.
// It returns false for names that are not mandatory columns.
func (f *Firm) SetFinancial(column string, v float64) bool {
	switch column {
	case ColRevenue:
		f.Revenue = v
	case ColTotalAssets:
		f.TotalAssets = v
	case ColTotalLiabilities:
		f.TotalLiabilities = v
	case ColEBIT:
		f.EBIT = v
	case ColRetainedEarnings:
		f.RetainedEarnings = v
	case ColWorkingCapital:
		f.WorkingCapital = v
	case ColMarketValueEquity:
		f.MarketValueEquity = v
	default:
		return false
	}
	return true
}

// Signals are the optional alternative-data, cash-flow and qualitative inputs.
type Signals struct {
	TradeCredit      float64 `json:"trade_credit" yaml:"tradeCredit"`
	UtilityPay       float64 `json:"utility_pay" yaml:"utilityPay"`
	BankTx           float64 `json:"bank_tx" yaml:"bankTx"`
	TaxCompliance    float64 `json:"tax_compliance" yaml:"taxCompliance"`
	DigitalFootprint float64 `json:"digital_footprint" yaml:"digitalFootprint"`

	FCFVolRatio    float64 `json:"fcf_vol_ratio" yaml:"fcfVolRatio"`
	CFIntCov       float64 `json:"cf_int_cov" yaml:"cfIntCov"`
	RevenueQuality float64 `json:"revenue_quality" yaml:"revenueQuality"`

	BusinessAgeYears     float64 `json:"business_age_years" yaml:"businessAgeYears"`
	MgmtTrackRecord      float64 `json:"mgmt_track_record" yaml:"mgmtTrackRecord"`
	IndustrySurvivalRate float64 `json:"industry_survival_rate" yaml:"industrySurvivalRate"`
	GeoRisk              float64 `json:"geo_risk" yaml:"geoRisk"`
}

// SignalField declares one optional input column and its neutral default.
type SignalField struct {
	Column  string
	Default float64
	set     func(*Signals, float64)
}

// SignalFields is the single table of optional columns and their defaults.
var SignalFields = []SignalField{
	{"trade_credit", Neutral, func(s *Signals, v float64) { s.TradeCredit = v }},
	{"utility_pay", Neutral, func(s *Signals, v float64) { s.UtilityPay = v }},
	{"bank_tx", Neutral, func(s *Signals, v float64) { s.BankTx = v }},
	{"tax_compliance", Neutral, func(s *Signals, v float64) { s.TaxCompliance = v }},
	{"digital_footprint", Neutral, func(s *Signals, v float64) { s.DigitalFootprint = v }},
	{"fcf_vol_ratio", 0.2, func(s *Signals, v float64) { s.FCFVolRatio = v }},
	{"cf_int_cov", 2.0, func(s *Signals, v float64) { s.CFIntCov = v }},
	{"revenue_quality", Neutral, func(s *Signals, v float64) { s.RevenueQuality = v }},
	{"business_age_years", 6, func(s *Signals, v float64) { s.BusinessAgeYears = v }},
	{"mgmt_track_record", Neutral, func(s *Signals, v float64) { s.MgmtTrackRecord = v }},
	{"industry_survival_rate", Neutral, func(s *Signals, v float64) { s.IndustrySurvivalRate = v }},
	{"geo_risk", Neutral, func(s *Signals, v float64) { s.GeoRisk = v }},
}

// Set assigns the field value on s.
func (f SignalField) Set(s *Signals, v float64) {
	f.set(s, v)
}

// NeutralSignals returns signals with every field at its default.
func NeutralSignals() Signals {
	var s Signals
	for _, f := range SignalFields {
		f.set(&s, f.Default)
	}
	return s
}

// SignalsFrom builds signals from a lookup, using the default for every
// column the lookup does not provide.
func SignalsFrom(lookup func(column string) (float64, bool)) Signals {
	s := NeutralSignals()
	for _, f := range SignalFields {
		if v, ok := lookup(f.Column); ok {
			f.set(&s, v)
		}
	}
	return s
}

func (s Signals) altData() []float64 {
	return []float64{s.TradeCredit, s.UtilityPay, s.BankTx, s.TaxCompliance, s.DigitalFootprint}
}
