package curve

// Default is used for sectors with no configured curve.
var Default = Curve{Slope: 0.0000223, Intercept: 0.001}

// Curve is a linear Z to PD transform.
type Curve struct {
	Slope     float64 `json:"slope" yaml:"slope"`
	Intercept float64 `json:"int" yaml:"int"`
}

// PD returns slope*z + intercept floored at 0. A NaN result is floored too.
func (c Curve) PD(z float64) float64 {
	if v := c.Slope*z + c.Intercept; v > 0 {
		return v
	}
	return 0
}

// Table maps sector names to curves.
type Table map[string]Curve

// For returns the curve for the sector, or Default when the sector is unknown.
func (t Table) For(sector string) Curve {
	if c, ok := t[sector]; ok {
		return c
	}
	return Default
}

// Has reports whether the sector has a configured curve.
func (t Table) Has(sector string) bool {
	_, ok := t[sector]
	return ok
}

// Sectors returns the configured sector names as a set.
func (t Table) Sectors() map[string]bool {
	m := make(map[string]bool, len(t))
	for k := range t {
		m[k] = true
	}
	return m
}
