package prior

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/mchmarny/smecredit/pkg/table"
)

const (
	// Wildcard matches any country or sector.
	Wildcard = "*"

	// DefaultPD is returned when no key, not even the global wildcard, matches.
	DefaultPD = 0.05

	ColCountry = "Country"
	ColSector  = "Sector"
	ColPriorPD = "Prior_PD"
)

// ErrSchema is returned when the reference table is missing a required
// column or holds a value that is not a PD.
var ErrSchema = errors.New("invalid prior table")

// Key identifies a prior. Country is upper case, Sector keeps its case.
type Key struct {
	Country string `json:"country" yaml:"country"`
	Sector  string `json:"sector" yaml:"sector"`
}

// NewKey normalizes country and sector into a key.
func NewKey(country, sector string) Key {
	return Key{
		Country: strings.ToUpper(strings.TrimSpace(country)),
		Sector:  strings.TrimSpace(sector),
	}
}

// Lookup maps (country, sector) to a prior PD. It is read-only once built.
type Lookup map[Key]float64

// Load reads the reference table at path and builds a lookup.
func Load(path, sheet string) (Lookup, error) {
	t, err := table.Read(path, sheet)
	if err != nil {
		return nil, fmt.Errorf("error reading priors: %w", err)
	}

	l, err := FromTable(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("priors loaded", "path", path, "sheet", sheet, "keys", len(l))
	return l, nil
}

// FromTable builds a lookup from a table with Country, Sector and Prior_PD
// columns. Later rows override earlier rows with the same key.
func FromTable(t *table.Table) (Lookup, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil table", ErrSchema)
	}

	var missing []string
	for _, c := range []string{ColCountry, ColSector, ColPriorPD} {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %v (have %v)", ErrSchema, missing, t.Columns)
	}

	l := make(Lookup, t.Len())
	for i := range t.Rows {
		country, _ := t.Get(i, ColCountry)
		sector, _ := t.Get(i, ColSector)
		cell, _ := t.Get(i, ColPriorPD)

		pd, ok := table.Number(cell)
		if !ok || math.IsNaN(pd) || math.IsInf(pd, 0) {
			return nil, fmt.Errorf("%w: row %d: %s %q is not a number", ErrSchema, i+1, ColPriorPD, cell)
		}

		l[NewKey(country, sector)] = pd
	}

	return l, nil
}

// Get resolves the prior for a firm, falling back to DefaultPD.
func (l Lookup) Get(country, sector string) float64 {
	return l.GetOr(country, sector, DefaultPD)
}

// GetOr resolves the prior in order: exact key, any country in the sector,
// global wildcard, then fallback.
func (l Lookup) GetOr(country, sector string, fallback float64) float64 {
	k := NewKey(country, sector)
	for _, c := range []Key{k, {Wildcard, k.Sector}, {Wildcard, Wildcard}} {
		if v, ok := l[c]; ok {
			return v
		}
	}
	return fallback
}
