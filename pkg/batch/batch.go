package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"

	"github.com/mchmarny/smecredit/pkg/curve"
	"github.com/mchmarny/smecredit/pkg/prior"
	"github.com/mchmarny/smecredit/pkg/rating"
	"github.com/mchmarny/smecredit/pkg/score"
	"github.com/mchmarny/smecredit/pkg/table"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSector is used when a row has no sector value.
	DefaultSector = "Industrials"

	// DefaultSectorColumn is the input column holding the sector label.
	DefaultSectorColumn = "sector"

	// ErrorColumn holds the rejection reasons in the rejected table.
	ErrorColumn = "_error"

	reasonSeparator = "; "
)

// Country and country-rating columns, in lookup order.
var (
	CountryColumns       = []string{"Country", "country"}
	CountryRatingColumns = []string{"Country Rating", "country_rating"}
)

var errInputsNotInitialized = errors.New("model, curves and scale are required")

// Inputs are the read-only tables shared by every row.
type Inputs struct {
	Model  *score.Model
	Curves curve.Table
	Scale  rating.Scale
	Priors prior.Lookup
}

// Options control a batch run.
type Options struct {
	SectorColumn string
	// Validate rejects malformed rows instead of failing the batch.
	Validate bool
	// Workers above 1 score rows concurrently. Output order is unchanged.
	Workers int
}

// Result partitions the input rows. Scores[i] belongs to Scored.Rows[i].
type Result struct {
	Scored   *table.Table
	Rejected *table.Table
	Scores   []*score.Result
}

type outcome struct {
	result  *score.Result
	reasons []string
}

// ScoreMany scores every row of t. Rows failing validation go to the
// rejected table with their reasons. Any scoring error aborts the batch.
func ScoreMany(ctx context.Context, t *table.Table, in Inputs, opts Options) (*Result, error) {
	if t == nil {
		return nil, errors.New("input table required")
	}
	if in.Model == nil || in.Curves == nil || len(in.Scale) == 0 {
		return nil, errInputsNotInitialized
	}
	if opts.SectorColumn == "" {
		opts.SectorColumn = DefaultSectorColumn
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if !t.Has(opts.SectorColumn) {
		slog.Warn("sector column not found, using default", "column", opts.SectorColumn, "default", DefaultSector)
	}

	total := t.Len()
	outcomes := make([]outcome, total)
	logEvery := max(total/10, 1)
	var done atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i := range t.Rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if opts.Validate {
				if reasons := Validate(t, i); len(reasons) > 0 {
					outcomes[i] = outcome{reasons: reasons}
					return nil
				}
			}
			r, err := scoreRow(t, i, in, opts.SectorColumn)
			if err != nil {
				return err
			}
			outcomes[i] = outcome{result: r}

			if n := done.Add(1); n%int64(logEvery) == 0 {
				slog.Debug("scoring progress", "scored", n, "total", total)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return assemble(t, outcomes), nil
}

func assemble(t *table.Table, outcomes []outcome) *Result {
	scored := table.New(t.Columns)
	pos := make([]int, len(score.Columns))
	for i, c := range score.Columns {
		pos[i] = scored.AddColumn(c)
	}

	rejected := table.New(t.Columns)
	errCol := rejected.AddColumn(ErrorColumn)

	res := &Result{Scored: scored, Rejected: rejected}
	for i, o := range outcomes {
		if o.result == nil {
			rejected.Append(t.Rows[i])
			rejected.Rows[rejected.Len()-1][errCol] = strings.Join(o.reasons, reasonSeparator)
			continue
		}

		scored.Append(t.Rows[i])
		row := scored.Rows[scored.Len()-1]
		for j, v := range o.result.Numbers() {
			row[pos[j]] = table.FormatNumber(v)
		}
		row[pos[len(pos)-1]] = o.result.Rating
		res.Scores = append(res.Scores, o.result)
	}

	slog.Debug("batch assembled", "scored", scored.Len(), "rejected", rejected.Len())
	return res
}

// Validate returns the reasons row i cannot be scored, or nil.
func Validate(t *table.Table, i int) []string {
	var bad []string
	for _, c := range score.MandatoryColumns {
		if _, ok := mandatory(t, i, c); !ok {
			bad = append(bad, c)
		}
	}

	var reasons []string
	if len(bad) > 0 {
		reasons = append(reasons, fmt.Sprintf("non-numeric/NaN: %v", bad))
	}

	cell, ok := t.Get(i, score.ColTotalAssets)
	switch v, num := table.Number(cell); {
	case !ok:
		reasons = append(reasons, "total_assets==0")
	case strings.TrimSpace(cell) == "" || (num && math.IsNaN(v)):
		// already reported as missing
	case !num:
		reasons = append(reasons, "total_assets not numeric")
	case math.IsInf(v, 0):
		reasons = append(reasons, "total_assets not finite")
	case v == 0:
		reasons = append(reasons, "total_assets==0")
	}

	return reasons
}

func mandatory(t *table.Table, i int, column string) (float64, bool) {
	cell, ok := t.Get(i, column)
	if !ok {
		return 0, false
	}
	v, ok := table.Number(cell)
	if !ok || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// firstOf returns the trimmed value of the first present, non-empty column.
func firstOf(t *table.Table, i int, columns []string) string {
	for _, c := range columns {
		if v, ok := t.Get(i, c); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// Firm builds the scorer input for row i. The prior PD is not resolved.
func Firm(t *table.Table, i int) (score.Firm, error) {
	var f score.Firm
	for _, c := range score.MandatoryColumns {
		v, ok := mandatory(t, i, c)
		if !ok {
			cell, _ := t.Get(i, c)
			return f, fmt.Errorf("row %d: %s value %q is not numeric", i+1, c, cell)
		}
		f.SetFinancial(c, v)
	}

	f.Country = score.NormalizeCountry(firstOf(t, i, CountryColumns))
	f.CountryRating = firstOf(t, i, CountryRatingColumns)
	f.Signals = score.SignalsFrom(func(column string) (float64, bool) {
		cell, ok := t.Get(i, column)
		if !ok || strings.TrimSpace(cell) == "" {
			return 0, false
		}
		v, ok := table.Number(cell)
		if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
			slog.Debug("optional value invalid, using default", "row", i+1, "column", column, "value", cell)
			return 0, false
		}
		return v, true
	})
	return f, nil
}

// Sector returns the trimmed sector of row i or DefaultSector.
func Sector(t *table.Table, i int, column string) string {
	if s := firstOf(t, i, []string{column}); s != "" {
		return s
	}
	return DefaultSector
}

func scoreRow(t *table.Table, i int, in Inputs, sectorColumn string) (*score.Result, error) {
	f, err := Firm(t, i)
	if err != nil {
		return nil, err
	}

	sector := Sector(t, i, sectorColumn)
	f.SectorPriorPD = in.Priors.Get(f.Country, sector)

	r, err := score.Score(f, sector, in.Model, in.Curves, in.Scale)
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", i+1, err)
	}
	return r, nil
}
