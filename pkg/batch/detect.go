package batch

import (
	"cmp"
	"slices"
	"strings"

	"github.com/mchmarny/smecredit/pkg/table"
)

// Candidate is a text column that could hold sector labels.
type Candidate struct {
	Column  string  `json:"column" yaml:"column"`
	Values  int     `json:"values" yaml:"values"`
	Matches int     `json:"matches" yaml:"matches"`
	Ratio   float64 `json:"ratio" yaml:"ratio"`
}

// DetectSectorColumn guesses which column holds sector labels. Candidates
// are columns with at least one non-empty, non-numeric value; the best one
// has the highest share of values found in known. The first column wins ties.
// It returns an empty name when there are no candidates.
func DetectSectorColumn(t *table.Table, known map[string]bool) (string, []Candidate) {
	if t == nil {
		return "", nil
	}

	var list []Candidate
	for _, col := range t.Columns {
		c := Candidate{Column: col}
		text := false
		for _, v := range t.Values(col) {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			c.Values++
			if _, ok := table.Number(v); !ok {
				text = true
			}
			if known[v] {
				c.Matches++
			}
		}
		if !text {
			continue
		}
		c.Ratio = float64(c.Matches) / float64(c.Values)
		list = append(list, c)
	}

	if len(list) == 0 {
		return "", nil
	}

	best := list[0]
	for _, c := range list[1:] {
		if c.Ratio > best.Ratio {
			best = c
		}
	}

	slices.SortStableFunc(list, func(a, b Candidate) int {
		return cmp.Compare(b.Ratio, a.Ratio)
	})

	return best.Column, list
}

// ValueCount is the number of rows holding a value.
type ValueCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// DistinctValues counts the trimmed non-empty values of a column, most
// frequent first, ties by value. A limit of 0 or less returns all of them.
func DistinctValues(t *table.Table, column string, limit int) []ValueCount {
	if t == nil {
		return nil
	}

	counts := map[string]int{}
	for _, v := range t.Values(column) {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		counts[v]++
	}

	list := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		list = append(list, ValueCount{Value: v, Count: n})
	}
	slices.SortFunc(list, func(a, b ValueCount) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Value, b.Value)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list
}
