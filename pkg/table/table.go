package table

import (
	"errors"
	"math"
	"path/filepath"
	"strconv"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for file extensions no reader or writer handles.
	ErrUnsupportedFormat = errors.New("unsupported table format")

	// ErrSheetNotFound is returned when the requested sheet or SQL table does not exist.
	ErrSheetNotFound = errors.New("sheet not found")

	// ErrEmpty is returned when a source has no header row.
	ErrEmpty = errors.New("table has no header row")
)

// Format identifies a tabular file type.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatTSV    Format = "tsv"
	FormatXLSX   Format = "xlsx"
	FormatSQLite Format = "sqlite"
)

// FormatOf returns the format implied by the path extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", ErrUnsupportedFormat
	}
}

// Table is an ordered set of named columns with string cells kept as read.
// Every row has exactly len(Columns) cells.
type Table struct {
	Columns []string   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
}

// New creates a table with the given header and rows. Rows are padded or
// truncated to the header width.
func New(columns []string, rows ...[]string) *Table {
	t := &Table{
		Columns: make([]string, len(columns)),
		Rows:    make([][]string, 0, len(rows)),
	}
	copy(t.Columns, columns)
	for _, r := range rows {
		t.Append(r)
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Index returns the position of the column or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Has reports whether the column exists.
func (t *Table) Has(column string) bool {
	return t.Index(column) >= 0
}

// Get returns the cell at row i in the named column.
// The bool is false when the column does not exist.
func (t *Table) Get(i int, column string) (string, bool) {
	c := t.Index(column)
	if c < 0 {
		return "", false
	}
	return t.Rows[i][c], true
}

// Append adds a row, sized to the header.
func (t *Table) Append(row []string) {
	r := make([]string, len(t.Columns))
	copy(r, row)
	t.Rows = append(t.Rows, r)
}

// AddColumn appends an empty column unless it already exists and returns its index.
func (t *Table) AddColumn(column string) int {
	if i := t.Index(column); i >= 0 {
		return i
	}
	t.Columns = append(t.Columns, column)
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	return len(t.Columns) - 1
}

// Values returns every cell of the column in row order.
func (t *Table) Values(column string) []string {
	c := t.Index(column)
	if c < 0 {
		return nil
	}
	list := make([]string, len(t.Rows))
	for i, r := range t.Rows {
		list[i] = r[c]
	}
	return list
}

// Number parses a cell as a float. Surrounding space is ignored and empty
// cells are not numbers. NaN and Inf parse successfully.
func Number(cell string) (float64, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// FormatNumber renders a float the way it is written to output files.
func FormatNumber(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
