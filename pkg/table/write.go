package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Write saves the table to path in the format implied by its extension.
// Existing files are never overwritten: the error wraps os.ErrExist.
func Write(t *Table, path string) error {
	if t == nil {
		return errors.New("nil table")
	}

	format, err := FormatOf(path)
	if err != nil {
		return fmt.Errorf("%w: %s", err, path)
	}

	slog.Debug("writing table", "path", path, "format", format, "rows", t.Len())

	switch format {
	case FormatCSV:
		return WriteCSV(t, path, ',')
	case FormatTSV:
		return WriteCSV(t, path, '\t')
	case FormatXLSX:
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", os.ErrExist, path)
		}
		return WriteXLSX(t, path, "")
	default:
		return fmt.Errorf("%w for writing: %s", ErrUnsupportedFormat, path)
	}
}

// WriteCSV creates path exclusively and writes the table as delimited text.
func WriteCSV(t *Table, path string, comma rune) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}

	if err := EncodeCSV(f, t, comma); err != nil {
		f.Close()
		return fmt.Errorf("error writing %s: %w", path, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", path, err)
	}
	return nil
}

// EncodeCSV writes the header and rows to w.
func EncodeCSV(w io.Writer, t *Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(t.Columns); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("error writing rows: %w", err)
	}
	return nil
}
