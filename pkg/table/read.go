package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const utf8BOM = "\ufeff"

// Read loads a table from path. The sheet names the worksheet of a
// workbook or the table of a SQLite database; empty selects the first one.
// It is ignored for delimited text files.
func Read(path, sheet string) (*Table, error) {
	if path == "" {
		return nil, errors.New("path not specified")
	}

	format, err := FormatOf(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}

	slog.Debug("reading table", "path", path, "format", format, "sheet", sheet)

	switch format {
	case FormatCSV:
		return ReadCSV(path, ',')
	case FormatTSV:
		return ReadCSV(path, '\t')
	case FormatXLSX:
		return ReadXLSX(path, sheet)
	case FormatSQLite:
		return ReadDB(path, sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ReadCSV reads a delimited text file whose first record is the header.
func ReadCSV(path string, comma rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening file %s: %w", path, err)
	}
	defer f.Close()

	t, err := DecodeCSV(f, comma)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", path, err)
	}
	return t, nil
}

// DecodeCSV parses delimited text from r. Ragged records are padded to the
// header width and blank lines are skipped.
func DecodeCSV(r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmpty
	}
	if err != nil {
		return nil, fmt.Errorf("error parsing header: %w", err)
	}

	t := New(cleanHeader(header))
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error parsing record %d: %w", t.Len()+1, err)
		}
		if blank(rec) {
			continue
		}
		t.Append(rec)
	}

	return t, nil
}

func cleanHeader(header []string) []string {
	list := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}
		list[i] = strings.TrimSpace(h)
	}
	return list
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
