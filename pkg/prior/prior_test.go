package prior

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/mchmarny/smecredit/pkg/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func priorTable() *table.Table {
	return table.New(
		[]string{ColCountry, ColSector, ColPriorPD},
		[]string{"*", "*", "0.05"},
		[]string{"*", "Industrials", "0.03"},
		[]string{"UAE", "Banks", "0.02"},
		[]string{"uae ", " Industrials ", "0.02"},
	)
}

func TestLookup_Wildcards(t *testing.T) {
	l, err := FromTable(priorTable())
	require.NoError(t, err)

	tests := []struct {
		name    string
		country string
		sector  string
		want    float64
	}{
		{"exact", "UAE", "Banks", 0.02},
		{"exact normalized", " uae", "Industrials", 0.02},
		{"sector wildcard", "India", "Industrials", 0.03},
		{"global wildcard", "India", "Retail", 0.05},
		{"sector case kept", "UAE", "banks", 0.05},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Get(tt.country, tt.sector))
		})
	}
}

func TestLookup_Fallback(t *testing.T) {
	l := Lookup{NewKey("UAE", "Banks"): 0.02}
	assert.Equal(t, DefaultPD, l.Get("India", "Retail"))
	assert.Equal(t, 0.5, l.GetOr("India", "Retail", 0.5))

	var empty Lookup
	assert.Equal(t, DefaultPD, empty.Get("UAE", "Banks"))
}

func TestFromTable_LaterRowsWin(t *testing.T) {
	tbl := table.New(
		[]string{ColCountry, ColSector, ColPriorPD, "Note"},
		[]string{"UAE", "Banks", "0.02", "first"},
		[]string{"UAE", "Banks", "0.04", "second"},
	)
	l, err := FromTable(tbl)
	require.NoError(t, err)
	assert.Len(t, l, 1)
	assert.Equal(t, 0.04, l.Get("UAE", "Banks"))
}

func TestFromTable_Schema(t *testing.T) {
	tests := []struct {
		name string
		tbl  *table.Table
	}{
		{"nil", nil},
		{"missing column", table.New([]string{ColCountry, ColSector}, []string{"*", "*"})},
		{"wrong case column", table.New([]string{"country", ColSector, ColPriorPD})},
		{"non numeric", table.New([]string{ColCountry, ColSector, ColPriorPD}, []string{"*", "*", "high"})},
		{"empty pd", table.New([]string{ColCountry, ColSector, ColPriorPD}, []string{"*", "*", ""})},
		{"nan pd", table.New([]string{ColCountry, ColSector, ColPriorPD}, []string{"*", "*", "NaN"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromTable(tt.tbl)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestLoad_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "priors.csv")
	content := "Country,Sector,Prior_PD\n*,*,0.05\n*,Industrials,0.03\nUAE,Banks,0.02\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	l, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 0.02, l.Get("UAE", "Banks"))
	assert.Equal(t, 0.03, l.Get("UAE", "Industrials"))
}

func TestLoad_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "priors.xlsx")
	require.NoError(t, table.WriteXLSX(priorTable(), path, "Priors"))

	l, err := Load(path, "Priors")
	require.NoError(t, err)
	assert.Equal(t, 0.02, l.Get("UAE", "Banks"))
	assert.Equal(t, 0.05, l.Get("Oman", "Retail"))

	_, err = Load(path, "Other")
	assert.ErrorIs(t, err, table.ErrSheetNotFound)
}

func TestLoad_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "priors.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE Priors (Country TEXT, Sector TEXT, Prior_PD REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO Priors VALUES ('*', '*', 0.05), ('*', 'Industrials', 0.03)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	l, err := Load(path, "Priors")
	require.NoError(t, err)
	assert.Equal(t, 0.03, l.Get("UAE", "Industrials"))
	assert.Equal(t, 0.05, l.Get("UAE", "Banks"))
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(path, []byte("Country,PD\nUAE,0.1\n"), 0o644))
	_, err = Load(path, "")
	assert.ErrorIs(t, err, ErrSchema)
}
