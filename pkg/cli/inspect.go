package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mchmarny/smecredit/pkg/batch"
	"github.com/mchmarny/smecredit/pkg/config"
	"github.com/mchmarny/smecredit/pkg/score"
	"github.com/mchmarny/smecredit/pkg/table"
	"github.com/urfave/cli/v3"
)

const inspectValueLimit = 50

func newInspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Check an input table and guess its sector column",
		UsageText: "smecredit inspect --input firms.xlsx [--sheet Firms]",
		Flags: []cli.Flag{
			newInputFlag("Firm table to inspect"),
			newSheetFlag(),
		},
		Action: cmdInspect,
	}
}

type inspection struct {
	Input          string             `json:"input" yaml:"input"`
	Rows           int                `json:"rows" yaml:"rows"`
	Columns        []string           `json:"columns" yaml:"columns"`
	MissingColumns []string           `json:"missing_columns,omitempty" yaml:"missingColumns,omitempty"`
	SectorColumn   string             `json:"sector_column,omitempty" yaml:"sectorColumn,omitempty"`
	Candidates     []batch.Candidate  `json:"candidates,omitempty" yaml:"candidates,omitempty"`
	UnknownSectors []batch.ValueCount `json:"unknown_sectors,omitempty" yaml:"unknownSectors,omitempty"`
	Values         []batch.ValueCount `json:"values,omitempty" yaml:"values,omitempty"`
}

func cmdInspect(_ context.Context, cmd *cli.Command) error {
	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}

	known, err := knownSectors(cfg.ConfigDir)
	if err != nil {
		return err
	}

	input := cmd.String(flagInput)
	t, err := table.Read(input, cmd.String(flagSheet))
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}

	in := &inspection{
		Input:   input,
		Rows:    t.Len(),
		Columns: t.Columns,
	}
	for _, c := range score.MandatoryColumns {
		if !t.Has(c) {
			in.MissingColumns = append(in.MissingColumns, c)
		}
	}

	in.SectorColumn, in.Candidates = batch.DetectSectorColumn(t, known)
	if in.SectorColumn != "" {
		in.Values = batch.DistinctValues(t, in.SectorColumn, inspectValueLimit)
		for _, v := range in.Values {
			if !known[v.Value] {
				in.UnknownSectors = append(in.UnknownSectors, v)
			}
		}
	}

	return encode(cfg, in)
}

// knownSectors returns the sectors with configured curves. The built-in
// sectors are used when dir has no configuration.
func knownSectors(dir string) (map[string]bool, error) {
	b, err := config.Load(dir)
	if err != nil {
		slog.Warn("using built-in sectors", "dir", dir, "error", err)
		if b, err = config.Defaults(); err != nil {
			return nil, err
		}
	}
	return b.Curves.Sectors(), nil
}
