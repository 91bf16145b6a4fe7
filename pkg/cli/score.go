package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mchmarny/smecredit/pkg/batch"
	"github.com/mchmarny/smecredit/pkg/config"
	"github.com/mchmarny/smecredit/pkg/output"
	"github.com/mchmarny/smecredit/pkg/prior"
	"github.com/mchmarny/smecredit/pkg/report"
	"github.com/mchmarny/smecredit/pkg/table"
	"github.com/urfave/cli/v3"
)

const (
	extCSV      = ".csv"
	extXLSX     = ".xlsx"
	extHTML     = ".html"
	rejectLabel = "rejects"
)

const (
	flagInput        = "input"
	flagSheet        = "sheet"
	flagSectorCol    = "sector-col"
	flagUseUTC       = "use-utc"
	flagOutputPrefix = "output-prefix"
	flagOutputDir    = "output-dir"
	flagPriors       = "priors"
	flagPriorsSheet  = "priors-sheet"
	flagValidate     = "validate"
	flagWorkers      = "workers"
	flagXLSX         = "xlsx"
	flagReport       = "report"
)

func newInputFlag(usage string) *cli.StringFlag {
	return &cli.StringFlag{
		Name:     flagInput,
		Aliases:  []string{"i"},
		Usage:    usage,
		Required: true,
	}
}

func newSheetFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  flagSheet,
		Usage: "Sheet (xlsx) or table (sqlite) to read, defaults to the first one",
	}
}

func newScoreCmd() *cli.Command {
	return &cli.Command{
		Name:      "score",
		Usage:     "Score a table of firms",
		UsageText: "smecredit score --input firms.csv [--sector-col sector] [--xlsx] [--report]",
		Flags: []cli.Flag{
			newInputFlag("Firm table to score (.csv, .tsv, .xlsx or sqlite .db)"),
			newSheetFlag(),
			&cli.StringFlag{
				Name:  flagSectorCol,
				Usage: "Input column holding the sector label",
				Value: batch.DefaultSectorColumn,
			},
			&cli.BoolFlag{
				Name:  flagUseUTC,
				Usage: "Use UTC instead of local time in output file names",
			},
			&cli.StringFlag{
				Name:  flagOutputPrefix,
				Usage: "Output file name prefix",
				Value: output.DefaultPrefix,
			},
			&cli.StringFlag{
				Name:    flagOutputDir,
				Usage:   "Directory for scored, rejected and report files",
				Value:   output.DefaultDir,
				Sources: cli.EnvVars("SME_OUTPUT_DIR"),
			},
			&cli.StringFlag{
				Name:  flagPriors,
				Usage: "Prior PD table, overrides the model config bayes file",
			},
			&cli.StringFlag{
				Name:  flagPriorsSheet,
				Usage: "Sheet or table of the prior PD table",
			},
			&cli.BoolFlag{
				Name:  flagValidate,
				Usage: "Move malformed rows to a rejects file instead of failing",
				Value: true,
			},
			&cli.IntFlag{
				Name:  flagWorkers,
				Usage: "Number of rows scored concurrently",
				Value: 1,
			},
			&cli.BoolFlag{
				Name:  flagXLSX,
				Usage: "Write xlsx instead of csv",
			},
			&cli.BoolFlag{
				Name:  flagReport,
				Usage: "Also write an HTML report with rating and PD charts",
			},
		},
		Action: cmdScore,
	}
}

func cmdScore(ctx context.Context, cmd *cli.Command) error {
	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	log := slog.With("run", runID)

	bundle, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return err
	}
	log.Debug("config loaded", "dir", bundle.Dir, "sectors", len(bundle.Curves))

	priors, err := loadPriors(cmd, bundle)
	if err != nil {
		return err
	}

	input := cmd.String(flagInput)
	t, err := table.Read(input, cmd.String(flagSheet))
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	log.Info("input loaded", "path", input, "rows", t.Len())

	res, err := batch.ScoreMany(ctx, t, batch.Inputs{
		Model:  bundle.Model,
		Curves: bundle.Curves,
		Scale:  bundle.Scale,
		Priors: priors,
	}, batch.Options{
		SectorColumn: cmd.String(flagSectorCol),
		Validate:     cmd.Bool(flagValidate),
		Workers:      int(cmd.Int(flagWorkers)),
	})
	if err != nil {
		return err
	}

	ext := extCSV
	if cmd.Bool(flagXLSX) {
		ext = extXLSX
	}
	prefix := cmd.String(flagOutputPrefix)

	outPath, err := output.Path(cmd.String(flagOutputDir), prefix, ext, time.Now(), cmd.Bool(flagUseUTC))
	if err != nil {
		return err
	}
	if err := table.Write(res.Scored, outPath); err != nil {
		return fmt.Errorf("error writing scored output: %w", err)
	}

	s := report.Summarize(res.Scores, bundle.Scale)
	s.RunID = runID
	s.Input = input
	s.Output = outPath
	s.Rows = t.Len()
	s.Rejected = res.Rejected.Len()

	if res.Rejected.Len() > 0 {
		s.Rejects = output.Sibling(outPath, prefix, rejectLabel, ext)
		if err := table.Write(res.Rejected, s.Rejects); err != nil {
			return fmt.Errorf("error writing rejects: %w", err)
		}
		log.Warn("rows rejected", "count", s.Rejected, "path", s.Rejects)
	}

	if cmd.Bool(flagReport) {
		s.Report = output.Sibling(outPath, prefix, "", extHTML)
		if err := report.RenderFile(s.Report, s); err != nil {
			return err
		}
	}

	log.Info("scoring complete", "path", outPath, "rows", res.Scored.Len())

	return encode(cfg, s)
}

// loadPriors reads the prior table named by the flags or the model config.
// Nothing is read when the bayes blend is off.
func loadPriors(cmd *cli.Command, b *config.Bundle) (prior.Lookup, error) {
	if !b.Model.UseBayesPrior {
		return prior.Lookup{}, nil
	}

	path, sheet := b.PriorsPath, b.PriorsSheet
	if p := cmd.String(flagPriors); p != "" {
		path, sheet = p, ""
	}
	if s := cmd.String(flagPriorsSheet); s != "" {
		sheet = s
	}

	l, err := prior.Load(path, sheet)
	if err != nil {
		return nil, fmt.Errorf("error loading priors: %w", err)
	}
	slog.Debug("priors loaded", "path", path, "entries", len(l))
	return l, nil
}
