package cli

import (
	"context"
	"log/slog"

	"github.com/mchmarny/smecredit/pkg/config"
	"github.com/urfave/cli/v3"
)

const (
	flagDir   = "dir"
	flagForce = "force"
)

func newInitCmd() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Write the default model, rating scale, sector and prior files",
		UsageText: "smecredit init [--dir config] [--force]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagDir,
				Usage: "Directory to write the default configuration into, defaults to --config-dir",
			},
			&cli.BoolFlag{
				Name:  flagForce,
				Usage: "Overwrite existing files",
			},
		},
		Action: cmdInit,
	}
}

type initResult struct {
	Dir     string   `json:"dir" yaml:"dir"`
	Written []string `json:"written" yaml:"written"`
}

func cmdInit(_ context.Context, cmd *cli.Command) error {
	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}

	dir := cmd.String(flagDir)
	if dir == "" {
		dir = cfg.ConfigDir
	}

	written, err := config.WriteDefaults(dir, cmd.Bool(flagForce))
	if err != nil {
		return err
	}
	slog.Info("config written", "dir", dir, "files", len(written))

	if written == nil {
		written = []string{}
	}
	return encode(cfg, &initResult{Dir: dir, Written: written})
}
