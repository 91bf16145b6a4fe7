package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mchmarny/smecredit/pkg/config"
	"github.com/mchmarny/smecredit/pkg/rating"
	"github.com/urfave/cli/v3"
)

const (
	flagPD    = "pd"
	flagLabel = "label"
)

var errRatingArgs = errors.New("either --pd or --label is required")

func newRatingCmd() *cli.Command {
	return &cli.Command{
		Name:      "rating",
		Usage:     "Map a PD to a rating or a rating to its PD",
		UsageText: "smecredit rating --pd 0.025 | --label BB",
		Flags: []cli.Flag{
			&cli.FloatFlag{
				Name:  flagPD,
				Usage: "Probability of default to map to a rating",
			},
			&cli.StringFlag{
				Name:  flagLabel,
				Usage: "Rating label to map to its implied PD",
			},
		},
		Action: cmdRating,
	}
}

type ratingLookup struct {
	PD     float64  `json:"pd" yaml:"pd"`
	Rating string   `json:"rating" yaml:"rating"`
	Low    *float64 `json:"low,omitempty" yaml:"low,omitempty"`
	High   *float64 `json:"high,omitempty" yaml:"high,omitempty"`
}

func cmdRating(_ context.Context, cmd *cli.Command) error {
	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}

	hasPD, hasLabel := cmd.IsSet(flagPD), cmd.IsSet(flagLabel)
	if hasPD == hasLabel {
		return errRatingArgs
	}

	b, err := config.Load(cfg.ConfigDir)
	if err != nil {
		return err
	}

	var r *ratingLookup
	if hasPD {
		pd := cmd.Float(flagPD)
		r = &ratingLookup{PD: pd, Rating: b.Scale.Rating(pd)}
		if band, ok := b.Scale.Band(r.Rating); ok {
			r.setBand(band)
		}
	} else {
		label := cmd.String(flagLabel)
		r = &ratingLookup{PD: b.Scale.PD(label), Rating: label}
		if band, ok := b.Scale.Band(label); ok {
			r.Rating = band.Label
			r.setBand(band)
		} else {
			slog.Warn("label not on the scale", "label", label, "pd", r.PD)
		}
	}

	return encode(cfg, r)
}

func (r *ratingLookup) setBand(b rating.Band) {
	low := b.Low
	r.Low = &low
	if b.Bounded() {
		high := b.High
		r.High = &high
	}
}
