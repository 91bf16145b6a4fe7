package report

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

const pageTitle = "SME Credit Scores"

// Render writes an HTML page with the rating distribution and the PD
// histogram of the summary.
func Render(w io.Writer, s *Summary) error {
	if s == nil {
		return errors.New("summary required")
	}

	page := components.NewPage()
	page.PageTitle = pageTitle
	page.AddCharts(ratingChart(s))
	if s.PD != nil && len(s.PD.Bins) > 0 {
		page.AddCharts(pdChart(s))
	}

	if err := page.Render(w); err != nil {
		return fmt.Errorf("error rendering report: %w", err)
	}
	return nil
}

// RenderFile writes the report to a new file at path.
func RenderFile(path string, s *Summary) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	if err := Render(f, s); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("error closing %s: %w", path, err)
	}
	return nil
}

func ratingChart(s *Summary) *charts.Bar {
	x := make([]string, 0, len(s.Ratings))
	y := make([]opts.BarData, 0, len(s.Ratings))
	for _, r := range s.Ratings {
		x = append(x, r.Rating)
		y = append(y, opts.BarData{Value: r.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: pageTitle, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Rating distribution",
			Subtitle: fmt.Sprintf("run=%s scored=%d rejected=%d", s.RunID, s.Scored, s.Rejected),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Rating"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Firms"}),
	)
	bar.SetXAxis(x).
		AddSeries("firms", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func pdChart(s *Summary) *charts.Bar {
	x := make([]string, 0, len(s.PD.Bins))
	y := make([]opts.BarData, 0, len(s.PD.Bins))
	for _, b := range s.PD.Bins {
		x = append(x, fmt.Sprintf("%.4f", b.Low))
		y = append(y, opts.BarData{Value: b.Count})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: pageTitle, Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Final PD",
			Subtitle: fmt.Sprintf("mean=%.4f median=%.4f p90=%.4f", s.PD.Mean, s.PD.Median, s.PD.P90),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "PD from"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Firms"}),
	)
	bar.SetXAxis(x).
		AddSeries("firms", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}
