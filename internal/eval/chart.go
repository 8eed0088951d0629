package eval

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// WriteAccuracyChart renders the per-candidate mean accuracies of a grid
// search as a bar chart and saves it to path. The image format follows
// the file extension (.png, .svg, .pdf).
func WriteAccuracyChart(path string, res *SearchResult) error {
	p := plot.New()
	p.Title.Text = "Grid search mean accuracy"
	p.Y.Label.Text = "mean accuracy"
	p.Y.Min = 0
	p.Y.Max = 1

	values := make(plotter.Values, len(res.Candidates))
	labels := make([]string, len(res.Candidates))
	for i, c := range res.Candidates {
		values[i] = c.Result.Mean
		labels[i] = fmt.Sprintf("%s/%s\n%d/%d",
			c.Config.Optimizer, c.Config.Init, c.Config.Epochs, c.Config.BatchSize)
	}

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}
	p.Add(bars)
	p.NominalX(labels...)

	width := vg.Points(float64(40*len(labels) + 80))
	if err := p.Save(width, vg.Points(300), path); err != nil {
		return fmt.Errorf("failed to save chart: %w", err)
	}
	return nil
}
