package eval

import (
	"fmt"
	"io"
)

// FormatMetric renders a single-run metric line, e.g. "accuracy: 87.50%".
func FormatMetric(name string, value float64) string {
	return fmt.Sprintf("%s: %.2f%%", name, value*100)
}

// WriteCVReport writes the per-fold and aggregate accuracies of a
// cross-validation run.
func WriteCVReport(w io.Writer, res *Result) {
	for i, acc := range res.FoldAccuracies {
		fmt.Fprintf(w, "fold %d %s\n", i+1, FormatMetric("accuracy", acc))
	}
	fmt.Fprintf(w, "%.4f (%.4f) mean accuracy over %d folds\n",
		res.Mean, res.StdDev, len(res.FoldAccuracies))
}

// WriteSearchReport writes one line per grid candidate in enumeration
// order, followed by the best-configuration summary:
//
//	0.8750 (0.0210) with: {optimizer=adam, init=glorot_uniform, epochs=150, batch=5}
//	...
//	best: 0.8750 with: {optimizer=adam, init=glorot_uniform, epochs=150, batch=5}
func WriteSearchReport(w io.Writer, res *SearchResult) {
	for _, c := range res.Candidates {
		fmt.Fprintf(w, "%.4f (%.4f) with: %s\n", c.Result.Mean, c.Result.StdDev, c.Config)
	}
	best := res.Best()
	fmt.Fprintf(w, "best: %.4f with: %s\n", best.Result.Mean, best.Config)
}
