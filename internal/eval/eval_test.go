package eval

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermnet-ml/dermnet/internal/dataset"
	"github.com/dermnet-ml/dermnet/internal/model"
)

// testTable builds a small separable dataset: each class is a tight blob
// centered at its class index.
func testTable(samplesPerClass int, classes []string, features int, seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))
	n := samplesPerClass * len(classes)
	x := mat.NewDense(n, features, nil)
	labels := make([]string, n)
	for i := 0; i < n; i++ {
		class := i % len(classes)
		labels[i] = classes[class]
		for j := 0; j < features; j++ {
			x.Set(i, j, float64(class)+rng.NormFloat64()*0.1)
		}
	}
	return &dataset.Table{X: x, Labels: labels}
}

// fastConfig keeps test fits cheap.
func fastConfig() model.Config {
	return model.Config{HiddenUnits: 4, Epochs: 3, BatchSize: 4, Seed: 1}
}

func TestCrossValidateFoldCount(t *testing.T) {
	table := testTable(9, []string{"A", "B"}, 4, 2)
	enc := dataset.FitEncoding(table.Labels)

	res, err := CrossValidate(table, enc, fastConfig(), Options{Folds: 3, Seed: 5})
	require.NoError(t, err)

	require.Len(t, res.FoldAccuracies, 3, "k folds must produce k accuracies")
	for i, acc := range res.FoldAccuracies {
		assert.GreaterOrEqual(t, acc, 0.0, "fold %d", i)
		assert.LessOrEqual(t, acc, 1.0, "fold %d", i)
	}
	assert.GreaterOrEqual(t, res.Mean, 0.0)
	assert.LessOrEqual(t, res.Mean, 1.0)
}

func TestCrossValidateSingletonClasses(t *testing.T) {
	// One sample per class with k equal to the sample count: every
	// fold holds exactly one sample and none may come up empty.
	x := mat.NewDense(3, 4, []float64{
		0, 0, 0, 0,
		1, 1, 1, 1,
		2, 2, 2, 2,
	})
	table := &dataset.Table{X: x, Labels: []string{"A", "B", "C"}}
	enc := dataset.FitEncoding(table.Labels)

	for seed := int64(0); seed < 10; seed++ {
		res, err := CrossValidate(table, enc, fastConfig(), Options{Folds: 3, Seed: seed})
		require.NoError(t, err, "seed %d", seed)
		require.Len(t, res.FoldAccuracies, 3)
	}
}

func TestCrossValidateWithScaler(t *testing.T) {
	table := testTable(9, []string{"A", "B"}, 4, 3)
	enc := dataset.FitEncoding(table.Labels)

	for _, scaler := range []string{"minmax", "standard"} {
		_, err := CrossValidate(table, enc, fastConfig(), Options{Folds: 3, Seed: 5, Scaler: scaler})
		require.NoError(t, err, "scaler %s", scaler)
	}
}

func TestCrossValidateUnknownScaler(t *testing.T) {
	table := testTable(6, []string{"A", "B"}, 4, 3)
	enc := dataset.FitEncoding(table.Labels)

	_, err := CrossValidate(table, enc, fastConfig(), Options{Folds: 2, Scaler: "robust"})
	require.Error(t, err)
}

func TestCrossValidateReproducible(t *testing.T) {
	table := testTable(9, []string{"A", "B"}, 4, 9)
	enc := dataset.FitEncoding(table.Labels)

	a, err := CrossValidate(table, enc, fastConfig(), Options{Folds: 3, Seed: 11})
	require.NoError(t, err)
	b, err := CrossValidate(table, enc, fastConfig(), Options{Folds: 3, Seed: 11})
	require.NoError(t, err)
	assert.Equal(t, a.FoldAccuracies, b.FoldAccuracies)
}

func TestGridConfigsOrderAndSize(t *testing.T) {
	grid := Grid{
		Optimizers: []string{"adam", "rmsprop"},
		Inits:      []string{"glorot_uniform"},
		Epochs:     []int{50, 100},
		BatchSizes: []int{5},
	}
	assert.Equal(t, 4, grid.Size())

	configs := grid.Configs(model.Config{HiddenUnits: 4})
	require.Len(t, configs, 4)

	// Optimizer is the outermost axis, epochs vary before it does.
	assert.Equal(t, "adam", configs[0].Optimizer)
	assert.Equal(t, 50, configs[0].Epochs)
	assert.Equal(t, "adam", configs[1].Optimizer)
	assert.Equal(t, 100, configs[1].Epochs)
	assert.Equal(t, "rmsprop", configs[2].Optimizer)

	// Base fields are carried into every cell.
	for _, cfg := range configs {
		assert.Equal(t, 4, cfg.HiddenUnits)
	}
}

func TestGridSearchRejectsEmptyAxis(t *testing.T) {
	table := testTable(6, []string{"A", "B"}, 4, 1)
	enc := dataset.FitEncoding(table.Labels)

	grid := Grid{Optimizers: []string{"adam"}, Inits: nil, Epochs: []int{1}, BatchSizes: []int{4}}
	_, err := GridSearch(table, enc, model.Config{}, grid, Options{Folds: 2})

	var cfgErr *model.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestGridSearchEvaluatesEveryCell(t *testing.T) {
	table := testTable(9, []string{"A", "B"}, 4, 6)
	enc := dataset.FitEncoding(table.Labels)

	grid := Grid{
		Optimizers: []string{"adam", "rmsprop"},
		Inits:      []string{"uniform"},
		Epochs:     []int{2},
		BatchSizes: []int{4, 6},
	}
	res, err := GridSearch(table, enc, model.Config{HiddenUnits: 4, Seed: 3}, grid, Options{Folds: 3, Seed: 8})
	require.NoError(t, err)

	assert.Len(t, res.Candidates, grid.Size(), "grid of size G must evaluate exactly G configurations")
	assert.NotEmpty(t, res.RunID)
	assert.GreaterOrEqual(t, res.BestIndex, 0)
	assert.Less(t, res.BestIndex, grid.Size())

	best := res.Best()
	for _, c := range res.Candidates {
		assert.LessOrEqual(t, c.Result.Mean, best.Result.Mean)
	}
}

func TestGridSearchAbortsOnBadCandidate(t *testing.T) {
	table := testTable(6, []string{"A", "B"}, 4, 1)
	enc := dataset.FitEncoding(table.Labels)

	grid := Grid{
		Optimizers: []string{"adam", "sgd"}, // second cell is invalid
		Inits:      []string{"uniform"},
		Epochs:     []int{1},
		BatchSizes: []int{4},
	}
	_, err := GridSearch(table, enc, model.Config{HiddenUnits: 4}, grid, Options{Folds: 2})
	require.Error(t, err, "a failed candidate must abort the whole search")
}

func TestBestIndexTieBreak(t *testing.T) {
	candidates := []Candidate{
		{Result: &Result{Mean: 0.80}},
		{Result: &Result{Mean: 0.90}},
		{Result: &Result{Mean: 0.90}}, // tie with index 1
		{Result: &Result{Mean: 0.85}},
	}
	assert.Equal(t, 1, bestIndex(candidates), "ties must keep the first-encountered candidate")
}

func TestFormatMetric(t *testing.T) {
	assert.Equal(t, "accuracy: 87.50%", FormatMetric("accuracy", 0.875))
}

func TestWriteSearchReport(t *testing.T) {
	res := &SearchResult{
		RunID: "test",
		Candidates: []Candidate{
			{Config: model.Config{Optimizer: "adam", Init: "uniform", Epochs: 50, BatchSize: 5},
				Result: &Result{Mean: 0.875, StdDev: 0.021}},
		},
		BestIndex: 0,
	}

	var buf bytes.Buffer
	WriteSearchReport(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "0.8750 (0.0210) with: {optimizer=adam, init=uniform, epochs=50, batch=5}")
	assert.Contains(t, out, "best: 0.8750 with:")
}

func TestWriteCVReport(t *testing.T) {
	res := &Result{FoldAccuracies: []float64{0.8, 0.9}, Mean: 0.85, StdDev: 0.05}

	var buf bytes.Buffer
	WriteCVReport(&buf, res)
	out := buf.String()

	assert.Contains(t, out, "fold 1 accuracy: 80.00%")
	assert.Contains(t, out, "fold 2 accuracy: 90.00%")
	assert.True(t, strings.Contains(out, "0.8500 (0.0500)"))
}

func TestWriteAccuracyChart(t *testing.T) {
	res := &SearchResult{
		Candidates: []Candidate{
			{Config: model.Config{Optimizer: "adam", Init: "uniform", Epochs: 50, BatchSize: 5},
				Result: &Result{Mean: 0.8}},
			{Config: model.Config{Optimizer: "rmsprop", Init: "normal", Epochs: 100, BatchSize: 10},
				Result: &Result{Mean: 0.9}},
		},
		BestIndex: 1,
	}

	path := filepath.Join(t.TempDir(), "grid.png")
	require.NoError(t, WriteAccuracyChart(path, res))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
