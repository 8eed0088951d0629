package model

import (
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.WithDefaults()
	assert.Equal(t, 15, cfg.HiddenUnits)
	assert.Equal(t, "glorot_uniform", cfg.Init)
	assert.Equal(t, "adam", cfg.Optimizer)
	assert.Equal(t, 150, cfg.Epochs)
	assert.Equal(t, 5, cfg.BatchSize)
}

func TestConfigString(t *testing.T) {
	cfg := Config{Optimizer: "rmsprop", Init: "uniform", Epochs: 50, BatchSize: 10}
	assert.Equal(t, "{optimizer=rmsprop, init=uniform, epochs=50, batch=10}", cfg.String())
}

func TestBuildRejectsUnknownNames(t *testing.T) {
	_, err := Build(15, 3, Config{Optimizer: "sgd"})
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "optimizer", cfgErr.Field)

	_, err = Build(15, 3, Config{Init: "he_normal"})
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "initializer", cfgErr.Field)
}

func TestBuildRejectsBadDimensions(t *testing.T) {
	var cfgErr *ConfigError

	_, err := Build(0, 3, Config{})
	require.ErrorAs(t, err, &cfgErr)

	_, err = Build(15, 1, Config{})
	require.ErrorAs(t, err, &cfgErr)
}

func TestFitRequiresCompile(t *testing.T) {
	clf, err := Build(4, 2, Config{Epochs: 1})
	require.NoError(t, err)

	x := mat.NewDense(2, 4, nil)
	y := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	require.ErrorIs(t, clf.Fit(x, y), ErrNotCompiled)

	_, err = clf.Evaluate(x, y)
	require.ErrorIs(t, err, ErrNotCompiled)
}

func TestFitDimensionChecks(t *testing.T) {
	clf, err := Build(4, 2, Config{Epochs: 1})
	require.NoError(t, err)
	require.NoError(t, clf.Compile())

	x := mat.NewDense(2, 3, nil) // wrong feature width
	y := mat.NewDense(2, 2, nil)
	require.Error(t, clf.Fit(x, y))
}

func TestPredictBounded(t *testing.T) {
	clf, err := Build(15, 3, Config{Seed: 21})
	require.NoError(t, err)

	x := mat.NewDense(4, 15, nil)
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 4; i++ {
		for j := 0; j < 15; j++ {
			x.Set(i, j, rng.NormFloat64()*3)
		}
	}

	probs := clf.Predict(x)
	rows, cols := probs.Dims()
	require.Equal(t, 4, rows)
	require.Equal(t, 3, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := probs.At(i, j)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

// blobs generates an easily separable two-class dataset: class 0 around
// -1, class 1 around +1 in every feature.
func blobs(n, features int, seed int64) (*mat.Dense, *mat.Dense) {
	rng := rand.New(rand.NewSource(seed))
	x := mat.NewDense(n, features, nil)
	y := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		class := i % 2
		center := -1.0
		if class == 1 {
			center = 1.0
		}
		for j := 0; j < features; j++ {
			x.Set(i, j, center+rng.NormFloat64()*0.2)
		}
		y.Set(i, class, 1.0)
	}
	return x, y
}

func TestFitLearnsSeparableData(t *testing.T) {
	x, y := blobs(40, 6, 5)

	clf, err := Build(6, 2, Config{Epochs: 60, BatchSize: 8, Seed: 9})
	require.NoError(t, err)
	require.NoError(t, clf.Compile())
	require.NoError(t, clf.Fit(x, y))

	history := clf.History()
	require.Len(t, history, 60)
	assert.Less(t, history[len(history)-1], history[0], "training loss must decrease")

	acc, err := clf.Evaluate(x, y)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, acc, 0.95, "well-separated blobs should be learned")
}

func TestFitReproducibleUnderSeed(t *testing.T) {
	x, y := blobs(20, 4, 8)

	train := func() []int {
		clf, err := Build(4, 2, Config{Epochs: 10, BatchSize: 4, Seed: 33})
		require.NoError(t, err)
		require.NoError(t, clf.Compile())
		require.NoError(t, clf.Fit(x, y))
		return clf.PredictClasses(x)
	}

	assert.Equal(t, train(), train(), "same seed must reproduce the same model")
}

func TestStateDictRoundTrip(t *testing.T) {
	clf, err := Build(15, 3, Config{Seed: 4})
	require.NoError(t, err)

	clone, err := Build(15, 3, Config{Seed: 77})
	require.NoError(t, err)
	require.NoError(t, clone.LoadStateDict(clf.StateDict()))

	x := mat.NewDense(3, 15, nil)
	for j := 0; j < 15; j++ {
		x.Set(0, j, float64(j))
		x.Set(1, j, -float64(j))
		x.Set(2, j, 0.1*float64(j))
	}
	assert.True(t, mat.Equal(clf.Predict(x), clone.Predict(x)))
}
