package nn

import (
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dermnet-ml/dermnet/internal/tensor"
)

func TestLinearForwardShape(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	layer := NewLinear(15, 8, GlorotUniform, rng)

	input := mat.NewDense(4, 15, nil)
	out := layer.Forward(input)

	rows, cols := out.Dims()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 8, cols)
}

func TestLinearForwardKnownValues(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	layer := NewLinear(2, 2, GlorotUniform, rng)

	// Overwrite parameters with known values.
	// W = [[1 2], [3 4]], b = [0.5, -0.5]
	copy(layer.Weight().Tensor().Data(), []float64{1, 2, 3, 4})
	copy(layer.Bias().Tensor().Data(), []float64{0.5, -0.5})

	input := mat.NewDense(1, 2, []float64{1, 1})
	out := layer.Forward(input)

	// y = x @ W.T + b = [3, 7] + [0.5, -0.5]
	assert.InDelta(t, 3.5, out.At(0, 0), 1e-12)
	assert.InDelta(t, 6.5, out.At(0, 1), 1e-12)
}

func TestReLUForward(t *testing.T) {
	relu := NewReLU()
	input := mat.NewDense(1, 4, []float64{-2, -0.5, 0, 3})
	out := relu.Forward(input)

	want := []float64{0, 0, 0, 3}
	for j, w := range want {
		assert.Equal(t, w, out.At(0, j), "index %d", j)
	}
}

func TestSigmoidForwardBounds(t *testing.T) {
	s := NewSigmoid()
	input := mat.NewDense(1, 3, []float64{-50, 0, 50})
	out := s.Forward(input)

	assert.Less(t, out.At(0, 0), 1e-6)
	assert.InDelta(t, 0.5, out.At(0, 1), 1e-12)
	assert.Greater(t, out.At(0, 2), 1.0-1e-6)
	for j := 0; j < 3; j++ {
		v := out.At(0, j)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestInitializerByName(t *testing.T) {
	for _, name := range []string{"glorot_uniform", "normal", "uniform"} {
		_, ok := InitializerByName(name)
		assert.True(t, ok, "initializer %q should be known", name)
	}
	_, ok := InitializerByName("he_normal")
	assert.False(t, ok)
}

func TestGlorotUniformBound(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	raw, err := tensor.NewRaw(tensor.Shape{10, 20})
	require.NoError(t, err)

	GlorotUniform(raw, 20, 10, rng)
	bound := math.Sqrt(6.0 / 30.0)
	for i, v := range raw.Data() {
		if v < -bound || v > bound {
			t.Fatalf("element %d out of Glorot bound: %f (bound %f)", i, v, bound)
		}
	}
}

func TestSequentialStateDictRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	net := NewSequential(
		NewLinear(15, 15, GlorotUniform, rng),
		NewReLU(),
		NewLinear(15, 3, GlorotUniform, rng),
		NewSigmoid(),
	)

	sd := net.StateDict()
	require.Len(t, sd, 4)
	require.Contains(t, sd, "0.weight")
	require.Contains(t, sd, "0.bias")
	require.Contains(t, sd, "2.weight")
	require.Contains(t, sd, "2.bias")

	// A freshly built network loaded from sd must predict identically.
	rng2 := rand.New(rand.NewSource(99))
	net2 := NewSequential(
		NewLinear(15, 15, GlorotUniform, rng2),
		NewReLU(),
		NewLinear(15, 3, GlorotUniform, rng2),
		NewSigmoid(),
	)
	require.NoError(t, net2.LoadStateDict(sd))

	input := mat.NewDense(2, 15, nil)
	for j := 0; j < 15; j++ {
		input.Set(0, j, float64(j)*0.1)
		input.Set(1, j, -float64(j)*0.05)
	}
	out1 := net.Forward(input)
	out2 := net2.Forward(input)
	assert.True(t, mat.Equal(out1, out2), "loaded network must predict identically")
}

func TestSequentialLoadStateDictShapeMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	net := NewSequential(NewLinear(4, 2, GlorotUniform, rng))

	bad, err := tensor.NewRaw(tensor.Shape{3, 4})
	require.NoError(t, err)
	biasOK, err := tensor.NewRaw(tensor.Shape{2})
	require.NoError(t, err)

	err = net.LoadStateDict(map[string]*tensor.RawTensor{
		"0.weight": bad,
		"0.bias":   biasOK,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "shape mismatch")
}

func TestCrossEntropyPerfectPrediction(t *testing.T) {
	loss := NewCrossEntropyLoss()
	probs := mat.NewDense(2, 3, []float64{1, epsProb, epsProb, epsProb, 1, epsProb})
	targets := mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 0})

	l := loss.Forward(probs, targets)
	assert.InDelta(t, 0.0, l, 1e-9)
}

// TestNetworkGradients checks the analytic gradients of the full
// Linear-ReLU-Linear-Sigmoid chain against central finite differences.
func TestNetworkGradients(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	net := NewSequential(
		NewLinear(4, 3, GlorotUniform, rng),
		NewReLU(),
		NewLinear(3, 2, GlorotUniform, rng),
		NewSigmoid(),
	)
	loss := NewCrossEntropyLoss()

	input := mat.NewDense(3, 4, []float64{
		0.2, -0.7, 1.3, 0.4,
		-0.5, 0.9, 0.1, -1.2,
		0.8, 0.3, -0.4, 0.6,
	})
	targets := mat.NewDense(3, 2, []float64{
		1, 0,
		0, 1,
		1, 0,
	})

	forward := func() float64 {
		return loss.Forward(net.Forward(input), targets)
	}

	// Analytic gradients.
	for _, p := range net.Parameters() {
		p.ZeroGrad()
	}
	forward()
	net.Backward(loss.Backward())

	const h = 1e-6
	for _, p := range net.Parameters() {
		data := p.Tensor().Data()
		grad := p.Grad().Data()
		for i := range data {
			orig := data[i]

			data[i] = orig + h
			lPlus := forward()
			data[i] = orig - h
			lMinus := forward()
			data[i] = orig

			numeric := (lPlus - lMinus) / (2 * h)
			if math.Abs(numeric-grad[i]) > 1e-4 {
				t.Errorf("parameter %s[%d]: analytic %g vs numeric %g", p.Name(), i, grad[i], numeric)
			}
		}
	}
}
