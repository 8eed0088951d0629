package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function f(x) = max(0, x).
type ReLU struct {
	lastInput *mat.Dense
}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies f(x) = max(0, x).
func (r *ReLU) Forward(input *mat.Dense) *mat.Dense {
	r.lastInput = input
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return math.Max(0, v)
	}, input)
	return &out
}

// Backward passes the gradient through where the input was positive and
// zeroes it elsewhere.
func (r *ReLU) Backward(grad *mat.Dense) *mat.Dense {
	if r.lastInput == nil {
		panic("ReLU.Backward: Backward called before Forward")
	}
	rows, cols := grad.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		in := r.lastInput.RawRowView(i)
		g := grad.RawRowView(i)
		o := out.RawRowView(i)
		for j := range o {
			if in[j] > 0 {
				o[j] = g[j]
			}
		}
	}
	return out
}

// Parameters returns an empty slice (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function σ(x) = 1 / (1 + exp(-x)), bounding
// every output independently to (0, 1). Used as the output activation of
// the classifier: the class scores are bounded but not normalized to sum
// to one.
type Sigmoid struct {
	lastOutput *mat.Dense
}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies σ(x) = 1 / (1 + exp(-x)).
func (s *Sigmoid) Forward(input *mat.Dense) *mat.Dense {
	var out mat.Dense
	out.Apply(func(_, _ int, v float64) float64 {
		return 1.0 / (1.0 + math.Exp(-v))
	}, input)
	s.lastOutput = &out
	return &out
}

// Backward applies the sigmoid derivative: grad * σ(x) * (1 - σ(x)).
func (s *Sigmoid) Backward(grad *mat.Dense) *mat.Dense {
	if s.lastOutput == nil {
		panic("Sigmoid.Backward: Backward called before Forward")
	}
	rows, cols := grad.Dims()
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		y := s.lastOutput.RawRowView(i)
		g := grad.RawRowView(i)
		o := out.RawRowView(i)
		for j := range o {
			o[j] = g[j] * y[j] * (1.0 - y[j])
		}
	}
	return out
}

// Parameters returns an empty slice (Sigmoid has no trainable parameters).
func (s *Sigmoid) Parameters() []*Parameter {
	return nil
}
