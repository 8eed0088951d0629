package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/dermnet-ml/dermnet/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input with shape [batch_size, in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the bias vector with shape [out_features]
//   - y is the output with shape [batch_size, out_features]
//
// Weights are filled by the provided initialization scheme; biases are
// initialized to zeros.
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features]

	lastInput *mat.Dense // cached by Forward for the backward pass
}

// NewLinear creates a new Linear layer.
//
// Parameters:
//   - inFeatures: number of input features
//   - outFeatures: number of output features
//   - init: weight initialization scheme
//   - rng: random source for the initializer
func NewLinear(inFeatures, outFeatures int, init InitFunc, rng *rand.Rand) *Linear {
	weightTensor, err := tensor.NewRaw(tensor.Shape{outFeatures, inFeatures})
	if err != nil {
		panic(fmt.Sprintf("Linear: invalid dimensions %dx%d: %v", outFeatures, inFeatures, err))
	}
	init(weightTensor, inFeatures, outFeatures, rng)

	biasTensor, err := tensor.NewRaw(tensor.Shape{outFeatures})
	if err != nil {
		panic(err)
	}

	return &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", weightTensor),
		bias:        NewParameter("bias", biasTensor),
	}
}

// Forward computes y = x @ W.T + b.
//
// Input shape: [batch_size, in_features]
// Output shape: [batch_size, out_features]
func (l *Linear) Forward(input *mat.Dense) *mat.Dense {
	rows, cols := input.Dims()
	if cols != l.inFeatures {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inFeatures, cols))
	}
	l.lastInput = input

	w := l.weight.Tensor().Matrix() // [out, in]

	var out mat.Dense
	out.Mul(input, w.T()) // [batch, out]

	bias := l.bias.Tensor().Data()
	for i := 0; i < rows; i++ {
		row := out.RawRowView(i)
		for j := range row {
			row[j] += bias[j]
		}
	}
	return &out
}

// Backward propagates grad (dL/dy, shape [batch_size, out_features])
// through the layer.
//
// Accumulates:
//
//	dL/dW += grad.T @ x     [out_features, in_features]
//	dL/db += column sums of grad
//
// Returns dL/dx = grad @ W with shape [batch_size, in_features].
func (l *Linear) Backward(grad *mat.Dense) *mat.Dense {
	if l.lastInput == nil {
		panic("Linear.Backward: Backward called before Forward")
	}
	rows, cols := grad.Dims()
	if cols != l.outFeatures {
		panic(fmt.Sprintf("Linear.Backward: expected gradient with %d features, got %d", l.outFeatures, cols))
	}

	// dW += grad.T @ x
	gradW := l.weight.Grad().Matrix()
	var dw mat.Dense
	dw.Mul(grad.T(), l.lastInput)
	gradW.Add(gradW, &dw)

	// db += column sums of grad
	gradB := l.bias.Grad().Data()
	for i := 0; i < rows; i++ {
		row := grad.RawRowView(i)
		for j := range row {
			gradB[j] += row[j]
		}
	}

	// dx = grad @ W
	var dx mat.Dense
	dx.Mul(grad, l.weight.Tensor().Matrix())
	return &dx
}

// Parameters returns [weight, bias].
func (l *Linear) Parameters() []*Parameter {
	return []*Parameter{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}

// StateDict returns a map of parameter names to raw tensors.
func (l *Linear) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"weight": l.weight.Tensor(),
		"bias":   l.bias.Tensor(),
	}
}

// LoadStateDict loads parameters from a state dictionary.
//
// The tensors are validated against the layer dimensions before any data
// is copied.
func (l *Linear) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	weightRaw, ok := stateDict["weight"]
	if !ok {
		return fmt.Errorf("missing weight in state dict")
	}
	expectedWeight := tensor.Shape{l.outFeatures, l.inFeatures}
	if !weightRaw.Shape().Equal(expectedWeight) {
		return fmt.Errorf("weight shape mismatch: expected %v, got %v",
			expectedWeight, weightRaw.Shape())
	}

	biasRaw, ok := stateDict["bias"]
	if !ok {
		return fmt.Errorf("missing bias in state dict")
	}
	expectedBias := tensor.Shape{l.outFeatures}
	if !biasRaw.Shape().Equal(expectedBias) {
		return fmt.Errorf("bias shape mismatch: expected %v, got %v",
			expectedBias, biasRaw.Shape())
	}

	if err := l.weight.Tensor().CopyFrom(weightRaw); err != nil {
		return err
	}
	return l.bias.Tensor().CopyFrom(biasRaw)
}
