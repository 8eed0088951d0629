package nn

import (
	"github.com/dermnet-ml/dermnet/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Parameters pair a value tensor with a gradient buffer of the same
// shape. Backward passes accumulate into the gradient buffer; optimizers
// read it during Step and clear it with ZeroGrad.
type Parameter struct {
	name   string
	tensor *tensor.RawTensor
	grad   *tensor.RawTensor
}

// NewParameter creates a new trainable parameter.
//
// The value tensor should be initialized before the Parameter is created.
// The gradient buffer is allocated on first use.
func NewParameter(name string, t *tensor.RawTensor) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name (e.g., "weight", "bias").
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter value tensor.
func (p *Parameter) Tensor() *tensor.RawTensor {
	return p.tensor
}

// Grad returns the gradient buffer, allocating a zero-filled buffer on
// first use.
func (p *Parameter) Grad() *tensor.RawTensor {
	if p.grad == nil {
		g, err := tensor.NewRaw(p.tensor.Shape())
		if err != nil {
			// The value tensor already validated this shape.
			panic(err)
		}
		p.grad = g
	}
	return p.grad
}

// ZeroGrad clears the gradient buffer.
//
// Call before each backward pass to avoid accumulating gradients from
// previous iterations.
func (p *Parameter) ZeroGrad() {
	if p.grad != nil {
		p.grad.Zero()
	}
}
