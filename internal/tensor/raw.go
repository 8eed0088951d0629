// Package tensor provides the dense float64 tensor type shared by the
// network layers, the optimizers and the weights artifact.
package tensor

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// RawTensor is a dense float64 tensor in row-major order.
//
// It is the unit of exchange across the framework: layer parameters,
// optimizer moment buffers and the entries of a state dictionary are all
// RawTensors. Two-dimensional tensors can be viewed as a gonum matrix
// without copying via Matrix().
type RawTensor struct {
	shape Shape
	data  []float64
}

// NewRaw creates a zero-filled RawTensor with the given shape.
func NewRaw(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		shape: shape.Clone(),
		data:  make([]float64, shape.NumElements()),
	}, nil
}

// FromSlice creates a RawTensor backed by a copy of data.
//
// Returns an error if the slice length does not match the shape.
func FromSlice(data []float64, shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), shape, shape.NumElements())
	}
	d := make([]float64, len(data))
	copy(d, data)
	return &RawTensor{shape: shape.Clone(), data: d}, nil
}

// Shape returns the tensor dimensions.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// Data returns the backing slice. Mutations are visible to every view of
// the tensor.
func (r *RawTensor) Data() []float64 {
	return r.data
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	d := make([]float64, len(r.data))
	copy(d, r.data)
	return &RawTensor{shape: r.shape.Clone(), data: d}
}

// Zero sets every element to zero.
func (r *RawTensor) Zero() {
	for i := range r.data {
		r.data[i] = 0
	}
}

// CopyFrom copies the contents of other into r.
//
// Returns an error if the shapes differ.
func (r *RawTensor) CopyFrom(other *RawTensor) error {
	if !r.shape.Equal(other.shape) {
		return fmt.Errorf("shape mismatch: %v vs %v", r.shape, other.shape)
	}
	copy(r.data, other.data)
	return nil
}

// Matrix returns a gonum view of a 2-D tensor. The view shares the
// backing slice, so writes through the matrix mutate the tensor.
//
// Panics if the tensor is not 2-D; callers hold the shape invariant.
func (r *RawTensor) Matrix() *mat.Dense {
	if len(r.shape) != 2 {
		panic(fmt.Sprintf("tensor.Matrix: need a 2-D tensor, got shape %v", r.shape))
	}
	return mat.NewDense(r.shape[0], r.shape[1], r.data)
}

// Vector returns a gonum view of a 1-D tensor, sharing the backing slice.
//
// Panics if the tensor is not 1-D.
func (r *RawTensor) Vector() *mat.VecDense {
	if len(r.shape) != 1 {
		panic(fmt.Sprintf("tensor.Vector: need a 1-D tensor, got shape %v", r.shape))
	}
	return mat.NewVecDense(r.shape[0], r.data)
}
