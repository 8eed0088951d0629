package tensor

import "fmt"

// Shape holds the dimensions of a tensor in row-major order.
//
// An empty shape denotes a scalar. The classifier only ever builds 1-D
// (bias) and 2-D (weight) shapes, but the helpers are general.
type Shape []int

// NumElements returns the product of the dimensions; 1 for a scalar.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate rejects shapes with a non-positive dimension.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal reports whether s and other have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String renders the shape in [d0 d1 ...] form, matching the format
// used in shape-mismatch errors.
func (s Shape) String() string {
	return fmt.Sprintf("%v", []int(s))
}
