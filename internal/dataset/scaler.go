package dataset

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Scaler is a column-wise feature transform with separate fit and apply
// phases, so it can be fit on a training fold only and then applied to
// both fold halves. Fitting a scaler on the full dataset before splitting
// leaks held-out statistics into training and must not be done.
type Scaler interface {
	// Fit computes the column statistics from x.
	Fit(x *mat.Dense)

	// Transform returns a scaled copy of x using the fitted statistics.
	// Panics if called before Fit.
	Transform(x *mat.Dense) *mat.Dense
}

// MinMaxScaler rescales each column to [0, 1] using the fitted minimum
// and maximum. Constant columns map to 0.
type MinMaxScaler struct {
	min    []float64
	max    []float64
	fitted bool
}

// NewMinMaxScaler creates an unfitted MinMaxScaler.
func NewMinMaxScaler() *MinMaxScaler {
	return &MinMaxScaler{}
}

// Fit records the per-column minimum and maximum of x.
func (s *MinMaxScaler) Fit(x *mat.Dense) {
	rows, cols := x.Dims()
	s.min = make([]float64, cols)
	s.max = make([]float64, cols)
	for j := 0; j < cols; j++ {
		s.min[j] = math.Inf(1)
		s.max[j] = math.Inf(-1)
	}
	for i := 0; i < rows; i++ {
		row := x.RawRowView(i)
		for j, v := range row {
			s.min[j] = math.Min(s.min[j], v)
			s.max[j] = math.Max(s.max[j], v)
		}
	}
	s.fitted = true
}

// Transform rescales x column-wise to [0, 1].
func (s *MinMaxScaler) Transform(x *mat.Dense) *mat.Dense {
	if !s.fitted {
		panic("MinMaxScaler.Transform: Transform called before Fit")
	}
	rows, cols := x.Dims()
	if cols != len(s.min) {
		panic(fmt.Sprintf("MinMaxScaler.Transform: expected %d columns, got %d", len(s.min), cols))
	}
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		src := x.RawRowView(i)
		dst := out.RawRowView(i)
		for j, v := range src {
			span := s.max[j] - s.min[j]
			if span == 0 {
				dst[j] = 0
				continue
			}
			dst[j] = (v - s.min[j]) / span
		}
	}
	return out
}

// StandardScaler standardizes each column to zero mean and unit
// variance. Constant columns map to 0.
type StandardScaler struct {
	mean   []float64
	std    []float64
	fitted bool
}

// NewStandardScaler creates an unfitted StandardScaler.
func NewStandardScaler() *StandardScaler {
	return &StandardScaler{}
}

// Fit records the per-column mean and standard deviation of x.
func (s *StandardScaler) Fit(x *mat.Dense) {
	rows, cols := x.Dims()
	s.mean = make([]float64, cols)
	s.std = make([]float64, cols)

	for i := 0; i < rows; i++ {
		row := x.RawRowView(i)
		for j, v := range row {
			s.mean[j] += v
		}
	}
	for j := range s.mean {
		s.mean[j] /= float64(rows)
	}
	for i := 0; i < rows; i++ {
		row := x.RawRowView(i)
		for j, v := range row {
			d := v - s.mean[j]
			s.std[j] += d * d
		}
	}
	for j := range s.std {
		s.std[j] = math.Sqrt(s.std[j] / float64(rows))
	}
	s.fitted = true
}

// Transform standardizes x column-wise.
func (s *StandardScaler) Transform(x *mat.Dense) *mat.Dense {
	if !s.fitted {
		panic("StandardScaler.Transform: Transform called before Fit")
	}
	rows, cols := x.Dims()
	if cols != len(s.mean) {
		panic(fmt.Sprintf("StandardScaler.Transform: expected %d columns, got %d", len(s.mean), cols))
	}
	out := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		src := x.RawRowView(i)
		dst := out.RawRowView(i)
		for j, v := range src {
			if s.std[j] == 0 {
				dst[j] = 0
				continue
			}
			dst[j] = (v - s.mean[j]) / s.std[j]
		}
	}
	return out
}

// ScalerByName constructs a scaler by configuration name.
//
// Known names: "minmax", "standard", and "" or "none" for no scaling
// (nil scaler).
func ScalerByName(name string) (Scaler, error) {
	switch name {
	case "", "none":
		return nil, nil
	case "minmax":
		return NewMinMaxScaler(), nil
	case "standard":
		return NewStandardScaler(), nil
	default:
		return nil, fmt.Errorf("unknown scaler %q (known: minmax, standard, none)", name)
	}
}
