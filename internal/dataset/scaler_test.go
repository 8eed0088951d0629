package dataset

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinMaxScaler(t *testing.T) {
	train := mat.NewDense(3, 2, []float64{
		0, 10,
		5, 20,
		10, 30,
	})
	s := NewMinMaxScaler()
	s.Fit(train)
	out := s.Transform(train)

	assert.Equal(t, 0.0, out.At(0, 0))
	assert.Equal(t, 0.5, out.At(1, 0))
	assert.Equal(t, 1.0, out.At(2, 0))
	assert.Equal(t, 0.0, out.At(0, 1))
	assert.Equal(t, 1.0, out.At(2, 1))
}

func TestMinMaxScalerAppliesTrainStatistics(t *testing.T) {
	train := mat.NewDense(2, 1, []float64{0, 10})
	held := mat.NewDense(2, 1, []float64{5, 20})

	s := NewMinMaxScaler()
	s.Fit(train)
	out := s.Transform(held)

	// Held-out values are scaled with the training min/max, so values
	// outside the training range may fall outside [0, 1].
	assert.Equal(t, 0.5, out.At(0, 0))
	assert.Equal(t, 2.0, out.At(1, 0))
}

func TestStandardScaler(t *testing.T) {
	train := mat.NewDense(4, 1, []float64{2, 4, 6, 8})
	s := NewStandardScaler()
	s.Fit(train)
	out := s.Transform(train)

	// mean 5, population std sqrt(5)
	var sum float64
	for i := 0; i < 4; i++ {
		sum += out.At(i, 0)
	}
	assert.InDelta(t, 0.0, sum, 1e-12, "standardized column must have zero mean")

	var sq float64
	for i := 0; i < 4; i++ {
		sq += out.At(i, 0) * out.At(i, 0)
	}
	assert.InDelta(t, 1.0, sq/4.0, 1e-12, "standardized column must have unit variance")
}

func TestScalersHandleConstantColumns(t *testing.T) {
	x := mat.NewDense(3, 1, []float64{7, 7, 7})

	mm := NewMinMaxScaler()
	mm.Fit(x)
	assert.Equal(t, 0.0, mm.Transform(x).At(1, 0))

	st := NewStandardScaler()
	st.Fit(x)
	assert.Equal(t, 0.0, st.Transform(x).At(1, 0))
}

func TestTransformDoesNotMutateInput(t *testing.T) {
	x := mat.NewDense(2, 1, []float64{1, 3})
	s := NewMinMaxScaler()
	s.Fit(x)
	_ = s.Transform(x)
	assert.Equal(t, 1.0, x.At(0, 0))
	assert.Equal(t, 3.0, x.At(1, 0))
}

func TestScalerByName(t *testing.T) {
	s, err := ScalerByName("minmax")
	require.NoError(t, err)
	assert.IsType(t, &MinMaxScaler{}, s)

	s, err = ScalerByName("standard")
	require.NoError(t, err)
	assert.IsType(t, &StandardScaler{}, s)

	s, err = ScalerByName("none")
	require.NoError(t, err)
	assert.Nil(t, s)

	_, err = ScalerByName("robust")
	require.Error(t, err)
}
