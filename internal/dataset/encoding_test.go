package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitEncodingSortedOrder(t *testing.T) {
	enc := FitEncoding([]string{"melanoma", "benign", "dysplastic", "benign"})

	assert.Equal(t, 3, enc.NumClasses())
	assert.Equal(t, []string{"benign", "dysplastic", "melanoma"}, enc.Classes())

	code, ok := enc.Code("dysplastic")
	require.True(t, ok)
	assert.Equal(t, 1, code)
}

func TestEncodingRoundTrip(t *testing.T) {
	labels := []string{"C", "A", "B", "A", "C", "C"}
	enc := FitEncoding(labels)

	codes, err := enc.Encode(labels)
	require.NoError(t, err)
	assert.Equal(t, labels, enc.Inverse(codes), "decode(encode(L)) must equal L")
}

func TestTransformOneHotRows(t *testing.T) {
	labels := []string{"A", "B", "A", "B"}
	enc := FitEncoding(labels)
	oneHot, err := enc.Transform(labels)
	require.NoError(t, err)

	rows, cols := oneHot.Dims()
	require.Equal(t, 4, rows)
	require.Equal(t, 2, cols)

	// "A" -> 0, "B" -> 1 (sorted order), so rows are [1,0] / [0,1].
	want := [][]float64{{1, 0}, {0, 1}, {1, 0}, {0, 1}}
	for i := range want {
		var sum float64
		for j := range want[i] {
			assert.Equal(t, want[i][j], oneHot.At(i, j), "row %d col %d", i, j)
			sum += oneHot.At(i, j)
		}
		assert.Equal(t, 1.0, sum, "row %d must have exactly one hot entry", i)
	}
}

func TestTransformUnknownLabel(t *testing.T) {
	enc := FitEncoding([]string{"A", "B"})
	_, err := enc.Transform([]string{"A", "Z"})

	var unknownErr *UnknownLabelError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "Z", unknownErr.Label)
}

func TestEncodingDeterministic(t *testing.T) {
	a := FitEncoding([]string{"x", "y", "z"})
	b := FitEncoding([]string{"z", "x", "y", "x"})
	assert.Equal(t, a.Classes(), b.Classes(), "same label set must yield the same encoding")
}

func TestLabelOutOfRange(t *testing.T) {
	enc := FitEncoding([]string{"A"})
	assert.Equal(t, "", enc.Label(-1))
	assert.Equal(t, "", enc.Label(1))
}
