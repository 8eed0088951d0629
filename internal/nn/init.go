package nn

import (
	"math"
	"math/rand"
	"sort"

	"github.com/dermnet-ml/dermnet/internal/tensor"
)

// InitFunc fills a weight tensor in place.
//
// The random source is passed explicitly so that weight initialization is
// reproducible under a caller-controlled seed; no package-global random
// state is consulted.
type InitFunc func(t *tensor.RawTensor, fanIn, fanOut int, rng *rand.Rand)

// GlorotUniform initializes weights from the Xavier/Glorot uniform
// distribution: U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))).
//
// This initialization helps maintain the variance of activations across
// layers.
func GlorotUniform(t *tensor.RawTensor, fanIn, fanOut int, rng *rand.Rand) {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	data := t.Data()
	for i := range data {
		data[i] = (rng.Float64()*2.0 - 1.0) * bound
	}
}

// Normal initializes weights from N(0, 0.05).
func Normal(t *tensor.RawTensor, _, _ int, rng *rand.Rand) {
	data := t.Data()
	for i := range data {
		data[i] = rng.NormFloat64() * 0.05
	}
}

// Uniform initializes weights from U(-0.05, 0.05).
func Uniform(t *tensor.RawTensor, _, _ int, rng *rand.Rand) {
	data := t.Data()
	for i := range data {
		data[i] = rng.Float64()*0.1 - 0.05
	}
}

// initializers maps the scheme names accepted in configuration to their
// implementations.
var initializers = map[string]InitFunc{
	"glorot_uniform": GlorotUniform,
	"normal":         Normal,
	"uniform":        Uniform,
}

// InitializerByName looks up a weight initialization scheme by name.
//
// Known names: "glorot_uniform", "normal", "uniform".
func InitializerByName(name string) (InitFunc, bool) {
	f, ok := initializers[name]
	return f, ok
}

// InitializerNames returns the known scheme names in sorted order.
func InitializerNames() []string {
	names := make([]string, 0, len(initializers))
	for name := range initializers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
