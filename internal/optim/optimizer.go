// Package optim implements the optimization algorithms used to train the
// lesion classifier.
//
// This package provides:
//   - Optimizer interface: base interface for all optimizers
//   - Adam: Adaptive Moment Estimation
//   - RMSprop: root-mean-square propagation
//   - ByName: the registry consulted when an optimizer is selected from
//     configuration
//
// Optimizers read the gradient buffers accumulated on the parameters by
// the backward pass; there is no separate gradient map.
//
// Example usage:
//
//	optimizer, err := optim.ByName("adam", model.Parameters(), 0.001)
//	if err != nil { ... }
//
//	for epoch := range epochs {
//	    optimizer.ZeroGrad()
//	    loss := criterion.Forward(net.Forward(x), y)
//	    net.Backward(criterion.Backward())
//	    optimizer.Step()
//	}
package optim

import (
	"fmt"
	"sort"

	"github.com/dermnet-ml/dermnet/internal/nn"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one gradient update to all parameters, reading each
	// parameter's accumulated gradient buffer.
	Step()

	// ZeroGrad clears all parameter gradients.
	//
	// Call before each backward pass to prevent gradient accumulation
	// from previous iterations.
	ZeroGrad()

	// Name returns the registry name of the algorithm ("adam", ...).
	Name() string

	// LearningRate returns the current learning rate.
	LearningRate() float64
}

// builders maps optimizer names to constructors. A zero lr selects the
// algorithm's default.
var builders = map[string]func(params []*nn.Parameter, lr float64) Optimizer{
	"adam": func(params []*nn.Parameter, lr float64) Optimizer {
		return NewAdam(params, AdamConfig{LR: lr})
	},
	"rmsprop": func(params []*nn.Parameter, lr float64) Optimizer {
		return NewRMSprop(params, RMSpropConfig{LR: lr})
	},
}

// ByName constructs an optimizer by registry name.
//
// Known names: "adam", "rmsprop". Passing lr == 0 selects the
// algorithm's default learning rate.
func ByName(name string, params []*nn.Parameter, lr float64) (Optimizer, error) {
	build, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("unknown optimizer %q (known: %v)", name, Names())
	}
	return build(params, lr), nil
}

// Names returns the known optimizer names in sorted order.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// zeroGrads clears the gradients of every parameter.
func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
