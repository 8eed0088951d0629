package nn

import (
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/dermnet-ml/dermnet/internal/tensor"
)

// Sequential is a container that chains modules in order.
//
// Forward feeds each module's output into the next; Backward walks the
// chain in reverse. State dictionary keys are prefixed with the layer
// index ("0.weight", "2.bias", ...), so layer order is part of the
// serialized contract.
type Sequential struct {
	modules []Module
}

// NewSequential creates a Sequential container from the given modules.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Forward runs the input through every module in order.
func (s *Sequential) Forward(input *mat.Dense) *mat.Dense {
	out := input
	for _, m := range s.modules {
		out = m.Forward(out)
	}
	return out
}

// Backward propagates the output gradient through the modules in reverse
// order and returns the gradient with respect to the network input.
func (s *Sequential) Backward(grad *mat.Dense) *mat.Dense {
	for i := len(s.modules) - 1; i >= 0; i-- {
		grad = s.modules[i].Backward(grad)
	}
	return grad
}

// Parameters returns the parameters of every module, in layer order.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// Len returns the number of modules in the container.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Layer returns the i-th module.
func (s *Sequential) Layer(i int) Module {
	return s.modules[i]
}

// StateDict returns the combined state of all stateful modules, with
// keys prefixed by layer index.
func (s *Sequential) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, m := range s.modules {
		sd, ok := m.(StateDicter)
		if !ok {
			continue
		}
		for name, raw := range sd.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// LoadStateDict loads a combined state dictionary produced by StateDict.
//
// Every stateful module must find its entries under its layer index;
// missing or mis-shaped entries are reported with the failing key prefix.
func (s *Sequential) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	for i, m := range s.modules {
		sd, ok := m.(StateDicter)
		if !ok {
			continue
		}
		prefix := strconv.Itoa(i) + "."
		sub := make(map[string]*tensor.RawTensor)
		for name, raw := range stateDict {
			if strings.HasPrefix(name, prefix) {
				sub[strings.TrimPrefix(name, prefix)] = raw
			}
		}
		if err := sd.LoadStateDict(sub); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}
