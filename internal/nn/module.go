// Package nn implements the neural network modules used by the lesion
// classifier.
//
// This package provides the building blocks for small feed-forward
// networks:
//   - Module interface: base interface for all network components
//   - Parameter: trainable parameters with gradient buffers
//   - Linear: fully connected layer
//   - Activations: ReLU, Sigmoid
//   - CrossEntropyLoss: categorical cross-entropy over bounded outputs
//   - Sequential: container for stacking layers
//
// Unlike autodiff-based frameworks, every module implements an explicit
// Backward step; the chain rule is wired by Sequential. That is all a
// two-dense-layer classifier needs.
package nn

import (
	"gonum.org/v1/gonum/mat"

	"github.com/dermnet-ml/dermnet/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Forward consumes a batch [batch_size, in_features] and produces the
// module output. Backward consumes the gradient of the loss with respect
// to the module output, accumulates parameter gradients, and returns the
// gradient with respect to the module input. A module must see a Forward
// call before the matching Backward call.
type Module interface {
	// Forward computes the output of the module for a batch of inputs.
	Forward(input *mat.Dense) *mat.Dense

	// Backward propagates the output gradient through the module.
	//
	// Returns the gradient with respect to the module input so the
	// preceding module can continue the chain.
	Backward(grad *mat.Dense) *mat.Dense

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter
}

// StateDicter is implemented by modules that own serializable state.
//
// State dictionaries map parameter names to raw tensors and are the
// currency of the weights artifact.
type StateDicter interface {
	// StateDict returns a map of parameter names to raw tensors.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads parameters from a state dictionary.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}
