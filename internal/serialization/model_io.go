package serialization

import (
	"fmt"

	"github.com/dermnet-ml/dermnet/internal/model"
	"github.com/dermnet-ml/dermnet/internal/tensor"
)

// SaveModel writes a trained classifier as two artifacts: the topology
// description at topoPath (dialect chosen by extension) and the weight
// tensors at weightsPath.
func SaveModel(clf *model.Classifier, topoPath, weightsPath string) error {
	if err := SaveTopology(topoPath, TopologyOf(clf)); err != nil {
		return err
	}
	metadata := map[string]string{
		"optimizer": clf.Config().Optimizer,
	}
	return WriteWeights(weightsPath, clf.StateDict(), "Classifier", metadata)
}

// LoadModel reconstructs a classifier from its topology and weights
// artifacts.
//
// The returned model is uncompiled: the serialized topology carries no
// optimizer state, so Compile must be called before it can be trained
// further or evaluated. A structural mismatch between the two artifacts
// (missing tensors, shape disagreement) yields a *FormatError.
func LoadModel(topoPath, weightsPath string) (*model.Classifier, error) {
	topo, err := LoadTopology(topoPath)
	if err != nil {
		return nil, err
	}
	clf, err := topo.Build()
	if err != nil {
		return nil, err
	}

	stateDict, _, err := ReadWeights(weightsPath)
	if err != nil {
		return nil, err
	}
	if err := checkStateDict(topo, stateDict); err != nil {
		return nil, err
	}
	if err := clf.LoadStateDict(stateDict); err != nil {
		return nil, &FormatError{Details: err.Error()}
	}
	return clf, nil
}

// checkStateDict verifies that the weights artifact carries exactly the
// tensors the topology implies, with matching shapes.
//
// The classifier's layer indices are fixed by its architecture: the
// hidden dense layer is layer 0 and the output dense layer is layer 2
// (activations carry no state).
func checkStateDict(topo *Topology, stateDict map[string]*tensor.RawTensor) error {
	expected := []struct {
		name  string
		shape tensor.Shape
	}{
		{"0.weight", tensor.Shape{topo.Layers[0].Units, topo.Layers[0].InputDim}},
		{"0.bias", tensor.Shape{topo.Layers[0].Units}},
		{"2.weight", tensor.Shape{topo.Layers[1].Units, topo.Layers[1].InputDim}},
		{"2.bias", tensor.Shape{topo.Layers[1].Units}},
	}
	if len(stateDict) != len(expected) {
		return &FormatError{Details: fmt.Sprintf("expected %d tensors, weights artifact has %d",
			len(expected), len(stateDict))}
	}
	for _, want := range expected {
		raw, ok := stateDict[want.name]
		if !ok {
			return &FormatError{Tensor: want.name, Details: "missing from weights artifact"}
		}
		if !raw.Shape().Equal(want.shape) {
			return &FormatError{Tensor: want.name,
				Details: fmt.Sprintf("shape mismatch: topology implies %v, artifact has %v", want.shape, raw.Shape())}
		}
	}
	return nil
}
