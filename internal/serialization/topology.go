package serialization

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dermnet-ml/dermnet/internal/model"
)

// Activation and layer type names used in topology artifacts.
const (
	LayerDense        = "dense"
	ActivationReLU    = "relu"
	ActivationSigmoid = "sigmoid"
)

// LayerSpec describes one layer of the network: its type, widths,
// activation and weight-initialization scheme. It carries everything
// needed to rebuild the layer except the learned weights.
type LayerSpec struct {
	Type       string `json:"type" yaml:"type"`
	Units      int    `json:"units" yaml:"units"`
	InputDim   int    `json:"input_dim" yaml:"input_dim"`
	Activation string `json:"activation" yaml:"activation"`
	Init       string `json:"init" yaml:"init"`
}

// Topology is the structured-text model description. It round-trips
// through both the JSON and the YAML dialect without loss; the two
// dialects are semantically identical.
//
// A topology deliberately carries no optimizer state: a model rebuilt
// from artifacts must be re-compiled before further training or
// evaluation.
type Topology struct {
	Class         string      `json:"class" yaml:"class"`
	FormatVersion int         `json:"format_version" yaml:"format_version"`
	Layers        []LayerSpec `json:"layers" yaml:"layers"`
}

// TopologyOf captures the architecture of a classifier.
func TopologyOf(clf *model.Classifier) *Topology {
	cfg := clf.Config()
	return &Topology{
		Class:         "Classifier",
		FormatVersion: FormatVersion,
		Layers: []LayerSpec{
			{
				Type:       LayerDense,
				Units:      cfg.HiddenUnits,
				InputDim:   clf.NumInputs(),
				Activation: ActivationReLU,
				Init:       cfg.Init,
			},
			{
				Type:       LayerDense,
				Units:      clf.NumClasses(),
				InputDim:   cfg.HiddenUnits,
				Activation: ActivationSigmoid,
				Init:       cfg.Init,
			},
		},
	}
}

// Validate checks the structural invariants of a classifier topology.
func (t *Topology) Validate() error {
	if t.Class != "Classifier" {
		return &FormatError{Details: fmt.Sprintf("unexpected model class %q", t.Class)}
	}
	if len(t.Layers) != 2 {
		return &FormatError{Details: fmt.Sprintf("expected 2 dense layers, got %d", len(t.Layers))}
	}
	for i, layer := range t.Layers {
		if layer.Type != LayerDense {
			return &FormatError{Details: fmt.Sprintf("layer %d: unsupported type %q", i, layer.Type)}
		}
		if layer.Units < 1 || layer.InputDim < 1 {
			return &FormatError{Details: fmt.Sprintf("layer %d: invalid dimensions %dx%d", i, layer.InputDim, layer.Units)}
		}
	}
	if t.Layers[0].Activation != ActivationReLU {
		return &FormatError{Details: fmt.Sprintf("hidden layer: unsupported activation %q", t.Layers[0].Activation)}
	}
	if t.Layers[1].Activation != ActivationSigmoid {
		return &FormatError{Details: fmt.Sprintf("output layer: unsupported activation %q", t.Layers[1].Activation)}
	}
	if t.Layers[1].InputDim != t.Layers[0].Units {
		return &FormatError{Details: fmt.Sprintf("layer width mismatch: hidden emits %d, output expects %d",
			t.Layers[0].Units, t.Layers[1].InputDim)}
	}
	return nil
}

// Build reconstructs an untrained, uncompiled classifier with this
// topology. Weights are freshly initialized; the caller loads the
// learned state afterwards.
func (t *Topology) Build() (*model.Classifier, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	cfg := model.Config{
		HiddenUnits: t.Layers[0].Units,
		Init:        t.Layers[0].Init,
	}
	clf, err := model.Build(t.Layers[0].InputDim, t.Layers[1].Units, cfg)
	if err != nil {
		return nil, &FormatError{Details: err.Error()}
	}
	return clf, nil
}

// EncodeTopologyJSON writes the JSON dialect.
func EncodeTopologyJSON(w io.Writer, t *Topology) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(t)
}

// DecodeTopologyJSON reads the JSON dialect.
func DecodeTopologyJSON(r io.Reader) (*Topology, error) {
	var t Topology
	if err := json.NewDecoder(r).Decode(&t); err != nil {
		return nil, &FormatError{Details: fmt.Sprintf("malformed JSON topology: %v", err)}
	}
	return &t, nil
}

// EncodeTopologyYAML writes the YAML dialect.
func EncodeTopologyYAML(w io.Writer, t *Topology) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	return enc.Encode(t)
}

// DecodeTopologyYAML reads the YAML dialect.
func DecodeTopologyYAML(r io.Reader) (*Topology, error) {
	var t Topology
	if err := yaml.NewDecoder(r).Decode(&t); err != nil {
		return nil, &FormatError{Details: fmt.Sprintf("malformed YAML topology: %v", err)}
	}
	return &t, nil
}

// SaveTopology writes the topology artifact, choosing the dialect from
// the file extension: .yaml/.yml selects YAML, anything else JSON.
func SaveTopology(path string, t *Topology) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create topology file: %w", err)
	}
	defer file.Close()

	if isYAMLPath(path) {
		return EncodeTopologyYAML(file, t)
	}
	return EncodeTopologyJSON(file, t)
}

// LoadTopology reads a topology artifact, choosing the dialect from the
// file extension.
func LoadTopology(path string) (*Topology, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open topology file: %w", err)
	}
	defer file.Close()

	if isYAMLPath(path) {
		return DecodeTopologyYAML(file)
	}
	return DecodeTopologyJSON(file)
}

func isYAMLPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
