// Package model implements the dermoscopic lesion classifier: a
// two-dense-layer perceptron built from a hyperparameter configuration,
// trained with mini-batch gradient descent.
package model

import "fmt"

// Default hyperparameters.
const (
	DefaultHiddenUnits = 15
	DefaultInit        = "glorot_uniform"
	DefaultOptimizer   = "adam"
	DefaultEpochs      = 150
	DefaultBatchSize   = 5
)

// Config is an immutable hyperparameter set consumed by Build.
//
// Zero-valued fields select the documented defaults. LearningRate 0
// selects the chosen optimizer's own default.
type Config struct {
	HiddenUnits  int     // width of the hidden layer (default 15)
	Init         string  // weight initialization scheme (default "glorot_uniform")
	Optimizer    string  // optimizer name (default "adam")
	LearningRate float64 // 0 = optimizer default
	Epochs       int     // training epochs (default 150)
	BatchSize    int     // mini-batch size (default 5)
	Seed         int64   // seed for weight init and batch shuffling
}

// WithDefaults returns a copy of c with zero-valued fields replaced by
// the defaults.
func (c Config) WithDefaults() Config {
	if c.HiddenUnits == 0 {
		c.HiddenUnits = DefaultHiddenUnits
	}
	if c.Init == "" {
		c.Init = DefaultInit
	}
	if c.Optimizer == "" {
		c.Optimizer = DefaultOptimizer
	}
	if c.Epochs == 0 {
		c.Epochs = DefaultEpochs
	}
	if c.BatchSize == 0 {
		c.BatchSize = DefaultBatchSize
	}
	return c
}

// String renders the tunable fields in the form used by grid-search
// reports.
func (c Config) String() string {
	c = c.WithDefaults()
	return fmt.Sprintf("{optimizer=%s, init=%s, epochs=%d, batch=%d}",
		c.Optimizer, c.Init, c.Epochs, c.BatchSize)
}
