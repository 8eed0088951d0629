package model

import (
	"fmt"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/dermnet-ml/dermnet/internal/nn"
	"github.com/dermnet-ml/dermnet/internal/optim"
	"github.com/dermnet-ml/dermnet/internal/tensor"
)

// Classifier is a two-dense-layer perceptron for lesion classification.
//
// Topology:
//
//	inputs → Linear(inputs, hidden) → ReLU → Linear(hidden, classes) → Sigmoid
//
// The sigmoid output bounds every class score independently to [0, 1];
// the scores are not normalized to sum to one. The loss is categorical
// cross-entropy.
//
// A freshly built classifier is uncompiled: Compile attaches the loss
// and the optimizer, and must be called before Fit or Evaluate. Models
// reconstructed from serialized artifacts are likewise uncompiled, since
// the topology artifact carries no optimizer state.
type Classifier struct {
	cfg        Config
	numInputs  int
	numClasses int

	net       *nn.Sequential
	criterion *nn.CrossEntropyLoss
	opt       optim.Optimizer
	rng       *rand.Rand

	history []float64 // mean training loss per epoch, filled by Fit
}

// Build constructs an untrained, uncompiled classifier from a
// hyperparameter configuration.
//
// Unknown initializer or optimizer names are rejected with a
// *ConfigError; there is no other error path.
func Build(numInputs, numClasses int, cfg Config) (*Classifier, error) {
	cfg = cfg.WithDefaults()

	if numInputs < 1 {
		return nil, &ConfigError{Field: "inputs", Value: fmt.Sprint(numInputs), Reason: "must be positive"}
	}
	if numClasses < 2 {
		return nil, &ConfigError{Field: "classes", Value: fmt.Sprint(numClasses), Reason: "need at least two classes"}
	}
	if cfg.HiddenUnits < 1 {
		return nil, &ConfigError{Field: "hidden units", Value: fmt.Sprint(cfg.HiddenUnits), Reason: "must be positive"}
	}
	if cfg.Epochs < 1 {
		return nil, &ConfigError{Field: "epochs", Value: fmt.Sprint(cfg.Epochs), Reason: "must be positive"}
	}
	if cfg.BatchSize < 1 {
		return nil, &ConfigError{Field: "batch size", Value: fmt.Sprint(cfg.BatchSize), Reason: "must be positive"}
	}

	init, ok := nn.InitializerByName(cfg.Init)
	if !ok {
		return nil, &ConfigError{Field: "initializer", Value: cfg.Init,
			Reason: "known schemes: " + strings.Join(nn.InitializerNames(), ", ")}
	}
	// The optimizer is instantiated at Compile time, but an unknown
	// name is a configuration mistake and is rejected here.
	if _, err := optim.ByName(cfg.Optimizer, nil, 0); err != nil {
		return nil, &ConfigError{Field: "optimizer", Value: cfg.Optimizer,
			Reason: "known optimizers: " + strings.Join(optim.Names(), ", ")}
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	net := nn.NewSequential(
		nn.NewLinear(numInputs, cfg.HiddenUnits, init, rng),
		nn.NewReLU(),
		nn.NewLinear(cfg.HiddenUnits, numClasses, init, rng),
		nn.NewSigmoid(),
	)

	return &Classifier{
		cfg:        cfg,
		numInputs:  numInputs,
		numClasses: numClasses,
		net:        net,
		rng:        rng,
	}, nil
}

// Compile attaches the categorical cross-entropy loss and the configured
// optimizer. Must be called before Fit or Evaluate.
func (c *Classifier) Compile() error {
	opt, err := optim.ByName(c.cfg.Optimizer, c.net.Parameters(), c.cfg.LearningRate)
	if err != nil {
		return &ConfigError{Field: "optimizer", Value: c.cfg.Optimizer, Reason: err.Error()}
	}
	c.criterion = nn.NewCrossEntropyLoss()
	c.opt = opt
	return nil
}

// IsCompiled reports whether Compile has been called.
func (c *Classifier) IsCompiled() bool {
	return c.opt != nil
}

// Fit trains the classifier on (x, oneHot) for the configured number of
// epochs with shuffled mini-batches.
//
// x has shape [n, inputs] and oneHot has shape [n, classes].
func (c *Classifier) Fit(x, oneHot *mat.Dense) error {
	if !c.IsCompiled() {
		return ErrNotCompiled
	}
	if err := c.checkDims(x, oneHot); err != nil {
		return err
	}

	n, _ := x.Dims()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	c.history = make([]float64, 0, c.cfg.Epochs)
	for epoch := 0; epoch < c.cfg.Epochs; epoch++ {
		c.rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		var epochLoss float64
		var batches int
		for start := 0; start < n; start += c.cfg.BatchSize {
			end := start + c.cfg.BatchSize
			if end > n {
				end = n
			}
			batchX, batchY := c.gatherBatch(x, oneHot, indices[start:end])

			c.opt.ZeroGrad()
			probs := c.net.Forward(batchX)
			loss := c.criterion.Forward(probs, batchY)
			c.net.Backward(c.criterion.Backward())
			c.opt.Step()

			epochLoss += loss
			batches++
		}
		c.history = append(c.history, epochLoss/float64(batches))
	}
	return nil
}

// gatherBatch copies the selected rows into fresh batch matrices.
func (c *Classifier) gatherBatch(x, oneHot *mat.Dense, indices []int) (*mat.Dense, *mat.Dense) {
	batchX := mat.NewDense(len(indices), c.numInputs, nil)
	batchY := mat.NewDense(len(indices), c.numClasses, nil)
	for i, idx := range indices {
		batchX.SetRow(i, x.RawRowView(idx))
		batchY.SetRow(i, oneHot.RawRowView(idx))
	}
	return batchX, batchY
}

// Predict returns the bounded class scores for a batch, shape
// [n, classes].
func (c *Classifier) Predict(x *mat.Dense) *mat.Dense {
	return c.net.Forward(x)
}

// PredictClasses returns the index of the highest-scoring class per
// sample.
func (c *Classifier) PredictClasses(x *mat.Dense) []int {
	probs := c.Predict(x)
	n, _ := probs.Dims()
	classes := make([]int, n)
	for i := 0; i < n; i++ {
		classes[i] = argmax(probs.RawRowView(i))
	}
	return classes
}

// Evaluate returns the classification accuracy on (x, oneHot): the
// fraction of samples whose highest-scoring class matches the one-hot
// target.
func (c *Classifier) Evaluate(x, oneHot *mat.Dense) (float64, error) {
	if !c.IsCompiled() {
		return 0, ErrNotCompiled
	}
	if err := c.checkDims(x, oneHot); err != nil {
		return 0, err
	}

	predicted := c.PredictClasses(x)
	n, _ := x.Dims()
	var correct int
	for i := 0; i < n; i++ {
		if predicted[i] == argmax(oneHot.RawRowView(i)) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// History returns the mean training loss per epoch of the most recent
// Fit call.
func (c *Classifier) History() []float64 {
	return c.history
}

// Config returns the hyperparameter configuration (with defaults
// applied).
func (c *Classifier) Config() Config {
	return c.cfg
}

// NumInputs returns the input width.
func (c *Classifier) NumInputs() int {
	return c.numInputs
}

// NumClasses returns the output width.
func (c *Classifier) NumClasses() int {
	return c.numClasses
}

// StateDict returns the network weights keyed by layer-qualified name.
func (c *Classifier) StateDict() map[string]*tensor.RawTensor {
	return c.net.StateDict()
}

// LoadStateDict replaces the network weights from a state dictionary.
func (c *Classifier) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return c.net.LoadStateDict(stateDict)
}

func (c *Classifier) checkDims(x, oneHot *mat.Dense) error {
	xr, xc := x.Dims()
	yr, yc := oneHot.Dims()
	if xc != c.numInputs {
		return fmt.Errorf("feature width mismatch: got %d, model expects %d", xc, c.numInputs)
	}
	if yc != c.numClasses {
		return fmt.Errorf("target width mismatch: got %d, model expects %d", yc, c.numClasses)
	}
	if xr != yr {
		return fmt.Errorf("row count mismatch: %d feature rows vs %d target rows", xr, yr)
	}
	return nil
}

func argmax(row []float64) int {
	best := 0
	for j := 1; j < len(row); j++ {
		if row[j] > row[best] {
			best = j
		}
	}
	return best
}
