package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// epsProb guards the logarithm against zero probabilities.
const epsProb = 1e-12

// CrossEntropyLoss computes categorical cross-entropy over bounded class
// scores.
//
// The classifier's output activation is a per-class sigmoid, so Forward
// expects probabilities already in [0, 1] (not logits, and not a
// normalized distribution):
//
//	Loss = -(1/N) Σ_i Σ_c y_ic * log(p_ic)
//
// Gradient (Backward):
//
//	∂L/∂p_ic = -y_ic / (N * p_ic)
//
// The downstream Sigmoid.Backward multiplies by p(1-p) to complete the
// chain to the output-layer pre-activations.
type CrossEntropyLoss struct {
	lastProbs   *mat.Dense
	lastTargets *mat.Dense
}

// NewCrossEntropyLoss creates a new cross-entropy loss function.
func NewCrossEntropyLoss() *CrossEntropyLoss {
	return &CrossEntropyLoss{}
}

// Forward computes the mean cross-entropy of a batch.
//
// Parameters:
//   - probs: bounded class scores with shape [batch_size, num_classes]
//   - targets: one-hot rows with the same shape
//
// Returns the scalar loss averaged over the batch.
func (c *CrossEntropyLoss) Forward(probs, targets *mat.Dense) float64 {
	pr, pc := probs.Dims()
	tr, tc := targets.Dims()
	if pr != tr || pc != tc {
		panic(fmt.Sprintf("CrossEntropyLoss: shape mismatch: probs [%d %d] vs targets [%d %d]", pr, pc, tr, tc))
	}
	c.lastProbs = probs
	c.lastTargets = targets

	var total float64
	for i := 0; i < pr; i++ {
		p := probs.RawRowView(i)
		y := targets.RawRowView(i)
		for j := range p {
			if y[j] != 0 {
				total -= y[j] * math.Log(math.Max(p[j], epsProb))
			}
		}
	}
	return total / float64(pr)
}

// Backward returns ∂L/∂probs for the most recent Forward call.
func (c *CrossEntropyLoss) Backward() *mat.Dense {
	if c.lastProbs == nil {
		panic("CrossEntropyLoss.Backward: Backward called before Forward")
	}
	rows, cols := c.lastProbs.Dims()
	grad := mat.NewDense(rows, cols, nil)
	n := float64(rows)
	for i := 0; i < rows; i++ {
		p := c.lastProbs.RawRowView(i)
		y := c.lastTargets.RawRowView(i)
		g := grad.RawRowView(i)
		for j := range g {
			if y[j] != 0 {
				g[j] = -y[j] / (n * math.Max(p[j], epsProb))
			}
		}
	}
	return grad
}
