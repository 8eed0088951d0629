package optim

import (
	"math"

	"github.com/dermnet-ml/dermnet/internal/nn"
)

// RMSprop implements the RMSprop optimizer.
//
// RMSprop keeps a moving average of the squared gradient per parameter
// and divides the raw gradient by its root, so the effective step size
// adapts to the recent gradient magnitude:
//
//	s_t = rho * s_{t-1} + (1-rho) * gradient²
//	param = param - lr * gradient / (sqrt(s_t) + eps)
//
// Reference: Tieleman & Hinton, "Lecture 6.5 - rmsprop" (COURSERA:
// Neural Networks for Machine Learning, 2012)
type RMSprop struct {
	params []*nn.Parameter
	lr     float64
	rho    float64
	eps    float64
	sq     map[*nn.Parameter][]float64 // running squared-gradient averages
}

// RMSpropConfig holds configuration for the RMSprop optimizer.
//
// Zero-valued fields select the defaults: LR 0.001, Rho 0.9, Eps 1e-7.
type RMSpropConfig struct {
	LR  float64
	Rho float64
	Eps float64
}

// NewRMSprop creates a new RMSprop optimizer over the given parameters.
func NewRMSprop(params []*nn.Parameter, config RMSpropConfig) *RMSprop {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Rho == 0 {
		config.Rho = 0.9
	}
	if config.Eps == 0 {
		config.Eps = 1e-7
	}

	return &RMSprop{
		params: params,
		lr:     config.LR,
		rho:    config.Rho,
		eps:    config.Eps,
		sq:     make(map[*nn.Parameter][]float64),
	}
}

// Step performs a single RMSprop update over all parameters.
func (r *RMSprop) Step() {
	for _, param := range r.params {
		grad := param.Grad().Data()
		data := param.Tensor().Data()

		sq, ok := r.sq[param]
		if !ok {
			sq = make([]float64, len(data))
			r.sq[param] = sq
		}

		for i := range data {
			g := grad[i]
			sq[i] = r.rho*sq[i] + (1.0-r.rho)*g*g
			data[i] -= r.lr * g / (math.Sqrt(sq[i]) + r.eps)
		}
	}
}

// ZeroGrad clears gradients for all parameters.
func (r *RMSprop) ZeroGrad() {
	zeroGrads(r.params)
}

// Name returns "rmsprop".
func (r *RMSprop) Name() string {
	return "rmsprop"
}

// LearningRate returns the current learning rate.
func (r *RMSprop) LearningRate() float64 {
	return r.lr
}
