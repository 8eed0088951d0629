package eval

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dermnet-ml/dermnet/internal/dataset"
	"github.com/dermnet-ml/dermnet/internal/model"
)

// Grid is the Cartesian product of candidate hyperparameter values.
//
// Every axis must be non-empty; the grid is enumerated exhaustively with
// optimizers as the outermost axis and batch sizes as the innermost, so
// enumeration order, and therefore tie-breaking, is deterministic.
type Grid struct {
	Optimizers []string
	Inits      []string
	Epochs     []int
	BatchSizes []int
}

// Size returns the number of grid cells.
func (g Grid) Size() int {
	return len(g.Optimizers) * len(g.Inits) * len(g.Epochs) * len(g.BatchSizes)
}

// validate rejects grids with an empty axis.
func (g Grid) validate() error {
	axes := []struct {
		name string
		size int
	}{
		{"optimizers", len(g.Optimizers)},
		{"initializers", len(g.Inits)},
		{"epochs", len(g.Epochs)},
		{"batch sizes", len(g.BatchSizes)},
	}
	for _, axis := range axes {
		if axis.size == 0 {
			return &model.ConfigError{Field: "grid", Value: axis.name, Reason: "axis is empty"}
		}
	}
	return nil
}

// Configs enumerates the grid cells in deterministic order, overlaying
// each combination on the base configuration.
func (g Grid) Configs(base model.Config) []model.Config {
	configs := make([]model.Config, 0, g.Size())
	for _, opt := range g.Optimizers {
		for _, init := range g.Inits {
			for _, epochs := range g.Epochs {
				for _, batch := range g.BatchSizes {
					cfg := base
					cfg.Optimizer = opt
					cfg.Init = init
					cfg.Epochs = epochs
					cfg.BatchSize = batch
					configs = append(configs, cfg)
				}
			}
		}
	}
	return configs
}

// Candidate pairs one grid cell with its cross-validation result.
type Candidate struct {
	Config model.Config
	Result *Result
}

// SearchResult holds the outcome of an exhaustive grid search.
type SearchResult struct {
	RunID      string      // identifier stamped on reports and artifacts
	Candidates []Candidate // one per grid cell, in enumeration order
	BestIndex  int
}

// Best returns the winning candidate.
func (r *SearchResult) Best() Candidate {
	return r.Candidates[r.BestIndex]
}

// GridSearch evaluates every cell of the grid with an inner stratified
// cross-validation and returns all candidates plus the one with the
// maximum mean accuracy. Ties are broken by enumeration order: the
// first-encountered candidate wins.
//
// The search is intentionally exhaustive; there is no early stopping or
// pruning. A failed fit aborts the whole search rather than skipping the
// candidate.
func GridSearch(table *dataset.Table, enc *dataset.ClassEncoding, base model.Config, grid Grid, opts Options) (*SearchResult, error) {
	if err := grid.validate(); err != nil {
		return nil, err
	}
	if opts.Folds == 0 {
		opts.Folds = DefaultSearchFolds
	}

	configs := grid.Configs(base)
	candidates := make([]Candidate, 0, len(configs))
	for _, cfg := range configs {
		res, err := CrossValidate(table, enc, cfg, opts)
		if err != nil {
			return nil, fmt.Errorf("candidate %s: %w", cfg, err)
		}
		candidates = append(candidates, Candidate{Config: cfg, Result: res})
	}

	return &SearchResult{
		RunID:      uuid.NewString(),
		Candidates: candidates,
		BestIndex:  bestIndex(candidates),
	}, nil
}

// bestIndex returns the index of the candidate with the highest mean
// accuracy; on ties the earliest candidate is kept.
func bestIndex(candidates []Candidate) int {
	best := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Result.Mean > candidates[best].Result.Mean {
			best = i
		}
	}
	return best
}
