// Package eval implements model evaluation: stratified cross-validation,
// exhaustive hyperparameter grid search, and result reporting.
package eval

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"github.com/dermnet-ml/dermnet/internal/dataset"
	"github.com/dermnet-ml/dermnet/internal/model"
)

// Default fold counts.
const (
	DefaultFolds       = 10 // single-configuration cross-validation
	DefaultSearchFolds = 3  // inner cross-validation per grid candidate
)

// Options controls a cross-validation run.
type Options struct {
	// Folds is the number of stratified folds. 0 selects DefaultFolds
	// for CrossValidate and DefaultSearchFolds inside GridSearch.
	Folds int

	// Seed drives fold shuffling. Model seeds come from the
	// configuration, so the same Options and Config always reproduce
	// the same run.
	Seed int64

	// Scaler names a per-fold feature scaler ("minmax", "standard",
	// "" or "none" for no scaling). The scaler is fit on the training
	// portion of each fold only and then applied to both portions;
	// fitting on the full dataset before splitting would leak held-out
	// statistics into training.
	Scaler string
}

// Result holds the per-fold accuracies of one configuration.
type Result struct {
	FoldAccuracies []float64
	Mean           float64
	StdDev         float64 // sample standard deviation across folds
}

// CrossValidate evaluates a single hyperparameter configuration with
// stratified k-fold cross-validation.
//
// Each fold trains a fresh model on the fold's complement and scores it
// on the held-out portion. A failed fit aborts the run; no fold is
// silently skipped.
func CrossValidate(table *dataset.Table, enc *dataset.ClassEncoding, cfg model.Config, opts Options) (*Result, error) {
	if opts.Folds == 0 {
		opts.Folds = DefaultFolds
	}

	codes, err := enc.Encode(table.Labels)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	folds, err := dataset.StratifiedKFold(codes, opts.Folds, rng)
	if err != nil {
		return nil, err
	}

	accuracies := make([]float64, 0, len(folds))
	for f, heldOut := range folds {
		trainIdx := dataset.Complement(table.NumSamples(), heldOut)
		acc, err := runFold(table, enc, cfg, opts.Scaler, trainIdx, heldOut)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", f, err)
		}
		accuracies = append(accuracies, acc)
	}

	return &Result{
		FoldAccuracies: accuracies,
		Mean:           stat.Mean(accuracies, nil),
		StdDev:         stat.StdDev(accuracies, nil),
	}, nil
}

// runFold trains a fresh model on the train rows and scores it on the
// held-out rows. Any configured scaler is fit on the train rows only.
func runFold(table *dataset.Table, enc *dataset.ClassEncoding, cfg model.Config, scalerName string, trainIdx, heldIdx []int) (float64, error) {
	train := table.Select(trainIdx)
	held := table.Select(heldIdx)

	trainX, heldX := train.X, held.X
	scaler, err := dataset.ScalerByName(scalerName)
	if err != nil {
		return 0, err
	}
	if scaler != nil {
		scaler.Fit(trainX)
		trainX = scaler.Transform(trainX)
		heldX = scaler.Transform(heldX)
	}

	trainY, err := enc.Transform(train.Labels)
	if err != nil {
		return 0, err
	}
	heldY, err := enc.Transform(held.Labels)
	if err != nil {
		return 0, err
	}

	clf, err := model.Build(table.NumFeatures(), enc.NumClasses(), cfg)
	if err != nil {
		return 0, err
	}
	if err := clf.Compile(); err != nil {
		return 0, err
	}
	if err := clf.Fit(trainX, trainY); err != nil {
		return 0, err
	}
	return clf.Evaluate(heldX, heldY)
}

// TrainFull trains one model on the complete table, optionally scaling
// features first, and returns the model together with its training
// accuracy. Used after model selection to produce the final artifact.
func TrainFull(table *dataset.Table, enc *dataset.ClassEncoding, cfg model.Config, scalerName string) (*model.Classifier, float64, error) {
	x := table.X
	scaler, err := dataset.ScalerByName(scalerName)
	if err != nil {
		return nil, 0, err
	}
	if scaler != nil {
		scaler.Fit(x)
		x = scaler.Transform(x)
	}

	y, err := enc.Transform(table.Labels)
	if err != nil {
		return nil, 0, err
	}
	clf, err := model.Build(table.NumFeatures(), enc.NumClasses(), cfg)
	if err != nil {
		return nil, 0, err
	}
	if err := clf.Compile(); err != nil {
		return nil, 0, err
	}
	if err := clf.Fit(x, y); err != nil {
		return nil, 0, err
	}
	acc, err := clf.Evaluate(x, y)
	if err != nil {
		return nil, 0, err
	}
	return clf, acc, nil
}
