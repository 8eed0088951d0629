// Package main provides the dermnet CLI: training, cross-validation,
// grid search and prediction over delimited dermatology feature files.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dermnet-ml/dermnet/internal/dataset"
	"github.com/dermnet-ml/dermnet/internal/eval"
	"github.com/dermnet-ml/dermnet/internal/model"
	"github.com/dermnet-ml/dermnet/internal/serialization"
)

const version = "v0.1.0"

func main() {
	log.SetFlags(0)
	log.SetPrefix("dermnet: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "train":
		runTrain(os.Args[2:])
	case "crossval":
		runCrossval(os.Args[2:])
	case "gridsearch":
		runGridsearch(os.Args[2:])
	case "predict":
		runPredict(os.Args[2:])
	case "version":
		fmt.Printf("dermnet %s\n", version)
	default:
		log.Printf("unknown command %q", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: dermnet <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  train       train on a full dataset and save the model artifacts")
	fmt.Fprintln(os.Stderr, "  crossval    stratified k-fold cross-validation of one configuration")
	fmt.Fprintln(os.Stderr, "  gridsearch  exhaustive hyperparameter search with inner cross-validation")
	fmt.Fprintln(os.Stderr, "  predict     classify a dataset with saved model artifacts")
	fmt.Fprintln(os.Stderr, "  version     show version")
}

// configFlags registers the shared hyperparameter flags on fs and
// returns a Config whose fields are bound to them. Zero values keep
// the documented defaults.
func configFlags(fs *flag.FlagSet) *model.Config {
	cfg := &model.Config{}
	fs.IntVar(&cfg.HiddenUnits, "hidden", 0, "hidden layer width (default 15)")
	fs.StringVar(&cfg.Init, "init", "", "weight initializer: glorot_uniform, normal or uniform")
	fs.StringVar(&cfg.Optimizer, "optimizer", "", "optimizer: adam or rmsprop")
	fs.Float64Var(&cfg.LearningRate, "lr", 0, "learning rate (0 = optimizer default)")
	fs.IntVar(&cfg.Epochs, "epochs", 0, "training epochs (default 150)")
	fs.IntVar(&cfg.BatchSize, "batch", 0, "mini-batch size (default 5)")
	fs.Int64Var(&cfg.Seed, "seed", 0, "random seed for weight init and shuffling")
	return cfg
}

func loadDataset(path string) (*dataset.Table, *dataset.ClassEncoding) {
	if path == "" {
		log.Fatal("missing required -data flag")
	}
	table, err := dataset.Load(path)
	if err != nil {
		log.Fatalf("load %s: %v", path, err)
	}
	enc := dataset.FitEncoding(table.Labels)
	log.Printf("loaded %d samples, %d features, %d classes from %s",
		table.NumSamples(), table.NumFeatures(), enc.NumClasses(), path)
	return table, enc
}

func runTrain(args []string) {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	dataPath := fs.String("data", "", "path to the delimited dataset file")
	scaler := fs.String("scaler", "", "feature scaler: minmax, standard or none")
	topoPath := fs.String("topo", "model.json", "output path for the topology (.json, .yaml or .yml)")
	weightsPath := fs.String("weights", "weights.bin", "output path for the weights artifact")
	cfg := configFlags(fs)
	fs.Parse(args)

	table, enc := loadDataset(*dataPath)

	clf, acc, err := eval.TrainFull(table, enc, *cfg, *scaler)
	if err != nil {
		log.Fatalf("train: %v", err)
	}
	fmt.Println(eval.FormatMetric("accuracy", acc))

	if err := serialization.SaveModel(clf, *topoPath, *weightsPath); err != nil {
		log.Fatalf("save model: %v", err)
	}
	log.Printf("saved topology to %s and weights to %s", *topoPath, *weightsPath)
}

func runCrossval(args []string) {
	fs := flag.NewFlagSet("crossval", flag.ExitOnError)
	dataPath := fs.String("data", "", "path to the delimited dataset file")
	scaler := fs.String("scaler", "", "feature scaler: minmax, standard or none")
	folds := fs.Int("folds", 0, "number of stratified folds (default 10)")
	cfg := configFlags(fs)
	fs.Parse(args)

	table, enc := loadDataset(*dataPath)

	opts := eval.Options{Folds: *folds, Seed: cfg.Seed, Scaler: *scaler}
	res, err := eval.CrossValidate(table, enc, *cfg, opts)
	if err != nil {
		log.Fatalf("cross-validation: %v", err)
	}
	eval.WriteCVReport(os.Stdout, res)
}

func runGridsearch(args []string) {
	fs := flag.NewFlagSet("gridsearch", flag.ExitOnError)
	dataPath := fs.String("data", "", "path to the delimited dataset file")
	scaler := fs.String("scaler", "", "feature scaler: minmax, standard or none")
	folds := fs.Int("folds", 0, "inner folds per candidate (default 3)")
	optimizers := fs.String("optimizers", "adam,rmsprop", "comma-separated optimizer names")
	inits := fs.String("inits", "glorot_uniform,normal,uniform", "comma-separated initializer names")
	epochs := fs.String("epochs", "50,100,150", "comma-separated epoch counts")
	batches := fs.String("batches", "5,10,20", "comma-separated batch sizes")
	chartPath := fs.String("chart", "", "optional output path for a PNG accuracy chart")
	cfg := configFlags(fs)
	fs.Parse(args)

	table, enc := loadDataset(*dataPath)

	grid := eval.Grid{
		Optimizers: splitList(*optimizers),
		Inits:      splitList(*inits),
		Epochs:     splitInts(*epochs),
		BatchSizes: splitInts(*batches),
	}
	log.Printf("searching %d candidates over %d folds each", grid.Size(), searchFolds(*folds))

	opts := eval.Options{Folds: *folds, Seed: cfg.Seed, Scaler: *scaler}
	res, err := eval.GridSearch(table, enc, *cfg, grid, opts)
	if err != nil {
		log.Fatalf("grid search: %v", err)
	}
	eval.WriteSearchReport(os.Stdout, res)

	if *chartPath != "" {
		if err := eval.WriteAccuracyChart(*chartPath, res); err != nil {
			log.Fatalf("write chart: %v", err)
		}
		log.Printf("wrote accuracy chart to %s", *chartPath)
	}
}

func runPredict(args []string) {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	dataPath := fs.String("data", "", "path to the delimited dataset file")
	topoPath := fs.String("topo", "model.json", "path to the topology artifact")
	weightsPath := fs.String("weights", "weights.bin", "path to the weights artifact")
	fs.Parse(args)

	table, enc := loadDataset(*dataPath)

	clf, err := serialization.LoadModel(*topoPath, *weightsPath)
	if err != nil {
		log.Fatalf("load model: %v", err)
	}
	if err := predictReport(os.Stdout, table, enc, clf); err != nil {
		log.Fatalf("predict: %v", err)
	}
}

// predictReport classifies every row of the table and writes one line
// per sample plus a final accuracy line.
//
// The table must match the model exactly: same feature width, and the
// same number of distinct classes. The class names are recovered from
// the table's own labels, so a file carrying only a subset of the
// training classes would silently shift the code-to-name mapping; that
// case is rejected instead.
func predictReport(w io.Writer, table *dataset.Table, enc *dataset.ClassEncoding, clf *model.Classifier) error {
	if clf.NumInputs() != table.NumFeatures() {
		return fmt.Errorf("model expects %d features, dataset has %d", clf.NumInputs(), table.NumFeatures())
	}
	if enc.NumClasses() != clf.NumClasses() {
		return fmt.Errorf("model predicts %d classes, dataset has %d distinct labels",
			clf.NumClasses(), enc.NumClasses())
	}

	codes := clf.PredictClasses(table.X)
	predicted := enc.Inverse(codes)

	correct := 0
	for i, label := range predicted {
		marker := " "
		if label == table.Labels[i] {
			correct++
		} else {
			marker = "*"
		}
		fmt.Fprintf(w, "%4d  %-12s (actual %s)%s\n", i, label, table.Labels[i], marker)
	}
	fmt.Fprintln(w, eval.FormatMetric("accuracy", float64(correct)/float64(len(predicted))))
	return nil
}

func searchFolds(folds int) int {
	if folds == 0 {
		return eval.DefaultSearchFolds
	}
	return folds
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func splitInts(s string) []int {
	var out []int
	for _, part := range splitList(s) {
		n, err := strconv.Atoi(part)
		if err != nil {
			log.Fatalf("invalid integer %q in list", part)
		}
		out = append(out, n)
	}
	return out
}
