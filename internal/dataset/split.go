package dataset

import (
	"fmt"
	"math/rand"
)

// StratifiedKFold partitions the sample indices [0, len(codes)) into k
// disjoint folds whose union covers every sample exactly once, keeping
// the class proportions of codes approximately equal across folds (the
// per-fold class counts differ by at most one).
//
// The indices of each class are shuffled with rng before being dealt
// round-robin across the folds, so fold assignment is randomized but
// repeatable under a fixed seed. The deal cursor starts at a random fold
// and advances continuously across classes, so with k <= n every fold
// receives at least one sample even when individual classes are smaller
// than k.
//
// Returns the k held-out index sets, each non-empty.
func StratifiedKFold(codes []int, k int, rng *rand.Rand) ([][]int, error) {
	n := len(codes)
	if k < 2 {
		return nil, fmt.Errorf("need at least 2 folds, got %d", k)
	}
	if k > n {
		return nil, fmt.Errorf("cannot split %d samples into %d folds", n, k)
	}

	// Group sample indices by class.
	byClass := make(map[int][]int)
	var classes []int
	for i, code := range codes {
		if _, ok := byClass[code]; !ok {
			classes = append(classes, code)
		}
		byClass[code] = append(byClass[code], i)
	}

	folds := make([][]int, k)
	next := rng.Intn(k)
	for _, class := range classes {
		indices := byClass[class]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		// Deal the shuffled class members round-robin. The cursor is
		// not reset between classes: n samples land on n consecutive
		// fold positions, so no fold stays empty, and each class still
		// spreads across folds with counts differing by at most one.
		for _, idx := range indices {
			folds[next] = append(folds[next], idx)
			next = (next + 1) % k
		}
	}
	return folds, nil
}

// Complement returns all indices in [0, n) that are not in exclude,
// preserving ascending order. Used to build the training portion of a
// fold from its held-out set.
func Complement(n int, exclude []int) []int {
	excluded := make(map[int]struct{}, len(exclude))
	for _, idx := range exclude {
		excluded[idx] = struct{}{}
	}
	out := make([]int, 0, n-len(exclude))
	for i := 0; i < n; i++ {
		if _, ok := excluded[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}
