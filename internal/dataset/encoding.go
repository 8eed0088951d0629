package dataset

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

// ClassEncoding is a bijection between class-label strings and the
// integer codes [0, NumClasses).
//
// Codes are assigned in sorted order of the distinct labels, so the same
// label set always yields the same encoding regardless of row order.
type ClassEncoding struct {
	classes []string       // code -> label, sorted
	index   map[string]int // label -> code
}

// FitEncoding scans the labels once and assigns each distinct value an
// integer code in sorted order.
func FitEncoding(labels []string) *ClassEncoding {
	seen := make(map[string]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for l := range seen {
		classes = append(classes, l)
	}
	sort.Strings(classes)

	index := make(map[string]int, len(classes))
	for code, l := range classes {
		index[l] = code
	}
	return &ClassEncoding{classes: classes, index: index}
}

// NumClasses returns the number of distinct classes.
func (e *ClassEncoding) NumClasses() int {
	return len(e.classes)
}

// Classes returns the labels in code order. The slice must not be
// mutated.
func (e *ClassEncoding) Classes() []string {
	return e.classes
}

// Code returns the integer code for a label.
func (e *ClassEncoding) Code(label string) (int, bool) {
	code, ok := e.index[label]
	return code, ok
}

// Label returns the label for a code, or "" if the code is out of range.
func (e *ClassEncoding) Label(code int) string {
	if code < 0 || code >= len(e.classes) {
		return ""
	}
	return e.classes[code]
}

// Encode maps each label to its integer code.
//
// Returns an *UnknownLabelError for any label absent from the encoding.
func (e *ClassEncoding) Encode(labels []string) ([]int, error) {
	codes := make([]int, len(labels))
	for i, l := range labels {
		code, ok := e.index[l]
		if !ok {
			return nil, &UnknownLabelError{Label: l}
		}
		codes[i] = code
	}
	return codes, nil
}

// Transform expands each label to a one-hot row of width NumClasses.
//
// Every returned row has exactly one 1.0 entry, at the label's code.
func (e *ClassEncoding) Transform(labels []string) (*mat.Dense, error) {
	codes, err := e.Encode(labels)
	if err != nil {
		return nil, err
	}
	out := mat.NewDense(len(labels), len(e.classes), nil)
	for i, code := range codes {
		out.Set(i, code, 1.0)
	}
	return out, nil
}

// Inverse maps integer codes back to labels. Out-of-range codes map to
// the empty string.
func (e *ClassEncoding) Inverse(codes []int) []string {
	labels := make([]string, len(codes))
	for i, code := range codes {
		labels[i] = e.Label(code)
	}
	return labels
}
