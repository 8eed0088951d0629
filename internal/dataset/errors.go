package dataset

import "fmt"

// ParseError reports a malformed row in an input file.
type ParseError struct {
	Path string // input file path
	Row  int    // 1-based row number (counting non-empty lines)
	Col  int    // 1-based column number, 0 when the whole row is at fault
	Msg  string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Col > 0 {
		return fmt.Sprintf("%s: row %d, column %d: %s", e.Path, e.Row, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s: row %d: %s", e.Path, e.Row, e.Msg)
}

// UnknownLabelError reports a label outside the fitted encoding.
type UnknownLabelError struct {
	Label string
}

// Error implements the error interface.
func (e *UnknownLabelError) Error() string {
	return fmt.Sprintf("unknown class label %q", e.Label)
}
