package serialization

import (
	"errors"
	"fmt"
)

// Sentinel errors for the weights artifact.
var (
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
)

// FormatError reports a structural mismatch between the topology and
// weights artifacts, or an internally inconsistent artifact.
type FormatError struct {
	Tensor  string // tensor or layer involved, if any
	Details string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	if e.Tensor != "" {
		return fmt.Sprintf("format error: tensor %q: %s", e.Tensor, e.Details)
	}
	return fmt.Sprintf("format error: %s", e.Details)
}
