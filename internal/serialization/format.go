// Package serialization implements the two model artifacts: the
// structured-text topology description (JSON or YAML dialect) and the
// binary weights blob, plus the save/load glue that reconstructs a
// classifier from them.
package serialization

import "time"

// Weights artifact format constants.
const (
	MagicBytes      = "DERM"
	FormatVersion   = 1
	HeaderAlignment = 64 // tensor data starts on a 64-byte boundary
	ChecksumSize    = 32 // SHA-256 over the data section, trailing

	// maxHeaderSize bounds the JSON index so a corrupted length field
	// cannot trigger a huge allocation.
	maxHeaderSize = 16 << 20
)

// Flags for the weights artifact.
const (
	FlagHasChecksum uint32 = 1 << 0
)

// DTypeFloat64 is the only tensor element type the artifact carries.
const DTypeFloat64 = "float64"

// Header is the JSON index at the front of a weights artifact.
type Header struct {
	FormatVersion  int               `json:"format_version"`
	LibraryVersion string            `json:"library_version"`
	ArtifactID     string            `json:"artifact_id"` // UUID stamped at write time
	ModelType      string            `json:"model_type"`
	CreatedAt      time.Time         `json:"created_at"`
	Tensors        []TensorMeta      `json:"tensors"`
	Metadata       map[string]string `json:"metadata,omitempty"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`   // state-dict key (e.g., "0.weight")
	DType  string `json:"dtype"`  // element type ("float64")
	Shape  []int  `json:"shape"`  // tensor dimensions
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}
