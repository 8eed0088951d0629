package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"

	"github.com/dermnet-ml/dermnet/internal/tensor"
)

// fixedPreamble is the byte length before the JSON header: magic,
// version, flags, header size.
const fixedPreamble = 4 + 4 + 4 + 8

// ReadWeights reads a binary weights artifact and returns the state
// dictionary along with the parsed header.
//
// The tensor index is validated before any tensor is materialized:
// offsets must be in bounds and non-overlapping, sizes must match the
// declared shapes, and the data-section checksum must verify.
func ReadWeights(path string) (map[string]*tensor.RawTensor, *Header, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read weights file: %w", err)
	}
	if len(blob) < fixedPreamble {
		return nil, nil, &FormatError{Details: "file too short for preamble"}
	}
	if string(blob[:4]) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(blob[4:8])
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}
	flags := binary.LittleEndian.Uint32(blob[8:12])
	headerSize := binary.LittleEndian.Uint64(blob[12:20])
	if headerSize > maxHeaderSize {
		return nil, nil, &FormatError{Details: fmt.Sprintf("header size %d exceeds limit", headerSize)}
	}
	if uint64(len(blob)) < fixedPreamble+headerSize {
		return nil, nil, &FormatError{Details: "file too short for header"}
	}

	var header Header
	if err := json.Unmarshal(blob[fixedPreamble:fixedPreamble+int(headerSize)], &header); err != nil {
		return nil, nil, &FormatError{Details: fmt.Sprintf("malformed header: %v", err)}
	}

	dataStart := int64(fixedPreamble) + int64(headerSize)
	dataStart += (HeaderAlignment - dataStart%HeaderAlignment) % HeaderAlignment

	dataEnd := int64(len(blob))
	hasChecksum := flags&FlagHasChecksum != 0
	if hasChecksum {
		dataEnd -= ChecksumSize
	}
	if dataEnd < dataStart {
		return nil, nil, &FormatError{Details: "file too short for data section"}
	}
	data := blob[dataStart:dataEnd]

	if err := validateTensors(header.Tensors, int64(len(data))); err != nil {
		return nil, nil, err
	}
	if hasChecksum {
		sum := sha256.Sum256(data)
		if !bytes.Equal(sum[:], blob[dataEnd:dataEnd+ChecksumSize]) {
			return nil, nil, ErrChecksumMismatch
		}
	}

	stateDict := make(map[string]*tensor.RawTensor, len(header.Tensors))
	for _, meta := range header.Tensors {
		values := make([]float64, meta.Size/8)
		for i := range values {
			bits := binary.LittleEndian.Uint64(data[meta.Offset+int64(i)*8:])
			values[i] = math.Float64frombits(bits)
		}
		raw, err := tensor.FromSlice(values, tensor.Shape(meta.Shape))
		if err != nil {
			return nil, nil, &FormatError{Tensor: meta.Name, Details: err.Error()}
		}
		stateDict[meta.Name] = raw
	}
	return stateDict, &header, nil
}

// validateTensors checks the tensor index against the data-section
// length.
func validateTensors(metas []TensorMeta, dataLen int64) error {
	sorted := make([]TensorMeta, len(metas))
	copy(sorted, metas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var prevEnd int64
	for _, meta := range sorted {
		if meta.DType != DTypeFloat64 {
			return &FormatError{Tensor: meta.Name, Details: fmt.Sprintf("unsupported dtype %q", meta.DType)}
		}
		if meta.Offset < 0 || meta.Size < 0 {
			return &FormatError{Tensor: meta.Name, Details: "negative offset or size"}
		}
		expected := int64(tensor.Shape(meta.Shape).NumElements()) * 8
		if meta.Size != expected {
			return &FormatError{Tensor: meta.Name,
				Details: fmt.Sprintf("size %d does not match shape %v (%d bytes)", meta.Size, meta.Shape, expected)}
		}
		if meta.Offset < prevEnd {
			return &FormatError{Tensor: meta.Name, Details: "tensor offsets overlap"}
		}
		if meta.Offset+meta.Size > dataLen {
			return &FormatError{Tensor: meta.Name, Details: "tensor extends beyond data section"}
		}
		prevEnd = meta.Offset + meta.Size
	}
	return nil
}
