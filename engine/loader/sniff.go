package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// Format is the container format of a model file.
type Format int

const (
	// FormatUnknown is returned when the header matches neither container.
	FormatUnknown Format = iota
	// FormatGLB is the binary glTF container.
	FormatGLB
	// FormatGLTF is the JSON glTF document.
	FormatGLTF
)

// String returns the conventional file extension for the format.
func (f Format) String() string {
	switch f {
	case FormatGLB:
		return "glb"
	case FormatGLTF:
		return "gltf"
	default:
		return "unknown"
	}
}

// ErrUnknownFormat is returned when a file is neither GLB nor glTF JSON.
var ErrUnknownFormat = errors.New("loader: not a glTF or GLB file")

var (
	glbType  = types.NewType("glb", "model/gltf-binary")
	gltfType = types.NewType("gltf", "model/gltf+json")
)

func init() {
	filetype.AddMatcher(glbType, matchGLB)
	filetype.AddMatcher(gltfType, matchGLTF)
}

// matchGLB checks the 12-byte GLB header: magic "glTF" followed by version 2.
func matchGLB(buf []byte) bool {
	return len(buf) >= 8 &&
		bytes.Equal(buf[:4], []byte("glTF")) &&
		buf[4] == 2 && buf[5] == 0 && buf[6] == 0 && buf[7] == 0
}

// matchGLTF accepts anything that opens a JSON object after an optional BOM and
// whitespace. Property order is free, so "asset" may sit past the header; the
// glTF decoder validates the rest.
func matchGLTF(buf []byte) bool {
	trimmed := bytes.TrimLeft(buf, " \t\r\n\xef\xbb\xbf")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// Sniff identifies the container format from the start of a file.
//
// Parameters:
//   - header: the first bytes of the file (512 bytes is enough)
//
// Returns:
//   - Format: the detected format
//   - error: ErrUnknownFormat when neither matcher accepts the header
func Sniff(header []byte) (Format, error) {
	if len(header) == 0 {
		return FormatUnknown, ErrUnknownFormat
	}
	kind, err := filetype.Match(header)
	if err != nil {
		return FormatUnknown, fmt.Errorf("loader: sniff: %w", err)
	}
	switch kind {
	case glbType:
		return FormatGLB, nil
	case gltfType:
		return FormatGLTF, nil
	}
	return FormatUnknown, describeUnknown(kind)
}

// SniffFile reads the header of path and identifies its format.
//
// Parameters:
//   - path: the model file
//
// Returns:
//   - Format: the detected format
//   - error: an open/read error or ErrUnknownFormat
func SniffFile(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("loader: %w", err)
	}
	defer f.Close()

	header := make([]byte, 512)
	n, err := io.ReadFull(f, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatUnknown, fmt.Errorf("loader: read header of %s: %w", path, err)
	}
	return Sniff(header[:n])
}

func describeUnknown(kind types.Type) error {
	if kind == types.Unknown {
		return ErrUnknownFormat
	}
	return fmt.Errorf("%w: looks like %s", ErrUnknownFormat, kind.MIME.Value)
}
