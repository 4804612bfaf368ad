package diagram

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/gridsmith/oneline/pkg/equipment"
	"github.com/gridsmith/oneline/pkg/errors"
)

// Marshal converts a graph to indented JSON bytes.
func Marshal(g *equipment.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write encodes a graph as JSON to w. Use Marshal for in-memory
// serialization or WriteFile for files.
func Write(g *equipment.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode diagram")
	}
	return nil
}

// WriteFile writes a graph to a JSON file. The file is created with 0644
// permissions.
func WriteFile(g *equipment.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	return Write(g, f)
}

// Read decodes a JSON diagram from r and rebuilds the graph. Returns
// INVALID_FORMAT for malformed input and the underlying structural errors
// for integrity violations (duplicate ids, dangling load references).
func Read(r io.Reader) (*equipment.Graph, error) {
	var d Diagram
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode diagram")
	}
	return ToGraph(d)
}

// ReadFile reads a JSON file and returns the rebuilt graph.
func ReadFile(path string) (*equipment.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}
