package wire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/flowgraphs/flowir/pkg/flow"
)

// Marshal converts a live graph to wire-form JSON bytes.
func Marshal(g *flow.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes wire-form JSON bytes into a live graph, reconstructing
// operation payloads through dec.
func Unmarshal(data []byte, dec OpDecoder) (*flow.Graph, error) {
	return readFrom(bytes.NewReader(data), dec)
}

// WriteGraph writes a graph as wire-form JSON to w.
// Use Marshal for in-memory serialization or WriteGraphFile for files.
func WriteGraph(g *flow.Graph, w io.Writer) error {
	return writeTo(g, w)
}

// WriteGraphFile writes a graph to a wire-form JSON file.
// The file is created with 0644 permissions.
func WriteGraphFile(g *flow.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeTo(g, f)
}

// ReadGraph decodes a wire-form JSON graph from r.
// Use ReadGraphFile for files or pass bytes.NewReader for in-memory data.
func ReadGraph(r io.Reader, dec OpDecoder) (*flow.Graph, error) {
	return readFrom(r, dec)
}

// ReadGraphFile reads a wire-form JSON file and returns the decoded graph.
func ReadGraphFile(path string, dec OpDecoder) (*flow.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readFrom(f, dec)
}

// ReadWire decodes just the wire structure from r without rebuilding a live
// graph. Useful for inspection tooling that has no operation catalog.
func ReadWire(r io.Reader) (*Graph, error) {
	var wg Graph
	if err := json.NewDecoder(r).Decode(&wg); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &wg, nil
}

// ReadWireFile reads just the wire structure from a JSON file.
func ReadWireFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadWire(f)
}

func writeTo(g *flow.Graph, w io.Writer) error {
	wg, err := Encode(g)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(wg); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readFrom(r io.Reader, dec OpDecoder) (*flow.Graph, error) {
	wg, err := ReadWire(r)
	if err != nil {
		return nil, err
	}
	return Decode(wg, dec)
}
