package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/trellis-learn/trellis/pkg/curriculum"
)

// WriteGraph encodes a graph as indented JSON and writes it to w.
// The output uses the extractor wire format ("nodes" and "relationships"
// arrays, edge properties inline) and can be re-imported with [ReadGraph]
// for round-trip processing.
func WriteGraph(g curriculum.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(g); err != nil {
		return fmt.Errorf("encode graph: %w", err)
	}
	return nil
}

// MarshalGraph encodes a graph as compact JSON. Used for cache entries and
// content hashing, where indentation only wastes bytes.
func MarshalGraph(g curriculum.Graph) ([]byte, error) {
	return json.Marshal(g)
}

// ExportFile writes the graph to the file at path, creating or truncating
// it. The write is atomic at the file level: a temp file is written first
// and renamed into place so a failed export never leaves a half-written
// document behind.
func ExportFile(g curriculum.Graph, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".trellis-export-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	if err := WriteGraph(g, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp for %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
