package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/errors"
)

// ReadGraph decodes an extractor document from r.
//
// The input must be a JSON object with "nodes" and "relationships" arrays:
//
//	{
//	  "nodes": [
//	    {"id": "CHAP_01", "title": "Mechanics", "label": "Chapter"},
//	    {"id": "CHAP_01_SUB_1", "title": "Kinematics", "label": "Topic"}
//	  ],
//	  "relationships": [
//	    {"source": "CHAP_01_SUB_1", "target": "CHAP_01_SUB_2", "relation": "REQUIRES"}
//	  ]
//	}
//
// Each node must carry a non-empty id; duplicate ids are rejected here so a
// malformed document fails before any transformation runs. Labels,
// relations, and edge endpoints are NOT checked at this layer: the
// validator owns those rules and its mode decides their severity.
//
// The returned graph is independent of r and can be modified freely.
// ReadGraph does not close r.
func ReadGraph(r io.Reader) (curriculum.Graph, error) {
	var g curriculum.Graph
	if err := json.NewDecoder(r).Decode(&g); err != nil {
		return curriculum.Graph{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode document")
	}

	seen := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return curriculum.Graph{}, errors.New(errors.ErrCodeInvalidNodeID, "node with empty id")
		}
		if seen[n.ID] {
			return curriculum.Graph{}, errors.New(errors.ErrCodeDuplicateNode, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	return g, nil
}

// ImportFile reads an extractor document from the file at path.
//
// It opens the file, decodes it with [ReadGraph], and closes the file.
// Errors wrap the underlying cause with the file path for context.
func ImportFile(path string) (curriculum.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return curriculum.Graph{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return curriculum.Graph{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadGraph(f)
	if err != nil {
		return curriculum.Graph{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadGraphBytes decodes an extractor document from raw bytes. Used by the
// pipeline where the same bytes also feed the content-addressed cache key.
func ReadGraphBytes(data []byte) (curriculum.Graph, error) {
	return ReadGraph(bytes.NewReader(data))
}
