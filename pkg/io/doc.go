// Package io provides JSON import and export for curriculum graphs.
//
// # JSON Format
//
// The format matches the extractor output: two top-level arrays, with edge
// properties carried inline next to the identity fields:
//
//	{
//	  "nodes": [
//	    {"id": "CHAP_01", "title": "Mechanics", "label": "Chapter"}
//	  ],
//	  "relationships": [
//	    {"source": "CHAP_01", "target": "CHAP_02", "relation": "REQUIRES", "weight": 0.8}
//	  ]
//	}
//
// Import rejects structurally broken documents (malformed JSON, empty or
// duplicate node ids) but leaves schema rules to the validator, whose mode
// decides whether a violation aborts the run or drops the offending edge.
//
// Export preserves round-trip fidelity: a graph written with [WriteGraph]
// re-imports identically, minus the internal generated markers which are
// never serialized.
package io
