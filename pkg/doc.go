// Package pkg provides the core libraries for building curriculum knowledge graphs.
//
// # Overview
//
// Trellis turns the JSON emitted by textbook extractors into a validated
// knowledge graph of chapters, topics, subtopics, and exercises. The pkg
// directory is organized into five main areas:
//
//  1. [curriculum] - Domain model (nodes, edges, labels, relations)
//  2. [curriculum/transform] - Edge derivation, merging, transitive reduction
//  3. [curriculum/validate] - Structural validation and cycle detection
//  4. [pipeline] - Orchestration (import → build → persist) with caching
//  5. [store] - Persistence backends (Neo4j, MongoDB)
//
// Supporting packages: [cache] for pipeline-stage caching, [io] for document
// import/export, [quality] for content coverage reports, [observability] for
// hook-based instrumentation, and [errors] for coded error handling.
//
// # Architecture
//
// The typical data flow through Trellis:
//
//	Extractor document (JSON)
//	         ↓
//	    [io] package (decode, structural screening)
//	         ↓
//	    [curriculum/transform] package (implicit edges, merge, reduce)
//	         ↓
//	    [curriculum/validate] package (labels, references, cycles)
//	         ↓
//	    [store] package (transactional persistence)
//
// The [pipeline] package ties the stages together and is what the CLI and
// any embedding service call.
package pkg
