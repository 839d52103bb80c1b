// Package curriculum defines the node/edge model shared by every stage of
// the construction pipeline: the closed label and relation sets, the
// extractor wire format, and the id normalization rules.
//
// Subpackages implement the pure graph transformations (transform) and the
// structural checks (validate).
package curriculum
