// Package transform implements the pure edge transformations of the
// construction pipeline: implicit containment edge generation from id
// structure, merge with deduplication, and transitive reduction of the
// containment hierarchy. All functions leave their inputs unmodified.
package transform
