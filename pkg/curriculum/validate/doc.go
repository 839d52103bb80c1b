// Package validate enforces the curriculum schema: well-formed node
// identity, the closed label and relation sets, referential integrity of
// edge endpoints with strict and lenient handling, and acyclicity of the
// prerequisite subgraph.
package validate
