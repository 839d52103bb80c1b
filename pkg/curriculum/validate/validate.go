package validate

import (
	"github.com/charmbracelet/log"

	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/errors"
)

// Mode selects how the validator treats dangling edge references.
type Mode string

const (
	// ModeStrict aborts the run on the first edge referencing a missing
	// node. Default, intended for hand-authored curricula.
	ModeStrict Mode = "strict"
	// ModeLenient drops edges referencing missing nodes, logs each one,
	// and keeps the rest. Intended for auto-extracted curricula where a
	// stray reference should not sink the whole import.
	ModeLenient Mode = "lenient"
)

// Valid reports whether m is a recognized mode.
func (m Mode) Valid() bool {
	return m == ModeStrict || m == ModeLenient
}

// ParseMode converts a string to a Mode.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", errors.New(errors.ErrCodeInvalidInput, "unknown validation mode %q (use strict or lenient)", s)
	}
	return m, nil
}

// Result reports what validation kept and dropped.
type Result struct {
	// Kept is the surviving edge set, input order preserved.
	Kept []curriculum.Edge
	// Dropped counts edges removed in lenient mode.
	Dropped int
}

// Validator checks a graph against the schema: node identity and labels,
// edge relation legality, and referential integrity of edge endpoints.
//
// The zero value is not usable; construct with [New].
type Validator struct {
	mode   Mode
	logger *log.Logger
}

// New returns a Validator for the given mode. A nil logger falls back to
// the package default.
func New(mode Mode, logger *log.Logger) *Validator {
	if logger == nil {
		logger = log.Default()
	}
	return &Validator{mode: mode, logger: logger}
}

// Mode returns the validator's configured mode.
func (v *Validator) Mode() Mode { return v.mode }

// Nodes checks node identity: every id is well formed, every label is a
// member of the closed label set, and no id appears twice. Node problems
// are schema violations and abort the run in every mode.
func (v *Validator) Nodes(nodes []curriculum.Node) error {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if err := errors.ValidateNodeID(n.ID); err != nil {
			return err
		}
		if err := errors.ValidateTitle(n.Title); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "node %q", n.ID)
		}
		if !n.Label.Valid() {
			return errors.New(errors.ErrCodeInvalidLabel,
				"node %q has unknown label %q", n.ID, n.Label)
		}
		if seen[n.ID] {
			return errors.New(errors.ErrCodeDuplicateNode,
				"duplicate node id %q", n.ID)
		}
		seen[n.ID] = true
	}
	return nil
}

// Edges checks every edge for relation legality, property key safety, and
// referential integrity against known node ids.
//
// An illegal relation or property key is a schema violation and aborts the
// run in every mode; prop keys are interpolated into store statements, so
// they are rejected before persistence. A dangling endpoint aborts in
// strict mode; in lenient mode the edge is dropped with a warning and
// validation continues.
func (v *Validator) Edges(edges []curriculum.Edge, known map[string]bool) (Result, error) {
	result := Result{Kept: make([]curriculum.Edge, 0, len(edges))}
	for _, e := range edges {
		if !e.Relation.Valid() {
			return Result{}, errors.New(errors.ErrCodeInvalidRelation,
				"edge %s -> %s has unknown relation %q", e.Source, e.Target, e.Relation)
		}
		for key := range e.Props {
			if err := errors.ValidatePropKey(key); err != nil {
				return Result{}, errors.Wrap(errors.ErrCodeInvalidInput, err,
					"edge %s -> %s", e.Source, e.Target)
			}
		}
		missing := ""
		switch {
		case !known[e.Source]:
			missing = e.Source
		case !known[e.Target]:
			missing = e.Target
		}
		if missing == "" {
			result.Kept = append(result.Kept, e)
			continue
		}
		if v.mode == ModeStrict {
			return Result{}, errors.New(errors.ErrCodeDanglingReference,
				"edge %s -[%s]-> %s references missing node %q",
				e.Source, e.Relation, e.Target, missing)
		}
		v.logger.Warn("dropping edge with missing endpoint",
			"source", e.Source, "target", e.Target,
			"relation", e.Relation, "missing", missing)
		result.Dropped++
	}
	return result, nil
}

// Graph runs node checks, edge checks, and the acyclicity check on the
// REQUIRES subgraph of the kept edges, in that order.
func (v *Validator) Graph(g curriculum.Graph) (Result, error) {
	if err := v.Nodes(g.Nodes); err != nil {
		return Result{}, err
	}
	result, err := v.Edges(g.Edges, g.NodeSet())
	if err != nil {
		return Result{}, err
	}
	if err := CheckAcyclic(result.Kept); err != nil {
		return Result{}, err
	}
	return result, nil
}
