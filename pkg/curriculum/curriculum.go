package curriculum

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// IDSeparator is the delimiter between hierarchical segments of a node id.
// A node whose id extends another node's id by one or more segments is a
// structural descendant of that node (e.g. "CHAP_02_SUB_3_1" under
// "CHAP_02_SUB_3").
const IDSeparator = "_"

// ExerciseSuffix is appended to exercise node ids during normalization so
// that exercises are distinguishable from content units with the same
// hierarchical position.
const ExerciseSuffix = "_EX"

// =============================================================================
// Label - Node Classification
// =============================================================================

// Label classifies a curriculum node. The label determines the secondary
// tags the node receives in the graph store and whether its id is
// normalized with [ExerciseSuffix].
type Label string

// Node labels. The set is closed: extractors must emit one of these.
const (
	LabelChapter   Label = "Chapter"
	LabelUnit      Label = "Unit"
	LabelContainer Label = "Container"
	LabelTopic     Label = "Topic"
	LabelSubtopic  Label = "Subtopic"
	LabelExercise  Label = "Exercise"
)

// Labels returns all known labels in display order.
func Labels() []Label {
	return []Label{LabelChapter, LabelUnit, LabelContainer, LabelTopic, LabelSubtopic, LabelExercise}
}

// Valid reports whether l is a member of the closed label set.
func (l Label) Valid() bool {
	switch l {
	case LabelChapter, LabelUnit, LabelContainer, LabelTopic, LabelSubtopic, LabelExercise:
		return true
	}
	return false
}

// ParseLabel converts a string to a Label, or returns an error if the
// string is not a known label.
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown label %q", s)
	}
	return l, nil
}

// =============================================================================
// Relation - Edge Classification
// =============================================================================

// Relation classifies a directed edge. The set is closed and fixed: an edge
// carrying any other relation is a schema violation, never silently accepted.
type Relation string

// Edge relations.
const (
	// RelationHasPart expresses "source structurally contains target".
	RelationHasPart Relation = "HAS_PART"
	// RelationHasExercise expresses containment of an exercise node.
	RelationHasExercise Relation = "HAS_EXERCISE"
	// RelationRequires expresses "source must be completed before target".
	RelationRequires Relation = "REQUIRES"
	// RelationRelatedTo expresses a non-structural association.
	RelationRelatedTo Relation = "RELATED_TO"
)

// Relations returns all known relations in persistence order.
func Relations() []Relation {
	return []Relation{RelationHasPart, RelationHasExercise, RelationRequires, RelationRelatedTo}
}

// Valid reports whether r is a member of the closed relation set.
func (r Relation) Valid() bool {
	switch r {
	case RelationHasPart, RelationHasExercise, RelationRequires, RelationRelatedTo:
		return true
	}
	return false
}

// Containment reports whether r is a structural containment relation.
// Only containment edges participate in transitive reduction.
func (r Relation) Containment() bool {
	return r == RelationHasPart || r == RelationHasExercise
}

// ParseRelation converts a string to a Relation, or returns an error if the
// string is not a known relation.
func ParseRelation(s string) (Relation, error) {
	r := Relation(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown relation %q", s)
	}
	return r, nil
}

// =============================================================================
// Content - Opaque Node Payload
// =============================================================================

// Buckets is the fixed five-slot semantic payload some extractors emit for
// learnable topics. The engine passes it through untouched.
type Buckets struct {
	Anchor      string   `json:"anchor,omitempty" bson:"anchor,omitempty"`
	Mechanics   []string `json:"mechanics,omitempty" bson:"mechanics,omitempty"`
	Contrast    string   `json:"contrast,omitempty" bson:"contrast,omitempty"`
	Limitations string   `json:"limitations,omitempty" bson:"limitations,omitempty"`
	Instance    string   `json:"instance,omitempty" bson:"instance,omitempty"`
	Note        string   `json:"note,omitempty" bson:"note,omitempty"`
}

// Content is the opaque per-node payload produced by the extractor.
// The engine never interprets it; it is carried through validation and
// handed to the store as-is.
type Content struct {
	Definition string   `json:"definition,omitempty" bson:"definition,omitempty"`
	KeyPoints  []string `json:"key_points,omitempty" bson:"key_points,omitempty"`
	Buckets    *Buckets `json:"data,omitempty" bson:"data,omitempty"`
	FileSource string   `json:"file_source,omitempty" bson:"file_source,omitempty"`
	Page       int      `json:"page,omitempty" bson:"page,omitempty"`
}

// =============================================================================
// Node
// =============================================================================

// Node is a structural or content unit of the curriculum.
//
// The id is globally unique and stable across reruns; the graph store uses
// it as the upsert key. The engine reads node identity but never mutates it,
// with one exception: [Normalize] appends [ExerciseSuffix] to exercise ids
// once during pre-processing.
type Node struct {
	ID      string `json:"id" bson:"_id"`
	Title   string `json:"title" bson:"title"`
	Label   Label  `json:"label" bson:"label"`
	Content `bson:",inline"`
}

// ParentID returns the id of the nearest structural ancestor present in
// known, derived by stripping trailing id segments, and true if one exists.
// A node with no discoverable parent is a root.
func (n Node) ParentID(known map[string]bool) (string, bool) {
	id := n.ID
	for {
		i := strings.LastIndex(id, IDSeparator)
		if i <= 0 {
			return "", false
		}
		id = id[:i]
		if known[id] {
			return id, true
		}
	}
}

// =============================================================================
// Edge
// =============================================================================

// Edge is a directed, typed connection between two nodes.
//
// Props carries arbitrary auxiliary attributes merged into the persisted
// relationship. The identity fields (source, target, relation) and the
// internal generated marker are never part of Props.
type Edge struct {
	Source    string         `json:"source" bson:"source"`
	Target    string         `json:"target" bson:"target"`
	Relation  Relation       `json:"relation" bson:"relation"`
	Props     map[string]any `json:"props,omitempty" bson:"props,omitempty"`
	Generated bool           `json:"-" bson:"-"`
}

// EdgeKey identifies an edge by its (source, target, relation) triple.
// The combined edge set is deduplicated on this key before validation.
type EdgeKey struct {
	Source   string
	Target   string
	Relation Relation
}

// Key returns the identity triple of the edge.
func (e Edge) Key() EdgeKey {
	return EdgeKey{Source: e.Source, Target: e.Target, Relation: e.Relation}
}

// PersistProps returns a copy of the edge's auxiliary properties with the
// identity fields and the internal generated marker excluded. The returned
// map is safe to hand to the store.
func (e Edge) PersistProps() map[string]any {
	if len(e.Props) == 0 {
		return map[string]any{}
	}
	props := make(map[string]any, len(e.Props))
	for k, v := range e.Props {
		switch k {
		case "source", "target", "relation", "generated":
			continue
		}
		props[k] = v
	}
	return props
}

// edgeWire is the serialization shape of an edge. Extractors emit auxiliary
// attributes inline next to the identity fields, so Edge flattens Props on
// marshal and collects unknown keys on unmarshal.
type edgeWire struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// UnmarshalJSON decodes an edge from the extractor wire format, collecting
// any non-identity keys into Props. The relation string is kept verbatim
// even when unknown; the validator is the single authority that rejects it.
func (e *Edge) UnmarshalJSON(data []byte) error {
	var wire edgeWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	e.Source = wire.Source
	e.Target = wire.Target
	e.Relation = Relation(wire.Relation)
	e.Generated = false
	e.Props = nil

	for k, v := range raw {
		switch k {
		case "source", "target", "relation", "generated":
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("edge property %q: %w", k, err)
		}
		if e.Props == nil {
			e.Props = make(map[string]any)
		}
		e.Props[k] = val
	}
	return nil
}

// MarshalJSON encodes the edge with its auxiliary properties inline,
// matching the extractor wire format. The generated marker is internal and
// never serialized.
func (e Edge) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Props)+3)
	for k, v := range e.PersistProps() {
		out[k] = v
	}
	out["source"] = e.Source
	out["target"] = e.Target
	out["relation"] = string(e.Relation)
	return json.Marshal(out)
}

// =============================================================================
// Graph
// =============================================================================

// Graph is the in-memory node/edge collection the engine operates on.
// The wire format matches the extractor output: a "nodes" array and a
// "relationships" array.
type Graph struct {
	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"relationships" bson:"edges"`
}

// NodeCount returns the number of nodes.
func (g Graph) NodeCount() int { return len(g.Nodes) }

// EdgeCount returns the number of edges.
func (g Graph) EdgeCount() int { return len(g.Edges) }

// NodeSet returns a lookup of all node ids in the graph.
func (g Graph) NodeSet() map[string]bool {
	ids := make(map[string]bool, len(g.Nodes))
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// Clone returns a deep-enough copy of the graph for independent mutation:
// node and edge slices are copied, and edge property maps are duplicated.
// Node content payloads are shared (the engine never mutates them).
func (g Graph) Clone() Graph {
	out := Graph{
		Nodes: slices.Clone(g.Nodes),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, e := range g.Edges {
		if e.Props != nil {
			props := make(map[string]any, len(e.Props))
			for k, v := range e.Props {
				props[k] = v
			}
			e.Props = props
		}
		out.Edges[i] = e
	}
	return out
}

// Normalize applies the single permitted identity rewrite: exercise node
// ids that do not already end in [ExerciseSuffix] have it appended, and
// every edge endpoint referencing a rewritten id is updated to match.
// All other node identity is left untouched. Normalize returns the number
// of rewritten ids.
func Normalize(g *Graph) int {
	renamed := make(map[string]string)
	for i, n := range g.Nodes {
		if n.Label != LabelExercise || strings.HasSuffix(n.ID, ExerciseSuffix) {
			continue
		}
		newID := n.ID + ExerciseSuffix
		renamed[n.ID] = newID
		g.Nodes[i].ID = newID
	}
	if len(renamed) == 0 {
		return 0
	}
	for i, e := range g.Edges {
		if id, ok := renamed[e.Source]; ok {
			g.Edges[i].Source = id
		}
		if id, ok := renamed[e.Target]; ok {
			g.Edges[i].Target = id
		}
	}
	return len(renamed)
}
