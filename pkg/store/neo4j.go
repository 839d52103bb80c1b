package store

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/errors"
	"github.com/trellis-learn/trellis/pkg/observability"
)

// Neo4jConfig holds connection parameters for a Neo4j store.
type Neo4jConfig struct {
	URI      string
	Username string
	Password string
	Database string

	// ConnectTimeout bounds socket establishment. Zero means 10s.
	ConnectTimeout time.Duration
	// MaxPoolSize caps concurrent connections. Zero means the driver
	// default.
	MaxPoolSize int
}

// Neo4jStore persists curriculum graphs to Neo4j. Every node carries the
// shared CurriculumNode label for the uniqueness constraint plus a
// secondary label matching its curriculum label, so traversals can filter
// by type without property predicates.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   *log.Logger
}

// NewNeo4j connects to Neo4j and verifies connectivity before returning.
func NewNeo4j(ctx context.Context, cfg Neo4jConfig, logger *log.Logger) (*Neo4jStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeConfig, "neo4j uri is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	auth := neo4j.BasicAuth(cfg.Username, cfg.Password, "")
	driver, err := neo4j.NewDriverWithContext(cfg.URI, auth, func(c *neo4j.Config) {
		c.SocketConnectTimeout = timeout
		if cfg.MaxPoolSize > 0 {
			c.MaxConnectionPoolSize = cfg.MaxPoolSize
		}
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "init neo4j driver")
	}

	verifyCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := driver.VerifyConnectivity(verifyCtx); err != nil {
		_ = driver.Close(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "verify neo4j connectivity")
	}

	return &Neo4jStore{
		driver:   driver,
		database: cfg.Database,
		logger:   logger.With("store", "neo4j"),
	}, nil
}

// Name implements Store.
func (s *Neo4jStore) Name() string { return "neo4j" }

// EnsureSchema creates the id uniqueness constraint and the title index.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	session := s.session(ctx)
	defer session.Close(ctx)

	statements := []string{
		`CREATE CONSTRAINT curriculum_node_id_unique IF NOT EXISTS
FOR (n:CurriculumNode) REQUIRE n.id IS UNIQUE`,
		`CREATE INDEX curriculum_node_title_index IF NOT EXISTS
FOR (n:CurriculumNode) ON (n.title)`,
	}
	for _, stmt := range statements {
		res, err := session.Run(ctx, stmt, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "ensure schema")
		}
		if _, err := res.Consume(ctx); err != nil {
			return errors.Wrap(errors.ErrCodeStore, err, "ensure schema")
		}
	}
	s.logger.Debug("schema ready")
	return nil
}

// nodeLabelTags builds the FOREACH clauses that add one secondary label per
// curriculum label. FOREACH over a conditional single-element list is the
// standard pattern for label assignment driven by data.
func nodeLabelTags() string {
	out := ""
	for _, l := range curriculum.Labels() {
		out += fmt.Sprintf("FOREACH (_ IN CASE WHEN node.label = '%s' THEN [1] ELSE [] END | SET n:%s)\n", l, l)
	}
	return out
}

// Persist writes the graph in one write transaction. New nodes start in the
// 'locked' progression state; re-persisting never resets a learner's
// progress on existing nodes.
func (s *Neo4jStore) Persist(ctx context.Context, g curriculum.Graph) error {
	nodes := make([]map[string]any, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes = append(nodes, nodeRecord(n))
	}

	byRelation := make(map[curriculum.Relation][]map[string]any)
	for _, e := range g.Edges {
		byRelation[e.Relation] = append(byRelation[e.Relation], map[string]any{
			"source": e.Source,
			"target": e.Target,
			"props":  e.PersistProps(),
		})
	}

	session := s.session(ctx)
	defer session.Close(ctx)

	start := time.Now()
	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		if len(nodes) > 0 {
			query := `
UNWIND $nodes AS node
MERGE (n:CurriculumNode {id: node.id})
SET n += node.props
SET n.status = coalesce(n.status, 'locked')
` + nodeLabelTags()
			if err := runConsume(ctx, tx, query, map[string]any{"nodes": nodes}); err != nil {
				return nil, err
			}
		}

		// Relation is part of the pattern, so each relation type gets
		// its own statement. The order is fixed for determinism.
		for _, rel := range curriculum.Relations() {
			edges := byRelation[rel]
			if len(edges) == 0 {
				continue
			}
			query := fmt.Sprintf(`
UNWIND $edges AS e
MATCH (s:CurriculumNode {id: e.source})
MATCH (t:CurriculumNode {id: e.target})
MERGE (s)-[r:%s]->(t)
SET r += e.props
`, rel)
			if err := runConsume(ctx, tx, query, map[string]any{"edges": edges}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	duration := time.Since(start)

	if err != nil {
		observability.Store().OnError(ctx, s.Name(), "persist", err)
		return errors.Wrap(errors.ErrCodeStore, err, "persist graph")
	}
	observability.Store().OnQuery(ctx, s.Name(), "persist", duration)
	s.logger.Info("persisted graph",
		"nodes", len(nodes), "edges", g.EdgeCount(), "duration", duration)
	return nil
}

// Close releases the driver's connection pool.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) session(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
}

// nodeRecord flattens a node into driver parameters. Neo4j properties hold
// primitives and arrays only, so the bucket payload is flattened next to
// the content fields it enriches.
func nodeRecord(n curriculum.Node) map[string]any {
	props := map[string]any{
		"title":       n.Title,
		"definition":  n.Definition,
		"key_points":  n.KeyPoints,
		"file_source": n.FileSource,
		"page":        n.Page,
	}
	if b := n.Buckets; b != nil {
		props["anchor"] = b.Anchor
		props["mechanics"] = b.Mechanics
		props["contrast"] = b.Contrast
		props["limitations"] = b.Limitations
		props["instance"] = b.Instance
	}
	return map[string]any{
		"id":    n.ID,
		"label": string(n.Label),
		"props": props,
	}
}

func runConsume(ctx context.Context, tx neo4j.ManagedTransaction, query string, params map[string]any) error {
	res, err := tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}

// Ensure Neo4jStore implements Store.
var _ Store = (*Neo4jStore)(nil)
