package store

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trellis-learn/trellis/pkg/cache"
	"github.com/trellis-learn/trellis/pkg/curriculum"
	"github.com/trellis-learn/trellis/pkg/errors"
	"github.com/trellis-learn/trellis/pkg/observability"
)

// MongoConfig holds connection parameters for a MongoDB store.
type MongoConfig struct {
	URI      string
	Database string

	// ConnectTimeout bounds the initial ping. Zero means 10s.
	ConnectTimeout time.Duration
}

// MongoStore persists curriculum graphs to MongoDB: one collection of node
// documents keyed by id, one collection of edge documents keyed by the
// (source, target, relation) triple. It serves deployments that want a
// document dump of the curriculum next to (or instead of) the graph store.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
	logger *log.Logger
}

// Collection names.
const (
	mongoNodes = "curriculum_nodes"
	mongoEdges = "curriculum_edges"
)

// NewMongo connects to MongoDB and verifies the connection with a ping.
func NewMongo(ctx context.Context, cfg MongoConfig, logger *log.Logger) (*MongoStore, error) {
	if cfg.URI == "" {
		return nil, errors.New(errors.ErrCodeConfig, "mongo uri is required")
	}
	if cfg.Database == "" {
		return nil, errors.New(errors.ErrCodeConfig, "mongo database is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "init mongo client")
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping mongo")
	}

	return &MongoStore{
		client: client,
		db:     client.Database(cfg.Database),
		logger: logger.With("store", "mongo"),
	}, nil
}

// Name implements Store.
func (s *MongoStore) Name() string { return "mongo" }

// EnsureSchema creates the unique edge identity index. Node documents use
// the node id as _id, so uniqueness there comes for free.
func (s *MongoStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Collection(mongoEdges).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "source", Value: 1},
			{Key: "target", Value: 1},
			{Key: "relation", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("edge_identity_unique"),
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "ensure edge index")
	}
	s.logger.Debug("schema ready")
	return nil
}

// Persist upserts all nodes and edges inside one session transaction so a
// failed run leaves the collections untouched. Transient transaction errors
// are retried with backoff.
func (s *MongoStore) Persist(ctx context.Context, g curriculum.Graph) error {
	nodeModels := make([]mongo.WriteModel, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		nodeModels = append(nodeModels, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": n.ID}).
			SetReplacement(n).
			SetUpsert(true))
	}
	edgeModels := make([]mongo.WriteModel, 0, len(g.Edges))
	for _, e := range g.Edges {
		edgeModels = append(edgeModels, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"source": e.Source, "target": e.Target, "relation": e.Relation}).
			SetReplacement(bson.M{
				"source":   e.Source,
				"target":   e.Target,
				"relation": e.Relation,
				"props":    e.PersistProps(),
			}).
			SetUpsert(true))
	}

	start := time.Now()
	err := cache.RetryWithBackoff(ctx, func() error {
		session, err := s.client.StartSession()
		if err != nil {
			return cache.Retryable(err)
		}
		defer session.EndSession(ctx)

		_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
			if len(nodeModels) > 0 {
				if _, err := s.db.Collection(mongoNodes).BulkWrite(sc, nodeModels); err != nil {
					return nil, err
				}
			}
			if len(edgeModels) > 0 {
				if _, err := s.db.Collection(mongoEdges).BulkWrite(sc, edgeModels); err != nil {
					return nil, err
				}
			}
			return nil, nil
		})
		if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
			return cache.Retryable(err)
		}
		return err
	})
	duration := time.Since(start)

	if err != nil {
		observability.Store().OnError(ctx, s.Name(), "persist", err)
		return errors.Wrap(errors.ErrCodeStore, err, "persist graph")
	}
	observability.Store().OnQuery(ctx, s.Name(), "persist", duration)
	s.logger.Info("persisted graph",
		"nodes", len(nodeModels), "edges", len(edgeModels), "duration", duration)
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
