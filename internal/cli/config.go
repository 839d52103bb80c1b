package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/trellis-learn/trellis/pkg/errors"
	"github.com/trellis-learn/trellis/pkg/store"
)

// Store backend names accepted in configuration and on the command line.
const (
	backendNeo4j = "neo4j"
	backendMongo = "mongo"
)

// Config holds store and cache connection settings. It is loaded from a
// TOML file (~/.config/trellis/config.toml by default) with environment
// variable overrides for credentials, so passwords never need to live in
// the file.
type Config struct {
	// Store selects the persistence backend: "neo4j" (default) or "mongo".
	Store string `toml:"store"`

	// CacheDir overrides the default pipeline cache location
	// (~/.cache/trellis/). Ignored when Redis is configured.
	CacheDir string `toml:"cache_dir"`

	Neo4j Neo4jSection `toml:"neo4j"`
	Mongo MongoSection `toml:"mongo"`
	Redis RedisSection `toml:"redis"`
}

// Neo4jSection configures the Neo4j connection.
type Neo4jSection struct {
	URI      string `toml:"uri"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Database string `toml:"database"`
}

// MongoSection configures the MongoDB connection.
type MongoSection struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// RedisSection configures the optional Redis pipeline cache. When Addr is
// empty the CLI falls back to the file cache under ~/.cache/trellis/.
type RedisSection struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// defaultConfig returns the settings used when no config file exists.
func defaultConfig() Config {
	return Config{
		Store: backendNeo4j,
		Neo4j: Neo4jSection{
			URI:      "bolt://localhost:7687",
			Username: "neo4j",
			Database: "neo4j",
		},
		Mongo: MongoSection{
			URI:      "mongodb://localhost:27017",
			Database: "trellis",
		},
	}
}

// loadConfig reads configuration from path, or from the default location
// when path is empty. A missing default file is not an error; the returned
// config then carries only defaults and environment overrides. An explicit
// path that does not exist is an error.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if explicit {
		if err := errors.ValidateConfigPath(path); err != nil {
			return cfg, err
		}
	} else {
		if env := os.Getenv("TRELLIS_CONFIG"); env != "" {
			path = env
			explicit = true
		} else if dir, err := configDir(); err == nil {
			path = filepath.Join(dir, "config.toml")
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, errors.Wrap(errors.ErrCodeConfig, err, "parse config %s", path)
			}
		case os.IsNotExist(err) && !explicit:
			// No config file is fine; defaults apply.
		default:
			return cfg, errors.Wrap(errors.ErrCodeConfig, err, "read config %s", path)
		}
	}

	cfg.applyEnv()

	if cfg.Store != backendNeo4j && cfg.Store != backendMongo {
		return cfg, errors.New(errors.ErrCodeConfig, "unknown store backend %q (must be %q or %q)", cfg.Store, backendNeo4j, backendMongo)
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded config.
// Credentials belong in the environment, not the config file.
func (c *Config) applyEnv() {
	setFromEnv(&c.Store, "TRELLIS_STORE")
	setFromEnv(&c.CacheDir, "TRELLIS_CACHE_DIR")
	setFromEnv(&c.Neo4j.URI, "NEO4J_URI")
	setFromEnv(&c.Neo4j.Username, "NEO4J_USERNAME")
	setFromEnv(&c.Neo4j.Password, "NEO4J_PASSWORD")
	setFromEnv(&c.Neo4j.Database, "NEO4J_DATABASE")
	setFromEnv(&c.Mongo.URI, "MONGO_URI")
	setFromEnv(&c.Mongo.Database, "MONGO_DATABASE")
	setFromEnv(&c.Redis.Addr, "TRELLIS_REDIS_ADDR")
	setFromEnv(&c.Redis.Password, "TRELLIS_REDIS_PASSWORD")
}

func setFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// openStore connects to the configured persistence backend.
func openStore(ctx context.Context, cfg Config, logger *log.Logger) (store.Store, error) {
	switch cfg.Store {
	case backendMongo:
		return store.NewMongo(ctx, store.MongoConfig{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		}, logger)
	default:
		return store.NewNeo4j(ctx, store.Neo4jConfig{
			URI:      cfg.Neo4j.URI,
			Username: cfg.Neo4j.Username,
			Password: cfg.Neo4j.Password,
			Database: cfg.Neo4j.Database,
		}, logger)
	}
}
