package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/recipebook-backend/internal/data/db"
	"github.com/yungbote/recipebook-backend/internal/data/graph"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
	"github.com/yungbote/recipebook-backend/internal/platform/neo4jdb"
	"github.com/yungbote/recipebook-backend/internal/platform/redisdb"
)

// Clients holds the connections for the configured backends. Unused ones are nil.
type Clients struct {
	SQL   *db.Service
	Neo4j *neo4jdb.Client
	Redis *goredis.Client
}

func wireClients(cfg Config, log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...", "store", cfg.StoreBackend)
	var out Clients

	switch cfg.StoreBackend {
	case StoreGraph:
		client, err := neo4jdb.New(neo4jdb.Config{
			URI:         cfg.Neo4jURI,
			User:        cfg.Neo4jUser,
			Password:    cfg.Neo4jPassword,
			Database:    cfg.Neo4jDatabase,
			Timeout:     cfg.Neo4jTimeout,
			MaxPoolSize: cfg.Neo4jMaxPoolSize,
		}, log)
		if err != nil {
			return out, fmt.Errorf("init neo4j: %w", err)
		}
		out.Neo4j = client
	default:
		svc, err := db.NewService(cfg.DBConfig(), log)
		if err != nil {
			return out, fmt.Errorf("init database: %w", err)
		}
		out.SQL = svc
	}

	rdb, err := redisdb.New(redisdb.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, log)
	if err != nil {
		out.Close(context.Background(), log)
		return Clients{}, fmt.Errorf("init redis: %w", err)
	}
	out.Redis = rdb
	return out, nil
}

// Migrate creates the relational tables or the graph constraints.
func (c Clients) Migrate(ctx context.Context, log *logger.Logger) error {
	if c.SQL != nil {
		if err := c.SQL.AutoMigrateAll(); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
	}
	if c.Neo4j != nil {
		if err := graph.EnsureSchema(ctx, c.Neo4j, log); err != nil {
			return fmt.Errorf("neo4j schema: %w", err)
		}
	}
	return nil
}

// Ping checks the primary store.
func (c Clients) Ping(ctx context.Context) error {
	switch {
	case c.SQL != nil:
		return c.SQL.Ping(ctx)
	case c.Neo4j != nil:
		return c.Neo4j.Ping(ctx)
	}
	return fmt.Errorf("no store configured")
}

func (c Clients) Close(ctx context.Context, log *logger.Logger) {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn("redis close failed", "error", err)
		}
	}
	if c.Neo4j != nil {
		if err := c.Neo4j.Close(ctx); err != nil {
			log.Warn("neo4j close failed", "error", err)
		}
	}
	if c.SQL != nil {
		if err := c.SQL.Close(); err != nil {
			log.Warn("database close failed", "error", err)
		}
	}
}
