package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
	"github.com/yungbote/recipebook-backend/internal/platform/neo4jdb"
)

const constraintViolation = "Neo.ClientError.Schema.ConstraintValidationFailed"

var schemaStatements = []string{
	`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
	`CREATE CONSTRAINT user_email_unique IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE`,
	`CREATE CONSTRAINT recipe_id_unique IF NOT EXISTS FOR (r:Recipe) REQUIRE r.id IS UNIQUE`,
	`CREATE CONSTRAINT recipe_title_unique IF NOT EXISTS FOR (r:Recipe) REQUIRE r.title IS UNIQUE`,
	`CREATE CONSTRAINT instruction_id_unique IF NOT EXISTS FOR (i:Instruction) REQUIRE i.id IS UNIQUE`,
	`CREATE CONSTRAINT ingredient_name_unique IF NOT EXISTS FOR (g:Ingredient) REQUIRE g.name IS UNIQUE`,
	`CREATE INDEX recipe_created_at IF NOT EXISTS FOR (r:Recipe) ON (r.created_at)`,
}

// EnsureSchema creates the uniqueness constraints the stores rely on for
// conflict detection. It is idempotent.
func EnsureSchema(ctx context.Context, client *neo4jdb.Client, log *logger.Logger) error {
	if client == nil || client.Driver == nil {
		return fmt.Errorf("neo4j client not initialized")
	}
	session := client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	for _, q := range schemaStatements {
		res, err := session.Run(ctx, q, nil)
		if err != nil {
			return fmt.Errorf("neo4j schema %q: %w", q, err)
		}
		if _, err := res.Consume(ctx); err != nil {
			return fmt.Errorf("neo4j schema %q: %w", q, err)
		}
	}
	if log != nil {
		log.Info("Neo4j schema ensured", "statements", len(schemaStatements))
	}
	return nil
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	var nerr *neo4j.Neo4jError
	if errors.As(err, &nerr) && nerr.Code == constraintViolation {
		return fmt.Errorf("%w: %v", pkgerrors.ErrConflict, err)
	}
	return err
}

func runWrite(ctx context.Context, client *neo4jdb.Client, fn func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	session := client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	out, err := session.ExecuteWrite(ctx, fn)
	return out, translateError(err)
}

func runRead(ctx context.Context, client *neo4jdb.Client, fn func(tx neo4j.ManagedTransaction) (any, error)) (any, error) {
	session := client.Session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)
	return session.ExecuteRead(ctx, fn)
}

func collect(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}
	return res.Collect(ctx)
}

func exec(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any) error {
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return err
	}
	_, err = res.Consume(ctx)
	return err
}
