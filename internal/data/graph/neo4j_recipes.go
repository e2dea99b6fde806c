package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/recipebook-backend/internal/data/repos"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
	"github.com/yungbote/recipebook-backend/internal/platform/neo4jdb"
)

// recipeReturn projects one recipe aggregate per row. Child order is restored
// from the position values when decoding.
const recipeReturn = `
RETURN r {.*} AS recipe,
  [(r)-[hi:HAS_INSTRUCTION]->(i:Instruction) | {id: i.id, position: hi.position, step: i.step}] AS instructions,
  [(r)-[hg:HAS_INGREDIENT]->(g:Ingredient) | {name: g.name, position: hg.position}] AS ingredients
`

type recipeStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

// NewRecipeStore keeps recipes as (:User)-[:HAS_RECIPE]->(:Recipe) with
// per-recipe (:Instruction) nodes and shared (:Ingredient) nodes. It ignores dbc.Tx.
func NewRecipeStore(client *neo4jdb.Client, baseLog *logger.Logger) repos.RecipeRepo {
	return &recipeStore{client: client, log: baseLog.With("repo", "Neo4jRecipeStore")}
}

func (s *recipeStore) Create(dbc dbctx.Context, r *types.Recipe) error {
	if r == nil || r.ID == uuid.Nil {
		return pkgerrors.ErrInvalidArgument
	}
	ctx := dbc.Context()
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	_, err := runWrite(ctx, s.client, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
MATCH (u:User {id: $user_id})
CREATE (r:Recipe {
  id: $id,
  user_id: $user_id,
  title: $title,
  description: $description,
  image: $image,
  created_at: $created_at,
  updated_at: $updated_at
})
CREATE (u)-[:HAS_RECIPE]->(r)
RETURN r.id AS id
`, map[string]any{
			"id":          r.ID.String(),
			"user_id":     r.UserID.String(),
			"title":       r.Title,
			"description": r.Description,
			"image":       r.Image,
			"created_at":  r.CreatedAt,
			"updated_at":  r.UpdatedAt,
		})
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, writeChildren(ctx, tx, r)
	})
	return err
}

func (s *recipeStore) queryRecipes(dbc dbctx.Context, cypher string, params map[string]any) ([]*types.Recipe, error) {
	ctx := dbc.Context()
	out, err := runRead(ctx, s.client, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, cypher, params)
		if err != nil {
			return nil, err
		}
		recipes := make([]*types.Recipe, 0, len(records))
		for _, rec := range records {
			r, err := recipeFromRecord(rec)
			if err != nil {
				return nil, err
			}
			recipes = append(recipes, r)
		}
		return recipes, nil
	})
	if err != nil {
		return nil, err
	}
	return out.([]*types.Recipe), nil
}

func (s *recipeStore) GetByIDs(dbc dbctx.Context, recipeIDs []uuid.UUID) ([]*types.Recipe, error) {
	if len(recipeIDs) == 0 {
		return []*types.Recipe{}, nil
	}
	return s.queryRecipes(dbc, `
MATCH (r:Recipe) WHERE r.id IN $ids
`+recipeReturn, map[string]any{"ids": uuidStrings(recipeIDs)})
}

func (s *recipeStore) GetByTitle(dbc dbctx.Context, title string) (*types.Recipe, error) {
	found, err := s.queryRecipes(dbc, `
MATCH (r:Recipe {title: $title})
`+recipeReturn+`
LIMIT 1
`, map[string]any{"title": title})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return found[0], nil
}

func (s *recipeStore) List(dbc dbctx.Context) ([]*types.Recipe, error) {
	return s.queryRecipes(dbc, `
MATCH (r:Recipe)
`+recipeReturn+`
ORDER BY r.created_at DESC, r.title ASC
`, nil)
}

func (s *recipeStore) ListByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.Recipe, error) {
	if len(userIDs) == 0 {
		return []*types.Recipe{}, nil
	}
	return s.queryRecipes(dbc, `
MATCH (u:User)-[:HAS_RECIPE]->(r:Recipe) WHERE u.id IN $ids
`+recipeReturn+`
ORDER BY r.created_at DESC, r.title ASC
`, map[string]any{"ids": uuidStrings(userIDs)})
}

func (s *recipeStore) TitleExists(dbc dbctx.Context, title string, excludeID uuid.UUID) (bool, error) {
	ctx := dbc.Context()
	out, err := runRead(ctx, s.client, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
MATCH (r:Recipe {title: $title})
WHERE r.id <> $exclude
RETURN count(r) AS n
`, map[string]any{"title": title, "exclude": excludeID.String()})
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return 0, nil
		}
		n, _ := records[0].Get("n")
		return asInt(n), nil
	})
	if err != nil {
		return false, err
	}
	return out.(int) > 0, nil
}

func (s *recipeStore) Replace(dbc dbctx.Context, r *types.Recipe) error {
	if r == nil || r.ID == uuid.Nil {
		return pkgerrors.ErrInvalidArgument
	}
	ctx := dbc.Context()
	r.UpdatedAt = time.Now().UTC()

	_, err := runWrite(ctx, s.client, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
MATCH (r:Recipe {id: $id})
SET r.title = $title,
    r.description = $description,
    r.image = $image,
    r.updated_at = $updated_at
RETURN r.id AS id
`, map[string]any{
			"id":          r.ID.String(),
			"title":       r.Title,
			"description": r.Description,
			"image":       r.Image,
			"updated_at":  r.UpdatedAt,
		})
		if err != nil {
			return nil, err
		}
		if len(records) == 0 {
			return nil, pkgerrors.ErrNotFound
		}

		previous, err := detachChildren(ctx, tx, []string{r.ID.String()})
		if err != nil {
			return nil, err
		}
		if err := writeChildren(ctx, tx, r); err != nil {
			return nil, err
		}
		return nil, deleteOrphanIngredients(ctx, tx, previous)
	})
	return err
}

func (s *recipeStore) DeleteByIDs(dbc dbctx.Context, recipeIDs []uuid.UUID) error {
	if len(recipeIDs) == 0 {
		return nil
	}
	ctx := dbc.Context()
	ids := uuidStrings(recipeIDs)

	_, err := runWrite(ctx, s.client, func(tx neo4j.ManagedTransaction) (any, error) {
		previous, err := detachChildren(ctx, tx, ids)
		if err != nil {
			return nil, err
		}
		if err := exec(ctx, tx, `
MATCH (r:Recipe) WHERE r.id IN $ids
DETACH DELETE r
`, map[string]any{"ids": ids}); err != nil {
			return nil, err
		}
		return nil, deleteOrphanIngredients(ctx, tx, previous)
	})
	return err
}

func (s *recipeStore) SearchByIngredients(dbc dbctx.Context, names []string, matchAll bool) ([]*types.RecipeMatch, error) {
	if len(names) == 0 {
		return []*types.RecipeMatch{}, nil
	}
	ctx := dbc.Context()
	out, err := runRead(ctx, s.client, func(tx neo4j.ManagedTransaction) (any, error) {
		records, err := collect(ctx, tx, `
MATCH (r:Recipe)-[h:HAS_INGREDIENT]->(g:Ingredient)
WHERE g.name IN $names
WITH r, g.name AS name, h.position AS position
ORDER BY position ASC
WITH r, collect(name) AS matched
WHERE NOT $match_all OR size(matched) = size($names)
RETURN r.id AS id, r.title AS title, r.image AS image, matched
`, map[string]any{"names": names, "match_all": matchAll})
		if err != nil {
			return nil, err
		}
		matches := make([]*types.RecipeMatch, 0, len(records))
		for _, rec := range records {
			m, err := matchFromRecord(rec)
			if err != nil {
				return nil, err
			}
			matches = append(matches, m)
		}
		return matches, nil
	})
	if err != nil {
		return nil, err
	}
	matches := out.([]*types.RecipeMatch)
	types.SortRecipeMatches(matches)
	return matches, nil
}

func writeChildren(ctx context.Context, tx neo4j.ManagedTransaction, r *types.Recipe) error {
	if len(r.Instructions) > 0 {
		if err := exec(ctx, tx, `
MATCH (r:Recipe {id: $id})
UNWIND $instructions AS ins
CREATE (i:Instruction {id: ins.id, recipe_id: $id, position: ins.position, step: ins.step})
CREATE (r)-[:HAS_INSTRUCTION {position: ins.position}]->(i)
`, map[string]any{"id": r.ID.String(), "instructions": instructionParams(r)}); err != nil {
			return err
		}
	}
	if len(r.Ingredients) > 0 {
		if err := exec(ctx, tx, `
MATCH (r:Recipe {id: $id})
UNWIND $ingredients AS ing
MERGE (g:Ingredient {name: ing.name})
CREATE (r)-[:HAS_INGREDIENT {position: ing.position}]->(g)
`, map[string]any{"id": r.ID.String(), "ingredients": ingredientParams(r)}); err != nil {
			return err
		}
	}
	return nil
}

// detachChildren deletes instruction nodes and ingredient links of the given
// recipes and returns the ingredient names that were linked.
func detachChildren(ctx context.Context, tx neo4j.ManagedTransaction, ids []string) ([]string, error) {
	records, err := collect(ctx, tx, `
MATCH (r:Recipe)-[h:HAS_INGREDIENT]->(g:Ingredient)
WHERE r.id IN $ids
WITH h, g.name AS name
DELETE h
RETURN collect(DISTINCT name) AS names
`, map[string]any{"ids": ids})
	if err != nil {
		return nil, err
	}
	var names []string
	if len(records) > 0 {
		raw, _ := records[0].Get("names")
		for _, n := range asList(raw) {
			names = append(names, asString(n))
		}
	}
	if err := exec(ctx, tx, `
MATCH (r:Recipe)-[:HAS_INSTRUCTION]->(i:Instruction)
WHERE r.id IN $ids
DETACH DELETE i
`, map[string]any{"ids": ids}); err != nil {
		return nil, err
	}
	return names, nil
}

func deleteOrphanIngredients(ctx context.Context, tx neo4j.ManagedTransaction, names []string) error {
	if len(names) == 0 {
		return nil
	}
	return exec(ctx, tx, `
UNWIND $names AS name
MATCH (g:Ingredient {name: name})
WHERE NOT (g)<-[:HAS_INGREDIENT]-()
DELETE g
`, map[string]any{"names": names})
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}
