package graph

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	types "github.com/yungbote/recipebook-backend/internal/domain"
)

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}

func asTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case neo4j.LocalDateTime:
		return t.Time().UTC()
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func asUUID(v any) (uuid.UUID, error) {
	s := asString(v)
	if s == "" {
		return uuid.Nil, fmt.Errorf("missing id")
	}
	return uuid.Parse(s)
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

func userParams(u *types.User) map[string]any {
	return map[string]any{
		"id":         u.ID.String(),
		"username":   u.Username,
		"email":      u.Email,
		"password":   u.Password,
		"created_at": u.CreatedAt.UTC(),
		"updated_at": u.UpdatedAt.UTC(),
	}
}

func userFromMap(m map[string]any) (*types.User, error) {
	id, err := asUUID(m["id"])
	if err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &types.User{
		ID:        id,
		Username:  asString(m["username"]),
		Email:     asString(m["email"]),
		Password:  asString(m["password"]),
		CreatedAt: asTime(m["created_at"]),
		UpdatedAt: asTime(m["updated_at"]),
	}, nil
}

func instructionParams(r *types.Recipe) []map[string]any {
	out := make([]map[string]any, 0, len(r.Instructions))
	for _, in := range r.Instructions {
		out = append(out, map[string]any{
			"id":       in.ID.String(),
			"position": int64(in.Position),
			"step":     in.Step,
		})
	}
	return out
}

func ingredientParams(r *types.Recipe) []map[string]any {
	out := make([]map[string]any, 0, len(r.Ingredients))
	for _, in := range r.Ingredients {
		out = append(out, map[string]any{
			"name":     in.Name,
			"position": int64(in.Position),
		})
	}
	return out
}

// recipeFromValues rebuilds the aggregate from the recipe projection and the
// two child lists returned by recipeReturn. Children are sorted by position.
func recipeFromValues(recipe map[string]any, instructions, ingredients []any) (*types.Recipe, error) {
	id, err := asUUID(recipe["id"])
	if err != nil {
		return nil, fmt.Errorf("decode recipe: %w", err)
	}
	userID, err := asUUID(recipe["user_id"])
	if err != nil {
		return nil, fmt.Errorf("decode recipe %s owner: %w", id, err)
	}
	r := &types.Recipe{
		ID:           id,
		UserID:       userID,
		Title:        asString(recipe["title"]),
		Description:  asString(recipe["description"]),
		Image:        asString(recipe["image"]),
		CreatedAt:    asTime(recipe["created_at"]),
		UpdatedAt:    asTime(recipe["updated_at"]),
		Instructions: make([]types.Instruction, 0, len(instructions)),
		Ingredients:  make([]types.Ingredient, 0, len(ingredients)),
	}
	for _, raw := range instructions {
		m := asMap(raw)
		if m == nil {
			continue
		}
		insID, _ := asUUID(m["id"])
		r.Instructions = append(r.Instructions, types.Instruction{
			ID:       insID,
			RecipeID: id,
			Position: asInt(m["position"]),
			Step:     asString(m["step"]),
		})
	}
	for _, raw := range ingredients {
		m := asMap(raw)
		if m == nil {
			continue
		}
		r.Ingredients = append(r.Ingredients, types.Ingredient{
			RecipeID: id,
			Position: asInt(m["position"]),
			Name:     asString(m["name"]),
		})
	}
	sort.SliceStable(r.Instructions, func(i, j int) bool { return r.Instructions[i].Position < r.Instructions[j].Position })
	sort.SliceStable(r.Ingredients, func(i, j int) bool { return r.Ingredients[i].Position < r.Ingredients[j].Position })
	return r, nil
}

func recipeFromRecord(rec *neo4j.Record) (*types.Recipe, error) {
	recipe, _ := rec.Get("recipe")
	instructions, _ := rec.Get("instructions")
	ingredients, _ := rec.Get("ingredients")
	return recipeFromValues(asMap(recipe), asList(instructions), asList(ingredients))
}

func matchFromRecord(rec *neo4j.Record) (*types.RecipeMatch, error) {
	rawID, _ := rec.Get("id")
	id, err := asUUID(rawID)
	if err != nil {
		return nil, fmt.Errorf("decode match: %w", err)
	}
	title, _ := rec.Get("title")
	image, _ := rec.Get("image")
	matched, _ := rec.Get("matched")
	names := make([]string, 0)
	for _, n := range asList(matched) {
		names = append(names, asString(n))
	}
	return &types.RecipeMatch{
		RecipeID:    id,
		Title:       asString(title),
		Image:       asString(image),
		Ingredients: names,
	}, nil
}
