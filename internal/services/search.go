package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/recipebook-backend/internal/data/repos"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/observability"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	"github.com/yungbote/recipebook-backend/internal/platform/apierr"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

const (
	SearchModeAny = "any"
	SearchModeAll = "all"
)

type SearchService interface {
	SearchByIngredients(dbc dbctx.Context, raw []string, mode string) ([]*types.RecipeMatch, error)
}

type searchService struct {
	log        *logger.Logger
	recipeRepo repos.RecipeRepo
	metrics    *observability.Metrics
}

func NewSearchService(log *logger.Logger, recipeRepo repos.RecipeRepo, metrics *observability.Metrics) SearchService {
	serviceLog := log.With("service", "SearchService")
	return &searchService{log: serviceLog, recipeRepo: recipeRepo, metrics: metrics}
}

// ParseIngredients accepts repeated values, comma separated values or both,
// and returns normalized names in first-seen order.
func ParseIngredients(raw []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, v := range raw {
		for _, part := range strings.Split(v, ",") {
			name := types.NormalizeIngredientName(part)
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

func (ss *searchService) SearchByIngredients(dbc dbctx.Context, raw []string, mode string) ([]*types.RecipeMatch, error) {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode == "" {
		mode = SearchModeAny
	}
	if mode != SearchModeAny && mode != SearchModeAll {
		return nil, apierr.BadRequest("invalid_mode", fmt.Errorf("mode must be %q or %q", SearchModeAny, SearchModeAll))
	}
	names := ParseIngredients(raw)
	if len(names) == 0 {
		return nil, apierr.BadRequest("ingredients_required", errors.New("at least one ingredient is required"))
	}

	hits, err := ss.recipeRepo.SearchByIngredients(dbc, names, mode == SearchModeAll)
	ss.metrics.ObserveSearch(mode, len(hits), err)
	if err != nil {
		return nil, fmt.Errorf("search by ingredients: %w", err)
	}
	if len(hits) == 0 {
		return nil, apierr.NotFound("no_recipes_found", errors.New("no recipes found with the given ingredients"))
	}
	ss.log.Debug("Ingredient search", "mode", mode, "ingredients", len(names), "hits", len(hits))
	return hits, nil
}
