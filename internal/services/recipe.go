package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/recipebook-backend/internal/data/repos"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/observability"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
	"github.com/yungbote/recipebook-backend/internal/pkg/validation"
	"github.com/yungbote/recipebook-backend/internal/platform/apierr"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

type UserRecipes struct {
	User    *types.User     `json:"user"`
	Recipes []*types.Recipe `json:"recipes"`
}

type RecipeService interface {
	CreateRecipe(dbc dbctx.Context, in *types.Recipe) (*types.Recipe, error)
	GetRecipe(dbc dbctx.Context, recipeID uuid.UUID) (*types.Recipe, error)
	GetRecipeByTitle(dbc dbctx.Context, title string) (*types.Recipe, error)
	ListRecipes(dbc dbctx.Context) ([]*types.Recipe, error)
	ListUserRecipes(dbc dbctx.Context, userID uuid.UUID) (*UserRecipes, error)
	UpdateRecipe(dbc dbctx.Context, recipeID uuid.UUID, in *types.Recipe) (*types.Recipe, error)
	DeleteRecipe(dbc dbctx.Context, recipeID uuid.UUID) error
}

type recipeService struct {
	log        *logger.Logger
	userRepo   repos.UserRepo
	recipeRepo repos.RecipeRepo
	metrics    *observability.Metrics
}

func NewRecipeService(log *logger.Logger, userRepo repos.UserRepo, recipeRepo repos.RecipeRepo, metrics *observability.Metrics) RecipeService {
	serviceLog := log.With("service", "RecipeService")
	return &recipeService{
		log:        serviceLog,
		userRepo:   userRepo,
		recipeRepo: recipeRepo,
		metrics:    metrics,
	}
}

var (
	errRecipeNotFound = errors.New("recipe does not exist")
	errTitleTaken     = errors.New("a recipe with this title already exists")
)

func (rs *recipeService) CreateRecipe(dbc dbctx.Context, in *types.Recipe) (*types.Recipe, error) {
	callerID, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	r, err := rs.prepare(in)
	if err != nil {
		return nil, err
	}
	r.UserID = callerID

	taken, err := rs.recipeRepo.TitleExists(dbc, r.Title, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check title: %w", err)
	}
	if taken {
		return nil, apierr.Conflict("title_taken", errTitleTaken)
	}

	r.AssignIDs()
	if err := rs.recipeRepo.Create(dbc, r); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrConflict):
			return nil, apierr.Conflict("title_taken", errTitleTaken)
		case errors.Is(err, pkgerrors.ErrNotFound):
			return nil, apierr.NotFound("user_not_found", errors.New("owner does not exist"))
		}
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	rs.metrics.IncRecipeWrite("create")
	rs.log.Info("Recipe created", "recipe_id", r.ID, "user_id", r.UserID)
	return r, nil
}

func (rs *recipeService) GetRecipe(dbc dbctx.Context, recipeID uuid.UUID) (*types.Recipe, error) {
	found, err := rs.recipeRepo.GetByIDs(dbc, []uuid.UUID{recipeID})
	if err != nil {
		return nil, fmt.Errorf("error fetching recipe: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, apierr.NotFound("recipe_not_found", errRecipeNotFound)
	}
	return found[0], nil
}

func (rs *recipeService) GetRecipeByTitle(dbc dbctx.Context, title string) (*types.Recipe, error) {
	r, err := rs.recipeRepo.GetByTitle(dbc, title)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrNotFound) {
			return nil, apierr.NotFound("recipe_not_found", errRecipeNotFound)
		}
		return nil, fmt.Errorf("error fetching recipe by title: %w", err)
	}
	return r, nil
}

func (rs *recipeService) ListRecipes(dbc dbctx.Context) ([]*types.Recipe, error) {
	recipes, err := rs.recipeRepo.List(dbc)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (rs *recipeService) ListUserRecipes(dbc dbctx.Context, userID uuid.UUID) (*UserRecipes, error) {
	users, err := rs.userRepo.GetByIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if len(users) == 0 || users[0] == nil {
		return nil, apierr.NotFound("user_not_found", errors.New("user does not exist"))
	}
	recipes, err := rs.recipeRepo.ListByUserIDs(dbc, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("list user recipes: %w", err)
	}
	return &UserRecipes{User: users[0], Recipes: recipes}, nil
}

// UpdateRecipe replaces the aggregate in place; id, owner and creation time survive.
func (rs *recipeService) UpdateRecipe(dbc dbctx.Context, recipeID uuid.UUID, in *types.Recipe) (*types.Recipe, error) {
	existing, err := rs.ownedRecipe(dbc, recipeID)
	if err != nil {
		return nil, err
	}
	r, err := rs.prepare(in)
	if err != nil {
		return nil, err
	}
	r.ID = existing.ID
	r.UserID = existing.UserID
	r.CreatedAt = existing.CreatedAt

	taken, err := rs.recipeRepo.TitleExists(dbc, r.Title, r.ID)
	if err != nil {
		return nil, fmt.Errorf("check title: %w", err)
	}
	if taken {
		return nil, apierr.Conflict("title_taken", errTitleTaken)
	}

	r.AssignIDs()
	if err := rs.recipeRepo.Replace(dbc, r); err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrConflict):
			return nil, apierr.Conflict("title_taken", errTitleTaken)
		case errors.Is(err, pkgerrors.ErrNotFound):
			return nil, apierr.NotFound("recipe_not_found", errRecipeNotFound)
		}
		return nil, fmt.Errorf("replace recipe: %w", err)
	}
	rs.metrics.IncRecipeWrite("update")
	rs.log.Info("Recipe updated", "recipe_id", r.ID)
	return r, nil
}

func (rs *recipeService) DeleteRecipe(dbc dbctx.Context, recipeID uuid.UUID) error {
	existing, err := rs.ownedRecipe(dbc, recipeID)
	if err != nil {
		return err
	}
	if err := rs.recipeRepo.DeleteByIDs(dbc, []uuid.UUID{existing.ID}); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	rs.metrics.IncRecipeWrite("delete")
	rs.log.Info("Recipe deleted", "recipe_id", existing.ID)
	return nil
}

// ownedRecipe loads a recipe the caller is allowed to modify.
func (rs *recipeService) ownedRecipe(dbc dbctx.Context, recipeID uuid.UUID) (*types.Recipe, error) {
	callerID, err := requireCaller(dbc)
	if err != nil {
		return nil, err
	}
	existing, err := rs.GetRecipe(dbc, recipeID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != callerID {
		return nil, apierr.Forbidden("forbidden", errors.New("only the owner can modify this recipe"))
	}
	return existing, nil
}

// prepare copies the client-controlled fields, normalizes and validates them.
func (rs *recipeService) prepare(in *types.Recipe) (*types.Recipe, error) {
	if in == nil {
		return nil, apierr.BadRequest("invalid_request", errors.New("recipe body required"))
	}
	r := &types.Recipe{
		Title:        in.Title,
		Description:  in.Description,
		Image:        in.Image,
		Instructions: append([]types.Instruction(nil), in.Instructions...),
		Ingredients:  append([]types.Ingredient(nil), in.Ingredients...),
	}
	r.Normalize()
	if vErr := validation.Struct(r); vErr != nil {
		return nil, apierr.BadRequest("invalid_request", vErr)
	}
	return r, nil
}
