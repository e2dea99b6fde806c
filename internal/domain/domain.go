package domain

import (
	"github.com/yungbote/recipebook-backend/internal/domain/auth"
	"github.com/yungbote/recipebook-backend/internal/domain/recipe"
	"github.com/yungbote/recipebook-backend/internal/domain/user"
)

type User = user.User
type Session = auth.Session

type Recipe = recipe.Recipe
type Instruction = recipe.Instruction
type Ingredient = recipe.Ingredient
type RecipeMatch = recipe.Match

const MaxRecipeImageLen = recipe.MaxImageLen

var (
	NormalizeEmail          = user.NormalizeEmail
	NormalizeIngredientName = recipe.NormalizeIngredientName
	SortRecipeMatches       = recipe.SortMatches
)
