package repos

import (
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/recipebook-backend/internal/data/repos/auth"
	"github.com/yungbote/recipebook-backend/internal/data/repos/recipe"
	"github.com/yungbote/recipebook-backend/internal/data/repos/user"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type RecipeRepo = recipe.RecipeRepo
type SessionRepo = auth.SessionRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewRecipeRepo(db *gorm.DB, baseLog *logger.Logger) RecipeRepo {
	return recipe.NewRecipeRepo(db, baseLog)
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
	return auth.NewSessionRepo(db, baseLog)
}
func NewMemorySessionRepo(baseLog *logger.Logger) SessionRepo {
	return auth.NewMemorySessionRepo(baseLog)
}
func NewRedisSessionRepo(rdb goredis.UniversalClient, baseLog *logger.Logger) SessionRepo {
	return auth.NewRedisSessionRepo(rdb, baseLog)
}
