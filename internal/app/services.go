package app

import (
	"github.com/yungbote/recipebook-backend/internal/observability"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
	"github.com/yungbote/recipebook-backend/internal/services"
)

type Services struct {
	Auth   services.AuthService
	User   services.UserService
	Recipe services.RecipeService
	Search services.SearchService
	Export services.ExportService
}

func wireServices(log *logger.Logger, cfg Config, reposet Repos, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	return Services{
		Auth: services.NewAuthService(log, reposet.User, reposet.Session, metrics, services.AuthConfig{
			AccessSecret:  cfg.JWTSecret,
			RefreshSecret: cfg.JWTRefreshSecret,
			AccessTTL:     cfg.AccessTokenTTL,
			RefreshTTL:    cfg.RefreshTokenTTL,
			BcryptCost:    cfg.BcryptCost,
		}),
		User:   services.NewUserService(log, reposet.User, cfg.BcryptCost),
		Recipe: services.NewRecipeService(log, reposet.User, reposet.Recipe, metrics),
		Search: services.NewSearchService(log, reposet.Recipe, metrics),
		Export: services.NewExportService(log, metrics),
	}
}
