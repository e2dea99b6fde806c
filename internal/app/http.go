package app

import (
	"github.com/yungbote/recipebook-backend/internal/http"
	httpH "github.com/yungbote/recipebook-backend/internal/http/handlers"
	httpMW "github.com/yungbote/recipebook-backend/internal/http/middleware"
	"github.com/yungbote/recipebook-backend/internal/observability"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	Auth   *httpH.AuthHandler
	User   *httpH.UserHandler
	Recipe *httpH.RecipeHandler
	Search *httpH.SearchHandler
}

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

func wireHandlers(log *logger.Logger, cfg Config, serviceset Services, store httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(store),
		Auth:   httpH.NewAuthHandler(serviceset.Auth, cfg.CookieSecure),
		User:   httpH.NewUserHandler(serviceset.User, serviceset.Recipe),
		Recipe: httpH.NewRecipeHandler(serviceset.Recipe, serviceset.Export),
		Search: httpH.NewSearchHandler(serviceset.Search),
	}
}

func wireMiddleware(log *logger.Logger, serviceset Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, serviceset.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(log, ":"+cfg.Port, cfg.ShutdownTimeout, http.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.ServiceName,
		TracingEnabled: cfg.OtelEnabled,
		CORSOrigins:    cfg.CORSOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		BreakerEnabled: cfg.BreakerEnabled,
		AuthMiddleware: middleware.Auth,
		AuthHandler:    handlers.Auth,
		UserHandler:    handlers.User,
		RecipeHandler:  handlers.Recipe,
		SearchHandler:  handlers.Search,
		HealthHandler:  handlers.Health,
	})
}
