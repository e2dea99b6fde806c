package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/recipebook-backend/internal/http/handlers"
	httpMW "github.com/yungbote/recipebook-backend/internal/http/middleware"
	"github.com/yungbote/recipebook-backend/internal/observability"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	TracingEnabled bool
	CORSOrigins    []string
	MaxBodyBytes   int64
	BreakerEnabled bool

	AuthMiddleware *httpMW.AuthMiddleware
	AuthHandler    *httpH.AuthHandler
	UserHandler    *httpH.UserHandler
	RecipeHandler  *httpH.RecipeHandler
	SearchHandler  *httpH.SearchHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.Correlate())
	r.Use(httpMW.AccessLog(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	api.Use(httpMW.BodyLimit(cfg.MaxBodyBytes))
	if cfg.BreakerEnabled {
		api.Use(httpMW.CircuitBreaker(httpMW.DefaultCircuitBreakerConfig("api"), cfg.Log, cfg.Metrics))
	}
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/users/register", cfg.AuthHandler.Register)
			api.POST("/users/login", cfg.AuthHandler.Login)
			api.POST("/users/refresh", cfg.AuthHandler.Refresh)
		}

		// Recipes (public reads)
		if cfg.RecipeHandler != nil {
			api.GET("/recipes", cfg.RecipeHandler.ListRecipes)
			api.GET("/recipes/:id", cfg.RecipeHandler.GetRecipe)
			api.GET("/recipes/:id/pdf", cfg.RecipeHandler.RecipePDF)
			api.GET("/recipes/:id/cover.png", cfg.RecipeHandler.RecipeCover)
			api.POST("/pdf/download-recipe", cfg.RecipeHandler.DownloadRecipePDF)
		}
		if cfg.UserHandler != nil {
			api.GET("/users/:userId/recipes", cfg.UserHandler.ListUserRecipes)
		}

		// Search
		if cfg.SearchHandler != nil {
			api.GET("/search", cfg.SearchHandler.SearchByIngredients)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/users/logout", cfg.AuthHandler.Logout)
		}

		// Users
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
			protected.GET("/users", cfg.UserHandler.ListUsers)
			protected.GET("/users/:userId", cfg.UserHandler.GetUser)
			protected.PUT("/users/:userId", cfg.UserHandler.UpdateUser)
		}

		// Recipes (owner writes)
		if cfg.RecipeHandler != nil {
			protected.POST("/recipes", cfg.RecipeHandler.CreateRecipe)
			protected.PUT("/recipes/:id", cfg.RecipeHandler.UpdateRecipe)
			protected.DELETE("/recipes/:id", cfg.RecipeHandler.DeleteRecipe)
		}
	}

	return r
}
