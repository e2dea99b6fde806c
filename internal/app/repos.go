package app

import (
	"github.com/yungbote/recipebook-backend/internal/data/graph"
	"github.com/yungbote/recipebook-backend/internal/data/repos"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

type Repos struct {
	User    repos.UserRepo
	Recipe  repos.RecipeRepo
	Session repos.SessionRepo
}

// wireRepos picks the store for users and recipes, then the session store:
// Redis when configured, else the relational table, else process memory.
func wireRepos(clients Clients, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	var out Repos

	switch {
	case clients.Neo4j != nil:
		out.User = graph.NewUserStore(clients.Neo4j, log)
		out.Recipe = graph.NewRecipeStore(clients.Neo4j, log)
	case clients.SQL != nil:
		out.User = repos.NewUserRepo(clients.SQL.DB(), log)
		out.Recipe = repos.NewRecipeRepo(clients.SQL.DB(), log)
	}

	switch {
	case clients.Redis != nil:
		log.Info("Session store: redis")
		out.Session = repos.NewRedisSessionRepo(clients.Redis, log)
	case clients.SQL != nil:
		log.Info("Session store: sql")
		out.Session = repos.NewSessionRepo(clients.SQL.DB(), log)
	default:
		log.Warn("Session store: in-memory (refresh tokens do not survive restarts)")
		out.Session = repos.NewMemorySessionRepo(log)
	}
	return out
}
