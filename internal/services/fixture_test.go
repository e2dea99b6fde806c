package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/recipebook-backend/internal/data/repos"
	"github.com/yungbote/recipebook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/observability"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	"github.com/yungbote/recipebook-backend/internal/platform/ctxutil"
)

type fixture struct {
	sessions repos.SessionRepo
	metrics  *observability.Metrics
	auth     AuthService
	users    UserService
	recipes  RecipeService
	search   SearchService
	export   ExportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithSessions(t, nil)
}

// newFixtureWithSessions lets a test wrap the session repo the auth service sees.
func newFixtureWithSessions(t *testing.T, wrap func(repos.SessionRepo) repos.SessionRepo) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	userRepo := repos.NewUserRepo(db, log)
	recipeRepo := repos.NewRecipeRepo(db, log)
	sessionRepo := repos.NewSessionRepo(db, log)
	if wrap != nil {
		sessionRepo = wrap(sessionRepo)
	}
	metrics := observability.NewMetrics("test")

	return &fixture{
		sessions: sessionRepo,
		metrics:  metrics,
		auth: NewAuthService(log, userRepo, sessionRepo, metrics, AuthConfig{
			AccessSecret:  "access-secret",
			RefreshSecret: "refresh-secret",
			AccessTTL:     time.Hour,
			RefreshTTL:    24 * time.Hour,
			BcryptCost:    bcrypt.MinCost,
		}),
		users:   NewUserService(log, userRepo, bcrypt.MinCost),
		recipes: NewRecipeService(log, userRepo, recipeRepo, metrics),
		search:  NewSearchService(log, recipeRepo, metrics),
		export:  NewExportService(log, metrics),
	}
}

func anon() dbctx.Context { return dbctx.New(context.Background()) }

func callerCtx(userID uuid.UUID) dbctx.Context {
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID})
	return dbctx.New(ctx)
}

func (f *fixture) register(t *testing.T, username, email string) *AuthResult {
	t.Helper()
	res, err := f.auth.Register(anon(), RegisterInput{Username: username, Email: email, Password: "secret1"})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return res
}

func recipeInput(title string, ingredients ...string) *types.Recipe {
	r := &types.Recipe{
		Title:        title,
		Description:  "How to make " + title,
		Instructions: []types.Instruction{{Step: "prepare"}, {Step: "cook"}},
	}
	for _, name := range ingredients {
		r.Ingredients = append(r.Ingredients, types.Ingredient{Name: name})
	}
	return r
}
