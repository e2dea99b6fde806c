package app

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	"github.com/yungbote/recipebook-backend/internal/platform/apierr"
	"github.com/yungbote/recipebook-backend/internal/services"
)

type SeedFile struct {
	Users []SeedUser `yaml:"users"`
}

type SeedUser struct {
	Username string       `yaml:"username"`
	Email    string       `yaml:"email"`
	Password string       `yaml:"password"`
	Recipes  []SeedRecipe `yaml:"recipes"`
}

type SeedRecipe struct {
	Title        string   `yaml:"title"`
	Description  string   `yaml:"description"`
	Image        string   `yaml:"image"`
	Ingredients  []string `yaml:"ingredients"`
	Instructions []string `yaml:"instructions"`
}

type SeedResult struct {
	UsersCreated   int
	RecipesCreated int
	RecipesSkipped int
}

func LoadSeedFile(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var sf SeedFile
	if err := yaml.Unmarshal(raw, &sf); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &sf, nil
}

// Seed goes through the public services so seeded data obeys the same rules as
// API writes. Existing users are logged in instead of registered and recipes
// whose title is taken are skipped, so re-running a seed file is harmless.
func Seed(ctx context.Context, serviceset Services, sf *SeedFile) (SeedResult, error) {
	var res SeedResult
	if sf == nil {
		return res, nil
	}
	for _, su := range sf.Users {
		auth, created, err := seedLogin(ctx, serviceset.Auth, su)
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", su.Email, err)
		}
		if created {
			res.UsersCreated++
		}

		userCtx, err := serviceset.Auth.SetContextFromToken(ctx, auth.AccessToken)
		if err != nil {
			return res, fmt.Errorf("seed user %s: %w", su.Email, err)
		}
		for _, sr := range su.Recipes {
			_, err := serviceset.Recipe.CreateRecipe(dbctx.New(userCtx), sr.toRecipe())
			if err != nil {
				if ae, ok := apierr.As(err); ok && ae.Code == "title_taken" {
					res.RecipesSkipped++
					continue
				}
				return res, fmt.Errorf("seed recipe %q: %w", sr.Title, err)
			}
			res.RecipesCreated++
		}
	}
	return res, nil
}

func seedLogin(ctx context.Context, auth services.AuthService, su SeedUser) (*services.AuthResult, bool, error) {
	out, err := auth.Register(dbctx.New(ctx), services.RegisterInput{
		Username: su.Username,
		Email:    su.Email,
		Password: su.Password,
	})
	if err == nil {
		return out, true, nil
	}
	if ae, ok := apierr.As(err); !ok || ae.Code != "email_taken" {
		return nil, false, err
	}
	out, err = auth.Login(dbctx.New(ctx), services.LoginInput{Email: su.Email, Password: su.Password})
	return out, false, err
}

func (sr SeedRecipe) toRecipe() *types.Recipe {
	r := &types.Recipe{Title: sr.Title, Description: sr.Description, Image: sr.Image}
	for _, step := range sr.Instructions {
		r.Instructions = append(r.Instructions, types.Instruction{Step: step})
	}
	for _, name := range sr.Ingredients {
		r.Ingredients = append(r.Ingredients, types.Ingredient{Name: name})
	}
	return r
}
