package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/recipebook-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Username: "user-" + email,
		Email:    email,
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedRecipe inserts a normalized recipe with the given ingredients and a
// single instruction. createdAt orders list results.
func SeedRecipe(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title string, createdAt time.Time, ingredients ...string) *types.Recipe {
	tb.Helper()
	r := &types.Recipe{
		UserID:       userID,
		Title:        title,
		Description:  fmt.Sprintf("how to make %s", title),
		Instructions: []types.Instruction{{Step: "mix"}},
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	for _, name := range ingredients {
		r.Ingredients = append(r.Ingredients, types.Ingredient{Name: name})
	}
	r.Normalize()
	r.AssignIDs()
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed recipe: %v", err)
	}
	return r
}
