package recipe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/recipebook-backend/internal/data/repos/testutil"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
)

func newRecipe(userID uuid.UUID, title string, steps []string, ingredients []string) *types.Recipe {
	r := &types.Recipe{UserID: userID, Title: title, Description: "desc " + title}
	for _, s := range steps {
		r.Instructions = append(r.Instructions, types.Instruction{Step: s})
	}
	for _, n := range ingredients {
		r.Ingredients = append(r.Ingredients, types.Ingredient{Name: n})
	}
	r.Normalize()
	r.AssignIDs()
	return r
}

func TestRecipeRepoCreateAndGet(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRecipeRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	u := testutil.SeedUser(t, ctx, db, "owner@example.com")
	r := newRecipe(u.ID, "Pancakes", []string{"whisk", "fry", "flip"}, []string{"Flour", "egg", "milk"})
	if err := repo.Create(dbc, r); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByIDs(dbc, []uuid.UUID{r.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("GetByIDs: expected 1 recipe, got %d", len(got))
	}
	if steps := got[0].Steps(); len(steps) != 3 || steps[0] != "whisk" || steps[2] != "flip" {
		t.Fatalf("GetByIDs: instructions out of order: %v", steps)
	}
	if names := got[0].IngredientNames(); len(names) != 3 || names[0] != "flour" {
		t.Fatalf("GetByIDs: unexpected ingredients: %v", names)
	}

	byTitle, err := repo.GetByTitle(dbc, "Pancakes")
	if err != nil {
		t.Fatalf("GetByTitle: %v", err)
	}
	if byTitle.ID != r.ID {
		t.Fatalf("GetByTitle: got %s, want %s", byTitle.ID, r.ID)
	}

	if _, err := repo.GetByTitle(dbc, "Waffles"); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("GetByTitle missing: expected ErrNotFound, got %v", err)
	}

	dup := newRecipe(u.ID, "Pancakes", []string{"x"}, []string{"y"})
	if err := repo.Create(dbc, dup); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("Create duplicate title: expected ErrConflict, got %v", err)
	}
}

func TestRecipeRepoListOrdering(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRecipeRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	alice := testutil.SeedUser(t, ctx, db, "alice@example.com")
	bob := testutil.SeedUser(t, ctx, db, "bob@example.com")
	base := time.Now().UTC().Add(-time.Hour)
	old := testutil.SeedRecipe(t, ctx, db, alice.ID, "Old", base, "salt")
	mid := testutil.SeedRecipe(t, ctx, db, bob.ID, "Mid", base.Add(time.Minute), "salt")
	fresh := testutil.SeedRecipe(t, ctx, db, alice.ID, "Fresh", base.Add(2*time.Minute), "salt")

	all, err := repo.List(dbc)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].ID != fresh.ID || all[1].ID != mid.ID || all[2].ID != old.ID {
		t.Fatalf("List: expected newest first, got %+v", all)
	}
	if len(all[0].Ingredients) != 1 {
		t.Fatalf("List: children not loaded")
	}

	mine, err := repo.ListByUserIDs(dbc, []uuid.UUID{alice.ID})
	if err != nil {
		t.Fatalf("ListByUserIDs: %v", err)
	}
	if len(mine) != 2 || mine[0].ID != fresh.ID || mine[1].ID != old.ID {
		t.Fatalf("ListByUserIDs: unexpected result: %+v", mine)
	}
}

func TestRecipeRepoReplaceKeepsID(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRecipeRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	u := testutil.SeedUser(t, ctx, db, "owner@example.com")
	orig := testutil.SeedRecipe(t, ctx, db, u.ID, "Stew", time.Now().UTC(), "beef", "carrot")
	other := testutil.SeedRecipe(t, ctx, db, u.ID, "Salad", time.Now().UTC(), "lettuce")

	exists, err := repo.TitleExists(dbc, "Stew", orig.ID)
	if err != nil {
		t.Fatalf("TitleExists: %v", err)
	}
	if exists {
		t.Fatalf("TitleExists: own title should be excluded")
	}
	exists, err = repo.TitleExists(dbc, "Salad", orig.ID)
	if err != nil || !exists {
		t.Fatalf("TitleExists: expected other title to exist: %v %v", exists, err)
	}

	updated := newRecipe(u.ID, "Hearty Stew", []string{"brown", "simmer"}, []string{"beef", "potato", "onion"})
	updated.ID = orig.ID
	updated.AssignIDs()
	if err := repo.Replace(dbc, updated); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	got, err := repo.GetByIDs(dbc, []uuid.UUID{orig.ID})
	if err != nil || len(got) != 1 {
		t.Fatalf("GetByIDs after replace: %v %+v", err, got)
	}
	if got[0].Title != "Hearty Stew" || len(got[0].Instructions) != 2 || len(got[0].Ingredients) != 3 {
		t.Fatalf("Replace: unexpected aggregate: %+v", got[0])
	}

	clash := newRecipe(u.ID, other.Title, []string{"x"}, []string{"y"})
	clash.ID = orig.ID
	clash.AssignIDs()
	if err := repo.Replace(dbc, clash); !errors.Is(err, pkgerrors.ErrConflict) {
		t.Fatalf("Replace onto taken title: expected ErrConflict, got %v", err)
	}

	missing := newRecipe(u.ID, "Ghost", []string{"x"}, []string{"y"})
	if err := repo.Replace(dbc, missing); !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("Replace missing: expected ErrNotFound, got %v", err)
	}
}

func TestRecipeRepoDelete(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRecipeRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	u := testutil.SeedUser(t, ctx, db, "owner@example.com")
	r := testutil.SeedRecipe(t, ctx, db, u.ID, "Toast", time.Now().UTC(), "bread")

	if err := repo.DeleteByIDs(dbc, []uuid.UUID{r.ID}); err != nil {
		t.Fatalf("DeleteByIDs: %v", err)
	}
	got, err := repo.GetByIDs(dbc, []uuid.UUID{r.ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("DeleteByIDs: recipe still present")
	}

	var orphans int64
	if err := db.Model(&types.Ingredient{}).Where("recipe_id = ?", r.ID).Count(&orphans).Error; err != nil {
		t.Fatalf("count ingredients: %v", err)
	}
	if orphans != 0 {
		t.Fatalf("DeleteByIDs: %d ingredient rows left behind", orphans)
	}
}

func TestRecipeRepoSearchByIngredients(t *testing.T) {
	db := testutil.DB(t)
	repo := NewRecipeRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.New(ctx)

	u := testutil.SeedUser(t, ctx, db, "cook@example.com")
	now := time.Now().UTC()
	testutil.SeedRecipe(t, ctx, db, u.ID, "Omelette", now, "egg", "butter", "chives")
	testutil.SeedRecipe(t, ctx, db, u.ID, "Cake", now, "egg", "flour", "sugar", "butter")
	testutil.SeedRecipe(t, ctx, db, u.ID, "Bread", now, "flour", "yeast")

	anyHits, err := repo.SearchByIngredients(dbc, []string{"egg", "butter"}, false)
	if err != nil {
		t.Fatalf("SearchByIngredients any: %v", err)
	}
	if len(anyHits) != 2 {
		t.Fatalf("SearchByIngredients any: expected 2 hits, got %d", len(anyHits))
	}
	if anyHits[0].Title != "Cake" || anyHits[1].Title != "Omelette" {
		t.Fatalf("SearchByIngredients any: expected title order on ties, got %s, %s", anyHits[0].Title, anyHits[1].Title)
	}

	allHits, err := repo.SearchByIngredients(dbc, []string{"flour", "yeast"}, true)
	if err != nil {
		t.Fatalf("SearchByIngredients all: %v", err)
	}
	if len(allHits) != 1 || allHits[0].Title != "Bread" {
		t.Fatalf("SearchByIngredients all: unexpected hits: %+v", allHits)
	}

	partial, err := repo.SearchByIngredients(dbc, []string{"flour", "sugar"}, false)
	if err != nil {
		t.Fatalf("SearchByIngredients ranking: %v", err)
	}
	if len(partial) != 2 || partial[0].Title != "Cake" || len(partial[0].Ingredients) != 2 {
		t.Fatalf("SearchByIngredients ranking: unexpected hits: %+v", partial)
	}

	none, err := repo.SearchByIngredients(dbc, []string{"saffron"}, false)
	if err != nil {
		t.Fatalf("SearchByIngredients none: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("SearchByIngredients none: expected no hits, got %d", len(none))
	}
}
