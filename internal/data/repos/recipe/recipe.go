package recipe

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/recipebook-backend/internal/data/db"
	types "github.com/yungbote/recipebook-backend/internal/domain"
	"github.com/yungbote/recipebook-backend/internal/pkg/dbctx"
	pkgerrors "github.com/yungbote/recipebook-backend/internal/pkg/errors"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

type RecipeRepo interface {
	Create(dbc dbctx.Context, r *types.Recipe) error
	GetByIDs(dbc dbctx.Context, recipeIDs []uuid.UUID) ([]*types.Recipe, error)
	GetByTitle(dbc dbctx.Context, title string) (*types.Recipe, error)
	List(dbc dbctx.Context) ([]*types.Recipe, error)
	ListByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.Recipe, error)
	TitleExists(dbc dbctx.Context, title string, excludeID uuid.UUID) (bool, error)
	Replace(dbc dbctx.Context, r *types.Recipe) error
	DeleteByIDs(dbc dbctx.Context, recipeIDs []uuid.UUID) error
	SearchByIngredients(dbc dbctx.Context, names []string, matchAll bool) ([]*types.RecipeMatch, error)
}

type recipeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeRepo(db *gorm.DB, baseLog *logger.Logger) RecipeRepo {
	repoLog := baseLog.With("repo", "RecipeRepo")
	return &recipeRepo{db: db, log: repoLog}
}

// Create inserts the recipe row and its child rows in one transaction.
// Callers normalize and assign ids first.
func (rr *recipeRepo) Create(dbc dbctx.Context, r *types.Recipe) error {
	if r == nil {
		return pkgerrors.ErrInvalidArgument
	}
	now := time.Now().UTC()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now

	err := dbc.DB(rr.db).Transaction(func(txx *gorm.DB) error {
		if err := txx.Omit(clause.Associations).Create(r).Error; err != nil {
			return err
		}
		return insertChildren(txx, r)
	})
	return db.TranslateError(err)
}

func (rr *recipeRepo) GetByIDs(dbc dbctx.Context, recipeIDs []uuid.UUID) ([]*types.Recipe, error) {
	var results []*types.Recipe
	if len(recipeIDs) == 0 {
		return results, nil
	}
	if err := withChildren(dbc.DB(rr.db)).
		Where("id IN ?", recipeIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetByTitle returns ErrNotFound when no recipe has exactly this title.
func (rr *recipeRepo) GetByTitle(dbc dbctx.Context, title string) (*types.Recipe, error) {
	var results []*types.Recipe
	if err := withChildren(dbc.DB(rr.db)).
		Where("title = ?", title).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return results[0], nil
}

func (rr *recipeRepo) List(dbc dbctx.Context) ([]*types.Recipe, error) {
	var results []*types.Recipe
	if err := withChildren(dbc.DB(rr.db)).
		Order("created_at DESC").
		Order("title ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recipeRepo) ListByUserIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.Recipe, error) {
	var results []*types.Recipe
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := withChildren(dbc.DB(rr.db)).
		Where("user_id IN ?", userIDs).
		Order("created_at DESC").
		Order("title ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recipeRepo) TitleExists(dbc dbctx.Context, title string, excludeID uuid.UUID) (bool, error) {
	var count int64
	q := dbc.DB(rr.db).
		Model(&types.Recipe{}).
		Where("title = ?", title)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Replace overwrites the recipe columns and swaps the full child lists.
// The recipe id, owner and creation time are kept.
func (rr *recipeRepo) Replace(dbc dbctx.Context, r *types.Recipe) error {
	if r == nil || r.ID == uuid.Nil {
		return pkgerrors.ErrInvalidArgument
	}
	r.UpdatedAt = time.Now().UTC()

	err := dbc.DB(rr.db).Transaction(func(txx *gorm.DB) error {
		res := txx.Model(&types.Recipe{}).
			Where("id = ?", r.ID).
			Updates(map[string]any{
				"title":       r.Title,
				"description": r.Description,
				"image":       r.Image,
				"updated_at":  r.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgerrors.ErrNotFound
		}
		if err := deleteChildren(txx, []uuid.UUID{r.ID}); err != nil {
			return err
		}
		return insertChildren(txx, r)
	})
	return db.TranslateError(err)
}

func (rr *recipeRepo) DeleteByIDs(dbc dbctx.Context, recipeIDs []uuid.UUID) error {
	if len(recipeIDs) == 0 {
		return nil
	}
	return dbc.DB(rr.db).Transaction(func(txx *gorm.DB) error {
		if err := deleteChildren(txx, recipeIDs); err != nil {
			return err
		}
		return txx.Where("id IN ?", recipeIDs).Delete(&types.Recipe{}).Error
	})
}

type ingredientHit struct {
	RecipeID uuid.UUID
	Name     string
}

// SearchByIngredients expects normalized, de-duplicated names. With matchAll a
// recipe must contain every name; otherwise any one is enough.
func (rr *recipeRepo) SearchByIngredients(dbc dbctx.Context, names []string, matchAll bool) ([]*types.RecipeMatch, error) {
	out := []*types.RecipeMatch{}
	if len(names) == 0 {
		return out, nil
	}

	transaction := dbc.DB(rr.db)

	var hits []ingredientHit
	if err := transaction.
		Model(&types.Ingredient{}).
		Select("recipe_id, name").
		Where("name IN ?", names).
		Order("recipe_id ASC").
		Order("position ASC").
		Scan(&hits).Error; err != nil {
		return nil, err
	}

	matched := map[uuid.UUID][]string{}
	var order []uuid.UUID
	for _, h := range hits {
		if _, ok := matched[h.RecipeID]; !ok {
			order = append(order, h.RecipeID)
		}
		matched[h.RecipeID] = append(matched[h.RecipeID], h.Name)
	}

	ids := make([]uuid.UUID, 0, len(order))
	for _, id := range order {
		if matchAll && len(matched[id]) < len(names) {
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return out, nil
	}

	var heads []*types.Recipe
	if err := transaction.
		Select("id", "title", "image").
		Where("id IN ?", ids).
		Find(&heads).Error; err != nil {
		return nil, err
	}
	for _, h := range heads {
		out = append(out, &types.RecipeMatch{
			RecipeID:    h.ID,
			Title:       h.Title,
			Image:       h.Image,
			Ingredients: matched[h.ID],
		})
	}
	types.SortRecipeMatches(out)
	return out, nil
}

func withChildren(q *gorm.DB) *gorm.DB {
	return q.
		Preload("Instructions", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Ingredients", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func insertChildren(txx *gorm.DB, r *types.Recipe) error {
	if len(r.Instructions) > 0 {
		if err := txx.Create(&r.Instructions).Error; err != nil {
			return err
		}
	}
	if len(r.Ingredients) > 0 {
		if err := txx.Create(&r.Ingredients).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteChildren(txx *gorm.DB, recipeIDs []uuid.UUID) error {
	if err := txx.Where("recipe_id IN ?", recipeIDs).Delete(&types.Instruction{}).Error; err != nil {
		return err
	}
	return txx.Where("recipe_id IN ?", recipeIDs).Delete(&types.Ingredient{}).Error
}
