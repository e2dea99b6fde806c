package recipe

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageLen caps the stored image reference (URL or data URI). It matches
// the max rule on Recipe.Image.
const MaxImageLen = 8 << 20

// Recipe is the full aggregate: the recipe row plus its ordered instructions and
// ingredients. Both stores load and save it as one unit.
type Recipe struct {
	ID           uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID     `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	Title        string        `gorm:"not null;uniqueIndex;column:title" json:"title" validate:"required,max=200"`
	Description  string        `gorm:"type:text;not null;column:description" json:"description" validate:"required,max=20000"`
	Image        string        `gorm:"type:text;column:image" json:"image" validate:"omitempty,max=8388608,image_ref"`
	Instructions []Instruction `gorm:"foreignKey:RecipeID" json:"instructions" validate:"min=1,max=200,dive"`
	Ingredients  []Ingredient  `gorm:"foreignKey:RecipeID" json:"ingredients" validate:"min=1,max=200,dive"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
}

func (Recipe) TableName() string { return "recipes" }

type Instruction struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_instruction_recipe_position,priority:1;column:recipe_id" json:"-"`
	Position int       `gorm:"not null;uniqueIndex:idx_instruction_recipe_position,priority:2;column:position" json:"position"`
	Step     string    `gorm:"type:text;not null;column:step" json:"step" validate:"required,max=4000"`
}

func (Instruction) TableName() string { return "recipe_instructions" }

type Ingredient struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	RecipeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_ingredient_recipe_name,priority:1;column:recipe_id" json:"-"`
	Position int       `gorm:"not null;column:position" json:"position"`
	Name     string    `gorm:"not null;uniqueIndex:idx_ingredient_recipe_name,priority:2;index:idx_ingredient_name;column:name" json:"name" validate:"required,max=200"`
}

func (Ingredient) TableName() string { return "recipe_ingredients" }

// Match is a search hit: the recipe headline plus the ingredients that matched.
type Match struct {
	RecipeID    uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Image       string    `json:"image"`
	Ingredients []string  `json:"ingredients"`
}

// SortMatches orders hits by matched ingredient count, most first, then title.
func SortMatches(ms []*Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		if len(ms[i].Ingredients) != len(ms[j].Ingredients) {
			return len(ms[i].Ingredients) > len(ms[j].Ingredients)
		}
		return ms[i].Title < ms[j].Title
	})
}

// NormalizeIngredientName lower-cases, trims, and collapses inner whitespace.
func NormalizeIngredientName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Tidy trims text fields, drops blank instructions and ingredients and
// renumbers positions from 0. Ingredient case and duplicates are kept.
func (r *Recipe) Tidy() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Image = strings.TrimSpace(r.Image)

	steps := make([]Instruction, 0, len(r.Instructions))
	for _, in := range r.Instructions {
		step := strings.TrimSpace(in.Step)
		if step == "" {
			continue
		}
		steps = append(steps, Instruction{ID: in.ID, RecipeID: in.RecipeID, Position: len(steps), Step: step})
	}
	r.Instructions = steps

	ings := make([]Ingredient, 0, len(r.Ingredients))
	for _, in := range r.Ingredients {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			continue
		}
		ings = append(ings, Ingredient{ID: in.ID, RecipeID: in.RecipeID, Position: len(ings), Name: name})
	}
	r.Ingredients = ings
}

// Normalize tidies the recipe, then lower-cases ingredient names and
// de-duplicates them (first wins). Stored recipes are always normalized.
func (r *Recipe) Normalize() {
	r.Tidy()

	seen := make(map[string]struct{}, len(r.Ingredients))
	ings := r.Ingredients[:0]
	for _, in := range r.Ingredients {
		name := NormalizeIngredientName(in.Name)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		in.Name = name
		in.Position = len(ings)
		ings = append(ings, in)
	}
	r.Ingredients = ings
}

// AssignIDs gives the recipe and every child row an id and points children at
// the recipe. Existing recipe ids are kept; child ids are always regenerated
// because children are replaced wholesale on update.
func (r *Recipe) AssignIDs() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	for i := range r.Instructions {
		r.Instructions[i].ID = uuid.New()
		r.Instructions[i].RecipeID = r.ID
	}
	for i := range r.Ingredients {
		r.Ingredients[i].ID = uuid.New()
		r.Ingredients[i].RecipeID = r.ID
	}
}

// IngredientNames returns the ingredient names in order.
func (r *Recipe) IngredientNames() []string {
	out := make([]string, 0, len(r.Ingredients))
	for _, in := range r.Ingredients {
		out = append(out, in.Name)
	}
	return out
}

// Steps returns the instruction texts in order.
func (r *Recipe) Steps() []string {
	out := make([]string, 0, len(r.Instructions))
	for _, in := range r.Instructions {
		out = append(out, in.Step)
	}
	return out
}
