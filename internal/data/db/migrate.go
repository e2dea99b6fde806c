package db

import (
	"fmt"

	types "github.com/yungbote/recipebook-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		// =========================
		// Identity
		// =========================
		&types.User{},
		&types.Session{},

		// =========================
		// Recipes
		// =========================
		&types.Recipe{},
		&types.Instruction{},
		&types.Ingredient{},
	)
}

// EnsureRecipeIndexes adds the lookups AutoMigrate cannot express portably.
func EnsureRecipeIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_recipes_created_at
		ON recipes (created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_recipes_created_at: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_recipes_user_created_at
		ON recipes (user_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_recipes_user_created_at: %w", err)
	}
	return nil
}

func (s *Service) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...", "driver", s.driver)
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureRecipeIndexes(s.db); err != nil {
		s.log.Error("Recipe index migration failed", "error", err)
		return err
	}
	return nil
}
