package repository

import (
	"context"

	"recipebox/internal/models"
	"recipebox/internal/observability"

	"gorm.io/gorm"
)

// RecipeRepository defines persistence operations for recipes.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *models.Recipe) error
	List(ctx context.Context) ([]models.Recipe, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type recipeRepository struct {
	db *gorm.DB
}

// NewRecipeRepository returns a new RecipeRepository implementation.
func NewRecipeRepository(db *gorm.DB) RecipeRepository {
	return &recipeRepository{db: db}
}

// Create inserts recipe and reloads it with its owner.
func (r *recipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	defer observability.TrackQuery("insert", "recipes")()

	db := r.db.WithContext(ctx)
	if err := db.Omit("User").Create(recipe).Error; err != nil {
		return wrap(err)
	}
	if err := db.Preload("User", ownerColumns).First(recipe, recipe.ID).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// List returns every recipe with its owner, oldest first.
func (r *recipeRepository) List(ctx context.Context) ([]models.Recipe, error) {
	defer observability.TrackQuery("select", "recipes")()

	recipes := make([]models.Recipe, 0)
	if err := r.db.WithContext(ctx).Preload("User", ownerColumns).Order("id ASC").Find(&recipes).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return recipes, nil
}

func (r *recipeRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	defer observability.TrackQuery("count", "recipes")()

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Recipe{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func ownerColumns(db *gorm.DB) *gorm.DB {
	return db.Omit("password_hash")
}
