package service

import (
	"context"

	"recipebox/internal/models"
	"recipebox/internal/observability"
	"recipebox/internal/repository"
	"recipebox/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

type RecipeService struct {
	recipes repository.RecipeRepository
}

func NewRecipeService(recipes repository.RecipeRepository) *RecipeService {
	return &RecipeService{recipes: recipes}
}

func (s *RecipeService) List(ctx context.Context) ([]models.Recipe, error) {
	return s.recipes.List(ctx)
}

// Create stores a recipe owned by userID.
func (s *RecipeService) Create(ctx context.Context, userID uint, req *validation.CreateRecipeRequest) (_ *models.Recipe, err error) {
	ctx, span := observability.StartSpan(ctx, "RecipeService.Create",
		attribute.Int64("user.id", int64(userID)))
	defer func() { observability.EndSpan(span, err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	recipe := req.ToModel(userID)
	if err := s.recipes.Create(ctx, recipe); err != nil {
		return nil, err
	}

	observability.RecipesCreated.Inc()
	return recipe, nil
}
