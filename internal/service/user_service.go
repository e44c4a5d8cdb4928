package service

import (
	"context"
	"fmt"

	"recipebox/internal/models"
	"recipebox/internal/repository"
)

// UserSummary is a user together with the number of recipes it owns.
type UserSummary struct {
	User    models.User
	Recipes int64
}

// UserService backs the administrative commands.
type UserService struct {
	users   repository.UserRepository
	recipes repository.RecipeRepository
}

func NewUserService(users repository.UserRepository, recipes repository.RecipeRepository) *UserService {
	return &UserService{users: users, recipes: recipes}
}

func (s *UserService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]UserSummary, 0, len(users))
	for _, u := range users {
		n, err := s.recipes.CountByUser(ctx, u.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, UserSummary{User: u, Recipes: n})
	}
	return out, nil
}

// DeleteUser removes the named user and its recipes. It returns the number
// of recipes removed with it.
func (s *UserService) DeleteUser(ctx context.Context, username string) (int64, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, &models.AppError{Code: models.CodeNotFound, Message: fmt.Sprintf("User %q not found", username)}
	}

	n, err := s.recipes.CountByUser(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	if err := s.users.Delete(ctx, user.ID); err != nil {
		return 0, err
	}
	return n, nil
}
