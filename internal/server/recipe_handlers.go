package server

import (
	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ListRecipes handles GET /recipes
// @Summary List recipes
// @Description Every recipe in the system with its author, oldest first
// @Tags recipes
// @Produce json
// @Success 200 {array} models.Recipe
// @Failure 401 {object} models.ErrorResponse
// @Router /recipes [get]
func (s *Server) ListRecipes(c *fiber.Ctx) error {
	recipes, err := s.recipeService.List(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(recipes)
}

// CreateRecipe handles POST /recipes
// @Summary Create recipe
// @Description Create a recipe owned by the signed-in user
// @Tags recipes
// @Accept json
// @Produce json
// @Param request body object{title=string,instructions=string,minutes_to_complete=int} true "Recipe"
// @Success 201 {object} models.Recipe
// @Failure 401 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /recipes [post]
func (s *Server) CreateRecipe(c *fiber.Ctx) error {
	var req validation.CreateRecipeRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return respondError(c, notAuthorized())
	}

	recipe, err := s.recipeService.Create(c.UserContext(), userID, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(recipe)
}
