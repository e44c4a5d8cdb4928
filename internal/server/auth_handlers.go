package server

import (
	"log/slog"

	"recipebox/internal/middleware"
	"recipebox/internal/models"
	"recipebox/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const signupFailedMessage = "Failed to sign up"

// Signup handles POST /signup
// @Summary User signup
// @Description Register a new user and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string,image_url=string,bio=string} true "Signup request"
// @Success 201 {object} models.User
// @Failure 422 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /signup [post]
func (s *Server) Signup(c *fiber.Ctx) error {
	var req validation.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError(validation.MissingFieldsMessage))
	}

	user, err := s.authService.Signup(c.UserContext(), &req)
	if err != nil {
		if models.StatusFor(err) == fiber.StatusUnprocessableEntity {
			return respondError(c, err)
		}
		return respondError(c, internalError(signupFailedMessage, err))
	}

	if err := s.startSession(c, user.ID); err != nil {
		return respondError(c, internalError(signupFailedMessage, err))
	}

	middleware.Logger.InfoContext(c.UserContext(), "User signed up", slog.Uint64("new_user_id", uint64(user.ID)))
	return c.Status(fiber.StatusCreated).JSON(user)
}

// CheckSession handles GET /check_session
// @Summary Current user
// @Description Return the user owning the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /check_session [get]
func (s *Server) CheckSession(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(currentUser(c))
}

// Login handles POST /login
// @Summary User login
// @Description Verify credentials and start a new session, replacing any current one
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{username=string,password=string} true "Login credentials"
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req validation.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewUnauthorizedError("Username and password are required"))
	}

	user, err := s.authService.Login(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}

	if prev, ok := middleware.CurrentSession(c); ok {
		if err := s.sessions.Revoke(c.UserContext(), prev.ID); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "Failed to revoke previous session",
				slog.String("error", err.Error()))
		}
	}

	if err := s.startSession(c, user.ID); err != nil {
		return respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// Logout handles DELETE /logout
// @Summary User logout
// @Description Revoke the current session and clear its cookie
// @Tags auth
// @Success 204
// @Failure 401 {object} models.ErrorResponse
// @Router /logout [delete]
func (s *Server) Logout(c *fiber.Ctx) error {
	if err := s.endSession(c); err != nil {
		return respondError(c, models.NewInternalError(err))
	}
	return c.SendStatus(fiber.StatusNoContent)
}
