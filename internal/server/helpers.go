package server

import (
	"log/slog"

	"recipebox/internal/middleware"
	"recipebox/internal/models"

	"github.com/gofiber/fiber/v2"
)

const localCurrentUser = "currentUser"

// respondError writes err with the status derived from its code. Server-side
// failures are logged with their cause.
func respondError(c *fiber.Ctx, err error) error {
	status := models.StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "Request failed",
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}
	return models.RespondWithError(c, status, err)
}

// internalError replaces the generic 500 message with message while keeping cause for the logs.
func internalError(message string, cause error) *models.AppError {
	return &models.AppError{Code: models.CodeInternal, Message: message, Err: cause}
}

func notAuthorized() *models.AppError {
	return models.NewUnauthorizedError(middleware.NotAuthorizedMessage)
}

// currentUser returns the user loaded by AuthRequired.
func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localCurrentUser).(*models.User)
	return user
}

// startSession issues a session for userID and sets the cookie.
func (s *Server) startSession(c *fiber.Ctx, userID uint) error {
	token, expires, err := s.sessions.Issue(c.UserContext(), userID)
	if err != nil {
		return err
	}
	s.sessions.SetCookie(c, token, expires)
	return nil
}

// endSession revokes the request's session and clears the cookie.
func (s *Server) endSession(c *fiber.Ctx) error {
	if sess, ok := middleware.CurrentSession(c); ok {
		if err := s.sessions.Revoke(c.UserContext(), sess.ID); err != nil {
			return err
		}
	}
	s.sessions.ClearCookie(c)
	return nil
}

// AuthRequired rejects requests without a live session and loads the
// session's user. A session whose user no longer exists is revoked.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := middleware.SessionError(c); err != nil {
			return respondError(c, models.NewInternalError(err))
		}
		sess, ok := middleware.CurrentSession(c)
		if !ok {
			return respondError(c, notAuthorized())
		}

		user, err := s.authService.CurrentUser(c.UserContext(), sess.UserID)
		if models.HasCode(err, models.CodeNotFound) {
			if rerr := s.endSession(c); rerr != nil {
				middleware.Logger.WarnContext(c.UserContext(), "Failed to revoke orphaned session",
					slog.String("error", rerr.Error()))
			}
			return respondError(c, notAuthorized())
		}
		if err != nil {
			return respondError(c, err)
		}

		c.Locals(localCurrentUser, user)
		return c.Next()
	}
}
