package middleware

import (
	"context"
	"errors"
	"log/slog"

	"recipebox/internal/models"
	"recipebox/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	localUserID     = "userID"
	localSession    = "session"
	localSessionErr = "sessionErr"
)

// NotAuthorizedMessage is the body text of every 401 caused by a missing or dead session.
const NotAuthorizedMessage = "Not Authorized"

// LoadSession resolves the session cookie, when present, into the "userID"
// and "session" locals and puts the user id on the request context. Requests
// without a usable session pass through anonymously.
func LoadSession(m *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := m.Token(c)
		if token == "" {
			return c.Next()
		}

		sess, err := m.Resolve(c.UserContext(), token)
		switch {
		case errors.Is(err, session.ErrInvalid):
			return c.Next()
		case err != nil:
			Logger.ErrorContext(c.UserContext(), "Failed to resolve session", slog.String("error", err.Error()))
			c.Locals(localSessionErr, err)
			return c.Next()
		}

		c.Locals(localSession, sess)
		c.Locals(localUserID, sess.UserID)
		c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, sess.UserID))
		return c.Next()
	}
}

// RequireSession rejects requests that carry no live session with 401.
// If the session could not be checked at all the request fails with 500.
func RequireSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := SessionError(c); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
		}
		if _, ok := CurrentSession(c); !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError(NotAuthorizedMessage))
		}
		return c.Next()
	}
}

// SessionError returns the store failure hit while resolving the session, if any.
func SessionError(c *fiber.Ctx) error {
	err, _ := c.Locals(localSessionErr).(error)
	return err
}

// CurrentSession returns the session resolved by LoadSession.
func CurrentSession(c *fiber.Ctx) (*session.Session, bool) {
	sess, ok := c.Locals(localSession).(*session.Session)
	return sess, ok && sess != nil
}

// CurrentUserID returns the id of the signed-in user.
func CurrentUserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(localUserID).(uint)
	return id, ok && id != 0
}
