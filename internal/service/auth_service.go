// Package service holds the application's business rules, between the HTTP
// handlers and the repositories.
package service

import (
	"context"

	"recipebox/internal/models"
	"recipebox/internal/observability"
	"recipebox/internal/password"
	"recipebox/internal/repository"
	"recipebox/internal/validation"
)

// InvalidCredentialsMessage is reported for an unknown username or a wrong password.
const InvalidCredentialsMessage = "Invalid username or password"

type AuthService struct {
	users  repository.UserRepository
	hasher password.Hasher
}

func NewAuthService(users repository.UserRepository, hasher password.Hasher) *AuthService {
	return &AuthService{users: users, hasher: hasher}
}

// Signup validates req, rejects a taken username and stores the new user.
func (s *AuthService) Signup(ctx context.Context, req *validation.SignupRequest) (_ *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "AuthService.Signup")
	defer func() { observability.EndSpan(span, err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		observability.RecordAuthEvent("signup", observability.OutcomeRejected)
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		observability.RecordAuthEvent("signup", observability.OutcomeError)
		return nil, err
	}
	if existing != nil {
		observability.RecordAuthEvent("signup", observability.OutcomeRejected)
		return nil, models.NewConflictError(repository.UsernameTakenMessage)
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		observability.RecordAuthEvent("signup", observability.OutcomeError)
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: digest,
		ImageURL:     req.ImageURL,
		Bio:          req.Bio.String(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if models.HasCode(err, models.CodeConflict) {
			observability.RecordAuthEvent("signup", observability.OutcomeRejected)
		} else {
			observability.RecordAuthEvent("signup", observability.OutcomeError)
		}
		return nil, err
	}

	observability.RecordAuthEvent("signup", observability.OutcomeSuccess)
	return user, nil
}

// Login returns the user whose credentials match req. Every credential
// failure is an unauthorized error.
func (s *AuthService) Login(ctx context.Context, req *validation.LoginRequest) (_ *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "AuthService.Login")
	defer func() { observability.EndSpan(span, err) }()

	req.Normalize()
	if err := req.Validate(); err != nil {
		observability.RecordAuthEvent("login", observability.OutcomeRejected)
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		observability.RecordAuthEvent("login", observability.OutcomeError)
		return nil, err
	}
	if user == nil || !s.hasher.Verify(req.Password, user.PasswordHash) {
		observability.RecordAuthEvent("login", observability.OutcomeRejected)
		return nil, models.NewUnauthorizedError(InvalidCredentialsMessage)
	}

	observability.RecordAuthEvent("login", observability.OutcomeSuccess)
	return user, nil
}

// CurrentUser loads the signed-in user. A missing user yields a not-found error.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}
