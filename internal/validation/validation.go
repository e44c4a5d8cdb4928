// Package validation binds and checks request payloads.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"recipebox/internal/models"
	"recipebox/internal/password"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// MissingFieldsMessage is returned when a signup payload lacks a field.
const MissingFieldsMessage = "Missing required fields"

// PasswordTooLongMessage is returned when a signup password exceeds what
// bcrypt can hash.
const PasswordTooLongMessage = "Password must be at most 72 bytes long"

// SignupRequest is the POST /signup payload.
type SignupRequest struct {
	Username string         `json:"username" validate:"required"`
	Password string         `json:"password" validate:"required"`
	ImageURL string         `json:"image_url" validate:"required"`
	Bio      FlexibleString `json:"bio" validate:"required"`
}

// Normalize trims surrounding whitespace from identifying fields.
func (r *SignupRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.ImageURL = strings.TrimSpace(r.ImageURL)
	r.Bio = FlexibleString(strings.TrimSpace(string(r.Bio)))
}

// Validate reports any absent or empty field as one validation error. The
// password limit is counted in bytes, not characters.
func (r *SignupRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return models.NewValidationError(MissingFieldsMessage)
	}
	if len(r.Password) > password.MaxBytes {
		return models.NewValidationError(PasswordTooLongMessage)
	}
	return nil
}

// LoginRequest is the POST /login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Normalize trims the username.
func (r *LoginRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

// Validate reports whether both credentials were supplied.
func (r *LoginRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return models.NewUnauthorizedError("Username and password are required")
	}
	return nil
}

// CreateRecipeRequest is the POST /recipes payload.
type CreateRecipeRequest struct {
	Title             string `json:"title" validate:"required"`
	Instructions      string `json:"instructions" validate:"required,min=50"`
	MinutesToComplete *int   `json:"minutes_to_complete" validate:"omitempty,min=0"`
}

// Normalize trims the title.
func (r *CreateRecipeRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

// Validate returns the first problem found, worded for the client.
func (r *CreateRecipeRequest) Validate() error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError("Invalid recipe")
	}

	fe := fieldErrs[0]
	switch fe.Field() {
	case "title":
		return models.NewValidationError("Title is required")
	case "instructions":
		if fe.Tag() == "required" {
			return models.NewValidationError("Instructions are required")
		}
		return models.NewValidationError("Instructions must be at least 50 characters long")
	case "minutes_to_complete":
		return models.NewValidationError("Minutes to complete cannot be negative")
	default:
		return models.NewValidationError("Invalid recipe")
	}
}

// ToModel builds the recipe owned by userID.
func (r *CreateRecipeRequest) ToModel(userID uint) *models.Recipe {
	return &models.Recipe{
		Title:             r.Title,
		Instructions:      r.Instructions,
		MinutesToComplete: r.MinutesToComplete,
		UserID:            userID,
	}
}
