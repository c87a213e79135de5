package dto

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// MinPasswordLength applies to registration and new passwords.
const MinPasswordLength = 6

// LoginRequest payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks presence only; format errors surface as failed logins.
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// RegisterRequest payload for POST /api/auth/register.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

// Validate will validate the payload
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.RuneLength(1, 100), is.Email),
		validation.Field(&r.Password, validation.Required, validation.RuneLength(MinPasswordLength, 0)),
		validation.Field(&r.FirstName, validation.Required, validation.RuneLength(1, 50)),
		validation.Field(&r.LastName, validation.Required, validation.RuneLength(1, 50)),
		validation.Field(&r.Role, validation.Required),
	)
}

// ChangePasswordRequest payload for the change-password endpoints. UserID is optional;
// when present it must name the authenticated caller.
type ChangePasswordRequest struct {
	UserID          *int64 `json:"userId,omitempty"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Validate will validate the payload
func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.RuneLength(MinPasswordLength, 0)),
	)
}

// ValidationDetails flattens ozzo field errors into a details map keyed by json field name.
// Errors that are not field errors yield nil.
func ValidationDetails(err error) map[string]any {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return nil
	}
	details := make(map[string]any, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		if fieldErr == nil {
			continue
		}
		details[field] = fieldErr.Error()
	}
	return details
}
