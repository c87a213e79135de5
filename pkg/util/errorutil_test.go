package util_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/school-service/pkg/util"
)

func TestConstructorsCarryStatus(t *testing.T) {
	tests := []struct {
		err    error
		code   string
		status int
	}{
		{apperrors.NewValidationError("bad", nil), apperrors.CodeValidationFailed, http.StatusBadRequest},
		{apperrors.NewNotFound("missing"), apperrors.CodeNotFound, http.StatusNotFound},
		{apperrors.NewRoleNotFound("role"), apperrors.CodeRoleNotFound, http.StatusBadRequest},
		{apperrors.NewInvalidCredential("pw", http.StatusUnauthorized), apperrors.CodeInvalidCredential, http.StatusUnauthorized},
		{apperrors.NewInvalidCredential("pw", http.StatusBadRequest), apperrors.CodeInvalidCredential, http.StatusBadRequest},
		{apperrors.NewConflict("dup", nil), apperrors.CodeConflict, http.StatusConflict},
		{apperrors.NewUnauthorized("who"), apperrors.CodeUnauthorized, http.StatusUnauthorized},
		{apperrors.NewForbidden("no"), apperrors.CodeForbidden, http.StatusForbidden},
		{apperrors.NewInternalError(errors.New("x")), apperrors.CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		domainErr := apperrors.ToDomainError(tt.err)
		assert.Equal(t, tt.code, domainErr.Code)
		assert.Equal(t, tt.status, domainErr.HTTPStatus)
		assert.Equal(t, tt.code, apperrors.CodeOf(tt.err))
	}
}

func TestOperationErrorKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("login: %w", apperrors.NewOperationError("Ошибка при входе", cause))

	assert.ErrorIs(t, err, cause)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "Ошибка при входе", domainErr.Message)
	assert.Equal(t, "Ошибка при входе: connection reset", domainErr.Error())
}

func TestToDomainErrorForeignErrors(t *testing.T) {
	assert.Nil(t, apperrors.ToDomainError(nil))
	assert.Equal(t, "", apperrors.CodeOf(errors.New("plain")))

	domainErr := apperrors.ToDomainError(errors.New("plain"))
	assert.Equal(t, apperrors.CodeInternal, domainErr.Code)
	assert.Equal(t, "internal server error", domainErr.Message)

	domainErr = apperrors.ToDomainError(fiber.ErrNotFound)
	require.NotNil(t, domainErr)
	assert.Equal(t, apperrors.CodeNotFound, domainErr.Code)
	assert.Equal(t, http.StatusNotFound, domainErr.HTTPStatus)

	assert.Equal(t, apperrors.CodeRequestRejected, apperrors.ToDomainError(fiber.ErrTooManyRequests).Code)
	assert.Equal(t, apperrors.CodeValidationFailed, apperrors.ToDomainError(fiber.ErrUnprocessableEntity).Code)
	assert.Equal(t, apperrors.CodeInternal, apperrors.ToDomainError(fiber.ErrBadGateway).Code)
}
