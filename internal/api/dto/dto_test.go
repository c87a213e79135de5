package dto_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/school-service/internal/api/dto"
	"github.com/spec-kit/school-service/internal/domain"
)

func validRegister() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:     "a@b.com",
		Password:  "secret1",
		FirstName: "Ann",
		LastName:  "Lee",
		Role:      domain.RoleStudent,
	}
}

func TestRegisterRequestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*dto.RegisterRequest)
		wantField string
	}{
		{name: "valid", mutate: func(*dto.RegisterRequest) {}},
		{name: "missing email", mutate: func(r *dto.RegisterRequest) { r.Email = "" }, wantField: "email"},
		{name: "malformed email", mutate: func(r *dto.RegisterRequest) { r.Email = "not-an-email" }, wantField: "email"},
		{name: "long email", mutate: func(r *dto.RegisterRequest) { r.Email = strings.Repeat("a", 95) + "@b.com" }, wantField: "email"},
		{name: "short password", mutate: func(r *dto.RegisterRequest) { r.Password = "12345" }, wantField: "password"},
		{name: "missing first name", mutate: func(r *dto.RegisterRequest) { r.FirstName = "" }, wantField: "firstName"},
		{name: "long last name", mutate: func(r *dto.RegisterRequest) { r.LastName = strings.Repeat("л", 51) }, wantField: "lastName"},
		{name: "missing role", mutate: func(r *dto.RegisterRequest) { r.Role = "" }, wantField: "role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegister()
			tt.mutate(&req)
			err := req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			details := dto.ValidationDetails(err)
			assert.Contains(t, details, tt.wantField)
			assert.Len(t, details, 1)
		})
	}
}

func TestLoginAndChangePasswordValidate(t *testing.T) {
	assert.NoError(t, dto.LoginRequest{Email: "anything", Password: "x"}.Validate())
	details := dto.ValidationDetails(dto.LoginRequest{}.Validate())
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")

	assert.NoError(t, dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}.Validate())
	details = dto.ValidationDetails(dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "short"}.Validate())
	assert.Equal(t, []string{"newPassword"}, keys(details))
}

func TestValidationDetailsIgnoresOtherErrors(t *testing.T) {
	assert.Nil(t, dto.ValidationDetails(nil))
	assert.Nil(t, dto.ValidationDetails(assert.AnError))
}

func TestEnvelopeJSON(t *testing.T) {
	raw, err := json.Marshal(dto.OK("Пароль успешно изменен", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Пароль успешно изменен"}`, string(raw))

	raw, err = json.Marshal(dto.Failure("CONFLICT", "Пользователь с таким email уже существует", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"Пользователь с таким email уже существует","code":"CONFLICT"}`, string(raw))
}

func TestAuthResponseOmitsDigest(t *testing.T) {
	expires := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	user := domain.User{ID: 7, Email: "a@b.com", FirstName: "Ann", LastName: "Lee", PasswordHash: "digest", RoleName: domain.RoleStudent}

	raw, err := json.Marshal(dto.NewAuthResponse(domain.Token{Value: "tok", ExpiresAt: expires}, user))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"token": "tok",
		"expiresAt": "2026-01-01T12:00:00Z",
		"user": {"id": 7, "email": "a@b.com", "firstName": "Ann", "lastName": "Lee", "role": "Студент"}
	}`, string(raw))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
