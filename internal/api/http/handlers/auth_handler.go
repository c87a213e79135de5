package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/school-service/internal/api/dto"
	"github.com/spec-kit/school-service/internal/auth"
	"github.com/spec-kit/school-service/internal/domain"
	"github.com/spec-kit/school-service/internal/service"
	apperrors "github.com/spec-kit/school-service/pkg/util"
)

// AuthHandler exposes login, registration, profile and password change endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Login(c.UserContext(), service.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(service.MsgLoginSucceeded, dto.NewAuthResponse(result.Token, result.User)))
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).
		JSON(dto.OK(service.MsgRegistrationSucceeded, dto.NewAuthResponse(result.Token, result.User)))
}

// Profile handles GET /api/auth/profile.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.auth.Profile(c.UserContext(), identity.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(service.MsgProfileLoaded, dto.NewUserProfile(*user)))
}

// ChangePassword handles POST /api/auth/change-password and /api/user/change-password.
// The account is always the token subject; a body userId naming anyone else is refused.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	identity, err := currentIdentity(c)
	if err != nil {
		return err
	}

	var req dto.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.UserID != nil && *req.UserID != identity.UserID {
		return apperrors.NewForbidden(service.MsgForeignPassword)
	}

	err = h.auth.ChangePassword(c.UserContext(), service.ChangePasswordInput{
		UserID:          identity.UserID,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(service.MsgPasswordChanged, nil))
}

// Roles handles GET /api/role.
func (h *AuthHandler) Roles(c *fiber.Ctx) error {
	roles, err := h.auth.Roles(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(service.MsgRolesLoaded, dto.NewRoleResponses(roles)))
}

type validatable interface {
	Validate() error
}

func bindAndValidate(c *fiber.Ctx, req validatable) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError(service.MsgInvalidPayload, nil)
	}
	if err := req.Validate(); err != nil {
		return apperrors.NewValidationError(service.MsgValidationFailed, dto.ValidationDetails(err))
	}
	return nil
}

func currentIdentity(c *fiber.Ctx) (*domain.Identity, error) {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return identity, nil
}
