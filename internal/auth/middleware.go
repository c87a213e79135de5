package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/school-service/internal/domain"
	apperrors "github.com/spec-kit/school-service/pkg/util"
)

const identityKey = "auth_identity"

// TokenValidator turns a bearer token into the identity it proves.
type TokenValidator interface {
	Validate(token string) (*domain.Identity, error)
}

// AuthMiddleware validates bearer tokens and enforces route requirements.
type AuthMiddleware struct {
	tokens TokenValidator
	logger *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens TokenValidator, logger *zap.Logger) *AuthMiddleware {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthMiddleware{tokens: tokens, logger: logger}
}

// Handle authenticates the request and stores the identity for later handlers.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity, err := m.authenticate(c)
	if err != nil {
		return err
	}
	c.Locals(identityKey, identity)
	return c.Next()
}

// Protect authenticates unless req is public, then applies req.
func (m *AuthMiddleware) Protect(req Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if req.IsPublic() {
			return c.Next()
		}
		identity, ok := IdentityFromContext(c)
		if !ok {
			var err error
			identity, err = m.authenticate(c)
			if err != nil {
				return err
			}
			c.Locals(identityKey, identity)
		}
		if err := m.authorize(c, req, identity); err != nil {
			return err
		}
		return c.Next()
	}
}

// Require applies req to the identity stored by Handle.
func (m *AuthMiddleware) Require(req Requirement) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, _ := IdentityFromContext(c)
		if err := m.authorize(c, req, identity); err != nil {
			return err
		}
		return c.Next()
	}
}

func (m *AuthMiddleware) authenticate(c *fiber.Ctx) (*domain.Identity, error) {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return nil, apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}

	identity, err := m.tokens.Validate(strings.TrimSpace(parts[1]))
	if err != nil {
		m.logger.Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
		if errors.Is(err, ErrTokenExpired) {
			return nil, apperrors.NewUnauthorized("token expired")
		}
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	return identity, nil
}

func (m *AuthMiddleware) authorize(c *fiber.Ctx, req Requirement, identity *domain.Identity) error {
	switch err := Authorize(req, identity); {
	case err == nil:
		return nil
	case errors.Is(err, ErrForbidden):
		m.logger.Info("access denied",
			zap.String("path", c.Path()),
			zap.Int64("user_id", identity.UserID),
			zap.String("role", identity.Role),
			zap.Stringer("requirement", req))
		return apperrors.NewForbidden("access denied")
	default:
		return apperrors.NewUnauthorized("authentication required")
	}
}

// IdentityFromContext retrieves the authenticated caller.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	val := c.Locals(identityKey)
	if val == nil {
		return nil, false
	}
	identity, ok := val.(*domain.Identity)
	return identity, ok && identity != nil
}
