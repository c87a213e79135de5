package service

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/spec-kit/school-service/internal/auth"
	"github.com/spec-kit/school-service/internal/domain"
	"github.com/spec-kit/school-service/internal/events"
	"github.com/spec-kit/school-service/internal/repository"
	apperrors "github.com/spec-kit/school-service/pkg/util"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(userID int64, email, role string) (domain.Token, error)
}

// AuthService coordinates registration, login and password change flows.
type AuthService struct {
	users              repository.UserRepository
	roles              repository.RoleRepository
	hasher             auth.Hasher
	tokens             TokenIssuer
	dispatcher         events.Dispatcher
	logger             *zap.Logger
	uniformLoginErrors bool
}

// AuthDependencies encapsulates collaborators for auth service.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	RoleRepo   repository.RoleRepository
	Hasher     auth.Hasher
	Tokens     TokenIssuer
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	// UniformLoginErrors reports unknown email and wrong password with one message.
	UniformLoginErrors bool
}

// LoginInput carries login credentials.
type LoginInput struct {
	Email    string
	Password string
}

// RegisterInput carries a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      string
}

// ChangePasswordInput identifies the account and both passwords.
type ChangePasswordInput struct {
	UserID          int64
	CurrentPassword string
	NewPassword     string
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	Token domain.Token
	User  domain.User
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:              deps.UserRepo,
		roles:              deps.RoleRepo,
		hasher:             deps.Hasher,
		tokens:             deps.Tokens,
		dispatcher:         deps.Dispatcher,
		logger:             logger,
		uniformLoginErrors: deps.UniformLoginErrors,
	}
}

// Login authenticates by email and password and issues a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.loginFailed(ctx, input.Email, "unknown email")
			if s.uniformLoginErrors {
				return nil, apperrors.NewInvalidCredential(MsgInvalidLogin, http.StatusUnauthorized)
			}
			return nil, apperrors.NewNotFound(MsgUserNotFound)
		}
		s.logger.Error("login lookup failed", zap.String("email", input.Email), zap.Error(err))
		return nil, apperrors.NewOperationError(MsgLoginFailed, err)
	}

	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		s.loginFailed(ctx, input.Email, "wrong password")
		if s.uniformLoginErrors {
			return nil, apperrors.NewInvalidCredential(MsgInvalidLogin, http.StatusUnauthorized)
		}
		return nil, apperrors.NewInvalidCredential(MsgWrongPassword, http.StatusUnauthorized)
	}

	token, err := s.tokens.Issue(user.ID, user.Email, user.RoleName)
	if err != nil {
		s.logger.Error("token issue failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, apperrors.NewOperationError(MsgLoginFailed, err)
	}

	s.logger.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	s.publish(ctx, userEvent(events.EventLoginSucceeded, user))
	return &AuthResult{Token: token, User: *user}, nil
}

// Register creates an account with the named role and issues a token. Any role in the
// store may be requested.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		s.registrationFailed(ctx, input, "email taken")
		return nil, apperrors.NewConflict(MsgEmailTaken, nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("registration lookup failed", zap.String("email", input.Email), zap.Error(err))
		return nil, apperrors.NewOperationError(MsgRegistrationFailed, err)
	}

	role, err := s.roles.GetByName(ctx, input.Role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.registrationFailed(ctx, input, "unknown role")
			return nil, apperrors.NewRoleNotFound(MsgRoleNotFound)
		}
		s.logger.Error("role lookup failed", zap.String("role", input.Role), zap.Error(err))
		return nil, apperrors.NewOperationError(MsgRegistrationFailed, err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, hashFailure(MsgRegistrationFailed, err)
	}

	user := &domain.User{
		Email:        input.Email,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		PasswordHash: hash,
		RoleID:       role.ID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// lost a concurrent registration race for the same email
			s.registrationFailed(ctx, input, "email taken")
			return nil, apperrors.NewConflict(MsgEmailTaken, nil)
		}
		s.logger.Error("user insert failed", zap.String("email", input.Email), zap.Error(err))
		return nil, apperrors.NewOperationError(MsgRegistrationFailed, err)
	}
	user.RoleName = role.Name

	token, err := s.tokens.Issue(user.ID, user.Email, user.RoleName)
	if err != nil {
		s.logger.Error("token issue failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, apperrors.NewOperationError(MsgRegistrationFailed, err)
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
		zap.String("role", user.RoleName))
	s.publish(ctx, userEvent(events.EventUserRegistered, user))
	return &AuthResult{Token: token, User: *user}, nil
}

// ChangePassword verifies the current password before storing the new digest.
func (s *AuthService) ChangePassword(ctx context.Context, input ChangePasswordInput) error {
	user, err := s.users.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.passwordChangeFailed(ctx, input.UserID, "user not found")
			return apperrors.NewNotFound(MsgUserNotFound)
		}
		s.logger.Error("password change lookup failed", zap.Int64("user_id", input.UserID), zap.Error(err))
		return apperrors.NewOperationError(MsgPasswordChangeFailed, err)
	}

	if !s.hasher.Verify(input.CurrentPassword, user.PasswordHash) {
		s.passwordChangeFailed(ctx, user.ID, "wrong current password")
		return apperrors.NewInvalidCredential(MsgWrongCurrentPassword, http.StatusBadRequest)
	}

	hash, err := s.hasher.Hash(input.NewPassword)
	if err != nil {
		return hashFailure(MsgPasswordChangeFailed, err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewNotFound(MsgUserNotFound)
		}
		s.logger.Error("password update failed", zap.Int64("user_id", user.ID), zap.Error(err))
		return apperrors.NewOperationError(MsgPasswordChangeFailed, err)
	}

	s.logger.Info("password changed", zap.Int64("user_id", user.ID))
	s.publish(ctx, userEvent(events.EventPasswordChanged, user))
	return nil
}

// Profile loads the current state of an account.
func (s *AuthService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound(MsgUserNotFound)
		}
		s.logger.Error("profile lookup failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, apperrors.NewOperationError(MsgProfileFailed, err)
	}
	return user, nil
}

// Roles lists every role a registration may name.
func (s *AuthService) Roles(ctx context.Context) ([]domain.Role, error) {
	roles, err := s.roles.List(ctx)
	if err != nil {
		s.logger.Error("role listing failed", zap.Error(err))
		return nil, apperrors.NewOperationError(MsgRolesFailed, err)
	}
	return roles, nil
}

func (s *AuthService) loginFailed(ctx context.Context, email, reason string) {
	s.logger.Warn("login failed", zap.String("email", email), zap.String("reason", reason))
	event := events.NewEvent(events.EventLoginFailed)
	event.Email = email
	event.Reason = reason
	s.publish(ctx, event)
}

func (s *AuthService) registrationFailed(ctx context.Context, input RegisterInput, reason string) {
	s.logger.Warn("registration failed",
		zap.String("email", input.Email),
		zap.String("role", input.Role),
		zap.String("reason", reason))
	event := events.NewEvent(events.EventRegistrationFailed)
	event.Email = input.Email
	event.Role = input.Role
	event.Reason = reason
	s.publish(ctx, event)
}

func (s *AuthService) passwordChangeFailed(ctx context.Context, userID int64, reason string) {
	s.logger.Warn("password change failed", zap.Int64("user_id", userID), zap.String("reason", reason))
	event := events.NewEvent(events.EventPasswordChangeFailed)
	event.UserID = userID
	event.Reason = reason
	s.publish(ctx, event)
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event delivery failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func userEvent(eventType events.EventType, user *domain.User) events.Event {
	event := events.NewEvent(eventType)
	event.UserID = user.ID
	event.Email = user.Email
	event.Role = user.RoleName
	return event
}

func hashFailure(message string, err error) error {
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return apperrors.NewValidationError(MsgPasswordTooLong, nil)
	}
	return apperrors.NewOperationError(message, err)
}
