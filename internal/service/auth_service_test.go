package service_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/school-service/internal/auth"
	"github.com/spec-kit/school-service/internal/domain"
	"github.com/spec-kit/school-service/internal/events"
	"github.com/spec-kit/school-service/internal/repository"
	"github.com/spec-kit/school-service/internal/service"
	apperrors "github.com/spec-kit/school-service/pkg/util"
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc    *service.AuthService
	store  *repository.MemoryStore
	tokens *auth.TokenManager
	events *recorder
	logs   *observer.ObservedLogs
}

type fixtureOption func(*service.AuthDependencies)

func withUniformLoginErrors() fixtureOption {
	return func(d *service.AuthDependencies) { d.UniformLoginErrors = true }
}

func withUsers(users repository.UserRepository) fixtureOption {
	return func(d *service.AuthDependencies) { d.UserRepo = users }
}

func withHasher(h auth.Hasher) fixtureOption {
	return func(d *service.AuthDependencies) { d.Hasher = h }
}

func withDispatcher(dispatcher events.Dispatcher) fixtureOption {
	return func(d *service.AuthDependencies) { d.Dispatcher = dispatcher }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	store := repository.NewMemoryStore()
	_, err := store.EnsureDefaults(context.Background(), domain.DefaultRoles())
	require.NoError(t, err)

	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret:   "test-signing-key",
		Issuer:   "SchoolAPI",
		Audience: "SchoolAPIUsers",
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	rec := &recorder{}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, rec.handle)
	}

	core, logs := observer.New(zap.DebugLevel)
	deps := service.AuthDependencies{
		UserRepo:   store,
		RoleRepo:   store,
		Hasher:     auth.SHA256Hasher{},
		Tokens:     tokens,
		Dispatcher: dispatcher,
		Logger:     zap.New(core),
	}
	for _, opt := range opts {
		opt(&deps)
	}

	return &fixture{
		svc:    service.NewAuthService(deps),
		store:  store,
		tokens: tokens,
		events: rec,
		logs:   logs,
	}
}

func annRegistration() service.RegisterInput {
	return service.RegisterInput{
		Email:     "a@b.com",
		Password:  "secret1",
		FirstName: "Ann",
		LastName:  "Lee",
		Role:      domain.RoleStudent,
	}
}

func requireDomainError(t *testing.T, err error, code string, status int) *apperrors.DomainError {
	t.Helper()
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
	assert.Equal(t, status, domainErr.HTTPStatus)
	return domainErr
}

func TestRegisterThenLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.svc.Register(ctx, annRegistration())
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token.Value)
	assert.Equal(t, domain.RoleStudent, registered.User.RoleName)
	assert.Equal(t, "Ann", registered.User.FirstName)

	loggedIn, err := f.svc.Login(ctx, service.LoginInput{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, loggedIn.Token.Value)

	identity, err := f.tokens.Validate(loggedIn.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, identity.UserID)
	assert.Equal(t, domain.RoleStudent, identity.Role)

	assert.Equal(t, []events.EventType{events.EventUserRegistered, events.EventLoginSucceeded}, f.events.types())
}

func TestRegisterStoresDeterministicDigest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first := annRegistration()
	second := annRegistration()
	second.Email = "b@b.com"

	_, err := f.svc.Register(ctx, first)
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, second)
	require.NoError(t, err)

	a, err := f.store.GetByEmail(ctx, first.Email)
	require.NoError(t, err)
	b, err := f.store.GetByEmail(ctx, second.Email)
	require.NoError(t, err)

	assert.NotEqual(t, "secret1", a.PasswordHash)
	assert.Equal(t, a.PasswordHash, b.PasswordHash)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.svc.Register(ctx, annRegistration())
	require.NoError(t, err)

	again := annRegistration()
	again.Password = "different"
	again.Role = domain.RoleTeacher
	_, err = f.svc.Register(ctx, again)

	domainErr := requireDomainError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Contains(t, domainErr.Message, "уже существует")

	stored, err := f.store.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, stored.ID)
	assert.Equal(t, domain.RoleStudent, stored.RoleName, "existing account must not be overwritten")
}

type racingUsers struct {
	*repository.MemoryStore
}

// GetByEmail never sees the competing insert, as when two requests interleave.
func (racingUsers) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, repository.ErrNotFound
}

func TestRegisterRaceSurfacesConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	racing := newFixture(t, withUsers(racingUsers{f.store}))

	_, err := racing.svc.Register(ctx, annRegistration())
	require.NoError(t, err)
	_, err = racing.svc.Register(ctx, annRegistration())

	domainErr := requireDomainError(t, err, apperrors.CodeConflict, http.StatusConflict)
	assert.Equal(t, service.MsgEmailTaken, domainErr.Message)
}

func TestConcurrentRegistrationsYieldOneAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	const workers = 8
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Register(ctx, annRegistration())
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.Equal(t, apperrors.CodeConflict, apperrors.CodeOf(err))
	}
	assert.Equal(t, 1, succeeded)
}

func TestRegisterUnknownRole(t *testing.T) {
	f := newFixture(t)

	input := annRegistration()
	input.Role = "Директор"
	_, err := f.svc.Register(context.Background(), input)

	domainErr := requireDomainError(t, err, apperrors.CodeRoleNotFound, http.StatusBadRequest)
	assert.Equal(t, service.MsgRoleNotFound, domainErr.Message)

	_, lookupErr := f.store.GetByEmail(context.Background(), input.Email)
	assert.ErrorIs(t, lookupErr, repository.ErrNotFound)
	assert.Equal(t, []events.EventType{events.EventRegistrationFailed}, f.events.types())
}

func TestRegisterAnyRoleIsSelfAssignable(t *testing.T) {
	f := newFixture(t)

	input := annRegistration()
	input.Role = domain.RoleAdmin
	result, err := f.svc.Register(context.Background(), input)
	require.NoError(t, err)

	identity, err := f.tokens.Validate(result.Token.Value)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, identity.Role)
}

func TestLoginFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		opts       []fixtureOption
		input      service.LoginInput
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "unknown email",
			input:      service.LoginInput{Email: "nobody@b.com", Password: "secret1"},
			wantCode:   apperrors.CodeNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    service.MsgUserNotFound,
		},
		{
			name:       "wrong password",
			input:      service.LoginInput{Email: "a@b.com", Password: "secret2"},
			wantCode:   apperrors.CodeInvalidCredential,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    service.MsgWrongPassword,
		},
		{
			name:       "email lookup is case-sensitive",
			input:      service.LoginInput{Email: "A@B.COM", Password: "secret1"},
			wantCode:   apperrors.CodeNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    service.MsgUserNotFound,
		},
		{
			name:       "uniform unknown email",
			opts:       []fixtureOption{withUniformLoginErrors()},
			input:      service.LoginInput{Email: "nobody@b.com", Password: "secret1"},
			wantCode:   apperrors.CodeInvalidCredential,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    service.MsgInvalidLogin,
		},
		{
			name:       "uniform wrong password",
			opts:       []fixtureOption{withUniformLoginErrors()},
			input:      service.LoginInput{Email: "a@b.com", Password: "secret2"},
			wantCode:   apperrors.CodeInvalidCredential,
			wantStatus: http.StatusUnauthorized,
			wantMsg:    service.MsgInvalidLogin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.opts...)
			_, err := f.svc.Register(ctx, annRegistration())
			require.NoError(t, err)

			result, err := f.svc.Login(ctx, tt.input)
			assert.Nil(t, result)
			domainErr := requireDomainError(t, err, tt.wantCode, tt.wantStatus)
			assert.Equal(t, tt.wantMsg, domainErr.Message)
			assert.Equal(t, []events.EventType{events.EventUserRegistered, events.EventLoginFailed}, f.events.types())
		})
	}
}

func TestChangePasswordFlow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.svc.Register(ctx, annRegistration())
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, service.ChangePasswordInput{
		UserID:          registered.User.ID,
		CurrentPassword: "secret1",
		NewPassword:     "secret2",
	})
	require.NoError(t, err)

	_, err = f.svc.Login(ctx, service.LoginInput{Email: "a@b.com", Password: "secret1"})
	assert.Equal(t, apperrors.CodeInvalidCredential, apperrors.CodeOf(err))

	result, err := f.svc.Login(ctx, service.LoginInput{Email: "a@b.com", Password: "secret2"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token.Value)
}

func TestChangePasswordFailures(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.svc.Register(ctx, annRegistration())
	require.NoError(t, err)
	before, err := f.store.GetByID(ctx, registered.User.ID)
	require.NoError(t, err)

	err = f.svc.ChangePassword(ctx, service.ChangePasswordInput{UserID: 999, CurrentPassword: "secret1", NewPassword: "secret2"})
	domainErr := requireDomainError(t, err, apperrors.CodeNotFound, http.StatusNotFound)
	assert.Equal(t, service.MsgUserNotFound, domainErr.Message)

	err = f.svc.ChangePassword(ctx, service.ChangePasswordInput{UserID: registered.User.ID, CurrentPassword: "nope", NewPassword: "secret2"})
	domainErr = requireDomainError(t, err, apperrors.CodeInvalidCredential, http.StatusBadRequest)
	assert.Equal(t, service.MsgWrongCurrentPassword, domainErr.Message)

	after, err := f.store.GetByID(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
	assert.Equal(t, []events.EventType{
		events.EventUserRegistered,
		events.EventPasswordChangeFailed,
		events.EventPasswordChangeFailed,
	}, f.events.types())
}

func TestChangePasswordRejectsOverlongBcryptInput(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withHasher(auth.NewBcryptHasher(4)))

	registered, err := f.svc.Register(ctx, annRegistration())
	require.NoError(t, err)

	long := make([]byte, 80)
	for i := range long {
		long[i] = 'x'
	}
	err = f.svc.ChangePassword(ctx, service.ChangePasswordInput{
		UserID:          registered.User.ID,
		CurrentPassword: "secret1",
		NewPassword:     string(long),
	})
	requireDomainError(t, err, apperrors.CodeValidationFailed, http.StatusBadRequest)
}

type failingUsers struct {
	repository.UserRepository
	err error
}

func (f failingUsers) GetByEmail(context.Context, string) (*domain.User, error) { return nil, f.err }
func (f failingUsers) GetByID(context.Context, int64) (*domain.User, error)    { return nil, f.err }

func TestStoreFailuresBecomeOperationErrors(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection reset")
	f := newFixture(t, withUsers(failingUsers{err: storeErr}))

	_, err := f.svc.Login(ctx, service.LoginInput{Email: "a@b.com", Password: "secret1"})
	domainErr := requireDomainError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	assert.Equal(t, service.MsgLoginFailed, domainErr.Message)
	assert.ErrorIs(t, err, storeErr)

	_, err = f.svc.Register(ctx, annRegistration())
	domainErr = requireDomainError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	assert.Equal(t, service.MsgRegistrationFailed, domainErr.Message)

	err = f.svc.ChangePassword(ctx, service.ChangePasswordInput{UserID: 1, CurrentPassword: "a", NewPassword: "b"})
	domainErr = requireDomainError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	assert.Equal(t, service.MsgPasswordChangeFailed, domainErr.Message)

	_, err = f.svc.Profile(ctx, 1)
	domainErr = requireDomainError(t, err, apperrors.CodeInternal, http.StatusInternalServerError)
	assert.Equal(t, service.MsgProfileFailed, domainErr.Message)

	assert.Equal(t, 4, f.logs.FilterLevelExact(zap.ErrorLevel).Len())
}

func TestLoginNeverLogsPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.Register(ctx, annRegistration())
	require.NoError(t, err)
	_, _ = f.svc.Login(ctx, service.LoginInput{Email: "a@b.com", Password: "secret-typo"})

	for _, entry := range f.logs.All() {
		for key, value := range entry.ContextMap() {
			assert.NotContains(t, key, "password")
			if s, ok := value.(string); ok {
				assert.NotContains(t, s, "secret")
			}
		}
	}
}

func TestProfileAndRoles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.svc.Register(ctx, annRegistration())
	require.NoError(t, err)

	profile, err := f.svc.Profile(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", profile.Email)
	assert.Equal(t, domain.RoleStudent, profile.RoleName)

	_, err = f.svc.Profile(ctx, 404)
	requireDomainError(t, err, apperrors.CodeNotFound, http.StatusNotFound)

	roles, err := f.svc.Roles(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, role.Name)
	}
	assert.Equal(t, domain.AllRoles, names)
}
