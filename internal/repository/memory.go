package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/school-service/internal/domain"
)

// MemoryStore is an in-process UserRepository and RoleRepository used when no
// Postgres DSN is configured. It enforces the same email uniqueness and role
// reference constraints as the SQL schema.
type MemoryStore struct {
	mu      sync.RWMutex
	nextID  int64
	users   map[int64]domain.User
	byEmail map[string]int64
	roles   map[int64]domain.Role
	now     func() time.Time
}

var (
	_ UserRepository = (*MemoryStore)(nil)
	_ RoleRepository = (*MemoryStore)(nil)
)

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[int64]domain.User),
		byEmail: make(map[string]int64),
		roles:   make(map[int64]domain.Role),
		now:     time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[user.Email]; exists {
		return ErrDuplicateEmail
	}
	role, ok := s.roles[user.RoleID]
	if !ok {
		return fmt.Errorf("role %d does not exist", user.RoleID)
	}

	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = s.now().UTC()
	user.RoleName = role.Name
	s.users[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) Update(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	if owner, exists := s.byEmail[user.Email]; exists && owner != user.ID {
		return ErrDuplicateEmail
	}
	role, ok := s.roles[user.RoleID]
	if !ok {
		return fmt.Errorf("role %d does not exist", user.RoleID)
	}

	delete(s.byEmail, current.Email)
	updated := *user
	updated.CreatedAt = current.CreatedAt
	updated.RoleName = role.Name
	s.users[user.ID] = updated
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *MemoryStore) GetByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	user := s.users[id]
	return &user, nil
}

func (s *MemoryStore) GetByName(_ context.Context, name string) (*domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, role := range s.roles {
		if role.Name == name {
			r := role
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) List(_ context.Context) ([]domain.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	roles := make([]domain.Role, 0, len(s.roles))
	for _, role := range s.roles {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

func (s *MemoryStore) EnsureDefaults(_ context.Context, roles []domain.Role) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, role := range roles {
		if _, exists := s.roles[role.ID]; exists {
			continue
		}
		if s.hasRoleNameLocked(role.Name) {
			continue
		}
		s.roles[role.ID] = role
		inserted++
	}
	return inserted, nil
}

func (s *MemoryStore) hasRoleNameLocked(name string) bool {
	for _, role := range s.roles {
		if role.Name == name {
			return true
		}
	}
	return false
}
