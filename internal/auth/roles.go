package auth

import (
	"errors"
	"sort"
	"strings"

	"github.com/spec-kit/school-service/internal/domain"
)

var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("insufficient role")
)

type requirementKind int

const (
	requireInvalid requirementKind = iota
	requirePublic
	requireAuthenticated
	requireRole
)

// Requirement is the access rule an operation declares. The zero value admits nobody.
type Requirement struct {
	kind  requirementKind
	roles map[string]struct{}
}

// Public admits every caller, with or without a token.
func Public() Requirement {
	return Requirement{kind: requirePublic}
}

// Authenticated admits any caller holding a valid token.
func Authenticated() Requirement {
	return Requirement{kind: requireAuthenticated}
}

// RoleIn admits callers whose role claim exactly matches one of roles.
func RoleIn(roles ...string) Requirement {
	set := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		set[role] = struct{}{}
	}
	return Requirement{kind: requireRole, roles: set}
}

// IsPublic reports whether no identity is needed.
func (r Requirement) IsPublic() bool {
	return r.kind == requirePublic
}

func (r Requirement) String() string {
	switch r.kind {
	case requirePublic:
		return "public"
	case requireAuthenticated:
		return "authenticated"
	case requireInvalid:
		return "invalid"
	default:
		names := make([]string, 0, len(r.roles))
		for role := range r.roles {
			names = append(names, role)
		}
		sort.Strings(names)
		return "role in [" + strings.Join(names, ", ") + "]"
	}
}

// Authorize evaluates r against identity, which is nil when the caller presented no valid token.
func Authorize(r Requirement, identity *domain.Identity) error {
	if r.kind == requirePublic {
		return nil
	}
	if identity == nil {
		return ErrUnauthenticated
	}
	switch r.kind {
	case requireAuthenticated:
		return nil
	case requireInvalid:
		return ErrForbidden
	}
	if _, ok := r.roles[identity.Role]; !ok {
		return ErrForbidden
	}
	return nil
}
