package persistence

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/school-service/internal/domain"
	"github.com/spec-kit/school-service/internal/repository"
)

// SeedRoles makes sure every fixed role exists before credentials reference them.
func SeedRoles(ctx context.Context, roles repository.RoleRepository, logger *zap.Logger) error {
	inserted, err := roles.EnsureDefaults(ctx, domain.DefaultRoles())
	if err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	if inserted > 0 {
		logger.Info("roles seeded", zap.Int("count", inserted))
	}
	return nil
}
