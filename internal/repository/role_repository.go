package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/school-service/internal/domain"
)

// RoleRepository reads the fixed role set.
type RoleRepository interface {
	GetByName(ctx context.Context, name string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	EnsureDefaults(ctx context.Context, roles []domain.Role) (int, error)
}

type roleRepository struct {
	pool *pgxpool.Pool
}

// NewRoleRepository returns a Postgres-backed implementation.
func NewRoleRepository(pool *pgxpool.Pool) RoleRepository {
	return &roleRepository{pool: pool}
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	const query = `
        SELECT id, name, COALESCE(description, '')
        FROM roles WHERE name=$1`

	var role domain.Role
	if err := r.pool.QueryRow(ctx, query, name).Scan(&role.ID, &role.Name, &role.Description); err != nil {
		return nil, mapPgError(err)
	}
	return &role, nil
}

func (r *roleRepository) List(ctx context.Context) ([]domain.Role, error) {
	const query = `
        SELECT id, name, COALESCE(description, '')
        FROM roles ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []domain.Role
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// EnsureDefaults inserts missing roles and returns how many were added.
func (r *roleRepository) EnsureDefaults(ctx context.Context, roles []domain.Role) (int, error) {
	const query = `
        INSERT INTO roles (id, name, description)
        VALUES ($1, $2, $3)
        ON CONFLICT DO NOTHING`

	inserted := 0
	for _, role := range roles {
		cmd, err := r.pool.Exec(ctx, query, role.ID, role.Name, role.Description)
		if err != nil {
			return inserted, err
		}
		inserted += int(cmd.RowsAffected())
	}
	if inserted > 0 {
		// keep the identity sequence ahead of explicitly seeded ids
		if _, err := r.pool.Exec(ctx, `SELECT setval(pg_get_serial_sequence('roles', 'id'), (SELECT MAX(id) FROM roles))`); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}
