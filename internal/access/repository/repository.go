// Package repository provides role and preference persistence for the
// access bounded context.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ActiveRoleKey is the preference key holding a user's chosen dashboard.
const ActiveRoleKey = "active_role"

// RoleReader lists the raw role names assigned to a user.
type RoleReader interface {
	ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// PreferenceStore persists per-user string preferences.
type PreferenceStore interface {
	// Get returns ok=false when nothing is stored.
	Get(ctx context.Context, userID uuid.UUID, key string) (value string, ok bool, err error)
	Set(ctx context.Context, userID uuid.UUID, key, value string) error
}

// Repository reads user_roles and stores preferences in user_preferences.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new access repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ListRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	roles := make([]string, 0, 2)
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roles: %w", err)
	}
	return roles, nil
}

func (r *Repository) Get(ctx context.Context, userID uuid.UUID, key string) (string, bool, error) {
	var value string
	err := r.pool.QueryRow(ctx,
		`SELECT value FROM user_preferences WHERE user_id = $1 AND key = $2`,
		userID, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get preference: %w", err)
	}
	return value, true, nil
}

func (r *Repository) Set(ctx context.Context, userID uuid.UUID, key, value string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_preferences (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()
	`, userID, key, value)
	if err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

var (
	_ RoleReader      = (*Repository)(nil)
	_ PreferenceStore = (*Repository)(nil)
)
