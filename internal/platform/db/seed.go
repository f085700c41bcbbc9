package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"epms/internal/domain/auth"
	"epms/internal/platform/config"
)

// Seed makes the service usable on first boot: the four fixed roles plus a
// super_admin account from config. Safe to run repeatedly.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if err := ensureRoles(ctx, pool); err != nil {
		return err
	}
	return ensureAdminUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword, cfg.SeedAdminName)
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool) error {
	for _, role := range auth.AllRoles {
		_, err := pool.Exec(ctx, "INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING", role)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, email, password, name string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx,
		"INSERT INTO users (email, password_hash, role, display_name) VALUES ($1, $2, $3, $4) RETURNING id",
		email, hash, auth.RoleSuperAdmin, name).Scan(&id)
	if err != nil {
		return err
	}
	return nil
}
