package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketing-api/internal/auth"
	"github.com/spec-kit/ticketing-api/internal/config"
)

// SeedAdmin creates the default admin account as an idempotent startup
// step, guarded by email existence. No-op when the admin credentials are
// not configured.
func SeedAdmin(ctx context.Context, pool *pgxpool.Pool, cfg config.Config, logger *zap.Logger) error {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping admin seed")
		return nil
	}
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		logger.Info("admin credentials not configured; skipping admin seed")
		return nil
	}

	var existing string
	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email=$1`, cfg.Admin.Email).Scan(&existing)
	if err == nil {
		return nil
	}
	if err != pgx.ErrNoRows {
		return err
	}

	hash, err := auth.HashPassword(cfg.Admin.Password, cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}

	const query = `
        INSERT INTO users (given_name, family_name, email, password_hash, role)
        VALUES ($1, $2, $3, $4, 'admin')`
	if _, err := pool.Exec(ctx, query,
		cfg.Admin.GivenName,
		cfg.Admin.FamilyName,
		cfg.Admin.Email,
		hash,
	); err != nil {
		return err
	}

	logger.Info("seeded default admin account", zap.String("email", cfg.Admin.Email))
	return nil
}
