package db

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// InitAdmin makes sure a local admin account exists so the dashboard is
// reachable before any identity provider roles are assigned.
func InitAdmin(ctx context.Context, database DB, username, password string, logger *zap.Logger) error {
	if username == "" || password == "" {
		logger.Info("Admin bootstrap skipped: ADMIN_USERNAME or ADMIN_PASSWORD not set")
		return nil
	}

	var count int
	err := database.Get(ctx, &count, "SELECT COUNT(*) FROM admin_users WHERE username = $1", username)
	if err != nil {
		return fmt.Errorf("count admin users: %w", err)
	}

	if count > 0 {
		logger.Info("Admin user already exists", zap.String("username", username))
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	tag, err := database.Exec(ctx,
		"INSERT INTO admin_users (username, password, role) VALUES ($1, $2, 'admin') ON CONFLICT (username) DO NOTHING",
		username, string(hashed))
	if err != nil {
		return fmt.Errorf("insert admin user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		logger.Info("Admin user was created concurrently", zap.String("username", username))
		return nil
	}

	logger.Info("Admin user created successfully", zap.String("username", username))
	return nil
}
