package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"gymdesk/internal/domain/account"
)

// SeedAdminInput carries the bootstrap admin credentials.
type SeedAdminInput struct {
	Email    string
	Password string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForCreate
}

// ExecuteSeedAdmin creates the bootstrap admin account on first start.
// It is a no-op when any account already exists, so a reconfigured
// environment never overwrites live credentials.
// PRE: Email and password are non-empty
// POST: Exactly one admin account exists after a fresh start
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) error {
	if input.Email == "" || input.Password == "" {
		return errors.New("admin email and password are required")
	}

	count, err := deps.AccountStore.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Debug("seed_admin_skipped", "reason", "accounts_exist", "count", count)
		return nil
	}

	id, err := ExecuteCreateAccount(ctx, CreateAccountInput{
		Email:                  input.Email,
		Password:               input.Password,
		Role:                   account.RoleAdmin,
		PasswordChangeRequired: true,
	}, CreateAccountDeps{AccountStore: deps.AccountStore})
	if err != nil {
		return err
	}

	slog.Info("seed_event", "event", "admin_seeded", "account_id", id, "email", input.Email)
	return nil
}
