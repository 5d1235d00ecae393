package repository

import (
	"context"

	"github.com/resourcetech/meajuda-auth/internal/account/domain"
)

// Store defines persistence for accounts. Lookups return nil (not an error)
// when no account matches; errors are reserved for database failures.
type Store interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// Save inserts the account when its ID is empty (assigning a new id) and
	// updates the existing row otherwise. The unique-email constraint is
	// enforced by the database and is the authoritative guard against
	// concurrent duplicate signups.
	Save(ctx context.Context, a *domain.Account) (*domain.Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
