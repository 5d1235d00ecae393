package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/resourcetech/meajuda-auth/internal/account/domain"
)

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns an account store that uses the given db for persistence.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const accountColumns = `id, name, email, password_hash, auth_provider, provider_id, image_url, email_verified, created_at, updated_at`

// GetByID returns the account for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// GetByEmail returns the account with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (s *PostgresStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

// Save inserts the account when ID is empty, assigning a new UUID, and updates
// the existing row otherwise. Returns the persisted account.
func (s *PostgresStore) Save(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	a.UpdatedAt = now

	hash := sql.NullString{String: a.PasswordHash, Valid: a.PasswordHash != ""}
	providerID := sql.NullString{String: a.ProviderID, Valid: a.ProviderID != ""}
	imageURL := sql.NullString{String: a.ImageURL, Valid: a.ImageURL != ""}

	if a.ID == "" {
		a.ID = uuid.New().String()
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO accounts (`+accountColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			a.ID, a.Name, a.Email, hash, string(a.AuthProvider), providerID,
			imageURL, a.EmailVerified, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			a.ID = ""
			return nil, err
		}
		return a, nil
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE accounts
		 SET name = $2, email = $3, password_hash = $4, auth_provider = $5,
		     provider_id = $6, image_url = $7, email_verified = $8, updated_at = $9
		 WHERE id = $1`,
		a.ID, a.Name, a.Email, hash, string(a.AuthProvider), providerID,
		imageURL, a.EmailVerified, a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// ExistsByEmail reports whether an account with the given email exists.
func (s *PostgresStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func scanAccount(row *sql.Row) (*domain.Account, error) {
	var a domain.Account
	var hash, providerID, imageURL sql.NullString
	var provider string
	err := row.Scan(&a.ID, &a.Name, &a.Email, &hash, &provider, &providerID,
		&imageURL, &a.EmailVerified, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.PasswordHash = hash.String
	a.AuthProvider = domain.AuthProvider(provider)
	a.ProviderID = providerID.String
	a.ImageURL = imageURL.String
	return &a, nil
}
