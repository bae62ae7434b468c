// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/lumenmud/lumenmud/internal/auth"
)

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool poolIface
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool poolIface) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create stores a new account. A unique index on LOWER(name) enforces
// case-insensitive uniqueness; violations map to auth.ErrNameTaken so the
// losing side of a registration race gets a recoverable error.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, name, password_hash, email, state,
			validation_code, sent_validation, role,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		account.ID.String(),
		account.Name,
		account.PasswordHash,
		account.Email,
		account.State.String(),
		account.ValidationCode,
		account.SentValidation,
		account.Role,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("ACCOUNT_NAME_TAKEN").
				With("name", account.Name).
				Wrap(auth.ErrNameTaken)
		}
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("name", account.Name).
			Wrap(err)
	}
	return nil
}

// GetByName retrieves an account by name (case-insensitive).
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, password_hash, email, state,
		       validation_code, sent_validation, role,
		       created_at, updated_at
		FROM accounts
		WHERE LOWER(name) = LOWER($1)
	`, name)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("name", name).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_NAME_FAILED").
			With("operation", "get account by name").
			With("name", name).
			Wrap(err)
	}
	return account, nil
}

// Update updates an existing account.
func (r *AccountRepository) Update(ctx context.Context, account *auth.Account) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET
			name = $2,
			password_hash = $3,
			email = $4,
			state = $5,
			validation_code = $6,
			sent_validation = $7,
			role = $8,
			updated_at = $9
		WHERE id = $1
	`,
		account.ID.String(),
		account.Name,
		account.PasswordHash,
		account.Email,
		account.State.String(),
		account.ValidationCode,
		account.SentValidation,
		account.Role,
		account.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_FAILED").
			With("operation", "update account").
			With("id", account.ID.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", account.ID.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword updates only the password hash for an account.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = NOW()
		WHERE id = $1
	`, id.String(), passwordHash)
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		account auth.Account
		idStr   string
		state   string
	)
	err := row.Scan(
		&idStr,
		&account.Name,
		&account.PasswordHash,
		&account.Email,
		&state,
		&account.ValidationCode,
		&account.SentValidation,
		&account.Role,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	account.ID, err = ulid.Parse(idStr)
	if err != nil {
		return nil, oops.With("operation", "parse account id").With("id", idStr).Wrap(err)
	}
	account.State, err = auth.ParseValidationState(state)
	if err != nil {
		return nil, err
	}

	return &account, nil
}
