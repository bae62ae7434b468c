// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/samber/oops"
)

// MinPasswordLength is the minimum accepted password length, both at
// creation time and for the stronger permanent-password policy.
const MinPasswordLength = 6

// Directory is the account directory service used by the login dialog.
type Directory struct {
	accounts AccountRepository
	hasher   PasswordHasher
	logger   *slog.Logger
}

// NewDirectory creates a Directory with a no-op logger.
// Returns an error if any required dependency is nil.
func NewDirectory(accounts AccountRepository, hasher PasswordHasher) (*Directory, error) {
	return NewDirectoryWithLogger(accounts, hasher, slog.New(slog.DiscardHandler))
}

// NewDirectoryWithLogger creates a Directory with the provided logger.
// Returns an error if any required dependency is nil.
func NewDirectoryWithLogger(accounts AccountRepository, hasher PasswordHasher, logger *slog.Logger) (*Directory, error) {
	if accounts == nil {
		return nil, oops.Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Directory{
		accounts: accounts,
		hasher:   hasher,
		logger:   logger,
	}, nil
}

// LookupByName retrieves an account by its case-insensitive name.
// Returns ErrNotFound when no such account exists.
func (d *Directory) LookupByName(ctx context.Context, name string) (*Account, error) {
	account, err := d.accounts.GetByName(ctx, strings.TrimSpace(name))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, oops.Code("DIRECTORY_LOOKUP_FAILED").
			With("operation", "GetByName").
			Wrap(err)
	}
	return account, nil
}

// VerifyPassword checks a candidate password against the account's hash.
// Returns (false, nil) on a plain mismatch; errors indicate a corrupt hash
// or repository trouble, never which characters were wrong.
func (d *Directory) VerifyPassword(ctx context.Context, account *Account, candidate string) (bool, error) {
	ok, err := d.hasher.Verify(candidate, account.PasswordHash)
	if err != nil {
		return false, oops.Code("DIRECTORY_VERIFY_FAILED").
			With("account", account.Name).
			Wrap(err)
	}
	return ok, nil
}

// SetPassword replaces an account's password. When forced is false the
// candidate must satisfy ValidateNewPassword; forced rotation bypasses
// the policy, which lets generated temporary passwords through.
func (d *Directory) SetPassword(ctx context.Context, account *Account, newPassword string, forced bool) error {
	if !forced {
		if err := d.ValidateNewPassword(account.Name, newPassword); err != nil {
			return err
		}
	}

	hash, err := d.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("DIRECTORY_SET_PASSWORD_FAILED").
			With("operation", "Hash").
			Wrap(err)
	}

	if err := d.accounts.UpdatePassword(ctx, account.ID, hash); err != nil {
		return oops.Code("DIRECTORY_SET_PASSWORD_FAILED").
			With("operation", "UpdatePassword").
			With("account", account.Name).
			Wrap(err)
	}
	account.PasswordHash = hash
	return nil
}

// ValidateNewPassword applies the account-level password policy: at least
// MinPasswordLength characters, not the account name itself, and not a
// single character class (all letters or all digits).
func (d *Directory) ValidateNewPassword(name, candidate string) error {
	if len(candidate) < MinPasswordLength {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if strings.EqualFold(candidate, name) {
		return oops.Code("AUTH_INVALID_PASSWORD").Errorf("password cannot be the account name")
	}

	letters, digits := 0, 0
	for _, r := range candidate {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r):
			digits++
		}
	}
	if letters == len(candidate) || digits == len(candidate) {
		return oops.Code("AUTH_INVALID_PASSWORD").
			Errorf("password must mix letters with digits or punctuation")
	}

	return nil
}

// CreateAccount hashes the password and stores a new account under the
// default permission profile for the given role. The repository enforces
// name uniqueness; a race between two sessions creating the same name
// surfaces here as ErrNameTaken for the loser.
func (d *Directory) CreateAccount(ctx context.Context, name, password, role string) (*Account, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, oops.Code("AUTH_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Errorf("password must be at least %d characters", MinPasswordLength)
	}

	hash, err := d.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("DIRECTORY_CREATE_FAILED").
			With("operation", "Hash").
			Wrap(err)
	}

	account, err := NewAccount(name, hash, role)
	if err != nil {
		return nil, err
	}

	if err := d.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrNameTaken) {
			return nil, ErrNameTaken
		}
		return nil, oops.Code("DIRECTORY_CREATE_FAILED").
			With("operation", "Create").
			With("account", name).
			Wrap(err)
	}

	d.logger.Info("account created",
		"event", "account_created",
		"account", account.Name,
		"role", account.Role,
	)

	return account, nil
}

// BeginEmailValidation records a new address and its pending 4-digit code,
// moving the account to StatePendingEmailConfirmation.
func (d *Directory) BeginEmailValidation(ctx context.Context, account *Account, email, code string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("e-mail address cannot be empty")
	}
	if code == "" {
		return oops.Code("DIRECTORY_VALIDATION_FAILED").Errorf("validation code cannot be empty")
	}

	account.Email = email
	account.State = StatePendingEmailConfirmation
	account.ValidationCode = code
	account.UpdatedAt = time.Now()

	if err := d.accounts.Update(ctx, account); err != nil {
		return oops.Code("DIRECTORY_VALIDATION_FAILED").
			With("operation", "Update").
			With("account", account.Name).
			Wrap(err)
	}
	return nil
}

// ConfirmValidation clears any pending code and marks the account Valid.
func (d *Directory) ConfirmValidation(ctx context.Context, account *Account) error {
	account.State = StateValid
	account.ValidationCode = ""
	account.UpdatedAt = time.Now()

	if err := d.accounts.Update(ctx, account); err != nil {
		return oops.Code("DIRECTORY_VALIDATION_FAILED").
			With("operation", "Update").
			With("account", account.Name).
			Wrap(err)
	}

	d.logger.Info("account validated",
		"event", "account_validated",
		"account", account.Name,
	)
	return nil
}

// MarkValidationSent records that the temporary recovery password has been
// dispatched, so a reconnecting session does not trigger a resend.
func (d *Directory) MarkValidationSent(ctx context.Context, account *Account) error {
	account.SentValidation = true
	account.UpdatedAt = time.Now()

	if err := d.accounts.Update(ctx, account); err != nil {
		return oops.Code("DIRECTORY_VALIDATION_FAILED").
			With("operation", "Update").
			With("account", account.Name).
			Wrap(err)
	}
	return nil
}
