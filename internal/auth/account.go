// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ValidationState tracks how far an account has progressed through e-mail
// validation.
type ValidationState int

const (
	// StateUnvalidated marks an account that has never proven ownership of
	// its e-mail address. Legacy accounts start here.
	StateUnvalidated ValidationState = iota

	// StatePendingEmailConfirmation marks an account whose 4-digit
	// verification code has been issued but not yet confirmed.
	StatePendingEmailConfirmation

	// StateValid marks a fully validated account, eligible for normal login.
	StateValid
)

// String returns the state name used in logs and the database.
func (s ValidationState) String() string {
	switch s {
	case StateUnvalidated:
		return "unvalidated"
	case StatePendingEmailConfirmation:
		return "pending"
	case StateValid:
		return "valid"
	default:
		return "unknown"
	}
}

// ParseValidationState converts a stored state name back to its value.
func ParseValidationState(s string) (ValidationState, error) {
	switch s {
	case "unvalidated":
		return StateUnvalidated, nil
	case "pending":
		return StatePendingEmailConfirmation, nil
	case "valid":
		return StateValid, nil
	default:
		return StateUnvalidated, oops.Code("AUTH_INVALID_STATE").
			With("state", s).
			Errorf("unknown validation state %q", s)
	}
}

// DefaultRole is the permission profile assigned to newly created accounts.
const DefaultRole = "player"

// MinNameLetters is the minimum account name length.
const MinNameLetters = 3

// Account names are letters only, at least three of them. Matching is
// case-insensitive everywhere; the repository stores the name as typed but
// enforces uniqueness on the folded form.
var nameRegex = regexp.MustCompile(`^[a-zA-Z]{3,}$`)

// Account is a player account as stored by the directory.
type Account struct {
	ID           ulid.ULID
	Name         string
	PasswordHash string

	// Email is empty when no address is on file.
	Email string

	State ValidationState

	// ValidationCode holds the pending 4-digit code while State is
	// StatePendingEmailConfirmation, and is empty otherwise.
	ValidationCode string

	// SentValidation records that a temporary recovery password has already
	// been e-mailed, so reconnecting does not trigger a resend.
	SentValidation bool

	Role      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount creates an Account with a validated name and the given
// password hash. New accounts start unvalidated with no e-mail on file.
func NewAccount(name, passwordHash, role string) (*Account, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_EMPTY_HASH").Errorf("password hash cannot be empty")
	}
	if role == "" {
		role = DefaultRole
	}

	now := time.Now()
	return &Account{
		ID:           ulid.Make(),
		Name:         name,
		PasswordHash: passwordHash,
		State:        StateUnvalidated,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// HasEmail reports whether an e-mail address is on file.
func (a *Account) HasEmail() bool {
	return a.Email != ""
}

// NameEquals compares account names case-insensitively.
func (a *Account) NameEquals(name string) bool {
	return strings.EqualFold(a.Name, name)
}

// ValidateName checks an account name against the naming rules:
// letters only, at least MinNameLetters of them.
func ValidateName(name string) error {
	if name == "" {
		return oops.Code("AUTH_INVALID_NAME").Errorf("account name cannot be empty")
	}
	if !nameRegex.MatchString(name) {
		return oops.Code("AUTH_INVALID_NAME").
			With("name", name).
			Errorf("account name must be at least %d letters, letters only", MinNameLetters)
	}
	return nil
}

// AccountRepository manages account persistence. GetByName matching is
// case-insensitive. Create returns ErrNameTaken when the folded name is
// already in use.
type AccountRepository interface {
	// Create stores a new account.
	Create(ctx context.Context, account *Account) error

	// GetByName retrieves an account by name (case-insensitive).
	GetByName(ctx context.Context, name string) (*Account, error)

	// Update updates an existing account.
	Update(ctx context.Context, account *Account) error

	// UpdatePassword updates only the password hash for an account.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error
}
