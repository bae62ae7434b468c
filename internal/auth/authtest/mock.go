// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

// Package authtest provides test doubles for the auth package.
package authtest

import (
	"context"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/lumenmud/lumenmud/internal/auth"
)

// MemoryAccountRepo is an AccountRepository backed by a map, keyed by
// lowercased name to mirror the store's case-insensitive lookups.
type MemoryAccountRepo struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account

	// Err, when set, is returned by every method.
	Err error
}

// NewMemoryAccountRepo creates an empty MemoryAccountRepo.
func NewMemoryAccountRepo() *MemoryAccountRepo {
	return &MemoryAccountRepo{accounts: make(map[string]*auth.Account)}
}

// Create implements AccountRepository.
func (r *MemoryAccountRepo) Create(_ context.Context, account *auth.Account) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(account.Name)
	if _, exists := r.accounts[key]; exists {
		return auth.ErrNameTaken
	}
	cp := *account
	r.accounts[key] = &cp
	return nil
}

// GetByName implements AccountRepository.
func (r *MemoryAccountRepo) GetByName(_ context.Context, name string) (*auth.Account, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	account, ok := r.accounts[strings.ToLower(name)]
	if !ok {
		return nil, auth.ErrNotFound
	}
	cp := *account
	return &cp, nil
}

// Update implements AccountRepository.
func (r *MemoryAccountRepo) Update(_ context.Context, account *auth.Account) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(account.Name)
	if _, ok := r.accounts[key]; !ok {
		return auth.ErrNotFound
	}
	cp := *account
	r.accounts[key] = &cp
	return nil
}

// UpdatePassword implements AccountRepository.
func (r *MemoryAccountRepo) UpdatePassword(_ context.Context, id ulid.ULID, hash string) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, account := range r.accounts {
		if account.ID == id {
			account.PasswordHash = hash
			return nil
		}
	}
	return auth.ErrNotFound
}

// FakeHasher is a PasswordHasher that stores passwords as "plain:<pw>",
// keeping directory tests independent of argon2 cost.
type FakeHasher struct {
	// HashErr, when set, is returned by Hash.
	HashErr error
}

// Hash implements PasswordHasher.
func (h FakeHasher) Hash(password string) (string, error) {
	if h.HashErr != nil {
		return "", h.HashErr
	}
	return "plain:" + password, nil
}

// Verify implements PasswordHasher.
func (h FakeHasher) Verify(password, hash string) (bool, error) {
	return hash == "plain:"+password, nil
}

// StaticBans is a BanRepository returning a fixed list.
type StaticBans struct {
	Entries []auth.BanEntry

	// Err, when set, is returned by CurrentBans.
	Err error
}

// CurrentBans implements BanRepository.
func (b StaticBans) CurrentBans(_ context.Context) ([]auth.BanEntry, error) {
	if b.Err != nil {
		return nil, b.Err
	}
	return b.Entries, nil
}

// Verify interfaces are satisfied.
var (
	_ auth.AccountRepository = (*MemoryAccountRepo)(nil)
	_ auth.PasswordHasher    = FakeHasher{}
	_ auth.BanRepository     = StaticBans{}
)
