// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenmud/lumenmud/internal/auth"
	"github.com/lumenmud/lumenmud/internal/auth/authtest"
	"github.com/lumenmud/lumenmud/pkg/errutil"
)

func newDirectory(t *testing.T) (*auth.Directory, *authtest.MemoryAccountRepo) {
	t.Helper()
	repo := authtest.NewMemoryAccountRepo()
	dir, err := auth.NewDirectory(repo, authtest.FakeHasher{})
	require.NoError(t, err)
	return dir, repo
}

func TestNewDirectory(t *testing.T) {
	t.Run("requires repository", func(t *testing.T) {
		_, err := auth.NewDirectory(nil, authtest.FakeHasher{})
		require.Error(t, err)
	})

	t.Run("requires hasher", func(t *testing.T) {
		_, err := auth.NewDirectory(authtest.NewMemoryAccountRepo(), nil)
		require.Error(t, err)
	})
}

func TestDirectoryCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account", func(t *testing.T) {
		dir, repo := newDirectory(t)

		account, err := dir.CreateAccount(ctx, "Kaleth", "opensesame1", auth.DefaultRole)
		require.NoError(t, err)

		assert.Equal(t, "Kaleth", account.Name)
		assert.Equal(t, auth.StateUnvalidated, account.State)

		stored, err := repo.GetByName(ctx, "kaleth")
		require.NoError(t, err)
		assert.Equal(t, account.ID, stored.ID)
	})

	t.Run("rejects short password", func(t *testing.T) {
		dir, _ := newDirectory(t)

		_, err := dir.CreateAccount(ctx, "Kaleth", "abc", auth.DefaultRole)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
	})

	t.Run("rejects invalid name", func(t *testing.T) {
		dir, _ := newDirectory(t)

		_, err := dir.CreateAccount(ctx, "ab2", "opensesame1", auth.DefaultRole)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_NAME")
	})

	t.Run("duplicate name returns ErrNameTaken", func(t *testing.T) {
		dir, _ := newDirectory(t)

		_, err := dir.CreateAccount(ctx, "Kaleth", "opensesame1", auth.DefaultRole)
		require.NoError(t, err)

		_, err = dir.CreateAccount(ctx, "KALETH", "opensesame1", auth.DefaultRole)
		require.ErrorIs(t, err, auth.ErrNameTaken)
	})
}

func TestDirectoryLookupByName(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory(t)

	_, err := dir.CreateAccount(ctx, "Kaleth", "opensesame1", auth.DefaultRole)
	require.NoError(t, err)

	t.Run("case-insensitive hit", func(t *testing.T) {
		account, err := dir.LookupByName(ctx, "  kAlEtH  ")
		require.NoError(t, err)
		assert.Equal(t, "Kaleth", account.Name)
	})

	t.Run("miss returns ErrNotFound", func(t *testing.T) {
		_, err := dir.LookupByName(ctx, "Vandros")
		require.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestDirectoryVerifyPassword(t *testing.T) {
	ctx := context.Background()
	dir, _ := newDirectory(t)

	account, err := dir.CreateAccount(ctx, "Kaleth", "opensesame1", auth.DefaultRole)
	require.NoError(t, err)

	ok, err := dir.VerifyPassword(ctx, account, "opensesame1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dir.VerifyPassword(ctx, account, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDirectoryValidateNewPassword(t *testing.T) {
	dir, _ := newDirectory(t)

	tests := []struct {
		name      string
		candidate string
		wantErr   bool
	}{
		{name: "letters and digits", candidate: "abc123"},
		{name: "letters and punctuation", candidate: "ab,cd!x"},
		{name: "too short", candidate: "a1b2c", wantErr: true},
		{name: "equals account name", candidate: "kaleth", wantErr: true},
		{name: "all letters", candidate: "abcdefg", wantErr: true},
		{name: "all digits", candidate: "1234567", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := dir.ValidateNewPassword("Kaleth", tt.candidate)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDirectorySetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("policy applies when not forced", func(t *testing.T) {
		dir, _ := newDirectory(t)
		account, err := dir.CreateAccount(ctx, "Kaleth", "opensesame1", auth.DefaultRole)
		require.NoError(t, err)

		err = dir.SetPassword(ctx, account, "short", false)
		require.Error(t, err)
	})

	t.Run("forced bypasses policy", func(t *testing.T) {
		dir, _ := newDirectory(t)
		account, err := dir.CreateAccount(ctx, "Kaleth", "opensesame1", auth.DefaultRole)
		require.NoError(t, err)

		// A generated temp password may be all lowercase letters.
		require.NoError(t, dir.SetPassword(ctx, account, "zqwrty", true))

		ok, err := dir.VerifyPassword(ctx, account, "zqwrty")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("store failure surfaces", func(t *testing.T) {
		dir, repo := newDirectory(t)
		account, err := dir.CreateAccount(ctx, "Kaleth", "opensesame1", auth.DefaultRole)
		require.NoError(t, err)

		repo.Err = errors.New("connection lost")
		err = dir.SetPassword(ctx, account, "abc123", false)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DIRECTORY_SET_PASSWORD_FAILED")
	})
}

func TestDirectoryEmailValidation(t *testing.T) {
	ctx := context.Background()
	dir, repo := newDirectory(t)

	account, err := dir.CreateAccount(ctx, "Kaleth", "opensesame1", auth.DefaultRole)
	require.NoError(t, err)

	t.Run("begin records pending state", func(t *testing.T) {
		require.NoError(t, dir.BeginEmailValidation(ctx, account, "k@example.com", "4812"))

		stored, err := repo.GetByName(ctx, "Kaleth")
		require.NoError(t, err)
		assert.Equal(t, auth.StatePendingEmailConfirmation, stored.State)
		assert.Equal(t, "k@example.com", stored.Email)
		assert.Equal(t, "4812", stored.ValidationCode)
	})

	t.Run("confirm clears code and validates", func(t *testing.T) {
		require.NoError(t, dir.ConfirmValidation(ctx, account))

		stored, err := repo.GetByName(ctx, "Kaleth")
		require.NoError(t, err)
		assert.Equal(t, auth.StateValid, stored.State)
		assert.Empty(t, stored.ValidationCode)
	})

	t.Run("empty email rejected", func(t *testing.T) {
		err := dir.BeginEmailValidation(ctx, account, "", "4812")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_INVALID_EMAIL")
	})
}

func TestDirectoryMarkValidationSent(t *testing.T) {
	ctx := context.Background()
	dir, repo := newDirectory(t)

	account, err := dir.CreateAccount(ctx, "Kaleth", "opensesame1", auth.DefaultRole)
	require.NoError(t, err)
	require.False(t, account.SentValidation)

	require.NoError(t, dir.MarkValidationSent(ctx, account))

	stored, err := repo.GetByName(ctx, "Kaleth")
	require.NoError(t, err)
	assert.True(t, stored.SentValidation)
}
