// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package auth

import (
	"context"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// BanEntry is one row of the ban list. NamePattern matches account names,
// AddrPattern matches peer addresses; either may be a glob. An empty
// AddrPattern means the entry bans by name only.
type BanEntry struct {
	NamePattern string
	AddrPattern string
}

// BanRepository provides the current ban list.
type BanRepository interface {
	// CurrentBans returns all ban entries.
	CurrentBans(ctx context.Context) ([]BanEntry, error)
}

// BanMatcher checks an account name and peer address against the ban list.
type BanMatcher interface {
	// IsBanned reports whether the name or address matches any ban entry.
	IsBanned(ctx context.Context, name, addr string) (bool, error)
}

// GlobBanMatcher implements BanMatcher by compiling repository entries as
// globs on every check, so ban-list edits take effect without a restart.
type GlobBanMatcher struct {
	bans BanRepository
}

// NewGlobBanMatcher creates a GlobBanMatcher.
// Returns an error if the repository is nil.
func NewGlobBanMatcher(bans BanRepository) (*GlobBanMatcher, error) {
	if bans == nil {
		return nil, oops.Errorf("ban repository is required")
	}
	return &GlobBanMatcher{bans: bans}, nil
}

// IsBanned reports whether name or addr matches any current ban entry.
// Name matching is case-insensitive. Entries whose patterns fail to compile
// are skipped; a malformed row must not turn into an open gate or a
// blanket ban.
func (m *GlobBanMatcher) IsBanned(ctx context.Context, name, addr string) (bool, error) {
	entries, err := m.bans.CurrentBans(ctx)
	if err != nil {
		return false, oops.Code("BAN_LIST_FAILED").
			With("operation", "CurrentBans").
			Wrap(err)
	}

	folded := strings.ToLower(name)
	for _, entry := range entries {
		if entry.NamePattern != "" {
			g, compileErr := glob.Compile(strings.ToLower(entry.NamePattern))
			if compileErr == nil && g.Match(folded) {
				return true, nil
			}
		}
		if entry.AddrPattern != "" {
			g, compileErr := glob.Compile(entry.AddrPattern)
			if compileErr == nil && g.Match(addr) {
				return true, nil
			}
		}
	}

	return false, nil
}
