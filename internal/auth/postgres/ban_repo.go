// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package postgres

import (
	"context"

	"github.com/samber/oops"

	"github.com/lumenmud/lumenmud/internal/auth"
)

// BanRepository implements auth.BanRepository using PostgreSQL.
type BanRepository struct {
	pool poolIface
}

// NewBanRepository creates a new BanRepository.
func NewBanRepository(pool poolIface) *BanRepository {
	return &BanRepository{pool: pool}
}

// CurrentBans returns all ban entries.
func (r *BanRepository) CurrentBans(ctx context.Context) ([]auth.BanEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT name_pattern, addr_pattern FROM bans
	`)
	if err != nil {
		return nil, oops.Code("BAN_LIST_FAILED").
			With("operation", "select bans").
			Wrap(err)
	}
	defer rows.Close()

	var entries []auth.BanEntry
	for rows.Next() {
		var entry auth.BanEntry
		if err := rows.Scan(&entry.NamePattern, &entry.AddrPattern); err != nil {
			return nil, oops.Code("BAN_LIST_FAILED").
				With("operation", "scan ban row").
				Wrap(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("BAN_LIST_FAILED").
			With("operation", "iterate bans").
			Wrap(err)
	}

	return entries, nil
}
