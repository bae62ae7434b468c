// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested account does not exist.
var ErrNotFound = errors.New("not found")

// ErrNameTaken is returned when creating an account whose name already
// exists. The uniqueness check happens in the repository, so two sessions
// racing to register the same name resolve there, not in the dialog.
var ErrNameTaken = errors.New("account name taken")
