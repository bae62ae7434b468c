// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

// Package auth provides the account directory for LumenMUD.
//
// # Domain Types
//
// Account is the persisted player account. Accounts move through three
// validation states: Unvalidated (legacy accounts imported before e-mail
// validation existed), PendingEmailConfirmation (a 4-digit code has been
// issued for the recorded address) and Valid (may complete a normal login).
// Use NewAccount to create instances; direct struct initialization bypasses
// name validation.
//
// # Services
//
// Directory coordinates account operations on top of AccountRepository and
// PasswordHasher: lookup, password verification and rotation, account
// creation and the e-mail validation state transitions driven by the login
// dialog. BanMatcher evaluates the ban list against an account name and a
// peer address.
//
// Secrets (temporary recovery passwords, verification codes) come from
// GenerateSecret, which draws uniformly from a caller-supplied charset.
package auth
