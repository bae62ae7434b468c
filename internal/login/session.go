// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package login

import "github.com/lumenmud/lumenmud/internal/auth"

// maxFailedAttempts is the number of failed security-gated comparisons
// (password, temporary password, verification code) a session is allowed
// before it is forcibly disconnected.
const maxFailedAttempts = 3

// Session is the transient per-connection dialog state. It is owned
// exclusively by one Engine, created on connection and discarded on
// disconnect or login hand-off; nothing here is ever persisted.
type Session struct {
	// node is the active state-machine node.
	node Node

	// options are the transitions returned by the last handler, matched
	// against the next input line.
	options []Option

	// accountName keys the account under consideration once a name has
	// resolved. Handlers re-fetch through the directory rather than
	// holding the record, so concurrent mutations are always visible.
	accountName string

	// newName holds the candidate username during registration, only
	// until the password step completes.
	newName string

	// failedAttempts counts failed security-gated comparisons.
	failedAttempts int

	// loginAccount is set by a handler that completed the hand-off; the
	// engine passes it to the transport and the dialog ends.
	loginAccount *auth.Account
}

// NewSession creates a session positioned at the Start node.
func NewSession() *Session {
	return &Session{node: NodeStart}
}

// Node returns the active node, for logging and tests.
func (s *Session) Node() Node {
	return s.node
}

// recordFailure increments the failure counter and reports whether the
// session has exhausted its attempts.
func (s *Session) recordFailure() (lockedOut bool) {
	s.failedAttempts++
	return s.failedAttempts >= maxFailedAttempts
}
