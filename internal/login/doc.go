// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

// Package login implements the connection-time dialog: the state machine
// that authenticates an existing account, registers a new one, or recovers
// a legacy account through an e-mailed temporary password.
//
// # Engine
//
// Each connected session owns one Engine. The engine is single-threaded:
// the transport feeds it one input line at a time and sends the returned
// prompt before reading more input. Nodes are a closed enumeration (Node)
// dispatched through a static handler table; every handler returns a
// prompt plus Option records mapping recognized keywords (and a default
// fallthrough) to the next node. An empty option set is terminal: either
// the session logged in, or the handler already disconnected it.
//
// # Security gates
//
// Password, temporary-password and verification-code comparisons share one
// per-session failure counter; the third consecutive failure disconnects
// the session. Ban matching runs only after a correct password so ban
// status never leaks to unauthenticated probers. Format errors (names,
// e-mail syntax) retry without bound and without counting.
package login
