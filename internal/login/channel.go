// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package login

// Channel is the per-connection duplex line transport the dialog runs
// over. Implementations log their own transport errors; the dialog never
// inspects delivery status.
type Channel interface {
	// SendLine sends one line of text to the peer.
	SendLine(text string)

	// SetEcho toggles local input echo on the peer's client.
	SetEcho(enabled bool)

	// Disconnect sends a farewell and forcibly terminates the connection.
	// No further input is accepted once a handler triggers it.
	Disconnect(farewell string)

	// PeerAddress returns the connection's originating address, used for
	// ban matching.
	PeerAddress() string
}
