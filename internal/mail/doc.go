// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

// Package mail delivers account notification messages over SMTP.
//
// The package has two halves: Composer renders the message texts used by
// the login dialog (temporary passwords, validation codes), and
// SMTPNotifier delivers a rendered message to a recipient with bounded
// retries. A LogNotifier is provided for development setups without a
// mail relay.
package mail
