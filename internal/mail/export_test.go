// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package mail

import "net/smtp"

// SetSendForTest replaces the SMTP send function and zeroes the retry
// backoff so tests run without sleeping.
func SetSendForTest(n *SMTPNotifier, f func(addr string, a smtp.Auth, from string, to []string, msg []byte) error) {
	n.send = f
	n.firstInterval = 0
}
