// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package mail

import "fmt"

// Composer renders the account-validation messages sent by the login
// dialog. The zero value uses the default game name.
type Composer struct {
	// GameName appears in subject tags and message bodies. Empty means
	// "LumenMUD".
	GameName string
}

func (c Composer) game() string {
	if c.GameName == "" {
		return "LumenMUD"
	}
	return c.GameName
}

// TempPasswordMail renders the recovery message carrying a temporary
// password for an account created before e-mail validation existed.
func (c Composer) TempPasswordMail(accountName, password string) (subject, body string) {
	subject = fmt.Sprintf("[%s] Temporary password for %s", c.game(), accountName)
	body = fmt.Sprintf(
		"Hello,\n\n"+
			"Your account %s predates e-mail validation on %s, so a temporary\n"+
			"password has been generated for it:\n\n"+
			"    %s\n\n"+
			"Enter it at the connection screen. You will then be asked to choose\n"+
			"a new password of your own.\n\n"+
			"If you did not try to connect, you may ignore this message; your\n"+
			"old password no longer works, but nobody else knows this one.\n\n"+
			"The %s team",
		accountName, c.game(), password, c.game())
	return subject, body
}

// ValidationCodeMail renders the message carrying the 4-digit code that
// confirms ownership of an address.
func (c Composer) ValidationCodeMail(accountName, code string) (subject, body string) {
	subject = fmt.Sprintf("[%s] Validation code for %s", c.game(), accountName)
	body = fmt.Sprintf(
		"Hello,\n\n"+
			"This address was given for the account %s on %s. To confirm it,\n"+
			"enter the following code at the connection screen:\n\n"+
			"    %s\n\n"+
			"If you did not request this, simply ignore this message and the\n"+
			"address will not be attached to any account.\n\n"+
			"The %s team",
		accountName, c.game(), code, c.game())
	return subject, body
}
