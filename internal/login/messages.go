// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package login

import (
	"fmt"
	"math/rand/v2"

	"github.com/lumenmud/lumenmud/internal/auth"
)

// Connection banners, one shown before the Start prompt. The pick is
// cosmetic, so math/rand is fine here.
var banners = []string{
	"Welcome to LumenMUD, where old lanterns still burn.",
	"LumenMUD -- the light is on, come in.",
	"You stand before the gates of LumenMUD.",
}

func randomBanner() string {
	return banners[rand.IntN(len(banners))]
}

// AdminContact is the address users are pointed at when they cannot
// resolve a problem through the dialog itself.
const AdminContact = "admin@lumenmud.org"

const (
	msgStart = "If you had an account on the old server and want to reclaim one of its\n" +
		"characters, enter its name below. Note that this is the character's name,\n" +
		"not the account's name.\n\n" +
		"Enter your username, or NOUVEAU to create one. Type QUIT to disconnect."

	msgUnknownUser = "That username does not exist. Have you created it?\n" +
		"Try another existing username, or enter R to return to the welcome screen."

	msgTempPasswordSent = "A confirmation e-mail has been sent to this account's recorded address.\n" +
		"It contains the account's temporary password, which you must now enter in\n" +
		"your MUD client. If you lose the connection, reconnect with the same\n" +
		"username. If the old address is no longer valid and no e-mail arrives,\n" +
		"write to " + AdminContact + " mentioning the old address so we can\n" +
		"identify you.\n\n" +
		"Enter the temporary password received by e-mail:"

	msgEnterTempPassword = "Enter the temporary password received by e-mail:"

	msgBadPassword = "Invalid password.\n" +
		"Try another password, or enter R to return to the welcome screen."

	msgBadTempPassword = "Invalid password. Try again:"

	msgLockout = "Too many failed attempts. Disconnecting..."

	msgBanned = "You have been banned and cannot connect.\n" +
		"If you believe this ban is a mistake, contact the administrators at " + AdminContact + "."

	msgNewUsername = "Enter the name of your new account."

	msgNameInvalid = "That username is not valid.\n" +
		"Only letters are accepted, at least three of them.\n" +
		"Enter a new username, or enter R to return to the welcome screen."

	msgNewPassword = "Enter the password for this new account."

	msgAccountCreated = "Welcome! Your new account has been created."

	msgCreateFailed = "An unexpected error occurred. Please write to " + AdminContact + "\n" +
		"to report the problem, or press enter to start over."

	msgAskEmail = "Enter a valid e-mail address for this account. A 4-digit confirmation\n" +
		"code will be sent to it."

	msgCodeSent = "A 4-digit confirmation code has been sent to this address.\n" +
		"Enter it below to validate the account:"

	msgChangeTempPassword = "Temporary password accepted.\n\n" +
		"Password change: enter a new password for this account.\n\n" +
		"New password:"

	msgNewPasswordInvalid = "That password is not valid. Enter a new password:"

	msgEnterCode = "This account still has a pending confirmation code.\n" +
		"Enter the 4-digit code received by e-mail:"

	msgFarewell = "Goodbye! Disconnecting..."

	msgInternalError = "An internal error occurred. Disconnecting..."
)

func msgPasswordTooShort() string {
	return fmt.Sprintf("The password must be at least %d characters long.\n"+
		"Enter a new password, or enter R to return to the welcome screen.", auth.MinPasswordLength)
}

func msgNameTaken(name string) string {
	return fmt.Sprintf("The account %q already exists.\n"+
		"Enter another username, or enter R to return to the welcome screen.", name)
}

func msgAskPassword(name string) string {
	return fmt.Sprintf("Enter the password for the account %s.", name)
}

func msgEmailInvalid(email string) string {
	return fmt.Sprintf("%q is not a valid e-mail address. Try again:", email)
}

func msgCodeMismatch(code string) string {
	return fmt.Sprintf("%q does not match the code that was sent. Try again:", code)
}
