// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package login

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"regexp"
	"strings"

	"github.com/samber/oops"

	"github.com/lumenmud/lumenmud/internal/auth"
	"github.com/lumenmud/lumenmud/pkg/errutil"
)

// emailRegex accepts anything shaped like localpart@domain.tld. Real
// validation happens by delivering the confirmation code.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// DirectoryService defines the account directory operations the dialog
// needs.
type DirectoryService interface {
	// LookupByName retrieves an account by name (case-insensitive).
	// Returns auth.ErrNotFound when no such account exists.
	LookupByName(ctx context.Context, name string) (*auth.Account, error)

	// VerifyPassword checks a candidate password against the account.
	VerifyPassword(ctx context.Context, account *auth.Account, candidate string) (bool, error)

	// SetPassword replaces the account's password; forced bypasses the
	// password policy (temporary recovery rotation).
	SetPassword(ctx context.Context, account *auth.Account, newPassword string, forced bool) error

	// ValidateNewPassword applies the account-level password policy.
	ValidateNewPassword(name, candidate string) error

	// CreateAccount creates a new account under the given role.
	// Returns auth.ErrNameTaken if the name is already in use.
	CreateAccount(ctx context.Context, name, password, role string) (*auth.Account, error)

	// BeginEmailValidation records an address and its pending code.
	BeginEmailValidation(ctx context.Context, account *auth.Account, email, code string) error

	// ConfirmValidation clears any pending code and marks the account Valid.
	ConfirmValidation(ctx context.Context, account *auth.Account) error

	// MarkValidationSent records that the recovery secret was dispatched.
	MarkValidationSent(ctx context.Context, account *auth.Account) error
}

// Notifier delivers out-of-band messages. The dialog treats delivery as
// fire-and-forget; failures are logged, never surfaced to the session.
type Notifier interface {
	Send(ctx context.Context, fromTag, to, subject, body string) error
}

// MailComposer builds the two validation messages the dialog sends.
type MailComposer interface {
	// TempPasswordMail returns subject and body for the legacy-recovery
	// message carrying a temporary password.
	TempPasswordMail(accountName, password string) (subject, body string)

	// ValidationCodeMail returns subject and body for the message carrying
	// a 4-digit confirmation code.
	ValidationCodeMail(accountName, code string) (subject, body string)
}

// SecretSource produces the dialog's generated secrets. The default source
// draws from crypto/rand; tests substitute a deterministic one.
type SecretSource interface {
	TempPassword() (string, error)
	ValidationCode() (string, error)
}

type generatorSource struct{}

func (generatorSource) TempPassword() (string, error)   { return auth.GenerateTempPassword() }
func (generatorSource) ValidationCode() (string, error) { return auth.GenerateValidationCode() }

// Dialog holds the services shared by every session's node handlers. One
// Dialog serves all sessions; per-session state lives in Session.
type Dialog struct {
	directory DirectoryService
	bans      auth.BanMatcher
	notifier  Notifier
	mail      MailComposer
	secrets   SecretSource
	logger    *slog.Logger

	handlers map[Node]handlerFunc
}

// handlerFunc executes one node against the session's latest input line.
// The input is absent (empty) for nodes entered without consuming input.
type handlerFunc func(ctx context.Context, s *Session, ch Channel, input string) (Result, error)

// NewDialog creates a Dialog with a no-op logger.
// Returns an error if any required dependency is nil.
func NewDialog(directory DirectoryService, bans auth.BanMatcher, notifier Notifier, mail MailComposer) (*Dialog, error) {
	return NewDialogWithLogger(directory, bans, notifier, mail, slog.New(slog.DiscardHandler))
}

// NewDialogWithLogger creates a Dialog with the provided logger.
// Returns an error if any required dependency is nil.
func NewDialogWithLogger(directory DirectoryService, bans auth.BanMatcher, notifier Notifier, mail MailComposer, logger *slog.Logger) (*Dialog, error) {
	if directory == nil {
		return nil, oops.Errorf("directory service is required")
	}
	if bans == nil {
		return nil, oops.Errorf("ban matcher is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}
	if mail == nil {
		return nil, oops.Errorf("mail composer is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}

	d := &Dialog{
		directory: directory,
		bans:      bans,
		notifier:  notifier,
		mail:      mail,
		secrets:   generatorSource{},
		logger:    logger,
	}
	d.handlers = map[Node]handlerFunc{
		NodeStart:                   d.start,
		NodeUsername:                d.username,
		NodeAskPassword:             d.askPassword,
		NodeCreateAccount:           d.createAccount,
		NodeCreateUsername:          d.createUsername,
		NodeCreatePassword:          d.createPassword,
		NodeCreateEmailAddress:      d.createEmailAddress,
		NodeValidateAccount:         d.validateAccount,
		NodeCheckTemporaryPassword:  d.checkTemporaryPassword,
		NodeChangeTemporaryPassword: d.changeTemporaryPassword,
		NodeQuit:                    d.quit,
	}
	return d, nil
}

// SetSecretSource replaces the secret source. Intended for tests.
func (d *Dialog) SetSecretSource(src SecretSource) {
	if src != nil {
		d.secrets = src
	}
}

// handle runs the handler for the given node.
func (d *Dialog) handle(ctx context.Context, node Node, s *Session, ch Channel, input string) (Result, error) {
	h, ok := d.handlers[node]
	if !ok {
		return Result{}, oops.Code("DIALOG_UNKNOWN_NODE").
			With("node", node.String()).
			Errorf("no handler for node %s", node)
	}
	return h(ctx, s, ch, input)
}

// start is the entry prompt: enter an existing name, NOUVEAU, or QUIT.
func (d *Dialog) start(_ context.Context, _ *Session, _ Channel, _ string) (Result, error) {
	return Result{
		Prompt: msgStart,
		Options: []Option{
			{Key: "nouveau", Next: NodeCreateAccount},
			{Key: "quit", Next: NodeQuit},
			{Next: NodeUsername},
		},
	}, nil
}

// username resolves an existing account by name, routing legacy accounts
// to temporary-password recovery and validated ones to the password gate.
func (d *Dialog) username(ctx context.Context, s *Session, ch Channel, input string) (Result, error) {
	name := strings.TrimSpace(input)

	account, err := d.directory.LookupByName(ctx, name)
	if err != nil {
		if errors.Is(err, auth.ErrNotFound) {
			return retry(msgUnknownUser, NodeUsername, true), nil
		}
		return Result{}, err
	}

	// Accounts without a validated e-mail trail go through recovery: the
	// password is rotated to a mailed temporary secret exactly once, and
	// reconnecting sessions are sent straight to the temporary-password
	// gate rather than invalidating the secret already in the mail.
	needsRecovery := !account.HasEmail() || account.State != auth.StateValid

	switch {
	case needsRecovery && !account.SentValidation:
		return d.beginRecovery(ctx, s, account)

	case needsRecovery:
		s.accountName = account.Name
		return Result{
			Prompt:  msgEnterTempPassword,
			Options: []Option{{Next: NodeCheckTemporaryPassword}},
		}, nil

	default:
		s.accountName = account.Name
		ch.SetEcho(false)
		return Result{
			Prompt: msgAskPassword(account.Name),
			Options: []Option{
				{Key: "r", Do: OpEchoOn, Next: NodeStart},
				{Next: NodeAskPassword},
			},
		}, nil
	}
}

func (d *Dialog) beginRecovery(ctx context.Context, s *Session, account *auth.Account) (Result, error) {
	temp, err := d.secrets.TempPassword()
	if err != nil {
		return Result{}, err
	}
	if err := d.directory.SetPassword(ctx, account, temp, true); err != nil {
		return Result{}, err
	}
	if err := d.directory.MarkValidationSent(ctx, account); err != nil {
		return Result{}, err
	}

	subject, body := d.mail.TempPasswordMail(account.Name, temp)
	d.dispatchMail(ctx, account.Email, subject, body, "temp_password")

	s.accountName = account.Name
	return Result{
		Prompt:  msgTempPasswordSent,
		Options: []Option{{Next: NodeCheckTemporaryPassword}},
	}, nil
}

// askPassword verifies the password for a resolved, valid account. The ban
// check runs only after a correct password so ban status is never an
// oracle for password correctness.
func (d *Dialog) askPassword(ctx context.Context, s *Session, ch Channel, input string) (Result, error) {
	account, err := d.directory.LookupByName(ctx, s.accountName)
	if err != nil {
		return Result{}, err
	}

	ok, err := d.directory.VerifyPassword(ctx, account, strings.TrimSpace(input))
	if err != nil {
		return Result{}, err
	}

	if !ok {
		if s.recordFailure() {
			LoginAttempts.WithLabelValues(OutcomeLockout).Inc()
			ch.Disconnect(msgLockout)
			return Result{}, nil
		}
		LoginAttempts.WithLabelValues(OutcomeBadPassword).Inc()
		return Result{
			Prompt: msgBadPassword,
			Options: []Option{
				{Key: "r", Do: OpEchoOn, Next: NodeStart},
				{Next: NodeAskPassword},
			},
		}, nil
	}

	banned, err := d.bans.IsBanned(ctx, account.Name, ch.PeerAddress())
	if err != nil {
		return Result{}, err
	}
	if banned {
		LoginAttempts.WithLabelValues(OutcomeBanned).Inc()
		d.logger.Warn("banned account rejected",
			"event", "login_banned",
			"account", account.Name,
			"address", ch.PeerAddress(),
		)
		ch.Disconnect(msgBanned)
		return Result{}, nil
	}

	switch {
	case !account.HasEmail():
		// An address is mandatory once the account has logged in.
		ch.SetEcho(true)
		return Result{
			Prompt:  msgAskEmail,
			Options: []Option{{Next: NodeCreateEmailAddress}},
		}, nil

	case account.State == auth.StatePendingEmailConfirmation:
		ch.SetEcho(true)
		return Result{
			Prompt:  msgEnterCode,
			Options: []Option{{Next: NodeValidateAccount}},
		}, nil

	default:
		ch.SetEcho(true)
		s.loginAccount = account
		return Result{}, nil
	}
}

// createAccount prompts for the new account's name.
func (d *Dialog) createAccount(_ context.Context, _ *Session, _ Channel, _ string) (Result, error) {
	return Result{
		Prompt:  msgNewUsername,
		Options: []Option{{Next: NodeCreateUsername}},
	}, nil
}

// createUsername validates uniqueness and format of the candidate name.
func (d *Dialog) createUsername(ctx context.Context, s *Session, ch Channel, input string) (Result, error) {
	name := strings.TrimSpace(input)

	_, err := d.directory.LookupByName(ctx, name)
	switch {
	case err == nil:
		return retry(msgNameTaken(name), NodeCreateUsername, true), nil
	case !errors.Is(err, auth.ErrNotFound):
		return Result{}, err
	}

	if err := auth.ValidateName(name); err != nil {
		return retry(msgNameInvalid, NodeCreateUsername, true), nil
	}

	s.newName = name
	ch.SetEcho(false)
	return Result{
		Prompt:  msgNewPassword,
		Options: []Option{{Next: NodeCreatePassword}},
	}, nil
}

// createPassword validates the password and creates the account.
func (d *Dialog) createPassword(ctx context.Context, s *Session, ch Channel, input string) (Result, error) {
	password := strings.TrimSpace(input)

	if len(password) < auth.MinPasswordLength {
		return Result{
			Prompt: msgPasswordTooShort(),
			Options: []Option{
				{Key: "r", Do: OpEchoOn, Next: NodeStart},
				{Next: NodeCreatePassword},
			},
		}, nil
	}

	account, err := d.directory.CreateAccount(ctx, s.newName, password, auth.DefaultRole)
	if err != nil {
		// Full detail stays in the log; the session only sees an apology.
		errutil.LogError(d.logger, "account creation failed", err)
		ch.SetEcho(true)
		if errors.Is(err, auth.ErrNameTaken) {
			// Lost a race for the name since the uniqueness check.
			return retry(msgNameTaken(s.newName), NodeCreateUsername, true), nil
		}
		return Result{
			Prompt:  msgCreateFailed,
			Options: []Option{{Next: NodeStart}},
		}, nil
	}

	Registrations.Inc()
	s.accountName = account.Name
	s.newName = ""
	ch.SetEcho(true)
	ch.SendLine(msgAccountCreated)
	return Result{
		Prompt:  msgAskEmail,
		Options: []Option{{Next: NodeCreateEmailAddress}},
	}, nil
}

// createEmailAddress collects an address and issues the 4-digit code.
func (d *Dialog) createEmailAddress(ctx context.Context, s *Session, _ Channel, input string) (Result, error) {
	email := strings.TrimSpace(input)

	if !emailRegex.MatchString(email) {
		return retry(msgEmailInvalid(email), NodeCreateEmailAddress, false), nil
	}

	code, err := d.secrets.ValidationCode()
	if err != nil {
		return Result{}, err
	}

	account, err := d.directory.LookupByName(ctx, s.accountName)
	if err != nil {
		return Result{}, err
	}
	if err := d.directory.BeginEmailValidation(ctx, account, email, code); err != nil {
		return Result{}, err
	}

	subject, body := d.mail.ValidationCodeMail(account.Name, code)
	d.dispatchMail(ctx, email, subject, body, "validation_code")

	return Result{
		Prompt:  msgCodeSent,
		Options: []Option{{Next: NodeValidateAccount}},
	}, nil
}

// validateAccount checks the submitted 4-digit code. Guesses are capped
// like the password gates; four digits are only ten thousand codes.
func (d *Dialog) validateAccount(ctx context.Context, s *Session, ch Channel, input string) (Result, error) {
	code := strings.TrimSpace(input)

	account, err := d.directory.LookupByName(ctx, s.accountName)
	if err != nil {
		return Result{}, err
	}

	if account.ValidationCode == "" ||
		subtle.ConstantTimeCompare([]byte(code), []byte(account.ValidationCode)) != 1 {
		if s.recordFailure() {
			LoginAttempts.WithLabelValues(OutcomeLockout).Inc()
			ch.Disconnect(msgLockout)
			return Result{}, nil
		}
		return retry(msgCodeMismatch(code), NodeValidateAccount, false), nil
	}

	if err := d.directory.ConfirmValidation(ctx, account); err != nil {
		return Result{}, err
	}

	s.loginAccount = account
	return Result{}, nil
}

// checkTemporaryPassword verifies the mailed recovery password.
func (d *Dialog) checkTemporaryPassword(ctx context.Context, s *Session, ch Channel, input string) (Result, error) {
	account, err := d.directory.LookupByName(ctx, s.accountName)
	if err != nil {
		return Result{}, err
	}

	ok, err := d.directory.VerifyPassword(ctx, account, strings.TrimSpace(input))
	if err != nil {
		return Result{}, err
	}
	if !ok {
		if s.recordFailure() {
			LoginAttempts.WithLabelValues(OutcomeLockout).Inc()
			ch.Disconnect(msgLockout)
			return Result{}, nil
		}
		LoginAttempts.WithLabelValues(OutcomeBadPassword).Inc()
		return retry(msgBadTempPassword, NodeCheckTemporaryPassword, false), nil
	}

	return Result{
		Prompt:  msgChangeTempPassword,
		Options: []Option{{Next: NodeChangeTemporaryPassword}},
	}, nil
}

// changeTemporaryPassword forces a permanent password after recovery.
func (d *Dialog) changeTemporaryPassword(ctx context.Context, s *Session, ch Channel, input string) (Result, error) {
	password := strings.TrimSpace(input)

	account, err := d.directory.LookupByName(ctx, s.accountName)
	if err != nil {
		return Result{}, err
	}

	if err := d.directory.ValidateNewPassword(account.Name, password); err != nil {
		return retry(msgNewPasswordInvalid, NodeChangeTemporaryPassword, false), nil
	}

	if err := d.directory.SetPassword(ctx, account, password, false); err != nil {
		return Result{}, err
	}
	if err := d.directory.ConfirmValidation(ctx, account); err != nil {
		return Result{}, err
	}

	ch.SetEcho(true)
	s.loginAccount = account
	return Result{}, nil
}

// quit disconnects with a farewell.
func (d *Dialog) quit(_ context.Context, _ *Session, ch Channel, _ string) (Result, error) {
	ch.Disconnect(msgFarewell)
	return Result{}, nil
}

// dispatchMail hands a message to the notifier without blocking the
// session; delivery failure is logged and never surfaced.
func (d *Dialog) dispatchMail(ctx context.Context, to, subject, body, kind string) {
	if to == "" {
		d.logger.Warn("validation mail skipped, account has no address",
			"event", "mail_skipped",
			"kind", kind,
		)
		return
	}
	ValidationMails.WithLabelValues(kind).Inc()
	bg := context.WithoutCancel(ctx)
	go func() {
		if err := d.notifier.Send(bg, "NOREPLY", to, subject, body); err != nil {
			errutil.LogError(d.logger, "validation mail dispatch failed", err)
		}
	}()
}
