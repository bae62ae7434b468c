// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package login

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"github.com/lumenmud/lumenmud/internal/auth"
	"github.com/lumenmud/lumenmud/pkg/errutil"
)

// Status is the engine's verdict after processing one input line.
type Status int

const (
	// StatusContinue means a prompt was sent and more input is expected.
	StatusContinue Status = iota

	// StatusLoggedIn means the dialog completed a login hand-off; the
	// transport should switch the connection to the authenticated state.
	StatusLoggedIn

	// StatusDisconnected means the session was terminated; no further
	// input will be accepted.
	StatusDisconnected
)

// LoginFunc receives the authenticated account at hand-off.
type LoginFunc func(ctx context.Context, account *auth.Account)

// Engine drives one session's dialog. It is not safe for concurrent use;
// the owning transport must serialize calls, which the line-at-a-time
// read loop does naturally.
type Engine struct {
	dialog  *Dialog
	ch      Channel
	session *Session
	onLogin LoginFunc
	logger  *slog.Logger
}

// NewEngine creates an Engine for one connection.
// Returns an error if any required dependency is nil.
func NewEngine(dialog *Dialog, ch Channel, onLogin LoginFunc, logger *slog.Logger) (*Engine, error) {
	if dialog == nil {
		return nil, oops.Errorf("dialog is required")
	}
	if ch == nil {
		return nil, oops.Errorf("channel is required")
	}
	if onLogin == nil {
		return nil, oops.Errorf("login func is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Engine{
		dialog:  dialog,
		ch:      ch,
		session: NewSession(),
		onLogin: onLogin,
		logger:  logger,
	}, nil
}

// Session exposes the session state, for logging and tests.
func (e *Engine) Session() *Session {
	return e.session
}

// Start sends the banner and the entry prompt. Called once, before any
// input is read.
func (e *Engine) Start(ctx context.Context) Status {
	e.ch.SendLine(randomBanner())
	res, err := e.dialog.handle(ctx, NodeStart, e.session, e.ch, "")
	if err != nil {
		return e.fail(err)
	}
	return e.apply(ctx, res)
}

// HandleLine processes one line of input: match it against the pending
// options, apply the selected option's channel side effect, run the target
// node's handler, and send the resulting prompt.
func (e *Engine) HandleLine(ctx context.Context, line string) Status {
	input := strings.TrimSpace(line)

	opt, ok := e.selectOption(input)
	if !ok {
		// Every prompting node supplies a default option; reaching this
		// point is a bug in a node's option table.
		e.logger.Error("no option matched input",
			"event", "dialog_contract_violation",
			"node", e.session.node.String(),
		)
		e.ch.Disconnect(msgInternalError)
		return StatusDisconnected
	}

	switch opt.Do {
	case OpEchoOn:
		e.ch.SetEcho(true)
	case OpEchoOff:
		e.ch.SetEcho(false)
	}

	e.session.node = opt.Next
	res, err := e.dialog.handle(ctx, opt.Next, e.session, e.ch, input)
	if err != nil {
		return e.fail(err)
	}
	return e.apply(ctx, res)
}

// selectOption finds the option whose keyword matches the input, falling
// back to the default option (empty key).
func (e *Engine) selectOption(input string) (Option, bool) {
	var fallback *Option
	for i, opt := range e.session.options {
		if opt.Key == "" {
			if fallback == nil {
				fallback = &e.session.options[i]
			}
			continue
		}
		if strings.EqualFold(opt.Key, input) {
			return opt, true
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return Option{}, false
}

// apply sends the result's prompt and records its options, or finishes
// the dialog when the result is terminal.
func (e *Engine) apply(ctx context.Context, res Result) Status {
	if len(res.Options) == 0 {
		if account := e.session.loginAccount; account != nil {
			LoginAttempts.WithLabelValues(OutcomeSuccess).Inc()
			e.logger.Info("login hand-off",
				"event", "login_success",
				"account", account.Name,
				"address", e.ch.PeerAddress(),
			)
			e.onLogin(ctx, account)
			return StatusLoggedIn
		}
		// The handler already disconnected the channel.
		return StatusDisconnected
	}

	if res.Prompt != "" {
		e.ch.SendLine(res.Prompt)
	}
	e.session.options = res.Options
	return StatusContinue
}

// fail handles an unexpected handler error: log with full detail, tell
// the session nothing useful, and drop the connection.
func (e *Engine) fail(err error) Status {
	errutil.LogError(e.logger, "dialog handler failed", err)
	e.ch.Disconnect(msgInternalError)
	return StatusDisconnected
}
