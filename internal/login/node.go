// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package login

// Node identifies a state in the login dialog.
type Node int

// Dialog nodes. NodeStart is the entry node; NodeQuit is terminal.
const (
	NodeStart Node = iota
	NodeUsername
	NodeAskPassword
	NodeCreateAccount
	NodeCreateUsername
	NodeCreatePassword
	NodeCreateEmailAddress
	NodeValidateAccount
	NodeCheckTemporaryPassword
	NodeChangeTemporaryPassword
	NodeQuit
)

// String returns the node name used in logs.
func (n Node) String() string {
	switch n {
	case NodeStart:
		return "start"
	case NodeUsername:
		return "username"
	case NodeAskPassword:
		return "ask_password"
	case NodeCreateAccount:
		return "create_account"
	case NodeCreateUsername:
		return "create_username"
	case NodeCreatePassword:
		return "create_password"
	case NodeCreateEmailAddress:
		return "create_email_address"
	case NodeValidateAccount:
		return "validate_account"
	case NodeCheckTemporaryPassword:
		return "check_temporary_password"
	case NodeChangeTemporaryPassword:
		return "change_temporary_password"
	case NodeQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// ChannelOp is a named side effect applied to the session channel when an
// option is selected, before the target node's handler runs. Ops are
// idempotent; applying OpEchoOn to a channel already echoing is a no-op.
type ChannelOp int

const (
	// OpNone performs no channel side effect.
	OpNone ChannelOp = iota

	// OpEchoOn re-enables local input echo.
	OpEchoOn

	// OpEchoOff disables local input echo (password entry).
	OpEchoOff
)

// Option maps a recognized input keyword to the next node. An empty Key
// marks the default option taken when no keyword matches. Keyword matching
// is case-insensitive.
type Option struct {
	Key  string
	Do   ChannelOp
	Next Node
}

// Result is what a node handler returns: the prompt to display and the
// options governing the next input line. An empty option set is terminal;
// the handler has either recorded a login hand-off on the session or
// already disconnected the channel.
type Result struct {
	Prompt  string
	Options []Option
}

// retry builds the common failure result: redisplay a message and fall
// through to the same node, optionally offering "r" to return to Start.
func retry(prompt string, next Node, withReturn bool) Result {
	opts := make([]Option, 0, 2)
	if withReturn {
		opts = append(opts, Option{Key: "r", Do: OpEchoOn, Next: NodeStart})
	}
	opts = append(opts, Option{Next: next})
	return Result{Prompt: prompt, Options: opts}
}
