// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package login_test

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumenmud/lumenmud/internal/auth"
	"github.com/lumenmud/lumenmud/internal/auth/authtest"
	"github.com/lumenmud/lumenmud/internal/login"
	"github.com/lumenmud/lumenmud/internal/mail"
)

// fakeChannel records everything the dialog does to the connection.
type fakeChannel struct {
	mu           sync.Mutex
	lines        []string
	echo         bool
	echoChanges  []bool
	disconnected bool
	farewell     string
	addr         string
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{echo: true, addr: "203.0.113.9"}
}

func (c *fakeChannel) SendLine(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, text)
}

func (c *fakeChannel) SetEcho(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.echo = enabled
	c.echoChanges = append(c.echoChanges, enabled)
}

func (c *fakeChannel) Disconnect(farewell string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
	c.farewell = farewell
}

func (c *fakeChannel) PeerAddress() string { return c.addr }

func (c *fakeChannel) lastLine() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.lines) == 0 {
		return ""
	}
	return c.lines[len(c.lines)-1]
}

func (c *fakeChannel) allOutput() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

func (c *fakeChannel) echoEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.echo
}

func (c *fakeChannel) isDisconnected() (bool, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected, c.farewell
}

// recordingNotifier captures dispatched mail. Dispatch is asynchronous,
// so sent() is polled with require.Eventually.
type recordingNotifier struct {
	mu   sync.Mutex
	mail []sentMail
}

type sentMail struct {
	to, subject, body string
}

func (n *recordingNotifier) Send(_ context.Context, _, to, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.mail = append(n.mail, sentMail{to: to, subject: subject, body: body})
	return nil
}

func (n *recordingNotifier) sent() []sentMail {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMail(nil), n.mail...)
}

// stubSecrets returns fixed secrets so tests can submit them back.
type stubSecrets struct {
	temp, code string
}

func (s stubSecrets) TempPassword() (string, error)   { return s.temp, nil }
func (s stubSecrets) ValidationCode() (string, error) { return s.code, nil }

// harness wires a Dialog and Engine over in-memory collaborators.
type harness struct {
	engine   *login.Engine
	dialog   *login.Dialog
	channel  *fakeChannel
	repo     *authtest.MemoryAccountRepo
	dir      *auth.Directory
	notifier *recordingNotifier

	mu       sync.Mutex
	loggedIn *auth.Account
}

func newHarness(t *testing.T, bans []auth.BanEntry) *harness {
	t.Helper()

	h := &harness{
		channel:  newFakeChannel(),
		repo:     authtest.NewMemoryAccountRepo(),
		notifier: &recordingNotifier{},
	}

	dir, err := auth.NewDirectory(h.repo, authtest.FakeHasher{})
	require.NoError(t, err)
	h.dir = dir

	matcher, err := auth.NewGlobBanMatcher(authtest.StaticBans{Entries: bans})
	require.NoError(t, err)

	dialog, err := login.NewDialog(dir, matcher, h.notifier, mail.Composer{})
	require.NoError(t, err)
	dialog.SetSecretSource(stubSecrets{temp: "zz99aa", code: "4812"})
	h.dialog = dialog

	onLogin := func(_ context.Context, account *auth.Account) {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.loggedIn = account
	}
	engine, err := login.NewEngine(dialog, h.channel, onLogin, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	h.engine = engine

	return h
}

func (h *harness) loggedInAccount() *auth.Account {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.loggedIn
}

// seedAccount creates an account directly through the directory.
func (h *harness) seedAccount(t *testing.T, name, password string) *auth.Account {
	t.Helper()
	account, err := h.dir.CreateAccount(context.Background(), name, password, auth.DefaultRole)
	require.NoError(t, err)
	return account
}

// seedValidAccount creates an account already holding a confirmed address.
func (h *harness) seedValidAccount(t *testing.T, name, password, email string) *auth.Account {
	t.Helper()
	account := h.seedAccount(t, name, password)
	require.NoError(t, h.dir.BeginEmailValidation(context.Background(), account, email, "0000"))
	require.NoError(t, h.dir.ConfirmValidation(context.Background(), account))
	return account
}

// feed runs a sequence of input lines, requiring StatusContinue for all
// but the last, whose status is returned.
func (h *harness) feed(t *testing.T, lines ...string) login.Status {
	t.Helper()
	ctx := context.Background()
	status := login.StatusContinue
	for i, line := range lines {
		status = h.engine.HandleLine(ctx, line)
		if i < len(lines)-1 {
			require.Equal(t, login.StatusContinue, status, "input %q ended the dialog early", line)
		}
	}
	return status
}
