// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package telnet

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/lumenmud/lumenmud/internal/auth"
	"github.com/lumenmud/lumenmud/internal/login"
)

// ConnectionHandler drives one telnet connection: first the login dialog,
// then a minimal authenticated command loop. It implements login.Channel.
type ConnectionHandler struct {
	conn    net.Conn
	reader  *bufio.Reader
	dialog  *login.Dialog
	logger  *slog.Logger
	connID  ulid.ULID
	metrics Metrics

	mu             sync.Mutex
	echoSuppressed bool
	closed         bool

	account *auth.Account
}

// NewConnectionHandler creates a handler for one accepted connection.
func NewConnectionHandler(conn net.Conn, dialog *login.Dialog, logger *slog.Logger) *ConnectionHandler {
	return &ConnectionHandler{
		conn:   conn,
		reader: bufio.NewReader(conn),
		dialog: dialog,
		logger: logger,
		connID: ulid.Make(),
	}
}

// Handle processes the connection until it closes. It blocks; run it in
// its own goroutine.
func (h *ConnectionHandler) Handle(ctx context.Context) {
	defer h.close()

	if h.metrics != nil {
		h.metrics.ConnectionOpened("telnet")
		h.metrics.SessionOpened()
		defer h.metrics.SessionClosed()
	}

	// The dialog ends at hand-off or disconnect, whichever comes first.
	dialogStart := time.Now()
	dialogDone := false
	finishDialog := func() {
		if h.metrics != nil && !dialogDone {
			dialogDone = true
			h.metrics.DialogFinished(time.Since(dialogStart))
		}
	}
	defer finishDialog()

	logger := h.logger.With("conn_id", h.connID.String(), "address", h.PeerAddress())

	engine, err := login.NewEngine(h.dialog, h, h.onLogin, logger)
	if err != nil {
		logger.Error("engine setup failed", "error", err)
		return
	}

	status := engine.Start(ctx)
	if status == login.StatusDisconnected {
		return
	}

	lineCh := make(chan string)
	errCh := make(chan error, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		for {
			raw, err := h.reader.ReadString('\n')
			if err != nil {
				select {
				case errCh <- err:
				case <-done:
				}
				return
			}
			line := string(stripCommands([]byte(raw)))
			select {
			case lineCh <- strings.TrimRight(line, "\r\n"):
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-errCh:
			if !errors.Is(err, io.EOF) && !h.isClosed() {
				logger.Debug("connection read error", "error", err)
			}
			return

		case line := <-lineCh:
			if h.account == nil {
				switch engine.HandleLine(ctx, line) {
				case login.StatusDisconnected:
					return
				case login.StatusLoggedIn:
					finishDialog()
					logger.Info("session authenticated",
						"event", "session_authenticated",
						"account", h.account.Name,
					)
				}
				continue
			}
			if h.handleCommand(line) {
				return
			}
		}
	}
}

// onLogin records the authenticated account and greets it. The engine
// calls it exactly once, at hand-off.
func (h *ConnectionHandler) onLogin(_ context.Context, account *auth.Account) {
	h.account = account
	h.SendLine(fmt.Sprintf("Welcome back, %s!", account.Name))
}

// handleCommand processes one authenticated-mode line, returning true
// when the connection should close.
func (h *ConnectionHandler) handleCommand(line string) bool {
	cmd := strings.ToLower(strings.TrimSpace(line))
	switch cmd {
	case "quit":
		h.SendLine("Goodbye!")
		return true
	case "":
		return false
	default:
		h.SendLine("Unknown command: " + cmd)
		return false
	}
}

// SendLine implements login.Channel.
func (h *ConnectionHandler) SendLine(text string) {
	if _, err := h.conn.Write([]byte(text + "\r\n")); err != nil {
		if !h.isClosed() {
			h.logger.Debug("failed to send line",
				"conn_id", h.connID.String(),
				"error", err,
			)
		}
	}
}

// SetEcho implements login.Channel. Suppressing echo means the server
// announces WILL ECHO, which tells the client to stop local echo; WONT
// ECHO hands it back. Repeated calls with the same state send nothing.
func (h *ConnectionHandler) SetEcho(enabled bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.echoSuppressed == !enabled {
		return
	}
	h.echoSuppressed = !enabled

	verb := wont
	if !enabled {
		verb = will
	}
	if _, err := h.conn.Write([]byte{iac, verb, optEcho}); err != nil {
		if !h.closed {
			h.logger.Debug("echo negotiation failed",
				"conn_id", h.connID.String(),
				"error", err,
			)
		}
	}
}

// Disconnect implements login.Channel.
func (h *ConnectionHandler) Disconnect(farewell string) {
	h.SendLine(farewell)
	h.close()
}

// PeerAddress implements login.Channel.
func (h *ConnectionHandler) PeerAddress() string {
	addr := h.conn.RemoteAddr().String()
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}

func (h *ConnectionHandler) close() {
	h.mu.Lock()
	alreadyClosed := h.closed
	h.closed = true
	h.mu.Unlock()
	if alreadyClosed {
		return
	}
	if err := h.conn.Close(); err != nil {
		h.logger.Debug("error closing connection",
			"conn_id", h.connID.String(),
			"error", err,
		)
	}
}

func (h *ConnectionHandler) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
