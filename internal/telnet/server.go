// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package telnet

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/samber/oops"

	"github.com/lumenmud/lumenmud/internal/login"
)

// Metrics receives connection lifecycle observations. Implementations must
// be safe for concurrent use.
type Metrics interface {
	// ConnectionOpened is called once per accepted connection.
	ConnectionOpened(transport string)

	// SessionOpened and SessionClosed bracket a connection's lifetime.
	SessionOpened()
	SessionClosed()

	// DialogFinished reports how long the login dialog ran, whether it
	// ended in a hand-off or a disconnect.
	DialogFinished(d time.Duration)
}

// Server accepts telnet connections and runs the login dialog on each.
type Server struct {
	addr     string
	listener net.Listener
	dialog   *login.Dialog
	logger   *slog.Logger
	metrics  Metrics
	mu       sync.RWMutex
}

// NewServer creates a telnet server.
// Returns an error if any required dependency is nil.
func NewServer(addr string, dialog *login.Dialog, logger *slog.Logger) (*Server, error) {
	if addr == "" {
		return nil, oops.Errorf("listen address is required")
	}
	if dialog == nil {
		return nil, oops.Errorf("dialog is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Server{
		addr:   addr,
		dialog: dialog,
		logger: logger,
	}, nil
}

// SetMetrics attaches connection metrics. Must be called before Run.
func (s *Server) SetMetrics(m Metrics) {
	s.metrics = m
}

// Addr returns the bound listen address, empty before Run.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run starts the server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return oops.Code("TELNET_LISTEN_FAILED").
			With("addr", s.addr).
			Wrapf(err, "failed to listen")
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	s.logger.Info("telnet server started", "addr", listener.Addr().String())

	go func() {
		<-ctx.Done()
		if err := listener.Close(); err != nil {
			s.logger.Debug("error closing listener", "error", err)
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				s.logger.Error("accept failed", "error", err)
				continue
			}
		}
		handler := NewConnectionHandler(conn, s.dialog, s.logger)
		handler.metrics = s.metrics
		go handler.Handle(ctx)
	}
}
