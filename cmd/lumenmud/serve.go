// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/lumenmud/lumenmud/internal/auth"
	"github.com/lumenmud/lumenmud/internal/auth/postgres"
	"github.com/lumenmud/lumenmud/internal/config"
	"github.com/lumenmud/lumenmud/internal/logging"
	"github.com/lumenmud/lumenmud/internal/login"
	"github.com/lumenmud/lumenmud/internal/mail"
	"github.com/lumenmud/lumenmud/internal/observability"
	"github.com/lumenmud/lumenmud/internal/telnet"
)

const shutdownTimeout = 5 * time.Second

// newServeCmd creates the serve subcommand.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the telnet server",
		Long: `Start the telnet server. Incoming connections run the login dialog
and land in the game once authenticated.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath(cmd), cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("listen_addr", "", "telnet listen address")
	cmd.Flags().String("metrics_addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("database_url", "", "PostgreSQL connection URL")
	cmd.Flags().String("log_format", "", "log format (json or text)")
	cmd.Flags().String("log_level", "", "log level (debug, info, warn, error)")

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("lumenmud", version, cfg.LogFormat, logging.ParseLevel(cfg.LogLevel))
	logger := slog.Default()

	logger.Info("starting server",
		"listen_addr", cfg.ListenAddr,
		"metrics_addr", cfg.MetricsAddr,
		"mail_enabled", cfg.MailEnabled(),
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "create connection pool").Wrap(err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return oops.Code("DB_CONNECT_FAILED").With("operation", "ping database").Wrap(err)
	}

	dialog, err := buildDialog(cfg, pool, logger)
	if err != nil {
		return err
	}

	server, err := telnet.NewServer(cfg.ListenAddr, dialog, logger)
	if err != nil {
		return err
	}

	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool {
			return server.Addr() != ""
		})
		errCh, err := obsServer.Start()
		if err != nil {
			return oops.Code("OBSERVABILITY_START_FAILED").Wrap(err)
		}
		server.SetMetrics(obsServer.Metrics())
		go func() {
			if obsErr := <-errCh; obsErr != nil {
				logger.Error("observability server error", "error", obsErr)
			}
		}()
	}

	runErr := server.Run(ctx)

	if obsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return runErr
}

// buildDialog assembles the login dialog from its storage, hashing, ban, and
// mail dependencies.
func buildDialog(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (*login.Dialog, error) {
	accounts := postgres.NewAccountRepository(pool)
	bans := postgres.NewBanRepository(pool)

	directory, err := auth.NewDirectoryWithLogger(accounts, auth.NewArgon2idHasher(), logger)
	if err != nil {
		return nil, err
	}

	matcher, err := auth.NewGlobBanMatcher(bans)
	if err != nil {
		return nil, err
	}

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return nil, err
	}

	composer := mail.Composer{GameName: cfg.GameName}

	return login.NewDialogWithLogger(directory, matcher, notifier, composer, logger)
}

// buildNotifier returns an SMTP notifier when mail is configured and a
// log-only notifier otherwise.
func buildNotifier(cfg *config.Config, logger *slog.Logger) (login.Notifier, error) {
	if !cfg.MailEnabled() {
		logger.Warn("no SMTP host configured, validation mail will only be logged")
		return mail.NewLogNotifier(logger)
	}
	return mail.NewSMTPNotifierWithLogger(mail.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		From:     cfg.SMTP.From,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	}, logger)
}
