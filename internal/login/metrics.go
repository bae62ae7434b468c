// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumenMUD Contributors

package login

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for login attempt metrics.
const (
	OutcomeSuccess     = "success"
	OutcomeBadPassword = "bad_password"
	OutcomeLockout     = "lockout"
	OutcomeBanned      = "banned"
)

// LoginAttempts counts terminal password-gate outcomes.
// Use RegisterMetrics to register this with a Prometheus registry.
var LoginAttempts = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lumenmud_login_attempts_total",
		Help: "Total number of login attempts by outcome",
	},
	[]string{"outcome"},
)

// Registrations counts successfully created accounts.
// Use RegisterMetrics to register this with a Prometheus registry.
var Registrations = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "lumenmud_registrations_total",
		Help: "Total number of accounts created through the dialog",
	},
)

// ValidationMails counts dispatched validation e-mails by kind.
// Use RegisterMetrics to register this with a Prometheus registry.
var ValidationMails = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "lumenmud_validation_mails_total",
		Help: "Total number of validation e-mails dispatched",
	},
	[]string{"kind"},
)

// RegisterMetrics registers the dialog metrics with the given registry.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts, Registrations, ValidationMails)
}
