// Package metrics defines and registers all custom Prometheus metrics for the
// accounts API. It is the single source of truth for metric names, labels,
// and help strings.
//
// Collectors register themselves with the default Prometheus registry via
// promauto at package load; the router exposes them on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "accounts"

// RegistrationsTotal counts successfully created accounts.
// Label:
//   - role: the tier the account was created with ("normal", "staff", "manager")
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of accounts successfully registered, by role.",
	},
	[]string{"role"},
)

// RegistrationFailuresTotal counts registrations rejected by validation.
var RegistrationFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registration_failures_total",
		Help:      "Total number of registration attempts rejected by validation.",
	},
)

// LoginAttemptsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "not_found", "bad_password" or "rate_limited"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts bearer token checks at the gates.
// Label:
//   - result: "ok", "missing", "malformed", "expired" or "invalid_signature"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of bearer token verifications, by result.",
	},
	[]string{"result"},
)

// RoleChangesTotal counts administrative role changes that persisted.
var RoleChangesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Total number of account role changes applied by admins.",
	},
)

// AccountsDeletedTotal counts administrative account deletions.
var AccountsDeletedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deleted_total",
		Help:      "Total number of accounts deleted by admins.",
	},
)

// WelcomeEmailsTotal counts asynchronous welcome email deliveries.
// Label:
//   - result: "sent" or "failed"
var WelcomeEmailsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "welcome_emails_total",
		Help:      "Total number of welcome email delivery attempts, by result.",
	},
	[]string{"result"},
)
