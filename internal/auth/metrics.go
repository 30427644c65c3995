// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package auth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/accounts/pkg/errutil"
)

// ResultSuccess labels an operation that completed without error.
const ResultSuccess = "success"

// Password reset stages.
const (
	StageInitiate = "initiate"
	StageVerify   = "verify"
)

// Authentications counts authentication attempts by result.
// Use RegisterMetrics to register this with a Prometheus registry.
var Authentications = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accounts_authentications_total",
		Help: "Total number of authentication attempts",
	},
	[]string{"result"},
)

// AuthenticationDuration observes how long authentication attempts take.
// Use RegisterMetrics to register this with a Prometheus registry.
var AuthenticationDuration = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "accounts_authentication_duration_seconds",
		Help:    "Authentication duration in seconds",
		Buckets: prometheus.DefBuckets,
	},
)

// PasswordResets counts password reset operations by stage and result.
// Use RegisterMetrics to register this with a Prometheus registry.
var PasswordResets = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accounts_password_resets_total",
		Help: "Total number of password reset operations",
	},
	[]string{"stage", "result"},
)

// RegisterMetrics registers auth package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Authentications)
	reg.MustRegister(AuthenticationDuration)
	reg.MustRegister(PasswordResets)
}

// RecordAuthentication counts an authentication attempt and its duration.
func RecordAuthentication(err error, duration time.Duration) {
	Authentications.WithLabelValues(resultLabel(err)).Inc()
	AuthenticationDuration.Observe(duration.Seconds())
}

// RecordPasswordReset counts a password reset stage outcome.
func RecordPasswordReset(stage string, err error) {
	PasswordResets.WithLabelValues(stage, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return ResultSuccess
	}
	return string(errutil.CodeOf(err))
}
