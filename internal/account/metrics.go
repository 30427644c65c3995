// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package account

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/holomush/accounts/internal/auth"
	"github.com/holomush/accounts/pkg/errutil"
)

// Profile fields changed through ProfileService.
const (
	FieldUsername = "username"
	FieldPassword = "password"
	FieldEmail    = "email"
)

// Deletions counts account deletion attempts by result.
// Use RegisterMetrics to register this with a Prometheus registry.
var Deletions = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accounts_deletions_total",
		Help: "Total number of account deletion attempts",
	},
	[]string{"result"},
)

// ProfileUpdates counts profile changes by field and result.
// Use RegisterMetrics to register this with a Prometheus registry.
var ProfileUpdates = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "accounts_profile_updates_total",
		Help: "Total number of profile update attempts",
	},
	[]string{"field", "result"},
)

// RegisterMetrics registers account package metrics with the given Prometheus registry.
// Panics if registration fails (following prometheus convention).
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(Deletions)
	reg.MustRegister(ProfileUpdates)
}

// RecordDeletion counts a deletion outcome.
func RecordDeletion(err error) {
	Deletions.WithLabelValues(resultLabel(err)).Inc()
}

// RecordProfileUpdate counts a profile update outcome.
func RecordProfileUpdate(field string, err error) {
	ProfileUpdates.WithLabelValues(field, resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err == nil {
		return auth.ResultSuccess
	}
	return string(errutil.CodeOf(err))
}
