// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package postgres implements the account package repositories over pgx.
// Every repository joins the transaction carried by its context, so the
// deletion cascade runs its writes in one unit.
package postgres
