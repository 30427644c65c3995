// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package store provides PostgreSQL plumbing shared by the account
// repositories: connection setup, transactions and schema migrations.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB executes statements. *pgxpool.Pool, pgx.Tx and pgxmock satisfy it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is a DB that can start transactions.
type Pool interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
}

type txKey struct{}

// WithTx returns a context carrying tx.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromContext returns the transaction carried by ctx, if any.
func TxFromContext(ctx context.Context) (pgx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	return tx, ok
}

// Conn returns the transaction carried by ctx, or db when there is none.
// Repositories route every statement through Conn so that calls made inside
// Transactor.InTransaction join the transaction.
func Conn(ctx context.Context, db DB) DB {
	if tx, ok := TxFromContext(ctx); ok {
		return tx
	}
	return db
}
