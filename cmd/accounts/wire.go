// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
	accountpg "github.com/holomush/accounts/internal/account/postgres"
	"github.com/holomush/accounts/internal/auth"
	authpg "github.com/holomush/accounts/internal/auth/postgres"
	"github.com/holomush/accounts/internal/config"
	"github.com/holomush/accounts/internal/events"
	"github.com/holomush/accounts/internal/httpapi"
	"github.com/holomush/accounts/internal/mail"
	"github.com/holomush/accounts/internal/objectstore"
	"github.com/holomush/accounts/internal/recaptcha"
	"github.com/holomush/accounts/internal/store"
)

// services holds the account services built over one storage pool.
type services struct {
	auth      *auth.Service
	resets    *auth.PasswordResetService
	profiles  *account.ProfileService
	deletions *account.DeletionOrchestrator
	captcha   httpapi.CaptchaVerifier
}

// newRedisClient opens the event channel client. go-redis connects lazily.
func newRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// newDeletionOrchestrator wires the deletion cascade to PostgreSQL, S3 and Redis.
func newDeletionOrchestrator(
	ctx context.Context,
	cfg *config.Config,
	pool store.Pool,
	publisher events.Publisher,
	logger *slog.Logger,
) (*account.DeletionOrchestrator, error) {
	avatars, err := objectstore.New(ctx, objectstore.Config{
		Endpoint:        cfg.S3.Endpoint,
		Region:          cfg.S3.Region,
		Bucket:          cfg.S3.Bucket,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
	}, logger)
	if err != nil {
		return nil, oops.With("component", "object storage").Wrap(err)
	}

	channel, err := events.NewRedisPublisher(publisher, events.WithChannel(cfg.Redis.Channel))
	if err != nil {
		return nil, oops.With("component", "event channel").Wrap(err)
	}

	orchestrator, err := account.NewDeletionOrchestrator(account.DeletionDeps{
		Accounts:   authpg.NewAccountRepository(pool),
		Clans:      accountpg.NewClanRepository(pool),
		Resets:     authpg.NewPasswordResetTokenRepository(pool),
		IPs:        accountpg.NewIPAssociationRepository(pool),
		Hardware:   accountpg.NewHardwareAssociationRepository(pool),
		Avatars:    avatars,
		Events:     channel,
		Transactor: store.NewTransactor(pool),
	}, account.WithLogger(logger))
	if err != nil {
		return nil, oops.With("component", "deletion orchestrator").Wrap(err)
	}
	return orchestrator, nil
}

// newServices builds every service the HTTP API exposes.
func newServices(
	ctx context.Context,
	cfg *config.Config,
	pool store.Pool,
	publisher events.Publisher,
	logger *slog.Logger,
) (*services, error) {
	accounts := authpg.NewAccountRepository(pool)
	hasher := auth.NewBcryptHasher(cfg.Security.BcryptCost)

	authSvc, err := auth.NewAuthService(accounts, authpg.NewTokenRepository(pool), hasher, auth.WithLogger(logger))
	if err != nil {
		return nil, oops.With("component", "auth service").Wrap(err)
	}

	mailer, err := mail.New(mail.Config{
		BaseURL:    cfg.Mailgun.BaseURL,
		Domain:     cfg.Mailgun.Domain,
		APIKey:     cfg.Mailgun.APIKey,
		SenderName: cfg.Mailgun.SenderName,
		Timeout:    cfg.Mailgun.Timeout,
	}, mail.WithLogger(logger))
	if err != nil {
		return nil, oops.With("component", "mail").Wrap(err)
	}

	links, err := auth.NewResetLinkBuilder(cfg.Reset.URL)
	if err != nil {
		return nil, oops.With("component", "reset links").Wrap(err)
	}

	resets, err := auth.NewPasswordResetService(
		accounts,
		authpg.NewPasswordResetTokenRepository(pool),
		hasher,
		mailer,
		links,
		auth.WithLogger(logger),
	)
	if err != nil {
		return nil, oops.With("component", "password reset service").Wrap(err)
	}

	profiles, err := account.NewProfileService(account.ProfileDeps{
		Accounts:   accounts,
		Resets:     authpg.NewPasswordResetTokenRepository(pool),
		Hasher:     hasher,
		Transactor: store.NewTransactor(pool),
	}, account.WithLogger(logger))
	if err != nil {
		return nil, oops.With("component", "profile service").Wrap(err)
	}

	deletions, err := newDeletionOrchestrator(ctx, cfg, pool, publisher, logger)
	if err != nil {
		return nil, err
	}

	svc := &services{
		auth:      authSvc,
		resets:    resets,
		profiles:  profiles,
		deletions: deletions,
	}

	// A nil *Verifier stored in the interface would read as configured.
	if cfg.Recaptcha.Secret != "" {
		verifier, err := recaptcha.New(cfg.Recaptcha.Secret, recaptcha.WithLogger(logger))
		if err != nil {
			return nil, oops.With("component", "recaptcha").Wrap(err)
		}
		svc.captcha = verifier
	}

	return svc, nil
}
