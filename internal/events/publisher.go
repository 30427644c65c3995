// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package events publishes account lifecycle events over Redis pub/sub.
package events

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
)

// DefaultAccountDeletedChannel is the channel account deletions are published on.
const DefaultAccountDeletedChannel = "accounts.account_deleted"

// AccountDeleted is the payload published after an account is anonymized.
type AccountDeleted struct {
	EventID    ulid.ULID `json:"event_id"`
	AccountID  int64     `json:"account_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher is the subset of the Redis client used here.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// Option configures a RedisPublisher.
type Option func(*RedisPublisher)

// WithChannel overrides the account deletion channel.
func WithChannel(channel string) Option {
	return func(p *RedisPublisher) { p.channel = channel }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(p *RedisPublisher) { p.now = now }
}

// RedisPublisher implements account.EventChannel over Redis PUBLISH.
type RedisPublisher struct {
	client  Publisher
	channel string
	now     func() time.Time
}

// NewRedisPublisher creates a RedisPublisher.
func NewRedisPublisher(client Publisher, opts ...Option) (*RedisPublisher, error) {
	if client == nil {
		return nil, oops.Code("EVENTS_INVALID_CONFIG").Errorf("redis client is required")
	}
	p := &RedisPublisher{
		client:  client,
		channel: DefaultAccountDeletedChannel,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.channel == "" {
		return nil, oops.Code("EVENTS_INVALID_CONFIG").Errorf("channel is required")
	}
	return p, nil
}

// PublishAccountDeleted implements account.EventChannel.
func (p *RedisPublisher) PublishAccountDeleted(ctx context.Context, accountID int64) error {
	now := p.now().UTC()
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return oops.Code("EVENT_ID_FAILED").Wrap(err)
	}

	payload, err := json.Marshal(AccountDeleted{EventID: id, AccountID: accountID, OccurredAt: now})
	if err != nil {
		return oops.Code("EVENT_ENCODE_FAILED").Wrap(err)
	}

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return oops.Code("EVENT_PUBLISH_FAILED").
			With("channel", p.channel).
			With("event_id", id.String()).
			Wrap(err)
	}
	return nil
}

// Compile-time interface check.
var _ account.EventChannel = (*RedisPublisher)(nil)
