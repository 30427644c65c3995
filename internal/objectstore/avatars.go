// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package objectstore removes user-uploaded objects from S3-compatible storage.
package objectstore

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/samber/oops"

	"github.com/holomush/accounts/internal/account"
)

// Config holds S3 connection settings. An empty Endpoint uses AWS; any other
// value is treated as an S3-compatible service addressed path-style.
type Config struct {
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// ObjectDeleter is the subset of the S3 client used here.
type ObjectDeleter interface {
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// AvatarStore deletes account avatars from a bucket.
type AvatarStore struct {
	client ObjectDeleter
	bucket string
	logger *slog.Logger
}

// New creates an AvatarStore backed by an S3 client built from cfg.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*AvatarStore, error) {
	if cfg.Bucket == "" || cfg.Region == "" {
		return nil, oops.Code("OBJECTSTORE_INVALID_CONFIG").Errorf("s3 bucket and region are required")
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, oops.Code("OBJECTSTORE_INVALID_CONFIG").Wrap(err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewAvatarStore(client, cfg.Bucket, logger), nil
}

// NewAvatarStore wraps an existing S3 client.
func NewAvatarStore(client ObjectDeleter, bucket string, logger *slog.Logger) *AvatarStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AvatarStore{client: client, bucket: bucket, logger: logger}
}

// AvatarKey returns the object key of an account's avatar.
func AvatarKey(accountID int64) string {
	return "avatars/" + strconv.FormatInt(accountID, 10) + ".png"
}

// DeleteAvatar implements account.ObjectStorage. S3 reports success for
// keys that do not exist.
func (s *AvatarStore) DeleteAvatar(ctx context.Context, accountID int64) error {
	key := AvatarKey(accountID)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return oops.Code("OBJECTSTORE_DELETE_FAILED").
			With("bucket", s.bucket).
			With("key", key).
			Wrap(err)
	}
	s.logger.DebugContext(ctx, "deleted avatar", "account_id", accountID)
	return nil
}

// Compile-time interface check.
var _ account.ObjectStorage = (*AvatarStore)(nil)
