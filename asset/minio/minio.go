// Package minio provides a MinIO (S3-compatible) backed asset.Store.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/reelforge/reelforge/asset"
)

// Config carries the connection and bucket settings for the store.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// URLExpiry bounds the validity of presigned GET URLs. Zero selects 72h.
	URLExpiry time.Duration
}

// Store uploads objects to a MinIO bucket and hands back presigned GET URLs.
type Store struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// New connects to MinIO and returns a Store for the configured bucket.
func New(cfg Config) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect minio: %w", err)
	}
	expiry := cfg.URLExpiry
	if expiry == 0 {
		expiry = 72 * time.Hour
	}
	return &Store{client: client, bucket: cfg.Bucket, expiry: expiry}, nil
}

// Upload implements asset.Store. The bucket is created on first use. The
// content type falls back to an extension-based guess when empty.
func (s *Store) Upload(ctx context.Context, objectName string, r io.Reader, size int64, contentType string) (string, error) {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return "", fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return "", fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
	}

	if contentType == "" {
		contentType = asset.ContentTypeFor(objectName)
	}

	if _, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}

	presigned, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, s.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectName, err)
	}
	return presigned.String(), nil
}
