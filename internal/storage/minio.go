package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"portal/internal/config"
)

// minioStorage implements Storage on a private MinIO (or other S3-compatible) bucket.
// Reads go through presigned URLs. It is safe for concurrent use by multiple goroutines.
type minioStorage struct {
	client *minio.Client
	bucket string
	ttl    time.Duration
	now    func() time.Time
}

func newMinIOClient(cfg config.MinIOConfig, ttl time.Duration) (*minioStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:     credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:    cfg.UseSSL,
		Region:    cfg.Region,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &minioStorage{client: cli, bucket: cfg.Bucket, ttl: ttl, now: time.Now}, nil
}

// NewMinIO creates a storage client backed by MinIO.
// It validates connectivity and ensures the bucket exists (creates it if missing).
func NewMinIO(ctx context.Context, cfg config.MinIOConfig, ttl time.Duration) (Storage, error) {
	ms, err := newMinIOClient(cfg, ttl)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := ms.client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := ms.client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}
	return ms, nil
}

func (m *minioStorage) Driver() string { return DriverMinIO }

// Put streams r into the bucket under a company/project scoped key.
func (m *minioStorage) Put(ctx context.Context, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	key := scopedKey(opt.Scope, opt.Filename, m.now())
	info, err := m.client.PutObject(ctx, m.bucket, key, r, opt.Size, minio.PutObjectOptions{
		ContentType:  opt.ContentType,
		UserMetadata: opt.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, errors.Wrapf(err, "put %s", key)
	}
	return ObjectInfo{
		Key:          key,
		Size:         info.Size,
		ETag:         info.ETag,
		ContentType:  opt.ContentType,
		LastModified: m.now(), // PutObject does not report LastModified
		Metadata:     opt.Metadata,
	}, nil
}

// Get downloads an object content as a ReadCloser along with basic info.
// Resolve presigns a GET valid for the configured TTL that renders inline in browsers.
func (m *minioStorage) Resolve(ctx context.Context, key string) (ResolvedURL, error) {
	params := url.Values{}
	params.Set("response-content-disposition", "inline")
	issued := m.now()
	u, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.ttl, params)
	if err != nil {
		return ResolvedURL{}, errors.Wrapf(err, "presign %s", key)
	}
	exp := issued.Add(m.ttl)
	return ResolvedURL{URL: u.String(), ExpiresAt: &exp}, nil
}

// Remove deletes key, reporting AlreadyAbsent when the bucket does not have it.
func (m *minioStorage) Remove(ctx context.Context, key string) (Removal, error) {
	if _, err := m.client.StatObject(ctx, m.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isMinIONotFound(err) {
			return AlreadyAbsent, nil
		}
		return Removed, errors.Wrapf(err, "stat %s", key)
	}
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return Removed, errors.Wrapf(err, "remove %s", key)
	}
	return Removed, nil
}

func isMinIONotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}
