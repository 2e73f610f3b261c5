package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	pkgerrors "github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"portal/internal/config"
)

// s3Storage implements Storage on an AWS S3 bucket, or any endpoint speaking the S3 API.
type s3Storage struct {
	client   *s3.Client
	uploader *manager.Uploader
	presign  *s3.PresignClient
	bucket   string
	ttl      time.Duration
	now      func() time.Time
}

// NewS3 builds the client from the default AWS chain, overridden by static keys and a
// custom endpoint when configured. It does not contact the endpoint.
func NewS3(ctx context.Context, cfg config.S3Config, ttl time.Duration) (Storage, error) {
	s, err := newS3Client(ctx, cfg, ttl)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func newS3Client(ctx context.Context, cfg config.S3Config, ttl time.Duration) (*s3Storage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	// AWS_CA_BUNDLE needs a client exposing WithTransportOptions.
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(awshttp.NewBuildableClient()),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return &s3Storage{
		client:   client,
		uploader: manager.NewUploader(client),
		presign:  s3.NewPresignClient(client),
		bucket:   cfg.Bucket,
		ttl:      ttl,
		now:      time.Now,
	}, nil
}

func (s *s3Storage) Driver() string { return DriverS3 }

func (s *s3Storage) Put(ctx context.Context, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	key := scopedKey(opt.Scope, opt.Filename, s.now())
	cr := &countingReader{r: r}
	out, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        cr,
		ContentType: aws.String(opt.ContentType),
		Metadata:    opt.Metadata,
	})
	if err != nil {
		return ObjectInfo{}, pkgerrors.Wrapf(err, "put %s", key)
	}
	return ObjectInfo{
		Key:          key,
		Size:         cr.n,
		ETag:         aws.ToString(out.ETag),
		ContentType:  opt.ContentType,
		LastModified: s.now(),
		Metadata:     opt.Metadata,
	}, nil
}

// Resolve presigns a GET valid for the configured TTL that renders inline in browsers.
func (s *s3Storage) Resolve(ctx context.Context, key string) (ResolvedURL, error) {
	issued := s.now()
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(s.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String("inline"),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return ResolvedURL{}, pkgerrors.Wrapf(err, "presign %s", key)
	}
	exp := issued.Add(s.ttl)
	return ResolvedURL{URL: req.URL, ExpiresAt: &exp}, nil
}

func (s *s3Storage) Remove(ctx context.Context, key string) (Removal, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isS3NotFound(err) {
			return AlreadyAbsent, nil
		}
		return Removed, pkgerrors.Wrapf(err, "head %s", key)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return Removed, pkgerrors.Wrapf(err, "remove %s", key)
	}
	return Removed, nil
}

func isS3NotFound(err error) bool {
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
