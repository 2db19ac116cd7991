package objectstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"lensdrop/internal/metrics"
	"lensdrop/internal/storage"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ObjectStorage is what the services see of the bucket: time-limited upload
// and download capabilities, server-side writes for derived assets, and reads
// used by the derivation flow.
type ObjectStorage interface {
	PresignUpload(ctx context.Context, key, contentType string) (string, error)
	PresignDownload(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

type Options struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PublicBaseURL   string
	UploadTTL       time.Duration
	DownloadTTL     time.Duration
}

// S3Store talks to an S3-compatible bucket (R2, MinIO, AWS). An optional
// URLCache short-circuits repeated download presigns for the same key.
type S3Store struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	publicBaseURL string
	uploadTTL     time.Duration
	downloadTTL   time.Duration
	cache         *URLCache
}

func New(ctx context.Context, opts Options, cache *URLCache) (*S3Store, error) {
	const op = "objectstore.New"

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	cfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucket:        opts.Bucket,
		publicBaseURL: strings.TrimSuffix(opts.PublicBaseURL, "/"),
		uploadTTL:     opts.UploadTTL,
		downloadTTL:   opts.DownloadTTL,
		cache:         cache,
	}, nil
}

// PresignUpload grants write access to exactly one key for the upload TTL.
// The URL is bound to the declared content type.
func (s *S3Store) PresignUpload(ctx context.Context, key, contentType string) (string, error) {
	const op = "objectstore.S3Store.PresignUpload"

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.uploadTTL))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.PresignedURLsTotal.WithLabelValues("upload").Inc()

	return req.URL, nil
}

// PresignDownload grants read access to exactly one key for the download TTL.
func (s *S3Store) PresignDownload(ctx context.Context, key string) (string, error) {
	const op = "objectstore.S3Store.PresignDownload"

	if s.cache != nil {
		if url, ok := s.cache.Get(ctx, key); ok {
			return url, nil
		}
	}

	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.downloadTTL))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	metrics.PresignedURLsTotal.WithLabelValues("download").Inc()

	if s.cache != nil {
		s.cache.Set(ctx, key, req.URL)
	}

	return req.URL, nil
}

// Put writes a derived asset server-side and returns its public URL.
func (s *S3Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	const op = "objectstore.S3Store.Put"

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.PublicURL(key), nil
}

// Fetch reads the full object back. Used by finalize to hand the original
// bytes to the derivation worker.
func (s *S3Store) Fetch(ctx context.Context, key string) ([]byte, error) {
	const op = "objectstore.S3Store.Fetch"

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	const op = "objectstore.S3Store.Delete"

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// PublicURL builds the public URL of a key without touching the bucket.
// Reserve computes original URLs this way before the bytes exist.
func (s *S3Store) PublicURL(key string) string {
	return s.publicBaseURL + "/" + key
}
