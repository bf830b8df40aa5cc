package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"

	"tryonjewel-server/internal/config"
	"tryonjewel-server/internal/domain/ports/adapter"
	"tryonjewel-server/internal/infra/metrics"
)

var _ adapter.ObjectStorage = (*MinioStore)(nil)

// MinioStore implements the object storage port over a single bucket.
type MinioStore struct {
	client *minio.Client
	bucket string
	public string // non-empty means synthesize public URLs instead of signing
	log    *zerolog.Logger
}

func NewMinioStore(ctx context.Context, cfg config.StorageConfig, logger *zerolog.Logger) (*MinioStore, error) {
	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	store := &MinioStore{
		client: cli,
		bucket: cfg.Bucket,
		public: strings.TrimRight(cfg.PublicURL, "/"),
		log:    logger,
	}
	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info().Str("bucket", cfg.Bucket).Msg("created storage bucket")
	}
	return store, nil
}

func (s *MinioStore) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, path, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	category := "upload"
	if strings.HasPrefix(path, "generated/") {
		category = "generated"
	}
	metrics.IncStorageWrite(category, err == nil, size)
	if err != nil {
		return fmt.Errorf("put object %s: %w", path, err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", path, err)
	}
	return obj, nil
}

// SignedURL mints a presigned GET URL, or synthesizes a public URL when the
// bucket is served publicly.
func (s *MinioStore) SignedURL(ctx context.Context, path string, expires time.Duration) (string, error) {
	if s.public != "" {
		return fmt.Sprintf("%s/%s/%s", s.public, s.bucket, strings.TrimLeft(path, "/")), nil
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, path, expires, nil)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", path, err)
	}
	metrics.IncSignedURLMinted()
	return u.String(), nil
}
