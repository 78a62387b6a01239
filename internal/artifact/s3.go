package artifact

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config describes a bucket laid out as a Maven repository.
type S3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	// Prefix is prepended to every object key.
	Prefix string
	UseSSL bool
	// CacheDir receives downloaded files.
	CacheDir string
}

// S3Repository downloads artifacts from an S3-compatible bucket into a local
// directory. A file already present in the directory is not downloaded
// again.
type S3Repository struct {
	client   *minio.Client
	bucket   string
	prefix   string
	cacheDir string
}

// NewS3Repository validates cfg and creates the client. No request is made.
func NewS3Repository(cfg S3Config) (*S3Repository, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}

	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)

	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	if strings.TrimSpace(cfg.CacheDir) == "" {
		return nil, fmt.Errorf("s3 cache directory is required")
	}

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	var creds *credentials.Credentials
	if access != "" || secret != "" {
		creds = credentials.NewStaticV4(access, secret, "")
	} else {
		creds = credentials.NewStatic("", "", "", credentials.SignatureAnonymous)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	return &S3Repository{
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		cacheDir: cfg.CacheDir,
	}, nil
}

// Key returns the object key holding c.
func (s *S3Repository) Key(c Coordinate) string {
	if s.prefix == "" {
		return c.Path()
	}

	return path.Join(s.prefix, c.Path())
}

func (s *S3Repository) Resolve(ctx context.Context, c Coordinate) ([]string, error) {
	local := filepath.Join(s.cacheDir, filepath.FromSlash(c.Path()))
	if info, err := os.Stat(local); err == nil && !info.IsDir() {
		return []string{local}, nil
	}

	key := s.Key(c)

	if _, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{}); err != nil {
		if isMissing(err) {
			return nil, NotFound(c, fmt.Errorf("s3://%s/%s: %w", s.bucket, key, err))
		}

		return nil, fmt.Errorf("stat s3://%s/%s: %w", s.bucket, key, err)
	}

	if err := s.client.FGetObject(ctx, s.bucket, key, local, minio.GetObjectOptions{}); err != nil {
		if isMissing(err) {
			return nil, NotFound(c, err)
		}

		return nil, fmt.Errorf("download s3://%s/%s: %w", s.bucket, key, err)
	}

	return []string{local}, nil
}

func isMissing(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return true
	default:
		return false
	}
}
