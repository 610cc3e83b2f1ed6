package objectstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3 option keys accepted by NewS3Store, matching the storage options a
// table is created with.
const (
	OptS3Endpoint        = "s3_endpoint"
	OptS3AccessKeyID     = "s3_access_key_id"
	OptS3SecretAccessKey = "s3_secret_access_key"
	OptS3Region          = "s3_region"
	OptS3UseSSL          = "s3_use_ssl"
)

// S3Store serves objects from one bucket of an S3-compatible store.
// Paths are absolute URL paths (leading separator), as produced when a
// table root URL's path is joined with file-relative paths.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store creates a store for the given bucket. Options configure the
// endpoint and credentials; a missing endpoint defaults to AWS S3.
func NewS3Store(bucket string, options map[string]string) (*S3Store, error) {
	if bucket == "" {
		return nil, fmt.Errorf("objectstore: s3 location has no bucket")
	}
	endpoint := options[OptS3Endpoint]
	if endpoint == "" {
		endpoint = "s3.amazonaws.com"
	}
	useSSL := options[OptS3UseSSL] != "false"

	var creds *credentials.Credentials
	if ak := options[OptS3AccessKeyID]; ak != "" {
		creds = credentials.NewStaticV4(ak, options[OptS3SecretAccessKey], "")
	} else {
		creds = credentials.NewEnvAWS()
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: useSSL,
		Region: options[OptS3Region],
	})
	if err != nil {
		return nil, fmt.Errorf("objectstore: creating s3 client: %w", err)
	}
	return &S3Store{client: client, bucket: bucket}, nil
}

// Open implements Store.
func (s *S3Store) Open(ctx context.Context, path string) (Object, error) {
	key := strings.TrimPrefix(path, "/")
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("objectstore: opening s3://%s/%s: %w", s.bucket, key, err)
	}
	info, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, fmt.Errorf("objectstore: stat s3://%s/%s: %w", s.bucket, key, err)
	}
	return &s3Object{Object: obj, size: info.Size}, nil
}

// List implements Store.
func (s *S3Store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	key := strings.TrimPrefix(prefix, "/")
	var out []ObjectInfo
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    key,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("objectstore: listing s3://%s/%s: %w", s.bucket, key, obj.Err)
		}
		out = append(out, ObjectInfo{Path: "/" + obj.Key, Size: obj.Size})
	}
	return out, nil
}

type s3Object struct {
	*minio.Object
	size int64
}

func (o *s3Object) Size() int64 { return o.size }
