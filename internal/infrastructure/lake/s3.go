package lake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3BlobStore stores lake blobs in an S3 (or S3-compatible) bucket, with
// lake keys under an optional key prefix. Receipt uploads from the capture
// client go through presigned PUT URLs rather than the service.
type S3BlobStore struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	prefix    string
}

// S3Config configures the S3 blob store.
type S3Config struct {
	Bucket    string
	KeyPrefix string
	Region    string
}

// NewS3BlobStore loads the default AWS configuration and returns a store.
func NewS3BlobStore(ctx context.Context, cfg S3Config) (*S3BlobStore, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3BlobStore{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		prefix:    cfg.KeyPrefix,
	}, nil
}

func (s *S3BlobStore) key(path string) string {
	if s.prefix == "" {
		return path
	}
	return s.prefix + "/" + path
}

// Put writes a blob.
func (s *S3BlobStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(path)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", path, err)
	}
	return nil
}

// Get reads the blob at the path.
func (s *S3BlobStore) Get(ctx context.Context, path string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%w: %s", ErrBlobNotFound, path)
		}
		return nil, fmt.Errorf("failed to get %s: %w", path, err)
	}
	defer out.Body.Close()

	return io.ReadAll(out.Body)
}

// List returns lake keys under the prefix.
func (s *S3BlobStore) List(ctx context.Context, prefix string) ([]string, error) {
	paths := make([]string, 0)
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.key(prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if s.prefix != "" {
				key = key[len(s.prefix)+1:]
			}
			paths = append(paths, key)
		}
	}
	return paths, nil
}

// Delete removes the blob at the path.
func (s *S3BlobStore) Delete(ctx context.Context, path string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(path)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// PresignReceiptPut returns a presigned URL the capture client uses to
// upload a receipt blob directly to the bronze zone.
func (s *S3BlobStore) PresignReceiptPut(ctx context.Context, claimID, fileName, contentType string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(BronzeReceiptPath(claimID, fileName))),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"claim_id": claimID,
		},
	}, func(o *s3.PresignOptions) { o.Expires = ttl })
	if err != nil {
		return "", fmt.Errorf("failed to presign receipt upload: %w", err)
	}
	return req.URL, nil
}
