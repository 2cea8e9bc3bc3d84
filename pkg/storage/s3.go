package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/finvia/reportd/pkg/authz"
)

// DefaultSnapshotKey is the object key for the persisted authorization state
const DefaultSnapshotKey = "authz/snapshot.json"

// S3Config holds object storage settings for the S3 snapshot backend.
// Endpoint and UsePathStyle support MinIO and other S3-compatible stores.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	SnapshotKey  string
}

// Validate checks if the S3 configuration is usable
func (c S3Config) Validate() error {
	if c.Bucket == "" {
		return fmt.Errorf("s3 bucket is required")
	}
	if c.Region == "" {
		return fmt.Errorf("s3 region is required")
	}
	return nil
}

// s3API is the slice of the S3 client the snapshot store uses
type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// S3SnapshotStore persists the authorization state as a JSON object in an
// S3 bucket. It implements authz.SnapshotStore and can replace the
// database-backed store when the process has no durable disk.
type S3SnapshotStore struct {
	client s3API
	bucket string
	key    string
}

// NewS3SnapshotStore connects to S3 and ensures the bucket exists
func NewS3SnapshotStore(ctx context.Context, cfg S3Config) (*S3SnapshotStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var awsCfg aws.Config
	var err error
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey, cfg.SecretKey, "")),
		)
	} else {
		// Default credential chain: IAM roles, env vars, shared config.
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	}
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.UsePathStyle {
			o.UsePathStyle = true
		}
	})

	key := cfg.SnapshotKey
	if key == "" {
		key = DefaultSnapshotKey
	}

	store := &S3SnapshotStore{client: client, bucket: cfg.Bucket, key: key}
	if err := store.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// Load reads the persisted snapshot. Returns nil when no snapshot object
// exists yet, so callers can fall back to the seed.
func (s *S3SnapshotStore) Load(ctx context.Context) (*authz.Snapshot, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isObjectNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot object: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot object: %w", err)
	}

	snap := &authz.Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if len(snap.Users) == 0 {
		return nil, nil
	}
	return snap, nil
}

// Save writes the snapshot, replacing any previous object
func (s *S3SnapshotStore) Save(ctx context.Context, snap *authz.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put snapshot object: %w", err)
	}
	return nil
}

func (s *S3SnapshotStore) ensureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil && !isBucketExists(err) {
		return fmt.Errorf("create bucket: %w", err)
	}
	return nil
}

func isObjectNotFound(err error) bool {
	return err != nil &&
		(strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "NotFound"))
}

func isBucketExists(err error) bool {
	return err != nil &&
		(strings.Contains(err.Error(), "BucketAlreadyExists") ||
			strings.Contains(err.Error(), "BucketAlreadyOwnedByYou"))
}
