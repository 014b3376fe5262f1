// Package archive keeps a copy of every collection a user uploads, so a
// bad full-replace can be recovered by hand.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type Archiver interface {
	// Archive stores body and returns the object key it was written under.
	Archive(ctx context.Context, userID string, at time.Time, body []byte) (string, error)
}

// Nop discards everything. Used when no bucket is configured.
type Nop struct{}

func (Nop) Archive(context.Context, string, time.Time, []byte) (string, error) { return "", nil }

type S3Config struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
}

type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var (
	loadDefaultAWSConfig  = config.LoadDefaultConfig
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

type S3Archiver struct {
	client objectPutter
	bucket string
}

// NewS3Archiver builds a client with static credentials. BaseEndpoint
// points it at MinIO or another S3-compatible store.
func NewS3Archiver(ctx context.Context, c S3Config) (*S3Archiver, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.User, c.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Archiver{client: client, bucket: c.Bucket}, nil
}

// ObjectKey lays snapshots out per user, sortable by time.
func ObjectKey(userID string, at time.Time) string {
	return fmt.Sprintf("users/%s/%s.json", userID, at.UTC().Format("20060102T150405.000000000Z"))
}

func (a *S3Archiver) Archive(ctx context.Context, userID string, at time.Time, body []byte) (string, error) {
	key := ObjectKey(userID, at)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}
