package objectclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	cfg "github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/config"
	"github.com/Deodat-Lawson/PDR-AI-v2-sub003/internal/core"
)

type S3Client struct {
	client *s3.Client
	region string
	bucket string
}

var _ core.ObjectClient = (*S3Client)(nil)

// NewS3Client connects with static credentials when they are configured and
// falls back to the default AWS credential chain otherwise.
func NewS3Client(ctx context.Context, c *cfg.Config) (*S3Client, error) {
	if c.AwsRegion == "" {
		return nil, fmt.Errorf("AWS_REGION not set")
	}
	if c.BucketName == "" {
		return nil, fmt.Errorf("S3 bucket name not set")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(c.AwsRegion)}
	if c.AwsAccessKey != "" && c.AwsSecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AwsAccessKey, c.AwsSecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	slog.Info("s3 client ready", "region", c.AwsRegion, "bucket", c.BucketName)
	return &S3Client{
		client: s3.NewFromConfig(awsCfg),
		region: c.AwsRegion,
		bucket: c.BucketName,
	}, nil
}

// Bucket is the default bucket uploads go to.
func (c *S3Client) Bucket() string { return c.bucket }

// UploadFile streams data to S3 and returns an s3:// URL for it.
func (c *S3Client) UploadFile(ctx context.Context, bucket, key string, data io.Reader, contentType string) (string, error) {
	if bucket == "" {
		bucket = c.bucket
	}
	uploader := manager.NewUploader(c.client)

	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        data,
		ContentType: aws.String(contentType),
	}

	ctxUpload, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	if _, err := uploader.Upload(ctxUpload, input); err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}
	return S3URL(bucket, key), nil
}

func (c *S3Client) DeleteFile(ctx context.Context, bucket, key string) error {
	ctxDel, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := c.client.DeleteObject(ctxDel, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete failed: %w", err)
	}
	return nil
}

func (c *S3Client) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	body, err := c.GetObjectReader(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	b, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}

// GetObjectReader opens the object for streaming. The caller closes it.
func (c *S3Client) GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get failed: %w", err)
	}
	return resp.Body, nil
}
