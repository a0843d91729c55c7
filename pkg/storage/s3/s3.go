package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/sulbao/community/pkg/board"
)

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (MinIO)

	// Server-side encryption options
	EnableSSE    bool   // Enable server-side encryption
	SSEAlgorithm string // AES256 or aws:kms
	SSEKMSKeyID  string // Optional KMS key ID for aws:kms

	CreateBucketIfNotExist bool
}

// Backend is an S3-compatible implementation of the board.BlobStore interface
type Backend struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	config   Config
}

// New creates a new S3-compatible storage backend
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
		o.UsePathStyle = config.UsePathStyle
	})

	backend := &Backend{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   config.Bucket,
		config:   config,
	}

	if config.CreateBucketIfNotExist {
		if err := backend.createBucketIfNotExists(ctx); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return backend, nil
}

func (b *Backend) createBucketIfNotExists(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	if err == nil {
		return nil
	}
	if !isNotFound(err) && !hasErrorCode(err, "BadRequest") {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	input := &s3.CreateBucketInput{
		Bucket: aws.String(b.bucket),
	}
	if b.config.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.config.Region),
		}
	}

	if _, err := b.client.CreateBucket(ctx, input); err != nil {
		if hasErrorCode(err, "BucketAlreadyExists", "BucketAlreadyOwnedByYou") {
			return nil
		}
		return err
	}
	return nil
}

// GetObjectMeta retrieves metadata for an object in S3
func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*board.ObjectMeta, error) {
	result, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, board.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to get object metadata: %w", err)
	}

	contentType := aws.ToString(result.ContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	metadata := make(map[string]string, len(result.Metadata)+1)
	for k, v := range result.Metadata {
		metadata[k] = v
	}
	metadata["content_type"] = contentType

	return &board.ObjectMeta{
		Key:         objectKey,
		Size:        aws.ToInt64(result.ContentLength),
		ContentType: contentType,
		UpdatedAt:   aws.ToTime(result.LastModified),
		ETag:        strings.Trim(aws.ToString(result.ETag), "\""),
		Metadata:    metadata,
	}, nil
}

// Upload uploads content directly to S3
func (b *Backend) Upload(ctx context.Context, objectKey string, reader io.Reader) error {
	return b.UploadWithParams(ctx, reader, board.UploadParams{ObjectKey: objectKey})
}

// UploadWithParams uploads content with a content type
func (b *Backend) UploadWithParams(ctx context.Context, reader io.Reader, params board.UploadParams) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(params.ObjectKey),
		Body:   reader,
	}
	if params.MimeType != "" {
		input.ContentType = aws.String(params.MimeType)
	}
	b.applySSE(input)

	if _, err := b.uploader.Upload(ctx, input); err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}

func (b *Backend) applySSE(input *s3.PutObjectInput) {
	if !b.config.EnableSSE {
		return
	}
	switch b.config.SSEAlgorithm {
	case "AES256":
		input.ServerSideEncryption = types.ServerSideEncryptionAes256
	case "aws:kms":
		input.ServerSideEncryption = types.ServerSideEncryptionAwsKms
		if b.config.SSEKMSKeyID != "" {
			input.SSEKMSKeyId = aws.String(b.config.SSEKMSKeyID)
		}
	}
}

// Download streams an object from S3
func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	result, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, board.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to download from S3: %w", err)
	}
	return result.Body, nil
}

// Delete deletes content from S3. S3 reports success for missing keys.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}

// isNotFound recognizes missing keys and buckets across AWS and MinIO
func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return true
	}
	return hasErrorCode(err, "NotFound", "NoSuchKey", "NoSuchBucket")
}

func hasErrorCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	for _, code := range codes {
		if apiErr.ErrorCode() == code {
			return true
		}
	}
	return false
}
