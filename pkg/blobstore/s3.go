package blobstore

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds what an S3-compatible backend (Garage, MinIO, AWS) needs.
// PublicBaseURL is the externally reachable endpoint used to build blob URLs.
type S3Config struct {
	AccessKey     string
	SecretKey     string
	Endpoint      string
	Region        string
	Bucket        string
	PublicBaseURL string
}

// S3Store keeps blobs in a single bucket, one object per stored name.
type S3Store struct {
	client *s3.Client
	bucket string
	public string
	limits Limits
}

func NewS3Store(cfg S3Config, limits Limits) (*S3Store, error) {
	staticResolver := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(staticResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load sdk config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &S3Store{
		client: client,
		bucket: cfg.Bucket,
		public: cfg.PublicBaseURL,
		limits: limits,
	}, nil
}

func (s *S3Store) Store(ctx context.Context, file IncomingFile) (*AttachmentRef, error) {
	mimeType, size, err := s.limits.Check(file.Content)
	if err != nil {
		return nil, err
	}

	storedName := GenerateStoredName(file.OriginalName)

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(storedName),
		Body:        file.Content,
		ContentType: aws.String(mimeType),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &AttachmentRef{
		OriginalName: file.OriginalName,
		StoredName:   storedName,
		Url:          s.URLFor(storedName),
		MimeType:     mimeType,
		SizeBytes:    size,
	}, nil
}

// Retire deletes the object. S3 DeleteObject succeeds for missing keys, which
// gives the idempotence the retirement path relies on.
func (s *S3Store) Retire(ctx context.Context, storedName string) error {
	if storedName == "" {
		return nil
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storedName),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return nil
}

func (s *S3Store) URLFor(storedName string) string {
	return fmt.Sprintf("%s/%s/%s", s.public, s.bucket, storedName)
}
