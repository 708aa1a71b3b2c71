// Package s3service stores builder import files in S3.
package s3service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"stand-lead-engine/internal/utils"
)

// Key prefixes used by the builder import flow.
const (
	ImportPrefix    = "imports/builders/"
	ProcessedPrefix = "processed/builders/"
	FailedPrefix    = "failed/builders/"
)

// API is the subset of the S3 client the service uses.
type API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	CopyObject(ctx context.Context, params *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Service handles S3 operations
type Service struct {
	client     API
	presign    func(ctx context.Context, in *s3.PutObjectInput, expiry time.Duration) (string, error)
	bucketName string
	logger     *zap.Logger
	now        func() time.Time
}

// PresignedURLResult contains the presigned URL details
type PresignedURLResult struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewService creates a new S3 service for bucket.
func NewService(ctx context.Context, region, bucket string) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	presigner := s3.NewPresignClient(client)

	svc := NewServiceWithClient(client, bucket)
	svc.presign = func(ctx context.Context, in *s3.PutObjectInput, expiry time.Duration) (string, error) {
		req, err := presigner.PresignPutObject(ctx, in, func(opts *s3.PresignOptions) {
			opts.Expires = expiry
		})
		if err != nil {
			return "", err
		}
		return req.URL, nil
	}
	return svc, nil
}

// NewServiceWithClient creates a service around an existing client. Upload
// URLs cannot be presigned without a presign client.
func NewServiceWithClient(client API, bucket string) *Service {
	return &Service{
		client:     client,
		bucketName: bucket,
		logger:     utils.Component("s3"),
		now:        time.Now,
	}
}

// Bucket returns the bucket the service works on.
func (s *Service) Bucket() string {
	return s.bucketName
}

// ImportKey returns the object key for an uploaded builder file.
func (s *Service) ImportKey(fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "builders.csv"
	}
	return fmt.Sprintf("%s%s_%s", ImportPrefix, s.now().UTC().Format("20060102T150405"), name)
}

// GeneratePresignedUploadURL creates a presigned URL for uploading a builder file.
func (s *Service) GeneratePresignedUploadURL(ctx context.Context, key string, contentType string, expiryMinutes int) (*PresignedURLResult, error) {
	if s.presign == nil {
		return nil, fmt.Errorf("presigning is not configured for bucket %s", s.bucketName)
	}
	if expiryMinutes <= 0 {
		expiryMinutes = 15 // Default 15 minutes
	}

	expiry := time.Duration(expiryMinutes) * time.Minute

	url, err := s.presign(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, expiry)
	if err != nil {
		s.logger.Error("Failed to generate presigned URL",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	s.logger.Info("Generated presigned upload URL",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("expiry_minutes", expiryMinutes),
	)

	return &PresignedURLResult{
		URL:       url,
		Key:       key,
		ExpiresAt: s.now().Add(expiry),
	}, nil
}

// DownloadFile downloads a file from S3
func (s *Service) DownloadFile(ctx context.Context, bucket, key string) ([]byte, error) {
	if bucket == "" {
		bucket = s.bucketName
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		s.logger.Error("Failed to download file from S3",
			zap.String("bucket", bucket),
			zap.String("key", key),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	s.logger.Info("Downloaded file from S3",
		zap.String("bucket", bucket),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return data, nil
}

// Archive moves an import file under prefix (ProcessedPrefix or FailedPrefix).
func (s *Service) Archive(ctx context.Context, bucket, key, prefix string) (string, error) {
	if bucket == "" {
		bucket = s.bucketName
	}
	dest := prefix + strings.TrimPrefix(key, ImportPrefix)

	_, err := s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(bucket),
		CopySource: aws.String(fmt.Sprintf("%s/%s", bucket, key)),
		Key:        aws.String(dest),
	})
	if err != nil {
		return "", fmt.Errorf("failed to copy file: %w", err)
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("failed to delete file: %w", err)
	}

	s.logger.Info("Archived import file",
		zap.String("source", key),
		zap.String("destination", dest),
	)

	return dest, nil
}
