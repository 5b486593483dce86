// Package export uploads archived park days to S3-compatible storage.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rfoley/parkwatch/internal/model"
)

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, input *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, input *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Config holds S3-compatible storage configuration.
type Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Service mirrors each archived day to an S3 bucket as a JSON object
// keyed by user and date.
type Service struct {
	bucket string
	client s3Client
}

// NewService returns a configured exporter, or nil when the bucket or
// credentials are missing.
func NewService(cfg Config) *Service {
	if cfg.Bucket == "" || cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil
	}
	return &Service{
		bucket: cfg.Bucket,
		client: newS3Client(cfg),
	}
}

func newS3Client(cfg Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

func objectKey(userID int64, date string) string {
	return fmt.Sprintf("%d/%s.json", userID, date)
}

// ExportDay uploads one user's archived day.
func (s *Service) ExportDay(ctx context.Context, userID int64, date string, contents model.ArchiveContents) error {
	data, err := json.Marshal(contents)
	if err != nil {
		return fmt.Errorf("encode archive: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(objectKey(userID, date)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("upload to s3: %w", err)
	}
	return nil
}

// FetchDay downloads a previously exported day.
func (s *Service) FetchDay(ctx context.Context, userID int64, date string) (*model.ArchiveContents, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(userID, date)),
	})
	if err != nil {
		return nil, fmt.Errorf("download from s3: %w", err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	var contents model.ArchiveContents
	if err := json.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("decode archive: %w", err)
	}
	return &contents, nil
}

// DeleteDay removes an exported day, used when a user deletes an archive.
func (s *Service) DeleteDay(ctx context.Context, userID int64, date string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(objectKey(userID, date)),
	})
	if err != nil {
		return fmt.Errorf("delete from s3: %w", err)
	}
	return nil
}
