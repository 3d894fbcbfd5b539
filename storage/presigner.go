// Package storage issues time-limited access grants for stored file content.
// Grants are presigned object-storage URLs; the gateway never streams file
// bytes itself.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscredentials "github.com/aws/aws-sdk-go-v2/credentials"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/revisetax/docs-gateway/config"
)

// URLSigner produces a time-limited URL granting read access to one stored
// object. Implementations must honor the requested TTL exactly; clamping
// happens in the caller.
type URLSigner interface {
	SignGetURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// S3Signer issues presigned GET URLs against an S3 or S3-compatible bucket
type S3Signer struct {
	presign *awss3.PresignClient
	bucket  string
	logger  *zap.Logger
}

// NewS3Signer creates a presigning client from storage configuration. An
// explicit endpoint switches the client to an S3-compatible store.
func NewS3Signer(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3Signer, error) {
	loadOptions := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOptions = append(loadOptions, awsconfig.WithCredentialsProvider(
			awscredentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := awss3.NewFromConfig(awsCfg, func(o *awss3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Signer{
		presign: awss3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		logger:  logger,
	}, nil
}

// SignGetURL presigns a GET for the given object key with the given lifetime
func (s *S3Signer) SignGetURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &awss3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, awss3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("failed to presign object URL: %w", err)
	}

	s.logger.Debug("object URL presigned",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return req.URL, nil
}
