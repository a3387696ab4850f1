package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	"dmchat/internal/pkg/logx"
)

// s3Client implements StorageService against an S3-compatible endpoint.
type s3Client struct {
	cfg       ServiceConfig
	publicURL string
	s3Client  *s3.Client
	uploader  *manager.Uploader
	logger    zerolog.Logger
}

// newS3Client initializes the S3 client using static credentials and a custom endpoint.
func newS3Client(ctx context.Context, cfg ServiceConfig) (*s3Client, error) {
	if cfg.S3BucketName == "" || cfg.S3PublicURL == "" {
		return nil, errors.New("storage: bucket name and public url are required")
	}

	sdkCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)),
		config.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}

	client := s3.NewFromConfig(sdkCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
		}
		o.UsePathStyle = true
	})

	return &s3Client{
		cfg:       cfg,
		publicURL: strings.TrimRight(cfg.S3PublicURL, "/"),
		s3Client:  client,
		uploader:  manager.NewUploader(client),
		logger:    logx.Component("storage"),
	}, nil
}

// Upload streams body to the bucket and returns the object's public URL.
func (c *s3Client) Upload(ctx context.Context, key, contentType string, body []byte) (string, error) {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(c.cfg.S3BucketName),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("S3 upload failed")
		return "", fmt.Errorf("storage: upload %s: %w", key, err)
	}

	return c.publicURL + "/" + key, nil
}

// Delete removes the file specified by the given key from the bucket.
func (c *s3Client) Delete(ctx context.Context, key string) error {
	_, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.S3BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("S3 delete failed")
		return fmt.Errorf("storage: delete %s: %w", key, err)
	}

	return nil
}

func (c *s3Client) KeyFromURL(publicURL string) (string, bool) {
	return keyFromURL(c.publicURL, publicURL)
}

func keyFromURL(base, publicURL string) (string, bool) {
	key, ok := strings.CutPrefix(publicURL, base+"/")
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
