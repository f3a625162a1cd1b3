// Package upload pushes rendered timesheets to an S3-compatible object
// store. Upload-by-name is an upsert: re-exporting a month replaces the
// previous object under the same key.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/bandarsiri8/ubertimetracker/internal/config"
)

// S3Uploader stores artifacts in one bucket under a fixed prefix.
type S3Uploader struct {
	bucket string
	prefix string
	client *s3.Client
}

// NewS3Uploader builds an uploader from the upload config. Returns (nil, nil)
// when the config is incomplete so callers can treat uploading as disabled.
func NewS3Uploader(ctx context.Context, cfg config.UploadConfig) (*S3Uploader, error) {
	if !cfg.Configured() {
		return nil, nil
	}

	loadOpts := []func(*awsConfig.LoadOptions) error{
		awsConfig.WithRegion(cfg.Region),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")),
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Uploader{bucket: cfg.Bucket, prefix: cfg.Prefix, client: client}, nil
}

// Upload stores data under the exact file name and returns the object key.
// An existing object with the same name is replaced, never duplicated; a
// prior HeadObject only decides which log line to emit.
func (u *S3Uploader) Upload(ctx context.Context, data []byte, contentType, name string) (string, error) {
	key := path.Join(u.prefix, name)

	replacing := false
	if _, err := u.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(key),
	}); err == nil {
		replacing = true
	}

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	if replacing {
		log.Info().Str("key", key).Msg("Replaced existing timesheet object")
	} else {
		log.Info().Str("key", key).Msg("Uploaded new timesheet object")
	}
	return key, nil
}
