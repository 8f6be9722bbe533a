package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"foodgram/internal/config"
)

// ErrInvalidImagePayload is returned when an upload is not a base64 image data URI.
var ErrInvalidImagePayload = errors.New("expected a base64-encoded image data URI")

// Store saves uploaded images and returns stable reference URLs.
type Store interface {
	SaveBase64(ctx context.Context, dataURI, folder string) (string, error)
	Delete(ctx context.Context, url string) error
}

// S3Store stores images in an S3-compatible bucket (MinIO in development).
type S3Store struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	baseURL  string
}

// NewS3Store creates a store against the configured S3 endpoint and verifies
// the bucket exists.
func NewS3Store(ctx context.Context, cfg *config.Config) (*S3Store, error) {
	scheme := "http"
	if cfg.S3UseSSL {
		scheme = "https"
	}
	endpoint := fmt.Sprintf("%s://%s", scheme, cfg.S3Endpoint)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.S3Bucket)}); err != nil {
		return nil, fmt.Errorf("bucket %q not reachable: %w", cfg.S3Bucket, err)
	}

	return &S3Store{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   cfg.S3Bucket,
		baseURL:  fmt.Sprintf("%s/%s", endpoint, cfg.S3Bucket),
	}, nil
}

// SaveBase64 decodes a "data:image/<ext>;base64,<payload>" URI, uploads the
// bytes under folder and returns the object's public URL.
func (s *S3Store) SaveBase64(ctx context.Context, dataURI, folder string) (string, error) {
	ext, raw, err := parseImageDataURI(dataURI)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("%s/%s.%s", folder, uuid.New().String(), ext)
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("image/" + ext),
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	return s.baseURL + "/" + key, nil
}

// Delete removes a previously stored object. URLs outside this store's
// bucket are ignored.
func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, s.baseURL+"/")
	if !ok || key == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

func parseImageDataURI(dataURI string) (ext string, raw []byte, err error) {
	if !strings.HasPrefix(dataURI, "data:image/") {
		return "", nil, ErrInvalidImagePayload
	}
	meta, payload, ok := strings.Cut(dataURI, ";base64,")
	if !ok {
		return "", nil, ErrInvalidImagePayload
	}
	ext = strings.TrimPrefix(meta, "data:image/")
	if ext == "" {
		return "", nil, ErrInvalidImagePayload
	}

	raw, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, ErrInvalidImagePayload
	}
	return ext, raw, nil
}
