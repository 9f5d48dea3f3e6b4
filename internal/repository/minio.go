package repository

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// ImageStore keeps a durable copy of the rendered answer image. Writes are
// best-effort from the caller's perspective: grading works off the inline
// data URL whether or not the copy landed.
type ImageStore interface {
	PutAnswerImage(ctx context.Context, submissionID, dataURL string) (string, error)
}

type MinioImageStore struct {
	client *minio.Client
	bucket string
	region string
	logger zerolog.Logger

	ensureMu      sync.Mutex
	bucketEnsured bool
}

func NewMinioImageStore(endpoint, accessKey, secretKey, bucket, region string, useSSL bool, logger zerolog.Logger) (*MinioImageStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	return &MinioImageStore{
		client: client,
		bucket: bucket,
		region: region,
		logger: logger,
	}, nil
}

func (s *MinioImageStore) PutAnswerImage(ctx context.Context, submissionID, dataURL string) (string, error) {
	contentType, payload, err := decodeDataURL(dataURL)
	if err != nil {
		return "", err
	}

	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := fmt.Sprintf("answers/%s%s", submissionID, extensionFor(contentType))

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store answer image: %w", err)
	}

	s.logger.Debug().
		Str("submission_id", submissionID).
		Str("object_key", key).
		Int("bytes", len(payload)).
		Msg("Answer image stored")

	return key, nil
}

func (s *MinioImageStore) ensureBucket(ctx context.Context) error {
	s.ensureMu.Lock()
	defer s.ensureMu.Unlock()

	if s.bucketEnsured {
		return nil
	}

	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	s.bucketEnsured = true
	return nil
}

// decodeDataURL splits a "data:image/png;base64,..." reference into its
// content type and raw bytes.
func decodeDataURL(dataURL string) (string, []byte, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return "", nil, fmt.Errorf("unsupported image reference, expected data URL")
	}

	header, encoded, found := strings.Cut(dataURL[len("data:"):], ",")
	if !found {
		return "", nil, fmt.Errorf("malformed data URL")
	}

	contentType, _, _ := strings.Cut(header, ";")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image payload: %w", err)
	}

	return contentType, payload, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
