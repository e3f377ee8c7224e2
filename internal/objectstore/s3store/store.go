// Package s3store keeps task attachments in an S3 bucket, one object per task.
package s3store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-attachments/internal/attachments"
)

// Client is the subset of *s3.Client used by the store.
type Client interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Presigner is the subset of *s3.PresignClient used by the store.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type Store struct {
	logger    zerolog.Logger
	client    Client
	presigner Presigner
	bucket    string
	baseURL   string
}

// NewStore creates an S3-backed store. When publicBaseURL is empty objects
// are addressed with the bucket's virtual-hosted URL.
func NewStore(
	logger zerolog.Logger,
	client Client,
	presigner Presigner,
	bucket string,
	publicBaseURL string,
) *Store {
	baseURL := strings.TrimRight(publicBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}

	return &Store{
		logger:    logger,
		client:    client,
		presigner: presigner,
		bucket:    bucket,
		baseURL:   baseURL,
	}
}

func (s *Store) PresignUpload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("key", key).
			Msg("failed to presign put object")
		return "", unavailable("presign put object", err)
	}
	return req.URL, nil
}

func (s *Store) ObjectURL(key string) string {
	return s.baseURL + "/" + url.PathEscape(key)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil
		}

		s.logger.Error().
			Err(err).
			Str("key", key).
			Msg("failed to delete object")
		return unavailable("delete object", err)
	}
	s.logger.Debug().
		Str("key", key).
		Msg("deleted object")
	return nil
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}

		s.logger.Error().
			Err(err).
			Str("key", key).
			Msg("failed to head object")
		return false, unavailable("head object", err)
	}
	return true, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "NotFound", "NoSuchKey":
		return true
	}
	return false
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", attachments.ErrObjectStoreUnavailable, op, err)
}
