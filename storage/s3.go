package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/coreybb/scriptcast/models"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/rs/zerolog/log"
)

const defaultReadURLTTL = 15 * time.Minute

// S3ObjectStager implements ObjectStager and ReadURLSigner against an S3
// bucket. Uploads land under the application namespace and read access goes
// through presigned GET URLs, so the bucket itself can stay private.
type S3ObjectStager struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	namespace string
	readTTL   time.Duration
}

// NewS3ObjectStager creates a stager for the given bucket and namespace.
func NewS3ObjectStager(client *s3.Client, bucket, namespace string) *S3ObjectStager {
	return &S3ObjectStager{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		namespace: namespace,
		readTTL:   defaultReadURLTTL,
	}
}

// Stage uploads the candidate's bytes under a fresh namespaced key and
// returns that key as the locator. The storage layer only accepts bytes
// that parse as a PDF, a second line of defense behind intake validation.
func (s *S3ObjectStager) Stage(ctx context.Context, candidate *models.UploadCandidate) (string, error) {
	if _, err := api.PageCount(bytes.NewReader(candidate.Data), model.NewDefaultConfiguration()); err != nil {
		return "", NewStagingError(fmt.Errorf("rejected by storage format check: %w", err))
	}

	key := BuildPDFKey(s.namespace)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(candidate.Data),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", NewStagingError(fmt.Errorf("failed to upload to s3: %w", err))
	}

	log.Info().Str("key", key).Int64("size", candidate.Size).Msg("Staged uploaded PDF")
	return key, nil
}

// ReadURL presigns a GET for the staged object so the extractor can fetch
// the exact bytes that were uploaded.
func (s *S3ObjectStager) ReadURL(ctx context.Context, locator string) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(locator),
	}, func(o *s3.PresignOptions) { o.Expires = s.readTTL })
	if err != nil {
		return "", fmt.Errorf("failed to presign read for %s: %w", locator, err)
	}
	return req.URL, nil
}
