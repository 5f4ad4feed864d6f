package storage

import (
	"context"
	"fmt"

	"github.com/coreybb/scriptcast/models"
)

// ObjectStager defines the interface for staging validated uploads into
// durable remote object storage.
type ObjectStager interface {
	// Stage uploads the candidate's bytes and returns a locator sufficient
	// to later re-fetch the exact bytes. Failures are reported as
	// *StagingError; the call is not retried here.
	Stage(ctx context.Context, candidate *models.UploadCandidate) (locator string, err error)
}

// ReadURLSigner produces a time-limited URL from which a staged object's
// bytes can be fetched with a plain HTTP GET.
type ReadURLSigner interface {
	ReadURL(ctx context.Context, locator string) (string, error)
}

// StagingError wraps a failure to place an upload into object storage,
// whether from the storage backend or from the pre-upload format check.
type StagingError struct {
	cause error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("failed to stage upload: %v", e.cause)
}

func (e *StagingError) Unwrap() error {
	return e.cause
}

func NewStagingError(cause error) *StagingError {
	return &StagingError{cause: cause}
}
