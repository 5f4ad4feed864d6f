package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/coreybb/scriptcast/models"
)

const (
	acceptedContentType = "application/pdf"
	acceptedExtension   = ".pdf"

	// DefaultMaxUploadBytes is the upload ceiling when none is configured.
	DefaultMaxUploadBytes = 50 * 1024 * 1024
)

// Violation identifies which intake check an upload failed.
type Violation string

const (
	ViolationMissingFile       Violation = "missing_file"
	ViolationUnsupportedType   Violation = "unsupported_type"
	ViolationUnsupportedFormat Violation = "unsupported_format"
	ViolationFileTooLarge      Violation = "file_too_large"
)

// ValidationError reports a rejected upload with a client-facing message
// naming the specific violation.
type ValidationError struct {
	Violation Violation
	Message   string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// FileTooLargeMessage is the client-facing message for an upload above the
// given byte ceiling. The intake layer shares it so a request rejected at
// the transport reads the same as one rejected here.
func FileTooLargeMessage(maxBytes int64) string {
	return fmt.Sprintf("File size too large. Maximum size is %dMB", maxBytes/(1024*1024))
}

// UploadValidator checks an incoming file before anything else runs. It is
// a pure predicate over the candidate and the configured size ceiling; it
// has no side effects.
type UploadValidator struct {
	maxBytes int64
}

// NewUploadValidator creates a validator with the given maximum upload size
// in bytes. A non-positive value falls back to DefaultMaxUploadBytes.
func NewUploadValidator(maxBytes int64) *UploadValidator {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &UploadValidator{maxBytes: maxBytes}
}

// Validate runs the intake checks in order, short-circuiting on the first
// failure: presence, declared content type, filename extension, byte length.
func (v *UploadValidator) Validate(candidate *models.UploadCandidate) error {
	if candidate == nil || len(candidate.Data) == 0 {
		return &ValidationError{
			Violation: ViolationMissingFile,
			Message:   "No file uploaded",
		}
	}

	if !strings.HasPrefix(candidate.ContentType, acceptedContentType) {
		return &ValidationError{
			Violation: ViolationUnsupportedType,
			Message:   "Invalid file type. Only pdf files are allowed.",
		}
	}

	ext := strings.ToLower(filepath.Ext(candidate.Filename))
	if ext != acceptedExtension {
		received := strings.TrimPrefix(ext, ".")
		if received == "" {
			received = "unknown"
		}
		return &ValidationError{
			Violation: ViolationUnsupportedFormat,
			Message:   fmt.Sprintf("Invalid file format. Allowed formats: pdf. Received: %s", received),
		}
	}

	if candidate.Size > v.maxBytes {
		return &ValidationError{
			Violation: ViolationFileTooLarge,
			Message:   FileTooLargeMessage(v.maxBytes),
		}
	}

	return nil
}
