package pipeline

import (
	"bytes"
	"testing"

	"github.com/coreybb/scriptcast/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidate() *models.UploadCandidate {
	data := bytes.Repeat([]byte("a"), 128)
	return &models.UploadCandidate{
		Data:        data,
		ContentType: "application/pdf",
		Filename:    "report.pdf",
		Size:        int64(len(data)),
	}
}

func TestValidateAcceptsWellFormedUpload(t *testing.T) {
	v := NewUploadValidator(0)
	require.NoError(t, v.Validate(validCandidate()))
}

func TestValidateRejectsByViolation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *models.UploadCandidate) *models.UploadCandidate
		violation Violation
		message   string
	}{
		{
			name:      "nil candidate",
			mutate:    func(c *models.UploadCandidate) *models.UploadCandidate { return nil },
			violation: ViolationMissingFile,
			message:   "No file uploaded",
		},
		{
			name: "empty byte stream",
			mutate: func(c *models.UploadCandidate) *models.UploadCandidate {
				c.Data = nil
				c.Size = 0
				return c
			},
			violation: ViolationMissingFile,
			message:   "No file uploaded",
		},
		{
			name: "wrong content type",
			mutate: func(c *models.UploadCandidate) *models.UploadCandidate {
				c.ContentType = "image/png"
				return c
			},
			violation: ViolationUnsupportedType,
			message:   "Invalid file type. Only pdf files are allowed.",
		},
		{
			name: "wrong extension",
			mutate: func(c *models.UploadCandidate) *models.UploadCandidate {
				c.Filename = "report.docx"
				return c
			},
			violation: ViolationUnsupportedFormat,
			message:   "Invalid file format. Allowed formats: pdf. Received: docx",
		},
		{
			name: "no extension",
			mutate: func(c *models.UploadCandidate) *models.UploadCandidate {
				c.Filename = "report"
				return c
			},
			violation: ViolationUnsupportedFormat,
			message:   "Invalid file format. Allowed formats: pdf. Received: unknown",
		},
		{
			name: "oversized",
			mutate: func(c *models.UploadCandidate) *models.UploadCandidate {
				c.Size = DefaultMaxUploadBytes + 1
				return c
			},
			violation: ViolationFileTooLarge,
			message:   "File size too large. Maximum size is 50MB",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewUploadValidator(0)
			err := v.Validate(tt.mutate(validCandidate()))
			require.Error(t, err)

			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.violation, validationErr.Violation)
			assert.Equal(t, tt.message, validationErr.Message)
		})
	}
}

func TestValidateShortCircuitsOnFirstFailure(t *testing.T) {
	// A candidate failing every check reports only the first violation.
	v := NewUploadValidator(16)
	err := v.Validate(&models.UploadCandidate{
		Data:        nil,
		ContentType: "image/png",
		Filename:    "photo.png",
		Size:        1024,
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, ViolationMissingFile, validationErr.Violation)
}

func TestValidateUsesConfiguredCeiling(t *testing.T) {
	v := NewUploadValidator(2 * 1024 * 1024)

	c := validCandidate()
	c.Size = 2*1024*1024 + 1
	err := v.Validate(c)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, ViolationFileTooLarge, validationErr.Violation)
	assert.Equal(t, "File size too large. Maximum size is 2MB", validationErr.Message)
}
