package extraction

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coreybb/scriptcast/storage"
	"github.com/ledongthuc/pdf"
)

const (
	fetchUserAgent      = "scriptcast"
	defaultFetchTimeout = 30 * time.Second
)

// FetchError reports a failure to retrieve the staged bytes. StatusCode is
// the transport status for non-success HTTP outcomes and zero when the
// request never produced a response.
type FetchError struct {
	StatusCode int
	cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch staged document: status %d", e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch staged document: %v", e.cause)
}

func (e *FetchError) Unwrap() error {
	return e.cause
}

// ParseError reports a fetched document whose internal structure could not
// be read as a PDF. It is attributable to the uploaded input, not the service.
type ParseError struct {
	cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse PDF content: %v", e.cause)
}

func (e *ParseError) Unwrap() error {
	return e.cause
}

// TextExtractor re-fetches staged bytes by locator and extracts the plain
// text of the document. Extraction is all-or-nothing: no partial text is
// returned on either the fetch or the parse failure path.
type TextExtractor struct {
	signer     storage.ReadURLSigner
	httpClient *http.Client
}

// NewTextExtractor creates an extractor that resolves locators through the
// given signer.
func NewTextExtractor(signer storage.ReadURLSigner) *TextExtractor {
	return &TextExtractor{
		signer:     signer,
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
	}
}

// Extract fetches the bytes behind the locator and returns the concatenated
// text of all pages in document order.
func (e *TextExtractor) Extract(ctx context.Context, locator string) (string, error) {
	readURL, err := e.signer.ReadURL(ctx, locator)
	if err != nil {
		return "", &FetchError{cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, readURL, nil)
	if err != nil {
		return "", &FetchError{cause: err}
	}
	req.Header.Set("User-Agent", fetchUserAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{StatusCode: resp.StatusCode, cause: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	return parsePDFText(data)
}

// parsePDFText extracts the plain text of every page in order. The parser
// panics on some malformed cross-reference tables, so panics are converted
// to the same ParseError as ordinary parse failures.
func parsePDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ParseError{cause: fmt.Errorf("parser panic: %v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", &ParseError{cause: err}
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", &ParseError{cause: err}
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", &ParseError{cause: err}
	}
	return buf.String(), nil
}
