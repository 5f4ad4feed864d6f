package generation

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenerationError reports a failed model invocation. RateLimited marks
// provider throttling rejections, which callers surface as a distinct
// throttling signal rather than a server failure.
type GenerationError struct {
	RateLimited bool
	cause       error
}

func (e *GenerationError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("model rejected request (rate limited): %v", e.cause)
	}
	return fmt.Sprintf("model invocation failed: %v", e.cause)
}

func (e *GenerationError) Unwrap() error {
	return e.cause
}

// GeminiClient invokes the Gemini API with a fully rendered prompt. The
// client holds no state between calls; each call is independent and no
// failed call is retried here.
type GeminiClient struct {
	apiKey string
	model  string
}

// NewGeminiClient creates a client for the configured model version.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{apiKey: apiKey, model: model}
}

// Generate sends the prompt to the model and returns its textual response.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  c.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", &GenerationError{cause: fmt.Errorf("create client: %w", err)}
	}

	result, err := client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", &GenerationError{RateLimited: isRateLimited(err), cause: err}
	}

	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", &GenerationError{cause: fmt.Errorf("empty response from model")}
	}

	var text strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return "", &GenerationError{cause: fmt.Errorf("response contained no text parts")}
	}
	return text.String(), nil
}

// isRateLimited recognizes provider throttling by the error surface the API
// actually exposes: a 429 status or quota exhaustion markers in the message.
func isRateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "RESOURCE_EXHAUSTED")
}
