package pipeline

import (
	"context"
	"time"

	"github.com/coreybb/scriptcast/models"
	"github.com/coreybb/scriptcast/storage"
	"github.com/rs/zerolog/log"
)

// Per-stage deadlines for the I/O-bound stages. Expiry surfaces as the
// corresponding stage's own failure kind because every collaborator wraps
// the context error in its component error type.
const (
	stageIOTimeout  = 45 * time.Second
	generateTimeout = 2 * time.Minute
	persistTimeout  = 10 * time.Second
)

// ContentExtractor recovers the plain text behind a staged document locator.
type ContentExtractor interface {
	Extract(ctx context.Context, locator string) (string, error)
}

// TextGenerator invokes the external model with a fully rendered prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ScriptCreator persists a completed generation result.
type ScriptCreator interface {
	CreateScript(ctx context.Context, pdfFilePath, content string) (*models.Script, error)
}

// ScriptPipeline composes validation, staging, extraction, prompt building,
// generation, and persistence for one upload. Stages run strictly in that
// order; a failure at any stage aborts the run immediately with the
// originating stage's error, and nothing is persisted on a partial run.
type ScriptPipeline struct {
	validator *UploadValidator
	stager    storage.ObjectStager
	extractor ContentExtractor
	generator TextGenerator
	scripts   ScriptCreator
	tone      string
	length    string
}

// NewScriptPipeline wires the pipeline's collaborators. Tone and target
// length use the package defaults; every generated script shares them.
func NewScriptPipeline(
	validator *UploadValidator,
	stager storage.ObjectStager,
	extractor ContentExtractor,
	generator TextGenerator,
	scripts ScriptCreator,
) *ScriptPipeline {
	return &ScriptPipeline{
		validator: validator,
		stager:    stager,
		extractor: extractor,
		generator: generator,
		scripts:   scripts,
		tone:      DefaultTone,
		length:    DefaultTargetLengthMinutes,
	}
}

// GenerateFromUpload runs the full document-to-script pipeline for one
// uploaded candidate and returns the persisted script.
func (p *ScriptPipeline) GenerateFromUpload(ctx context.Context, candidate *models.UploadCandidate) (*models.Script, error) {
	if err := p.validator.Validate(candidate); err != nil {
		return nil, err
	}

	locator, err := p.stage(ctx, candidate)
	if err != nil {
		return nil, err
	}

	text, err := p.extract(ctx, locator)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(text, p.tone, p.length)

	content, err := p.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	script, err := p.persist(ctx, locator, content)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("script_id", script.ID).
		Str("locator", locator).
		Int("content_length", len(script.Content)).
		Msg("Generated script from upload")
	return script, nil
}

func (p *ScriptPipeline) stage(ctx context.Context, candidate *models.UploadCandidate) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, stageIOTimeout)
	defer cancel()
	return p.stager.Stage(ctx, candidate)
}

func (p *ScriptPipeline) extract(ctx context.Context, locator string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, stageIOTimeout)
	defer cancel()
	return p.extractor.Extract(ctx, locator)
}

func (p *ScriptPipeline) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()
	return p.generator.Generate(ctx, prompt)
}

func (p *ScriptPipeline) persist(ctx context.Context, locator, content string) (*models.Script, error) {
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	return p.scripts.CreateScript(ctx, locator, content)
}
