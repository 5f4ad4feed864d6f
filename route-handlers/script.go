package routehandlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/coreybb/scriptcast/datastore"
	"github.com/coreybb/scriptcast/extraction"
	"github.com/coreybb/scriptcast/generation"
	"github.com/coreybb/scriptcast/models"
	"github.com/coreybb/scriptcast/pipeline"
	"github.com/coreybb/scriptcast/storage"
	"github.com/coreybb/scriptcast/webutil"
	"github.com/go-chi/chi/v5"
)

// pdfFormField is the multipart field carrying the uploaded document.
const pdfFormField = "pdfFile"

// multipartOverhead leaves room for multipart boundaries and part headers
// above the file ceiling when capping the request body.
const multipartOverhead = 16 << 10

// ScriptGenerator runs the document-to-script pipeline for one upload.
type ScriptGenerator interface {
	GenerateFromUpload(ctx context.Context, candidate *models.UploadCandidate) (*models.Script, error)
}

// ScriptStore exposes the repository operations the handlers need.
type ScriptStore interface {
	GetScripts(ctx context.Context) ([]models.Script, error)
	GetScriptByID(ctx context.Context, id string) (*models.Script, error)
	DeleteScript(ctx context.Context, id string) (*models.Script, error)
}

// Holds dependencies for script route handlers.
type ScriptHandler struct {
	Pipeline       ScriptGenerator
	Repo           ScriptStore
	maxUploadBytes int64
}

// Creates a new ScriptHandler. maxUploadBytes caps the upload request body
// at the transport; a non-positive value falls back to the intake default.
func NewScriptHandler(p ScriptGenerator, repo ScriptStore, maxUploadBytes int64) *ScriptHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = pipeline.DefaultMaxUploadBytes
	}
	return &ScriptHandler{Pipeline: p, Repo: repo, maxUploadBytes: maxUploadBytes}
}

// HandleGenerateFromPDF accepts a multipart PDF upload, runs the generation
// pipeline, and responds with the persisted script. The body is capped
// before parsing so an oversized upload aborts mid-stream instead of being
// buffered whole.
func (h *ScriptHandler) HandleGenerateFromPDF(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)

	file, header, err := r.FormFile(pdfFormField)
	if err != nil {
		if isBodyTooLarge(err) {
			return webutil.ErrBadRequest(pipeline.FileTooLargeMessage(h.maxUploadBytes))
		}
		return webutil.ErrBadRequest("No file uploaded")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			return webutil.ErrBadRequest(pipeline.FileTooLargeMessage(h.maxUploadBytes))
		}
		return webutil.ErrBadRequestWrap("Failed to read uploaded file", err)
	}

	candidate := &models.UploadCandidate{
		Data:        data,
		ContentType: header.Header.Get(webutil.HeaderContentType),
		Filename:    header.Filename,
		Size:        int64(len(data)),
	}

	script, err := h.Pipeline.GenerateFromUpload(r.Context(), candidate)
	if err != nil {
		return mapPipelineError(err)
	}

	webutil.RespondWithJSON(w, http.StatusCreated, script)
	return nil
}

func (h *ScriptHandler) HandleGetScripts(w http.ResponseWriter, r *http.Request) error {
	scripts, err := h.Repo.GetScripts(r.Context())
	if err != nil {
		return mapPipelineError(err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, scripts)
	return nil
}

func (h *ScriptHandler) HandleGetScript(w http.ResponseWriter, r *http.Request) error {
	scriptID := chi.URLParam(r, "id")

	script, err := h.Repo.GetScriptByID(r.Context(), scriptID)
	if err != nil {
		if errors.Is(err, datastore.ErrScriptNotFound) {
			return webutil.ErrNotFound("Script not found")
		}
		return mapPipelineError(err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, script)
	return nil
}

// HandleDeleteScript removes a script and returns the deleted record.
func (h *ScriptHandler) HandleDeleteScript(w http.ResponseWriter, r *http.Request) error {
	scriptID := chi.URLParam(r, "id")

	script, err := h.Repo.DeleteScript(r.Context(), scriptID)
	if err != nil {
		if errors.Is(err, datastore.ErrScriptNotFound) {
			return webutil.ErrNotFound("Script not found")
		}
		return mapPipelineError(err)
	}
	webutil.RespondWithJSON(w, http.StatusOK, script)
	return nil
}

func isBodyTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	return errors.As(err, &maxBytesErr)
}

// mapPipelineError translates each component's error kind to its HTTP
// status without hiding which stage failed: intake and repository
// validation are the client's fault, an unparseable document is
// attributable to the input, staging/fetch/generation failures are
// upstream failures, a throttled model call is a distinct throttling
// signal, and an unreachable store is service unavailability.
func mapPipelineError(err error) error {
	var validationErr *pipeline.ValidationError
	if errors.As(err, &validationErr) {
		return webutil.ErrBadRequest(validationErr.Message)
	}

	var stagingErr *storage.StagingError
	if errors.As(err, &stagingErr) {
		return webutil.ErrBadGatewayWrap("Failed to stage uploaded document", err)
	}

	var fetchErr *extraction.FetchError
	if errors.As(err, &fetchErr) {
		return webutil.ErrBadGatewayWrap("Failed to fetch staged document", err)
	}

	var parseErr *extraction.ParseError
	if errors.As(err, &parseErr) {
		return webutil.ErrUnprocessableEntityWrap("Could not extract text from the uploaded PDF", err)
	}

	var generationErr *generation.GenerationError
	if errors.As(err, &generationErr) {
		if generationErr.RateLimited {
			return webutil.ErrTooManyRequests("")
		}
		return webutil.ErrBadGatewayWrap("Script generation failed", err)
	}

	var storeValidationErr *datastore.ValidationError
	if errors.As(err, &storeValidationErr) {
		return webutil.ErrBadRequestWrap(storeValidationErr.Error(), err)
	}

	var persistenceErr *datastore.PersistenceError
	if errors.As(err, &persistenceErr) {
		return webutil.ErrServiceUnavailableWrap("Script store unavailable", err)
	}

	return err
}
