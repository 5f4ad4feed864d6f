package webutil

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrorBody is the stable JSON shape every error response carries.
// Detail is populated only when IncludeErrorDetails is enabled; production
// deployments keep it off so provider error bodies never reach clients.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Timestamp  string `json:"timestamp"`
	Path       string `json:"path"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
}

// IncludeErrorDetails controls whether error responses carry the underlying
// cause chain. Set once at startup from the environment; never enable in
// production.
var IncludeErrorDetails = false

// NewErrorBody builds the standard error payload for a request path.
func NewErrorBody(statusCode int, path, message string) ErrorBody {
	return ErrorBody{
		StatusCode: statusCode,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Path:       path,
		Message:    message,
	}
}

// RespondWithError writes the standard error body for the given request.
func RespondWithError(w http.ResponseWriter, r *http.Request, code int, message string) {
	RespondWithJSON(w, code, NewErrorBody(code, r.URL.Path, message))
}

func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"statusCode":500,"message":"Internal Server Error"}`))
		return
	}

	w.Header().Set(HeaderContentType, ContentTypeJSONUTF8)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func HasResponseWriterSentHeader(w http.ResponseWriter) bool {
	return w.Header().Get(HeaderContentType) != ""
}
