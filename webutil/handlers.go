package webutil

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
)

// AppHandler represents a handler function that returns an error.
type AppHandler func(w http.ResponseWriter, r *http.Request) error

// MakeHandler adapts an AppHandler to the standard http.HandlerFunc signature.
// It executes the AppHandler and handles any returned error by logging
// appropriately and sending the standardized JSON error body.
func MakeHandler(handler AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := handler(w, r)
		if err == nil {
			// The handler is assumed to have written its own successful response.
			return
		}

		var httpErr *HTTPError // Pointer type for errors.As with our HTTPError constructors
		var publicMessage string
		var statusCode int
		var cause error

		switch {
		case errors.As(err, &httpErr):
			// An HTTPError we explicitly created (e.g. ErrBadRequest, ErrNotFound).
			statusCode = httpErr.Code
			publicMessage = httpErr.Message
			cause = errors.Unwrap(httpErr)

			evt := log.Warn()
			if statusCode >= 500 {
				evt = log.Error()
			}
			if cause != nil && cause.Error() != publicMessage {
				evt = evt.AnErr("cause", cause)
			}
			evt.Int("code", statusCode).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Msg(publicMessage)

		case errors.Is(err, sql.ErrNoRows):
			// sql.ErrNoRows leaking from the datastore layer -> 404 Not Found.
			statusCode = http.StatusNotFound
			publicMessage = msgNotFound
			log.Info().Str("path", r.URL.Path).Str("method", r.Method).Err(err).
				Msg("Resource not found (sql.ErrNoRows)")

		default:
			// Any other error is treated as an internal server error.
			statusCode = http.StatusInternalServerError
			publicMessage = msgInternalServer
			cause = err
			log.Error().Str("path", r.URL.Path).Str("method", r.Method).Err(err).
				Msg("Unhandled internal error")
		}

		// Check if response headers have already been written by the handler
		// (which shouldn't happen if errors are returned correctly).
		if HasResponseWriterSentHeader(w) {
			log.Warn().Str("path", r.URL.Path).Str("method", r.Method).Err(err).
				Msg("Handler returned error after writing response header")
			return
		}

		body := NewErrorBody(statusCode, r.URL.Path, publicMessage)
		if IncludeErrorDetails && cause != nil {
			body.Detail = cause.Error()
		}
		RespondWithJSON(w, statusCode, body)
	}
}
