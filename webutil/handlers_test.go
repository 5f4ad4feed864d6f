package webutil

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler AppHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	MakeHandler(handler)(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestMakeHandlerPassesThroughSuccess(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		RespondWithJSON(w, http.StatusOK, map[string]string{"ok": "yes"})
		return nil
	}, "/api/scripts")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":"yes"}`, rec.Body.String())
	assert.Equal(t, ContentTypeJSONUTF8, rec.Header().Get(HeaderContentType))
}

func TestMakeHandlerHTTPError(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		return ErrBadRequest("No file uploaded")
	}, "/api/scripts/generate-from-pdf")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, http.StatusBadRequest, body.StatusCode)
	assert.Equal(t, "No file uploaded", body.Message)
	assert.Equal(t, "/api/scripts/generate-from-pdf", body.Path)

	parsed, err := time.Parse(time.RFC3339, body.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)
}

func TestMakeHandlerSQLNoRowsBecomesNotFound(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		return sql.ErrNoRows
	}, "/api/scripts/abc")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, msgNotFound, decodeBody(t, rec).Message)
}

func TestMakeHandlerUnknownErrorIsGeneric(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		return errors.New("pq: connection refused")
	}, "/api/scripts")

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, msgInternalServer, body.Message)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestMakeHandlerDetailOnlyWhenEnabled(t *testing.T) {
	cause := errors.New("presign: credentials expired")
	handler := func(w http.ResponseWriter, r *http.Request) error {
		return ErrBadGatewayWrap("Failed to stage uploaded document", cause)
	}

	rec := serve(t, handler, "/api/scripts/generate-from-pdf")
	assert.Empty(t, decodeBody(t, rec).Detail)

	IncludeErrorDetails = true
	defer func() { IncludeErrorDetails = false }()

	rec = serve(t, handler, "/api/scripts/generate-from-pdf")
	assert.Equal(t, cause.Error(), decodeBody(t, rec).Detail)
}

func TestMakeHandlerSkipsBodyAfterHeadersSent(t *testing.T) {
	rec := serve(t, func(w http.ResponseWriter, r *http.Request) error {
		RespondWithJSON(w, http.StatusOK, map[string]string{"partial": "yes"})
		return errors.New("too late")
	}, "/api/scripts")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"partial":"yes"}`, rec.Body.String())
}
