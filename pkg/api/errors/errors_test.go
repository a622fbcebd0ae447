package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jlcstudio/site-backend/pkg/models"
)

func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return c, rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// captureLog redirects the standard logger to a buffer for the duration of fn
// and returns everything that was logged.
func captureLog(fn func()) string {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)
	fn()
	return buf.String()
}

func TestValidationError(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/referrals/signup")
	err := ValidationError(c, errors.New("field 'email' is required"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := parseBody(t, rec)
	assert.Equal(t, "validation_error", resp.Error)
	assert.NotEmpty(t, resp.Message)
}

func TestValidationError_NoInternalDetails(t *testing.T) {
	internalMsg := "spreadsheet store unavailable: open ./data/referrals.xlsx"
	c, rec := newContext(http.MethodPost, "/api/v1/referrals/signup")
	_ = ValidationError(c, errors.New(internalMsg))

	assert.NotContains(t, rec.Body.String(), internalMsg)
	assert.NotContains(t, rec.Body.String(), "referrals.xlsx")
}

func TestValidationError_LogsInternalError(t *testing.T) {
	internalMsg := "field validation failed: email"
	logged := captureLog(func() {
		c, _ := newContext(http.MethodPost, "/api/v1/referrals/signup")
		_ = ValidationError(c, errors.New(internalMsg))
	})

	assert.Contains(t, logged, "[VALIDATION ERROR]")
	assert.Contains(t, logged, internalMsg)
	assert.Contains(t, logged, "/api/v1/referrals/signup")
}

func TestInternalError(t *testing.T) {
	internalMsg := "spreadsheet store unavailable: disk full"
	c, rec := newContext(http.MethodPost, "/api/v1/contact")
	err := InternalError(c, errors.New(internalMsg))
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := parseBody(t, rec)
	assert.Equal(t, "internal_error", resp.Error)
	assert.NotContains(t, rec.Body.String(), internalMsg)
}

func TestUnauthorizedError(t *testing.T) {
	c, rec := newContext(http.MethodPost, "/api/v1/auth/login")
	err := UnauthorizedError(c, "invalid credentials")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := parseBody(t, rec)
	assert.Equal(t, "unauthorized", resp.Error)
	// The reason stays in the logs, not the response.
	assert.NotContains(t, rec.Body.String(), "invalid credentials")
}
