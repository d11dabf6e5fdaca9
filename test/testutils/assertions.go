// Package testutils provides custom assertions and testing utilities
package testutils

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Envelope mirrors the API response envelope
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
	Details string          `json:"details,omitempty"`
	Message string          `json:"message,omitempty"`
}

// HTTPAssertions provides HTTP-specific assertion methods
type HTTPAssertions struct {
	t *testing.T
}

// NewHTTPAssertions creates a new HTTP assertions helper
func NewHTTPAssertions(t *testing.T) *HTTPAssertions {
	return &HTTPAssertions{t: t}
}

// StatusCode asserts the HTTP status code
func (ha *HTTPAssertions) StatusCode(rec *httptest.ResponseRecorder, expectedCode int, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")
	assert.Equal(ha.t, expectedCode, rec.Code, msgAndArgs...)
}

// JSONResponse asserts that the response is valid JSON and unmarshals it
func (ha *HTTPAssertions) JSONResponse(rec *httptest.ResponseRecorder, target interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")

	contentType := rec.Header().Get("Content-Type")
	assert.True(ha.t, strings.Contains(contentType, "application/json"),
		"Response should have JSON content type, got: %s", contentType)

	require.NoError(ha.t, json.Unmarshal(rec.Body.Bytes(), target), "Response should be valid JSON: %s", rec.Body.String())
}

// Success asserts a success envelope and decodes its data into target.
// target may be nil.
func (ha *HTTPAssertions) Success(rec *httptest.ResponseRecorder, expectedCode int, target interface{}) Envelope {
	ha.StatusCode(rec, expectedCode, rec.Body.String())

	var env Envelope
	ha.JSONResponse(rec, &env)
	assert.True(ha.t, env.Success, "Response should be successful: %s", env.Error)
	assert.Empty(ha.t, env.Error)

	if target != nil {
		require.NotEmpty(ha.t, env.Data, "Response should carry data")
		require.NoError(ha.t, json.Unmarshal(env.Data, target))
	}
	return env
}

// ErrorResponse asserts an error envelope with the given status and code
func (ha *HTTPAssertions) ErrorResponse(rec *httptest.ResponseRecorder, expectedCode int, expectedErrorCode string) Envelope {
	ha.StatusCode(rec, expectedCode, rec.Body.String())

	var env Envelope
	ha.JSONResponse(rec, &env)
	assert.False(ha.t, env.Success)
	assert.NotEmpty(ha.t, env.Error, "Response should contain error field")
	assert.Equal(ha.t, expectedErrorCode, env.Code)
	assert.Empty(ha.t, env.Data)
	return env
}

// Header asserts that a header exists with expected value
func (ha *HTTPAssertions) Header(rec *httptest.ResponseRecorder, headerName, expectedValue string, msgAndArgs ...interface{}) {
	require.NotNil(ha.t, rec, "Response should not be nil")
	assert.Equal(ha.t, expectedValue, rec.Header().Get(headerName), msgAndArgs...)
}

// SecurityHeaders asserts that security headers are present
func (ha *HTTPAssertions) SecurityHeaders(rec *httptest.ResponseRecorder) {
	require.NotNil(ha.t, rec, "Response should not be nil")

	for _, header := range []string{"X-Content-Type-Options", "X-Frame-Options", "Referrer-Policy"} {
		assert.NotEmpty(ha.t, rec.Header().Get(header), "Security header %s should be present", header)
	}
}
