//go:build unit || e2e

package httptest

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	resdto "coupon-issuer/internal/handler/dto/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jsonContentType = "application/json; charset=utf-8"

func AssertSuccessResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()

	require.Equal(t, expectedStatus, w.Code, "response: %s", w.Body.String())
	if target != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), target), "body: %s", w.Body.String())
	}
}

// AssertErrorResponse checks the generic {"error":{"message"}} envelope.
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedMsg string) {
	t.Helper()

	assert.Equal(t, expectedStatus, w.Code, "response: %s", w.Body.String())

	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), "body: %s", w.Body.String())
	if expectedMsg != "" {
		assert.Contains(t, body.Error.Message, expectedMsg)
	}
}

// AssertSubmitRejected checks an async admission rejection and returns its message.
func AssertSubmitRejected(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedReason string) string {
	t.Helper()

	var body resdto.SubmitResponse
	AssertSuccessResponse(t, w, expectedStatus, &body)
	assert.False(t, body.Accepted)
	assert.Equal(t, expectedReason, body.Reason)
	return body.Message
}

// AssertIssueFailed checks a synchronous issuance failure and returns its message.
func AssertIssueFailed(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedCode string) string {
	t.Helper()

	var body resdto.IssueResponse
	AssertSuccessResponse(t, w, expectedStatus, &body)
	assert.False(t, body.Success)
	assert.Equal(t, expectedCode, body.ErrorCode)
	return body.Message
}

func AssertJSONContentType(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, jsonContentType, w.Header().Get("Content-Type"))
}
