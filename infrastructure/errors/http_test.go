package errors_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	infraerrors "github.com/jonesrussell/yophone-bot/infrastructure/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(code int, body string) *http.Response {
	return &http.Response{
		StatusCode: code,
		Status:     fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestParseHTTPError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		code    int
		body    string
		wantMsg string
	}{
		{name: "error string", code: http.StatusUnauthorized, body: `{"error":"invalid api key"}`, wantMsg: "invalid api key"},
		{name: "error object", code: http.StatusBadRequest, body: `{"error":{"message":"chat not found"}}`, wantMsg: "chat not found"},
		{name: "message field", code: http.StatusForbidden, body: `{"message":"bot blocked"}`, wantMsg: "bot blocked"},
		{name: "description field", code: http.StatusConflict, body: `{"description":"webhook active"}`, wantMsg: "webhook active"},
		{name: "plain text", code: http.StatusBadGateway, body: "upstream down\n", wantMsg: "upstream down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := infraerrors.ParseHTTPError(response(tt.code, tt.body))
			require.Error(t, err)

			var httpErr *infraerrors.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.code, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
		})
	}
}

func TestParseHTTPError_SuccessIsNil(t *testing.T) {
	t.Parallel()

	assert.NoError(t, infraerrors.ParseHTTPError(response(http.StatusOK, `{"data":[]}`)))
}

func TestStatusCode_ThroughWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("sendMessage: %w", infraerrors.ParseHTTPError(response(http.StatusTooManyRequests, "")))

	code, ok := infraerrors.StatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "sendMessage: HTTP error: 429 Too Many Requests", err.Error())

	_, ok = infraerrors.StatusCode(io.EOF)
	assert.False(t, ok)
}
