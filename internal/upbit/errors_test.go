package upbit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewStatusError(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantName    string
		wantMessage string
	}{
		{
			name:        "envelope",
			status:      401,
			body:        `{"error":{"name":"invalid_access_key","message":"unknown key"}}`,
			wantName:    "invalid_access_key",
			wantMessage: "unknown key",
		},
		{
			name:        "numeric name",
			status:      400,
			body:        `{"error":{"name":400,"message":"bad request"}}`,
			wantName:    "400",
			wantMessage: "bad request",
		},
		{
			name:        "no envelope",
			status:      502,
			body:        `{"detail":"gateway"}`,
			wantMessage: "server returned 502",
		},
		{
			name:        "not json",
			status:      503,
			body:        `<html>unavailable</html>`,
			wantMessage: "server returned 503",
		},
		{
			name:        "empty body",
			status:      500,
			wantMessage: "server returned 500",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			te := newStatusError(tt.status, []byte(tt.body))

			assert.Equal(t, tt.status, te.Status)
			assert.Equal(t, tt.wantName, te.Name)
			assert.Equal(t, tt.wantMessage, te.Message)
			assert.Equal(t, tt.body, string(te.Body))
		})
	}
}

func TestTransportError_Error(t *testing.T) {
	assert.Equal(t, "request failed: dial tcp: refused", (&TransportError{Message: "dial tcp: refused"}).Error())
	assert.Equal(t, "upbit returned 429: slow down", (&TransportError{Status: 429, Message: "slow down"}).Error())
	assert.Equal(t, "upbit returned 400 (invalid_query_payload): bad", (&TransportError{Status: 400, Name: "invalid_query_payload", Message: "bad"}).Error())
}
