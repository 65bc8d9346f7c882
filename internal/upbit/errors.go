package upbit

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ConfigurationError reports that a private endpoint cannot be called with the
// current configuration. It is never retried.
type ConfigurationError struct {
	Reason  string
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// Configuration error reasons.
const (
	ReasonTradingDisabled    = "trading_disabled"
	ReasonMissingCredentials = "missing_credentials"
)

// TransportError is the single failure type surfaced by Client.Do for anything
// that went wrong between sending the request and receiving a 2xx response.
// Status is 0 when no response was ever received.
type TransportError struct {
	Status  int
	Name    string
	Message string
	Body    []byte
	Err     error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("request failed: %s", e.Message)
	}
	if e.Name != "" {
		return fmt.Sprintf("upbit returned %d (%s): %s", e.Status, e.Name, e.Message)
	}
	return fmt.Sprintf("upbit returned %d: %s", e.Status, e.Message)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// SchemaError reports a successful response whose payload did not have the
// declared shape.
type SchemaError struct {
	Path    string
	Message string
	Body    []byte
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unexpected response: %s", e.Message)
	}
	return fmt.Sprintf("unexpected response from %s: %s", e.Path, e.Message)
}

// newStatusError builds a TransportError from a non-2xx response, pulling the
// name and message out of the Upbit error envelope when present.
func newStatusError(status int, body []byte) *TransportError {
	te := &TransportError{
		Status:  status,
		Message: fmt.Sprintf("server returned %d", status),
		Body:    body,
	}
	if !gjson.ValidBytes(body) {
		return te
	}

	if msg := gjson.GetBytes(body, "error.message"); msg.Type == gjson.String && msg.Str != "" {
		te.Message = msg.Str
	}
	// name is a string for most errors and a number for a few legacy ones
	if name := gjson.GetBytes(body, "error.name"); name.Exists() {
		te.Name = name.String()
	}
	return te
}
