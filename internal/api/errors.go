package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error is a failed request: a network failure, a non-2xx response, or a
// malformed body. Status is 0 when no response was received.
type Error struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// NotFound reports whether the server answered 404.
func (e *Error) NotFound() bool { return e.Status == http.StatusNotFound }

// Conflict reports whether the server answered 409.
func (e *Error) Conflict() bool { return e.Status == http.StatusConflict }

// errorBody is the failure envelope the backend returns.
type errorBody struct {
	Error string `json:"error"`
}

// newError builds an Error from a non-2xx response, preferring the
// server's own message.
func newError(method, path string, status int, body []byte) *Error {
	e := &Error{Method: method, Path: path, Status: status}

	var eb errorBody
	if json.Unmarshal(body, &eb) == nil && strings.TrimSpace(eb.Error) != "" {
		e.Message = eb.Error
		return e
	}

	if text := http.StatusText(status); text != "" {
		e.Message = "request failed: " + strings.ToLower(text)
	} else {
		e.Message = "request failed"
	}
	return e
}

// ValidationError is returned before any request is sent when the input is
// rejected locally. Fields maps JSON field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, " ")
}
