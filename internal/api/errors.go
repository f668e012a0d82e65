package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized is matched by every *AuthError.
var ErrUnauthorized = errors.New("api: unauthorized")

// AuthError reports a rejected sign-in or an expired/invalid session. The
// run must stop and the user must log in again.
type AuthError struct {
	Op     string
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func (e *AuthError) Unwrap() error {
	return ErrUnauthorized
}

// RemoteError is any other non-200 response; Message is the server's msg.
type RemoteError struct {
	Op      string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
}

// errorMessage extracts a human readable message from an error body.
func errorMessage(status int, body []byte) string {
	var payload struct {
		Msg     string `json:"msg"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		for _, m := range []string{payload.Msg, payload.Message, payload.Error} {
			if m != "" {
				return m
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		return text
	}
	return http.StatusText(status)
}
