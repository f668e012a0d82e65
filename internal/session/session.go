// Package session persists the local osrc login record: remote URL,
// access token, username and the scope deploys are attributed to.
package session

import (
	"errors"
	"fmt"
	"strings"
)

type ScopeType string

const (
	ScopeUser         ScopeType = "user"
	ScopeOrganization ScopeType = "organization"
)

var ErrNotAuthenticated = errors.New("session: not authenticated")

// Scope is the identity a deploy is attributed to.
type Scope struct {
	Type ScopeType `json:"type,omitempty"`
	ID   string    `json:"id,omitempty"`
}

// tokenSource records where the in-memory access token came from so that
// tokens supplied by the environment are never written to disk.
type tokenSource int

const (
	tokenNone tokenSource = iota
	tokenStored
	tokenEnv
	tokenKeyring
)

// Session is the record stored in ~/.osrc.
type Session struct {
	Remote      string `json:"remote"`
	AccessToken string `json:"accessToken,omitempty"`
	TokenType   string `json:"tokenType,omitempty"`
	Username    string `json:"username,omitempty"`
	Scope       Scope  `json:"scope"`

	source tokenSource
}

// SetCredentials records the result of a successful sign-in.
func (s *Session) SetCredentials(username, accessToken, tokenType string) {
	s.Username = username
	s.AccessToken = accessToken
	s.TokenType = tokenType
	s.source = tokenStored
}

// SetScope replaces the deploy scope.
func (s *Session) SetScope(t ScopeType, id string) {
	s.Scope = Scope{Type: t, ID: id}
}

// SetRemote points the session at another osrc host.
func (s *Session) SetRemote(remote string) {
	s.Remote = strings.TrimRight(strings.TrimSpace(remote), "/")
}

// TokenFromEnv reports whether the access token in use was supplied by the
// environment override rather than the stored record.
func (s *Session) TokenFromEnv() bool {
	return s.source == tokenEnv
}

// HasScope reports whether both scope type and id are known.
func (s *Session) HasScope() bool {
	return s.Scope.Type != "" && s.Scope.ID != ""
}

// Ready returns ErrNotAuthenticated unless everything a deploy needs is set.
func (s *Session) Ready() error {
	var missing []string
	if s.Remote == "" {
		missing = append(missing, "remote")
	}
	if s.AccessToken == "" {
		missing = append(missing, "accessToken")
	}
	if s.Scope.Type == "" {
		missing = append(missing, "scope.type")
	}
	if s.Scope.ID == "" {
		missing = append(missing, "scope.id")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrNotAuthenticated, strings.Join(missing, ", "))
	}
	return nil
}

// ParseError is returned by Store.Load when the stored record is not valid
// JSON. The accompanying session holds defaults only.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("session: parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
