// Package api is the typed client for the osrc HTTP API. Every call is made
// against the session's remote and, when authenticated, carries the
// session's access token as a bearer token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"osrc/internal/logger"
	"osrc/internal/session"
)

const DefaultSignInPath = "/api/users/signin"

var alog = logger.PackageLogger("api", "🌐 API")

// Client issues one HTTP request per logical operation. It holds the session
// by reference, so credentials and scope set after construction are used by
// later calls.
type Client struct {
	sess       *session.Session
	httpClient *http.Client
	signInPath string
	now        func() time.Time
}

// Option is a functional option for configuring Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSignInPath overrides the sign-in endpoint path.
func WithSignInPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.signInPath = path
		}
	}
}

// New creates a client bound to sess. No timeout is set: a slow request
// blocks until the transport resolves or ctx is cancelled.
func New(sess *session.Session, opts ...Option) *Client {
	c := &Client{
		sess:       sess,
		httpClient: &http.Client{},
		signInPath: DefaultSignInPath,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        io.Reader
	contentType string
	auth        bool
}

// send performs r and returns the body of a 200 response.
func (c *Client) send(ctx context.Context, r request) ([]byte, error) {
	if r.auth {
		if err := c.checkToken(r.op); err != nil {
			return nil, err
		}
	}

	u := strings.TrimRight(c.sess.Remote, "/") + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, r.body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", r.op, err)
	}
	// streamed bodies that know their length are not sent chunked
	if sized, ok := r.body.(interface{ Size() int64 }); ok && req.ContentLength == 0 {
		req.ContentLength = sized.Size()
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.auth {
		req.Header.Set("Authorization", "Bearer "+c.sess.AccessToken)
	}

	alog.Debug("%s %s", r.method, u)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request failed: %w", r.op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", r.op, err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusUnauthorized:
		return nil, &AuthError{Op: r.op, Reason: "session expired or invalid"}
	default:
		return nil, &RemoteError{Op: r.op, Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}
	}
}

func (c *Client) sendJSON(ctx context.Context, r request, out any) error {
	body, err := c.send(ctx, r)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: parse response: %w", r.op, err)
	}
	return nil
}

// checkToken refuses to send a request that is bound to be rejected: no
// token at all, or a JWT whose exp claim has passed. Opaque tokens are left
// for the server to judge.
func (c *Client) checkToken(op string) error {
	token := c.sess.AccessToken
	if token == "" {
		return &AuthError{Op: op, Reason: "no access token"}
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(c.now()) {
		return &AuthError{Op: op, Reason: "access token expired at " + claims.ExpiresAt.Time.Format(time.RFC3339)}
	}
	return nil
}

func (c *Client) scopeQuery() url.Values {
	return url.Values{
		"type":    {string(c.sess.Scope.Type)},
		"scopeId": {c.sess.Scope.ID},
	}
}

// SignIn exchanges username and password for an access token.
func (c *Client) SignIn(ctx context.Context, username, password string) (*SignInResult, error) {
	payload, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}

	var result SignInResult
	err = c.sendJSON(ctx, request{
		op:          "sign in",
		method:      http.MethodPost,
		path:        c.signInPath,
		body:        bytes.NewReader(payload),
		contentType: "application/json",
	}, &result)
	var rerr *RemoteError
	switch {
	case errors.As(err, &rerr):
		return nil, &AuthError{Op: "sign in", Reason: "login failed: " + rerr.Message}
	case errors.Is(err, ErrUnauthorized):
		return nil, &AuthError{Op: "sign in", Reason: "login failed: invalid username or password"}
	case err != nil:
		return nil, err
	}
	if result.AccessToken == "" {
		return nil, &AuthError{Op: "sign in", Reason: "login failed: empty access token"}
	}
	return &result, nil
}

// CurrentUser returns the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.sendJSON(ctx, request{op: "get user", method: http.MethodGet, path: "/api/users", auth: true}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// OrganizationRole returns the caller's role in the named organization.
func (c *Client) OrganizationRole(ctx context.Context, name string) (*OrgRole, error) {
	var role OrgRole
	err := c.sendJSON(ctx, request{
		op:     "get organization role",
		method: http.MethodGet,
		path:   "/api/organizations/role",
		query:  url.Values{"name": {name}},
		auth:   true,
	}, &role)
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// OrganizationCount returns how many organizations the caller belongs to.
// The endpoint answers with a bare number.
func (c *Client) OrganizationCount(ctx context.Context) (int, error) {
	body, err := c.send(ctx, request{op: "count organizations", method: http.MethodGet, path: "/api/organizations/count", auth: true})
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(body)))
	if err != nil {
		return 0, fmt.Errorf("count organizations: unexpected body %q", body)
	}
	return n, nil
}

// CheckProject looks up an existing project by name within the session scope.
func (c *Client) CheckProject(ctx context.Context, name string) (*Project, error) {
	q := c.scopeQuery()
	q.Set("name", name)
	var p Project
	if err := c.sendJSON(ctx, request{op: "check project", method: http.MethodGet, path: "/api/projects/check", query: q, auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreatePageProject creates a project named name for bundleStr.
func (c *Client) CreatePageProject(ctx context.Context, name, bundleStr string) (*Project, error) {
	q := c.scopeQuery()
	q.Set("name", name)
	q.Set("bundleStr", bundleStr)
	var p Project
	if err := c.sendJSON(ctx, request{op: "create project", method: http.MethodPost, path: "/api/projects/page-add", query: q, contentType: "application/json", auth: true}, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// LinkPageBundle relates an existing project to bundleStr.
func (c *Client) LinkPageBundle(ctx context.Context, projectID, bundleStr string) (*Project, error) {
	q := c.scopeQuery()
	q.Set("projectId", projectID)
	q.Set("bundleStr", bundleStr)
	body, err := c.send(ctx, request{op: "link project", method: http.MethodPost, path: "/api/projects/page-bundle", query: q, contentType: "application/json", auth: true})
	if err != nil {
		return nil, err
	}
	p := &Project{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, p); err != nil {
			alog.Debug("link project: ignoring non-object body %q", body)
		}
	}
	return p, nil
}

// PagesDeployInfo reports whether a project is already linked to bundleStr.
func (c *Client) PagesDeployInfo(ctx context.Context, bundleStr string) (*LinkInfo, error) {
	q := c.scopeQuery()
	q.Set("bundleStr", bundleStr)
	var info LinkInfo
	if err := c.sendJSON(ctx, request{op: "check pages deploy", method: http.MethodGet, path: "/api/projects/pages-deploy", query: q, auth: true}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// CheckPages posts the app info ahead of an upload.
func (c *Client) CheckPages(ctx context.Context, appInfo any) (map[string]any, error) {
	payload, err := json.Marshal(appInfo)
	if err != nil {
		return nil, err
	}
	body, err := c.send(ctx, request{
		op:          "check pages",
		method:      http.MethodPost,
		path:        "/api/pages/check",
		query:       c.scopeQuery(),
		body:        bytes.NewReader(payload),
		contentType: "application/json",
		auth:        true,
	})
	if err != nil {
		return nil, err
	}
	result := map[string]any{}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			result["raw"] = string(body)
		}
	}
	return result, nil
}

// UploadBundle streams a multipart payload for projectID.
func (c *Client) UploadBundle(ctx context.Context, projectID string, body io.Reader, contentType string) (*UploadResult, error) {
	q := c.scopeQuery()
	q.Set("projectId", projectID)
	var result UploadResult
	err := c.sendJSON(ctx, request{
		op:          "upload bundle",
		method:      http.MethodPost,
		path:        "/api/pages/upload",
		query:       q,
		body:        body,
		contentType: contentType,
		auth:        true,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
