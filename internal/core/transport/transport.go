// Package transport sends requests to the REST backend with the session's
// bearer token and replays a request once after a token refresh when the
// server answers 401.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"driver-sync/internal/core/apierror"
	"driver-sync/internal/core/logger"
	"driver-sync/internal/core/metrics"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// TokenSource is the session side of the transport.
type TokenSource interface {
	// Token returns the current bearer token; ok is false when logged out.
	Token(ctx context.Context) (token string, ok bool, err error)
	// StoreToken persists a refreshed token.
	StoreToken(ctx context.Context, token string) error
}

// Refresher obtains a new token. An empty token with a nil error means
// "no refresh possible" and the original 401 is surfaced.
type Refresher interface {
	RefreshToken(ctx context.Context) (string, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) (string, error)

// RefreshToken calls f.
func (f RefresherFunc) RefreshToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// Request is a logical call against the API. Bodies are byte slices so a
// request can be rebuilt for the single retry.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	// Unauthenticated sends no Authorization header (login).
	Unauthenticated bool
	// SkipRefresh disables the 401 refresh-and-retry (the refresh call itself).
	SkipRefresh bool
}

// Response is the raw outcome of a call.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Sender is what feature adapters depend on; *Transport implements it.
type Sender interface {
	Send(ctx context.Context, req Request) (*Response, error)
}

// Doer is the subset of *http.Client used by the transport.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport is the authenticated client.
type Transport struct {
	baseURL        *url.URL
	client         Doer
	tokens         TokenSource
	refresher      Refresher
	onUnauthorized func(ctx context.Context)
	flight         singleflight.Group
	log            *zap.Logger
}

// Option configures a Transport.
type Option func(*Transport)

// WithRefresher sets the refresh hook. Without one a 401 is returned as-is.
func WithRefresher(r Refresher) Option {
	return func(t *Transport) { t.refresher = r }
}

// WithUnauthorizedHandler runs fn when an authenticated call still ends in 401.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(t *Transport) { t.onUnauthorized = fn }
}

// New creates a Transport rooted at baseURL.
func New(baseURL string, client Doer, tokens TokenSource, opts ...Option) (*Transport, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	t := &Transport{
		baseURL: u,
		client:  client,
		tokens:  tokens,
		log:     logger.Named("transport"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// SetRefresher installs the refresh hook after construction. The refresh
// client itself needs the transport, so wiring happens in two steps.
func (t *Transport) SetRefresher(r Refresher) {
	t.refresher = r
}

// Send performs req. Network failures come back as connectivity errors; any
// HTTP status, including a final 401, comes back as a Response.
func (t *Transport) Send(ctx context.Context, req Request) (*Response, error) {
	token := ""
	if !req.Unauthenticated {
		tok, ok, err := t.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		if ok {
			token = tok
		}
	}

	resp, err := t.do(ctx, req, token)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || req.Unauthenticated || req.SkipRefresh {
		return resp, nil
	}

	fresh, err := t.refresh(ctx, token)
	if err != nil {
		return nil, err
	}
	if fresh == "" {
		t.unauthorized(ctx)
		return resp, nil
	}

	metrics.Retries.Inc()
	t.log.Debug("Retrying request with refreshed token", zap.String("path", req.Path))
	retried, err := t.do(ctx, req, fresh)
	if err != nil {
		return nil, err
	}
	if retried.StatusCode == http.StatusUnauthorized {
		t.unauthorized(ctx)
	}
	return retried, nil
}

// refresh runs at most one refresh at a time; concurrent callers share its
// result. If the stored token already moved past stale, it is reused.
func (t *Transport) refresh(ctx context.Context, stale string) (string, error) {
	if t.refresher == nil {
		metrics.Refreshes.WithLabelValues("empty").Inc()
		return "", nil
	}

	v, err, _ := t.flight.Do("refresh", func() (interface{}, error) {
		current, ok, err := t.tokens.Token(ctx)
		if err != nil {
			return "", err
		}
		if ok && current != "" && current != stale {
			metrics.Refreshes.WithLabelValues("reused").Inc()
			return current, nil
		}

		fresh, err := t.refresher.RefreshToken(ctx)
		if err != nil {
			metrics.Refreshes.WithLabelValues("error").Inc()
			return "", err
		}
		if fresh == "" {
			metrics.Refreshes.WithLabelValues("empty").Inc()
			return "", nil
		}
		if err := t.tokens.StoreToken(ctx, fresh); err != nil {
			return "", err
		}
		metrics.Refreshes.WithLabelValues("refreshed").Inc()
		return fresh, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (t *Transport) unauthorized(ctx context.Context) {
	if t.onUnauthorized != nil {
		t.onUnauthorized(ctx)
	}
}

// do builds and issues one HTTP request.
func (t *Transport) do(ctx context.Context, req Request, token string) (*Response, error) {
	httpReq, err := t.build(ctx, req, token)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, apierror.Connectivity(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierror.Connectivity(err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

func (t *Transport) build(ctx context.Context, req Request, token string) (*http.Request, error) {
	ref, err := url.Parse(strings.TrimPrefix(req.Path, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid request path %q: %w", req.Path, err)
	}
	target := t.baseURL.ResolveReference(ref)
	if len(req.Query) > 0 {
		target.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	return httpReq, nil
}
