package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"create-stencil/internal/domain"
)

const (
	EnvSelfHostedURL    = "stencil_self_hosted_url"
	EnvNpmSelfHostedURL = "npm_config_stencil_self_hosted_url"
	EnvHTTPSProxy       = "https_proxy"

	DefaultHost = "https://github.com/"

	// MaxRedirects bounds redirect chains. Archive hosts usually redirect once
	// to a CDN.
	MaxRedirects = 20

	DefaultTimeout = 5 * time.Minute
)

// requestOptions is built fresh for every call and not shared.
type requestOptions struct {
	url          *url.URL
	method       string
	proxy        string
	proxyURL     *url.URL
	maxRedirects int
}

// HTTPRetriever downloads starter archives, optionally through the proxy
// named by https_proxy.
type HTTPRetriever struct {
	logger    domain.Logger
	timeout   time.Duration
	lookupEnv func(string) (string, bool)
	transport *http.Transport
}

// Option configures an HTTPRetriever.
type Option func(*HTTPRetriever)

// WithTimeout bounds each request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *HTTPRetriever) { r.timeout = d }
}

// WithLookupEnv replaces the environment lookup, mainly for tests.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *HTTPRetriever) { r.lookupEnv = fn }
}

// NewHTTPRetriever creates a retriever that reads its host overrides and
// proxy from the environment on every call.
func NewHTTPRetriever(logger domain.Logger, opts ...Option) *HTTPRetriever {
	r := &HTTPRetriever{
		logger:    logger,
		timeout:   DefaultTimeout,
		lookupEnv: os.LookupEnv,
		transport: http.DefaultTransport.(*http.Transport),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Host returns the code-hosting origin archives are fetched from. A variable
// that is set wins even when empty; only unset variables fall through.
func (r *HTTPRetriever) Host() string {
	if v, ok := r.lookupEnv(EnvSelfHostedURL); ok {
		return v
	}
	if v, ok := r.lookupEnv(EnvNpmSelfHostedURL); ok {
		return v
	}
	return DefaultHost
}

// StarterURL returns the archive URL for a starter: the repo-relative path
// "<repo>/archive/main.zip" resolved against Host.
func (r *HTTPRetriever) StarterURL(s domain.Starter) (string, error) {
	base, err := url.Parse(r.Host())
	if err != nil {
		return "", fmt.Errorf("parse host %q: %w", r.Host(), err)
	}
	ref, err := url.Parse(s.Repo + "/archive/main.zip")
	if err != nil {
		return "", fmt.Errorf("parse repo %q: %w", s.Repo, err)
	}
	return base.ResolveReference(ref).String(), nil
}

// Retrieve downloads the archive for target and returns the whole body.
// Transport failures are reported as *domain.RetrievalError. Non-2xx
// statuses are too, deliberately: an error page is never handed to the
// extractor as if it were an archive.
func (r *HTTPRetriever) Retrieve(ctx context.Context, target domain.Target) ([]byte, error) {
	opts, err := r.requestOptions(target)
	if err != nil {
		return nil, &domain.RetrievalError{URL: target.String(), Err: err}
	}

	r.logger.Info("downloading starter", "url", opts.url.String(), "proxy", opts.proxy != "")

	resp, err := r.do(ctx, opts)
	if err != nil {
		return nil, &domain.RetrievalError{URL: opts.url.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.RetrievalError{URL: opts.url.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.RetrievalError{URL: opts.url.String(), Err: fmt.Errorf("read body: %w", err)}
	}

	r.logger.Debug("download complete", "url", opts.url.String(), "bytes", len(body))
	return body, nil
}

// Exists issues a HEAD request and reports whether the status is exactly
// 200. Any other status or failure yields false.
func (r *HTTPRetriever) Exists(ctx context.Context, target domain.Target) bool {
	opts, err := r.requestOptions(target)
	if err != nil {
		r.logger.Debug("existence check skipped", "target", target.String(), "err", err)
		return false
	}
	opts.method = http.MethodHead

	resp, err := r.do(ctx, opts)
	if err != nil {
		r.logger.Debug("existence check failed", "url", opts.url.String(), "err", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// requestOptions normalizes target into a URL and per-call options.
func (r *HTTPRetriever) requestOptions(target domain.Target) (requestOptions, error) {
	raw := target.URL()
	if s, ok := target.Starter(); ok {
		var err error
		if raw, err = r.StarterURL(s); err != nil {
			return requestOptions{}, err
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return requestOptions{}, fmt.Errorf("parse url %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return requestOptions{}, fmt.Errorf("invalid url %q", raw)
	}

	opts := requestOptions{
		url:          u,
		method:       http.MethodGet,
		maxRedirects: MaxRedirects,
	}
	if v, ok := r.lookupEnv(EnvHTTPSProxy); ok && v != "" {
		pu, err := parseProxy(v)
		if err != nil {
			return requestOptions{}, err
		}
		opts.proxy = v
		opts.proxyURL = pu
	}
	return opts, nil
}

// parseProxy accepts a full proxy URL or a bare "host:port", which is taken
// as an http proxy.
func parseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil || !knownProxyScheme(u.Scheme) {
		u, err = url.Parse("http://" + raw)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q", raw)
	}
	return u, nil
}

func knownProxyScheme(scheme string) bool {
	switch strings.ToLower(scheme) {
	case "http", "https", "socks5", "socks5h":
		return true
	}
	return false
}

func (r *HTTPRetriever) do(ctx context.Context, opts requestOptions) (*http.Response, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		resp, err := r.send(ctx, opts)
		if err != nil {
			cancel()
			return nil, err
		}
		resp.Body = &cancelBody{ReadCloser: resp.Body, cancel: cancel}
		return resp, nil
	}
	return r.send(ctx, opts)
}

func (r *HTTPRetriever) send(ctx context.Context, opts requestOptions) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, opts.method, opts.url.String(), nil)
	if err != nil {
		return nil, err
	}
	return r.client(opts).Do(req)
}

// client builds an http.Client for one call so that proxy settings read at
// call time take effect immediately. When a proxy is set every request goes
// through it, loopback hosts included.
func (r *HTTPRetriever) client(opts requestOptions) *http.Client {
	tr := r.transport.Clone()
	tr.Proxy = nil
	if opts.proxyURL != nil {
		tr.Proxy = http.ProxyURL(opts.proxyURL)
	}
	return &http.Client{
		Transport: tr,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= opts.maxRedirects {
				return errTooManyRedirects
			}
			return nil
		},
	}
}

var errTooManyRedirects = errors.New("stopped after too many redirects")

// cancelBody releases the request context once the body is closed.
type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
