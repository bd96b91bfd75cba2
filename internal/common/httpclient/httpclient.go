// Package httpclient provides the HTTP transport used to talk to form based
// web APIs. Every request is built from scratch so no URL, header or body
// state carries over between calls; the only state kept across requests is
// the cookie jar holding the server session.
package httpclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/pwgsync/pwgsync/internal/common/logtrace"
)

// MaxResponseSize bounds the number of bytes read from a response body.
const MaxResponseSize = 32 << 20

// Configurator provides the server location and connection policy.
type Configurator interface {
	GetServerURL() string
	GetVerifyTLS() bool
	GetTimeout() time.Duration
	GetUserAgent() string
}

// HTTPError describes a response with an error status code.
type HTTPError struct {
	StatusCode int    // HTTP status code of the error
	Message    string // status text or a prefix of the response body
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Err returns an *HTTPError when the status code is 400 or above.
func (r *Response) Err() error {
	if r.StatusCode < 400 {
		return nil
	}
	msg := strings.TrimSpace(string(r.Body))
	if msg == "" || len(msg) > 200 {
		msg = http.StatusText(r.StatusCode)
	}
	return &HTTPError{StatusCode: r.StatusCode, Message: msg}
}

// RequestOptions contains options for making HTTP requests.
type RequestOptions struct {
	Method      string            // HTTP method, POST when empty
	Path        string            // path relative to the server URL
	QueryParams map[string]string // optional query parameters
	Form        url.Values        // optional form encoded body
}

// HTTPClient owns the connection resource for one server session.
type HTTPClient struct {
	config     Configurator
	httpClient *http.Client
	mu         sync.Mutex
}

// ClientOptions contains options for configuring the HTTP client.
type ClientOptions struct {
	// Transport replaces the default transport. TLS settings from the
	// Configurator are not applied to a custom transport.
	Transport http.RoundTripper
}

// NewClient creates a new HTTP client using the provided configuration.
func NewClient(config Configurator, opts ...ClientOptions) *HTTPClient {
	clientOpts := ClientOptions{}
	if len(opts) > 0 {
		clientOpts = opts[0]
	}

	transport := clientOpts.Transport
	if transport == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if !config.GetVerifyTLS() {
			t.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}
		transport = t
	}

	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		config: config,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   config.GetTimeout(),
			Jar:       jar,
		},
	}
}

// ResetSession drops every cookie collected so far.
func (c *HTTPClient) ResetSession() {
	jar, _ := cookiejar.New(nil)
	c.mu.Lock()
	hc := *c.httpClient
	hc.Jar = jar
	c.httpClient = &hc
	c.mu.Unlock()
}

// BuildURL resolves opts.Path and opts.QueryParams against the server URL.
func (c *HTTPClient) BuildURL(opts RequestOptions) (string, error) {
	u, err := url.Parse(c.config.GetServerURL())
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %v", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid server URL: %q", c.config.GetServerURL())
	}
	u.Path = path.Join("/", u.Path, opts.Path)

	q := u.Query()
	for k, v := range opts.QueryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// DoRequest performs one round trip and reads the whole response body.
// A non-nil error means no usable response was received: the request could
// not be built, the connection failed, timed out, or the body could not be read.
// Error status codes are reported through Response.Err.
func (c *HTTPClient) DoRequest(ctx context.Context, opts RequestOptions) (*Response, error) {
	target, err := c.BuildURL(opts)
	if err != nil {
		return nil, err
	}

	method := opts.Method
	if method == "" {
		method = http.MethodPost
	}

	var body io.Reader
	if opts.Form != nil {
		body = strings.NewReader(opts.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	if opts.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("Accept", "application/json")
	if ua := c.config.GetUserAgent(); ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	if id := logtrace.RequestIdFromContext(ctx); id != "" {
		req.Header.Set(logtrace.RequestIDHeader, id)
	}

	c.mu.Lock()
	hc := c.httpClient
	c.mu.Unlock()

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}
