// Package piwigo provides an authenticated session client for the Piwigo
// JSON web service (ws.php?format=json). A Client owns one server session:
// it logs in, reports server capabilities, issues web service calls and
// resolves slash delimited album paths, creating missing albums on the way.
//
// A Client performs one round trip at a time. It is safe to share between
// goroutines, but calls are serialized; use one Client per worker for
// parallel work.
package piwigo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/pwgsync/pwgsync/internal/common/httpclient"
	"github.com/pwgsync/pwgsync/internal/common/logtrace"
)

// Web service method names.
const (
	MethodLogin        = "pwg.session.login"
	MethodLogout       = "pwg.session.logout"
	MethodGetStatus    = "pwg.session.getStatus"
	MethodGetAdminList = "pwg.categories.getAdminList"
	MethodAddCategory  = "pwg.categories.Add"
)

const servicePath = "ws.php"

// Session is a snapshot of the client's session state.
type Session struct {
	BaseURL           string   `json:"base_url"`
	Authenticated     bool     `json:"authenticated"`
	Username          string   `json:"username,omitempty"`
	Token             string   `json:"token,omitempty"`
	AcceptedMimeTypes []string `json:"accepted_mime_types"`
	VerifyTLS         bool     `json:"verify_tls"`
}

// Client is a session client for one Piwigo server.
type Client struct {
	logger    zerolog.Logger
	roundTrip http.RoundTripper // custom transport, nil for the default

	callMu sync.Mutex // one round trip in flight

	mu            sync.RWMutex
	cfg           Config
	transport     httpclient.HTTPClientInterface
	authenticated bool
	username      string
	token         string
	accepted      map[string]struct{}
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRoundTripper replaces the HTTP transport, e.g. to route requests
// through a proxy or a test double. TLS settings from Config do not apply
// to a custom transport.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.roundTrip = rt
	}
}

// NewClient validates cfg and returns an unauthenticated client.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		logger: log.Logger.With().Str("component", "piwigo").Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg = cfg
	c.transport = c.newTransport(cfg)
	return c, nil
}

func (c *Client) newTransport(cfg Config) httpclient.HTTPClientInterface {
	return httpclient.NewClient(cfg, httpclient.ClientOptions{Transport: c.roundTrip})
}

// Configure points the client at another server. The session is reset to
// unauthenticated; the previous server session is abandoned without logout.
func (c *Client) Configure(baseURL string, verifyTLS bool) error {
	c.mu.RLock()
	cfg := c.cfg
	c.mu.RUnlock()

	cfg.BaseURL = baseURL
	cfg.VerifyTLS = verifyTLS
	if err := cfg.Validate(); err != nil {
		return err
	}

	transport := c.newTransport(cfg)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	c.transport = transport
	c.clearSessionLocked()
	return nil
}

// Config returns the active configuration.
func (c *Client) Config() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cfg
}

// Session returns a snapshot of the session state.
func (c *Client) Session() Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	mimeTypes := make([]string, 0, len(c.accepted))
	for t := range c.accepted {
		mimeTypes = append(mimeTypes, t)
	}
	sort.Strings(mimeTypes)
	return Session{
		BaseURL:           c.cfg.BaseURL,
		Authenticated:     c.authenticated,
		Username:          c.username,
		Token:             c.token,
		AcceptedMimeTypes: mimeTypes,
		VerifyTLS:         c.cfg.VerifyTLS,
	}
}

// IsAuthenticated reports whether a login succeeded and no logout followed.
func (c *Client) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

func (c *Client) clearSessionLocked() {
	c.authenticated = false
	c.username = ""
	c.token = ""
	c.accepted = nil
}

// requiresSession reports whether method may only be called after login.
func requiresSession(method string) bool {
	return method != MethodLogin && method != MethodGetStatus
}

// Call invokes a web service method with form encoded params and returns the
// result member of the reply. Methods other than login and getStatus fail
// with ErrNotAuthenticated, without a request, until Login succeeds.
func (c *Client) Call(ctx context.Context, method string, params map[string]string) (gjson.Result, error) {
	if requiresSession(method) && !c.IsAuthenticated() {
		return gjson.Result{}, ErrNotAuthenticated.Msg(fmt.Sprintf("%s requires a logged in session", method))
	}
	env, err := c.call(ctx, method, params)
	if err != nil {
		return gjson.Result{}, err
	}
	return env.Result, nil
}

// call performs one round trip and maps the outcome onto the error taxonomy.
func (c *Client) call(ctx context.Context, method string, params map[string]string) (*Envelope, error) {
	ctx, reqID := logtrace.EnsureRequestID(ctx)
	logger := c.logger.With().Str("method", method).Str("request_id", reqID).Logger()

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	c.mu.RLock()
	transport := c.transport
	c.mu.RUnlock()

	c.callMu.Lock()
	start := time.Now()
	resp, err := transport.DoRequest(ctx, httpclient.RequestOptions{
		Method: http.MethodPost,
		Path:   servicePath,
		QueryParams: map[string]string{
			"format": "json",
			"method": method,
		},
		Form: form,
	})
	c.callMu.Unlock()
	elapsed := time.Since(start)

	if err != nil {
		logger.Warn().Err(err).Dur("duration", elapsed).Msg("request failed")
		return nil, ErrTransport.MsgErr(fmt.Sprintf("%s: %v", method, err), err)
	}

	env, perr := ParseEnvelope(resp.Body)
	if perr != nil {
		if httpErr := resp.Err(); httpErr != nil {
			logger.Warn().Int("status", resp.StatusCode).Dur("duration", elapsed).Msg("http error")
			return nil, ErrTransport.MsgErr(fmt.Sprintf("%s: %v", method, httpErr), httpErr).
				SetStatusCode(resp.StatusCode).
				SetRetryable(retryableStatus(resp.StatusCode))
		}
		logger.Warn().Err(perr).Int("status", resp.StatusCode).Dur("duration", elapsed).Msg("malformed reply")
		return nil, perr
	}

	if !env.OK() {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("%s failed", method)
		}
		logger.Debug().Int("code", env.Code).Str("message", msg).Dur("duration", elapsed).Msg("call rejected")
		return nil, ErrAPI.Msg(msg).SetStatusCode(env.Code)
	}

	logger.Debug().Int("status", resp.StatusCode).Dur("duration", elapsed).Msg("call completed")
	return env, nil
}

func retryableStatus(code int) bool {
	return code >= 500 || code == http.StatusRequestTimeout || code == http.StatusTooManyRequests
}
