package piwigo

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pwgsync/pwgsync/pkg/piwigo/piwigotest"
)

const (
	testUser     = "admin"
	testPassword = "s3cret"
)

// redirectTransport sends every request to target while the client keeps
// using its configured base URL.
type redirectTransport struct {
	target *url.URL
}

func (rt redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = rt.target.Scheme
	r.URL.Host = rt.target.Host
	r.Host = rt.target.Host
	return http.DefaultTransport.RoundTrip(r)
}

func newFakeServer(t *testing.T) *piwigotest.Server {
	t.Helper()
	srv := piwigotest.NewServer()
	srv.AddUser(testUser, testPassword)
	t.Cleanup(srv.Close)
	return srv
}

// newTestClient returns a client whose base URL is https://example.org/piwigo
// and whose requests are served by srv.
func newTestClient(t *testing.T, srv *piwigotest.Server, mutate ...func(*Config)) *Client {
	t.Helper()
	target, err := url.Parse(srv.URL)
	require.NoError(t, err)
	cfg := Config{
		BaseURL:   "https://example.org/piwigo",
		VerifyTLS: true,
		Timeout:   5 * time.Second,
	}
	for _, m := range mutate {
		m(&cfg)
	}
	c, err := NewClient(cfg, WithLogger(zerolog.Nop()), WithRoundTripper(redirectTransport{target: target}))
	require.NoError(t, err)
	return c
}

func loggedInClient(t *testing.T, srv *piwigotest.Server, mutate ...func(*Config)) *Client {
	t.Helper()
	c := newTestClient(t, srv, mutate...)
	require.NoError(t, c.Login(context.Background(), testUser, []byte(testPassword)))
	srv.ResetCalls()
	return c
}
