package httpclient

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	url       string
	verifyTLS bool
	timeout   time.Duration
}

func (c testConfig) GetServerURL() string      { return c.url }
func (c testConfig) GetVerifyTLS() bool        { return c.verifyTLS }
func (c testConfig) GetTimeout() time.Duration { return c.timeout }
func (c testConfig) GetUserAgent() string      { return "pwgsync-test" }

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name    string
		server  string
		opts    RequestOptions
		want    string
		wantErr bool
	}{
		{
			name:   "base path and query",
			server: "https://example.org/piwigo",
			opts:   RequestOptions{Path: "ws.php", QueryParams: map[string]string{"format": "json", "method": "pwg.session.login"}},
			want:   "https://example.org/piwigo/ws.php?format=json&method=pwg.session.login",
		},
		{
			name:   "trailing slash",
			server: "https://example.org/",
			opts:   RequestOptions{Path: "ws.php"},
			want:   "https://example.org/ws.php",
		},
		{
			name:    "missing scheme",
			server:  "example.org",
			opts:    RequestOptions{Path: "ws.php"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient(testConfig{url: tt.server, verifyTLS: true})
			got, err := c.BuildURL(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDoRequestFormAndCookies(t *testing.T) {
	var seenCookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "pwgsync-test", r.Header.Get("User-Agent"))
		if c, err := r.Cookie("pwg_id"); err == nil {
			seenCookie = c.Value
		} else {
			seenCookie = ""
		}
		if r.PostForm.Get("set") == "yes" {
			http.SetCookie(w, &http.Cookie{Name: "pwg_id", Value: "abc", Path: "/"})
		}
		w.Write([]byte(`{"stat":"ok","result":true}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig{url: srv.URL, verifyTLS: true, timeout: time.Second})
	ctx := context.Background()

	resp, err := c.DoRequest(ctx, RequestOptions{Path: "ws.php", Form: url.Values{"set": {"yes"}}})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NoError(t, resp.Err())
	assert.JSONEq(t, `{"stat":"ok","result":true}`, string(resp.Body))
	assert.Equal(t, "", seenCookie)

	_, err = c.DoRequest(ctx, RequestOptions{Path: "ws.php", Form: url.Values{}})
	require.NoError(t, err)
	assert.Equal(t, "abc", seenCookie)

	c.ResetSession()
	_, err = c.DoRequest(ctx, RequestOptions{Path: "ws.php", Form: url.Values{}})
	require.NoError(t, err)
	assert.Equal(t, "", seenCookie)
}

func TestDoRequestErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	c := NewClient(testConfig{url: srv.URL, verifyTLS: true})
	resp, err := c.DoRequest(context.Background(), RequestOptions{Path: "ws.php"})
	require.NoError(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(resp.Err(), &httpErr))
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
	assert.Equal(t, "upstream down", httpErr.Message)
}

func TestDoRequestConnectionRefused(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	l.Close()

	c := NewClient(testConfig{url: "http://" + addr, verifyTLS: true, timeout: time.Second})
	resp, err := c.DoRequest(context.Background(), RequestOptions{Path: "ws.php"})
	assert.Nil(t, resp)
	assert.Error(t, err)
}

func TestDoRequestTLSVerification(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	strict := NewClient(testConfig{url: srv.URL, verifyTLS: true, timeout: time.Second})
	_, err := strict.DoRequest(context.Background(), RequestOptions{Path: "ws.php"})
	assert.Error(t, err, "self signed certificate must be rejected when verification is on")

	lax := NewClient(testConfig{url: srv.URL, verifyTLS: false, timeout: time.Second})
	resp, err := lax.DoRequest(context.Background(), RequestOptions{Path: "ws.php"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
