package piwigo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/tidwall/gjson"
)

// GuestUser is the user name getStatus reports for an anonymous session.
const GuestUser = "guest"

// StatusInfo holds the reply of pwg.session.getStatus.
type StatusInfo struct {
	Username          string          `json:"username"`
	Status            string          `json:"status"` // webmaster, admin, normal, guest
	Theme             string          `json:"theme,omitempty"`
	Language          string          `json:"language,omitempty"`
	PwgToken          string          `json:"-"`
	Charset           string          `json:"charset,omitempty"`
	CurrentDatetime   string          `json:"current_datetime,omitempty"`
	RawVersion        string          `json:"version"`
	Version           *semver.Version `json:"-"` // nil when the server version is not semver
	UploadFileTypes   string          `json:"upload_file_types"`
	AcceptedMimeTypes []string        `json:"accepted_mime_types"`
	UploadChunkSize   int64           `json:"upload_form_chunk_size,omitempty"` // KiB
}

// IsGuest reports whether the status describes an anonymous session.
func (s *StatusInfo) IsGuest() bool {
	return s.Username == "" || s.Username == GuestUser
}

// AtLeast reports whether the server version is known and not older than v.
func (s *StatusInfo) AtLeast(v string) bool {
	if s.Version == nil {
		return false
	}
	floor, err := semver.NewVersion(v)
	if err != nil {
		return false
	}
	return !s.Version.LessThan(floor)
}

func parseStatus(r gjson.Result) (*StatusInfo, error) {
	if !r.IsObject() {
		return nil, ErrProtocol.Msg("getStatus reply has no result object")
	}
	s := &StatusInfo{
		Username:        r.Get("username").String(),
		Status:          r.Get("status").String(),
		Theme:           r.Get("theme").String(),
		Language:        r.Get("language").String(),
		PwgToken:        r.Get("pwg_token").String(),
		Charset:         r.Get("charset").String(),
		CurrentDatetime: r.Get("current_datetime").String(),
		RawVersion:      r.Get("version").String(),
		UploadFileTypes: r.Get("upload_file_types").String(),
		UploadChunkSize: r.Get("upload_form_chunk_size").Int(),
	}
	if s.RawVersion != "" {
		if v, err := semver.NewVersion(s.RawVersion); err == nil {
			s.Version = v
		}
	}
	s.AcceptedMimeTypes = MimeTypesFromExtensions(s.UploadFileTypes)
	return s, nil
}

// GetStatus fetches the server capabilities and records the accepted MIME
// types. It may be called without a session. If the client believes it is
// logged in but the server reports a guest session, the session is dropped.
func (c *Client) GetStatus(ctx context.Context) (*StatusInfo, error) {
	status, err := c.fetchStatus(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.accepted = mimeSet(status.AcceptedMimeTypes)
	if c.authenticated {
		if status.IsGuest() || status.PwgToken == "" {
			c.logger.Warn().Msg("server session expired")
			c.authenticated = false
			c.username = ""
			c.token = ""
		} else {
			c.username = status.Username
			c.token = status.PwgToken
		}
	}
	return status, nil
}

func (c *Client) fetchStatus(ctx context.Context) (*StatusInfo, error) {
	env, err := c.call(ctx, MethodGetStatus, nil)
	if err != nil {
		return nil, err
	}
	return parseStatus(env.Result)
}

// Login authenticates with the given credentials. The password slice is
// zeroed before Login returns. On success the session token and accepted
// MIME types are loaded from getStatus. Every failure is reported as an
// error derived from ErrAuth and leaves the session unauthenticated.
func (c *Client) Login(ctx context.Context, username string, password []byte) error {
	defer clear(password)

	logger := c.logger.With().Str("username", username).Logger()

	env, err := c.call(ctx, MethodLogin, map[string]string{
		"username": username,
		"password": string(password),
	})
	if err != nil {
		c.dropSession()
		if errors.Is(err, ErrAPI) {
			logger.Info().Err(err).Msg("login rejected")
			return ErrAuth.Msg(err.Error()).SetStatusCode(ErrorCode(err))
		}
		logger.Warn().Err(err).Msg("login failed")
		return ErrAuth.MsgErr(fmt.Sprintf("login request failed: %v", err), err)
	}
	if env.Result.Type != gjson.True {
		c.dropSession()
		return ErrAuth.Msg("server did not accept the credentials")
	}

	status, err := c.fetchStatus(ctx)
	if err != nil {
		c.dropSession()
		return ErrAuth.MsgErr(fmt.Sprintf("unable to read session status after login: %v", err), err)
	}
	if status.IsGuest() || status.PwgToken == "" {
		c.dropSession()
		return ErrAuth.Msg("server did not establish a session")
	}

	c.mu.Lock()
	c.authenticated = true
	c.username = status.Username
	c.token = status.PwgToken
	c.accepted = mimeSet(status.AcceptedMimeTypes)
	c.mu.Unlock()

	logger.Info().Str("status", status.Status).Str("version", status.RawVersion).Msg("logged in")
	return nil
}

// Logout ends the server session. It is a no-op while logged out.
func (c *Client) Logout(ctx context.Context) error {
	if !c.IsAuthenticated() {
		return nil
	}
	if _, err := c.call(ctx, MethodLogout, nil); err != nil {
		return err
	}
	c.dropSession()
	c.logger.Info().Msg("logged out")
	return nil
}

// dropSession forgets the session locally, cookies included.
func (c *Client) dropSession() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearSessionLocked()
	c.transport.ResetSession()
}
