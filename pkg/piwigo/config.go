package piwigo

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultTimeout bounds a single request when Config.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// Config holds the connection settings of a Client.
type Config struct {
	// BaseURL is the gallery root, e.g. https://example.org/piwigo.
	// A trailing slash or ws.php suffix is removed.
	BaseURL string `validate:"required,http_url"`
	// VerifyTLS enables certificate verification for https servers.
	VerifyTLS bool
	// Timeout bounds one round trip. Zero means DefaultTimeout.
	Timeout time.Duration `validate:"gte=0"`
	// UserAgent is sent with every request when not empty.
	UserAgent string `validate:"omitempty,printascii"`
	// CaseInsensitiveNames makes category path resolution ignore case.
	CaseInsensitiveNames bool
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate normalizes the configuration and checks it.
func (c *Config) Validate() error {
	c.BaseURL = normalizeBaseURL(c.BaseURL)
	if err := validate.Struct(c); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			e := verrs[0]
			return ErrInvalidConfig.Msg(fmt.Sprintf("%s: failed %q check", e.Field(), e.Tag()))
		}
		return ErrInvalidConfig.Err(err)
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return nil
}

func normalizeBaseURL(u string) string {
	u = strings.TrimSpace(u)
	u = strings.TrimSuffix(u, "/")
	u = strings.TrimSuffix(u, "/ws.php")
	return strings.TrimSuffix(u, "/")
}

func (c Config) GetServerURL() string {
	return c.BaseURL
}

func (c Config) GetVerifyTLS() bool {
	return c.VerifyTLS
}

func (c Config) GetTimeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

func (c Config) GetUserAgent() string {
	return c.UserAgent
}
