package piwigo

import "context"

// Storage is the contract an export host relies on.
type Storage interface {
	Configure(baseURL string, verifyTLS bool) error
	Login(ctx context.Context, username string, password []byte) error
	Logout(ctx context.Context) error
	IsFormatSupported(mimeType string) bool
	EnsureCategory(ctx context.Context, path string) (int64, error)
}

var _ Storage = (*Client)(nil)
