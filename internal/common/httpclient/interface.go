package httpclient

import "context"

// HTTPClientInterface is the transport contract used by API clients.
type HTTPClientInterface interface {
	// DoRequest performs one round trip. See HTTPClient.DoRequest.
	DoRequest(ctx context.Context, opts RequestOptions) (*Response, error)

	// ResetSession forgets the server session held by the transport.
	ResetSession()
}

var _ HTTPClientInterface = &HTTPClient{}
