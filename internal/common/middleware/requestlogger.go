// Package middleware provides HTTP middleware for request logging and panic
// recovery. It integrates with zerolog and carries the request id sent by
// clients in the logtrace.RequestIDHeader header.
package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pwgsync/pwgsync/internal/common/logtrace"
)

// RequestLogger logs every request together with its request id. The id sent
// by the client is reused; otherwise a new one is generated. The id is echoed
// in the response headers and attached to the request context and logger.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get(logtrace.RequestIDHeader)
		if requestID == "" {
			requestID = logtrace.NewRequestID()
		}
		ctx := logtrace.WithRequestID(r.Context(), requestID)
		ctx = log.With().Str("request_id", requestID).Logger().WithContext(ctx)

		w.Header().Set(logtrace.RequestIDHeader, requestID)

		log.Ctx(ctx).Debug().
			Str("requestMethod", r.Method).
			Str("requestPath", r.URL.Path).
			Str("apiMethod", r.URL.Query().Get("method")).
			Str("remoteIP", r.RemoteAddr).
			Msg("incoming request")

		defer func() {
			log.Ctx(ctx).Debug().
				Str("duration", fmt.Sprintf("%dms", time.Since(start).Milliseconds())).
				Msg("request completed")
		}()

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
