package apperrors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	t.Run("derivation chain", func(t *testing.T) {
		ErrBase := New("base error")
		assert.Equal(t, "base error", ErrBase.Error())
		assert.ErrorIs(t, ErrBase, ErrBase)

		ErrFirstLevel := ErrBase.New("first level")
		assert.Equal(t, "first level", ErrFirstLevel.Error())
		assert.ErrorIs(t, ErrFirstLevel, ErrBase)

		ErrSecondLevel := ErrFirstLevel.New("second level")
		assert.ErrorIs(t, ErrSecondLevel, ErrBase)
		assert.ErrorIs(t, ErrSecondLevel, ErrFirstLevel)
		assert.False(t, errors.Is(ErrFirstLevel, ErrSecondLevel))

		msgErr := ErrSecondLevel.Msg("server said no")
		assert.Equal(t, "server said no", msgErr.Error())
		assert.ErrorIs(t, msgErr, ErrSecondLevel)
		assert.ErrorIs(t, msgErr, ErrBase)
	})

	t.Run("wrapped causes", func(t *testing.T) {
		ErrBase := New("base error")
		cause := errors.New("connection refused")
		other := fmt.Errorf("another cause")

		wrapped := ErrBase.Err(cause, other)
		assert.Equal(t, "base error", wrapped.Error())
		assert.ErrorIs(t, wrapped, ErrBase)
		assert.ErrorIs(t, wrapped, cause)
		assert.ErrorIs(t, wrapped, other)
		assert.Equal(t, "base error; connection refused; another cause", wrapped.ErrorAll())
		assert.Len(t, wrapped.UnwrapAll(), 3)

		withMsg := ErrBase.MsgErr("request failed", cause)
		assert.Equal(t, "request failed", withMsg.Error())
		assert.Equal(t, "request failed; connection refused", withMsg.ErrorAll())
		assert.ErrorIs(t, withMsg, cause)
	})

	t.Run("status code and retryable flag", func(t *testing.T) {
		ErrTransient := New("transient").SetRetryable(true).SetStatusCode(http.StatusBadGateway)
		derived := ErrTransient.New("gateway failed")
		assert.True(t, derived.Retryable())
		assert.Equal(t, http.StatusBadGateway, derived.StatusCode())

		permanent := derived.SetRetryable(false)
		assert.False(t, permanent.Retryable())
		assert.True(t, derived.Retryable(), "setters must not modify the receiver")

		wrapped := fmt.Errorf("outer: %w", derived)
		assert.True(t, IsRetryable(wrapped))
		assert.Equal(t, http.StatusBadGateway, StatusCodeOf(wrapped))
		assert.False(t, IsRetryable(errors.New("plain")))
		assert.Equal(t, 0, StatusCodeOf(errors.New("plain")))
	})

	t.Run("suffix", func(t *testing.T) {
		ErrBase := New("invalid path")
		withSuffix := ErrBase.Suffix("empty segment list")
		assert.Equal(t, "invalid path: empty segment list", withSuffix.Error())
		assert.Equal(t, "invalid path", ErrBase.Error())
	})

	t.Run("nil target", func(t *testing.T) {
		assert.False(t, errors.Is(New("x"), nil))
	})
}
