package logtrace

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestID(t *testing.T) {
	assert.Equal(t, "", RequestIdFromContext(context.Background()))

	ctx, id := EnsureRequestID(context.Background())
	require.NotEmpty(t, id)
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Equal(t, id, RequestIdFromContext(ctx))

	again, sameID := EnsureRequestID(ctx)
	assert.Equal(t, id, sameID)
	assert.Equal(t, ctx, again)

	ctx = WithRequestID(context.Background(), "fixed")
	assert.Equal(t, "fixed", RequestIdFromContext(ctx))
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"WARN", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
