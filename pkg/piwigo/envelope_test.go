package piwigo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		ok      bool
		code    int
		message string
		result  string
	}{
		{name: "ok with object", body: `{"stat":"ok","result":{"id":5}}`, ok: true, result: `{"id":5}`},
		{name: "ok with boolean", body: `{"stat":"ok","result":true}`, ok: true, result: `true`},
		{name: "ok without result", body: `{"stat":"ok"}`, ok: true},
		{name: "fail with code", body: `{"stat":"fail","err":999,"message":"Invalid username/password"}`, code: 999, message: "Invalid username/password"},
		{name: "fail with string code", body: `{"stat":"fail","err":"1003","message":"Missing parameters"}`, code: 1003, message: "Missing parameters"},
		{name: "fail without message", body: `{"stat":"fail"}`},
		{name: "empty body", body: ``, wantErr: true},
		{name: "blank body", body: " \n", wantErr: true},
		{name: "html page", body: `<html><body>Fatal error</body></html>`, wantErr: true},
		{name: "truncated json", body: `{"stat":"ok","result":`, wantErr: true},
		{name: "missing stat", body: `{"result":true}`, wantErr: true},
		{name: "unknown stat", body: `{"stat":"maybe"}`, wantErr: true},
		{name: "not an object", body: `["ok"]`, wantErr: true},
		{name: "message of wrong type", body: `{"stat":"fail","message":{"text":"x"}}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := ParseEnvelope([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrProtocol)
				assert.False(t, IsRetryable(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, env.OK())
			assert.Equal(t, tt.code, env.Code)
			assert.Equal(t, tt.message, env.Message)
			assert.Equal(t, tt.result, env.Result.Raw)
		})
	}
}
