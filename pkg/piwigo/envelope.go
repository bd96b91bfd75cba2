package piwigo

import (
	"bytes"
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// Envelope status values.
const (
	StatOK   = "ok"
	StatFail = "fail"
)

const envelopeSchema = `{
	"type": "object",
	"required": ["stat"],
	"properties": {
		"stat": {"enum": ["ok", "fail"]},
		"err": {"type": ["integer", "string"]},
		"message": {"type": ["string", "null"]}
	}
}`

var envelopeValidator = jsonschema.MustCompileString("envelope.json", envelopeSchema)

// Envelope is the wrapper every web service reply uses.
type Envelope struct {
	Stat    string
	Result  gjson.Result // zero Result when the field is absent
	Code    int          // err field of a failed reply
	Message string       // message field of a failed reply
}

// OK reports whether the server accepted the call.
func (e *Envelope) OK() bool {
	return e.Stat == StatOK
}

// ParseEnvelope decodes and validates a reply body.
func ParseEnvelope(body []byte) (*Envelope, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, ErrProtocol.Msg("empty response body")
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrProtocol.Msg("response is not valid JSON")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, ErrProtocol.MsgErr("response is not valid JSON", err)
	}
	if err := envelopeValidator.Validate(doc); err != nil {
		return nil, ErrProtocol.MsgErr("response is not a web service envelope", err)
	}

	parsed := gjson.ParseBytes(body)
	env := &Envelope{
		Stat:   parsed.Get("stat").String(),
		Result: parsed.Get("result"),
	}
	if msg := parsed.Get("message"); msg.Exists() {
		env.Message = msg.String()
	}
	if code := parsed.Get("err"); code.Exists() {
		env.Code = int(code.Int())
	}
	return env, nil
}
