package rakumart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/run651/rakumart-1688/internal/domain"
)

// CodeInvalidCredentials is the envelope code for an unknown app key or a
// bad signature.
const CodeInvalidCredentials = 10001

// Envelope is the wrapper around every API reply.
type Envelope struct {
	Success any             `json:"success"`
	Code    domain.Flex     `json:"code"`
	Msg     string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(raw json.RawMessage) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnexpectedEnvelope, err)
	}
	return &env, nil
}

// OK reports the success flag. Besides booleans the API has been seen to
// send 1 and "true".
func (e *Envelope) OK() bool {
	switch v := e.Success.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return strings.EqualFold(v, "true") || v == "1"
	}
	return false
}

// InvalidCredentials reports whether the code marks rejected credentials.
func (e *Envelope) InvalidCredentials() bool {
	code, ok := e.Code.Int()
	return ok && code == CodeInvalidCredentials
}

// Err returns nil for a successful envelope and a classified error
// otherwise.
func (e *Envelope) Err() error {
	if e.OK() {
		return nil
	}
	if e.InvalidCredentials() {
		return fmt.Errorf("%w: %w: %s", domain.ErrAPILogicalFailure, domain.ErrInvalidCredentials, e.Msg)
	}
	return fmt.Errorf("%w: code=%s msg=%s", domain.ErrAPILogicalFailure, e.Code.String(), e.Msg)
}

// HasData reports whether the payload is present and not null.
func (e *Envelope) HasData() bool {
	d := bytes.TrimSpace(e.Data)
	return len(d) > 0 && !bytes.Equal(d, []byte("null"))
}

// Field returns the raw value nested under data at path, or nil when any
// level is missing or not an object.
func (e *Envelope) Field(path ...string) json.RawMessage {
	cur := e.Data
	for _, k := range path {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return nil
		}
		next, ok := obj[k]
		if !ok {
			return nil
		}
		cur = next
	}
	if d := bytes.TrimSpace(cur); len(d) == 0 || bytes.Equal(d, []byte("null")) {
		return nil
	}
	return cur
}
