package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tailscale/hujson"

	"github.com/outflow-labs/pysandbox/internal/pyerr"
)

// Codec serializes request payloads and decodes sandbox responses. It is
// an immutable value: one shared instance serves any number of concurrent
// calls.
type Codec struct{}

func NewCodec() Codec {
	return Codec{}
}

type execPayload struct {
	ScriptName string            `json:"script_name"`
	Inputs     map[string]string `json:"inputs"`
}

type evalPayload struct {
	Expression string         `json:"expression"`
	EnvSetup   string         `json:"envSetup"`
	Context    map[string]any `json:"context"`
}

// EncodeExecution builds the single-line execution payload. Input values
// are coerced to their string representation: the sandbox receives only
// strings, never typed values.
func (Codec) EncodeExecution(scriptModule string, inputs map[string]any) (string, error) {
	parsed := make(map[string]string, len(inputs))
	for k, v := range inputs {
		parsed[k] = fmt.Sprint(v)
	}
	b, err := json.Marshal(execPayload{ScriptName: scriptModule, Inputs: parsed})
	if err != nil {
		return "", pyerr.Wrap(pyerr.KindSetup, "failed to generate execution payload", err)
	}
	return string(b), nil
}

// EncodeEvaluation builds the single-line evaluation payload.
func (Codec) EncodeEvaluation(expression, envSetup string, context map[string]any) (string, error) {
	b, err := json.Marshal(evalPayload{Expression: expression, EnvSetup: envSetup, Context: context})
	if err != nil {
		return "", pyerr.Wrap(pyerr.KindSetup, "failed to generate evaluation payload", err)
	}
	return string(b), nil
}

// Decode parses a sandbox response record. Decoding is permissive:
// strict JSON is tried first, then single-quoted string literals are
// rewritten and comments/trailing commas standardized away before a
// second attempt. Failure is a protocol error.
func (Codec) Decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err == nil {
		return nil
	}
	norm := normalizeSingleQuotes(data)
	if std, err := hujson.Standardize(norm); err == nil {
		norm = std
	}
	if err := json.Unmarshal(norm, v); err != nil {
		return pyerr.Wrap(pyerr.KindProtocol, "failed to decode sandbox response", err)
	}
	return nil
}

// normalizeSingleQuotes rewrites single-quoted string literals into
// standard double-quoted ones, leaving the contents of double-quoted
// strings untouched. Escaped quotes inside either form are preserved.
func normalizeSingleQuotes(b []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(b))

	inDouble := false
	inSingle := false
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case inDouble:
			out.WriteByte(c)
			if c == '\\' && i+1 < len(b) {
				i++
				out.WriteByte(b[i])
				continue
			}
			if c == '"' {
				inDouble = false
			}
		case inSingle:
			switch c {
			case '\\':
				if i+1 < len(b) {
					i++
					if b[i] == '\'' {
						out.WriteByte('\'')
					} else {
						out.WriteByte('\\')
						out.WriteByte(b[i])
					}
				} else {
					out.WriteByte(c)
				}
			case '\'':
				out.WriteByte('"')
				inSingle = false
			case '"':
				out.WriteString(`\"`)
			default:
				out.WriteByte(c)
			}
		default:
			switch c {
			case '"':
				inDouble = true
				out.WriteByte(c)
			case '\'':
				inSingle = true
				out.WriteByte('"')
			default:
				out.WriteByte(c)
			}
		}
	}
	return out.Bytes()
}
