package protocol

import (
	"encoding/xml"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/outflow-labs/pysandbox/internal/pyerr"
)

// DecodeExecution parses the raw captured output of an execution call:
// an XML document whose single <result> element carries the JSON-encoded
// ScriptResult. Any shape failure is a protocol error, not a script error.
func (c Codec) DecodeExecution(out string) (*ScriptResult, error) {
	inner, err := extractResultElement(out)
	if err != nil {
		return nil, err
	}
	var res ScriptResult
	if err := c.Decode([]byte(inner), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DecodeEvaluation parses the raw captured output of an evaluation call:
// a direct JSON record with no XML envelope.
func (c Codec) DecodeEvaluation(out string) (*EvaluationResult, error) {
	var res EvaluationResult
	if err := c.Decode([]byte(out), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// CoerceReturn applies the declared return type to the raw string result.
// A missing return type is a protocol violation, not an empty value.
func (c Codec) CoerceReturn(res *EvaluationResult) (any, error) {
	switch res.ReturnType {
	case "":
		return nil, pyerr.New(pyerr.KindProtocol, "missing return type for return result")
	case ReturnBoolean:
		return strings.EqualFold(strings.TrimSpace(res.ReturnResult), "true"), nil
	case ReturnInteger:
		n, err := strconv.Atoi(strings.TrimSpace(res.ReturnResult))
		if err != nil {
			return nil, pyerr.Newf(pyerr.KindProtocol, "return result %q is not an integer", res.ReturnResult)
		}
		return n, nil
	case ReturnList:
		var items []any
		if err := c.Decode([]byte(res.ReturnResult), &items); err != nil {
			return nil, err
		}
		return items, nil
	default:
		return res.ReturnResult, nil
	}
}

// extractResultElement walks the XML token stream and returns the text
// content of the first <result> element at any depth.
func extractResultElement(doc string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return "", pyerr.New(pyerr.KindProtocol, "sandbox response has no result element")
		}
		if err != nil {
			return "", pyerr.Wrap(pyerr.KindProtocol, "failed to parse sandbox response", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "result" {
			continue
		}
		var text string
		if err := dec.DecodeElement(&text, &se); err != nil {
			return "", pyerr.Wrap(pyerr.KindProtocol, "failed to read result element", err)
		}
		return text, nil
	}
}
