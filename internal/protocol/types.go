// Package protocol implements the wire format spoken with the sandboxed
// driver scripts: the single-line JSON request payloads, the XML-wrapped
// execution response, the plain JSON evaluation response, and the
// classification of foreign tracebacks into user-facing messages.
package protocol

// ReturnType tags the value an evaluated expression produced. Anything
// outside the known tags is passed through as a raw string.
type ReturnType string

const (
	ReturnBoolean ReturnType = "BOOLEAN"
	ReturnInteger ReturnType = "INTEGER"
	ReturnList    ReturnType = "LIST"
	ReturnString  ReturnType = "STRING"
)

// AccessedResourcesKey is the reserved context key under which the
// accessed-resources set is reported back to the caller after an
// evaluation call.
const AccessedResourcesKey = "accessed_resources_set"

// ScriptResult is the record inside the execution response's <result>
// element. Traceback entries are ordered as produced by the sandbox; the
// last entry is nearest to the fault.
type ScriptResult struct {
	ReturnResult any      `json:"returnResult"`
	Exception    string   `json:"exception"`
	Traceback    []string `json:"traceback"`
}

// EvaluationResult is the evaluation response record. ReturnResult is the
// raw string rendering; CoerceReturn applies ReturnType to it.
type EvaluationResult struct {
	ReturnResult      string     `json:"returnResult"`
	ReturnType        ReturnType `json:"returnType"`
	Exception         string     `json:"exception"`
	AccessedResources []string   `json:"accessedResources"`
}
