// Package driver holds the bootstrap scripts materialized into every
// sandbox directory. The scripts implement the line protocol the runner
// speaks: one JSON request line on stdin, one response document on stdout.
package driver

import _ "embed"

const (
	// ExecutionName is the file name of the execution driver inside a
	// sandbox directory.
	ExecutionName = "main.py"
	// EvaluationName is the file name of the evaluation driver.
	EvaluationName = "eval.py"
)

//go:embed main.py
var executionScript []byte

//go:embed eval.py
var evaluationScript []byte

// Execution returns the execution driver source. Callers receive a copy;
// the embedded bytes are never exposed for mutation.
func Execution() []byte {
	return append([]byte(nil), executionScript...)
}

// Evaluation returns the evaluation driver source.
func Evaluation() []byte {
	return append([]byte(nil), evaluationScript...)
}
