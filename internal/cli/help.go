package cli

import (
	"fmt"
	"io"
)

func printRootHelp(w io.Writer) {
	fmt.Fprint(w, `pysandbox

Usage:
  pysandbox exec --script <file> [--input name=value]... --json
  pysandbox eval --expression <expr> [--context name=value]... --json

Commands:
  exec      Run a python script inside a hardened sandbox (use --json).
  eval      Evaluate a python expression against a variable context (use --json).
  version   Print version.
`)
}

func printExecHelp(w io.Writer) {
	fmt.Fprint(w, `Usage:
  pysandbox exec --script <file> [--input name=value]... [--config pysandbox.yaml] [--output <file>] --json

Notes:
  - Requires --json (stdout is reserved for the result JSON).
  - The script must define execute(**inputs); its return value becomes returnResult.
  - --input values are passed as strings; repeat the flag for multiple inputs.
`)
}

func printEvalHelp(w io.Writer) {
	fmt.Fprint(w, `Usage:
  pysandbox eval --expression <expr> [--setup <file>] [--context name=value]... [--config pysandbox.yaml] [--output <file>] --json

Notes:
  - Requires --json (stdout is reserved for the result JSON).
  - --setup runs before the expression, in the same namespace.
  - Context variables read or written by the expression are reported as accessedResources.
`)
}
