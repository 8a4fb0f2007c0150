// Package cli implements the pysandbox command line: exec runs a script
// file inside the sandbox, eval evaluates a single expression.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/outflow-labs/pysandbox/internal/codes"
	"github.com/outflow-labs/pysandbox/internal/config"
	"github.com/outflow-labs/pysandbox/internal/protocol"
	"github.com/outflow-labs/pysandbox/internal/pyexec"
	"github.com/outflow-labs/pysandbox/internal/store"
)

const defaultConfigPath = "pysandbox.yaml"

type Runner struct {
	Version string
	Stdout  io.Writer
	Stderr  io.Writer
	Logger  *slog.Logger
}

func (r Runner) Run(args []string) int {
	if r.Stdout == nil {
		r.Stdout = os.Stdout
	}
	if r.Stderr == nil {
		r.Stderr = os.Stderr
	}
	if r.Logger == nil {
		r.Logger = slog.New(slog.NewTextHandler(r.Stderr, nil))
	}

	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printRootHelp(r.Stdout)
		return 0
	}

	switch args[0] {
	case "exec":
		return r.runExec(args[1:])
	case "eval":
		return r.runEval(args[1:])
	case "version":
		fmt.Fprintf(r.Stdout, "%s\n", r.Version)
		return 0
	default:
		fmt.Fprintf(r.Stderr, "%s: unknown command %q\n", codes.Usage, args[0])
		printRootHelp(r.Stderr)
		return exitUsage
	}
}

func (r Runner) runExec(args []string) int {
	fs := pflag.NewFlagSet("exec", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	scriptPath := fs.String("script", "", "path to the python script (required)")
	inputs := fs.StringArray("input", nil, "script input as name=value (repeatable)")
	configPath := fs.String("config", defaultConfigPath, "path to the runtime configuration")
	jsonOut := fs.Bool("json", false, "print JSON output")
	outputPath := fs.String("output", "", "also write the result JSON to this file")
	help := fs.Bool("help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return r.failUsage("exec: invalid flags")
	}
	if *help {
		printExecHelp(r.Stdout)
		return 0
	}
	if strings.TrimSpace(*scriptPath) == "" {
		return r.failUsage("exec: missing --script")
	}
	if !*jsonOut {
		printExecHelp(r.Stderr)
		return r.failUsage("exec: require --json for stable output")
	}

	script, err := os.ReadFile(*scriptPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "%s: %s\n", codes.IO, err.Error())
		return exitUsage
	}
	inputMap, err := parseKeyValues(*inputs)
	if err != nil {
		return r.failUsage("exec: " + err.Error())
	}

	exec := pyexec.New(pyexec.Options{
		Config: config.File{Path: *configPath},
		Logger: r.Logger,
	})
	res, err := exec.Exec(context.Background(), string(script), inputMap)
	if err != nil {
		return r.fail(err)
	}
	return r.writeResult(*outputPath, map[string]any{
		"ok":           true,
		"returnResult": res.ReturnResult,
	})
}

func (r Runner) runEval(args []string) int {
	fs := pflag.NewFlagSet("eval", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	expression := fs.String("expression", "", "python expression to evaluate (required)")
	setupPath := fs.String("setup", "", "path to an environment-setup script (optional)")
	contextKVs := fs.StringArray("context", nil, "context variable as name=value (repeatable)")
	configPath := fs.String("config", defaultConfigPath, "path to the runtime configuration")
	jsonOut := fs.Bool("json", false, "print JSON output")
	outputPath := fs.String("output", "", "also write the result JSON to this file")
	help := fs.Bool("help", false, "show help")

	if err := fs.Parse(args); err != nil {
		return r.failUsage("eval: invalid flags")
	}
	if *help {
		printEvalHelp(r.Stdout)
		return 0
	}
	if strings.TrimSpace(*expression) == "" {
		return r.failUsage("eval: missing --expression")
	}
	if !*jsonOut {
		printEvalHelp(r.Stderr)
		return r.failUsage("eval: require --json for stable output")
	}

	envSetup := ""
	if *setupPath != "" {
		b, err := os.ReadFile(*setupPath)
		if err != nil {
			fmt.Fprintf(r.Stderr, "%s: %s\n", codes.IO, err.Error())
			return exitUsage
		}
		envSetup = string(b)
	}
	kvs, err := parseKeyValues(*contextKVs)
	if err != nil {
		return r.failUsage("eval: " + err.Error())
	}
	vars := make(map[string]any, len(kvs))
	for k, v := range kvs {
		vars[k] = v
	}

	exec := pyexec.New(pyexec.Options{
		Config: config.File{Path: *configPath},
		Logger: r.Logger,
	})
	res, err := exec.Eval(context.Background(), *expression, envSetup, vars)
	if err != nil {
		return r.fail(err)
	}
	return r.writeResult(*outputPath, map[string]any{
		"ok":                true,
		"value":             res.Value,
		"accessedResources": res.Context[protocol.AccessedResourcesKey],
	})
}

func (r Runner) writeResult(outputPath string, v map[string]any) int {
	if outputPath != "" {
		if err := store.WriteJSONAtomic(outputPath, v); err != nil {
			fmt.Fprintf(r.Stderr, "%s: %s\n", codes.IO, err.Error())
			return exitUsage
		}
	}
	enc := json.NewEncoder(r.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(r.Stderr, "%s: %s\n", codes.IO, err.Error())
		return exitUsage
	}
	return 0
}

func (r Runner) failUsage(msg string) int {
	fmt.Fprintf(r.Stderr, "%s: %s\n", codes.Usage, msg)
	return exitUsage
}

func (r Runner) fail(err error) int {
	fmt.Fprintf(r.Stderr, "%s\n", err.Error())
	return exitCodeFor(err)
}

// parseKeyValues splits repeated name=value flags, keeping everything
// after the first '=' as the value.
func parseKeyValues(kvs []string) (map[string]any, error) {
	if len(kvs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(kvs))
	for _, kv := range kvs {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("invalid name=value pair %q", kv)
		}
		out[strings.TrimSpace(name)] = value
	}
	return out, nil
}
