// Package pyexec is the entry point for sandboxed Python calls. An
// Executor runs full scripts with named inputs (Exec) or single
// expressions against a variable context (Eval), each call in its own
// hardened temp directory and short-lived interpreter process.
//
// An Executor holds no per-call state and is safe for concurrent use;
// each call owns an independent temp directory and OS process.
package pyexec

import (
	"context"
	"log/slog"
	"time"

	"github.com/outflow-labs/pysandbox/internal/config"
	"github.com/outflow-labs/pysandbox/internal/ids"
	"github.com/outflow-labs/pysandbox/internal/metrics"
	"github.com/outflow-labs/pysandbox/internal/protocol"
	"github.com/outflow-labs/pysandbox/internal/pyerr"
	"github.com/outflow-labs/pysandbox/internal/runner"
	"github.com/outflow-labs/pysandbox/internal/sandbox"
)

const (
	kindExecution  = "execution"
	kindEvaluation = "evaluation"
)

type Options struct {
	// Config supplies the interpreter location and timeout; consulted at
	// the start of every call, never cached across calls.
	Config config.Source
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// Metrics is optional; nil records nothing.
	Metrics *metrics.Metrics
	// TempRoot overrides the system temp root, mainly for tests.
	TempRoot string
}

type Executor struct {
	cfg      config.Source
	codec    protocol.Codec
	log      *slog.Logger
	metrics  *metrics.Metrics
	tempRoot string
}

func New(opts Options) *Executor {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Executor{
		cfg:      opts.Config,
		codec:    protocol.NewCodec(),
		log:      log,
		metrics:  opts.Metrics,
		tempRoot: opts.TempRoot,
	}
}

// ExecutionResult wraps the decoded return value of a successful script
// run.
type ExecutionResult struct {
	ReturnResult any
}

// EvaluationResult wraps the coerced expression value together with the
// caller's context map, which has been mutated to carry the
// accessed-resources set under protocol.AccessedResourcesKey.
type EvaluationResult struct {
	Value   any
	Context map[string]any
}

// Exec runs a full script with named inputs inside the sandbox. Input
// values are stringified before transmission. Failures are *pyerr.Error
// values; a KindScript error means the script itself faulted, everything
// else is infrastructure.
func (e *Executor) Exec(ctx context.Context, script string, inputs map[string]any) (res *ExecutionResult, err error) {
	log := e.log.With("call", ids.NewCallID(), "kind", kindExecution)
	defer e.observe(kindExecution, time.Now(), &err)

	rt, err := e.cfg.Runtime()
	if err != nil {
		return nil, err
	}
	if err := rt.Validate(); err != nil {
		return nil, err
	}

	env, err := sandbox.CreateExecution(e.tempRoot, script)
	if err != nil {
		return nil, err
	}
	defer e.destroy(env, log)

	payload, err := e.codec.EncodeExecution(env.ScriptModule(), inputs)
	if err != nil {
		return nil, err
	}
	if err := env.Harden(); err != nil {
		return nil, err
	}

	out, err := e.run(ctx, rt, env, payload, log)
	if err != nil {
		return nil, err
	}

	decoded, err := e.codec.DecodeExecution(out.Stdout)
	if err != nil {
		return nil, err
	}
	if decoded.Exception != "" {
		msg := protocol.FormatException(decoded.Exception, decoded.Traceback)
		log.Error("failed to execute script", "error", msg)
		return nil, pyerr.Newf(pyerr.KindScript, "failed to execute user script: %s", msg)
	}
	return &ExecutionResult{ReturnResult: decoded.ReturnResult}, nil
}

// Eval evaluates a single expression against vars, optionally after
// running envSetup. On success vars gains the accessed-resources set
// under the reserved key; the returned Context is the same (mutated) map.
func (e *Executor) Eval(ctx context.Context, expression, envSetup string, vars map[string]any) (res *EvaluationResult, err error) {
	log := e.log.With("call", ids.NewCallID(), "kind", kindEvaluation)
	defer e.observe(kindEvaluation, time.Now(), &err)

	rt, err := e.cfg.Runtime()
	if err != nil {
		return nil, err
	}
	if err := rt.Validate(); err != nil {
		return nil, err
	}

	env, err := sandbox.CreateEvaluation(e.tempRoot)
	if err != nil {
		return nil, err
	}
	defer e.destroy(env, log)

	payload, err := e.codec.EncodeEvaluation(expression, envSetup, vars)
	if err != nil {
		return nil, err
	}
	if err := env.Harden(); err != nil {
		return nil, err
	}

	out, err := e.run(ctx, rt, env, payload, log)
	if err != nil {
		return nil, err
	}

	decoded, err := e.codec.DecodeEvaluation(out.Stdout)
	if err != nil {
		return nil, err
	}
	if decoded.Exception != "" {
		log.Error("failed to evaluate expression", "error", decoded.Exception)
		return nil, pyerr.New(pyerr.KindEval, decoded.Exception)
	}
	value, err := e.codec.CoerceReturn(decoded)
	if err != nil {
		return nil, err
	}

	if vars == nil {
		vars = make(map[string]any, 1)
	}
	vars[protocol.AccessedResourcesKey] = decoded.AccessedResources
	return &EvaluationResult{Value: value, Context: vars}, nil
}

func (e *Executor) run(ctx context.Context, rt config.Runtime, env *sandbox.Environment, payload string, log *slog.Logger) (runner.Output, error) {
	out, err := runner.Run(ctx, runner.Spec{
		Interpreter: rt.InterpreterBinary(),
		Driver:      env.DriverPath(),
		Dir:         env.Dir,
		Payload:     payload,
		Timeout:     rt.Timeout,
	})
	if err != nil && out.Stderr != "" {
		log.Error("python process error output", "stderr", out.Stderr)
	}
	return out, err
}

func (e *Executor) destroy(env *sandbox.Environment, log *slog.Logger) {
	if !env.Destroy(log) {
		e.metrics.ObserveCleanupFailure()
	}
}

func (e *Executor) observe(kind string, start time.Time, err *error) {
	e.metrics.ObserveCall(kind, outcomeOf(*err), time.Since(start))
}

func outcomeOf(err error) string {
	if err == nil {
		return "success"
	}
	if pe, ok := pyerr.As(err); ok {
		return string(pe.Kind)
	}
	return "error"
}
