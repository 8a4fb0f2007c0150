// Package sandbox manages the isolated per-call working directory a
// sandboxed process runs in: creation, driver/script materialization,
// permission hardening, and unconditional teardown.
package sandbox

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/outflow-labs/pysandbox/internal/driver"
	"github.com/outflow-labs/pysandbox/internal/ids"
	"github.com/outflow-labs/pysandbox/internal/pyerr"
	"github.com/outflow-labs/pysandbox/internal/store"
)

const (
	execDirPattern = "python_execution"
	evalDirPattern = "python_expression"
)

// Environment is a uniquely named directory owned by exactly one call.
// UserScriptName is empty for evaluation environments; the two shapes
// share the rest of the fields.
type Environment struct {
	Dir            string
	DriverName     string
	UserScriptName string
}

// CreateExecution allocates an execution environment under root (the
// system temp root when root is empty), materializing the execution
// driver and the user script.
func CreateExecution(root, script string) (*Environment, error) {
	dir, err := os.MkdirTemp(root, execDirPattern)
	if err != nil {
		return nil, pyerr.Wrap(pyerr.KindSetup, "failed to generate execution resources", err)
	}
	env := &Environment{
		Dir:            dir,
		DriverName:     driver.ExecutionName,
		UserScriptName: ids.NewScriptFileName(),
	}
	if err := store.WriteFileAtomic(filepath.Join(dir, env.UserScriptName), []byte(script)); err != nil {
		_ = os.RemoveAll(dir)
		return nil, pyerr.Wrap(pyerr.KindSetup, "failed to materialize user script", err)
	}
	if err := store.WriteFileAtomic(env.DriverPath(), driver.Execution()); err != nil {
		_ = os.RemoveAll(dir)
		return nil, pyerr.Wrap(pyerr.KindSetup, "failed to materialize execution driver", err)
	}
	return env, nil
}

// CreateEvaluation allocates an evaluation environment: the evaluation
// driver only, no user script.
func CreateEvaluation(root string) (*Environment, error) {
	dir, err := os.MkdirTemp(root, evalDirPattern)
	if err != nil {
		return nil, pyerr.Wrap(pyerr.KindSetup, "failed to generate evaluation resources", err)
	}
	env := &Environment{Dir: dir, DriverName: driver.EvaluationName}
	if err := store.WriteFileAtomic(env.DriverPath(), driver.Evaluation()); err != nil {
		_ = os.RemoveAll(dir)
		return nil, pyerr.Wrap(pyerr.KindSetup, "failed to materialize evaluation driver", err)
	}
	return env, nil
}

// Harden restricts every regular file directly inside the environment to
// owner-read-only. It must run before the sandboxed process starts.
func (e *Environment) Harden() error {
	entries, err := os.ReadDir(e.Dir)
	if err != nil {
		return pyerr.Wrap(pyerr.KindSetup, "failed to harden execution resources", err)
	}
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := hardenFile(filepath.Join(e.Dir, entry.Name())); err != nil {
			return pyerr.Wrap(pyerr.KindSetup, "failed to harden execution resources", err)
		}
	}
	return nil
}

// Destroy recursively removes the environment. It runs on every exit
// path of the owning call; failure is logged as a warning and never
// surfaced as a call failure. Safe to call on an already-removed
// directory. The return value reports whether removal succeeded, for
// instrumentation only.
func (e *Environment) Destroy(log *slog.Logger) bool {
	if e == nil {
		return true
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.RemoveAll(e.Dir); err != nil {
		log.Warn("failed to cleanup python execution resources", "dir", e.Dir, "error", err)
		return false
	}
	return true
}

// DriverPath is the absolute path to the materialized driver script.
func (e *Environment) DriverPath() string {
	return filepath.Join(e.Dir, e.DriverName)
}

// ScriptModule is the user script's module name: its file name with the
// extension stripped. Empty for evaluation environments.
func (e *Environment) ScriptModule() string {
	if e.UserScriptName == "" {
		return ""
	}
	return ids.ScriptModule(e.UserScriptName)
}
