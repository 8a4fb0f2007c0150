// Package config supplies the per-call runtime configuration: where the
// Python interpreter lives and how long a sandboxed process may run.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/outflow-labs/pysandbox/internal/pyerr"
)

// DefaultTimeout bounds a sandboxed process when the configuration does
// not say otherwise.
const DefaultTimeout = 30 * time.Minute

// Runtime is the resolved configuration for one call.
type Runtime struct {
	// InterpreterDir is the directory containing the python binary.
	InterpreterDir string
	// Timeout bounds the whole exchange with the sandboxed process.
	Timeout time.Duration
}

// Source yields the runtime configuration for a single call. The executor
// consults it at the start of every call and never caches the result
// beyond the call's duration.
type Source interface {
	Runtime() (Runtime, error)
}

// Static is a Source with fixed values, used for embedding and tests.
type Static struct {
	Config Runtime
}

func (s Static) Runtime() (Runtime, error) {
	return s.Config.withDefaults(), nil
}

// File is a Source backed by a YAML file. The file is re-read on every
// call so configuration changes take effect without a restart.
type File struct {
	Path string
}

type fileConfig struct {
	InterpreterDir string `yaml:"interpreterDir"`
	Timeout        string `yaml:"timeout"`
}

func (f File) Runtime() (Runtime, error) {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return Runtime{}, pyerr.Wrap(pyerr.KindConfig, "failed to read configuration", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return Runtime{}, pyerr.Wrap(pyerr.KindConfig, "failed to parse configuration", err)
	}

	rt := Runtime{InterpreterDir: strings.TrimSpace(fc.InterpreterDir)}
	if t := strings.TrimSpace(fc.Timeout); t != "" {
		d, err := time.ParseDuration(t)
		if err != nil || d <= 0 {
			return Runtime{}, pyerr.Newf(pyerr.KindConfig, "invalid timeout %q", fc.Timeout)
		}
		rt.Timeout = d
	}
	return rt.withDefaults(), nil
}

func (r Runtime) withDefaults() Runtime {
	if r.Timeout <= 0 {
		r.Timeout = DefaultTimeout
	}
	return r
}

// InterpreterBinary resolves the python binary inside the interpreter
// directory.
func (r Runtime) InterpreterBinary() string {
	return filepath.Join(r.InterpreterDir, interpreterName)
}

// Validate checks the interpreter location. It fails fast: the executor
// calls it before creating any temp resources or spawning any process.
func (r Runtime) Validate() error {
	if strings.TrimSpace(r.InterpreterDir) == "" {
		return pyerr.New(pyerr.KindConfig, "missing or invalid python path")
	}
	info, err := os.Stat(r.InterpreterDir)
	if err != nil || !info.IsDir() {
		return pyerr.Newf(pyerr.KindConfig, "missing or invalid python path %q", r.InterpreterDir)
	}
	bin := r.InterpreterBinary()
	if _, err := os.Stat(bin); err != nil {
		return pyerr.Newf(pyerr.KindConfig, "python binary not found at %q", bin)
	}
	if err := checkExecutable(bin); err != nil {
		return pyerr.Wrap(pyerr.KindConfig, "python binary is not executable", err)
	}
	return nil
}
