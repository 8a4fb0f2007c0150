package sandbox

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/outflow-labs/pysandbox/internal/driver"
)

func TestCreateExecutionMaterializesScriptAndDriver(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	env, err := CreateExecution(root, "def execute():\n    return 1\n")
	if err != nil {
		t.Fatalf("CreateExecution: %v", err)
	}
	defer env.Destroy(nil)

	if !strings.HasPrefix(filepath.Base(env.Dir), "python_execution") {
		t.Fatalf("dir %q missing python_execution prefix", env.Dir)
	}
	if env.DriverName != driver.ExecutionName {
		t.Fatalf("driver name = %q", env.DriverName)
	}
	script, err := os.ReadFile(filepath.Join(env.Dir, env.UserScriptName))
	if err != nil {
		t.Fatalf("read user script: %v", err)
	}
	if !strings.Contains(string(script), "def execute") {
		t.Fatalf("unexpected user script: %q", string(script))
	}
	if _, err := os.Stat(env.DriverPath()); err != nil {
		t.Fatalf("driver not materialized: %v", err)
	}
	if env.ScriptModule() != strings.TrimSuffix(env.UserScriptName, ".py") {
		t.Fatalf("ScriptModule = %q for script %q", env.ScriptModule(), env.UserScriptName)
	}
}

func TestCreateEvaluationMaterializesDriverOnly(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	env, err := CreateEvaluation(root)
	if err != nil {
		t.Fatalf("CreateEvaluation: %v", err)
	}
	defer env.Destroy(nil)

	if !strings.HasPrefix(filepath.Base(env.Dir), "python_expression") {
		t.Fatalf("dir %q missing python_expression prefix", env.Dir)
	}
	if env.UserScriptName != "" {
		t.Fatalf("evaluation environment has a user script: %q", env.UserScriptName)
	}
	if env.ScriptModule() != "" {
		t.Fatalf("ScriptModule = %q, want empty", env.ScriptModule())
	}
	entries, err := os.ReadDir(env.Dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != driver.EvaluationName {
		t.Fatalf("unexpected dir contents: %v", entries)
	}
}

func TestHardenMakesFilesOwnerReadOnly(t *testing.T) {
	t.Parallel()
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are POSIX-only")
	}

	env, err := CreateExecution(t.TempDir(), "pass\n")
	if err != nil {
		t.Fatalf("CreateExecution: %v", err)
	}
	defer env.Destroy(nil)

	if err := env.Harden(); err != nil {
		t.Fatalf("Harden: %v", err)
	}
	entries, err := os.ReadDir(env.Dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			t.Fatalf("stat %s: %v", entry.Name(), err)
		}
		if got := info.Mode().Perm(); got != 0o400 {
			t.Fatalf("%s perm = %o, want 0400", entry.Name(), got)
		}
	}
}

func TestDestroyRemovesDirAndIsIdempotent(t *testing.T) {
	t.Parallel()

	env, err := CreateEvaluation(t.TempDir())
	if err != nil {
		t.Fatalf("CreateEvaluation: %v", err)
	}
	env.Destroy(nil)
	if _, err := os.Stat(env.Dir); !os.IsNotExist(err) {
		t.Fatalf("dir still present after Destroy: %v", err)
	}
	// Second destroy of an already-removed dir must not panic or log an
	// error-level event; RemoveAll on a missing path succeeds.
	env.Destroy(nil)
}

func TestConcurrentCreatesNeverCollide(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	const n = 32
	dirs := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			var env *Environment
			var err error
			if i%2 == 0 {
				env, err = CreateExecution(root, "pass\n")
			} else {
				env, err = CreateEvaluation(root)
			}
			if err != nil {
				t.Errorf("create %d: %v", i, err)
				return
			}
			dirs[i] = env.Dir
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, d := range dirs {
		if d == "" {
			continue
		}
		if seen[d] {
			t.Fatalf("directory collision: %s", d)
		}
		seen[d] = true
	}
}
