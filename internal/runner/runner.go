// Package runner spawns the interpreter process and performs the
// write/read exchange with the driver script: one payload line in, the
// whole output stream back, bounded by a deadline that can kill the
// process mid-exchange.
package runner

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/outflow-labs/pysandbox/internal/pyerr"
)

// DefaultStderrLimit caps how much of the error channel is captured for
// diagnostics.
const DefaultStderrLimit = 64 * 1024

// waitDelay bounds Wait after a kill, in case a grandchild inherited the
// pipes and holds them open.
const waitDelay = 5 * time.Second

// Spec describes one process exchange.
type Spec struct {
	// Interpreter is the absolute path to the python binary.
	Interpreter string
	// Driver is the absolute path to the materialized driver script.
	Driver string
	// Dir is the sandbox directory the process runs in.
	Dir string
	// Payload is the single-line request written to the process's stdin.
	Payload string
	// Timeout bounds the whole exchange. Zero means no bound beyond ctx.
	Timeout time.Duration
	// StderrLimit caps stderr capture; DefaultStderrLimit when zero.
	StderrLimit int
}

// Output is the captured result of a finished exchange. Stderr is only
// populated for diagnostics and may be truncated.
type Output struct {
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Run starts the process, writes the payload, drains stdout to
// end-of-stream, and waits for termination. The deadline races the whole
// exchange: when it expires the process is killed, which closes the pipes
// and unblocks the drain, so a process that hangs mid-output is still
// caught. The child starts with an empty environment; host variables
// never reach the sandbox.
func Run(ctx context.Context, spec Spec) (Output, error) {
	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}
	limit := spec.StderrLimit
	if limit <= 0 {
		limit = DefaultStderrLimit
	}

	cmd := exec.CommandContext(ctx, spec.Interpreter, spec.Driver)
	cmd.Dir = spec.Dir
	cmd.Env = []string{}
	cmd.WaitDelay = waitDelay

	errCap := &boundedCapture{max: limit}
	cmd.Stderr = errCap

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return Output{}, pyerr.Wrap(pyerr.KindSetup, "failed to open stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Output{}, pyerr.Wrap(pyerr.KindSetup, "failed to open stdout pipe", err)
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Output{}, pyerr.Wrap(pyerr.KindSetup, "failed to start python process", err)
	}

	// Write concurrently with the drain: a large payload can exceed the
	// pipe buffer, and a driver that interleaves reading and writing must
	// not deadlock against us. Closing stdin lets a blocking read in the
	// driver see end-of-input.
	writeDone := make(chan error, 1)
	go func() {
		if _, err := io.WriteString(stdin, spec.Payload+"\n"); err != nil {
			writeDone <- err
			return
		}
		writeDone <- stdin.Close()
	}()

	var out strings.Builder
	readErr := drainLines(&out, stdout)
	waitErr := cmd.Wait()
	writeErr := <-writeDone

	stderrText, _, truncated := errCap.snapshot()
	if truncated {
		stderrText += "\n[stderr truncated]"
	}
	output := Output{Stdout: out.String(), Stderr: stderrText, Duration: time.Since(start)}

	if ctxErr := ctx.Err(); ctxErr != nil {
		msg := "execution canceled"
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			msg = fmt.Sprintf("execution timed out after %s", spec.Timeout)
		}
		return output, pyerr.Wrap(pyerr.KindTimeout, msg, ctxErr)
	}
	if waitErr != nil {
		var ee *exec.ExitError
		if errors.As(waitErr, &ee) {
			return output, pyerr.Newf(pyerr.KindExit, "execution returned non-zero result (exit status %d)", ee.ExitCode())
		}
		return output, pyerr.Wrap(pyerr.KindSetup, "failed to run python process", waitErr)
	}
	if writeErr != nil {
		return output, pyerr.Wrap(pyerr.KindSetup, "failed to write payload to python process", writeErr)
	}
	if readErr != nil {
		return output, pyerr.Wrap(pyerr.KindSetup, "failed to read python process output", readErr)
	}
	return output, nil
}

// drainLines concatenates the stream line by line, discarding the line
// separators: the combined text must itself be one coherent payload.
func drainLines(out *strings.Builder, r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		out.WriteString(strings.TrimRight(line, "\r\n"))
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
