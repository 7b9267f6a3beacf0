// Package execute runs model-proposed commands through the user's shell and
// captures their output for session context.
package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
)

// outputCap bounds how much captured output is kept for session history.
const outputCap = 2000

// truncationMarker is appended when captured output exceeds the cap.
const truncationMarker = "\n... [output truncated]"

// Result is the outcome of one command execution.
type Result struct {
	ExitCode int
	// Output is merged stdout+stderr, capped at outputCap bytes with a
	// visible truncation marker beyond it.
	Output string
}

// Runner runs a command string via a shell. Abstracted so command flows can
// be tested without spawning processes.
type Runner interface {
	Run(ctx context.Context, command string, echo io.Writer) (Result, error)
}

// ShellRunner executes through `sh -c`, streaming output to echo in real
// time while capturing it.
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, command string, echo io.Writer) (Result, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)

	capture := &cappedBuffer{limit: outputCap}
	var out io.Writer = capture
	if echo != nil {
		out = io.MultiWriter(echo, capture)
	}
	// Merge stderr into stdout so the session context sees what the user saw.
	cmd.Stdout = out
	cmd.Stderr = out
	cmd.Stdin = os.Stdin

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{ExitCode: exitErr.ExitCode(), Output: capture.String()}, nil
		}
		return Result{ExitCode: -1, Output: capture.String()}, fmt.Errorf("running command: %w", err)
	}
	return Result{ExitCode: 0, Output: capture.String()}, nil
}

// cappedBuffer accepts unlimited writes but stores only the first limit
// bytes, remembering whether anything was dropped.
type cappedBuffer struct {
	limit     int
	buf       bytes.Buffer
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if remaining := b.limit - b.buf.Len(); remaining > 0 {
		if len(p) <= remaining {
			b.buf.Write(p)
		} else {
			b.buf.Write(p[:remaining])
			b.truncated = true
		}
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	if b.truncated {
		return b.buf.String() + truncationMarker
	}
	return b.buf.String()
}
