// Package shell runs external tools for transformers that delegate to a CLI.
package shell

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"

	"go.trai.ch/glaze/internal/core/domain"
	"go.trai.ch/glaze/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.CommandRunner = (*Runner)(nil)

// Runner implements ports.CommandRunner using os/exec.
type Runner struct{}

// NewRunner creates a new Runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes cmd, feeding it cmd.Stdin, and returns its standard output.
// A non-zero exit returns domain.ErrCommandFailed carrying the exit code and
// the trimmed standard error.
func (r *Runner) Run(ctx context.Context, cmd domain.Command) ([]byte, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...) //nolint:gosec // Tool names come from the pipeline
	c.Dir = cmd.Dir
	if cmd.Stdin != nil {
		c.Stdin = bytes.NewReader(cmd.Stdin)
	}

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if err := c.Run(); err != nil {
		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		}

		out := zerr.Wrap(domain.ErrCommandFailed, cmd.Name)
		out = zerr.With(out, "exit_code", exitCode)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			out = zerr.With(out, "stderr", msg)
		} else {
			out = zerr.With(out, "cause", err.Error())
		}
		return nil, out
	}

	return stdout.Bytes(), nil
}

// Stderr returns the captured standard error attached to a failed command.
func Stderr(err error) string {
	var z *zerr.Error
	if !errors.As(err, &z) {
		return ""
	}
	if msg, ok := z.Metadata()["stderr"].(string); ok {
		return msg
	}
	return ""
}
