// Package procrunner is the process-runner contract and its default
// os/exec-backed implementation. The subprocess runner is an external
// collaborator; this package supplies the one concrete transport the
// enricher actually needs, running the documented docker-inspect CLI.
package procrunner

import (
	"bytes"
	"context"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// Spec describes one process invocation.
type Spec struct {
	Exe            string
	Argv           []string
	OnStdout       func(line string)
	OnStderr       func(line string)
	KillTree       bool
	ThrowOnNonzero bool
}

// Result is what a Runner reports once the process exits.
type Result struct {
	ExitCode int
	Stdout   []byte
}

// Runner runs one process to completion, honoring ctx cancellation.
// Resource release on every exit path and cancellation aborting the
// wait are both the caller's responsibility to arrange via ctx, which
// this interface takes directly: one context, one error return.
type Runner interface {
	Run(ctx context.Context, spec Spec) (Result, error)
}

// Exec is the default Runner, shelling out via os/exec.CommandContext.
type Exec struct{}

var _ Runner = Exec{}

// Run starts spec.Exe with spec.Argv and waits for it to exit or ctx to
// be canceled, whichever comes first. When spec.KillTree is set, the
// child is placed in its own process group so cancellation can kill
// the whole tree, not just the immediate child.
func (Exec) Run(ctx context.Context, spec Spec) (Result, error) {
	cmd := exec.CommandContext(ctx, spec.Exe, spec.Argv...)
	if spec.KillTree {
		cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
		cmd.Cancel = func() error {
			return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if spec.OnStdout != nil && stdout.Len() > 0 {
		spec.OnStdout(stdout.String())
	}
	if spec.OnStderr != nil && stderr.Len() > 0 {
		spec.OnStderr(stderr.String())
	}

	result := Result{Stdout: stdout.Bytes()}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if ctx.Err() != nil {
		return result, ctx.Err()
	}

	if runErr != nil {
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
		if spec.ThrowOnNonzero {
			return result, errors.Wrapf(runErr, "running %s", spec.Exe)
		}
	}

	return result, nil
}
